package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserInvited            = "user.invited"
	EventTypePasswordResetRequested = "user.password_reset_requested"
)

// AccountLinkEvent carries a one-time link that must reach the account owner.
type AccountLinkEvent struct {
	BaseEvent
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Link      string    `json:"link"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newAccountLinkEvent(eventType string, userID int64, email, name, link string, expiresAt time.Time) *AccountLinkEvent {
	return &AccountLinkEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"email":      email,
				"expires_at": expiresAt,
			},
		},
		UserID:    userID,
		Email:     email,
		Name:      name,
		Link:      link,
		ExpiresAt: expiresAt,
	}
}

func NewUserInvitedEvent(userID int64, email, name, link string, expiresAt time.Time) *AccountLinkEvent {
	return newAccountLinkEvent(EventTypeUserInvited, userID, email, name, link, expiresAt)
}

func NewPasswordResetRequestedEvent(userID int64, email, name, link string, expiresAt time.Time) *AccountLinkEvent {
	return newAccountLinkEvent(EventTypePasswordResetRequested, userID, email, name, link, expiresAt)
}

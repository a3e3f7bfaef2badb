package auth

import (
	"time"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/core/access"
	userDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/user"
	"github.com/golang-jwt/jwt/v5"
)

// User is the credential-bearing view of an account used by the auth flows.
type User struct {
	ID                int64
	Name              string
	Email             string
	PasswordHash      string
	Role              access.Role
	IsActive          bool
	ResetTokenHash    *string
	ResetTokenExpires *time.Time
	LastLoginAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// UserView is the public shape of an account; it never carries secrets.
type UserView struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        access.Role `json:"role"`
	IsActive    bool        `json:"is_active"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrUserNotFound = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)

	ErrInvalidResetToken = internal.NewValidationError("invalid reset token", internal.ErrCodeInvalidResetToken)
	ErrResetTokenExpired = internal.NewValidationError("reset token has expired", internal.ErrCodeResetTokenExpired)
)

func (u *User) View() UserView {
	return UserView{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func (u *User) Principal() *internal.Principal {
	return &internal.Principal{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func FromDataModel(m *userDatamodel.User) *User {
	return &User{
		ID:                m.ID,
		Name:              m.Name,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Role:              access.Role(m.Role),
		IsActive:          m.IsActive,
		ResetTokenHash:    m.ResetPasswordToken,
		ResetTokenExpires: m.ResetPasswordExpires,
		LastLoginAt:       m.LastLoginAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:                   u.ID,
		Name:                 u.Name,
		Email:                u.Email,
		PasswordHash:         u.PasswordHash,
		Role:                 u.Role.String(),
		IsActive:             u.IsActive,
		ResetPasswordToken:   u.ResetTokenHash,
		ResetPasswordExpires: u.ResetTokenExpires,
		LastLoginAt:          u.LastLoginAt,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}

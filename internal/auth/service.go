package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/audit"
	"github.com/frahmantamala/procurement-inventory/internal/core/common/validation"
	"github.com/frahmantamala/procurement-inventory/internal/core/events"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error)
	ForgotPassword(ctx context.Context, dto ForgotPasswordDTO) (*ForgotPasswordResponse, error)
	ResetPassword(ctx context.Context, dto ResetPasswordDTO) error
	Me(ctx context.Context) (*UserView, error)
}

type RepositoryAPI interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByResetToken(ctx context.Context, digest string) (*User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	SetResetToken(ctx context.Context, id int64, digest string, expiresAt time.Time) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type AuditRecorder interface {
	Record(ctx context.Context, e audit.Entry)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Options struct {
	BCryptCost    int
	ResetTokenTTL time.Duration
	FrontendURL   string
	// ExposeResetLink echoes reset links in API responses; never set in production.
	ExposeResetLink bool
}

// Service is the main auth service with dependencies
type Service struct {
	repo   RepositoryAPI
	tokens TokenGeneratorAPI
	audit  AuditRecorder
	events EventPublisher
	logger *slog.Logger
	opts   Options
	now    func() time.Time
}

// NewService creates a new auth service
func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, recorder AuditRecorder, publisher EventPublisher, logger *slog.Logger, opts Options) *Service {
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = 10 * time.Minute
	}
	return &Service{
		repo:   repo,
		tokens: tokens,
		audit:  recorder,
		events: publisher,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
}

// Login checks credentials and issues an access token. Unknown, inactive and
// wrong-password accounts are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(ctx, normalizeEmail(dto.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, internal.ErrInvalidCredentials
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if !u.IsActive {
		s.logger.Info("login rejected for inactive user", "user_id", u.ID)
		return nil, internal.ErrInvalidCredentials
	}
	if err := VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(u)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.logger.Warn("failed to stamp last login", "user_id", u.ID, "error", err)
	} else {
		u.LastLoginAt = &now
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    u.ID,
		Action:     audit.ActionLogin,
		EntityType: audit.EntityUser,
		EntityID:   audit.EntityRef(u.ID),
		Details:    "User logged in",
	})

	return &LoginResponse{Token: token, ExpiresAt: expiresAt, User: u.View()}, nil
}

func (s *Service) ForgotPassword(ctx context.Context, dto ForgotPasswordDTO) (*ForgotPasswordResponse, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(ctx, normalizeEmail(dto.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}

	link, err := s.IssueResetLink(ctx, u, false)
	if err != nil {
		return nil, err
	}

	resp := &ForgotPasswordResponse{Message: "Password reset link sent"}
	if s.opts.ExposeResetLink {
		resp.ResetLink = link
	}
	return resp, nil
}

// IssueResetLink stores a fresh reset token for u and publishes the link for
// delivery. invite selects the welcome notification instead of the reset one.
func (s *Service) IssueResetLink(ctx context.Context, u *User, invite bool) (string, error) {
	raw, digest, err := NewResetToken()
	if err != nil {
		return "", internal.NewInternalError("failed to generate reset token", err)
	}
	expiresAt := s.now().Add(s.opts.ResetTokenTTL).UTC()

	if err := s.repo.SetResetToken(ctx, u.ID, digest, expiresAt); err != nil {
		return "", internal.NewInternalError("failed to store reset token", err)
	}

	link := ResetLink(s.opts.FrontendURL, raw)

	var ev events.Event
	if invite {
		ev = events.NewUserInvitedEvent(u.ID, u.Email, u.Name, link, expiresAt)
	} else {
		ev = events.NewPasswordResetRequestedEvent(u.ID, u.Email, u.Name, link, expiresAt)
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Error("failed to publish account link", "user_id", u.ID, "event_type", ev.EventType(), "error", err)
	}

	return link, nil
}

func (s *Service) ResetPassword(ctx context.Context, dto ResetPasswordDTO) error {
	if err := validation.Struct(dto); err != nil {
		return err
	}

	u, err := s.repo.GetByResetToken(ctx, HashResetToken(dto.Token))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return internal.NewInternalError("failed to load user", err)
	}
	if u.ResetTokenExpires == nil || !s.now().Before(*u.ResetTokenExpires) {
		return ErrResetTokenExpired
	}

	hash, err := HashPassword(dto.Password, s.opts.BCryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return internal.NewInternalError("failed to update password", err)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    u.ID,
		Action:     audit.ActionResetPassword,
		EntityType: audit.EntityUser,
		EntityID:   audit.EntityRef(u.ID),
		Details:    "Password reset completed",
	})
	return nil
}

func (s *Service) Me(ctx context.Context) (*UserView, error) {
	p, ok := internal.PrincipalFromContext(ctx)
	if !ok {
		return nil, internal.ErrMissingPrincipal
	}
	u, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}
	v := u.View()
	return &v, nil
}

// ResolvePrincipal maps a bearer token to an active user. The role comes from
// the stored account, so role changes apply to tokens already issued.
func (s *Service) ResolvePrincipal(ctx context.Context, token string) (*internal.Principal, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if !u.IsActive {
		return nil, internal.ErrUserInactive
	}
	if !u.Role.Valid() {
		return nil, internal.ErrInsufficientRole
	}
	return u.Principal(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/audit"
	"github.com/frahmantamala/procurement-inventory/internal/auth"
	"github.com/frahmantamala/procurement-inventory/internal/core/access"
	"github.com/frahmantamala/procurement-inventory/internal/core/common/validation"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]auth.UserView, error)
	Get(ctx context.Context, id int64) (*auth.UserView, error)
	Create(ctx context.Context, dto CreateUserDTO) (*UserResponse, error)
	Update(ctx context.Context, id int64, dto UpdateUserDTO) (*UserResponse, error)
	SendPasswordReset(ctx context.Context, id int64) (*ResetResponse, error)
}

type RepositoryAPI interface {
	List(ctx context.Context) ([]*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
}

// LinkIssuer stores a reset token for a user and hands out the link.
type LinkIssuer interface {
	IssueResetLink(ctx context.Context, u *auth.User, invite bool) (string, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, e audit.Entry)
}

type Service struct {
	repo       RepositoryAPI
	links      LinkIssuer
	audit      AuditRecorder
	logger     *slog.Logger
	bcryptCost int
	exposeLink bool
}

func NewService(repo RepositoryAPI, links LinkIssuer, recorder AuditRecorder, logger *slog.Logger, bcryptCost int, exposeLink bool) *Service {
	return &Service{
		repo:       repo,
		links:      links,
		audit:      recorder,
		logger:     logger,
		bcryptCost: bcryptCost,
		exposeLink: exposeLink,
	}
}

func (s *Service) List(ctx context.Context) ([]auth.UserView, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list users", err)
	}
	views := make([]auth.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	return views, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*auth.UserView, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	v := u.View()
	return &v, nil
}

// Create registers an account with a throwaway password and sends an invite
// link through which the user sets their own.
func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*UserResponse, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	email := normalizeEmail(dto.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, internal.NewInternalError("failed to check email", err)
	}

	role := access.RoleProcurement
	if dto.Role != "" {
		role = access.Role(dto.Role)
	}
	active := true
	if dto.IsActive != nil {
		active = *dto.IsActive
	}

	temp, err := auth.RandomPassword()
	if err != nil {
		return nil, internal.NewInternalError("failed to generate password", err)
	}
	hash, err := auth.HashPassword(temp, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := &User{
		Name:         strings.TrimSpace(dto.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, internal.NewInternalError("failed to create user", err)
	}

	link, err := s.links.IssueResetLink(ctx, u, true)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: audit.EntityUser,
		EntityID:   audit.EntityRef(u.ID),
		Changes:    audit.Changes(dto),
		Details:    fmt.Sprintf("Created user %s with role %s (Invite sent)", u.Name, u.Role),
	})

	resp := &UserResponse{Message: "User created and invitation sent", User: u.View()}
	if s.exposeLink {
		resp.InviteLink = link
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateUserDTO) (*UserResponse, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if internal.ActorIDFromContext(ctx) == u.ID {
		return nil, ErrSelfUpdate
	}

	if dto.Name != nil {
		u.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Email != nil {
		email := normalizeEmail(*dto.Email)
		if email != u.Email {
			other, err := s.repo.GetByEmail(ctx, email)
			if err == nil && other.ID != u.ID {
				return nil, ErrEmailInUse
			}
			if err != nil && !errors.Is(err, ErrUserNotFound) {
				return nil, internal.NewInternalError("failed to check email", err)
			}
			u.Email = email
		}
	}
	if dto.Role != nil {
		u.Role = access.Role(*dto.Role)
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, ErrEmailInUse
		}
		return nil, internal.NewInternalError("failed to update user", err)
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityUser,
		EntityID:   audit.EntityRef(u.ID),
		Changes:    audit.Changes(dto),
		Details:    fmt.Sprintf("Updated user %s", u.Name),
	})

	return &UserResponse{Message: "User updated successfully", User: u.View()}, nil
}

// SendPasswordReset issues a reset link on an administrator's behalf.
func (s *Service) SendPasswordReset(ctx context.Context, id int64) (*ResetResponse, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	link, err := s.links.IssueResetLink(ctx, u, false)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		Action:     audit.ActionResetPassword,
		EntityType: audit.EntityUser,
		EntityID:   audit.EntityRef(u.ID),
		Details:    fmt.Sprintf("Password reset email sent to user %s", u.Name),
	})

	resp := &ResetResponse{Message: "Password reset link sent"}
	if s.exposeLink {
		resp.ResetLink = link
	}
	return resp, nil
}

func (s *Service) load(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/procurement-inventory/internal/auth"
	userDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.RepositoryAPI {
	return &Repository{db: db}
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) GetByResetToken(ctx context.Context, digest string) (*auth.User, error) {
	return r.first(ctx, "reset_password_token = ?", digest)
}

func (r *Repository) first(ctx context.Context, query string, arg interface{}) (*auth.User, error) {
	var m userDatamodel.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return auth.FromDataModel(&m), nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

func (r *Repository) SetResetToken(ctx context.Context, id int64, digest string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reset_password_token":   digest,
			"reset_password_expires": expiresAt,
		}).Error
}

// UpdatePassword sets a new hash and clears any outstanding reset token.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash":          passwordHash,
			"reset_password_token":   nil,
			"reset_password_expires": nil,
		}).Error
}

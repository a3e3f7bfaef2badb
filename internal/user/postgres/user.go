package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/procurement-inventory/internal/auth"
	userDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/user"
	"github.com/frahmantamala/procurement-inventory/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	var rows []userDatamodel.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]*user.User, 0, len(rows))
	for i := range rows {
		users = append(users, auth.FromDataModel(&rows[i]))
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var m userDatamodel.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return auth.FromDataModel(&m), nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	m := auth.ToDataModel(u)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return user.ErrUserExists
		}
		return err
	}
	u.ID = m.ID
	u.CreatedAt = m.CreatedAt
	u.UpdatedAt = m.UpdatedAt
	return nil
}

// Update writes the profile fields only; credentials are owned by the auth repository.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"name":      u.Name,
			"email":     u.Email,
			"role":      u.Role.String(),
			"is_active": u.IsActive,
		}).Error
	if err != nil && isUniqueViolation(err) {
		return user.ErrUserExists
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

package user

import "time"

type User struct {
	ID                   int64      `gorm:"primaryKey"`
	Name                 string     `gorm:"column:name;not null"`
	Email                string     `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash         string     `gorm:"column:password_hash;not null"`
	Role                 string     `gorm:"column:role;not null"`
	IsActive             bool       `gorm:"column:is_active;not null"`
	ResetPasswordToken   *string    `gorm:"column:reset_password_token;index"`
	ResetPasswordExpires *time.Time `gorm:"column:reset_password_expires"`
	LastLoginAt          *time.Time `gorm:"column:last_login_at"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

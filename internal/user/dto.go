package user

import "github.com/frahmantamala/procurement-inventory/internal/auth"

type CreateUserDTO struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"omitempty,oneof=ADMIN PROCUREMENT AUDITOR"`
	IsActive *bool  `json:"is_active"`
}

// UpdateUserDTO applies only the fields that are present.
type UpdateUserDTO struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role" validate:"omitempty,oneof=ADMIN PROCUREMENT AUDITOR"`
	IsActive *bool   `json:"is_active"`
}

type UserResponse struct {
	Message    string        `json:"message"`
	User       auth.UserView `json:"user"`
	InviteLink string        `json:"invite_link,omitempty"`
}

type ResetResponse struct {
	Message   string `json:"message"`
	ResetLink string `json:"reset_link,omitempty"`
}

package user

import (
	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/auth"
)

// Accounts are shared with the auth package; user management only adds the
// admin-facing operations on top of the same record.
type User = auth.User

var (
	ErrUserNotFound = auth.ErrUserNotFound
	ErrUserExists   = internal.NewConflictError("user already exists", internal.ErrCodeUserExists)
	ErrEmailInUse   = internal.NewConflictError("email is already in use", internal.ErrCodeEmailInUse)
	ErrSelfUpdate   = internal.NewValidationError("cannot update your own account", internal.ErrCodeSelfUpdate)
)

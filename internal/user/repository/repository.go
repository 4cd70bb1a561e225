package repository

import (
	"context"
	"errors"

	"nalanda-library-system/backend/internal/user/domain"
)

// ErrDuplicate is returned by Create when the email is already registered.
var ErrDuplicate = errors.New("user already exists")

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// SetActive flips the soft-delete flag. Users are deactivated, never deleted.
	SetActive(ctx context.Context, id string, active bool) error
}

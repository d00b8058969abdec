package ports

import (
	"context"

	"github.com/platformlab/accounts-api/internal/core/domain"
)

// UpdateFields carries the selective profile mutations. Empty fields are
// left untouched by the store.
type UpdateFields struct {
	Username     string
	Email        string
	PasswordHash string
}

// UserRepository defines the persistence contract for user accounts.
// Implementations must enforce username/email uniqueness at write time and
// surface violations as domain.ErrUserExists.
type UserRepository interface {
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByID excludes the password hash; it backs the per-request
	// re-fetch in the authentication middleware.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateByID(ctx context.Context, id string, fields UpdateFields) (*domain.User, error)
	DeleteByID(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*domain.User, error)
}

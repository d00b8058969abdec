package ports

import (
	"context"

	"github.com/platformlab/accounts-api/internal/core/domain"
)

// ProfileUpdate carries the fields a user may change on their own account.
// Empty strings mean "keep the current value".
type ProfileUpdate struct {
	Username string
	Email    string
	Password string
}

type AccountService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error)
	DeleteProfile(ctx context.Context, userID string) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

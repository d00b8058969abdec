package ports

import (
	"context"

	"github.com/platformlab/accounts-api/internal/core/auth"
	"github.com/platformlab/accounts-api/internal/core/domain"
)

// PasswordHasher abstracts the bcrypt hasher so the service can run it
// through the bounded worker pool.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, hash string) (bool, error)
}

type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/platformlab/accounts-api/internal/api/metrics"
	"github.com/platformlab/accounts-api/internal/core/domain"
	"github.com/platformlab/accounts-api/internal/core/ports"
)

// AccountService orchestrates registration, login, and profile management.
// It holds no state of its own; uniqueness and atomic updates are delegated
// to the repository's constraints.
type AccountService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	log    zerolog.Logger
}

func NewAccountService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, log zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, hasher: hasher, tokens: tokens, log: log}
}

// Register creates a new account with the default "user" role. It does not
// log the caller in; a separate Login call is required.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	if username == "" || email == "" || password == "" {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrMissingFields
	}

	// Pre-check for a friendlier error; the unique indexes still arbitrate
	// concurrent registrations at insert time.
	existing, err := s.repo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}
	if existing != nil {
		metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		return nil, domain.ErrUserExists
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		}
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	s.log.Info().Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Login verifies credentials and returns a signed token. Unknown username
// and wrong password are indistinguishable to the caller; the underlying
// cause is kept at debug level only.
func (s *AccountService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrMissingFields
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			s.log.Debug().Str("username", username).Msg("login failed: unknown username")
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		s.log.Debug().Str("username", username).Msg("login failed: password mismatch")
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("username", user.Username).Msg("user logged in")
	return token, user, nil
}

// UpdateProfile selectively replaces username, email, and/or password.
// A password change is re-hashed before it reaches the store.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, update ports.ProfileUpdate) (*domain.User, error) {
	if update.Username == "" && update.Email == "" && update.Password == "" {
		return nil, domain.ErrMissingFields
	}

	fields := ports.UpdateFields{
		Username: update.Username,
		Email:    update.Email,
	}
	if update.Password != "" {
		hash, err := s.hasher.Hash(ctx, update.Password)
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		fields.PasswordHash = hash
	}

	updated, err := s.repo.UpdateByID(ctx, userID, fields)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", userID).Msg("profile updated")
	return updated, nil
}

// DeleteProfile removes the account. Tokens already issued for it fail at
// the auth middleware's re-fetch on their next use.
func (s *AccountService) DeleteProfile(ctx context.Context, userID string) error {
	if err := s.repo.DeleteByID(ctx, userID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Msg("profile deleted")
	return nil
}

// ListUsers returns every account, password hashes excluded. Role
// enforcement is the authorization middleware's job, not this method's.
func (s *AccountService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

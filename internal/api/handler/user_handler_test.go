package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/platformlab/accounts-api/internal/api/middleware"
	"github.com/platformlab/accounts-api/internal/core/domain"
	"github.com/platformlab/accounts-api/internal/core/ports"
)

func authedUser() *domain.User {
	return &domain.User{
		ID:        "64f000000000000000000001",
		Username:  "alice",
		Email:     "a@x.com",
		Role:      domain.RoleUser,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestUserHandler_Profile(t *testing.T) {
	h := NewUserHandler(&stubAccountService{})

	c, rec := newTestContext(t, http.MethodGet, "/users/profile", "")
	middleware.SetUser(c, authedUser())

	if err := h.Profile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["username"] != "alice" || resp["role"] != domain.RoleUser {
		t.Fatalf("unexpected profile payload: %+v", resp)
	}
	if _, leaked := resp["password"]; leaked {
		t.Fatalf("password leaked in profile payload")
	}
}

func TestUserHandler_Profile_NoUser(t *testing.T) {
	h := NewUserHandler(&stubAccountService{})

	c, _ := newTestContext(t, http.MethodGet, "/users/profile", "")
	err := h.Profile(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	stub := &stubAccountService{
		updateFn: func(ctx context.Context, userID string, update ports.ProfileUpdate) (*domain.User, error) {
			if userID != "64f000000000000000000001" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			if update.Email != "new@x.com" || update.Username != "" || update.Password != "" {
				t.Fatalf("unexpected update: %+v", update)
			}
			u := authedUser()
			u.Email = update.Email
			return u, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newTestContext(t, http.MethodPut, "/users/profile", `{"email":"new@x.com"}`)
	middleware.SetUser(c, authedUser())

	if err := h.UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp updateProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.User == nil || resp.User.Email != "new@x.com" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUserHandler_UpdateProfile_BadEmail(t *testing.T) {
	h := NewUserHandler(&stubAccountService{
		updateFn: func(ctx context.Context, userID string, update ports.ProfileUpdate) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	})

	c, _ := newTestContext(t, http.MethodPut, "/users/profile", `{"email":"nope"}`)
	middleware.SetUser(c, authedUser())

	err := h.UpdateProfile(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestUserHandler_UpdateProfile_Gone(t *testing.T) {
	h := NewUserHandler(&stubAccountService{
		updateFn: func(ctx context.Context, userID string, update ports.ProfileUpdate) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	})

	c, _ := newTestContext(t, http.MethodPut, "/users/profile", `{"username":"other"}`)
	middleware.SetUser(c, authedUser())

	if err := h.UpdateProfile(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound to propagate, got %v", err)
	}
}

func TestUserHandler_DeleteProfile(t *testing.T) {
	deleted := false
	h := NewUserHandler(&stubAccountService{
		deleteFn: func(ctx context.Context, userID string) error {
			deleted = true
			return nil
		},
	})

	c, rec := newTestContext(t, http.MethodDelete, "/users/profile", "")
	middleware.SetUser(c, authedUser())

	if err := h.DeleteProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !deleted {
		t.Fatalf("service delete not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_ListUsers(t *testing.T) {
	h := NewUserHandler(&stubAccountService{
		listFn: func(ctx context.Context) ([]*domain.User, error) {
			return []*domain.User{
				{Username: "alice", Role: domain.RoleUser},
				{Username: "root", Role: domain.RoleAdmin},
			}, nil
		},
	})

	c, rec := newTestContext(t, http.MethodGet, "/users", "")

	if err := h.ListUsers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp listUsersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 2 || len(resp.Users) != 2 {
		t.Fatalf("unexpected list payload: %+v", resp)
	}
}

func TestUserHandler_ListUsers_Empty(t *testing.T) {
	h := NewUserHandler(&stubAccountService{
		listFn: func(ctx context.Context) ([]*domain.User, error) {
			return nil, nil
		},
	})

	c, rec := newTestContext(t, http.MethodGet, "/users", "")
	if err := h.ListUsers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp listUsersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 0 || resp.Users == nil {
		t.Fatalf("expected empty list, got %+v", resp)
	}
}

package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/platformlab/accounts-api/internal/api/handler"
	"github.com/platformlab/accounts-api/internal/api/middleware"
	"github.com/platformlab/accounts-api/internal/core/domain"
	"github.com/platformlab/accounts-api/internal/core/ports"
)

// Deps carries everything the router needs. The repository and service are
// ports so tests can wire stubs; main wires the Mongo-backed versions.
type Deps struct {
	Users    ports.UserRepository
	Accounts ports.AccountService
	Tokens   ports.TokenVerifier
	Store    handler.Pinger
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("accounts"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Accounts)
	userHandler := handler.NewUserHandler(deps.Accounts)
	authMiddleware := middleware.Auth(deps.Tokens, deps.Users, deps.Log)

	// --- Public auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Protected routes ---
	users := e.Group("/users", authMiddleware)
	users.GET("/profile", userHandler.Profile)
	users.PUT("/profile", userHandler.UpdateProfile)
	users.DELETE("/profile", userHandler.DeleteProfile)
	users.GET("", userHandler.ListUsers, middleware.RBAC(domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	e.GET("/health", healthHandler.Liveness) // liveness – is the process alive?
	if deps.Store != nil {
		readinessHandler := handler.NewReadinessHandler(deps.Store)
		e.GET("/health/ready", readinessHandler.Readiness) // readiness – is the store up?
	}

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}

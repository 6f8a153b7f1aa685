package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/movie-api/internal/api/http/handlers"
	"github.com/spec-kit/movie-api/internal/auth"
)

// NewApp returns a Fiber app configured the way every server and test in this
// module expects.
func NewApp(appName string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               appName,
		ErrorHandler:          ErrorHandler,
		UnescapePath:          true,
		DisableStartupMessage: true,
	})
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Movies         *handlers.MoviesHandler
	Metrics        fiber.Handler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Only login, registration, health and
// metrics are reachable without a bearer token. The token checks are attached
// per route so unknown paths still answer 404.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	app.Post("/login", cfg.Auth.Login)
	app.Post("/users", cfg.Auth.Register)

	authed := chain(cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	self := chain(cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), auth.RequireSelf("username"))

	app.Get("/users/:username", self(cfg.Users.Get)...)
	app.Put("/users/:username", self(cfg.Users.Update)...)
	app.Delete("/users/:username", self(cfg.Users.Delete)...)
	app.Post("/users/:username/movies/:movieId", self(cfg.Users.AddFavorite)...)
	app.Delete("/users/:username/movies/:movieId", self(cfg.Users.RemoveFavorite)...)

	app.Get("/movies", authed(cfg.Movies.List)...)
	app.Get("/movies/:title", authed(cfg.Movies.GetByTitle)...)
	app.Get("/genres/:name", authed(cfg.Movies.Genre)...)
	app.Get("/directors/:name", authed(cfg.Movies.Director)...)
}

// chain returns a builder that prefixes a handler with the given guards.
func chain(guards ...fiber.Handler) func(fiber.Handler) []fiber.Handler {
	return func(h fiber.Handler) []fiber.Handler {
		handlers := make([]fiber.Handler, 0, len(guards)+1)
		handlers = append(handlers, guards...)
		return append(handlers, h)
	}
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/movie-api/internal/service"
)

// MoviesHandler serves the read-only catalog.
type MoviesHandler struct {
	movies *service.MovieService
}

// NewMoviesHandler constructs handler.
func NewMoviesHandler(movieService *service.MovieService) *MoviesHandler {
	return &MoviesHandler{movies: movieService}
}

// List handles GET /movies.
func (h *MoviesHandler) List(c *fiber.Ctx) error {
	movies, err := h.movies.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(movies)
}

// GetByTitle handles GET /movies/:title.
func (h *MoviesHandler) GetByTitle(c *fiber.Ctx) error {
	movie, err := h.movies.GetByTitle(c.UserContext(), c.Params("title"))
	if err != nil {
		return err
	}
	return c.JSON(movie)
}

// Genre handles GET /genres/:name.
func (h *MoviesHandler) Genre(c *fiber.Ctx) error {
	genre, err := h.movies.GetGenre(c.UserContext(), c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(genre)
}

// Director handles GET /directors/:name.
func (h *MoviesHandler) Director(c *fiber.Ctx) error {
	director, err := h.movies.GetDirector(c.UserContext(), c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(director)
}

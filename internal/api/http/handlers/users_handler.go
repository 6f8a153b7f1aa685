package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/movie-api/internal/api/dto"
	"github.com/spec-kit/movie-api/internal/auth"
	"github.com/spec-kit/movie-api/internal/domain"
	"github.com/spec-kit/movie-api/internal/service"
	apperrors "github.com/spec-kit/movie-api/pkg/util/errorutil"
)

// UsersHandler exposes the self-service account endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

func identityFrom(c *fiber.Ctx) (domain.Identity, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return domain.Identity{}, apperrors.NewUnauthorized("authentication required")
	}
	return domain.Identity{ID: principal.ID, Username: principal.Username}, nil
}

// Get handles GET /users/:username.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Update handles PUT /users/:username.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Empty() {
		return apperrors.NewBadRequest("at least one field is required")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	input := service.UpdateUserInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	}
	if req.Birthday != nil {
		birthday, err := time.Parse(dto.DateLayout, *req.Birthday)
		if err != nil {
			return apperrors.NewValidationError("invalid fields: birthday", map[string]any{"birthday": "must be a date formatted as YYYY-MM-DD"})
		}
		input.Birthday = &birthday
	}

	user, err := h.users.Update(c.UserContext(), identity, input)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Delete handles DELETE /users/:username.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.UserContext(), identity); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: identity.Username + " was deleted."})
}

// AddFavorite handles POST /users/:username/movies/:movieId.
func (h *UsersHandler) AddFavorite(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}
	user, err := h.users.AddFavorite(c.UserContext(), identity, c.Params("movieId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// RemoveFavorite handles DELETE /users/:username/movies/:movieId.
func (h *UsersHandler) RemoveFavorite(c *fiber.Ctx) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}
	user, err := h.users.RemoveFavorite(c.UserContext(), identity, c.Params("movieId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

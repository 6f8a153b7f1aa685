package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/movie-api/internal/api/dto"
	"github.com/spec-kit/movie-api/internal/service"
	apperrors "github.com/spec-kit/movie-api/pkg/util/errorutil"
)

// AuthHandler exposes login and registration.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	result, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		User:  dto.LoginUser{ID: result.Identity.ID, Username: result.Identity.Username},
		Token: result.Token.Token,
	})
}

// Register handles POST /users.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	birthday, err := dto.ParseDate(req.Birthday)
	if err != nil {
		return apperrors.NewValidationError("invalid fields: birthday", map[string]any{"birthday": "must be a date formatted as YYYY-MM-DD"})
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Birthday: birthday,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewUserResponse(user))
}

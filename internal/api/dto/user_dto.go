package dto

import (
	"time"

	"github.com/spec-kit/movie-api/internal/domain"
)

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginUser is the identity echoed back on login.
type LoginUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	User  LoginUser `json:"user"`
	Token string    `json:"token"`
}

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=5,alphanum"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Email    string `json:"email" validate:"required,email"`
	Birthday string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateUserRequest is the body of PUT /users/:username. Absent fields are
// left unchanged.
type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=5,alphanum"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Birthday *string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
}

// Empty reports whether no field was supplied.
func (r UpdateUserRequest) Empty() bool {
	return r.Username == nil && r.Password == nil && r.Email == nil && r.Birthday == nil
}

// UserResponse is the public view of a user. It never carries the password hash.
type UserResponse struct {
	ID             string   `json:"id"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	Birthday       string   `json:"birthday,omitempty"`
	FavoriteMovies []string `json:"favoriteMovies"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewUserResponse maps the domain user to its public view.
func NewUserResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		FavoriteMovies: user.FavoriteMovies,
	}
	if resp.FavoriteMovies == nil {
		resp.FavoriteMovies = []string{}
	}
	if !user.Birthday.IsZero() {
		resp.Birthday = user.Birthday.Format(DateLayout)
	}
	return resp
}

// ParseDate parses a YYYY-MM-DD string; the empty string yields the zero time.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, value)
}

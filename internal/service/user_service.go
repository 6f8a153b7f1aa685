package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/movie-api/internal/auth"
	"github.com/spec-kit/movie-api/internal/domain"
	"github.com/spec-kit/movie-api/internal/events"
	"github.com/spec-kit/movie-api/internal/repository"
	apperrors "github.com/spec-kit/movie-api/pkg/util/errorutil"
)

// UserService manages profiles and favorites of authenticated users.
type UserService struct {
	users      repository.UserRepository
	movies     repository.MovieRepository
	hasher     *auth.PasswordHasher
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// UserDependencies bundles requirements for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	MovieRepo  repository.MovieRepository
	Hasher     *auth.PasswordHasher
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		movies:     deps.MovieRepo,
		hasher:     deps.Hasher,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// UpdateUserInput carries optional profile changes; nil fields are untouched.
type UpdateUserInput struct {
	Username *string
	Password *string
	Email    *string
	Birthday *time.Time
}

// Get returns the user behind an authenticated identity.
func (s *UserService) Get(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, identity.ID)
	if err != nil {
		return nil, mapRepoError(err, "user")
	}
	return user, nil
}

// Update applies profile changes. A new password is hashed before storage.
func (s *UserService) Update(ctx context.Context, identity domain.Identity, input UpdateUserInput) (*domain.User, error) {
	user, err := s.Get(ctx, identity)
	if err != nil {
		return nil, err
	}

	previous := user.Username
	payload := events.UserUpdatedPayload{}
	if input.Username != nil && *input.Username != user.Username {
		user.Username = *input.Username
		payload.PreviousUsername = previous
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Birthday != nil {
		user.Birthday = *input.Birthday
	}
	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
		payload.PasswordChanged = true
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("username or email already exists", nil)
		}
		return nil, mapRepoError(err, "user")
	}

	publishEvent(ctx, s.dispatcher, s.logger, s.now, events.Event{
		Type:     events.EventUserUpdated,
		UserID:   user.ID,
		Username: user.Username,
		Payload:  payload,
	})
	return user, nil
}

// Delete removes the account. Tokens already issued stay valid until expiry.
func (s *UserService) Delete(ctx context.Context, identity domain.Identity) error {
	if err := s.users.Delete(ctx, identity.ID); err != nil {
		return mapRepoError(err, "user")
	}
	publishEvent(ctx, s.dispatcher, s.logger, s.now, events.Event{
		Type:     events.EventUserDeleted,
		UserID:   identity.ID,
		Username: identity.Username,
	})
	return nil
}

// AddFavorite adds movieID to the user's favorites.
func (s *UserService) AddFavorite(ctx context.Context, identity domain.Identity, movieID string) (*domain.User, error) {
	if _, err := uuid.Parse(movieID); err != nil {
		return nil, apperrors.NewNotFound("movie", nil)
	}
	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		return nil, mapRepoError(err, "movie")
	}
	if err := s.users.AddFavorite(ctx, identity.ID, movieID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("movie already in favorites", nil)
		}
		return nil, mapRepoError(err, "user")
	}
	return s.Get(ctx, identity)
}

// RemoveFavorite removes movieID from the user's favorites. Removing a movie
// that is not a favorite is not an error.
func (s *UserService) RemoveFavorite(ctx context.Context, identity domain.Identity, movieID string) (*domain.User, error) {
	if _, err := uuid.Parse(movieID); err == nil {
		if err := s.users.RemoveFavorite(ctx, identity.ID, movieID); err != nil {
			return nil, mapRepoError(err, "user")
		}
	}
	return s.Get(ctx, identity)
}

func mapRepoError(err error, resource string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(resource+" already exists", nil)
	default:
		return apperrors.NewInternalError(err)
	}
}

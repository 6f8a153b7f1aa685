package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/movie-api/internal/auth"
	"github.com/spec-kit/movie-api/internal/domain"
	"github.com/spec-kit/movie-api/internal/events"
	"github.com/spec-kit/movie-api/internal/repository"
	apperrors "github.com/spec-kit/movie-api/pkg/util/errorutil"
)

// LoginRecorder counts login outcomes.
type LoginRecorder interface {
	RecordLogin(outcome string)
}

type noopLoginRecorder struct{}

func (noopLoginRecorder) RecordLogin(string) {}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	hasher     *auth.PasswordHasher
	tokens     *auth.TokenManager
	limiter    auth.LoginLimiter
	dispatcher events.Dispatcher
	metrics    LoginRecorder
	logger     *zap.Logger
	now        func() time.Time
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Hasher     *auth.PasswordHasher
	Tokens     *auth.TokenManager
	Limiter    auth.LoginLimiter
	Dispatcher events.Dispatcher
	Metrics    LoginRecorder
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	s := &AuthService{
		users:      deps.UserRepo,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		limiter:    deps.Limiter,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        time.Now,
	}
	if s.limiter == nil {
		s.limiter = auth.NoopLoginLimiter{}
	}
	if s.metrics == nil {
		s.metrics = noopLoginRecorder{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Birthday time.Time
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Identity domain.Identity
	Token    domain.IssuedToken
}

// Register creates a new user account with a hashed password.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return nil, apperrors.NewConflict("username already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		ID:             uuid.NewString(),
		Username:       input.Username,
		PasswordHash:   hash,
		Email:          input.Email,
		Birthday:       input.Birthday,
		FavoriteMovies: []string{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("username or email already exists", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.Event{Type: events.EventUserRegistered, UserID: user.ID, Username: user.Username})
	return user, nil
}

// Authenticate checks credentials and returns the identity. Unknown users and
// wrong passwords produce the same error; the distinction only reaches the
// audit channel.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (domain.Identity, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return domain.Identity{}, apperrors.NewBadRequest("username and password are required")
	}

	allowed, err := s.limiter.Allow(ctx, username)
	if err != nil {
		s.logger.Warn("login limiter unavailable", zap.Error(err))
	}
	if !allowed {
		s.fail(ctx, username, "", events.ReasonThrottled)
		return domain.Identity{}, apperrors.NewTooManyAttempts()
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return domain.Identity{}, apperrors.NewInternalError(err)
		}
		s.hasher.VerifyDummy(password)
		s.fail(ctx, username, "", events.ReasonUnknownUser)
		return domain.Identity{}, apperrors.NewInvalidCredentials()
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.fail(ctx, username, user.ID, events.ReasonWrongPassword)
		return domain.Identity{}, apperrors.NewInvalidCredentials()
	}

	if err := s.limiter.Reset(ctx, username); err != nil {
		s.logger.Warn("login limiter reset failed", zap.Error(err))
	}
	s.upgradeHash(ctx, user, password)

	s.metrics.RecordLogin("success")
	s.publish(ctx, events.Event{Type: events.EventLoginSucceeded, UserID: user.ID, Username: user.Username})
	return user.Identity(), nil
}

// Login authenticates and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	identity, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Identity: identity, Token: token}, nil
}

// upgradeHash re-hashes with the current cost when the stored hash is older.
func (s *AuthService) upgradeHash(ctx context.Context, user *domain.User, password string) {
	if !s.hasher.NeedsRehash(user.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn("password rehash failed", zap.String("user_id", user.ID), zap.Error(err))
		return
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Warn("password rehash not persisted", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (s *AuthService) fail(ctx context.Context, username, userID string, reason events.LoginFailureReason) {
	s.metrics.RecordLogin(string(reason))
	s.publish(ctx, events.Event{
		Type:     events.EventLoginFailed,
		UserID:   userID,
		Username: username,
		Payload:  events.LoginFailedPayload{Reason: reason},
	})
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.logger, s.now, event)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, now func() time.Time, event events.Event) {
	if dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = now()
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

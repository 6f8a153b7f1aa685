package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/movie-api/internal/auth"
	"github.com/spec-kit/movie-api/internal/domain"
	"github.com/spec-kit/movie-api/internal/events"
	"github.com/spec-kit/movie-api/internal/repository/repositorytest"
	apperrors "github.com/spec-kit/movie-api/pkg/util/errorutil"
)

func newUserFixture(t *testing.T) (*UserService, *repositorytest.Users, *auth.PasswordHasher, domain.Identity, *capturedEvents) {
	t.Helper()
	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	users := repositorytest.NewUsers()
	hash, err := hasher.Hash("Secret123!")
	require.NoError(t, err)
	alice := &domain.User{ID: "6b0f7f9e-1f7c-4d55-9a55-0b8b0f3c8a11", Username: "alice", PasswordHash: hash, Email: "alice@example.com"}
	require.NoError(t, users.Create(context.Background(), alice))

	dispatcher := events.NewInMemoryDispatcher()
	captured := &capturedEvents{}
	captured.subscribe(dispatcher, events.EventUserUpdated, events.EventUserDeleted)

	svc := NewUserService(UserDependencies{
		UserRepo:   users,
		MovieRepo:  repositorytest.NewMovies(repositorytest.SeedMovie),
		Hasher:     hasher,
		Dispatcher: dispatcher,
	})
	return svc, users, hasher, alice.Identity(), captured
}

func strPtr(s string) *string { return &s }

func TestUserService_UpdateRehashesPassword(t *testing.T) {
	svc, users, hasher, alice, captured := newUserFixture(t)
	birthday := time.Date(1991, 5, 6, 0, 0, 0, 0, time.UTC)

	updated, err := svc.Update(context.Background(), alice, UpdateUserInput{
		Password: strPtr("NewSecret1"),
		Birthday: &birthday,
	})
	require.NoError(t, err)
	assert.Equal(t, birthday, updated.Birthday)

	stored, err := users.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.True(t, hasher.Verify("NewSecret1", stored.PasswordHash))
	assert.False(t, hasher.Verify("Secret123!", stored.PasswordHash))
	assert.Equal(t, events.UserUpdatedPayload{PasswordChanged: true}, captured.last().Payload)
}

func TestUserService_UpdateUsernameConflict(t *testing.T) {
	svc, users, _, alice, _ := newUserFixture(t)
	require.NoError(t, users.Create(context.Background(), &domain.User{ID: "b", Username: "bobby", Email: "bob@example.com"}))

	_, err := svc.Update(context.Background(), alice, UpdateUserInput{Username: strPtr("bobby")})
	assert.Equal(t, apperrors.CodeConflict, apperrors.ToDomainError(err).Code)
}

func TestUserService_Favorites(t *testing.T) {
	svc, _, _, alice, _ := newUserFixture(t)
	ctx := context.Background()
	movieID := repositorytest.SeedMovie.ID

	user, err := svc.AddFavorite(ctx, alice, movieID)
	require.NoError(t, err)
	assert.Equal(t, []string{movieID}, user.FavoriteMovies)

	_, err = svc.AddFavorite(ctx, alice, movieID)
	assert.Equal(t, apperrors.CodeConflict, apperrors.ToDomainError(err).Code)

	_, err = svc.AddFavorite(ctx, alice, "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.ToDomainError(err).Code)
	_, err = svc.AddFavorite(ctx, alice, "not-a-uuid")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.ToDomainError(err).Code)

	user, err = svc.RemoveFavorite(ctx, alice, movieID)
	require.NoError(t, err)
	assert.Empty(t, user.FavoriteMovies)

	_, err = svc.RemoveFavorite(ctx, alice, movieID)
	require.NoError(t, err)
}

func TestUserService_Delete(t *testing.T) {
	svc, _, _, alice, captured := newUserFixture(t)

	require.NoError(t, svc.Delete(context.Background(), alice))
	assert.Equal(t, events.EventUserDeleted, captured.last().Type)

	_, err := svc.Get(context.Background(), alice)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.ToDomainError(err).Code)
	err = svc.Delete(context.Background(), alice)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.ToDomainError(err).Code)
}

func TestMovieService_NotFound(t *testing.T) {
	svc := NewMovieService(repositorytest.NewMovies(repositorytest.SeedMovie))
	ctx := context.Background()

	movie, err := svc.GetByTitle(ctx, "Inception")
	require.NoError(t, err)
	assert.Equal(t, repositorytest.SeedMovie.ID, movie.ID)

	genre, err := svc.GetGenre(ctx, "Science Fiction")
	require.NoError(t, err)
	assert.Equal(t, repositorytest.SeedMovie.Genre, *genre)

	_, err = svc.GetByTitle(ctx, "Missing")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.ToDomainError(err).Code)
	_, err = svc.GetDirector(ctx, "Nobody")
	assert.Equal(t, "director not found", apperrors.ToDomainError(err).Message)
}

func TestAuditService_LogsFailureReason(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventLoginFailed,
		Username: "mallory",
		Payload:  events.LoginFailedPayload{Reason: events.ReasonUnknownUser},
	}))

	entries := logs.FilterMessage("LoginFailed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "unknown_user", entries[0].ContextMap()["reason"])
	assert.Equal(t, "mallory", entries[0].ContextMap()["username"])
}

package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/movie-api/internal/api/http/handlers"
	"github.com/spec-kit/movie-api/internal/auth"
	"github.com/spec-kit/movie-api/internal/events"
	"github.com/spec-kit/movie-api/internal/observability"
	"github.com/spec-kit/movie-api/internal/repository/repositorytest"
	"github.com/spec-kit/movie-api/internal/service"
	apperrors "github.com/spec-kit/movie-api/pkg/util/errorutil"
)

type testServer struct {
	app *fiber.App
	now time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	srv := &testServer{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewTokenManager("test-secret", time.Hour, auth.WithClock(func() time.Time { return srv.now }))
	require.NoError(t, err)

	users := repositorytest.NewUsers()
	movies := repositorytest.NewMovies(repositorytest.SeedMovie)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   users,
		Hasher:     hasher,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Metrics:    metrics,
	})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   users,
		MovieRepo:  movies,
		Hasher:     hasher,
		Dispatcher: dispatcher,
	})

	app := NewApp("myflix-test")
	RegisterMiddlewares(app, zap.NewNop(), metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("myflix", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Movies:         handlers.NewMoviesHandler(service.NewMovieService(movies)),
		Metrics:        metrics.Handler(),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})
	srv.app = app
	return srv
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload.Code
}

func (s *testServer) registerAndLogin(t *testing.T, username string) string {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/users", "", map[string]string{
		"username": username,
		"password": "Secret123!",
		"email":    username + "@example.com",
		"birthday": "1990-01-02",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = s.do(t, http.MethodPost, "/login", "", map[string]string{
		"username": username,
		"password": "Secret123!",
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var login struct {
		User struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &login))
	require.Equal(t, username, login.User.Username)
	require.NotEmpty(t, login.User.ID)
	require.NotEmpty(t, login.Token)
	return login.Token
}

func TestEndToEnd_RegisterLoginProtectedCall(t *testing.T) {
	srv := newTestServer(t)
	token := srv.registerAndLogin(t, "alice")

	status, body := srv.do(t, http.MethodGet, "/movies", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), repositorytest.SeedMovie.Title)

	status, body = srv.do(t, http.MethodGet, "/movies", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, apperrors.CodeUnauthorized, errorCode(t, body))

	srv.now = srv.now.Add(time.Hour + time.Second)
	status, body = srv.do(t, http.MethodGet, "/movies", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, apperrors.CodeTokenExpired, errorCode(t, body))
}

func TestGate_RejectsBadHeaders(t *testing.T) {
	srv := newTestServer(t)
	token := srv.registerAndLogin(t, "alice")

	req := httptest.NewRequest(http.MethodGet, "/movies", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Basic "+token)
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	sig := strings.LastIndex(token, ".") + 5
	replacement := "A"
	if token[sig] == 'A' {
		replacement = "B"
	}
	tampered := token[:sig] + replacement + token[sig+1:]
	status, body := srv.do(t, http.MethodGet, "/movies", tampered, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, apperrors.CodeInvalidToken, errorCode(t, body))

	status, body = srv.do(t, http.MethodGet, "/movies", "not-a-jwt", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, apperrors.CodeInvalidToken, errorCode(t, body))
}

func TestLogin_FailuresHaveIdenticalBodies(t *testing.T) {
	srv := newTestServer(t)
	srv.registerAndLogin(t, "alice")

	wrongStatus, wrongBody := srv.do(t, http.MethodPost, "/login", "", map[string]string{"username": "alice", "password": "wrong-pass"})
	unknownStatus, unknownBody := srv.do(t, http.MethodPost, "/login", "", map[string]string{"username": "nobody", "password": "Secret123!"})

	assert.Equal(t, http.StatusBadRequest, wrongStatus)
	assert.Equal(t, wrongStatus, unknownStatus)
	assert.JSONEq(t, string(wrongBody), string(unknownBody))
	assert.JSONEq(t, `{"code":"INVALID_CREDENTIALS","message":"Invalid username or password"}`, string(wrongBody))

	status, body := srv.do(t, http.MethodPost, "/login", "", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.CodeBadRequest, errorCode(t, body))
}

func TestLogin_AcceptsLegacyFieldCasing(t *testing.T) {
	srv := newTestServer(t)
	srv.registerAndLogin(t, "alice")

	status, body := srv.do(t, http.MethodPost, "/login", "", map[string]string{"Username": "alice", "Password": "Secret123!"})
	assert.Equal(t, http.StatusOK, status, string(body))
}

func TestRegister_Validation(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, http.MethodPost, "/users", "", map[string]string{
		"username": "bob",
		"password": "Secret123!",
		"email":    "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.CodeValidationFailed, errorCode(t, body))
	assert.Contains(t, string(body), `"username"`)
	assert.Contains(t, string(body), `"email"`)

	srv.registerAndLogin(t, "alice")
	status, body = srv.do(t, http.MethodPost, "/users", "", map[string]string{
		"username": "alice",
		"password": "Secret123!",
		"email":    "other@example.com",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, apperrors.CodeConflict, errorCode(t, body))
}

func TestUsers_SelfOnlyAndFavorites(t *testing.T) {
	srv := newTestServer(t)
	token := srv.registerAndLogin(t, "alice")
	srv.registerAndLogin(t, "bobby")

	status, body := srv.do(t, http.MethodGet, "/users/alice", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(body), "password")
	assert.Contains(t, string(body), `"birthday":"1990-01-02"`)

	status, body = srv.do(t, http.MethodGet, "/users/bobby", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, apperrors.CodeForbidden, errorCode(t, body))

	favorite := "/users/alice/movies/" + repositorytest.SeedMovie.ID
	status, body = srv.do(t, http.MethodPost, favorite, token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), repositorytest.SeedMovie.ID)

	status, _ = srv.do(t, http.MethodPost, favorite, token, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = srv.do(t, http.MethodPost, "/users/alice/movies/00000000-0000-0000-0000-000000000000", token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = srv.do(t, http.MethodDelete, favorite, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"favoriteMovies":[]`)

	status, _ = srv.do(t, http.MethodDelete, favorite, token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestUsers_UpdateAndDelete(t *testing.T) {
	srv := newTestServer(t)
	token := srv.registerAndLogin(t, "alice")

	status, body := srv.do(t, http.MethodPut, "/users/alice", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.CodeBadRequest, errorCode(t, body))

	status, body = srv.do(t, http.MethodPut, "/users/alice", token, map[string]string{"email": "new@example.com", "password": "Another1!"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), "new@example.com")

	status, _ = srv.do(t, http.MethodPost, "/login", "", map[string]string{"username": "alice", "password": "Another1!"})
	assert.Equal(t, http.StatusOK, status)

	status, body = srv.do(t, http.MethodDelete, "/users/alice", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"alice was deleted."}`, string(body))
}

func TestMovies_Lookups(t *testing.T) {
	srv := newTestServer(t)
	token := srv.registerAndLogin(t, "alice")

	status, body := srv.do(t, http.MethodGet, "/movies/Inception", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), repositorytest.SeedMovie.ID)

	status, body = srv.do(t, http.MethodGet, "/genres/Science%20Fiction", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), `"name":"Science Fiction"`)

	status, body = srv.do(t, http.MethodGet, "/directors/Nobody", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperrors.CodeNotFound, errorCode(t, body))
}

func TestPublicRoutes(t *testing.T) {
	srv := newTestServer(t)

	status, _ := srv.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = srv.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)

	srv.do(t, http.MethodPost, "/login", "", map[string]string{"username": "ghost", "password": "x"})
	status, body := srv.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `myflix_login_attempts_total{outcome="unknown_user"} 1`)
}

func TestUnknownRouteIsNotFoundWithoutToken(t *testing.T) {
	srv := newTestServer(t)

	status, body := srv.do(t, http.MethodGet, "/no-such-route", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperrors.CodeNotFound, errorCode(t, body))

	status, body = srv.do(t, http.MethodGet, "/movies", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, apperrors.CodeUnauthorized, errorCode(t, body))
}

func TestErrorMiddleware_RecoversPanics(t *testing.T) {
	app := NewApp("panic-test")
	RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	app.Get("/boom", func(*fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"code":"INTERNAL_ERROR","message":"internal server error"}`, string(body))
}

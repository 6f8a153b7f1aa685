// Package repositorytest provides in-memory repositories for tests of the
// layers above the database.
package repositorytest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/movie-api/internal/domain"
	"github.com/spec-kit/movie-api/internal/repository"
)

// Users is an in-memory repository.UserRepository.
type Users struct {
	mu    sync.Mutex
	byID  map[string]*domain.User
	Calls map[string]int
}

// NewUsers returns an empty store.
func NewUsers() *Users {
	return &Users{byID: map[string]*domain.User{}, Calls: map[string]int{}}
}

var _ repository.UserRepository = (*Users)(nil)

func clone(u *domain.User) *domain.User {
	c := *u
	c.FavoriteMovies = append([]string{}, u.FavoriteMovies...)
	return &c
}

func (r *Users) conflicts(user *domain.User) bool {
	for id, existing := range r.byID {
		if id == user.ID {
			continue
		}
		if existing.Username == user.Username || (user.Email != "" && strings.EqualFold(existing.Email, user.Email)) {
			return true
		}
	}
	return false
}

func (r *Users) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["Create"]++
	if _, ok := r.byID[user.ID]; ok || r.conflicts(user) {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	r.byID[user.ID] = clone(user)
	return nil
}

func (r *Users) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["Update"]++
	existing, ok := r.byID[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.conflicts(user) {
		return repository.ErrDuplicate
	}
	user.UpdatedAt = time.Now().UTC()
	updated := clone(user)
	updated.FavoriteMovies = existing.FavoriteMovies
	r.byID[user.ID] = updated
	return nil
}

func (r *Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		return clone(u), nil
	}
	return nil, repository.ErrNotFound
}

func (r *Users) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == username {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Users) AddFavorite(_ context.Context, userID, movieID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.HasFavorite(movieID) {
		return repository.ErrDuplicate
	}
	u.FavoriteMovies = append(u.FavoriteMovies, movieID)
	return nil
}

func (r *Users) RemoveFavorite(_ context.Context, userID, movieID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := u.FavoriteMovies[:0]
	for _, id := range u.FavoriteMovies {
		if id != movieID {
			kept = append(kept, id)
		}
	}
	u.FavoriteMovies = kept
	return nil
}

// Movies is an in-memory repository.MovieRepository.
type Movies struct {
	mu     sync.Mutex
	movies []domain.Movie
}

// NewMovies returns a store holding the given movies.
func NewMovies(movies ...domain.Movie) *Movies {
	return &Movies{movies: movies}
}

var _ repository.MovieRepository = (*Movies)(nil)

func (r *Movies) List(context.Context) ([]domain.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Movie{}, r.movies...), nil
}

func (r *Movies) find(match func(domain.Movie) bool) (*domain.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movies {
		if match(m) {
			found := m
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Movies) GetByID(_ context.Context, id string) (*domain.Movie, error) {
	return r.find(func(m domain.Movie) bool { return m.ID == id })
}

func (r *Movies) GetByTitle(_ context.Context, title string) (*domain.Movie, error) {
	return r.find(func(m domain.Movie) bool { return m.Title == title })
}

func (r *Movies) GetGenre(_ context.Context, name string) (*domain.Genre, error) {
	m, err := r.find(func(m domain.Movie) bool { return m.Genre.Name == name })
	if err != nil {
		return nil, err
	}
	return &m.Genre, nil
}

func (r *Movies) GetDirector(_ context.Context, name string) (*domain.Director, error) {
	m, err := r.find(func(m domain.Movie) bool { return m.Director.Name == name })
	if err != nil {
		return nil, err
	}
	return &m.Director, nil
}

// SeedMovie is a fixture used across tests.
var SeedMovie = domain.Movie{
	ID:          "2f1c6d0e-5b1a-4c1e-9a0e-6f3b7d9a0a01",
	Title:       "Inception",
	Description: "A thief who steals corporate secrets through dream-sharing technology.",
	Genre:       domain.Genre{Name: "Science Fiction", Description: "Speculative stories built on science."},
	Director:    domain.Director{Name: "Christopher Nolan", Bio: "British-American filmmaker."},
	Actors:      []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt"},
	ImagePath:   "inception.png",
	Featured:    true,
}

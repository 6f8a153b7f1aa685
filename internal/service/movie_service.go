package service

import (
	"context"

	"github.com/spec-kit/movie-api/internal/domain"
	"github.com/spec-kit/movie-api/internal/repository"
)

// MovieService exposes catalog lookups.
type MovieService struct {
	movies repository.MovieRepository
}

// NewMovieService constructs the service.
func NewMovieService(movies repository.MovieRepository) *MovieService {
	return &MovieService{movies: movies}
}

func (s *MovieService) List(ctx context.Context) ([]domain.Movie, error) {
	movies, err := s.movies.List(ctx)
	if err != nil {
		return nil, mapRepoError(err, "movies")
	}
	return movies, nil
}

func (s *MovieService) GetByTitle(ctx context.Context, title string) (*domain.Movie, error) {
	movie, err := s.movies.GetByTitle(ctx, title)
	if err != nil {
		return nil, mapRepoError(err, "movie")
	}
	return movie, nil
}

func (s *MovieService) GetGenre(ctx context.Context, name string) (*domain.Genre, error) {
	genre, err := s.movies.GetGenre(ctx, name)
	if err != nil {
		return nil, mapRepoError(err, "genre")
	}
	return genre, nil
}

func (s *MovieService) GetDirector(ctx context.Context, name string) (*domain.Director, error) {
	director, err := s.movies.GetDirector(ctx, name)
	if err != nil {
		return nil, mapRepoError(err, "director")
	}
	return director, nil
}

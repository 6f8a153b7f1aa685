package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/movie-api/internal/domain"
)

const movieCachePrefix = "myflix:movies:"

// cachedMovieRepository serves List and GetByTitle from Redis when possible.
// Redis failures fall through to the wrapped repository.
type cachedMovieRepository struct {
	MovieRepository
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedMovieRepository wraps next with a Redis read-through cache. A
// non-positive ttl disables caching and returns next unchanged.
func NewCachedMovieRepository(next MovieRepository, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) MovieRepository {
	if ttl <= 0 || client == nil {
		return next
	}
	return &cachedMovieRepository{MovieRepository: next, client: client, ttl: ttl, logger: logger}
}

func (r *cachedMovieRepository) List(ctx context.Context) ([]domain.Movie, error) {
	key := movieCachePrefix + "all"
	var movies []domain.Movie
	if r.load(ctx, key, &movies) {
		return movies, nil
	}

	movies, err := r.MovieRepository.List(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, movies)
	return movies, nil
}

func (r *cachedMovieRepository) GetByTitle(ctx context.Context, title string) (*domain.Movie, error) {
	key := movieCachePrefix + "title:" + title
	var movie domain.Movie
	if r.load(ctx, key, &movie) {
		return &movie, nil
	}

	found, err := r.MovieRepository.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, found)
	return found, nil
}

func (r *cachedMovieRepository) load(ctx context.Context, key string, dest any) bool {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("movie cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		r.logger.Warn("movie cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (r *cachedMovieRepository) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		r.logger.Warn("movie cache write failed", zap.String("key", key), zap.Error(err))
	}
}

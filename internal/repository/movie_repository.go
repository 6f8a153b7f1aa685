package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/spec-kit/movie-api/internal/domain"
)

// MovieRepository provides read access to the movie catalog.
type MovieRepository interface {
	List(ctx context.Context) ([]domain.Movie, error)
	GetByID(ctx context.Context, id string) (*domain.Movie, error)
	GetByTitle(ctx context.Context, title string) (*domain.Movie, error)
	GetGenre(ctx context.Context, name string) (*domain.Genre, error)
	GetDirector(ctx context.Context, name string) (*domain.Director, error)
}

type movieRepository struct {
	db DBTX
}

// NewMovieRepository returns a Postgres-backed implementation.
func NewMovieRepository(db DBTX) MovieRepository {
	return &movieRepository{db: db}
}

const movieColumns = `id, title, description, genre_name, genre_description,
        director_name, director_bio, actors, image_path, featured`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanMovie reads one movie row. actors is a text[] decoded through pgtype,
// which is not safe for concurrent use, so each call site owns its map.
func scanMovie(row rowScanner, types *pgtype.Map) (*domain.Movie, error) {
	var (
		movie     domain.Movie
		imagePath sql.NullString
	)
	if err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Description,
		&movie.Genre.Name,
		&movie.Genre.Description,
		&movie.Director.Name,
		&movie.Director.Bio,
		types.SQLScanner(&movie.Actors),
		&imagePath,
		&movie.Featured,
	); err != nil {
		return nil, err
	}
	movie.ImagePath = imagePath.String
	if movie.Actors == nil {
		movie.Actors = []string{}
	}
	return &movie, nil
}

func (r *movieRepository) List(ctx context.Context) ([]domain.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies ORDER BY title`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	types := pgtype.NewMap()
	movies := []domain.Movie{}
	for rows.Next() {
		movie, err := scanMovie(rows, types)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, *movie)
	}
	return movies, rows.Err()
}

func (r *movieRepository) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id=$1`
	movie, err := scanMovie(r.db.QueryRowContext(ctx, query, id), pgtype.NewMap())
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", translateError(err))
	}
	return movie, nil
}

func (r *movieRepository) GetByTitle(ctx context.Context, title string) (*domain.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE title=$1`
	movie, err := scanMovie(r.db.QueryRowContext(ctx, query, title), pgtype.NewMap())
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", translateError(err))
	}
	return movie, nil
}

func (r *movieRepository) GetGenre(ctx context.Context, name string) (*domain.Genre, error) {
	const query = `
        SELECT genre_name, genre_description FROM movies
        WHERE genre_name=$1
        LIMIT 1`

	var genre domain.Genre
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&genre.Name, &genre.Description); err != nil {
		return nil, fmt.Errorf("get genre: %w", translateError(err))
	}
	return &genre, nil
}

func (r *movieRepository) GetDirector(ctx context.Context, name string) (*domain.Director, error) {
	const query = `
        SELECT director_name, director_bio FROM movies
        WHERE director_name=$1
        LIMIT 1`

	var director domain.Director
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&director.Name, &director.Bio); err != nil {
		return nil, fmt.Errorf("get director: %w", translateError(err))
	}
	return &director, nil
}

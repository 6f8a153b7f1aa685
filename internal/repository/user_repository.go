package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spec-kit/movie-api/internal/domain"
)

// UserRepository defines persistence access for catalog users. It is the
// credential store for the login flow.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	AddFavorite(ctx context.Context, userID, movieID string) error
	RemoveFavorite(ctx context.Context, userID, movieID string) error
}

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, password_hash, email, birthday, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, username, password_hash, email, birthday)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Email,
		nullDate(user.Birthday),
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", translateError(err))
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET username=$1, password_hash=$2, email=$3, birthday=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.PasswordHash,
		user.Email,
		nullDate(user.Birthday),
		user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update user: %w", translateError(err))
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.getOne(ctx, query, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return r.getOne(ctx, query, username)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	var (
		user     domain.User
		birthday sql.NullTime
	)
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Email,
		&birthday,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("get user: %w", translateError(err))
	}
	if birthday.Valid {
		user.Birthday = birthday.Time
	}

	favorites, err := r.listFavorites(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.FavoriteMovies = favorites
	return &user, nil
}

func (r *userRepository) listFavorites(ctx context.Context, userID string) ([]string, error) {
	const query = `
        SELECT movie_id FROM user_favorites
        WHERE user_id=$1
        ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, id)
	}
	return favorites, rows.Err()
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id=$1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) AddFavorite(ctx context.Context, userID, movieID string) error {
	const query = `
        INSERT INTO user_favorites (user_id, movie_id)
        VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, userID, movieID); err != nil {
		return fmt.Errorf("add favorite: %w", translateError(err))
	}
	return nil
}

func (r *userRepository) RemoveFavorite(ctx context.Context, userID, movieID string) error {
	const query = `
        DELETE FROM user_favorites
        WHERE user_id=$1 AND movie_id=$2`

	if _, err := r.db.ExecContext(ctx, query, userID, movieID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// nullDate stores the zero time as NULL; birthday is optional.
func nullDate(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

package domain

import "time"

// User is the domain model for registered catalog users.
type User struct {
	ID             string
	Username       string
	PasswordHash   string
	Email          string
	Birthday       time.Time
	FavoriteMovies []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Identity returns the token-safe identity of the user.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username}
}

// HasFavorite reports whether movieID is already in the user's favorites.
func (u *User) HasFavorite(movieID string) bool {
	for _, id := range u.FavoriteMovies {
		if id == movieID {
			return true
		}
	}
	return false
}

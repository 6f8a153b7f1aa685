package domain

import "time"

// Identity is the minimal authenticated subject carried inside bearer tokens.
type Identity struct {
	ID       string
	Username string
}

// IssuedToken describes a freshly minted bearer token.
type IssuedToken struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

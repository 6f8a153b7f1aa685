package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is used when no valid cost is configured.
const DefaultBcryptCost = 12

// PasswordHasher hashes and verifies passwords with bcrypt. It is safe for
// concurrent use.
type PasswordHasher struct {
	cost      int
	dummyHash []byte
}

// NewPasswordHasher builds a hasher. Costs outside bcrypt's range fall back to
// DefaultBcryptCost.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("myflix-dummy-password"), cost)
	if err != nil {
		return nil, err
	}
	return &PasswordHasher{cost: cost, dummyHash: dummy}, nil
}

// Cost returns the bcrypt cost factor in use.
func (h *PasswordHasher) Cost() int {
	return h.cost
}

// Hash hashes a plaintext password with a random salt embedded in the result.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether password matches the stored hash. Malformed hashes
// verify as false.
func (h *PasswordHasher) Verify(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// VerifyDummy spends the same work as Verify against a hash that never
// matches. Used when the username is unknown so both failure paths cost alike.
func (h *PasswordHasher) VerifyDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password+"\x00"))
}

// NeedsRehash reports whether hashed was produced with a different cost.
func (h *PasswordHasher) NeedsRehash(hashed string) bool {
	cost, err := bcrypt.Cost([]byte(hashed))
	if err != nil {
		return true
	}
	return cost != h.cost
}

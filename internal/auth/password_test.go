package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestPasswordHasher_SaltedHashesBothVerify(t *testing.T) {
	h := newTestHasher(t)

	first, err := h.Hash("Secret123!")
	require.NoError(t, err)
	second, err := h.Hash("Secret123!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("Secret123!", first))
	assert.True(t, h.Verify("Secret123!", second))
}

func TestPasswordHasher_NeverStoresPlaintext(t *testing.T) {
	h := newTestHasher(t)

	hashed, err := h.Hash("Secret123!")
	require.NoError(t, err)
	assert.NotContains(t, hashed, "Secret123!")
}

func TestPasswordHasher_Mismatch(t *testing.T) {
	h := newTestHasher(t)

	hashed, err := h.Hash("Secret123!")
	require.NoError(t, err)

	assert.False(t, h.Verify("secret123!", hashed))
	assert.False(t, h.Verify("", hashed))
}

func TestPasswordHasher_MalformedHashIsFalse(t *testing.T) {
	h := newTestHasher(t)

	assert.False(t, h.Verify("Secret123!", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("Secret123!", ""))
}

func TestPasswordHasher_InvalidCostFallsBack(t *testing.T) {
	h, err := NewPasswordHasher(bcrypt.MaxCost + 1)
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, h.Cost())
}

func TestPasswordHasher_NeedsRehash(t *testing.T) {
	h := newTestHasher(t)

	current, err := h.Hash("Secret123!")
	require.NoError(t, err)
	assert.False(t, h.NeedsRehash(current))

	older, err := bcrypt.GenerateFromPassword([]byte("Secret123!"), bcrypt.MinCost+1)
	require.NoError(t, err)
	assert.True(t, h.NeedsRehash(string(older)))
	assert.True(t, h.NeedsRehash("garbage"))
}

func TestPasswordHasher_VerifyDummyDoesNotPanic(t *testing.T) {
	h := newTestHasher(t)
	h.VerifyDummy("anything")
}

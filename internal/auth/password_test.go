package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(1)
	assert.Equal(t, bcrypt.MinCost, h.cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)

	hash, err := h.Hash("petra-2025")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, "petra-2025"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), ErrPasswordMismatch)

	err = h.Compare("not-a-hash", "petra-2025")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)

	_, err = h.Hash(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

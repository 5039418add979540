// AngelaMos | 2026
// security_test.go

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("python")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")
	assert.NotContains(t, hash, "python")

	ok, err := VerifyPassword("python", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("pythons", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordIsSalted(t *testing.T) {
	a, err := HashPassword("python")
	require.NoError(t, err)
	b, err := HashPassword("python")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyPasswordNeverComparesPlaintext(t *testing.T) {
	ok, err := VerifyPassword("janek1", "janek1")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestVerifyPasswordLegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("almighty"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, newHash, err := VerifyPasswordWithRehash("almighty", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotEmpty(t, newHash, "bcrypt hashes are upgraded to argon2id")

	ok, err = VerifyPassword("almighty", newHash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, newHash, err = VerifyPasswordWithRehash("wrong", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, newHash)
}

func TestVerifyPasswordCurrentParamsNoRehash(t *testing.T) {
	hash, err := HashPassword("python")
	require.NoError(t, err)

	ok, newHash, err := VerifyPasswordWithRehash("python", hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, newHash)
}

func TestVerifyPasswordTimingSafeMissingHash(t *testing.T) {
	ok, newHash, err := VerifyPasswordTimingSafe("anything", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, newHash)

	empty := ""
	ok, _, err = VerifyPasswordTimingSafe("anything", &empty)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashTokenStable(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}


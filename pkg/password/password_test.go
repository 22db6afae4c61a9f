package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/blogkit/pkg/password"
)

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	hash, err := password.Hash("cat")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "cat", hash)

	assert.True(t, password.Verify(hash, "cat"))
	assert.False(t, password.Verify(hash, "dog"))
}

func TestHash_SaltsAreRandom(t *testing.T) {
	t.Parallel()

	h1, err := password.Hash("cat")
	require.NoError(t, err)
	h2, err := password.Hash("cat")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "identical passwords must hash differently")
	assert.True(t, password.Verify(h1, "cat"))
	assert.True(t, password.Verify(h2, "cat"))
}

func TestHash_InvalidInputs(t *testing.T) {
	t.Parallel()

	_, err := password.Hash("")
	assert.ErrorIs(t, err, password.ErrEmptyPassword)

	_, err = password.Hash(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, password.ErrPasswordTooLong)
}

func TestVerify_GarbageHash(t *testing.T) {
	t.Parallel()

	assert.False(t, password.Verify("not-a-bcrypt-hash", "cat"))
	assert.False(t, password.Verify("", "cat"))
}

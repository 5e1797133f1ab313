package account

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	encoded := HashPassword("changeme")
	parts := strings.Split(encoded, "$")
	assert.Len(t, parts, 4)
	assert.Equal(t, "pbkdf2_sha256", parts[0])

	// the random salt makes every hash unique
	assert.NotEqual(t, encoded, HashPassword("changeme"))
}

func TestVerifyPassword(t *testing.T) {
	encoded := HashPassword("changeme")

	assert.True(t, VerifyPassword(encoded, "changeme"))
	assert.False(t, VerifyPassword(encoded, "wrong"))
	assert.False(t, VerifyPassword("", "changeme"))
	assert.False(t, VerifyPassword("md5$1$salt$hash", "changeme"))
	assert.False(t, VerifyPassword("pbkdf2_sha256$x$salt$hash", "changeme"))
}

// hashes created with an older iteration count must keep verifying
func TestVerifyPasswordLegacyIterations(t *testing.T) {
	encoded := encodeHash("changeme", "00ff00ff", 10000)
	assert.True(t, VerifyPassword(encoded, "changeme"))
	assert.False(t, VerifyPassword(encoded, "wrong"))
}

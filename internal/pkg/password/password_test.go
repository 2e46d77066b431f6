package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, Verify("correct horse battery staple", hash))
	assert.False(t, Verify("correct horse battery stable", hash))
	assert.False(t, Verify("", hash))
}

func TestHash_EmptyPassword(t *testing.T) {
	_, err := Hash("")
	assert.Error(t, err)
}

func TestVerify_EmptyHash(t *testing.T) {
	assert.False(t, Verify("anything", ""))
}

func TestHash_Salted(t *testing.T) {
	h1, err := Hash("same-password")
	assert.NoError(t, err)
	h2, err := Hash("same-password")
	assert.NoError(t, err)
	assert.NotEqual(t, h1, h2)
	assert.True(t, Verify("same-password", h1))
	assert.True(t, Verify("same-password", h2))
}

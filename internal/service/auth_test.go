package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	s := &authService{logger: zap.NewNop()}

	hash, err := s.hashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	assert.True(t, s.verifyPassword(hash, "correct horse battery staple"))
	assert.False(t, s.verifyPassword(hash, "wrong password"))
}

func TestVerifyPasswordRejectsGarbage(t *testing.T) {
	s := &authService{logger: zap.NewNop()}

	assert.False(t, s.verifyPassword("", "anything"))
	assert.False(t, s.verifyPassword("$bcrypt$whatever", "anything"))
	assert.False(t, s.verifyPassword("$argon2id$v=19$m=65536,t=1,p=4$!!!$???", "anything"))
}

func TestHashesAreSalted(t *testing.T) {
	s := &authService{logger: zap.NewNop()}

	h1, err := s.hashPassword("same password")
	require.NoError(t, err)
	h2, err := s.hashPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, s.verifyPassword(h1, "same password"))
	assert.True(t, s.verifyPassword(h2, "same password"))
}

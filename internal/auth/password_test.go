package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/event-service/internal/auth"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := auth.HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "correct horse", hash)

	require.NoError(t, auth.ComparePassword(hash, "correct horse"))
	require.ErrorIs(t, auth.ComparePassword(hash, "battery staple"), auth.ErrPasswordMismatch)
}

func TestHashPassword_OutOfRangeCostFallsBack(t *testing.T) {
	hash, err := auth.HashPassword("pw", 99)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, auth.DefaultBcryptCost, cost)
}

func TestComparePassword_MalformedHash(t *testing.T) {
	err := auth.ComparePassword("not-a-hash", "pw")
	require.Error(t, err)
	require.NotErrorIs(t, err, auth.ErrPasswordMismatch)
}

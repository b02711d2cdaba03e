package utils

import (
	"testing"
	"time"

	"pbs/src/types"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
)

func TestWeekStartOf(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2026-03-09", "2026-03-09"}, // Monday maps to itself
		{"2026-03-10", "2026-03-09"},
		{"2026-03-12", "2026-03-09"},
		{"2026-03-14", "2026-03-09"}, // Saturday
		{"2026-03-15", "2026-03-09"}, // Sunday belongs to the week before
		{"2026-03-16", "2026-03-16"}, // next Monday
	}
	for _, c := range cases {
		got, err := WeekStartOf(c.date)
		assert.NoError(t, err)
		assert.Equal(t, c.want, got.Format("2006-01-02"), "week start of %s", c.date)
		assert.Equal(t, time.Monday, got.Weekday())
	}

	_, err := WeekStartOf("14/03/2026")
	assert.Error(t, err)
}

func TestGenerateJWT(t *testing.T) {
	tokenString, err := GenerateJWT("owner@example.com", 42, string(types.ROLE_CUSTOMER))
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims := types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	assert.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "owner@example.com", claims.Username)
	assert.Equal(t, string(types.ROLE_CUSTOMER), claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

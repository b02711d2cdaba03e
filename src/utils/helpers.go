package utils

import (
	"fmt"
	"os"
	"time"

	"pbs/src/config"
	"pbs/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

// GenerateJWT issues a token for a known user id. Session issuance proper
// lives with the identity provider; this exists for local runs and tests.
func GenerateJWT(email string, userId uint, role string) (string, error) {
	claims := types.Claims{
		Username: email,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userId),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(jwtKey)
}

// ActorFromContext rebuilds the acting party from what the auth middleware
// stored on the request context.
func ActorFromContext(ctx *gin.Context) types.Actor {
	return types.Actor{
		ID:   ctx.GetUint("id"),
		Role: types.Role(ctx.GetString("role")),
	}
}

// WeekStartOf normalizes any date string to the Monday of its week.
func WeekStartOf(date string) (time.Time, error) {
	day, err := time.Parse(config.DATE_PARSE_FORMAT, date)
	if err != nil {
		return time.Time{}, err
	}
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, 1-weekday), nil
}

func IsProd() bool {
	return os.Getenv("API_ENV") == "production"
}

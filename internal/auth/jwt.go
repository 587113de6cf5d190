package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/andy327/game-service/internal/models"
)

// Claims is the bearer-token payload tying a request to a player identity.
type Claims struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// IssueToken signs a token for the given player, valid for ttl.
func IssueToken(player models.Player, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET is required")
	}
	now := time.Now().UTC()
	claims := Claims{
		ID:   player.ID.String(),
		Name: player.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   player.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a signed token and returns the player it identifies.
// Tokens with a non-UUID id are rejected.
func ParseToken(tokenString, secret string) (models.Player, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return models.Player{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return models.Player{}, fmt.Errorf("invalid token")
	}
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return models.Player{}, fmt.Errorf("invalid player id in token: %w", err)
	}
	return models.Player{ID: id, Name: claims.Name}, nil
}

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const Audience = "mediastore"

type Claims struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// NewToken signs an HS256 access token. Tokens are normally issued by the
// account service; this is used by tooling and tests.
func NewToken(secret, issuer, subject string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	cl := Claims{
		UserID: subject,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Audience:  []string{Audience},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	return token.SignedString([]byte(secret))
}

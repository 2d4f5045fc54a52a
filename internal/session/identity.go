package session

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Identity is what the header shows about the signed-in teacher. It is read
// from the token's claims without verifying the signature and is never used
// for any decision beyond display.
type Identity struct {
	Name      string
	ExpiresAt time.Time
}

func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// IdentityFromToken returns an empty Identity for tokens that are not JWTs.
func IdentityFromToken(token string) Identity {
	if token == "" {
		return Identity{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}
	}

	var id Identity
	for _, key := range []string{"name", "email", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			id.Name = v
			break
		}
	}
	if exp, ok := claims["exp"].(float64); ok {
		id.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return id
}

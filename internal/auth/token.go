package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/evcharge-agent/internal/model"
)

// SessionToken is the local HS256 JWT the agent mints for the kiosk
// UI after a successful login.  It exists so the UI works identically
// whether the login was remote or offline; it is never sent to the
// gateway.
type SessionToken struct {
	Token string    // serialized JWT
	Exp   time.Time // UTC expiration time
}

// NewSessionToken signs a session JWT for the given identity.  Claims:
// sub (identifier), role, exp and iat.
func NewSessionToken(secret, identifier string, role model.Role, ttlMin int) (SessionToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  identifier,
		"role": string(role),
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

/*
Package token signs and verifies session tokens.

A token is an HS256 JWT whose Id (jti) claim carries the durable session
record's identifier and whose Subject carries the display name it was issued
for. Verification here only proves integrity and freshness; whether the
session still exists is the session service's call.
*/
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// Issuer identifies tokens minted by this server.
const Issuer = "huddle-server"

// Claims is the JWT claim set for a session token.
type Claims struct {
	jwt.StandardClaims

	// DisplayName is the identity the session was issued for. The durable
	// session record remains authoritative; this claim is a convenience for
	// logging and non-sensitive display.
	DisplayName string `json:"display_name"`
}

// Generate signs a token binding sessionID to displayName for ttl.
func Generate(sessionID, displayName, secretKey string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        sessionID,
			Subject:   displayName,
			ExpiresAt: now.Add(ttl).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    Issuer,
		},
		DisplayName: displayName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secretKey))
}

// Parse validates the token's signature and expiry and returns its claims.
func Parse(tokenString, secretKey string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	return claims, nil
}

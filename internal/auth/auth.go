// Package auth verifies bearer tokens against the identity provider's
// signing key and carries the resolved identity through request contexts.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"taskdeck/internal/apperr"
)

// Identity is the verified caller.
type Identity struct {
	UserID uuid.UUID
}

type ctxKey struct{}

// WithIdentity returns a context carrying the verified identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by the auth middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Verifier checks tokens issued by the identity provider. Tokens are HMAC
// signed JWTs whose sub claim is the user id.
type Verifier struct {
	key []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{key: []byte(secret)}
}

// Configured reports whether a signing key is present. A missing key is a
// server misconfiguration, not an auth failure.
func (v *Verifier) Configured() bool { return len(v.key) > 0 }

// Verify resolves a bearer token to an identity. Any parse, signature or
// claim problem yields apperr.ErrUnauthenticated.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	if !v.Configured() {
		return Identity{}, &apperr.Misconfigured{Detail: "token verification key is not set"}
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: invalid token", apperr.ErrUnauthenticated)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("%w: invalid token claims", apperr.ErrUnauthenticated)
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: invalid subject claim", apperr.ErrUnauthenticated)
	}
	return Identity{UserID: userID}, nil
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("%w: missing Authorization header", apperr.ErrUnauthenticated)
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", fmt.Errorf("%w: malformed Authorization header", apperr.ErrUnauthenticated)
	}
	return token, nil
}

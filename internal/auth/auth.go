// Package auth gates admin operations behind a shared secret.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HeaderAdminSecret carries the admin secret. "Authorization: Bearer <secret>"
// is accepted too.
const HeaderAdminSecret = "X-Admin-Secret"

// Errors
var (
	ErrUnauthorized  = errors.New("admin secret missing or wrong")
	ErrAdminDisabled = errors.New("admin secret not configured")
)

// Gate checks presented admin secrets against a plain secret or a bcrypt
// hash. A hash takes precedence when both are configured.
type Gate struct {
	secret []byte
	hash   []byte
}

// NewGate creates a Gate. With neither secret nor hash every check fails
// with ErrAdminDisabled.
func NewGate(secret, secretHash string) (*Gate, error) {
	g := &Gate{}
	if secretHash != "" {
		if _, err := bcrypt.Cost([]byte(secretHash)); err != nil {
			return nil, fmt.Errorf("admin secret hash: %w", err)
		}
		g.hash = []byte(secretHash)
		return g, nil
	}
	if secret != "" {
		g.secret = []byte(secret)
	}
	return g, nil
}

// Enabled reports whether any secret is configured.
func (g *Gate) Enabled() bool {
	return len(g.hash) > 0 || len(g.secret) > 0
}

// Check verifies a presented secret.
func (g *Gate) Check(presented string) error {
	if !g.Enabled() {
		return ErrAdminDisabled
	}
	if presented == "" {
		return ErrUnauthorized
	}

	if len(g.hash) > 0 {
		if err := bcrypt.CompareHashAndPassword(g.hash, []byte(presented)); err != nil {
			return ErrUnauthorized
		}
		return nil
	}

	if subtle.ConstantTimeCompare(g.secret, []byte(presented)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// CheckRequest verifies the secret carried by r.
func (g *Gate) CheckRequest(r *http.Request) error {
	return g.Check(SecretFromRequest(r))
}

// SecretFromRequest extracts the admin secret from X-Admin-Secret or a
// Bearer token.
func SecretFromRequest(r *http.Request) string {
	if s := r.Header.Get(HeaderAdminSecret); s != "" {
		return s
	}
	authz := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authz, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// HashSecret returns a bcrypt hash suitable for admin.secret_hash.
func HashSecret(secret string) (string, error) {
	return hashSecret(secret, bcrypt.DefaultCost)
}

func hashSecret(secret string, cost int) (string, error) {
	if secret == "" {
		return "", errors.New("secret is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

// Package auth verifies the backend's HS256 access tokens and carries the
// caller's principal through request contexts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSubject    = errors.New("token has no subject")
	ErrWeakSecret   = errors.New("signing secret is too short")
)

// MinSecretLength is the shortest HS256 secret a Verifier accepts.
const MinSecretLength = 32

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleEditor  Role = "editor"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleManager, RoleUser:
		return true
	}
	return false
}

// Claims mirrors the hosted auth provider's access token.
type Claims struct {
	jwt.RegisteredClaims
	Email        string         `json:"email,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
}

// Role reads the role from user metadata first, then app metadata, and
// falls back to RoleUser for anything unknown.
func (c *Claims) Role() Role {
	for _, md := range []map[string]any{c.UserMetadata, c.AppMetadata} {
		if s, ok := md["role"].(string); ok && Role(s).Valid() {
			return Role(s)
		}
	}
	return RoleUser
}

// Principal is who is making a request. The zero value is a guest.
type Principal struct {
	Identity domain.Identity
	Email    string
	Role     Role
}

func (p Principal) IsGuest() bool {
	return p.Identity.IsGuest()
}

func (p Principal) HasRole(roles ...Role) bool {
	return !p.IsGuest() && slices.Contains(roles, p.Role)
}

type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret string) (*Verifier, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrWeakSecret, MinSecretLength)
	}
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

func (v *Verifier) Verify(tokenString string) (Principal, error) {
	if v == nil || len(v.secret) < MinSecretLength {
		return Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, ErrWeakSecret)
	}
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Principal{}, ErrNoSubject
	}

	return Principal{
		Identity: domain.NewIdentity(claims.Subject),
		Email:    claims.Email,
		Role:     claims.Role(),
	}, nil
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the request's principal, or a guest.
func FromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(principalKey{}).(Principal)
	return p
}

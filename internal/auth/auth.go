// Package auth validates bearer tokens for the sizing API.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScopeSizingRead grants access to the sizing and catalog endpoints.
const ScopeSizingRead = "sizing:read"

// Config holds signer verification parameters. Issuer and Audience are
// only checked when set.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// Claims is the verified caller identity.
type Claims struct {
	Subject   string
	Scopes    map[string]struct{}
	ExpiresAt time.Time
}

var (
	// ErrMissingToken is returned when the Authorization header is absent.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken wraps parsing/validation errors.
	ErrInvalidToken = errors.New("invalid bearer token")
	// ErrExpiredToken is returned for well-formed tokens past their expiry.
	ErrExpiredToken = errors.New("bearer token expired")
)

// scopeList accepts both a JSON array and a space separated string.
type scopeList []string

func (s *scopeList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("scopes must be a string or list: %w", err)
	}
	*s = strings.Fields(joined)
	return nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Scopes scopeList `json:"scopes"`
}

// Verifier checks HS256 tokens against one Config.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier builds a Verifier. Expiry is always required.
func NewVerifier(cfg Config) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &Verifier{secret: []byte(cfg.Secret), parser: jwt.NewParser(opts...)}
}

// Verify validates a raw token and returns its claims.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingToken
	}

	var tc tokenClaims
	_, err := v.parser.ParseWithClaims(raw, &tc, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case tc.Subject == "":
		return nil, fmt.Errorf("%w: subject required", ErrInvalidToken)
	}

	scopes := make(map[string]struct{}, len(tc.Scopes))
	for _, scope := range tc.Scopes {
		if scope != "" {
			scopes[scope] = struct{}{}
		}
	}
	return &Claims{Subject: tc.Subject, Scopes: scopes, ExpiresAt: tc.ExpiresAt.Time}, nil
}

// HasScope reports whether the claim set includes the provided scope.
func (c *Claims) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	_, ok := c.Scopes[scope]
	return ok
}

type claimsKey struct{}

// WithClaims stores claims on the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// FromContext retrieves claims stored by WithClaims.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok
}

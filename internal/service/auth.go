package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/book-catalog/internal/domain"
)

// AccessClaims are the claims read from a bearer token. Scopes may arrive as
// a permissions array (RBAC-enabled APIs) or a space-separated scope string.
type AccessClaims struct {
	Scope       string   `json:"scope,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Scopes returns the union of permissions and scope entries.
func (c *AccessClaims) Scopes() []string {
	scopes := slices.Clone(c.Permissions)
	for _, s := range strings.Fields(c.Scope) {
		if !slices.Contains(scopes, s) {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// HasAnyScope reports whether the token carries at least one of required.
// An empty required list always passes.
func (c *AccessClaims) HasAnyScope(required ...string) bool {
	if len(required) == 0 {
		return true
	}
	granted := c.Scopes()
	for _, r := range required {
		if slices.Contains(granted, r) {
			return true
		}
	}
	return false
}

// AuthConfig describes the token issuer. When HMACSecret is set tokens are
// verified with it and JWKSURL is ignored.
type AuthConfig struct {
	Issuer     string
	Audience   string
	Algorithms []string
	JWKSURL    string
	HMACSecret string
}

// AuthService verifies bearer tokens. It never issues them.
type AuthService struct {
	parser  *jwt.Parser
	keyFunc jwt.Keyfunc
}

// NewAuthService creates a new AuthService. With a JWKS URL the key set is
// fetched once and refreshed in the background until ctx is cancelled.
func NewAuthService(ctx context.Context, cfg AuthConfig) (*AuthService, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	var keyFunc jwt.Keyfunc
	switch {
	case cfg.HMACSecret != "":
		secret := []byte(cfg.HMACSecret)
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		keyFunc = func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		}
	case cfg.JWKSURL != "":
		algs := cfg.Algorithms
		if len(algs) == 0 {
			algs = []string{jwt.SigningMethodRS256.Alg()}
		}
		opts = append(opts, jwt.WithValidMethods(algs))
		jwks, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("load jwks %s: %w", cfg.JWKSURL, err)
		}
		keyFunc = jwks.Keyfunc
	default:
		return nil, errors.New("auth: either a JWKS URL or an HMAC secret is required")
	}

	return &AuthService{parser: jwt.NewParser(opts...), keyFunc: keyFunc}, nil
}

// ValidateToken parses and verifies a token string. Any failure is reported
// as domain.ErrUnauthorized.
func (s *AuthService) ValidateToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, s.keyFunc)
	if err != nil || !token.Valid {
		slog.Debug("token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// Authorize validates the token and checks that it grants one of required.
// A bad token is domain.ErrUnauthorized; a good token without a matching
// scope is domain.ErrForbidden.
func (s *AuthService) Authorize(tokenString string, required ...string) (*AccessClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.HasAnyScope(required...) {
		return claims, domain.ErrForbidden
	}
	return claims, nil
}

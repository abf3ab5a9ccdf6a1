package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAudience is the audience the identity provider stamps on user tokens.
const DefaultAudience = "authenticated"

// leeway tolerates small clock differences with the identity provider.
const leeway = 30 * time.Second

// VerifierConfig holds what is needed to check a token.
type VerifierConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// Verifier checks bearer tokens issued by the external identity provider.
// It is safe for concurrent use.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewVerifier returns a Verifier. A missing secret or issuer is not an
// error here; Verify reports ErrNotConfigured instead, so public routes
// keep working on a half-configured deployment.
func NewVerifier(cfg VerifierConfig) *Verifier {
	aud := cfg.Audience
	if aud == "" {
		aud = DefaultAudience
	}
	return &Verifier{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: aud,
	}
}

// Configured reports whether Verify can succeed at all.
func (v *Verifier) Configured() bool {
	return v != nil && len(v.secret) > 0 && v.issuer != ""
}

// Authenticate extracts the bearer token from an Authorization header value
// and verifies it.
func (v *Verifier) Authenticate(header string) (Identity, error) {
	token, err := BearerToken(header)
	if err != nil {
		return Identity{}, err
	}
	return v.Verify(token)
}

// Verify checks the signature (HS256 only), expiry, issuer and audience of
// token and returns the caller's identity.
func (v *Verifier) Verify(token string) (Identity, error) {
	if !v.Configured() {
		return Identity{}, ErrNotConfigured
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return Identity{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    claims.Role,
	}, nil
}

// BearerToken extracts the token from an Authorization header value.
// An empty header yields ErrMissingHeader; a header without a token after
// the "Bearer" scheme yields ErrMissingToken.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingHeader
	}

	scheme, token, found := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("%w: expected Bearer scheme", ErrTokenInvalid)
	}
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

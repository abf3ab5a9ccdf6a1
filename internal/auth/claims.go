package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the token claims issued by the identity provider.
// Only the fields the API reads are declared.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Identity is the authenticated caller, handed explicitly to handlers.
type Identity struct {
	Subject string
	Email   string
	Role    string
}

// TokenOptions describe a token minted by IssueToken.
type TokenOptions struct {
	Subject  string
	Email    string
	Role     string
	Issuer   string
	Audience string
	TTL      time.Duration

	// Now overrides the issue time; zero means time.Now().
	Now time.Time
}

// IssueToken signs an HS256 token shaped like the identity provider's.
// The API never issues tokens itself; this exists for tests and local tooling.
func IssueToken(secret string, opts TokenOptions) (string, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	ttl := opts.TTL
	if ttl == 0 {
		ttl = time.Hour
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   opts.Subject,
			Issuer:    opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Email: opts.Email,
		Role:  opts.Role,
	}
	if opts.Audience != "" {
		claims.Audience = jwt.ClaimStrings{opts.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

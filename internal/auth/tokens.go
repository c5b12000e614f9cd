package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrInvalidToken is returned when a token fails parsing or validation.
var ErrInvalidToken = errors.New("auth: invalid token")

// Tokens signs and parses HS256 access tokens. The users/auth backend that
// issues tokens in production shares the same secret and issuer.
type Tokens struct {
	Secret    []byte
	Issuer    string
	ClockSkew time.Duration
	Now       func() time.Time
}

func (t *Tokens) now() time.Time {
	if t != nil && t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// ParseAccessToken verifies the signature and standard claims, returning
// the subject user id.
func (t *Tokens) ParseAccessToken(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidToken
	}
	options := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256, t.Secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(t.now)),
	}
	if t.ClockSkew > 0 {
		options = append(options, jwt.WithAcceptableSkew(t.ClockSkew))
	}
	if t.Issuer != "" {
		options = append(options, jwt.WithIssuer(t.Issuer))
	}
	parsed, err := jwt.ParseString(trimmed, options...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	sub := strings.TrimSpace(parsed.Subject())
	if sub == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return sub, nil
}

// SignAccessToken issues a token for the given user id. Exposed for test
// fixtures and local development tooling.
func (t *Tokens) SignAccessToken(userID string, ttl time.Duration) (string, error) {
	now := t.now()
	builder := jwt.NewBuilder().
		Subject(userID).
		IssuedAt(now).
		Expiration(now.Add(ttl))
	if t.Issuer != "" {
		builder = builder.Issuer(t.Issuer)
	}
	token, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, t.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return string(signed), nil
}

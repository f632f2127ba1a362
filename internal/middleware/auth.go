package middleware

import (
	"crypto/rsa"
	"strings"

	"household-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	identityLocal = "identity"
	subjectLocal  = "subject"
)

// AuthConfig configures bearer-token verification. Tokens are RS256 and
// verified against PublicKeyPEM; Audience and Issuer are checked when set.
type AuthConfig struct {
	PublicKeyPEM string
	Audience     string
	Issuer       string
}

type bearerClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// BearerAuth verifies the Authorization header and resolves the caller
// identity: the token's email claim when present, else its subject. Requests
// without a valid identity never reach a handler.
func BearerAuth(cfg AuthConfig) (fiber.Handler, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
	if err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"RS256"})}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return func(c *fiber.Ctx) error {
		identity, subject, ok := resolveIdentity(c.Get(fiber.HeaderAuthorization), key, opts)
		if !ok {
			return response.Unauthorized(c)
		}
		c.Locals(identityLocal, identity)
		c.Locals(subjectLocal, subject)
		return c.Next()
	}, nil
}

func resolveIdentity(header string, key *rsa.PublicKey, opts []jwt.ParserOption) (identity, subject string, ok bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	var claims bearerClaims
	token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, prefix), &claims,
		func(*jwt.Token) (interface{}, error) { return key, nil }, opts...)
	if err != nil || !token.Valid {
		return "", "", false
	}
	identity = claims.Email
	if identity == "" {
		identity = claims.Subject
	}
	if identity == "" {
		return "", "", false
	}
	return identity, claims.Subject, true
}

// Identity returns the resolved caller identity ("" if unauthenticated).
func Identity(c *fiber.Ctx) string {
	s, _ := c.Locals(identityLocal).(string)
	return s
}

// Subject returns the token's sub claim ("" if unauthenticated or absent).
// The identity provider keys its user records on sub, not e-mail, so the
// user-info routes need it even though authorization runs on Identity.
func Subject(c *fiber.Ctx) string {
	s, _ := c.Locals(subjectLocal).(string)
	return s
}

// SetIdentity stores the caller identity in Locals. Used by tests to bypass
// token verification.
func SetIdentity(c *fiber.Ctx, identity string) {
	c.Locals(identityLocal, identity)
}

// SetSubject stores the token subject in Locals. Used by tests to bypass
// token verification.
func SetSubject(c *fiber.Ctx, subject string) {
	c.Locals(subjectLocal, subject)
}

package tokenexchange

import (
	"context"
	"errors"
	"time"

	"household-backend/internal/households"
	"household-backend/internal/pkg/apperrors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "user-service"
const tokenTTL = 15 * time.Minute

// Service exchanges an external bearer identity for a short-lived internal
// JWT scoped to one household, so downstream services can authorize on the
// household_id claim without calling back here.
type Service struct {
	Households    *households.Service
	PrivateKeyPEM string
	PublicKeyPEM  string
}

// ExchangeToken verifies the caller belongs to the household and signs an
// RS256 token carrying the email and household_id claims.
func (s *Service) ExchangeToken(ctx context.Context, user string, householdID int64, audience string) (string, error) {
	if audience == "" {
		audience = "internal"
	}

	list, err := s.Households.GetUserHouseholds(ctx, user)
	if err != nil {
		return "", err
	}
	hasAccess := false
	for _, hh := range list {
		if hh.ID == householdID {
			hasAccess = true
			break
		}
	}
	if !hasAccess {
		return "", apperrors.Forbidden("User does not have access to this household")
	}

	if s.PrivateKeyPEM == "" {
		return "", errors.New("INTERNAL_JWT_PRIVATE_KEY is not set")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(s.PrivateKeyPEM))
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"email":        user,
		"household_id": householdID,
		"iss":          issuer,
		"aud":          audience,
		"iat":          now.Unix(),
		"exp":          now.Add(tokenTTL).Unix(),
		"jti":          uuid.New().String(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
}

// PublicKey returns the PEM clients use to verify exchanged tokens.
func (s *Service) PublicKey() (string, error) {
	if s.PublicKeyPEM == "" {
		return "", errors.New("INTERNAL_JWT_PUBLIC_KEY is not set")
	}
	return s.PublicKeyPEM, nil
}

// Package auth issues and validates the signed operator tokens that guard
// the admin endpoints. There are no user accounts; tokens are minted out of
// band for operators and CI jobs.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenExpiry is how long operator tokens are valid. Short enough that a
// leaked token ages out quickly; minting a fresh one is cheap.
const TokenExpiry = 1 * time.Hour

// Predefined token errors.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// Claims are the claims carried by operator tokens.
type Claims struct {
	jwt.RegisteredClaims
}

// Service signs and validates operator tokens.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

// Config holds configuration for the token service.
type Config struct {
	// SigningKey is the HS256 secret.
	SigningKey string

	// Issuer is the issuer claim (e.g. "https://api.buurtcheck.nl").
	Issuer string

	// Audience is the audience claim (e.g. "buurtcheck-admin").
	Audience string
}

// NewService creates a token service.
func NewService(cfg Config) *Service {
	return &Service{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
	}
}

// IssueToken mints a token for the named operator.
func (s *Service) IssueToken(subject string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(TokenExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// ValidateToken validates a token and returns the operator subject.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// internal/adapters/auth/jwt.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
)

// ErrInvalidToken wraps every token validation failure
var ErrInvalidToken = errors.New("invalid token")

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Claims identify an employee. Subject carries the employee id.
type Claims struct {
	jwt.RegisteredClaims
	Username string          `json:"usr,omitempty"`
	Position domain.Position `json:"pos"`
}

// TokenService issues and validates HS256 bearer tokens.
type TokenService struct {
	config JWTConfig
	now    func() time.Time
}

// NewTokenService creates a new token service.
func NewTokenService(config JWTConfig) *TokenService {
	return &TokenService{config: config, now: time.Now}
}

// Issue signs a token for the employee
func (s *TokenService) Issue(e *domain.Employee) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.config.TTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   e.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Username: e.Username,
		Position: e.Position,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses a token and returns the principal it names
func (s *TokenService) Validate(tokenString string) (domain.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return domain.Principal{}, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: subject is not an employee id", ErrInvalidToken)
	}
	if !claims.Position.Valid() {
		return domain.Principal{}, fmt.Errorf("%w: unknown position %q", ErrInvalidToken, claims.Position)
	}

	return domain.Principal{
		EmployeeID: id,
		Username:   claims.Username,
		Position:   claims.Position,
	}, nil
}

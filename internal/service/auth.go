package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pageza/nocapcooking/backend/internal/types"
)

var (
	ErrMissingSecret = errors.New("jwt secret is not configured")
	ErrInvalidToken  = errors.New("invalid token")
	ErrNotAdmin      = errors.New("token does not grant admin access")
)

// DefaultTokenTTL is the lifetime of tokens minted without an explicit TTL.
const DefaultTokenTTL = 24 * time.Hour

// TokenService mints and validates the HS256 tokens guarding the admin
// endpoints. The catalog itself is public; there are no user accounts.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService creates a new TokenService instance
func NewTokenService(secret, issuer string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// GenerateToken signs an admin token for subject valid for ttl.
func (s *TokenService) GenerateToken(subject string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := s.now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: types.RoleAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses tokenString and returns its claims when the signature,
// issuer and expiry check out and the role is admin.
func (s *TokenService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	if len(s.secret) == 0 {
		return nil, ErrMissingSecret
	}

	claims := &types.TokenClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return claims, nil
}

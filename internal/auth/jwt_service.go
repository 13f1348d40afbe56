package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"hackathon/internal/model"
)

var (
	// ErrTokenInvalid covers malformed tokens and bad signatures.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned for a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrWrongRole is returned for a valid token minted for another trust domain.
	ErrWrongRole = errors.New("token not valid for this role")
)

// Claims represents JWT claims.
type Claims struct {
	UserID string     `json:"userId"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTService handles role-scoped token generation and validation.
// Participant and admin tokens are signed with different secrets.
type JWTService struct {
	secrets map[model.Role][]byte
	expiry  time.Duration
	now     func() time.Time
}

// NewJWTService creates a JWT service with one secret per role.
func NewJWTService(userSecret, adminSecret string, expiry time.Duration) *JWTService {
	return &JWTService{
		secrets: map[model.Role][]byte{
			model.RoleParticipant: []byte(userSecret),
			model.RoleAdmin:       []byte(adminSecret),
		},
		expiry: expiry,
		now:    time.Now,
	}
}

// GenerateToken signs a token for subjectID with the secret of role.
func (s *JWTService) GenerateToken(subjectID string, role model.Role) (string, error) {
	secret, ok := s.secrets[role]
	if !ok {
		return "", fmt.Errorf("no signing secret for role %q", role)
	}
	now := s.now()
	claims := &Claims{
		UserID: subjectID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        generateTokenID(),
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken verifies tokenString against the secret of expected.
// A token that only verifies under another role's secret yields ErrWrongRole.
func (s *JWTService) ValidateToken(tokenString string, expected model.Role) (*Claims, error) {
	secret, ok := s.secrets[expected]
	if !ok {
		return nil, ErrWrongRole
	}

	claims, err := s.parse(tokenString, secret)
	switch {
	case err == nil:
		if claims.Role != expected {
			return nil, ErrWrongRole
		}
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		for role, other := range s.secrets {
			if role == expected {
				continue
			}
			if _, otherErr := s.parse(tokenString, other); otherErr == nil {
				return nil, ErrWrongRole
			}
		}
	}
	return nil, ErrTokenInvalid
}

func (s *JWTService) parse(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// generateTokenID generates a unique token ID.
func generateTokenID() string {
	return uuid.New().String()
}

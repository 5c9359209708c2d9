package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/selimcan/tasktracker/internal/models"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrWrongTokenUse = errors.New("token used for the wrong purpose")
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

type Claims struct {
	UserID    uint64          `json:"user_id"`
	Email     string          `json:"email"`
	Role      models.RoleCode `json:"role,omitempty"`
	TokenType TokenType       `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is the credential pair handed out at login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// GenerateToken signs a token of the given type for a user.
func GenerateToken(user *models.User, tokenType TokenType, secretKey string, expiresIn time.Duration) (string, error) {
	now := time.Now()

	var role models.RoleCode
	if user.UserType != nil {
		role = user.UserType.Code
	}

	claims := &Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

// GeneratePair issues the short-lived access and longer-lived refresh tokens.
func GeneratePair(user *models.User, secretKey string, accessTTL, refreshTTL time.Duration) (*TokenPair, error) {
	access, err := GenerateToken(user, TokenTypeAccess, secretKey, accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := GenerateToken(user, TokenTypeRefresh, secretKey, refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// ValidateToken parses a token, verifies the signature and checks that it is
// of the expected type.
func ValidateToken(tokenString, secretKey string, expected TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return []byte(secretKey), nil
		},
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != expected {
		return nil, ErrWrongTokenUse
	}

	return claims, nil
}

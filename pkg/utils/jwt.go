package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims carries the authenticated identity extracted from a verified
// access token.
type TokenClaims struct {
	UserID uuid.UUID
	Role   string
}

// GenerateAccessToken signs an HS256 JWT with sub/role/exp/iat claims.
func GenerateAccessToken(cfg JWTConfig, userID uuid.UUID, role string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(cfg.ExpiryHours) * time.Hour)

	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}

	return signed, exp, nil
}

// VerifyAccessToken parses and validates a signed token string.
func VerifyAccessToken(secret, tokenStr string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid access token")
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}

	role, _ := claims["role"].(string)

	return &TokenClaims{UserID: userID, Role: role}, nil
}

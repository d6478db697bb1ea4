package utils

import (
	"errors"
	"strconv"
	"time"

	"quoteflow-backend/shared/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	SalesUnitID string `json:"sales_unit_id,omitempty"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	cfg := config.GetConfig()
	if cfg.JWTSecret == "" {
		return []byte("fallback-secret-key-for-development")
	}
	return []byte(cfg.JWTSecret)
}

// GetJWTExpireDuration gets JWT expiration duration from config
func GetJWTExpireDuration() time.Duration {
	cfg := config.GetConfig()
	hours, err := strconv.Atoi(cfg.JWTExpireHours)
	if err != nil || hours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(hours) * time.Hour
}

// GetJWTRefreshExpireDuration gets JWT refresh token expiration duration from config
func GetJWTRefreshExpireDuration() time.Duration {
	cfg := config.GetConfig()
	days, err := strconv.Atoi(cfg.JWTRefreshExpireDays)
	if err != nil || days <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(days) * 24 * time.Hour
}

// GenerateJWT generates an access token for the user
func GenerateJWT(userID uuid.UUID, email, role string, salesUnitID *uuid.UUID) (string, error) {
	claims := Claims{
		UserID: userID.String(),
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(GetJWTExpireDuration())),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	if salesUnitID != nil {
		claims.SalesUnitID = salesUnitID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// GenerateRefreshJWT generates a refresh token for the user
func GenerateRefreshJWT(userID uuid.UUID, email string) (string, error) {
	claims := Claims{
		UserID: userID.String(),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(GetJWTRefreshExpireDuration())),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// ValidateJWT validates a token and returns its claims
func ValidateJWT(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return jwtSecret(), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

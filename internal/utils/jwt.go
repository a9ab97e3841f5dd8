package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	jwtKey               []byte
	accessExpireSeconds  int64 = 86400
	refreshExpireSeconds int64 = 604800
)

// Claims carried by both access and refresh tokens.
type Claims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// SetJWTSecret sets the HMAC signing key. Secrets shorter than 32 bytes
// are expanded deterministically so HS256 always gets a full-size key.
func SetJWTSecret(secret string) {
	key := []byte(secret)
	if len(key) > 0 && len(key) < 32 {
		expanded := make([]byte, 32)
		copy(expanded, key)
		for i := len(key); i < 32; i++ {
			expanded[i] = key[i%len(key)] ^ byte(i)
		}
		key = expanded
	}
	jwtKey = key
}

// SetJWTExpiry configures access and refresh token lifetimes in seconds.
func SetJWTExpiry(access, refresh int64) {
	if access > 0 {
		accessExpireSeconds = access
	}
	if refresh > 0 {
		refreshExpireSeconds = refresh
	}
}

// AccessExpireSeconds returns the configured access token lifetime.
func AccessExpireSeconds() int64 { return accessExpireSeconds }

// GenerateAccessToken issues a short-lived access token.
func GenerateAccessToken(userID uint, username string) (string, error) {
	return generateToken(userID, username, TokenTypeAccess, time.Duration(accessExpireSeconds)*time.Second)
}

// GenerateRefreshToken issues a long-lived refresh token.
func GenerateRefreshToken(userID uint, username string) (string, error) {
	return generateToken(userID, username, TokenTypeRefresh, time.Duration(refreshExpireSeconds)*time.Second)
}

func generateToken(userID uint, username, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

// ParseToken validates signature and expiry and returns the claims.
func ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// TokenRemainingValidity returns how long the token is still valid for,
// or zero if it cannot be parsed or has expired.
func TokenRemainingValidity(tokenString string) time.Duration {
	claims, err := ParseToken(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}

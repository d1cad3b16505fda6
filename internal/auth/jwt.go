package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 访问令牌携带的固定结构：subject 为邮箱，外加数字用户 ID
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService 签发和解析访问令牌
type TokenService struct {
	secret    []byte
	expiresIn time.Duration
}

// NewTokenService 创建令牌服务
func NewTokenService(secret string, expiresIn time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("JWT secret must not be empty")
	}
	if expiresIn <= 0 {
		expiresIn = 24 * time.Hour
	}
	return &TokenService{
		secret:    []byte(secret),
		expiresIn: expiresIn,
	}, nil
}

// Issue 签发 HS256 令牌，有效期从当前时间起算
func (s *TokenService) Issue(email string, userID uint) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Decode 验证签名和有效期。任何失败都返回 nil，调用方按未认证处理。
func (s *TokenService) Decode(tokenString string) *Claims {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	return claims
}

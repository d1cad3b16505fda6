package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt 只使用前 72 个字节，超出部分显式截断
const maxPasswordBytes = 72

// HashPassword 使用 bcrypt 哈希密码，返回可直接入库的编码串
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncate(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword 比较明文密码和存储的哈希值
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(password)) == nil
}

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

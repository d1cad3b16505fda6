package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- 测试密码哈希 ---

// TestHashPassword_Roundtrip 哈希后能用原始密码验证
func TestHashPassword_Roundtrip(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, CheckPassword("s3cret-password", hash))
	assert.False(t, CheckPassword("wrong-password", hash))
}

// TestHashPassword_Salted 相同密码两次哈希结果不同
func TestHashPassword_Salted(t *testing.T) {
	hash1, err := HashPassword("same-password")
	assert.NoError(t, err)
	hash2, err := HashPassword("same-password")
	assert.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
	assert.True(t, CheckPassword("same-password", hash1))
	assert.True(t, CheckPassword("same-password", hash2))
}

// TestHashPassword_LongPassword 超过 72 字节的密码按前 72 字节处理
func TestHashPassword_LongPassword(t *testing.T) {
	long := strings.Repeat("a", 100)
	hash, err := HashPassword(long)
	assert.NoError(t, err)

	assert.True(t, CheckPassword(long, hash))
	// bcrypt 只看前 72 字节，前缀相同的超长密码等价
	assert.True(t, CheckPassword(strings.Repeat("a", 72)+"bbbb", hash))
}

// TestCheckPassword_EmptyInputs 空密码和空哈希不会 panic
func TestCheckPassword_EmptyInputs(t *testing.T) {
	assert.False(t, CheckPassword("", ""))
	assert.False(t, CheckPassword("password", ""))

	hash, err := HashPassword("")
	assert.NoError(t, err)
	assert.True(t, CheckPassword("", hash))
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAddr 监听地址拼装和默认值
func TestAddr(t *testing.T) {
	cfg := &Config{ServerHost: "127.0.0.1", ServerPort: 9000}
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())

	cfg = &Config{}
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
}

// TestAllowOrigins CSV 解析，忽略空白项
func TestAllowOrigins(t *testing.T) {
	cfg := &Config{CORSAllowOrigins: "http://localhost:5173, http://frontend:80 ,"}
	assert.Equal(t, []string{"http://localhost:5173", "http://frontend:80"}, cfg.AllowOrigins())

	cfg = &Config{CORSAllowOrigins: ""}
	assert.Empty(t, cfg.AllowOrigins())
}

// TestInitConfig 加载默认配置不报错
func TestInitConfig(t *testing.T) {
	InitConfig()
	cfg := Get()

	assert.NotNil(t, cfg)
	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, "local", cfg.StorageType)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Greater(t, cfg.UploadMaxMB, 0)
}

package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

// Config 扁平化配置结构体
type Config struct {
	// 服务器配置
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`

	// CORS 配置
	CORSAllowOrigins string `mapstructure:"cors_allow_origins"`

	// 数据库配置
	DBType            string        `mapstructure:"db_type"`
	DBHost            string        `mapstructure:"db_host"`
	DBPort            int           `mapstructure:"db_port"`
	DBUsername        string        `mapstructure:"db_username"`
	DBPassword        string        `mapstructure:"db_password"`
	DBName            string        `mapstructure:"db_name"`
	DBFilePath        string        `mapstructure:"db_file_path"`
	DBMaxOpenConns    int           `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int           `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime int           `mapstructure:"db_conn_max_lifetime"`
	DBWaitMaxRetries  int           `mapstructure:"db_wait_max_retries"`
	DBWaitDelay       time.Duration `mapstructure:"db_wait_delay"`

	// JWT 配置
	JWTSecret    string        `mapstructure:"jwt_secret"`
	JWTExpiresIn time.Duration `mapstructure:"jwt_expires_in"`

	// 上传存储配置
	StorageType string `mapstructure:"storage_type"`
	UploadDir   string `mapstructure:"upload_dir"`
	UploadMaxMB int    `mapstructure:"upload_max_mb"`

	MinioEndpoint        string `mapstructure:"minio_endpoint"`
	MinioAccessKeyID     string `mapstructure:"minio_access_key_id"`
	MinioSecretAccessKey string `mapstructure:"minio_secret_access_key"`
	MinioBucketName      string `mapstructure:"minio_bucket_name"`
	MinioUseSSL          bool   `mapstructure:"minio_use_ssl"`

	WebDAVURL      string `mapstructure:"webdav_url"`
	WebDAVUsername string `mapstructure:"webdav_username"`
	WebDAVPassword string `mapstructure:"webdav_password"`
	WebDAVRootPath string `mapstructure:"webdav_root_path"`

	// 限流配置
	RateLimitAuthRPS    float64       `mapstructure:"rate_limit_auth_rps"`
	RateLimitAuthBurst  int           `mapstructure:"rate_limit_auth_burst"`
	RateLimitExpireTime time.Duration `mapstructure:"rate_limit_expire_time"`

	// 并发限制
	MaxConcurrentRequests int64 `mapstructure:"max_concurrent_requests"`
}

// InitConfig Initialize configuration
func InitConfig() {
	once.Do(func() {
		loadConfig()
	})
}

func Get() *Config {
	return &globalConfig
}

// loadConfig Core configuration loading
func loadConfig() {
	setDefaults()

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "Info: .env file not found, using defaults and environment variables")
	} else {
		fmt.Fprintln(os.Stderr, "Info: Loaded configuration from .env file")
	}

	viper.AutomaticEnv()
	for _, key := range viper.AllKeys() {
		viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: Unable to unmarshal config, %v\n", err)
		os.Exit(1)
	}
}

// setDefaults 设置默认值
func setDefaults() {
	// 服务器配置默认值
	viper.SetDefault("server_host", "0.0.0.0")
	viper.SetDefault("server_port", 8000)
	viper.SetDefault("server_read_timeout", "15s")
	viper.SetDefault("server_write_timeout", "30s")
	viper.SetDefault("server_idle_timeout", "120s")

	// 前端开发地址
	viper.SetDefault("cors_allow_origins", "http://localhost:5173,http://localhost:3000,http://frontend:80")

	// 数据库配置默认值
	viper.SetDefault("db_type", "postgres")
	viper.SetDefault("db_host", "localhost")
	viper.SetDefault("db_port", 5432)
	viper.SetDefault("db_username", "emotion_user")
	viper.SetDefault("db_password", "emotion123")
	viper.SetDefault("db_name", "emotion_ai_db")
	viper.SetDefault("db_file_path", "")
	viper.SetDefault("db_max_open_conns", 15)
	viper.SetDefault("db_max_idle_conns", 5)
	viper.SetDefault("db_conn_max_lifetime", 3600)
	viper.SetDefault("db_wait_max_retries", 30)
	viper.SetDefault("db_wait_delay", "2s")

	// JWT 配置默认值
	viper.SetDefault("jwt_secret", "SUPER_SECRET_KEY_123")
	viper.SetDefault("jwt_expires_in", "24h")

	// 上传存储配置默认值
	viper.SetDefault("storage_type", "local")
	viper.SetDefault("upload_dir", "./data/uploads")
	viper.SetDefault("upload_max_mb", 10)

	viper.SetDefault("minio_endpoint", "")
	viper.SetDefault("minio_access_key_id", "")
	viper.SetDefault("minio_secret_access_key", "")
	viper.SetDefault("minio_bucket_name", "emotion-captures")
	viper.SetDefault("minio_use_ssl", false)

	viper.SetDefault("webdav_url", "")
	viper.SetDefault("webdav_username", "")
	viper.SetDefault("webdav_password", "")
	viper.SetDefault("webdav_root_path", "")

	// 限流配置默认值
	viper.SetDefault("rate_limit_auth_rps", 2.0)
	viper.SetDefault("rate_limit_auth_burst", 10)
	viper.SetDefault("rate_limit_expire_time", "10m")

	viper.SetDefault("max_concurrent_requests", 100)
}

// Addr 返回监听地址，格式为 "host:port"
func (c *Config) Addr() string {
	host := c.ServerHost
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.ServerPort
	if port == 0 {
		port = 8000
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// AllowOrigins 返回 CORS 允许的来源列表
func (c *Config) AllowOrigins() []string {
	parts := strings.Split(c.CORSAllowOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MaxCatalogPageSize 是分类接口单页的上限
const MaxCatalogPageSize = 50

// Config stores the application configuration.
type Config struct {
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// 数据库配置
	DBDriver   string `env:"DB_DRIVER" envDefault:"mysql"` // mysql 或 sqlite
	DBHost     string `env:"DB_HOST" envDefault:"127.0.0.1"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`
	DBUser     string `env:"DB_USER" envDefault:"root"`
	DBPassword string `env:"DB_PASSWORD"` // For password, better not to have a hardcoded default
	DBName     string `env:"DB_NAME" envDefault:"tunelist"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"tunelist.db"`

	// Redis配置
	RedisHost     string `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"` // 默认无密码
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// TokenCache 决定 catalog token 存放位置: memory 或 redis
	TokenCache string `env:"TOKEN_CACHE" envDefault:"memory"`

	JWTSecret string        `env:"JWT_SECRET,notEmpty"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	// Catalog (genre vocabulary) provider
	CatalogValidation   bool          `env:"CATALOG_VALIDATION" envDefault:"true"`
	CatalogClientID     string        `env:"CATALOG_CLIENT_ID"`
	CatalogClientSecret string        `env:"CATALOG_CLIENT_SECRET"`
	CatalogTokenURL     string        `env:"CATALOG_TOKEN_URL" envDefault:"https://accounts.spotify.com/api/token"`
	CatalogAPIURL       string        `env:"CATALOG_API_URL" envDefault:"https://api.spotify.com/v1"`
	CatalogPageSize     int           `env:"CATALOG_PAGE_SIZE" envDefault:"50"`
	CatalogTimeout      time.Duration `env:"CATALOG_TIMEOUT" envDefault:"10s"`

	// 日志配置
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"100"` // MB
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAge     int    `env:"LOG_MAX_AGE" envDefault:"30"` // days
	LogCompress   bool   `env:"LOG_COMPRESS" envDefault:"true"`

	// MinIO 配置，仅 backup 命令使用
	MinioEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"127.0.0.1:9000"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"tunelist-backups"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	MinioRegion    string `env:"MINIO_REGION" envDefault:"us-east-1"`
}

// CatalogEnabled reports whether genres should be checked against the catalog provider.
func (c *Config) CatalogEnabled() bool {
	return c.CatalogValidation && c.CatalogClientID != ""
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() (*Config, error) {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want mysql or sqlite)", c.DBDriver)
	}
	switch c.TokenCache {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported TOKEN_CACHE %q (want memory or redis)", c.TokenCache)
	}
	if c.CatalogPageSize <= 0 || c.CatalogPageSize > MaxCatalogPageSize {
		c.CatalogPageSize = MaxCatalogPageSize
	}
	if c.CatalogEnabled() && c.CatalogClientSecret == "" {
		return fmt.Errorf("CATALOG_CLIENT_SECRET is required when CATALOG_CLIENT_ID is set")
	}
	return nil
}

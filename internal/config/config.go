package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Coins     CoinsConfig     `mapstructure:"coins"`
	Limits    LimitsConfig    `mapstructure:"limits"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

type CoinsConfig struct {
	// Largest absolute amount a single ledger entry may carry.
	MaxAmount       float64 `mapstructure:"max_amount"`
	AttendanceAward float64 `mapstructure:"attendance_award"`
	ReviewMax       float64 `mapstructure:"review_max"`
}

type LimitsConfig struct {
	MaxGroups           int   `mapstructure:"max_groups"`
	MaxStudentsPerGroup int   `mapstructure:"max_students_per_group"`
	AvatarMaxBytes      int64 `mapstructure:"avatar_max_bytes"`
}

type RateLimitConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	LoginPerMinute  int  `mapstructure:"login_per_minute"`
	CoinsPerMinute  int  `mapstructure:"coins_per_minute"`
	ExportPerMinute int  `mapstructure:"export_per_minute"`
	GlobalPerMinute int  `mapstructure:"global_per_minute"`
}

type StorageConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	// Base URL for serving stored objects, e.g. a CDN or the MinIO endpoint.
	PublicURL string `mapstructure:"public_url"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Pretty  bool   `mapstructure:"pretty"`
	NoColor bool   `mapstructure:"no_color"`
	File    string `mapstructure:"file"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

func Load() (*Config, error) {
	// Local development keeps secrets in .env; absence is fine.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters")
	}
	if c.Limits.MaxGroups < 1 || c.Limits.MaxStudentsPerGroup < 1 {
		return fmt.Errorf("limits must be positive")
	}
	if c.Coins.MaxAmount <= 0 {
		return fmt.Errorf("coins.max_amount must be positive")
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "10s")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "robocoin")
	viper.SetDefault("database.password", "robocoin")
	viper.SetDefault("database.name", "robocoin")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")

	// Development-only fallback, overridden via AUTH_JWT_SECRET in any real deployment.
	viper.SetDefault("auth.jwt_secret", "dev-secret-change-me-before-deploy!!")
	viper.SetDefault("auth.token_ttl", "168h")
	viper.SetDefault("auth.bcrypt_cost", 10)

	viper.SetDefault("coins.max_amount", 1000)
	viper.SetDefault("coins.attendance_award", 1)
	viper.SetDefault("coins.review_max", 100)

	viper.SetDefault("limits.max_groups", 6)
	viper.SetDefault("limits.max_students_per_group", 12)
	viper.SetDefault("limits.avatar_max_bytes", 512000)

	viper.SetDefault("ratelimit.enabled", true)
	viper.SetDefault("ratelimit.login_per_minute", 5)
	viper.SetDefault("ratelimit.coins_per_minute", 30)
	viper.SetDefault("ratelimit.export_per_minute", 5)
	viper.SetDefault("ratelimit.global_per_minute", 100)

	viper.SetDefault("storage.enabled", false)
	viper.SetDefault("storage.endpoint", "localhost:9000")
	viper.SetDefault("storage.access_key", "minioadmin")
	viper.SetDefault("storage.secret_key", "minioadmin")
	viper.SetDefault("storage.bucket", "avatars")
	viper.SetDefault("storage.region", "us-east-1")
	viper.SetDefault("storage.use_ssl", false)
	viper.SetDefault("storage.public_url", "http://localhost:9000")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.pretty", false)
	viper.SetDefault("logging.no_color", false)
	viper.SetDefault("logging.file", "")

	viper.SetDefault("sentry.dsn", "")
	viper.SetDefault("sentry.environment", "development")

	viper.SetDefault("metrics.enabled", true)

	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"})
	viper.SetDefault("cors.exposed_headers", []string{"Link"})
	viper.SetDefault("cors.allow_credentials", true)
	viper.SetDefault("cors.max_age", 300)
}

package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig   `mapstructure:"session"`
	Content   ContentConfig   `mapstructure:"content"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Runtime flag set from the command line, not the config file.
	MigrateOnly bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig controls the opaque-token session backend. Lifetime applies
// to a plain login; RememberLifetime applies when the client asks for a
// durable "remember me" session.
type SessionConfig struct {
	LifetimeHours         int  `mapstructure:"lifetime_hours"`
	RememberLifetimeHours int  `mapstructure:"remember_lifetime_hours"`
	CookieSecure          bool `mapstructure:"cookie_secure"`

	// Derived at load time.
	Lifetime         time.Duration `mapstructure:"-"`
	RememberLifetime time.Duration `mapstructure:"-"`
}

// ContentConfig describes the statically served book. TotalChapters feeds
// the overall-progress denominator; it must track the shipped chapter count.
type ContentConfig struct {
	TotalChapters int `mapstructure:"total_chapters"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("BOOK_PLATFORM")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")
	viper.BindEnv("server.port", "SERVER_PORT")

	// Session
	viper.BindEnv("session.lifetime_hours", "SESSION_LIFETIME_HOURS")
	viper.BindEnv("session.cookie_secure", "SESSION_COOKIE_SECURE")

	// Content
	viper.BindEnv("content.total_chapters", "CONTENT_TOTAL_CHAPTERS")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Session.LifetimeHours <= 0 {
		cfg.Session.LifetimeHours = 7 * 24
	}
	if cfg.Session.RememberLifetimeHours <= 0 {
		cfg.Session.RememberLifetimeHours = 30 * 24
	}
	cfg.Session.Lifetime = time.Duration(cfg.Session.LifetimeHours) * time.Hour
	cfg.Session.RememberLifetime = time.Duration(cfg.Session.RememberLifetimeHours) * time.Hour

	if cfg.Content.TotalChapters < 1 {
		return nil, fmt.Errorf("content.total_chapters must be at least 1, got %d", cfg.Content.TotalChapters)
	}

	if cfg.Server.Mode == "release" && !cfg.Session.CookieSecure {
		return nil, fmt.Errorf("session.cookie_secure must be enabled in release mode")
	}

	return &cfg, nil
}

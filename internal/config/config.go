package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	CORSAllowOrigins  string
	SessionLifetime   time.Duration
	SessionCookieName string
	AdminCookieName   string
	PasswordMinLength int
	DashboardCacheTTL time.Duration
	AdminUsername     string
	AdminPassword     string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CODELAB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Code Lab API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("session.lifetime", "24h")
	v.SetDefault("session.cookie", "session_token")
	v.SetDefault("admin.cookie", "dashboard_session")
	v.SetDefault("password.min_length", 6)
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("cors.allow_origins", "*")

	lifetime, err := time.ParseDuration(v.GetString("session.lifetime"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid session lifetime: %w", err)
	}

	ttl, err := time.ParseDuration(v.GetString("dashboard.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		CORSAllowOrigins:  v.GetString("cors.allow_origins"),
		SessionLifetime:   lifetime,
		SessionCookieName: v.GetString("session.cookie"),
		AdminCookieName:   v.GetString("admin.cookie"),
		PasswordMinLength: v.GetInt("password.min_length"),
		DashboardCacheTTL: ttl,
		AdminUsername:     v.GetString("admin.username"),
		AdminPassword:     v.GetString("admin.password"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.PasswordMinLength <= 0 {
		cfg.PasswordMinLength = 6
	}

	return cfg, nil
}

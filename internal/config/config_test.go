package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("CODELAB_DATABASE_URL", "postgres://localhost:5432/codelab")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "Code Lab API", cfg.AppName)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 24*time.Hour, cfg.SessionLifetime)
	require.Equal(t, 5*time.Minute, cfg.DashboardCacheTTL)
	require.Equal(t, "session_token", cfg.SessionCookieName)
	require.Equal(t, "dashboard_session", cfg.AdminCookieName)
	require.Equal(t, 6, cfg.PasswordMinLength)
	require.Equal(t, "*", cfg.CORSAllowOrigins)
	require.Equal(t, "admin", cfg.AdminUsername)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("CODELAB_DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidSessionLifetime(t *testing.T) {
	t.Setenv("CODELAB_DATABASE_URL", "postgres://localhost:5432/codelab")
	t.Setenv("CODELAB_SESSION_LIFETIME", "yesterday")

	_, err := Load()
	require.Error(t, err)
}

func TestHTTPAddressKeepsExplicitColon(t *testing.T) {
	cfg := Config{AppPort: ":9090"}
	require.Equal(t, ":9090", cfg.HTTPAddress())
}

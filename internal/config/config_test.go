package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)

	cfg := Load(v)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "schoolsite.db", cfg.DatabasePath)
	assert.Equal(t, cfg.SessionSecret, cfg.JWTSecret, "jwt secret falls back to the session secret")
	assert.Equal(t, 12*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5*time.Minute, cfg.LandingCacheTTL)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.True(t, cfg.UsesDefaultSecret())
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadReadsPrefixedEnvironment(t *testing.T) {
	t.Setenv("SCHOOLSITE_PORT", "9090")
	t.Setenv("SCHOOLSITE_SESSION_SECRET", "shume-sekret")
	t.Setenv("SCHOOLSITE_ALLOWED_ORIGINS", "https://shpe.al, https://admin.shpe.al")
	t.Setenv("SCHOOLSITE_JWT_TTL", "30m")
	t.Setenv("SCHOOLSITE_DATABASE_DRIVER", "Postgres")

	v, err := NewViper("")
	require.NoError(t, err)
	cfg := Load(v)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "shume-sekret", cfg.JWTSecret)
	assert.False(t, cfg.UsesDefaultSecret())
	assert.Equal(t, []string{"https://shpe.al", "https://admin.shpe.al"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
}

func TestLoadReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schoolsite.yaml")
	content := "port: \"7070\"\nlog_level: debug\nrate_limit_burst: 12\nredis_addr: localhost:6379\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg := Load(v)

	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 12, cfg.RateLimitBurst)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestNewViperRejectsMissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsDefaultSecretsInProduction(t *testing.T) {
	t.Setenv("SCHOOLSITE_ENVIRONMENT", "production")

	v, err := NewViper("")
	require.NoError(t, err)
	cfg := Load(v)
	assert.True(t, cfg.IsProduction())
	assert.Error(t, cfg.Validate(), "default session secret doubles as the jwt secret")

	t.Setenv("SCHOOLSITE_SESSION_SECRET", "shume-sekret")
	t.Setenv("SCHOOLSITE_JWT_SECRET", "schoolsite-dev-secret")
	v, err = NewViper("")
	require.NoError(t, err)
	assert.Error(t, Load(v).Validate(), "explicit default jwt secret")

	t.Setenv("SCHOOLSITE_JWT_SECRET", "tjeter-sekret")
	v, err = NewViper("")
	require.NoError(t, err)
	assert.NoError(t, Load(v).Validate())
}

func TestValidateAllowsDefaultSecretOutsideProduction(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)
	cfg := Load(v)
	assert.True(t, cfg.UsesDefaultSecret())
	assert.NoError(t, cfg.Validate())
}

func TestLoadTrustedProxies(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)
	assert.Empty(t, Load(v).TrustedProxies)

	t.Setenv("SCHOOLSITE_TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")
	v, err = NewViper("")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, Load(v).TrustedProxies)
}

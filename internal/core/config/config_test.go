package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func clearSecretEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_JWT_SECRET", "")
	t.Setenv("JWT_SECRET_KEY", "")
}

func TestLoad_FromFile(t *testing.T) {
	clearSecretEnv(t)
	p := writeYAML(t, `
app:
  http:
    port: 9090
    cors_origins: ["http://localhost:3000"]
jwt:
  secret: file-secret
  issuer: auth-api
db:
  driver: sqlite
  dsn: ":memory:"
redis:
  addr: 127.0.0.1:6379
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 9090, c.App.HTTP.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, c.App.HTTP.CORSOrigins)
	assert.Equal(t, "file-secret", c.JWT.Secret)
	assert.Equal(t, "auth-api", c.JWT.Issuer)
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.True(t, c.Redis.Enabled())

	// 默认值
	assert.Equal(t, 15*time.Minute, c.JWT.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, c.JWT.RefreshTTL())
	assert.Equal(t, 10, c.App.HTTP.RequestTimeoutSec)
	assert.Equal(t, 5*time.Minute, c.Redis.UserTTL())
	assert.NoError(t, c.Validate())
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	clearSecretEnv(t)
	t.Setenv("APP_JWT_SECRET", "env-secret")
	t.Setenv("APP_DB_DRIVER", "memory")

	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-secret", c.JWT.Secret)
	assert.Equal(t, "memory", c.DB.Driver)
	assert.False(t, c.Redis.Enabled())
	assert.NoError(t, c.Validate())
}

func TestLoad_LegacySecretVariable(t *testing.T) {
	clearSecretEnv(t)
	t.Setenv("JWT_SECRET_KEY", "legacy-secret")

	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "legacy-secret", c.JWT.Secret)
}

func TestLoad_BrokenYAML(t *testing.T) {
	p := writeYAML(t, "app: [unclosed")
	_, err := Load(p)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearSecretEnv(t)
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	err = c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret is required")

	c.JWT.Secret = "s"
	c.JWT.AccessTokenTTLMin = 0
	c.DB.Driver = "oracle"
	err = c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accesstokenttlmin")
	assert.Contains(t, err.Error(), "oracle")
}

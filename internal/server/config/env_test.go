package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv_Variables(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":9999")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SESSION_TOKEN_TTL", "30m")
	t.Setenv("CODE_LENGTH", "6")
	t.Setenv("EMAIL_PORT", "2525")
	t.Setenv("NOTIFIER", "smtp")
	t.Setenv("EMAIL_SECURE", "true")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":9999", cfg.EndpointAddrHTTP)
	assert.Equal(t, "from-env", cfg.SecretKey)
	assert.Equal(t, 30*time.Minute, cfg.SessionTokenValidityDuration)
	assert.Equal(t, 6, cfg.CodeLength)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, "smtp", cfg.Notifier)
	assert.True(t, cfg.SMTPSecure)
	assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
}

func Test_parseEnv_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FRONTEND_URL=http://front.test\nEMAIL_FROM=bot@x.com\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("FRONTEND_URL")
		_ = os.Unsetenv("EMAIL_FROM")
	})

	cfg := &Config{}
	parseEnv(cfg, path)

	assert.Equal(t, "http://front.test", cfg.FrontendURL)
	assert.Equal(t, "bot@x.com", cfg.SMTPFrom)
}

func Test_parseEnv_MissingFileIgnored(t *testing.T) {
	cfg := &Config{SecretKey: "keep"}
	require.NotPanics(t, func() { parseEnv(cfg, filepath.Join(t.TempDir(), "absent.env")) })
	assert.Equal(t, "keep", cfg.SecretKey)
}

func Test_parseEnv_BadBoolPanics(t *testing.T) {
	t.Setenv("EMAIL_SECURE", "sometimes")
	require.Panics(t, func() { parseEnv(&Config{}) })
}

func Test_parseEnv_BadNumberPanics(t *testing.T) {
	t.Setenv("CODE_LENGTH", "seven")
	require.Panics(t, func() { parseEnv(&Config{}) })
}

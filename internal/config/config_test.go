package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresPortAndSecret(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_PORT")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("REPORT_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 60, cfg.AccessTTLMin)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, time.UTC, cfg.ReportTZ)
	assert.Equal(t, "00:05", cfg.RollupAt)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_SECRET", "s3cret")

	t.Setenv("REPORT_TIMEZONE", "Mars/Olympus")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("REPORT_TIMEZONE", "UTC")
	t.Setenv("SALES_ROLLUP_AT", "25:99")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CINEBOOK_TEST_A=from-file\nCINEBOOK_TEST_B=from-file\n"), 0o600))

	t.Setenv("CINEBOOK_TEST_A", "from-env")
	t.Setenv("CINEBOOK_TEST_B", "")
	os.Unsetenv("CINEBOOK_TEST_B")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-env", os.Getenv("CINEBOOK_TEST_A"))
	assert.Equal(t, "from-file", os.Getenv("CINEBOOK_TEST_B"))
	os.Unsetenv("CINEBOOK_TEST_B")
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("23:45")
	require.NoError(t, err)
	assert.Equal(t, uint(23), h)
	assert.Equal(t, uint(45), m)
}

func TestRateLimitNormalize(t *testing.T) {
	c := RateLimitConfig{Capacity: 0, RefillTokens: 0, RefillInterval: 0, TTL: time.Second}.normalize()
	assert.Equal(t, 1, c.Capacity)
	assert.Equal(t, 1, c.RefillTokens)
	assert.Equal(t, time.Second, c.RefillInterval)
	assert.Equal(t, 5*time.Second, c.TTL)
}

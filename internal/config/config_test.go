package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/locator/internal/config"
	"github.com/stretchr/testify/assert"
)

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("LOCATOR_ENV", "local")
	t.Setenv("LOCATOR_PORT", "9090")
	t.Setenv("LOCATOR_PROVIDER_TYPE", "nominatim")
	t.Setenv("LOCATOR_PROVIDER_KEY", "testAPIKey")
	t.Setenv("LOCATOR_PROVIDER_URL", "http://nominatim.internal/reverse")
	t.Setenv("LOCATOR_RATE_LIMIT", "5")
	t.Setenv("LOCATOR_REQUEST_TIMEOUT", "3s")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "nominatim", cfg.ProviderType)
	assert.Equal(t, "testAPIKey", cfg.APIKey)
	assert.Equal(t, "http://nominatim.internal/reverse", cfg.ProviderURL)
	assert.Equal(t, 5, cfg.RateLimit)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "12345", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
	assert.True(t, cfg.Database.Enabled())
}

func Test_MustLoadDefaults(t *testing.T) {
	t.Setenv("LOCATOR_CONFIG_FILE", "does-not-exist.env")
	t.Setenv("DB_HOST", "")

	cfg := config.MustLoad()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "mapsco", cfg.ProviderType)
	assert.Equal(t, 1, cfg.RateLimit)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.False(t, cfg.Database.Enabled())
}

func Test_MustLoadFromFile(t *testing.T) {
	defer filet.CleanUp(t)
	t.Cleanup(func() { _ = os.Unsetenv("LOCATOR_VOCABULARY") })

	file := filet.TmpFile(t, "", "LOCATOR_VOCABULARY=us-states\n")
	t.Setenv("LOCATOR_CONFIG_FILE", file.Name())

	cfg := config.MustLoad()

	assert.Equal(t, "us-states", cfg.Vocabulary)
}

func TestMustLoad_PortError(t *testing.T) {
	t.Setenv("LOCATOR_PORT", "error_value")

	assert.PanicsWithValue(t, "failed to parse port for server from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_RateLimitError(t *testing.T) {
	t.Setenv("LOCATOR_RATE_LIMIT", "-1")

	assert.PanicsWithValue(t, "failed to parse rate limit from configuration, must be a non-negative integer", func() {
		config.MustLoad()
	})
}

func TestMustLoad_TimeoutError(t *testing.T) {
	t.Setenv("LOCATOR_REQUEST_TIMEOUT", "error_value")

	assert.PanicsWithValue(t, "failed to parse request timeout from configuration", func() {
		config.MustLoad()
	})
}

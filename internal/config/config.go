package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the location resolution service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port of the HTTP server.
// - ProviderType: The reverse geocoding provider to use (mapsco, nominatim, google).
// - APIKey: The provider credential. Never set in code.
// - ProviderURL: Optional endpoint override for Nominatim-compatible providers.
// - RateLimit: Requests per second allowed towards the provider.
// - RequestTimeout: Timeout of the provider HTTP client.
// - Vocabulary: Default vocabulary used when a request names none.
// - Database: Configuration settings for the PostgreSQL vocabulary store.
type Config struct {
	Env            string         // Env is the current environment: local, dev, prod.
	Port           int            // Port is the HTTP server port.
	ProviderType   string         // ProviderType specifies which provider to use
	APIKey         string         // The API key for accessing the provider.
	ProviderURL    string         // Base URL override for the provider.
	RateLimit      int            // Requests per second towards the provider.
	RequestTimeout time.Duration  // Timeout of the provider HTTP client.
	Vocabulary     string         // Default vocabulary name.
	Database       PostgresConfig // Database holds the postgres database configuration
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// Enabled reports whether a vocabulary store is configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

// MustLoad reads the configuration from the environment, after loading the dotenv file
// named by LOCATOR_CONFIG_FILE (".env" by default). It panics on malformed values.
func MustLoad() *Config {
	_ = godotenv.Load(envFile())

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("LOCATOR_ENV", "production")
	v.SetDefault("LOCATOR_PORT", "8080")
	v.SetDefault("LOCATOR_PROVIDER_TYPE", "mapsco")
	v.SetDefault("LOCATOR_RATE_LIMIT", "1")
	v.SetDefault("LOCATOR_REQUEST_TIMEOUT", "10s")
	v.SetDefault("DB_PORT", "5432")

	port, err := strconv.Atoi(v.GetString("LOCATOR_PORT"))
	if err != nil {
		panic("failed to parse port for server from configuration")
	}

	rateLimit, err := strconv.Atoi(v.GetString("LOCATOR_RATE_LIMIT"))
	if err != nil || rateLimit < 0 {
		panic("failed to parse rate limit from configuration, must be a non-negative integer")
	}

	timeout, err := time.ParseDuration(v.GetString("LOCATOR_REQUEST_TIMEOUT"))
	if err != nil {
		panic("failed to parse request timeout from configuration")
	}

	return &Config{
		Env:            v.GetString("LOCATOR_ENV"),
		Port:           port,
		ProviderType:   v.GetString("LOCATOR_PROVIDER_TYPE"),
		APIKey:         v.GetString("LOCATOR_PROVIDER_KEY"),
		ProviderURL:    v.GetString("LOCATOR_PROVIDER_URL"),
		RateLimit:      rateLimit,
		RequestTimeout: timeout,
		Vocabulary:     v.GetString("LOCATOR_VOCABULARY"),
		Database: PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USERNAME"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
	}
}

func envFile() string {
	if path, ok := os.LookupEnv("LOCATOR_CONFIG_FILE"); ok && path != "" {
		return path
	}

	return ".env"
}

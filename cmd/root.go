package main

import (
	"log/slog"

	"github.com/UnknownOlympus/locator/internal/config"
	"github.com/UnknownOlympus/locator/internal/geocoding"
	"github.com/UnknownOlympus/locator/internal/metrics"
	"github.com/UnknownOlympus/locator/internal/repository"
	"github.com/UnknownOlympus/locator/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "locator",
		Short: "Resolve the current position of a device into address form fields",
		Long: `
locator turns a device position into locality, neighbourhood and region values,
matching the region against the options of an address form.

Configuration is read from the environment and from the dotenv file named by
LOCATOR_CONFIG_FILE (".env" by default).
`,
		Version:      Version,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newResolveCmd(), newVocabularyCmd())

	return root
}

// newResolver wires the configured reverse geocoding provider into a Resolver.
func newResolver(cfg *config.Config, logger *slog.Logger, appMetrics *metrics.Metrics) (*service.Resolver, error) {
	provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.ProviderType),
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.ProviderURL,
		RateLimit: cfg.RateLimit,
		Timeout:   cfg.RequestTimeout,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	return service.NewResolver(logger, provider, cfg.ProviderType, appMetrics), nil
}

// openStore connects to the vocabulary store and makes sure its schema exists.
// The caller closes the returned pool.
func openStore(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, *repository.Repository, error) {
	if !cfg.Database.Enabled() {
		return nil, nil, errStoreDisabled
	}

	pool, err := repository.NewDatabase(
		cmd.Context(),
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		return nil, nil, err
	}

	repo := repository.NewRepository(pool, logger)
	if err = repo.EnsureSchema(cmd.Context()); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return pool, repo, nil
}

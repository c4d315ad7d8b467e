//go:build integration

package repository_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/locator/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestRepository_Postgres(t *testing.T) {
	ctx := t.Context()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("locator"),
		postgres.WithUsername("locator"),
		postgres.WithPassword("locator"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := repository.NewRepository(pool, slog.Default())
	require.NoError(t, repo.EnsureSchema(ctx))

	_, err = repo.FetchCandidates(ctx, "ar-provinces")
	require.ErrorIs(t, err, repository.ErrVocabularyNotFound)

	require.NoError(t, repo.ReplaceCandidates(ctx, "ar-provinces", []string{"Salta", "San Juan", "San Luis"}))
	require.NoError(t, repo.ReplaceCandidates(ctx, "ar-provinces", []string{"Santa Fe", "Santa Cruz", "Salta"}))

	values, err := repo.FetchCandidates(ctx, "ar-provinces")
	require.NoError(t, err)
	assert.Equal(t, []string{"Santa Fe", "Santa Cruz", "Salta"}, values)
}

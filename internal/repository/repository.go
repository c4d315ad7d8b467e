package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrVocabularyNotFound is returned when a vocabulary has no stored values.
var ErrVocabularyNotFound = errors.New("vocabulary not found")

// Database is the subset of *pgxpool.Pool the repository needs.
type Database interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

type Repository struct {
	db  Database
	log *slog.Logger
}

// Interface is the vocabulary store used by the resolver API and the CLI.
type Interface interface {
	FetchCandidates(ctx context.Context, vocabulary string) ([]string, error)
	ReplaceCandidates(ctx context.Context, vocabulary string, values []string) error
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}

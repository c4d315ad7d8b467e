package repository

import (
	"context"
	"fmt"
)

// EnsureSchema creates the vocabulary table if it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS vocabulary_values (
			vocabulary TEXT    NOT NULL,
			position   INTEGER NOT NULL,
			value      TEXT    NOT NULL,
			PRIMARY KEY (vocabulary, position)
		);
	`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create vocabulary schema: %w", err)
	}

	return nil
}

// FetchCandidates retrieves the allowed values of a vocabulary in their stored order.
// The order matters: the region selector resolves ties in favour of earlier values.
//
// Returns ErrVocabularyNotFound if the vocabulary has no values.
func (r *Repository) FetchCandidates(ctx context.Context, vocabulary string) ([]string, error) {
	var values []string
	query := `
		SELECT value
		FROM vocabulary_values
		WHERE vocabulary = $1
		ORDER BY position ASC;
	`

	rows, err := r.db.Query(ctx, query, vocabulary)
	if err != nil {
		return nil, fmt.Errorf("failed to query vocabulary values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var value string
		if errScan := rows.Scan(&value); errScan != nil {
			return nil, fmt.Errorf("failed to scan vocabulary value: %w", errScan)
		}
		values = append(values, value)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrVocabularyNotFound, vocabulary)
	}

	r.log.DebugContext(ctx, "Vocabulary loaded", "vocabulary", vocabulary, "values", len(values))

	return values, nil
}

// ReplaceCandidates atomically replaces all values of a vocabulary, keeping the given order.
func (r *Repository) ReplaceCandidates(ctx context.Context, vocabulary string, values []string) error {
	deleteQuery := `
		DELETE FROM vocabulary_values
		WHERE vocabulary = $1;
	`
	insertQuery := `
		INSERT INTO vocabulary_values (vocabulary, position, value)
		VALUES ($1, $2, $3);
	`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err = tx.Exec(ctx, deleteQuery, vocabulary); err != nil {
		r.rollback(ctx, tx.Rollback)
		return fmt.Errorf("failed to delete vocabulary values: %w", err)
	}

	for position, value := range values {
		if _, err = tx.Exec(ctx, insertQuery, vocabulary, position, value); err != nil {
			r.rollback(ctx, tx.Rollback)
			return fmt.Errorf("failed to insert vocabulary value: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit vocabulary values: %w", err)
	}

	r.log.InfoContext(ctx, "Vocabulary replaced", "vocabulary", vocabulary, "values", len(values))

	return nil
}

func (r *Repository) rollback(ctx context.Context, rollback func(context.Context) error) {
	if err := rollback(ctx); err != nil {
		r.log.ErrorContext(ctx, "Failed to roll back transaction", "error", err)
	}
}

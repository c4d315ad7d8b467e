package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/UnknownOlympus/locator/internal/config"
	"github.com/spf13/cobra"
)

var errStoreDisabled = errors.New("vocabulary store is not configured, set DB_HOST")

func newVocabularyCmd() *cobra.Command {
	vocabulary := &cobra.Command{
		Use:   "vocabulary",
		Short: "Manage stored candidate region lists",
	}

	vocabulary.AddCommand(&cobra.Command{
		Use:   "load NAME [FILE]",
		Short: "Replace a vocabulary with the values read from FILE or stdin",
		Long: `Reads one value per line, in display order. Blank lines are skipped.
The order matters: on equal scores the earlier value wins.

$ printf 'Buenos Aires\nCórdoba\nSanta Fe\n' | locator vocabulary load provinces`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runVocabularyLoad,
	})

	vocabulary.AddCommand(&cobra.Command{
		Use:   "show NAME",
		Short: "Print the values of a vocabulary, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoad()
			pool, repo, err := openStore(cmd, cfg, setupLogger(cfg.Env, os.Stderr))
			if err != nil {
				return err
			}
			defer pool.Close()

			values, err := repo.FetchCandidates(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, value := range values {
				fmt.Fprintln(cmd.OutOrStdout(), value)
			}
			return nil
		},
	})

	return vocabulary
}

func runVocabularyLoad(cmd *cobra.Command, args []string) error {
	input := cmd.InOrStdin()
	if len(args) == 2 && args[1] != "-" {
		file, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer file.Close()
		input = file
	}

	values, err := readValues(input)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return errors.New("no values to load")
	}

	cfg := config.MustLoad()
	pool, repo, err := openStore(cmd, cfg, setupLogger(cfg.Env, os.Stderr))
	if err != nil {
		return err
	}
	defer pool.Close()

	if err = repo.ReplaceCandidates(cmd.Context(), args[0], values); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Loaded %d values into %q\n", len(values), args[0])
	return nil
}

// readValues returns the trimmed non-blank lines of r.
func readValues(r io.Reader) ([]string, error) {
	var values []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if value := strings.TrimSpace(scanner.Text()); value != "" {
			values = append(values, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read values: %w", err)
	}

	return values, nil
}

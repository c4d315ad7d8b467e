package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/UnknownOlympus/locator/internal/config"
	"github.com/UnknownOlympus/locator/internal/geolocation"
	"github.com/UnknownOlympus/locator/internal/matching"
	"github.com/UnknownOlympus/locator/internal/metrics"
	"github.com/UnknownOlympus/locator/internal/models"
	"github.com/UnknownOlympus/locator/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type resolveOptions struct {
	latitude   float64
	longitude  float64
	candidates []string
	vocabulary string
	explain    bool
	json       bool
}

// resolveOutput is the JSON form of a resolve run.
type resolveOutput struct {
	*models.ResolvedLocation
	Ranking []matching.Ranked `json:"ranking,omitempty"`
}

func newResolveCmd() *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a coordinate once and print the form fields",
		Long: `Reverse geocodes the given coordinate with the configured provider and matches
the region against the candidates, given inline or as a stored vocabulary.

$ locator resolve --lat -31.4167 --lon -64.1833 --candidates "Buenos Aires,Córdoba,Santa Fe"

Output is a table on a terminal and JSON otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&opts.latitude, "lat", 0, "latitude in decimal degrees")
	flags.Float64Var(&opts.longitude, "lon", 0, "longitude in decimal degrees")
	flags.StringSliceVar(&opts.candidates, "candidates", nil, "allowed region values, in display order")
	flags.StringVar(&opts.vocabulary, "vocabulary", "", "stored vocabulary to use as candidates")
	flags.BoolVar(&opts.explain, "explain", false, "print the score of every candidate")
	flags.BoolVar(&opts.json, "json", false, "print JSON even on a terminal")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	cmd.MarkFlagsMutuallyExclusive("candidates", "vocabulary")

	return cmd
}

func runResolve(cmd *cobra.Command, opts *resolveOptions) error {
	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env, os.Stderr)

	resolver, err := newResolver(cfg, logger, metrics.NewMetrics(prometheus.NewRegistry()))
	if err != nil {
		return fmt.Errorf("failed to create geocoding provider: %w", err)
	}

	candidates := opts.candidates
	if opts.vocabulary != "" {
		pool, repo, err := openStore(cmd, cfg, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		if candidates, err = repo.FetchCandidates(cmd.Context(), opts.vocabulary); err != nil {
			return err
		}
	}

	result, err := resolver.Resolve(cmd.Context(), service.Request{
		Locator:    geolocation.NewStatic(models.Coordinates{Latitude: opts.latitude, Longitude: opts.longitude}),
		Candidates: candidates,
	})
	if err != nil {
		if failure, ok := service.AsFailure(err); ok {
			fmt.Fprintln(cmd.ErrOrStderr(), failure.Message())
		}
		return err
	}

	out := resolveOutput{ResolvedLocation: result}
	if opts.explain {
		out.Ranking = matching.Rank(result.Region, candidates)
	}

	if opts.json || !isTerminal(cmd.OutOrStdout()) {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	return writeTable(cmd.OutOrStdout(), out)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writeJSON(w io.Writer, out resolveOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

func writeTable(w io.Writer, out resolveOutput) error {
	if out.ResolvedLocation == nil {
		return errors.New("nothing to print")
	}

	matched := "-"
	if out.MatchedRegion != nil {
		matched = *out.MatchedRegion
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "locality\t%s\n", out.Locality)
	fmt.Fprintf(tw, "neighbourhood\t%s\n", out.Neighbourhood)
	fmt.Fprintf(tw, "region\t%s\n", out.Region)
	fmt.Fprintf(tw, "matched region\t%s\n", matched)
	fmt.Fprintf(tw, "road\t%s\n", out.Road)
	fmt.Fprintf(tw, "address\t%s\n", out.DisplayName)

	if len(out.Ranking) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "score\tcandidate")
		for _, r := range out.Ranking {
			fmt.Fprintf(tw, "%d\t%s\n", r.Score, r.Candidate)
		}
	}

	return tw.Flush()
}

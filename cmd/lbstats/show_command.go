package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"lbstats/internal/export"
	"lbstats/internal/render"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var sortFlag string
	var ascending bool
	var limit int

	cmd := &cobra.Command{
		Use:       "show {watched|diary|ratings|watchlist}",
		Short:     "List films from the downloaded export",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"watched", "diary", "ratings", "watchlist"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := export.Kind(args[0])

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			// flags not set on the command line fall back to config
			if !cmd.Flags().Changed("asc") {
				ascending = cfg.CLI.Ascending
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.CLI.Limit
			}

			dir, err := latestExportDir(cfg.Paths.DataDir, kind)
			if err != nil {
				return err
			}

			films, err := export.Load(dir, kind)
			if err != nil {
				return err
			}

			err = export.Sort(films, export.SortColumn(sortFlag), ascending)
			if err != nil {
				return err
			}
			films = export.Limit(films, limit)

			if cfg.TMDB.GetListRuntimes && cfg.TMDB.APIKey != "" {
				client, err := ctx.ensureClient(cmd.Context())
				if err != nil {
					return err
				}
				movies, err := ctx.tmdbClient()
				if err != nil {
					return err
				}
				export.EnrichTMDBIDs(cmd.Context(), client.Resolver, films, kind, 8)
				export.EnrichRuntimes(cmd.Context(), movies, films, 8)
			}

			fmt.Fprintln(cmd.OutOrStdout(), render.Films(films))
			if mean, ok := export.RatingMean(films); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Rating mean: %.2f\n", mean)
			}
			if mean, ok := export.TimeWeightedRatingMean(films); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Time-weighted rating mean: %.2f\n", mean)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", string(export.SortByDate), "Sort column: date, name, year, rating or shuffle")
	cmd.Flags().BoolVar(&ascending, "asc", false, "Sort ascending instead of descending")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many rows (0 shows all)")
	return cmd
}

// latestExportDir picks the most recently extracted export under
// dataDir that contains the wanted CSV.
func latestExportDir(dataDir string, kind export.Kind) (string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return "", fmt.Errorf("read data directory: %w", err)
	}

	best := ""
	bestTime := time.Time{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(dataDir, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, string(kind)+".csv")); err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().After(bestTime) {
			best = dir
			bestTime = info.ModTime()
		}
	}
	if best == "" {
		return "", fmt.Errorf("no export with %s.csv under %s, run download first", kind, dataDir)
	}
	return best, nil
}

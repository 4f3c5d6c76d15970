package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lbstats/internal/render"
	"lbstats/lib/scrapers/letterboxd"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var first bool

	cmd := &cobra.Command{
		Use:   "search <title>...",
		Short: "Search films by title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			client, err := ctx.ensureClient(cmd.Context())
			if err != nil {
				return err
			}
			results, err := client.Search(cmd.Context(), query)
			if err != nil {
				return err
			}

			if first {
				best, _ := letterboxd.BestMatch(query, results)
				results = []letterboxd.SearchResult{best}
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.SearchResults(results))
			return nil
		},
	}

	cmd.Flags().BoolVar(&first, "first", false, "Only show the closest title match")
	return cmd
}

func newFilmCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "film <slug>",
		Short: "Show TMDB details for a film",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.ensureClient(cmd.Context())
			if err != nil {
				return err
			}
			movies, err := ctx.tmdbClient()
			if err != nil {
				return err
			}

			id, err := client.Resolver.TMDBIDForSlug(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			movie, err := movies.MovieDetails(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.MovieDetails(movie, cfg.CLI.PosterColumns))
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <slug>",
		Short: "Show your watched/liked/watchlist/rating state for a film",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.ensureLoggedIn(cmd.Context())
			if err != nil {
				return err
			}
			meta, err := client.FilmMetadata(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Metadata(args[0], meta))
			return nil
		},
	}
}

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lbstats/lib/scrapers/letterboxd"
)

// newFilmCommands builds the simple slug-argument mutations that map
// one to one onto dispatch operations.
func newFilmCommands(ctx *commandContext) []*cobra.Command {
	simple := []struct {
		use   string
		short string
		op    letterboxd.Operation
	}{
		{"like <slug>", "Add a film to your liked films", letterboxd.OpAddToLiked},
		{"unlike <slug>", "Remove a film from your liked films", letterboxd.OpRemoveFromLiked},
		{"watch <slug>", "Mark a film as watched", letterboxd.OpMarkWatched},
		{"unwatch <slug>", "Un-mark a film as watched", letterboxd.OpUnmarkWatched},
	}

	commands := make([]*cobra.Command, 0, len(simple)+1)
	for _, def := range simple {
		op := def.op
		commands = append(commands, &cobra.Command{
			Use:   def.use,
			Short: def.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return performOn(ctx, cmd, op, args[0], letterboxd.PerformArgs{})
			},
		})
	}

	commands = append(commands, &cobra.Command{
		Use:   "rate <slug> <rating>",
		Short: "Rate a film 0 to 10 (half stars doubled)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("rating must be a number: %w", err)
			}
			return performOn(ctx, cmd, letterboxd.OpUpdateRating, args[0], letterboxd.PerformArgs{Rating: rating})
		},
	})

	return commands
}

func newWatchlistCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Manage your watchlist",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <slug>",
		Short: "Add a film to your watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return performOn(ctx, cmd, letterboxd.OpAddToWatchlist, args[0], letterboxd.PerformArgs{})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <slug>",
		Short: "Remove a film from your watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return performOn(ctx, cmd, letterboxd.OpRemoveFromWatchlist, args[0], letterboxd.PerformArgs{})
		},
	})
	return cmd
}

func newDiaryCommand(ctx *commandContext) *cobra.Command {
	diaryCmd := &cobra.Command{
		Use:   "diary",
		Short: "Manage your film diary",
	}

	var (
		dateFlag string
		rating   int
		liked    bool
		review   string
		spoilers bool
		rewatch  bool
		tags     []string
	)

	addCmd := &cobra.Command{
		Use:   "add <slug>",
		Short: "Add a diary entry for a film",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := letterboxd.DiaryEntry{
				Rating:           rating,
				Liked:            liked,
				Review:           review,
				ContainsSpoilers: spoilers,
				Rewatch:          rewatch,
				Tags:             tags,
			}
			if dateFlag != "" {
				date, err := time.Parse("2006-01-02", strings.TrimSpace(dateFlag))
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
				entry.ViewingDate = date
				entry.SpecifyDate = true
			}
			return performOn(ctx, cmd, letterboxd.OpAddToDiary, args[0], letterboxd.PerformArgs{Diary: &entry})
		},
	}

	addCmd.Flags().StringVar(&dateFlag, "date", "", "Viewing date (YYYY-MM-DD)")
	addCmd.Flags().IntVar(&rating, "rating", 0, "Rating 0 to 10")
	addCmd.Flags().BoolVar(&liked, "liked", false, "Mark the film as liked")
	addCmd.Flags().StringVar(&review, "review", "", "Review text")
	addCmd.Flags().BoolVar(&spoilers, "spoilers", false, "Flag the review as containing spoilers")
	addCmd.Flags().BoolVar(&rewatch, "rewatch", false, "Mark the entry as a rewatch")
	addCmd.Flags().StringSliceVar(&tags, "tags", nil, "Tags for the entry")

	diaryCmd.AddCommand(addCmd)
	return diaryCmd
}

func performOn(ctx *commandContext, cmd *cobra.Command, op letterboxd.Operation, slug string, args letterboxd.PerformArgs) error {
	client, err := ctx.ensureLoggedIn(cmd.Context())
	if err != nil {
		return err
	}
	err = client.Perform(cmd.Context(), op, slug, args)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", op, slug)
	return nil
}

package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"beauty-api/internal/domain"
	"beauty-api/internal/repository"
	"beauty-api/internal/service"
)

func newLeaderboardCmd(opts *rootOptions) *cobra.Command {
	var (
		dbURL  string
		period string
		tz     string
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the current leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := service.ParsePeriod(period)
			if err != nil {
				return err
			}
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("invalid time zone %q: %w", tz, err)
			}
			pool, err := openPool(cmd.Context(), dbURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := service.NewLeaderboardService(opts.logger(), repository.NewPgLeaderboardRepository(pool), nil, nil, service.LeaderboardOptions{
				Limit:    limit,
				Location: loc,
			})
			view := svc.Top(cmd.Context(), service.LeaderboardQuery{Period: p, Location: loc})
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			return printLeaderboard(cmd.OutOrStdout(), view)
		},
	}
	addDatabaseFlag(cmd, &dbURL)
	cmd.Flags().StringVar(&period, "period", "today", "today, week, month or entire")
	cmd.Flags().StringVar(&tz, "tz", "Local", "IANA time zone for the window")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func printLeaderboard(w io.Writer, view domain.LeaderboardView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "RANK\tNAME\tSCORE\tGUEST\n")
	for _, e := range view.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%v\n", e.Rank, e.DisplayName, float64(e.DisplayScore)/10, e.IsGuest)
	}
	if len(view.Entries) == 0 {
		fmt.Fprintf(tw, "-\t(no entries)\t\t\n")
	}
	return tw.Flush()
}

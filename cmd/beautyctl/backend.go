package main

import (
	"github.com/spf13/cobra"
)

func newBackendCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backend",
		Short: "Query the face analysis backend",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "health",
			Short: "Check backend health",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				status, err := opts.client().Health(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), status)
			},
		},
		&cobra.Command{
			Use:   "celebrities",
			Short: "List loaded celebrities",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				list, err := opts.client().Celebrities(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), list)
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show CSV dataset statistics",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				stats, err := opts.client().CSVStats(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), stats)
			},
		},
		&cobra.Command{
			Use:   "reload",
			Short: "Reload the celebrity database",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				res, err := opts.client().ReloadCelebrities(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), res)
			},
		},
	)
	return cmd
}

package main

import (
	"context"
	"errors"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"beauty-api/internal/config"
	"beauty-api/internal/db"
)

func addDatabaseFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "db-url", os.Getenv("DATABASE_URL"), "Postgres connection URL")
}

func openPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, errors.New("database url is required (--db-url or DATABASE_URL)")
	}
	return db.NewPool(ctx, &config.Config{DatabaseURL: url})
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var dbURL string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := openPool(cmd.Context(), dbURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := db.Migrate(cmd.Context(), pool, opts.logger()); err != nil {
				return err
			}
			names, _ := db.MigrationNames()
			return writeJSON(cmd.OutOrStdout(), map[string]any{"applied": names})
		},
	}
	addDatabaseFlag(cmd, &dbURL)
	return cmd
}

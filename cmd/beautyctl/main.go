package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"beauty-api/internal/analyzer"
)

type rootOptions struct {
	backendURL string
	timeout    time.Duration
	verbose    bool
}

func (o *rootOptions) logger() *zap.Logger {
	if o.verbose {
		return zap.NewExample()
	}
	return zap.NewNop()
}

func (o *rootOptions) client() *analyzer.HTTPClient {
	base := analyzer.ResolveBaseURL(o.backendURL, os.Getenv("ANALYSIS_PUBLIC_HOST"), os.Getenv("ANALYSIS_DEPLOYED_URL"))
	return analyzer.NewHTTPClient(base, o.timeout, o.logger())
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "beautyctl",
		Short:         "Operator tools for the beauty analysis API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.backendURL, "backend-url", os.Getenv("ANALYSIS_API_URL"), "Analysis backend base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Backend request timeout")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stdout")

	root.AddCommand(
		newPercentileCmd(),
		newBackendCmd(opts),
		newLeaderboardCmd(opts),
		newMigrateCmd(opts),
	)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

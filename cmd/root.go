// Package cmd contains the CLI commands of the catalog engine.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"catalog-engine/logger"
	appOtel "catalog-engine/utils/otel"
)

// otelShutdown flushes telemetry on command exit.
var otelShutdown appOtel.ShutdownFunc = func(context.Context) error { return nil }

var rootCmd = &cobra.Command{
	Use:   "catalog-engine",
	Short: "Faceted product-catalog query engine",
	Long: `catalog-engine maintains a facet index over a product catalog and
answers interactive filtering queries: matching product sets, would-be
facet counts and paginated listings.

Example usage:
  catalog-engine serve              # Start the HTTP query API
  catalog-engine import feed.xml    # Import a catalog feed and reindex`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		otelCfg := appOtel.ConfigFromEnv()
		shutdown, err := appOtel.InitProvider(cmd.Context(), otelCfg)
		if err != nil {
			fmt.Printf("failed to initialize OpenTelemetry: %v\n", err)
			otelCfg.Enabled = false
		} else {
			otelShutdown = shutdown
		}
		logger.InitWithOTel(otelCfg.Enabled)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = otelShutdown(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

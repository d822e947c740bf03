package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"catalog-engine/consumer"
	"catalog-engine/logger"
	"catalog-engine/rest"
	"catalog-engine/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP query API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	// Optional event-driven reindexing: other services announce catalog
	// changes on a Redis Stream and the engine coalesces them into
	// rebuilds.
	handler := consumer.NewReindexEventHandler(d.indexer, logger.Logger)
	events, err := consumer.NewConsumer(consumer.ConfigFromEnv(), handler, logger.Logger)
	if err != nil {
		return err
	}
	if err := events.Start(ctx); err != nil {
		return err
	}
	defer func() {
		handler.Stop()
		events.Stop()
	}()

	srv := server.New(d.cfg, server.Handlers{
		Filters:  rest.NewFiltersHandler(d.engine),
		Products: rest.NewProductsHandler(d.engine, d.lister),
		Reindex:  rest.NewReindexHandler(d.indexer),
		Health:   rest.NewHealthHandler(),
	}, logger.Logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Logger.Info("signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), d.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"catalog-engine/importer"
	"catalog-engine/logger"
	"catalog-engine/normalizer"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a catalog XML feed and rebuild the facet index",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	im := importer.New(d.writer, normalizer.New(logger.Logger), d.indexer, logger.Logger)
	stats, err := im.ImportFile(ctx, args[0])
	if err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(stats)
}

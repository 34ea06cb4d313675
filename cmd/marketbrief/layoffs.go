package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/marketbrief/internal/layoffs"
)

var layoffsCmd = &cobra.Command{
	Use:   "layoffs",
	Short: "Layoff event subcommands",
}

var layoffsImportCmd = &cobra.Command{
	Use:   "import <events.csv>",
	Short: "Import layoff events from a CSV file",
	Long:  "Reads company,date,employees_affected,geography,functions rows and upserts them keyed by company and date. Bad rows are reported and skipped.",
	Args:  cobra.ExactArgs(1),
	RunE:  runLayoffsImport,
}

func init() {
	rootCmd.AddCommand(layoffsCmd)
	layoffsCmd.AddCommand(layoffsImportCmd)
}

func runLayoffsImport(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	events, rowErrs, err := layoffs.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	for _, e := range rowErrs {
		logger.Warn("skipping layoff row", "file", args[0], "error", e)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg, false, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer st.Close()

	n, err := st.UpsertLayoffs(ctx, events)
	if err != nil {
		return fmt.Errorf("importing layoffs: %w", err)
	}
	fmt.Printf("Imported %d layoff events (%d rows skipped)\n", n, len(rowErrs))
	return nil
}

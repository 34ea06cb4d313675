package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var scrapeDryRun bool

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape every enabled company once",
	Long:  "Fetches all enabled company boards, classifies the postings, upserts them and prints a run summary.",
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeDryRun, "dry-run", false, "fetch and classify but persist nothing")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	lock, err := acquireLock(cfg.Scrape.LockFile)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, scrapeDryRun, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer st.Close()

	runner, cleanup := buildRunner(ctx, cfg, st, logger)
	defer cleanup()

	sum, err := runner.Run(ctx, cfg.EnabledCompanies())
	if err != nil {
		return fmt.Errorf("scrape run: %w", err)
	}
	sum.Print(os.Stdout)
	return nil
}

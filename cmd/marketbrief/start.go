package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/marketbrief/internal/scheduler"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scrape + brief daemon",
	Long:  "Runs a scrape followed by a brief every brief.interval; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	logger.Info("config loaded",
		"interval", cfg.Brief.Interval.String(),
		"companies", len(cfg.Companies),
		"workers", cfg.Scrape.Workers,
		"database", cfg.Database.Driver,
		"target_functions", len(cfg.Brief.TargetFunctions),
	)

	lock, err := acquireLock(cfg.Scrape.LockFile)
	if err != nil {
		logger.Error("failed to take lock", "error", err)
		return err
	}
	defer lock.Unlock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, false, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer st.Close()

	runner, cleanup := buildRunner(ctx, cfg, st, logger)
	defer cleanup()
	gen := buildGenerator(cfg, st, setupNotifier(cfg, newNotifyClient(), logger), logger)

	companies := cfg.EnabledCompanies()
	steps := []scheduler.Step{
		{Name: "scrape", Run: func(ctx context.Context) error {
			_, err := runner.Run(ctx, companies)
			return err
		}},
		{Name: "brief", Run: func(ctx context.Context) error {
			_, err := gen.Generate(ctx)
			return err
		}},
	}

	sched := scheduler.NewScheduler(steps, cfg.Brief.Interval, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}

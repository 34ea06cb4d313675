package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/marketbrief/internal/model"
	"github.com/amishk599/marketbrief/internal/scrape"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Scrape one company per ATS, print the summary, exit",
	Long:  "Smoke test for the adapters: scrapes the first enabled company of each platform and persists nothing.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	companies := onePerPlatform(cfg.EnabledCompanies())
	if len(companies) == 0 {
		return fmt.Errorf("no enabled companies in config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, true, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	runner, cleanup := buildRunner(ctx, cfg, st, logger)
	defer cleanup()

	sum, err := runner.Run(ctx, companies)
	if err != nil {
		return fmt.Errorf("check run: %w", err)
	}
	sum.Print(os.Stdout)
	return nil
}

// onePerPlatform keeps the first company of each resolved platform, in
// config order.
func onePerPlatform(companies []model.Company) []model.Company {
	seen := make(map[model.Platform]bool)
	var out []model.Company
	for _, c := range companies {
		p := scrape.ResolvePlatform(c)
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, c)
	}
	return out
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/marketbrief/internal/discover"
	"github.com/amishk599/marketbrief/internal/scrape"
	"github.com/amishk599/marketbrief/internal/workpool"
)

var (
	discoverOut    string
	discoverDryRun bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover <domains.csv>",
	Short: "Find careers pages and ATS platforms for a list of domains",
	Long: "Reads a CSV with a domain column, probes the usual careers URLs for each domain and " +
		"adds every company found on a supported ATS to the registry.",
	Args: cobra.ExactArgs(1),
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().StringVarP(&discoverOut, "out", "o", "", "write results as CSV to this file")
	discoverCmd.Flags().BoolVar(&discoverDryRun, "dry-run", false, "do not add found companies to the registry")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	in, err := os.Open(args[0])
	if err != nil {
		return err
	}
	domains, err := discover.ReadDomains(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	logger.Info("discovering careers pages", "domains", len(domains), "workers", cfg.Discovery.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scanner := discover.NewScanner(
		scrape.NewHTTPClient(cfg.Discovery.Timeout),
		workpool.New(cfg.Discovery.Workers),
		cfg.Scrape.UserAgent,
		logger,
	)
	results := scanner.Scan(ctx, domains)

	tally := discover.Tally(results)
	fmt.Printf("\nFound: %d  Not found: %d  Errors: %d\n",
		tally[discover.StatusFound], tally[discover.StatusNotFound], tally[discover.StatusError])

	if discoverOut != "" {
		if err := writeDiscoverResults(discoverOut, results); err != nil {
			return err
		}
		fmt.Printf("Results written to %s\n", discoverOut)
	}

	companies := discover.Companies(results)
	if discoverDryRun || len(companies) == 0 {
		return nil
	}

	st, err := openStore(ctx, cfg, false, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer st.Close()

	n, err := st.UpsertCompanies(ctx, companies, time.Now())
	if err != nil {
		return fmt.Errorf("registering discovered companies: %w", err)
	}
	fmt.Printf("Registered %d companies\n", n)
	return nil
}

func writeDiscoverResults(path string, results []discover.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := discover.WriteResults(f, results); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

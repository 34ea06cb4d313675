package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/marketbrief/internal/scrape"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List configured and registered companies",
	Long:  "Prints the companies from the config, then any companies in the registry that the config does not list (for example discovered ones).",
	RunE:  runCompanies,
}

func init() {
	rootCmd.AddCommand(companiesCmd)
}

func runCompanies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("%-25s %-12s %-9s %s\n", "Company", "ATS", "Status", "Careers URL")
	fmt.Println(strings.Repeat("─", 80))

	configured := make(map[string]bool)
	enabled, disabled := 0, 0
	for _, cc := range cfg.Companies {
		c := cc.Company()
		configured[c.ID] = true
		status := "enabled"
		if cc.IsEnabled() {
			enabled++
		} else {
			status = "disabled"
			disabled++
		}
		fmt.Printf("%-25s %-12s %-9s %s\n", c.DisplayName(), scrape.ResolvePlatform(c), status, c.CareersURL)
	}
	fmt.Printf("\nConfigured: %d companies (%d enabled, %d disabled)\n", len(cfg.Companies), enabled, disabled)

	// Registry rows are a bonus here; an unreachable database still lists the config.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := openStore(context.Background(), cfg, false, quiet)
	if err != nil {
		return nil
	}
	defer st.Close()

	registry, err := st.LoadCompanies(context.Background())
	if err != nil {
		return nil
	}
	extra := 0
	for _, c := range registry {
		if configured[c.ID] {
			continue
		}
		if extra == 0 {
			fmt.Println("\nRegistry only:")
		}
		extra++
		fmt.Printf("%-25s %-12s %-9s %s\n", c.DisplayName(), scrape.ResolvePlatform(c), "registry", c.CareersURL)
	}
	return nil
}

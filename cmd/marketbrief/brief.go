package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/marketbrief/internal/brief"
)

var briefQuiet bool

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Build the market brief from stored postings",
	Long:  "Aggregates stored postings and layoff events, prints the markdown brief, writes brief_YYYYMMDD.md and facts_YYYYMMDD.json, then notifies.",
	RunE:  runBrief,
}

func init() {
	briefCmd.Flags().BoolVarP(&briefQuiet, "quiet", "q", false, "do not print the brief to stdout when it was written to disk")
	rootCmd.AddCommand(briefCmd)
}

func runBrief(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, false, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer st.Close()

	httpClient := newNotifyClient()
	gen := buildGenerator(cfg, st, setupNotifier(cfg, httpClient, logger), logger)

	report, err := gen.Generate(ctx)
	if err != nil {
		return err
	}
	return emitReport(os.Stdout, report, briefQuiet)
}

// emitReport prints the markdown brief. quiet is ignored when the brief file
// could not be written, so a report run always emits the report somewhere.
func emitReport(w io.Writer, report *brief.Report, quiet bool) error {
	if quiet && report.BriefPath != "" {
		return nil
	}
	_, err := fmt.Fprintln(w, report.Markdown)
	return err
}

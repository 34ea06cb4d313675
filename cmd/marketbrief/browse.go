package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/marketbrief/internal/brief"
	"github.com/amishk599/marketbrief/internal/browse"
	"github.com/amishk599/marketbrief/internal/model"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored roles interactively (TUI)",
	Long:  "Shows a picker of the target functions, then that function's roles ranked by scope score with a detail pane.",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Any log output once the TUI starts corrupts the display.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx := context.Background()
	st, err := openStore(ctx, cfg, false, silentLogger)
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := browse.RunLoader(ctx, "stored roles", func(ctx context.Context) (browse.Data, error) {
		jobs, err := st.LoadJobs(ctx)
		if err != nil {
			return browse.Data{}, err
		}
		// Roles fall back to company ids when names are unavailable.
		names, _ := st.CompanyNames(ctx)
		return browse.Data{Jobs: jobs, Names: names}, nil
	})
	if errors.Is(err, browse.ErrCancelled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading roles: %w", err)
	}

	functions := cfg.Brief.TargetFunctions
	if len(functions) == 0 {
		functions = model.Functions
	}
	entries := browse.CountByFunction(data.Jobs, functions)
	now := time.Now().UTC()

	for {
		fn, ok, err := browse.RunFunctionPicker(entries)
		if err != nil {
			return fmt.Errorf("picker: %w", err)
		}
		if !ok {
			return nil
		}

		roles := browse.RankRoles(data.Jobs, fn, data.Names, brief.DefaultScopeTerms(), now)
		wantQuit, err := browse.RunRolesTUI(fn, roles, cfg.Brief.StaleDays)
		if err != nil {
			return fmt.Errorf("role browser: %w", err)
		}
		if wantQuit {
			return nil
		}
	}
}

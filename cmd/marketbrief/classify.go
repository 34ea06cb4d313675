package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/marketbrief/internal/brief"
	"github.com/amishk599/marketbrief/internal/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <title>",
	Short: "Show how a job title is classified and scored",
	Long:  "Runs the configured classifier and the scope scorer on a title. Useful when tuning classifier overrides.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	title := strings.Join(args, " ")
	c := classify.New(cfg.Classifier.Rules())
	fn, _ := c.Function(title)
	lvl, _ := c.Level(title)
	strategy, execution, cross, leadership, mgmt := brief.ScoreTitle(title, brief.DefaultScopeTerms())

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "title:            %s\n", title)
	fmt.Fprintf(out, "function:         %s\n", orNone(string(fn)))
	fmt.Fprintf(out, "level:            %s\n", orNone(string(lvl)))
	fmt.Fprintf(out, "strategy:         %d\n", strategy)
	fmt.Fprintf(out, "execution:        %d\n", execution)
	fmt.Fprintf(out, "cross-functional: %d\n", cross)
	fmt.Fprintf(out, "leadership:       %d\n", leadership)
	fmt.Fprintf(out, "people mgmt:      %t\n", mgmt)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

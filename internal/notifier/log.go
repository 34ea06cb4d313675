// Package notifier announces finished market briefs.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amishk599/marketbrief/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes brief summaries to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each brief via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the summary. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(_ context.Context, s model.BriefSummary) error {
	n.logger.Info("market brief ready",
		"date", s.RunDate,
		"roles", s.TotalRoles,
		"stale_pct", fmt.Sprintf("%.0f", s.StalePct),
		"functions", strings.Join(s.Functions, ","),
		"layoff_companies", s.LayoffCompany,
		"report", s.ReportPath,
	)
	return nil
}

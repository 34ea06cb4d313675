package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/amishk599/marketbrief/internal/brief"
	"github.com/amishk599/marketbrief/internal/cache"
	"github.com/amishk599/marketbrief/internal/classify"
	"github.com/amishk599/marketbrief/internal/config"
	"github.com/amishk599/marketbrief/internal/model"
	"github.com/amishk599/marketbrief/internal/notifier"
	"github.com/amishk599/marketbrief/internal/process"
	"github.com/amishk599/marketbrief/internal/ratelimit"
	"github.com/amishk599/marketbrief/internal/scrape"
	"github.com/amishk599/marketbrief/internal/store"
	"github.com/amishk599/marketbrief/internal/workpool"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "marketbrief",
	Short: "Executive job market intelligence",
	Long:  "marketbrief scrapes company job boards, classifies senior roles and writes a recruiter market brief.",
	// Default to `start` so that `marketbrief` with no args runs the daemon.
	RunE:         runStart,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: "+config.EnvConfigPath+" env var or ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > MARKETBRIEF_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	return config.Load(config.ResolvePath(path))
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func newNotifyClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// openStore connects the configured backend. dryRun swaps in a backend that
// accepts every write and returns no rows.
func openStore(ctx context.Context, cfg *config.Config, dryRun bool, logger *slog.Logger) (*store.Store, error) {
	var backend store.Backend
	if dryRun {
		logger.Info("dry-run mode enabled, nothing will be persisted")
		backend = store.NewNopBackend()
	} else {
		b, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.Path, cfg.Database.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("opening %s store: %w", cfg.Database.Driver, err)
		}
		backend = b
	}
	return store.New(backend, cfg.Scrape.BatchSize, logger), nil
}

// acquireLock takes the single-run lock file. It fails fast when another
// scrape or daemon already holds it.
func acquireLock(path string) (*flock.Flock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("another marketbrief run holds %s", path)
	}
	return lock, nil
}

// buildRunner wires the scrape chain: shared HTTP client and ATS limiter,
// retries, the optional redis cache and the classifier. The returned cleanup
// closes the cache connection.
func buildRunner(ctx context.Context, cfg *config.Config, repo scrape.Repository, logger *slog.Logger) (*scrape.Runner, func()) {
	classifier := classify.New(cfg.Classifier.Rules())
	processor := process.New(classifier, nil)

	limiter := ratelimit.NewATSRateLimiter(cfg.Scrape.RateLimit.MinDelay, cfg.Scrape.RateLimit.ATSOverrides)
	logger.Info("rate limiter configured", "min_delay", cfg.Scrape.RateLimit.MinDelay.String())

	opts := scrape.FetcherOptions{
		Client:      scrape.NewHTTPClient(cfg.Scrape.Timeout),
		Limiter:     limiter,
		MaxAttempts: cfg.Scrape.MaxAttempts,
		BaseDelay:   cfg.Scrape.BaseDelay,
		UserAgent:   cfg.Scrape.UserAgent,
		Logger:      logger,
	}

	cleanup := func() {}
	if cfg.Cache.Enabled() {
		c, err := cache.New(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err != nil {
			// The cache only saves requests; scrape without it.
			logger.Warn("fetch cache unavailable", "error", err)
		} else {
			logger.Info("fetch cache enabled", "ttl", cfg.Cache.TTL.String())
			opts.Cache = c
			cleanup = func() { _ = c.Close() }
		}
	}

	pool := workpool.New(cfg.Scrape.Workers)
	return scrape.NewRunner(repo, scrape.NewFetcherFactory(opts), processor, pool, logger), cleanup
}

func buildGenerator(cfg *config.Config, source brief.Source, n model.Notifier, logger *slog.Logger) *brief.Generator {
	writer := &brief.Writer{Dir: cfg.Brief.OutputDir, Logger: logger}
	return brief.NewGenerator(source, writer, n, cfg.Brief.Options(), brief.DefaultScopeTerms(), logger)
}

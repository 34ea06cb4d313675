package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/marketbrief/internal/brief"
	"github.com/amishk599/marketbrief/internal/classify"
	"github.com/amishk599/marketbrief/internal/model"
)

// EnvConfigPath names the environment variable consulted when no --config
// flag is given.
const EnvConfigPath = "MARKETBRIEF_CONFIG"

// DefaultPath is used when neither the flag nor the environment names a file.
const DefaultPath = "config.yaml"

// MaxScrapeWorkers caps scrape concurrency regardless of configuration.
const MaxScrapeWorkers = 5

// Config is the root configuration for marketbrief.
type Config struct {
	Database     DatabaseConfig
	Scrape       ScrapeConfig
	Cache        CacheConfig
	Discovery    DiscoveryConfig
	Brief        BriefConfig
	Notification NotificationConfig
	Classifier   ClassifierConfig
	Companies    []CompanyConfig
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	Path   string `yaml:"path"`   // sqlite file
	URL    string `yaml:"url"`    // postgres connection string
}

// ScrapeConfig controls fetching from ATS boards.
type ScrapeConfig struct {
	Workers     int
	Timeout     time.Duration // per-request HTTP timeout
	MaxAttempts int
	BaseDelay   time.Duration // first retry backoff
	BatchSize   int           // postings per upsert statement
	RateLimit   RateLimitConfig
	LockFile    string
	UserAgent   string
}

// RateLimitConfig controls ATS-level rate limiting.
type RateLimitConfig struct {
	MinDelay     time.Duration                    // minimum gap between requests to the same ATS
	ATSOverrides map[model.Platform]time.Duration // per-ATS overrides
}

// MinDelayFor returns the configured delay for the given ATS, falling back to MinDelay.
func (r RateLimitConfig) MinDelayFor(ats model.Platform) time.Duration {
	if d, ok := r.ATSOverrides[ats]; ok {
		return d
	}
	return r.MinDelay
}

// CacheConfig enables the Redis fetch cache when RedisURL is set.
type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// Enabled reports whether a cache is configured.
func (c CacheConfig) Enabled() bool { return c.RedisURL != "" }

// DiscoveryConfig controls careers page discovery.
type DiscoveryConfig struct {
	Workers int
	Timeout time.Duration
}

// BriefConfig controls report generation.
type BriefConfig struct {
	TargetFunctions  []model.Function
	TargetLevels     []model.Level
	StaleDays        int
	TopCompanies     int
	HighScopeLimit   int
	LayoffWindowDays int
	OutputDir        string
	Interval         time.Duration // cycle period for the start command
}

// Options converts the brief section into aggregation options.
func (b BriefConfig) Options() brief.Options {
	return brief.Options{
		TargetFunctions:  b.TargetFunctions,
		TargetLevels:     b.TargetLevels,
		StaleDays:        b.StaleDays,
		TopCompanies:     b.TopCompanies,
		HighScopeLimit:   b.HighScopeLimit,
		LayoffWindowDays: b.LayoffWindowDays,
		LayoffLimit:      brief.DefaultOptions().LayoffLimit,
	}
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// ClassifierConfig holds optional keyword overrides, in priority order.
type ClassifierConfig struct {
	Functions []FunctionOverride `yaml:"functions"`
	Levels    []LevelOverride    `yaml:"levels"`
}

type FunctionOverride struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type LevelOverride struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Rules applies the overrides on top of the built-in classifier rules.
func (c ClassifierConfig) Rules() classify.Rules {
	functions := make(map[model.Function][]string, len(c.Functions))
	var functionOrder []model.Function
	for _, f := range c.Functions {
		fn := model.Function(strings.ToLower(f.Name))
		functions[fn] = f.Keywords
		functionOrder = append(functionOrder, fn)
	}
	levels := make(map[model.Level][]string, len(c.Levels))
	var levelOrder []model.Level
	for _, l := range c.Levels {
		lvl := model.Level(strings.ToLower(l.Name))
		levels[lvl] = l.Keywords
		levelOrder = append(levelOrder, lvl)
	}
	return classify.DefaultRules().Merge(functions, levels, functionOrder, levelOrder)
}

// CompanyConfig describes a single company board to scrape.
type CompanyConfig struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	ATS        string `yaml:"ats"`
	CareersURL string `yaml:"careers_url"`
	BoardToken string `yaml:"board_token"`
	Enabled    *bool  `yaml:"enabled"`
}

// IsEnabled reports whether the company should be scraped. Companies are
// enabled unless explicitly disabled.
func (c CompanyConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Company converts the entry into a registry record. An unset id falls back
// to the board token, then the lower-cased name.
func (c CompanyConfig) Company() model.Company {
	id := c.ID
	if id == "" {
		id = c.BoardToken
	}
	if id == "" {
		id = strings.ToLower(strings.Join(strings.Fields(c.Name), "-"))
	}
	return model.Company{
		ID:         id,
		Name:       c.Name,
		ATS:        model.ParsePlatform(c.ATS),
		CareersURL: c.CareersURL,
		BoardToken: c.BoardToken,
	}
}

// EnabledCompanies returns the registry records of all enabled companies.
func (c *Config) EnabledCompanies() []model.Company {
	var out []model.Company
	for _, cc := range c.Companies {
		if cc.IsEnabled() {
			out = append(out, cc.Company())
		}
	}
	return out
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Database     DatabaseConfig     `yaml:"database"`
	Scrape       rawScrapeConfig    `yaml:"scrape"`
	Cache        rawCacheConfig     `yaml:"cache"`
	Discovery    rawDiscoveryConfig `yaml:"discovery"`
	Brief        rawBriefConfig     `yaml:"brief"`
	Notification NotificationConfig `yaml:"notification"`
	Classifier   ClassifierConfig   `yaml:"classifier"`
	Companies    []CompanyConfig    `yaml:"companies"`
}

type rawScrapeConfig struct {
	Workers     int                `yaml:"workers"`
	Timeout     string             `yaml:"timeout"`
	MaxAttempts int                `yaml:"max_attempts"`
	BaseDelay   string             `yaml:"base_delay"`
	BatchSize   int                `yaml:"batch_size"`
	RateLimit   rawRateLimitConfig `yaml:"rate_limit"`
	LockFile    string             `yaml:"lock_file"`
	UserAgent   string             `yaml:"user_agent"`
}

type rawRateLimitConfig struct {
	MinDelay     string            `yaml:"min_delay"`
	ATSOverrides map[string]string `yaml:"ats_overrides"`
}

type rawCacheConfig struct {
	RedisURL string `yaml:"redis_url"`
	TTL      string `yaml:"ttl"`
}

type rawDiscoveryConfig struct {
	Workers int    `yaml:"workers"`
	Timeout string `yaml:"timeout"`
}

type rawBriefConfig struct {
	TargetFunctions  []string `yaml:"target_functions"`
	TargetLevels     []string `yaml:"target_levels"`
	StaleDays        int      `yaml:"stale_days"`
	TopCompanies     int      `yaml:"top_companies"`
	HighScopeLimit   int      `yaml:"high_scope_limit"`
	LayoffWindowDays int      `yaml:"layoff_window_days"`
	OutputDir        string   `yaml:"output_dir"`
	Interval         string   `yaml:"interval"`
}

// ResolvePath picks the config file: explicit flag, then MARKETBRIEF_CONFIG,
// then ./config.yaml.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromRaw(raw rawConfig) (*Config, error) {
	defaults := brief.DefaultOptions()
	var err error
	cfg := &Config{
		Database:     raw.Database,
		Notification: raw.Notification,
		Classifier:   raw.Classifier,
		Companies:    raw.Companies,
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "marketbrief.db"
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}

	// scrape
	s := raw.Scrape
	cfg.Scrape = ScrapeConfig{
		Workers:     orInt(s.Workers, MaxScrapeWorkers),
		MaxAttempts: orInt(s.MaxAttempts, 3),
		BatchSize:   orInt(s.BatchSize, 100),
		LockFile:    orString(s.LockFile, "marketbrief.lock"),
		UserAgent:   orString(s.UserAgent, "marketbrief/1.0"),
	}
	if cfg.Scrape.Timeout, err = parseDuration("scrape.timeout", s.Timeout, 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Scrape.BaseDelay, err = parseDuration("scrape.base_delay", s.BaseDelay, time.Second); err != nil {
		return nil, err
	}
	if cfg.Scrape.RateLimit.MinDelay, err = parseDuration("scrape.rate_limit.min_delay", s.RateLimit.MinDelay, time.Second); err != nil {
		return nil, err
	}
	cfg.Scrape.RateLimit.ATSOverrides = make(map[model.Platform]time.Duration)
	for ats, v := range s.RateLimit.ATSOverrides {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse scrape.rate_limit.ats_overrides[%q]: %w", ats, err)
		}
		cfg.Scrape.RateLimit.ATSOverrides[model.ParsePlatform(ats)] = d
	}

	// cache
	cfg.Cache.RedisURL = raw.Cache.RedisURL
	if cfg.Cache.TTL, err = parseDuration("cache.ttl", raw.Cache.TTL, 6*time.Hour); err != nil {
		return nil, err
	}

	// discovery
	cfg.Discovery.Workers = orInt(raw.Discovery.Workers, 10)
	if cfg.Discovery.Timeout, err = parseDuration("discovery.timeout", raw.Discovery.Timeout, 10*time.Second); err != nil {
		return nil, err
	}

	// brief
	b := raw.Brief
	cfg.Brief = BriefConfig{
		TargetFunctions:  defaults.TargetFunctions,
		TargetLevels:     defaults.TargetLevels,
		StaleDays:        orInt(b.StaleDays, defaults.StaleDays),
		TopCompanies:     orInt(b.TopCompanies, defaults.TopCompanies),
		HighScopeLimit:   orInt(b.HighScopeLimit, defaults.HighScopeLimit),
		LayoffWindowDays: orInt(b.LayoffWindowDays, defaults.LayoffWindowDays),
		OutputDir:        orString(b.OutputDir, "."),
	}
	if len(b.TargetFunctions) > 0 {
		cfg.Brief.TargetFunctions = nil
		for _, f := range b.TargetFunctions {
			cfg.Brief.TargetFunctions = append(cfg.Brief.TargetFunctions, model.Function(strings.ToLower(strings.TrimSpace(f))))
		}
	}
	if len(b.TargetLevels) > 0 {
		cfg.Brief.TargetLevels = nil
		for _, l := range b.TargetLevels {
			cfg.Brief.TargetLevels = append(cfg.Brief.TargetLevels, model.Level(strings.ToLower(strings.TrimSpace(l))))
		}
	}
	if cfg.Brief.Interval, err = parseDuration("brief.interval", b.Interval, 24*time.Hour); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case "sqlite":
	case "postgres":
		if cfg.Database.URL == "" {
			return fmt.Errorf("database.url is required when database.driver is \"postgres\"")
		}
	default:
		return fmt.Errorf("database.driver must be \"sqlite\" or \"postgres\", got %q", cfg.Database.Driver)
	}

	if cfg.Scrape.Workers < 1 || cfg.Scrape.Workers > MaxScrapeWorkers {
		return fmt.Errorf("scrape.workers must be between 1 and %d, got %d", MaxScrapeWorkers, cfg.Scrape.Workers)
	}
	if cfg.Scrape.MaxAttempts < 1 {
		return fmt.Errorf("scrape.max_attempts must be positive, got %d", cfg.Scrape.MaxAttempts)
	}
	if cfg.Scrape.Timeout <= 0 {
		return fmt.Errorf("scrape.timeout must be positive, got %v", cfg.Scrape.Timeout)
	}
	for ats := range cfg.Scrape.RateLimit.ATSOverrides {
		if ats == model.PlatformUnknown {
			return fmt.Errorf("scrape.rate_limit.ats_overrides has an unknown ATS key")
		}
	}

	if cfg.Cache.Enabled() {
		if _, err := url.Parse(cfg.Cache.RedisURL); err != nil {
			return fmt.Errorf("cache.redis_url is invalid: %w", err)
		}
		if cfg.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", cfg.Cache.TTL)
		}
	}

	if cfg.Discovery.Workers < 1 {
		return fmt.Errorf("discovery.workers must be positive, got %d", cfg.Discovery.Workers)
	}

	for _, f := range cfg.Brief.TargetFunctions {
		if !f.Valid() {
			return fmt.Errorf("brief.target_functions: unknown function %q", f)
		}
	}
	for _, l := range cfg.Brief.TargetLevels {
		if !l.Valid() {
			return fmt.Errorf("brief.target_levels: unknown level %q", l)
		}
	}
	if cfg.Brief.StaleDays < 1 {
		return fmt.Errorf("brief.stale_days must be positive, got %d", cfg.Brief.StaleDays)
	}
	if cfg.Brief.Interval <= 0 {
		return fmt.Errorf("brief.interval must be positive, got %v", cfg.Brief.Interval)
	}

	if cfg.Notification.Type != "log" && cfg.Notification.Type != "slack" {
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}
	if cfg.Notification.Type == "slack" {
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	}

	for _, f := range cfg.Classifier.Functions {
		if !model.Function(strings.ToLower(f.Name)).Valid() {
			return fmt.Errorf("classifier.functions: unknown function %q", f.Name)
		}
	}
	for _, l := range cfg.Classifier.Levels {
		if lvl := model.Level(strings.ToLower(l.Name)); !lvl.Valid() || lvl == model.LevelManager {
			return fmt.Errorf("classifier.levels: unknown level %q", l.Name)
		}
	}

	seen := make(map[string]bool)
	for i, c := range cfg.Companies {
		if c.CareersURL == "" && c.BoardToken == "" {
			return fmt.Errorf("companies[%d]: careers_url or board_token is required", i)
		}
		comp := c.Company()
		if comp.ID == "" {
			return fmt.Errorf("companies[%d]: id, board_token or name is required", i)
		}
		if seen[comp.ID] {
			return fmt.Errorf("companies[%d]: duplicate company id %q", i, comp.ID)
		}
		seen[comp.ID] = true
		if c.ATS != "" && comp.ATS == model.PlatformUnknown {
			return fmt.Errorf("companies[%d]: unsupported ats %q", i, c.ATS)
		}
	}

	return nil
}

func parseDuration(key, v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, v, err)
	}
	return d, nil
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/evidence"
)

// #region types
// Config is the process-level configuration for the scorer binaries.
type Config struct {
	DBPath        string          `yaml:"db" validate:"required"`
	Listen        string          `yaml:"listen" validate:"required,hostname_port"`
	MetricsListen string          `yaml:"metrics_listen" validate:"omitempty,hostname_port"`
	ObjectivesDir string          `yaml:"objectives_dir"`
	Log           LogConfig       `yaml:"log"`
	Collector     CollectorConfig `yaml:"collector"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// CollectorConfig mirrors evidence.CollectorConfig in file form.
type CollectorConfig struct {
	CostBudgetUSD        float64 `yaml:"cost_budget_usd" validate:"gte=0"`
	LatencyBudgetSeconds float64 `yaml:"latency_budget_seconds" validate:"gte=0"`
	StrictStaticAnalysis bool    `yaml:"strict_static_analysis"`
}

// #endregion types

// #region defaults
// Default returns the configuration used when no file is supplied.
func Default() Config {
	cc := evidence.DefaultCollectorConfig()
	return Config{
		DBPath:        "scorer.db",
		Listen:        "localhost:50061",
		MetricsListen: "localhost:9464",
		ObjectivesDir: "objectives",
		Log:           LogConfig{Level: "info", Format: "text"},
		Collector: CollectorConfig{
			CostBudgetUSD:        cc.CostBudgetUSD,
			LatencyBudgetSeconds: cc.LatencyBudgetSeconds,
			StrictStaticAnalysis: cc.StrictStaticAnalysis,
		},
	}
}

// Evidence converts the collector section for evidence.NewCollector.
func (c Config) Evidence() evidence.CollectorConfig {
	return evidence.CollectorConfig{
		CostBudgetUSD:        c.Collector.CostBudgetUSD,
		LatencyBudgetSeconds: c.Collector.LatencyBudgetSeconds,
		StrictStaticAnalysis: c.Collector.StrictStaticAnalysis,
	}
}

// #endregion defaults

// #region load
// Load reads path over the defaults, applies environment overrides and validates.
// An empty path, or a path that does not exist, yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.DBPath = envOr("SCORER_DB", c.DBPath)
	c.Listen = envOr("SCORER_LISTEN", c.Listen)
	c.MetricsListen = envOr("SCORER_METRICS_LISTEN", c.MetricsListen)
	c.ObjectivesDir = envOr("SCORER_OBJECTIVES", c.ObjectivesDir)
	c.Log.Level = envOr("SCORER_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("SCORER_LOG_FORMAT", c.Log.Format)

	if v := os.Getenv("SCORER_COST_BUDGET_USD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SCORER_COST_BUDGET_USD: %w", err)
		}
		c.Collector.CostBudgetUSD = f
	}
	if v := os.Getenv("SCORER_LATENCY_BUDGET_SECONDS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SCORER_LATENCY_BUDGET_SECONDS: %w", err)
		}
		c.Collector.LatencyBudgetSeconds = f
	}
	return nil
}

// #endregion load

// #region validate
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct rules on every section.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// #endregion validate

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers

// scorer scores agent sessions against versioned objectives.
//
// Usage:
//
//	scorer evaluate --checks checks.json --objective objective.yaml [--db scorer.db] [--json]
//	scorer serve [--config scorer.yaml]
//	scorer replay --fixture fixture.json [--concurrency N]
//	scorer inspect --db scorer.db [--last N] [--id ID] [--fingerprint FP] [--json]
//	scorer export --db scorer.db --objective objective.yaml --out fixture.json [--last N]
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/config"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

// #region root

var rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// cfg is resolved once per invocation in the root pre-run hook.
var cfg config.Config

// errDiverged signals a replay mismatch; main maps it to exit code 1 without
// printing it a second time.
var errDiverged = errors.New("replay diverged")

var rootCmd = &cobra.Command{
	Use:   "scorer",
	Short: "Deterministic objective scoring for agent sessions",
	Long: "scorer turns raw session check results into evidence, gates them against a\n" +
		"versioned objective and reports a six-dimension score vector.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", envOr("SCORER_CONFIG", "scorer.yaml"), "Config file (YAML); missing file means defaults")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level override: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "", "Log format override: text or json")

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.Version = version
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(rootFlags.configPath)
	if err != nil {
		return err
	}
	if rootFlags.logLevel != "" {
		c.Log.Level = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		if !logging.ValidFormat(rootFlags.logFormat) {
			return fmt.Errorf("--log-format must be text or json, got %q", rootFlags.logFormat)
		}
		c.Log.Format = rootFlags.logFormat
	}
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	logging.Init(level, c.Log.Format, cmd.ErrOrStderr())
	cfg = c
	return nil
}

// #endregion root

// #region main

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errDiverged) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// #endregion main

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers

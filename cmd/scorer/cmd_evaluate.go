package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/evidence"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/logging"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/objective"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/pipeline"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/store"
)

var evaluateFlags struct {
	checksPath    string
	objectivePath string
	objectiveID   string
	version       string
	dbPath        string
	jsonOut       bool
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score one session's check results against an objective",
	Long: `Read a SessionCheckResults JSON file, collect evidence, apply the objective's
hard gates and shaped terms, and print the result.

The objective comes from --objective (a YAML or JSON file) or from
--objective-id [--version] resolved in the configured objectives directory.
With --db the result and its evidence are also written to the results store.
A run without run_id gets a generated one.`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.StringVar(&evaluateFlags.checksPath, "checks", "", "Path to session check results JSON (required)")
	f.StringVar(&evaluateFlags.objectivePath, "objective", "", "Path to objective YAML/JSON")
	f.StringVar(&evaluateFlags.objectiveID, "objective-id", "", "Objective id in the objectives directory")
	f.StringVar(&evaluateFlags.version, "version", "", "Objective version (default: latest)")
	f.StringVar(&evaluateFlags.dbPath, "db", "", "Results store to publish to (optional)")
	f.BoolVar(&evaluateFlags.jsonOut, "json", false, "Output as JSON instead of table")
	_ = evaluateCmd.MarkFlagRequired("checks")
	evaluateCmd.MarkFlagsMutuallyExclusive("objective", "objective-id")
	evaluateCmd.MarkFlagsOneRequired("objective", "objective-id")
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	checks, err := readChecks(evaluateFlags.checksPath)
	if err != nil {
		return err
	}
	if checks.RunID == "" {
		checks.RunID = uuid.New().String()
	}

	spec, err := resolveObjective(evaluateFlags.objectivePath, evaluateFlags.objectiveID, evaluateFlags.version)
	if err != nil {
		return err
	}

	var publishers []pipeline.Publisher
	if evaluateFlags.dbPath != "" {
		st, err := store.NewStore(evaluateFlags.dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		publishers = append(publishers, st)
	}

	p := pipeline.New(evidence.NewCollector(cfg.Evidence()), pipeline.Config{
		Publishers: publishers,
		Logger:     logging.New("evaluate"),
	})
	result := p.Run(cmd.Context(), checks, spec)

	if evaluateFlags.jsonOut {
		return printJSON(cmd.OutOrStdout(), result)
	}
	printResult(cmd.OutOrStdout(), result)
	return nil
}

func readChecks(path string) (evidence.SessionCheckResults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return evidence.SessionCheckResults{}, fmt.Errorf("read checks: %w", err)
	}
	var checks evidence.SessionCheckResults
	if err := json.Unmarshal(data, &checks); err != nil {
		return evidence.SessionCheckResults{}, fmt.Errorf("parse checks %s: %w", path, err)
	}
	return checks, nil
}

// resolveObjective loads a single file, or looks id@version up in the
// configured objectives directory.
func resolveObjective(path, id, version string) (*objective.Spec, error) {
	if path != "" {
		return objective.LoadFile(path)
	}
	catalog, err := objective.LoadDir(cfg.ObjectivesDir)
	if err != nil {
		return nil, err
	}
	spec, ok := catalog.Get(id, version)
	if !ok {
		return nil, fmt.Errorf("objective %s not found in %s", id, cfg.ObjectivesDir)
	}
	return spec, nil
}

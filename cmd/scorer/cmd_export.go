package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/objective"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/replay"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/store"
)

var exportFlags struct {
	dbPath        string
	objectivePath string
	outPath       string
	last          int
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored evaluations as a replay fixture",
	Long: `Take the most recent stored evaluations of one objective (id and version must
match the --objective file) and write them, with their evidence and results,
as a replay fixture. Replaying the fixture later flags any scoring drift.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFlags.dbPath, "db", "", "Results store path (default: config db)")
	f.StringVar(&exportFlags.objectivePath, "objective", "", "Objective YAML/JSON the evaluations were scored with (required)")
	f.StringVar(&exportFlags.outPath, "out", "", "Output fixture JSON path (required)")
	f.IntVar(&exportFlags.last, "last", 20, "Number of most recent evaluations to scan")
	_ = exportCmd.MarkFlagRequired("objective")
	_ = exportCmd.MarkFlagRequired("out")
}

func runExport(cmd *cobra.Command, _ []string) error {
	dbPath := exportFlags.dbPath
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	spec, err := objective.LoadFile(exportFlags.objectivePath)
	if err != nil {
		return err
	}
	st, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	f, err := buildFixture(cmd.Context(), st, spec, exportFlags.last)
	if err != nil {
		return err
	}
	if len(f.Runs) == 0 {
		return fmt.Errorf("no stored evaluations of %s in the last %d", spec.Key(), exportFlags.last)
	}
	if err := replay.WriteFixture(exportFlags.outPath, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d run(s) of %s to %s\n", len(f.Runs), spec.Key(), exportFlags.outPath)
	return nil
}

// buildFixture collects matching evaluations oldest first.
func buildFixture(ctx context.Context, st *store.Store, spec *objective.Spec, last int) (*replay.Fixture, error) {
	recs, err := st.ListEvaluations(ctx, last)
	if err != nil {
		return nil, err
	}
	f := &replay.Fixture{
		Description: fmt.Sprintf("exported evaluations of %s", spec.Key()),
		Objective:   spec.Definition(),
	}
	for i := len(recs) - 1; i >= 0; i-- {
		r := recs[i]
		if r.Result.ObjectiveID != spec.ObjectiveID() || r.Result.ObjectiveVersion != spec.Version() {
			continue
		}
		items, err := st.EvidenceFor(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		f.Runs = append(f.Runs, replay.RecordedRun(r.Result, r.SessionID, r.CollectedAt, items))
	}
	return f, nil
}

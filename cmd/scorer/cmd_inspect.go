package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/evidence"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/store"
)

var inspectFlags struct {
	dbPath      string
	last        int
	id          string
	fingerprint string
	jsonOut     bool
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Browse stored evaluations",
	Long: `List the most recent evaluations in a results store, show one evaluation with
its evidence (--id), or list every evaluation of one evidence bundle
(--fingerprint) to spot duplicate attempts.`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.StringVar(&inspectFlags.dbPath, "db", "", "Results store path (default: config db)")
	f.IntVar(&inspectFlags.last, "last", 20, "Show N most recent evaluations")
	f.StringVar(&inspectFlags.id, "id", "", "Show a single evaluation with its evidence")
	f.StringVar(&inspectFlags.fingerprint, "fingerprint", "", "Show every evaluation of one evidence bundle")
	f.BoolVar(&inspectFlags.jsonOut, "json", false, "Output as JSON instead of table")
	inspectCmd.MarkFlagsMutuallyExclusive("id", "fingerprint")
}

type inspectDetail struct {
	Evaluation store.EvaluationRecord `json:"evaluation"`
	Evidence   []evidence.Item        `json:"evidence"`
}

func runInspect(cmd *cobra.Command, _ []string) error {
	dbPath := inspectFlags.dbPath
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	st, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if inspectFlags.id != "" {
		rec, err := st.GetEvaluation(ctx, inspectFlags.id)
		if err != nil {
			return err
		}
		items, err := st.EvidenceFor(ctx, rec.ID)
		if err != nil {
			return err
		}
		if inspectFlags.jsonOut {
			return printJSON(out, inspectDetail{Evaluation: rec, Evidence: items})
		}
		fmt.Fprintf(out, "evaluation %s  session=%s  collected=%s\n", rec.ID, rec.SessionID, rec.CollectedAt.Format("2006-01-02T15:04:05Z"))
		printResult(out, rec.Result)
		t := newTable(out)
		t.AppendHeader(table.Row{"Source", "Item", "Value"})
		for _, it := range items {
			t.AppendRow(table.Row{it.Source, it.ItemID, formatScore(it.Value)})
		}
		t.Render()
		return nil
	}

	var recs []store.EvaluationRecord
	if inspectFlags.fingerprint != "" {
		recs, err = st.FindByFingerprint(ctx, inspectFlags.fingerprint)
	} else {
		recs, err = st.ListEvaluations(ctx, inspectFlags.last)
	}
	if err != nil {
		return err
	}
	if inspectFlags.jsonOut {
		if recs == nil {
			recs = []store.EvaluationRecord{}
		}
		return printJSON(out, recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no evaluations found")
		return nil
	}

	t := newTable(out)
	t.AppendHeader(table.Row{"ID", "Run", "Objective", "Outcome", "Correctness", "Cost", "Latency", "Failures", "Created"})
	for _, r := range recs {
		t.AppendRow(table.Row{
			shortID(r.ID),
			r.Result.RunID,
			r.Result.ObjectiveID + "@" + r.Result.ObjectiveVersion,
			passLabel(r.Result.Passed),
			formatScore(r.Result.ScoreVector.Correctness),
			formatScore(r.Result.ScoreVector.Cost),
			formatScore(r.Result.ScoreVector.Latency),
			strings.Join(r.Result.Failures, ","),
			r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	t.Render()
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

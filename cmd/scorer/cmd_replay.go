package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/replay"
)

var replayFlags struct {
	fixtures    []string
	concurrency int
	jsonOut     bool
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay regression fixtures and report divergence",
	Long: `Re-score every run in one or more fixture files and compare each result with
the recorded expectation. Exits 1 when any run diverges.`,
	Args: cobra.NoArgs,
	RunE: runReplay,
}

func init() {
	f := replayCmd.Flags()
	f.StringSliceVar(&replayFlags.fixtures, "fixture", nil, "Fixture JSON path (repeatable, required)")
	f.IntVar(&replayFlags.concurrency, "concurrency", 4, "Runs scored in parallel per fixture (0 = unlimited)")
	f.BoolVar(&replayFlags.jsonOut, "json", false, "Output as JSON instead of table")
	_ = replayCmd.MarkFlagRequired("fixture")
}

type replayReport struct {
	Fixture string                `json:"fixture"`
	Summary replay.ReplaySummary  `json:"summary"`
	Results []replay.ReplayResult `json:"results"`
}

func runReplay(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	var reports []replayReport
	diverged := 0

	for _, path := range replayFlags.fixtures {
		f, err := replay.LoadFixture(path)
		if err != nil {
			return err
		}
		results, err := replay.RunFixture(cmd.Context(), f, replayFlags.concurrency)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		summary := replay.Summarize(results)
		diverged += summary.Diverged
		reports = append(reports, replayReport{Fixture: path, Summary: summary, Results: results})
	}

	if replayFlags.jsonOut {
		if err := printJSON(out, reports); err != nil {
			return err
		}
	} else {
		for _, rep := range reports {
			printReplay(cmd, rep)
		}
	}
	if diverged > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d run(s) diverged\n", diverged)
		return errDiverged
	}
	return nil
}

func printReplay(cmd *cobra.Command, rep replayReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", rep.Fixture)

	t := newTable(out)
	t.AppendHeader(table.Row{"Run", "Outcome", "Check", "Detail"})
	for _, r := range rep.Results {
		check := okMark("OK")
		detail := ""
		if !r.Match {
			check = failMark("DIFF")
			detail = strings.Join(r.Diffs, "; ")
		}
		t.AppendRow(table.Row{r.RunID, passLabel(r.Result.Passed), check, detail})
	}
	s := rep.Summary
	t.AppendFooter(table.Row{fmt.Sprintf("%d runs", s.TotalRuns), fmt.Sprintf("%d pass / %d fail", s.Passed, s.GateFailed), fmt.Sprintf("%d diverged", s.Diverged), ""})
	t.Render()
}

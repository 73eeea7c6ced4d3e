package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/objective"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/scoring"
)

// #region markers
var (
	okMark   = color.New(color.FgGreen, color.Bold).SprintFunc()
	failMark = color.New(color.FgRed, color.Bold).SprintFunc()
	dimMark  = color.New(color.FgHiBlack).SprintFunc()
)

func passLabel(passed bool) string {
	if passed {
		return okMark("PASS")
	}
	return failMark("FAIL")
}

// #endregion markers

// #region tables

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// printResult renders one result as a dimension table followed by failures and refs.
func printResult(w io.Writer, r scoring.Result) {
	fmt.Fprintf(w, "%s  run=%s  objective=%s@%s\n", passLabel(r.Passed), r.RunID, r.ObjectiveID, r.ObjectiveVersion)
	fmt.Fprintf(w, "%s\n", dimMark("fingerprint "+r.BundleFingerprint))

	t := newTable(w)
	t.AppendHeader(table.Row{"Dimension", "Score"})
	for _, d := range objective.Dimensions() {
		t.AppendRow(table.Row{string(d), formatScore(r.ScoreVector.Get(d))})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.Render()

	if len(r.Failures) > 0 {
		fmt.Fprintf(w, "failed gates: %s\n", strings.Join(r.Failures, ", "))
	}
	if len(r.AttributionRefs) > 0 {
		fmt.Fprintf(w, "attribution: %s\n", strings.Join(r.AttributionRefs, ", "))
	}
}

// formatScore prints the shortest decimal that round-trips to v, so table
// output shows the same value as --json.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// #endregion tables

// #region json

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// #endregion json

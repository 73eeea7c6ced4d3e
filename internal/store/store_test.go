package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/evidence"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/objective"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/pipeline"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/scoring"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(runID string, passed bool) pipeline.Record {
	items := []evidence.Item{
		{Source: evidence.SourceTestOutput, Value: 0.75, ItemID: "test_output:unit"},
		{Source: evidence.SourceValidatorResult, Value: 1, ItemID: "validator_result:schema"},
	}
	res := scoring.Result{
		Passed:            passed,
		ScoreVector:       scoring.ScoreVector{Correctness: 0.75},
		Failures:          []string{},
		AttributionRefs:   []string{"test_output:unit"},
		RunID:             runID,
		BundleFingerprint: evidence.Fingerprint(runID, items),
		ObjectiveID:       "code-change",
		ObjectiveVersion:  "1.0.0",
	}
	if !passed {
		res.ScoreVector = scoring.Zero()
		res.Failures = []string{"validators-pass"}
		res.AttributionRefs = []string{}
	}
	return pipeline.Record{
		Result:      res,
		SessionID:   "sess-" + runID,
		CollectedAt: time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC),
		Evidence:    items,
	}
}

func TestInsertAndGet(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()
	rec := sampleRecord("run-1", true)

	id, err := s.Insert(ctx, rec)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected uuid id, got %q: %v", id, err)
	}

	got, err := s.GetEvaluation(ctx, id)
	if err != nil {
		t.Fatalf("GetEvaluation: %v", err)
	}
	if diff := cmp.Diff(rec.Result, got.Result); diff != "" {
		t.Errorf("result round-trip mismatch (-want +got):\n%s", diff)
	}
	if got.SessionID != "sess-run-1" || !got.CollectedAt.Equal(rec.CollectedAt) {
		t.Errorf("unexpected metadata: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	items, err := s.EvidenceFor(ctx, id)
	if err != nil {
		t.Fatalf("EvidenceFor: %v", err)
	}
	if diff := cmp.Diff(rec.Evidence, items); diff != "" {
		t.Errorf("evidence mismatch (-want +got):\n%s", diff)
	}
}

func TestGetEvaluation_NotFound(t *testing.T) {
	s := tempDB(t)
	_, err := s.GetEvaluation(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFailedResultRoundTrip(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()
	rec := sampleRecord("run-fail", false)
	rec.SessionID = ""

	id, err := s.Insert(ctx, rec)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := s.GetEvaluation(ctx, id)
	if err != nil {
		t.Fatalf("GetEvaluation: %v", err)
	}
	if got.Result.Passed || !got.Result.ScoreVector.IsZero() {
		t.Errorf("expected failed zero result, got %+v", got.Result)
	}
	if diff := cmp.Diff([]string{"validators-pass"}, got.Result.Failures); diff != "" {
		t.Errorf("failures mismatch (-want +got):\n%s", diff)
	}
	if got.Result.AttributionRefs == nil || got.SessionID != "" {
		t.Errorf("expected empty non-nil refs and empty session, got %+v", got)
	}
}

func TestListEvaluations_NewestFirst(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for _, run := range []string{"a", "b", "c"} {
		if err := s.Publish(ctx, sampleRecord(run, true)); err != nil {
			t.Fatalf("Publish %s: %v", run, err)
		}
	}

	recs, err := s.ListEvaluations(ctx, 2)
	if err != nil {
		t.Fatalf("ListEvaluations: %v", err)
	}
	var runs []string
	for _, r := range recs {
		runs = append(runs, r.Result.RunID)
	}
	if diff := cmp.Diff([]string{"c", "b"}, runs); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestFindByFingerprint(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()
	rec := sampleRecord("dup", true)

	first, _ := s.Insert(ctx, rec)
	second, _ := s.Insert(ctx, rec)
	if _, err := s.Insert(ctx, sampleRecord("other", true)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	recs, err := s.FindByFingerprint(ctx, rec.Result.BundleFingerprint)
	if err != nil {
		t.Fatalf("FindByFingerprint: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != first || recs[1].ID != second {
		t.Fatalf("expected [%s %s], got %+v", first, second, recs)
	}

	none, err := s.FindByFingerprint(ctx, "nope")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no matches, got %v, %v", none, err)
	}
}

func TestStoreAsPipelinePublisher(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()
	spec := objective.MustNew(objective.Definition{
		ObjectiveID: "latency-budget",
		Version:     "1",
		ShapedTerms: []objective.ShapedTermSpec{
			{ID: "wall-clock", Weight: 1, Direction: objective.Minimize, EvidenceSource: evidence.SourceLatencyTelemetry, Dimension: objective.Latency},
		},
	})
	latency := 120.0
	p := pipeline.New(nil, pipeline.Config{Publishers: []pipeline.Publisher{s}})
	result := p.Run(ctx, evidence.SessionCheckResults{
		RunID:          "run-pub",
		SessionID:      "sess-pub",
		CollectedAt:    time.Date(2026, 4, 4, 0, 0, 0, 0, time.UTC),
		LatencySeconds: &latency,
	}, spec)

	recs, err := s.FindByFingerprint(ctx, result.BundleFingerprint)
	if err != nil {
		t.Fatalf("FindByFingerprint: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 stored evaluation, got %d", len(recs))
	}
	if diff := cmp.Diff(result, recs[0].Result); diff != "" {
		t.Errorf("stored result mismatch (-want +got):\n%s", diff)
	}
	items, _ := s.EvidenceFor(ctx, recs[0].ID)
	if len(items) != 1 || items[0].Source != evidence.SourceLatencyTelemetry {
		t.Errorf("unexpected stored evidence: %+v", items)
	}
}

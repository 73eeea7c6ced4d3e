package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/scoring"
)

// #region init-tests
func TestNew_HasComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelDebug, "text", &buf)

	logger := New("test-component")
	logger.Info("hello")

	output := buf.String()
	if !strings.Contains(output, "component=test-component") {
		t.Errorf("expected component=test-component in output, got: %s", output)
	}
}

func TestInit_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelInfo, "json", &buf)

	New("json-test").Info("json check")

	output := buf.String()
	if !strings.Contains(output, `"level":"INFO"`) {
		t.Errorf("expected JSON level field, got: %s", output)
	}
	if !strings.Contains(output, `"component":"json-test"`) {
		t.Errorf("expected JSON component field, got: %s", output)
	}
}

func TestInit_LevelGating(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelWarn, "text", &buf)

	logger := New("gate-test")
	logger.Info("should be suppressed")
	logger.Warn("should appear")

	output := buf.String()
	if strings.Contains(output, "should be suppressed") {
		t.Error("Info message should be suppressed at Warn level")
	}
	if !strings.Contains(output, "should appear") {
		t.Error("Warn message should appear at Warn level")
	}
}

// #endregion init-tests

// #region parse-tests
func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{" warning ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidFormat(t *testing.T) {
	if !ValidFormat("text") || !ValidFormat("json") || ValidFormat("xml") {
		t.Error("unexpected ValidFormat result")
	}
}

// #endregion parse-tests

// #region log-decision-tests
func TestLogDecision_Pass(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	LogDecision(context.Background(), logger, scoring.Result{
		Passed:            true,
		ScoreVector:       scoring.ScoreVector{Latency: 0.8},
		Failures:          []string{},
		RunID:             "run-1",
		BundleFingerprint: "0123456789abcdef0123",
		ObjectiveID:       "code-change",
		ObjectiveVersion:  "1.0.0",
	})

	output := buf.String()
	for _, want := range []string{"level=INFO", "decision=pass", "run_id=run-1", "objective=code-change@1.0.0", "fingerprint=0123456789ab ", "score.latency=0.8"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestLogDecision_GateFail(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogDecision(context.Background(), logger, scoring.Result{
		Failures: []string{"validators-pass"},
		RunID:    "run-2",
	})

	output := buf.String()
	if !strings.Contains(output, "level=WARN") || !strings.Contains(output, "decision=gate_fail") {
		t.Errorf("expected warn gate_fail line, got: %s", output)
	}
	if !strings.Contains(output, "validators-pass") {
		t.Errorf("expected failure id in output, got: %s", output)
	}
}

// #endregion log-decision-tests

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestWithUserAttachesUserID(t *testing.T) {
	buf := captureDefault(t)

	WithUser("a2f1c7de-93b4-4f5e-8a01-55c4e9b21d6f").Info("closed day")

	if !strings.Contains(buf.String(), `"user_id":"a2f1c7de-93b4-4f5e-8a01-55c4e9b21d6f"`) {
		t.Fatalf("log line missing user_id: %s", buf.String())
	}
}

func TestWithPeriodAttachesBounds(t *testing.T) {
	buf := captureDefault(t)

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	WithPeriod(WithUser("u"), start, start.AddDate(0, 0, 1)).Info("closed day")

	out := buf.String()
	if !strings.Contains(out, `"period_start":"2026-03-02T00:00:00Z"`) {
		t.Fatalf("log line missing period_start: %s", out)
	}
	if !strings.Contains(out, `"period_end":"2026-03-03T00:00:00Z"`) {
		t.Fatalf("log line missing period_end: %s", out)
	}
}

package testutil

import (
	"log/slog"
	"testing"
)

func TestBufferedSlogHandlerCapturesRecords(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.Info("loading series", slog.String("name", "M2"))
	logger.Error("analysis failed", slog.Int("observations", 5))

	records := handler.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if !handler.ContainsMessage("loading series") {
		t.Error("expected to find 'loading series'")
	}
	if records[0].Attrs["name"] != "M2" {
		t.Errorf("expected name attr M2, got %v", records[0].Attrs["name"])
	}
}

func TestBufferedSlogHandlerFiltersByLevel(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.Debug("debug msg")
	logger.Info("info msg")
	logger.Warn("warn msg")
	logger.Error("error msg")

	if got := len(handler.RecordsByLevel(slog.LevelWarn)); got != 1 {
		t.Errorf("expected 1 warn record, got %d", got)
	}
	if got := len(handler.Records()); got != 4 {
		t.Errorf("expected all 4 levels captured, got %d", got)
	}

	AssertLogContains(t, handler, slog.LevelError, "error msg")
}

package audit

import (
	"bytes"
	"strings"
	"testing"

	"robot-config-studio/internal/model"
)

// TestTrailRecordsBatches tests log emission and the in-memory tail
func TestTrailRecordsBatches(t *testing.T) {
	var buf bytes.Buffer
	trail := NewTrail(&buf)

	changes := []model.ChangeRecord{
		{Engine: model.EngineA, Group: 1, Logic: "Power", Field: "grid", CurrentValue: "40", NewValue: "50"},
	}
	trail.Record("default", SourceFileImport, changes)

	out := buf.String()
	if !strings.Contains(out, `"field":"grid"`) || !strings.Contains(out, `"new":"50"`) {
		t.Errorf("Log line missing change fields: %s", out)
	}
	if !strings.Contains(out, `"source":"FILE_IMPORT"`) {
		t.Errorf("Log line missing source: %s", out)
	}

	recent := trail.Recent()
	if len(recent) != 1 || len(recent[0].Changes) != 1 {
		t.Fatalf("Unexpected recent batches: %+v", recent)
	}
	if recent[0].Profile != "default" {
		t.Errorf("Expected profile default, got %s", recent[0].Profile)
	}
}

// TestTrailIgnoresEmptyBatches tests that previews never pollute the trail
func TestTrailIgnoresEmptyBatches(t *testing.T) {
	var buf bytes.Buffer
	trail := NewTrail(&buf)

	trail.Record("default", SourceCommand, nil)
	if buf.Len() != 0 || len(trail.Recent()) != 0 {
		t.Error("Empty batch should not be recorded")
	}
}

// TestTrailBoundsRetention tests that the in-memory tail stays bounded
func TestTrailBoundsRetention(t *testing.T) {
	var buf bytes.Buffer
	trail := NewTrail(&buf)
	trail.limit = 5

	change := []model.ChangeRecord{{Field: "grid", NewValue: "1"}}
	for i := 0; i < 20; i++ {
		trail.Record("default", SourceCommand, change)
	}

	if got := len(trail.Recent()); got != 5 {
		t.Errorf("Expected retention of 5 batches, got %d", got)
	}
}

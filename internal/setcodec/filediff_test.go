package setcodec

import (
	"testing"
	"time"

	"robot-config-studio/internal/model"
)

// TestDiffFlatFilesSelfClean tests that a file diffed against itself is clean
func TestDiffFlatFilesSelfClean(t *testing.T) {
	text, err := ExportAt(model.DefaultConfig(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	diff := DiffFlatFiles(text, text)
	if !diff.Clean() {
		t.Errorf("Expected clean self-diff, got %+v", diff)
	}
	if diff.MatchingKeys == 0 {
		t.Error("Expected a non-zero matching key count")
	}
}

// TestDiffFlatFilesCategorizes tests mismatch and one-sided key reporting
func TestDiffFlatFilesCategorizes(t *testing.T) {
	left := "shared=1\nchanged=old\nleftOnly=x\n"
	right := "shared=1\nchanged=new\nrightOnly=y\n"

	diff := DiffFlatFiles(left, right)

	if diff.MatchingKeys != 1 {
		t.Errorf("Expected 1 matching key, got %d", diff.MatchingKeys)
	}
	if len(diff.ValueMismatches) != 1 || diff.ValueMismatches[0].Key != "changed" {
		t.Errorf("Unexpected mismatches: %+v", diff.ValueMismatches)
	}
	if diff.ValueMismatches[0].Left != "old" || diff.ValueMismatches[0].Right != "new" {
		t.Errorf("Mismatch values wrong: %+v", diff.ValueMismatches[0])
	}
	if len(diff.OnlyLeft) != 1 || diff.OnlyLeft[0] != "leftOnly" {
		t.Errorf("Unexpected left-only keys: %+v", diff.OnlyLeft)
	}
	if len(diff.OnlyRight) != 1 || diff.OnlyRight[0] != "rightOnly" {
		t.Errorf("Unexpected right-only keys: %+v", diff.OnlyRight)
	}
}

// TestDiffFlatFilesIncludesForeignKeys tests that raw diffing surfaces keys
// the importer's grammar would skip
func TestDiffFlatFilesIncludesForeignKeys(t *testing.T) {
	diff := DiffFlatFiles("someForeignKey=1\n", "")
	if len(diff.OnlyLeft) != 1 || diff.OnlyLeft[0] != "someForeignKey" {
		t.Errorf("Expected foreign key in raw diff, got %+v", diff.OnlyLeft)
	}
}

// TestDiffFlatFilesIgnoresComments tests comment and blank line exclusion
func TestDiffFlatFilesIgnoresComments(t *testing.T) {
	left := "; generated Tuesday\n\nkey=1\n"
	right := "; generated Friday\nkey=1\n"
	if diff := DiffFlatFiles(left, right); !diff.Clean() {
		t.Errorf("Expected comment-only differences to be clean, got %+v", diff)
	}
}

// TestExportRoundTripThroughApply tests export -> apply -> export stability
func TestExportRoundTripThroughApply(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := model.DefaultConfig()

	first, err := ExportAt(cfg, at)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	applied, err := Apply(cfg, first)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	second, err := ExportAt(applied, at)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if diff := DiffFlatFiles(first, second); !diff.Clean() {
		t.Errorf("Round trip not stable: %+v", diff)
	}
}

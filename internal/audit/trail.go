// Package audit records every applied configuration change to an
// append-only structured log and keeps a bounded in-memory tail for the
// dashboard's activity view.
package audit

import (
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"robot-config-studio/internal/model"
)

// Source constants for where a change batch originated.
const (
	SourceFileImport = "FILE_IMPORT"
	SourceCommand    = "COMMAND"
	SourceSnapshot   = "SNAPSHOT_RESTORE"
)

// AppliedBatch is one committed change set.
type AppliedBatch struct {
	Profile   string               `json:"profile"`
	Source    string               `json:"source"`
	Changes   []model.ChangeRecord `json:"changes"`
	AppliedAt time.Time            `json:"applied_at"`
}

// Trail writes applied change batches to a zerolog sink and retains the
// most recent batches in memory.
type Trail struct {
	logger zerolog.Logger
	mu     sync.RWMutex
	recent []AppliedBatch
	limit  int
}

// NewTrail creates a Trail writing JSON lines to w.
func NewTrail(w io.Writer) *Trail {
	return &Trail{
		logger: zerolog.New(w).With().Timestamp().Str("component", "audit").Logger(),
		limit:  100,
	}
}

// Record logs a committed batch. Empty batches are ignored; previews are
// never recorded, only applied changes.
func (t *Trail) Record(profile, source string, changes []model.ChangeRecord) {
	if len(changes) == 0 {
		return
	}
	batch := AppliedBatch{
		Profile:   profile,
		Source:    source,
		Changes:   changes,
		AppliedAt: time.Now().UTC(),
	}

	for _, c := range changes {
		t.logger.Info().
			Str("profile", profile).
			Str("source", source).
			Str("engine", c.Engine).
			Int("group", c.Group).
			Str("logic", c.Logic).
			Str("field", c.Field).
			Str("old", c.CurrentValue).
			Str("new", c.NewValue).
			Msg("config change applied")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.recent = append(t.recent, batch)
	if len(t.recent) > t.limit {
		t.recent = t.recent[len(t.recent)-t.limit:]
	}
}

// Recent returns a copy of the retained batches, newest last.
func (t *Trail) Recent() []AppliedBatch {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]AppliedBatch, len(t.recent))
	copy(out, t.recent)
	return out
}

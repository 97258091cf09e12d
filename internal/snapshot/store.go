package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"robot-config-studio/internal/model"
)

// Snapshot is one persisted configuration state.
type Snapshot struct {
	ID        string             `json:"id"`
	Profile   string             `json:"profile"`
	Label     string             `json:"label,omitempty"`
	Config    *model.RobotConfig `json:"config,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// Store provides snapshot and change-history persistence.
type Store struct {
	db *DB
}

// NewStore creates a snapshot store over an open database.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Save persists a snapshot of the configuration and returns its ID.
func (s *Store) Save(ctx context.Context, profile, label string, cfg *model.RobotConfig) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("cannot snapshot a nil configuration")
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal configuration: %w", err)
	}

	id := uuid.New().String()
	query := `
		INSERT INTO config_snapshots (id, profile, label, config, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := s.db.Pool.Exec(ctx, query, id, profile, label, data, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("failed to save snapshot: %w", err)
	}
	return id, nil
}

// Get loads one snapshot with its full configuration payload.
func (s *Store) Get(ctx context.Context, id string) (*Snapshot, error) {
	query := `
		SELECT id, profile, COALESCE(label, ''), config, created_at
		FROM config_snapshots
		WHERE id = $1`

	var snap Snapshot
	var data []byte
	err := s.db.Pool.QueryRow(ctx, query, id).Scan(
		&snap.ID, &snap.Profile, &snap.Label, &data, &snap.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}

	snap.Config = &model.RobotConfig{}
	if err := json.Unmarshal(data, snap.Config); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", id, err)
	}
	return &snap, nil
}

// List returns snapshot metadata for a profile, newest first, without the
// configuration payloads.
func (s *Store) List(ctx context.Context, profile string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, profile, COALESCE(label, ''), created_at
		FROM config_snapshots
		WHERE profile = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.Pool.Query(ctx, query, profile, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Profile, &snap.Label, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// Delete removes a snapshot.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM config_snapshots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("snapshot %s not found", id)
	}
	return nil
}

// RecordChanges appends an applied change batch to the history table.
func (s *Store) RecordChanges(ctx context.Context, profile, source string, changes []model.ChangeRecord) error {
	if len(changes) == 0 {
		return nil
	}
	query := `
		INSERT INTO applied_changes (profile, source, engine, group_number, logic, field, old_value, new_value, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now().UTC()
	for _, c := range changes {
		if _, err := s.db.Pool.Exec(ctx, query,
			profile, source, c.Engine, c.Group, c.Logic, c.Field, c.CurrentValue, c.NewValue, now,
		); err != nil {
			return fmt.Errorf("failed to record change for %s: %w", c.Field, err)
		}
	}
	return nil
}

// ChangeHistory returns recent applied changes for a profile, newest first.
func (s *Store) ChangeHistory(ctx context.Context, profile string, limit int) ([]model.ChangeRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	query := `
		SELECT COALESCE(engine, ''), COALESCE(group_number, 0), COALESCE(logic, ''),
		       field, COALESCE(old_value, ''), COALESCE(new_value, '')
		FROM applied_changes
		WHERE profile = $1
		ORDER BY applied_at DESC, id DESC
		LIMIT $2`

	rows, err := s.db.Pool.Query(ctx, query, profile, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load change history: %w", err)
	}
	defer rows.Close()

	var records []model.ChangeRecord
	for rows.Next() {
		var r model.ChangeRecord
		if err := rows.Scan(&r.Engine, &r.Group, &r.Logic, &r.Field, &r.CurrentValue, &r.NewValue); err != nil {
			return nil, fmt.Errorf("failed to scan change row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Package studio is the orchestration layer: it owns the in-memory profile
// registry and coordinates the codec, hydrator, validator, cache, snapshot
// store and audit trail behind one API the handlers can call.
package studio

import (
	"context"
	"fmt"
	"sync"

	"robot-config-studio/internal/audit"
	"robot-config-studio/internal/cache"
	"robot-config-studio/internal/events"
	"robot-config-studio/internal/hydrate"
	"robot-config-studio/internal/logging"
	"robot-config-studio/internal/model"
	"robot-config-studio/internal/setcodec"
	"robot-config-studio/internal/snapshot"
	"robot-config-studio/internal/validate"
)

// Service coordinates configuration operations for named profiles. All
// profile state it hands out is cloned; callers can never mutate the
// registry behind its back.
type Service struct {
	mu       sync.RWMutex
	profiles map[string]*model.RobotConfig

	cache  *cache.ConfigCache
	store  *snapshot.Store // nil when persistence is disabled
	trail  *audit.Trail    // nil when auditing is disabled
	bus    *events.EventBus
	logger *logging.Logger
}

// NewService wires the orchestration layer. store and trail may be nil.
func NewService(cc *cache.ConfigCache, store *snapshot.Store, trail *audit.Trail, bus *events.EventBus, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		profiles: make(map[string]*model.RobotConfig),
		cache:    cc,
		store:    store,
		trail:    trail,
		bus:      bus,
		logger:   logger.WithComponent("studio"),
	}
}

// LoadProfile hydrates a configuration and registers it under a profile
// name, replacing any previous state.
func (s *Service) LoadProfile(ctx context.Context, profile string, cfg *model.RobotConfig) (*model.RobotConfig, error) {
	hydrated, err := hydrate.Hydrate(cfg)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.profiles[profile] = hydrated
	s.mu.Unlock()

	s.cache.Invalidate(ctx, profile)
	_ = s.cache.PutHydrated(ctx, profile, hydrated)

	s.logger.Info("profile loaded", "profile", profile)
	s.publish(events.EventConfigLoaded, profile, nil)
	return hydrated.Clone(), nil
}

// LoadDefaultProfile registers the built-in default configuration.
func (s *Service) LoadDefaultProfile(ctx context.Context, profile string) (*model.RobotConfig, error) {
	return s.LoadProfile(ctx, profile, model.DefaultConfig())
}

// Config returns a clone of the profile's current configuration.
func (s *Service) Config(profile string) (*model.RobotConfig, error) {
	cfg, err := s.current(profile)
	if err != nil {
		return nil, err
	}
	return cfg.Clone(), nil
}

// Profiles lists the registered profile names.
func (s *Service) Profiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	return names
}

// Export renders the profile's configuration as flat ".set" text, serving
// from cache when possible.
func (s *Service) Export(ctx context.Context, profile string) (string, error) {
	if text, ok := s.cache.GetExport(ctx, profile); ok {
		return text, nil
	}

	cfg, err := s.current(profile)
	if err != nil {
		return "", err
	}
	text, err := setcodec.Export(cfg)
	if err != nil {
		return "", err
	}

	_ = s.cache.PutExport(ctx, profile, text)
	s.publish(events.EventConfigExported, profile, map[string]interface{}{"bytes": len(text)})
	return text, nil
}

// PreviewImport diffs flat text against the profile without changing
// anything, scoped by the target.
func (s *Service) PreviewImport(ctx context.Context, profile, text string, target model.Target) ([]model.ChangeRecord, error) {
	cfg, err := s.current(profile)
	if err != nil {
		return nil, err
	}
	records, err := setcodec.ComputeChanges(cfg, text)
	if err != nil {
		return nil, err
	}
	records = model.FilterChanges(records, target)

	s.publish(events.EventChangesPreviewed, profile, map[string]interface{}{"count": len(records)})
	return records, nil
}

// ApplyImport commits the in-scope values of flat text onto the profile and
// returns the applied change records. The result is re-hydrated so every
// applied batch lands in canonical form.
func (s *Service) ApplyImport(ctx context.Context, profile, text string, target model.Target) ([]model.ChangeRecord, error) {
	cfg, err := s.current(profile)
	if err != nil {
		return nil, err
	}

	next, records, err := setcodec.ApplyScoped(cfg, text, target)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	hydrated, err := hydrate.Hydrate(next)
	if err != nil {
		return nil, err
	}
	s.commit(ctx, profile, hydrated, audit.SourceFileImport, records)
	return records, nil
}

// SetParameter applies one parameter value across every logic instance in
// the target scope, recording a change per instance actually modified.
func (s *Service) SetParameter(ctx context.Context, profile string, target model.Target, param, value string) ([]model.ChangeRecord, error) {
	cfg, err := s.current(profile)
	if err != nil {
		return nil, err
	}

	next := cfg.Clone()
	field := setcodec.FieldLabelFor(param)
	var records []model.ChangeRecord

	for ei := range next.Engines {
		engine := &next.Engines[ei]
		for gi := range engine.Groups {
			group := &engine.Groups[gi]
			for li := range group.Logics {
				logic := &group.Logics[li]
				rec := model.ChangeRecord{
					Engine: engine.Name,
					Group:  group.Number,
					Logic:  logic.LogicName,
					Field:  field,
				}
				if !target.Matches(rec) {
					continue
				}
				before, ok := setcodec.LogicFieldValue(logic, param)
				if !ok {
					return nil, fmt.Errorf("unknown parameter %q", param)
				}
				if !setcodec.SetLogicField(logic, param, value) {
					return nil, fmt.Errorf("unknown parameter %q", param)
				}
				after, _ := setcodec.LogicFieldValue(logic, param)
				if after == before {
					continue
				}
				rec.CurrentValue = before
				rec.NewValue = after
				records = append(records, rec)
			}
		}
	}
	if len(records) == 0 {
		return records, nil
	}

	hydrated, err := hydrate.Hydrate(next)
	if err != nil {
		return nil, err
	}
	s.commit(ctx, profile, hydrated, audit.SourceCommand, records)
	return records, nil
}

// Validate runs the advisory checks over the profile.
func (s *Service) Validate(ctx context.Context, profile string) ([]validate.Warning, error) {
	cfg, err := s.current(profile)
	if err != nil {
		return nil, err
	}
	warnings := validate.Validate(cfg)
	s.publish(events.EventValidationRun, profile, map[string]interface{}{"warnings": len(warnings)})
	return warnings, nil
}

// CompareFiles diffs two flat files key by key, independent of any profile.
func (s *Service) CompareFiles(left, right string) setcodec.FileDiff {
	return setcodec.DiffFlatFiles(left, right)
}

// SaveSnapshot persists the profile's current state and returns the
// snapshot ID.
func (s *Service) SaveSnapshot(ctx context.Context, profile, label string) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("snapshot store is not configured")
	}
	cfg, err := s.current(profile)
	if err != nil {
		return "", err
	}
	id, err := s.store.Save(ctx, profile, label, cfg)
	if err != nil {
		return "", err
	}
	s.logger.Info("snapshot saved", "profile", profile, "snapshot_id", id)
	s.publish(events.EventSnapshotSaved, profile, map[string]interface{}{"snapshot_id": id})
	return id, nil
}

// ListSnapshots returns snapshot metadata for a profile.
func (s *Service) ListSnapshots(ctx context.Context, profile string, limit int) ([]snapshot.Snapshot, error) {
	if s.store == nil {
		return nil, fmt.Errorf("snapshot store is not configured")
	}
	return s.store.List(ctx, profile, limit)
}

// RestoreSnapshot replaces the profile's state with a stored snapshot. The
// restored configuration is re-hydrated; the per-field delta against the
// current state is recorded like any other batch.
func (s *Service) RestoreSnapshot(ctx context.Context, profile, id string) error {
	if s.store == nil {
		return fmt.Errorf("snapshot store is not configured")
	}
	snap, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	hydrated, err := hydrate.Hydrate(snap.Config)
	if err != nil {
		return err
	}

	var records []model.ChangeRecord
	if current, err := s.current(profile); err == nil {
		if text, err := setcodec.Export(hydrated); err == nil {
			records, _ = setcodec.ComputeChanges(current, text)
		}
	}

	s.commit(ctx, profile, hydrated, audit.SourceSnapshot, records)
	s.publish(events.EventSnapshotRestored, profile, map[string]interface{}{"snapshot_id": id})
	return nil
}

// ChangeHistory returns recently applied changes for a profile.
func (s *Service) ChangeHistory(ctx context.Context, profile string, limit int) ([]model.ChangeRecord, error) {
	if s.store == nil {
		return nil, fmt.Errorf("snapshot store is not configured")
	}
	return s.store.ChangeHistory(ctx, profile, limit)
}

// RecentAudit returns the in-memory tail of applied batches.
func (s *Service) RecentAudit() []audit.AppliedBatch {
	if s.trail == nil {
		return nil
	}
	return s.trail.Recent()
}

func (s *Service) current(profile string) (*model.RobotConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.profiles[profile]
	if !ok {
		return nil, fmt.Errorf("profile %q is not loaded", profile)
	}
	return cfg, nil
}

// commit swaps in a new profile state and fans the batch out to the cache,
// audit trail, history table and event bus.
func (s *Service) commit(ctx context.Context, profile string, cfg *model.RobotConfig, source string, records []model.ChangeRecord) {
	s.mu.Lock()
	s.profiles[profile] = cfg
	s.mu.Unlock()

	s.cache.Invalidate(ctx, profile)
	_ = s.cache.PutHydrated(ctx, profile, cfg)

	if s.trail != nil {
		s.trail.Record(profile, source, records)
	}
	if s.store != nil && len(records) > 0 {
		if err := s.store.RecordChanges(ctx, profile, source, records); err != nil {
			s.logger.WithError(err).Warn("failed to persist change history", "profile", profile)
		}
	}

	s.logger.Info("changes applied", "profile", profile, "source", source, "count", len(records))
	s.publish(events.EventChangesApplied, profile, map[string]interface{}{
		"source":  source,
		"count":   len(records),
		"changes": records,
	})
}

func (s *Service) publish(eventType events.EventType, profile string, data map[string]interface{}) {
	if s.bus == nil {
		return
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	data["profile"] = profile
	s.bus.PublishData(eventType, data)
}

package studio

import (
	"context"
	"strings"
	"testing"

	"robot-config-studio/internal/cache"
	"robot-config-studio/internal/events"
	"robot-config-studio/internal/model"
)

// newTestService builds a service with no Redis, no database and no audit
// trail; every operation must still work against the in-memory registry.
func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(cache.NewConfigCache(nil), nil, nil, events.NewEventBus(), nil)
	if _, err := svc.LoadDefaultProfile(context.Background(), "test"); err != nil {
		t.Fatalf("LoadDefaultProfile failed: %v", err)
	}
	return svc
}

// TestServiceConfigReturnsClone tests that handed-out state is isolated
func TestServiceConfigReturnsClone(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Config("test")
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	first.Global.MagicNumber = 1

	second, _ := svc.Config("test")
	if second.Global.MagicNumber == 1 {
		t.Error("Service state was mutated through a returned config")
	}
}

// TestServiceUnknownProfile tests the missing-profile error path
func TestServiceUnknownProfile(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Config("nope"); err == nil {
		t.Error("Expected error for unknown profile")
	}
	if _, err := svc.Export(context.Background(), "nope"); err == nil {
		t.Error("Expected export error for unknown profile")
	}
}

// TestServiceExport tests flat-text rendering through the service
func TestServiceExport(t *testing.T) {
	svc := newTestService(t)

	text, err := svc.Export(context.Background(), "test")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(text, "gInput_1_AP_Buy_Grid=40") {
		t.Error("Export missing expected key")
	}
}

// TestServicePreviewDoesNotApply tests that preview leaves state untouched
func TestServicePreviewDoesNotApply(t *testing.T) {
	svc := newTestService(t)

	records, err := svc.PreviewImport(context.Background(), "test", "gInput_1_AP_Buy_Grid=50\n", model.Target{})
	if err != nil {
		t.Fatalf("PreviewImport failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 pending change, got %+v", records)
	}

	cfg, _ := svc.Config("test")
	if cfg.FindEngine(model.EngineA).FindGroup(1).FindLogic("Power", model.DirectionBuy).Grid != 40 {
		t.Error("Preview must not modify the profile")
	}
}

// TestServiceApplyImport tests committing a file and the resulting records
func TestServiceApplyImport(t *testing.T) {
	svc := newTestService(t)

	records, err := svc.ApplyImport(context.Background(), "test", "gInput_1_AP_Buy_Grid=50\n", model.Target{})
	if err != nil {
		t.Fatalf("ApplyImport failed: %v", err)
	}
	if len(records) != 1 || records[0].NewValue != "50" {
		t.Fatalf("Unexpected records: %+v", records)
	}

	cfg, _ := svc.Config("test")
	if got := cfg.FindEngine(model.EngineA).FindGroup(1).FindLogic("Power", model.DirectionBuy).Grid; got != 50 {
		t.Errorf("Change not committed: Grid=%d", got)
	}

	// A second apply of the same file is a no-op.
	records, err = svc.ApplyImport(context.Background(), "test", "gInput_1_AP_Buy_Grid=50\n", model.Target{})
	if err != nil {
		t.Fatalf("Second ApplyImport failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records on re-apply, got %+v", records)
	}
}

// TestServiceApplyImportScoped tests that the target limits the commit
func TestServiceApplyImportScoped(t *testing.T) {
	svc := newTestService(t)

	text := "gInput_1_AP_Buy_Grid=50\ngInput_1_BP_Buy_Grid=55\n"
	records, err := svc.ApplyImport(context.Background(), "test", text, model.Target{Engines: []string{model.EngineA}})
	if err != nil {
		t.Fatalf("ApplyImport failed: %v", err)
	}
	if len(records) != 1 || records[0].Engine != model.EngineA {
		t.Fatalf("Unexpected records: %+v", records)
	}

	cfg, _ := svc.Config("test")
	if got := cfg.FindEngine(model.EngineB).FindGroup(1).FindLogic("BPower", model.DirectionBuy).Grid; got != 40 {
		t.Errorf("Out-of-scope change was committed: Grid=%d", got)
	}
}

// TestServiceSetParameter tests the command-style targeted edit
func TestServiceSetParameter(t *testing.T) {
	svc := newTestService(t)

	target := model.Target{Engines: []string{model.EngineA}, Logics: []string{"Power"}}
	records, err := svc.SetParameter(context.Background(), "test", target, "Grid", "75")
	if err != nil {
		t.Fatalf("SetParameter failed: %v", err)
	}
	// Power has a Buy and a Sell instance in the default group.
	if len(records) != 2 {
		t.Fatalf("Expected 2 records (one per direction), got %+v", records)
	}

	cfg, _ := svc.Config("test")
	group := cfg.FindEngine(model.EngineA).FindGroup(1)
	if group.FindLogic("Power", model.DirectionBuy).Grid != 75 ||
		group.FindLogic("Power", model.DirectionSell).Grid != 75 {
		t.Error("Parameter not applied to both directions")
	}
	if group.FindLogic("Swing", model.DirectionBuy).Grid != 40 {
		t.Error("Out-of-scope logic was modified")
	}
}

// TestServiceSetParameterUnknown tests rejection of unknown parameters
func TestServiceSetParameterUnknown(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.SetParameter(context.Background(), "test", model.Target{}, "NoSuchParam", "1"); err == nil {
		t.Error("Expected error for unknown parameter")
	}
}

// TestServiceValidate tests the advisory pass through the service
func TestServiceValidate(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Validate(context.Background(), "test"); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

// TestServiceSnapshotsUnavailable tests error paths without a store
func TestServiceSnapshotsUnavailable(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.SaveSnapshot(context.Background(), "test", "x"); err == nil {
		t.Error("Expected error when snapshot store is absent")
	}
	if err := svc.RestoreSnapshot(context.Background(), "test", "id"); err == nil {
		t.Error("Expected restore error when snapshot store is absent")
	}
}

// TestServiceCompareFiles tests the profile-independent comparator
func TestServiceCompareFiles(t *testing.T) {
	svc := newTestService(t)
	diff := svc.CompareFiles("a=1\n", "a=2\n")
	if diff.Clean() || len(diff.ValueMismatches) != 1 {
		t.Errorf("Unexpected diff: %+v", diff)
	}
}

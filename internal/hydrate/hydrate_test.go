package hydrate

import (
	"encoding/json"
	"testing"

	"robot-config-studio/internal/model"
)

// TestHydrateNilConfig tests the nil guard
func TestHydrateNilConfig(t *testing.T) {
	if _, err := Hydrate(nil); err == nil {
		t.Error("Expected error for nil configuration")
	}
}

// TestHydrateDoesNotMutateInput tests that hydration is clone-based
func TestHydrateDoesNotMutateInput(t *testing.T) {
	in := &model.RobotConfig{
		Engines: []model.Engine{{
			Name: model.EngineA,
			Groups: []model.Group{{
				Number: 1,
				Logics: []model.Logic{{LogicName: "SCALP"}},
			}},
		}},
	}
	before, _ := json.Marshal(in)

	if _, err := Hydrate(in); err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}

	after, _ := json.Marshal(in)
	if string(before) != string(after) {
		t.Error("Hydrate mutated its input")
	}
}

// TestHydrateFillsEnginesAndSessions tests that missing engines and the
// session array are backfilled from the defaults
func TestHydrateFillsEnginesAndSessions(t *testing.T) {
	out, err := Hydrate(&model.RobotConfig{})
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}

	for _, name := range model.EngineNames {
		engine := out.FindEngine(name)
		if engine == nil {
			t.Fatalf("Engine %s missing after hydration", name)
		}
		if len(engine.Groups) == 0 {
			t.Errorf("Engine %s has no groups", name)
		}
	}
	if len(out.Global.Sessions) != model.SessionCount {
		t.Errorf("Expected %d sessions, got %d", model.SessionCount, len(out.Global.Sessions))
	}
	for i, s := range out.Global.Sessions {
		if s.Index != i+1 {
			t.Errorf("Session %d has index %d", i, s.Index)
		}
	}
	if out.Global.MagicNumber == 0 || out.Global.OrderComment == "" {
		t.Error("Global defaults not filled")
	}
}

// TestHydrateCollapsesAliases tests legacy logic-name alias collapse
func TestHydrateCollapsesAliases(t *testing.T) {
	in := &model.RobotConfig{
		Engines: []model.Engine{{
			Name: model.EngineA,
			Groups: []model.Group{{
				Number: 1,
				Logics: []model.Logic{{LogicName: "SCALP", AllowBuy: true}},
			}},
		}},
	}

	out, err := Hydrate(in)
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}

	group := out.FindEngine(model.EngineA).FindGroup(1)
	if logic := group.FindLogic("Scalper", model.DirectionBuy); logic == nil {
		t.Error("Expected SCALP to hydrate as Scalper")
	}
}

// TestHydrateSplitsBidirectional tests that an ambiguous record becomes one
// pure instance per direction with overrides folded onto the right side
func TestHydrateSplitsBidirectional(t *testing.T) {
	in := &model.RobotConfig{
		Engines: []model.Engine{{
			Name: model.EngineA,
			Groups: []model.Group{{
				Number: 1,
				Logics: []model.Logic{{
					LogicName:  "Power",
					InitialLot: 0.05,
					DirectionalOverrides: map[string]string{
						"InitialLot_b": "0.02",
						"Grid_s":       "80",
					},
				}},
			}},
		}},
	}

	out, err := Hydrate(in)
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}

	group := out.FindEngine(model.EngineA).FindGroup(1)
	buy := group.FindLogic("Power", model.DirectionBuy)
	sell := group.FindLogic("Power", model.DirectionSell)
	if buy == nil || sell == nil {
		t.Fatal("Expected both directional instances after split")
	}
	if buy == sell {
		t.Fatal("Expected distinct instances")
	}

	if buy.InitialLot != 0.02 {
		t.Errorf("Buy override not applied: InitialLot=%v", buy.InitialLot)
	}
	if sell.InitialLot != 0.05 {
		t.Errorf("Sell side should keep the base value: InitialLot=%v", sell.InitialLot)
	}
	if sell.Grid != 80 {
		t.Errorf("Sell override not applied: Grid=%d", sell.Grid)
	}
	if buy.DirectionalOverrides != nil || sell.DirectionalOverrides != nil {
		t.Error("Overrides should be consumed during hydration")
	}
}

// TestHydrateDirectionMarker tests the explicit Direction marker path
func TestHydrateDirectionMarker(t *testing.T) {
	in := &model.RobotConfig{
		Engines: []model.Engine{{
			Name: model.EngineA,
			Groups: []model.Group{{
				Number: 1,
				Logics: []model.Logic{{LogicName: "Swing", Direction: "sell"}},
			}},
		}},
	}

	out, err := Hydrate(in)
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}

	group := out.FindEngine(model.EngineA).FindGroup(1)
	logic := group.FindLogic("Swing", model.DirectionSell)
	if logic == nil {
		t.Fatal("Expected a sell instance")
	}
	if logic.AllowBuy || !logic.AllowSell || logic.Direction != "" {
		t.Errorf("Direction not settled: %+v", logic)
	}
	if group.FindLogic("Swing", model.DirectionBuy) != nil {
		t.Error("Marker record should not be split")
	}
}

// TestHydrateModeExclusivity tests hedge/reverse/counter-trend resolution
func TestHydrateModeExclusivity(t *testing.T) {
	mk := func(l model.Logic) *model.Logic {
		l.LogicName = "Swing"
		l.AllowBuy = true
		in := &model.RobotConfig{
			Engines: []model.Engine{{
				Name:   model.EngineA,
				Groups: []model.Group{{Number: 1, Logics: []model.Logic{l}}},
			}},
		}
		out, err := Hydrate(in)
		if err != nil {
			t.Fatalf("Hydrate failed: %v", err)
		}
		return out.FindEngine(model.EngineA).FindGroup(1).FindLogic("Swing", model.DirectionBuy)
	}

	// Hedge flag alone infers Hedge mode.
	hedged := mk(model.Logic{HedgeEnabled: true, HedgeRef: "Power"})
	if hedged.TradingMode != model.ModeHedge || !hedged.HedgeEnabled || hedged.ReverseEnabled {
		t.Errorf("Hedge inference failed: %+v", hedged)
	}
	if hedged.HedgeScale == 0 {
		t.Error("Active hedge scale should default to 1.0")
	}
	if hedged.ReverseRef != "" || hedged.ReverseScale != 0 {
		t.Error("Inactive reverse fields should be cleared")
	}

	// Both flags collapse to Counter Trend.
	both := mk(model.Logic{HedgeEnabled: true, ReverseEnabled: true})
	if both.TradingMode != model.ModeCounterTrend || both.HedgeEnabled || both.ReverseEnabled {
		t.Errorf("Both-flags collapse failed: %+v", both)
	}

	// An explicit tag wins over contradicting flags.
	tagged := mk(model.Logic{TradingMode: "reverse", HedgeEnabled: true})
	if tagged.TradingMode != model.ModeReverse || !tagged.ReverseEnabled || tagged.HedgeEnabled {
		t.Errorf("Explicit tag should win: %+v", tagged)
	}
}

// TestHydratePrimaryForcedCounterTrend tests that engine A's Power logic
// is always Counter Trend
func TestHydratePrimaryForcedCounterTrend(t *testing.T) {
	in := &model.RobotConfig{
		Engines: []model.Engine{{
			Name: model.EngineA,
			Groups: []model.Group{{
				Number: 1,
				Logics: []model.Logic{{
					LogicName: "Power", AllowBuy: true,
					TradingMode: "Hedge", HedgeEnabled: true, HedgeRef: "Swing",
				}},
			}},
		}},
	}

	out, err := Hydrate(in)
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}

	logic := out.FindEngine(model.EngineA).FindGroup(1).FindLogic("Power", model.DirectionBuy)
	if logic.TradingMode != model.ModeCounterTrend {
		t.Errorf("Primary must be Counter Trend, got %s", logic.TradingMode)
	}
	if logic.HedgeEnabled || logic.HedgeRef != "" {
		t.Errorf("Hedge fields should be cleared on the primary: %+v", logic)
	}
}

// TestHydrateStartLevelRepair tests the B/C Power start-level data repair
func TestHydrateStartLevelRepair(t *testing.T) {
	in := &model.RobotConfig{
		Engines: []model.Engine{
			{Name: model.EngineA, Groups: []model.Group{{
				Number: 1,
				Logics: []model.Logic{{LogicName: "Power", AllowBuy: true, StartLevel: 0}},
			}}},
			{Name: model.EngineB, Groups: []model.Group{{
				Number: 1,
				Logics: []model.Logic{
					{LogicName: "BPower", AllowBuy: true, StartLevel: 0},
					{LogicName: "BPower", AllowSell: true, StartLevel: 2},
					{LogicName: "BSwing", AllowBuy: true, StartLevel: 0},
				},
			}}},
		},
	}

	out, err := Hydrate(in)
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}

	a := out.FindEngine(model.EngineA).FindGroup(1).FindLogic("Power", model.DirectionBuy)
	if a.StartLevel != 0 {
		t.Errorf("Engine A Power must not be repaired, got %d", a.StartLevel)
	}

	groupB := out.FindEngine(model.EngineB).FindGroup(1)
	if got := groupB.FindLogic("BPower", model.DirectionBuy).StartLevel; got != 4 {
		t.Errorf("B Power zero start level should repair to 4, got %d", got)
	}
	if got := groupB.FindLogic("BPower", model.DirectionSell).StartLevel; got != 2 {
		t.Errorf("Explicit start level must be kept, got %d", got)
	}
	if got := groupB.FindLogic("BSwing", model.DirectionBuy).StartLevel; got != 0 {
		t.Errorf("Non-Power logics are out of the repair's scope, got %d", got)
	}
}

// TestHydrateCanonicalizesEnums tests tolerant enum spelling cleanup
func TestHydrateCanonicalizesEnums(t *testing.T) {
	in := &model.RobotConfig{
		Engines: []model.Engine{{
			Name: model.EngineA,
			Groups: []model.Group{{
				Number: 1,
				Logics: []model.Logic{{
					LogicName: "Range", AllowBuy: true,
					TrailMethod:   "percent",
					TriggerMethod: "no-such-method",
					TrailSteps:    []model.TrailStep{{Distance: 10, Method: "step_atr", Mode: "cycle"}},
				}},
			}},
		}},
	}

	out, err := Hydrate(in)
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}

	logic := out.FindEngine(model.EngineA).FindGroup(1).FindLogic("Range", model.DirectionBuy)
	if logic.TrailMethod != model.TrailPercent {
		t.Errorf("TrailMethod = %s, want Percent", logic.TrailMethod)
	}
	if logic.TriggerMethod != model.EntryImmediate {
		t.Errorf("Garbage trigger method should fall back to Immediate, got %s", logic.TriggerMethod)
	}
	if logic.TrailSteps[0].Method != model.StepATR || logic.TrailSteps[0].Mode != model.StepModeCycle {
		t.Errorf("Trail step enums not canonicalized: %+v", logic.TrailSteps[0])
	}
}

// TestHydrateIdempotent tests that hydrating twice changes nothing
func TestHydrateIdempotent(t *testing.T) {
	in := &model.RobotConfig{
		Engines: []model.Engine{{
			Name: model.EngineB,
			Groups: []model.Group{{
				Number: 1,
				Logics: []model.Logic{
					{LogicName: "BSCALP", HedgeEnabled: true, HedgeRef: "BPower"},
					{LogicName: "BPower", AllowBuy: true},
				},
			}},
		}},
	}

	once, err := Hydrate(in)
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}
	twice, err := Hydrate(once)
	if err != nil {
		t.Fatalf("Second hydrate failed: %v", err)
	}

	a, _ := json.Marshal(once)
	b, _ := json.Marshal(twice)
	if string(a) != string(b) {
		t.Error("Hydration is not idempotent")
	}
}

// TestHydrateAssignsLogicIDs tests derived instance identifiers
func TestHydrateAssignsLogicIDs(t *testing.T) {
	out, err := Hydrate(model.DefaultConfig())
	if err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}

	logic := out.FindEngine(model.EngineA).FindGroup(1).FindLogic("Power", model.DirectionBuy)
	if logic.LogicID != "AP-1-Buy" {
		t.Errorf("Expected LogicID AP-1-Buy, got %s", logic.LogicID)
	}
}

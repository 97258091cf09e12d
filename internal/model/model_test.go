package model

import "testing"

// TestCanonicalLogicName tests alias and case collapse
func TestCanonicalLogicName(t *testing.T) {
	cases := map[string]string{
		"SCALP":     "Scalper",
		"scalp":     "Scalper",
		"BSCALP":    "BScalper",
		"CREPWR":    "CRepower",
		"power":     "Power",
		"BMOMENTUM": "BMomentum",
		"Power":     "Power",
		"NotALogic": "NotALogic", // unknown names pass through
	}
	for in, want := range cases {
		if got := CanonicalLogicName(in); got != want {
			t.Errorf("CanonicalLogicName(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestLogicEngine tests engine derivation from canonical names
func TestLogicEngine(t *testing.T) {
	cases := map[string]string{
		"Power":     EngineA,
		"Recovery":  EngineA,
		"BPower":    EngineB,
		"bscalp":    EngineB,
		"CMomentum": EngineC,
		"NotALogic": "",
	}
	for in, want := range cases {
		if got := LogicEngine(in); got != want {
			t.Errorf("LogicEngine(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestIsPrimaryLogic tests that only engine A's Power is primary
func TestIsPrimaryLogic(t *testing.T) {
	if !IsPrimaryLogic(EngineA, "Power") || !IsPrimaryLogic(EngineA, "power") {
		t.Error("Engine A Power should be primary")
	}
	if IsPrimaryLogic(EngineB, "BPower") || IsPrimaryLogic(EngineA, "Swing") {
		t.Error("Only engine A's Power is primary")
	}
}

// TestLogicNamesForEngine tests the 7-name per-engine vocabulary
func TestLogicNamesForEngine(t *testing.T) {
	a := LogicNamesForEngine(EngineA)
	b := LogicNamesForEngine(EngineB)
	if len(a) != 7 || len(b) != 7 {
		t.Fatalf("Expected 7 names per engine, got %d and %d", len(a), len(b))
	}
	if a[0] != "Power" || b[0] != "BPower" {
		t.Errorf("Unexpected first names: %s, %s", a[0], b[0])
	}
}

// TestCloneIndependence tests that a clone shares no mutable state
func TestCloneIndependence(t *testing.T) {
	cfg := DefaultConfig()
	logic := &cfg.Engines[0].Groups[0].Logics[0]
	logic.DirectionalOverrides = map[string]string{"grid_b": "50"}

	clone := cfg.Clone()

	// Mutate the original everywhere a shallow copy would leak.
	cfg.Global.Sessions[0].Enabled = false
	logic.TrailSteps[0].Distance = 999
	logic.DirectionalOverrides["grid_b"] = "77"
	cfg.Engines[0].Groups[0].Number = 42

	clonedLogic := &clone.Engines[0].Groups[0].Logics[0]
	if !clone.Global.Sessions[0].Enabled {
		t.Error("Clone shares the sessions slice")
	}
	if clonedLogic.TrailSteps[0].Distance == 999 {
		t.Error("Clone shares the trail-step slice")
	}
	if clonedLogic.DirectionalOverrides["grid_b"] != "50" {
		t.Error("Clone shares the overrides map")
	}
	if clone.Engines[0].Groups[0].Number == 42 {
		t.Error("Clone shares group structs")
	}
}

// TestTargetMatches tests scope matching semantics
func TestTargetMatches(t *testing.T) {
	rec := ChangeRecord{Engine: EngineA, Group: 1, Logic: "Power", Field: "grid"}

	if !(Target{}).Matches(rec) {
		t.Error("Empty target should match everything")
	}
	if !(Target{Engines: []string{EngineA}, Groups: []int{1}}).Matches(rec) {
		t.Error("In-scope record should match")
	}
	if (Target{Engines: []string{EngineB}}).Matches(rec) {
		t.Error("Wrong engine should not match")
	}
	if (Target{Fields: []string{"initial_lot"}}).Matches(rec) {
		t.Error("Wrong field should not match")
	}
}

// TestFilterChanges tests order-preserving scope filtering
func TestFilterChanges(t *testing.T) {
	records := []ChangeRecord{
		{Engine: EngineA, Group: 1, Field: "grid"},
		{Engine: EngineB, Group: 1, Field: "grid"},
		{Engine: EngineA, Group: 2, Field: "grid"},
	}

	got := FilterChanges(records, Target{Engines: []string{EngineA}})
	if len(got) != 2 || got[0].Group != 1 || got[1].Group != 2 {
		t.Errorf("Unexpected filter result: %+v", got)
	}
}

// TestFindLogicByDirection tests directional instance lookup
func TestFindLogicByDirection(t *testing.T) {
	group := DefaultGroup(EngineA, 1)

	buy := group.FindLogic("Power", DirectionBuy)
	sell := group.FindLogic("Power", DirectionSell)
	if buy == nil || sell == nil || buy == sell {
		t.Fatal("Expected distinct Buy and Sell instances")
	}
	if !buy.AllowBuy || !sell.AllowSell {
		t.Error("Direction flags wrong on lookup results")
	}
	if group.FindLogic("NoSuchLogic", DirectionBuy) != nil {
		t.Error("Unknown name should return nil")
	}
}

package setcodec

import (
	"testing"

	"robot-config-studio/internal/model"
)

// TestFormatLogicKey tests the current-generation directional key shape
func TestFormatLogicKey(t *testing.T) {
	key := FormatLogicKey("Grid", "AP", 1, model.DirectionBuy)
	if key != "gInput_1_AP_Buy_Grid" {
		t.Errorf("Expected gInput_1_AP_Buy_Grid, got %s", key)
	}

	key = FormatLogicKey("InitialLot", "CRC", 12, model.DirectionSell)
	if key != "gInput_12_CRC_Sell_InitialLot" {
		t.Errorf("Expected gInput_12_CRC_Sell_InitialLot, got %s", key)
	}
}

// TestParseKeyCurrentGeneration tests parsing of current-generation keys
func TestParseKeyCurrentGeneration(t *testing.T) {
	parsed, ok := ParseKey("gInput_3_BSW_Sell_TakeProfit")
	if !ok {
		t.Fatal("Expected key to parse")
	}
	if parsed.Kind != KeyDirectional {
		t.Errorf("Expected KeyDirectional, got %v", parsed.Kind)
	}
	if parsed.Group != 3 || parsed.Suffix != "BSW" || parsed.Direction != "Sell" || parsed.Param != "TakeProfit" {
		t.Errorf("Unexpected parse result: %+v", parsed)
	}
}

// TestParseKeyLegacyGeneration tests that the older suffix-first grammar
// still parses to the same identity
func TestParseKeyLegacyGeneration(t *testing.T) {
	current, ok1 := ParseKey("gInput_2_ARC_Buy_Grid")
	legacy, ok2 := ParseKey("gInput_ARC_2_Buy_Grid")
	if !ok1 || !ok2 {
		t.Fatal("Expected both generations to parse")
	}
	if current != legacy {
		t.Errorf("Generations disagree: current=%+v legacy=%+v", current, legacy)
	}
}

// TestParseKeyGlobal tests global key recognition
func TestParseKeyGlobal(t *testing.T) {
	parsed, ok := ParseKey("gInput_MagicNumber")
	if !ok {
		t.Fatal("Expected global key to parse")
	}
	if parsed.Kind != KeyGlobal || parsed.Param != "MagicNumber" {
		t.Errorf("Unexpected parse result: %+v", parsed)
	}
}

// TestParseKeyRejectsForeign tests that unknown and malformed keys are
// rejected rather than misparsed
func TestParseKeyRejectsForeign(t *testing.T) {
	rejects := []string{
		"gInput_NoSuchGlobalParam",
		"gInput_1_ZZZZ_Buy_Grid", // suffix too long
		"gInput_1_ap_Buy_Grid",   // lower-case suffix
		"gInput_1_AP_Hold_Grid",  // bad direction
		"someOtherInput_1_AP_Buy_Grid",
		"gInput_",
		"",
	}
	for _, key := range rejects {
		if _, ok := ParseKey(key); ok {
			t.Errorf("Expected %q to be rejected", key)
		}
	}
}

// TestParseKeyUnknownSuffixStillDirectional tests that a well-formed key
// with an unrecognized suffix parses; resolution rejects it later so the
// line is skipped, not the whole file
func TestParseKeyUnknownSuffixStillDirectional(t *testing.T) {
	parsed, ok := ParseKey("gInput_1_XQZ_Buy_Grid")
	if !ok {
		t.Fatal("Expected well-formed key to parse")
	}
	if parsed.Suffix != "XQZ" {
		t.Errorf("Expected suffix XQZ, got %s", parsed.Suffix)
	}
	if _, _, resolved := LogicForSuffix(parsed.Suffix); resolved {
		t.Error("Expected XQZ to be unresolvable")
	}
}

// TestSuffixRoundTrip tests that every engine/logic pair maps to a suffix
// and back unchanged
func TestSuffixRoundTrip(t *testing.T) {
	for _, engine := range model.EngineNames {
		for _, name := range model.LogicNamesForEngine(engine) {
			suffix, ok := SuffixFor(engine, name)
			if !ok {
				t.Fatalf("No suffix for engine %s logic %s", engine, name)
			}
			gotEngine, gotLogic, ok := LogicForSuffix(suffix)
			if !ok {
				t.Fatalf("Suffix %s did not resolve", suffix)
			}
			if gotEngine != engine || gotLogic != name {
				t.Errorf("Round trip %s/%s -> %s -> %s/%s", engine, name, suffix, gotEngine, gotLogic)
			}
		}
	}
}

// TestSuffixForAliases tests suffix resolution through legacy name aliases
func TestSuffixForAliases(t *testing.T) {
	suffix, ok := SuffixFor(model.EngineA, "SCALP")
	if !ok || suffix != "ASC" {
		t.Errorf("Expected ASC for alias SCALP, got %q (ok=%v)", suffix, ok)
	}

	suffix, ok = SuffixFor(model.EngineB, "power")
	if !ok || suffix != "BP" {
		t.Errorf("Expected BP for engine B power, got %q (ok=%v)", suffix, ok)
	}
}

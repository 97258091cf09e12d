package model

import "strings"

// Canonical logic names. Seven per engine; engines B and C carry the engine
// letter as a prefix ("BPower"), engine A names are bare.
var baseLogicNames = []string{
	"Power", "Repower", "Scalper", "Swing", "Range", "Momentum", "Recovery",
}

// PrimaryLogicName is engine A's designated primary logic. It is always
// forced to Counter-Trend mode by hydration.
const PrimaryLogicName = "Power"

// logicAliases maps uppercased legacy spellings to canonical names.
// "SCALP" survives in hand-edited files from the first generation.
var logicAliases = map[string]string{
	"SCALP":  "Scalper",
	"BSCALP": "BScalper",
	"CSCALP": "CScalper",
	"REPWR":  "Repower",
	"BREPWR": "BRepower",
	"CREPWR": "CRepower",
}

// canonicalByUpper maps uppercased canonical names to their stored
// mixed-case form, for all 21 names.
var canonicalByUpper = buildCanonicalIndex()

func buildCanonicalIndex() map[string]string {
	idx := make(map[string]string, len(baseLogicNames)*3)
	for _, base := range baseLogicNames {
		idx[strings.ToUpper(base)] = base
		idx[strings.ToUpper("B"+base)] = "B" + base
		idx[strings.ToUpper("C"+base)] = "C" + base
	}
	return idx
}

// LogicNamesForEngine returns the canonical logic vocabulary for an engine.
func LogicNamesForEngine(engine string) []string {
	names := make([]string, 0, len(baseLogicNames))
	for _, base := range baseLogicNames {
		if engine == EngineA {
			names = append(names, base)
		} else {
			names = append(names, engine+base)
		}
	}
	return names
}

// CanonicalLogicName collapses aliases and case variants to the canonical
// mixed-case name. Unknown names are returned unchanged so a caller can
// decide whether to skip or flag them.
func CanonicalLogicName(name string) string {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if canonical, ok := logicAliases[upper]; ok {
		return canonical
	}
	if canonical, ok := canonicalByUpper[upper]; ok {
		return canonical
	}
	return name
}

// KnownLogicName reports whether name (after canonicalization) belongs to
// the fixed 21-name vocabulary.
func KnownLogicName(name string) bool {
	_, ok := canonicalByUpper[strings.ToUpper(CanonicalLogicName(name))]
	return ok
}

// LogicEngine derives the owning engine from a canonical logic name.
func LogicEngine(name string) string {
	canonical := CanonicalLogicName(name)
	if isBaseName(canonical) {
		return EngineA
	}
	if len(canonical) > 1 && isBaseName(canonical[1:]) {
		switch canonical[0] {
		case 'B':
			return EngineB
		case 'C':
			return EngineC
		}
	}
	return ""
}

func isBaseName(name string) bool {
	for _, base := range baseLogicNames {
		if base == name {
			return true
		}
	}
	return false
}

// IsPrimaryLogic reports whether the (engine, name) pair identifies engine
// A's primary logic.
func IsPrimaryLogic(engine, name string) bool {
	return engine == EngineA && CanonicalLogicName(name) == PrimaryLogicName
}

// IsPowerVariant reports whether the name is any engine's Power logic
// (Power, BPower, CPower). Used by the start-level repair rule.
func IsPowerVariant(name string) bool {
	canonical := CanonicalLogicName(name)
	return canonical == "Power" || canonical == "BPower" || canonical == "CPower"
}

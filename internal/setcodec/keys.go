package setcodec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"robot-config-studio/internal/model"
)

// Flat key grammars. Two generations are accepted on parse:
//
//	current: gInput_{group}_{SFX}_{Buy|Sell}_{param}
//	legacy:  gInput_{SFX}_{group}_{Buy|Sell}_{param}
//
// plus the global grammar gInput_{Param}. The group segment is all digits
// and the suffix segment is 1-3 upper-case letters, so the two directional
// generations never collide. Export always emits the current generation.
var (
	dirKeyRe       = regexp.MustCompile(`^gInput_(\d+)_([A-Z]{1,3})_(Buy|Sell)_(.+)$`)
	legacyDirKeyRe = regexp.MustCompile(`^gInput_([A-Z]{1,3})_(\d+)_(Buy|Sell)_(.+)$`)
	globalKeyRe    = regexp.MustCompile(`^gInput_([A-Za-z][A-Za-z0-9]*)$`)
)

// suffixByName maps the upper-cased logic name to its 1-3 letter key code.
// Engine A names are stored bare, engines B and C engine-prefixed; SuffixFor
// normalizes its input into this keying.
var suffixByName = map[string]string{
	"POWER":    "AP",
	"REPOWER":  "ARP",
	"SCALPER":  "ASC",
	"SWING":    "ASW",
	"RANGE":    "ARG",
	"MOMENTUM": "AMO",
	"RECOVERY": "ARC",

	"BPOWER":    "BP",
	"BREPOWER":  "BRP",
	"BSCALPER":  "BSC",
	"BSWING":    "BSW",
	"BRANGE":    "BRG",
	"BMOMENTUM": "BMO",
	"BRECOVERY": "BRC",

	"CPOWER":    "CP",
	"CREPOWER":  "CRP",
	"CSCALPER":  "CSC",
	"CSWING":    "CSW",
	"CRANGE":    "CRG",
	"CMOMENTUM": "CMO",
	"CRECOVERY": "CRC",
}

// nameBySuffix is the inverse table, built once: code -> (engine, canonical
// logic name).
var nameBySuffix = buildNameBySuffix()

type suffixOwner struct {
	Engine string
	Logic  string
}

func buildNameBySuffix() map[string]suffixOwner {
	idx := make(map[string]suffixOwner, len(suffixByName))
	for upper, code := range suffixByName {
		canonical := model.CanonicalLogicName(upper)
		idx[code] = suffixOwner{Engine: model.LogicEngine(canonical), Logic: canonical}
	}
	return idx
}

// SuffixFor resolves the key suffix for (engine, logic name). The name may
// be bare ("Power"), engine-prefixed ("BPower") or a legacy alias ("SCALP");
// case is ignored.
func SuffixFor(engine, logicName string) (string, bool) {
	canonical := model.CanonicalLogicName(logicName)
	upper := strings.ToUpper(canonical)
	if engine != model.EngineA && !strings.HasPrefix(upper, engine) {
		upper = engine + upper
	}
	code, ok := suffixByName[upper]
	return code, ok
}

// LogicForSuffix resolves a parsed suffix code back to its owning engine and
// canonical logic name. Unknown codes return ok=false; per the format
// contract the caller skips them silently.
func LogicForSuffix(code string) (engine, logic string, ok bool) {
	owner, found := nameBySuffix[code]
	if !found {
		return "", "", false
	}
	return owner.Engine, owner.Logic, true
}

// KeyKind discriminates parsed key shapes.
type KeyKind int

const (
	KeyUnknown KeyKind = iota
	KeyGlobal
	KeyDirectional
)

// ParsedKey is the identity recovered from a flat key.
type ParsedKey struct {
	Kind      KeyKind
	Group     int
	Suffix    string
	Direction string
	Param     string
}

// FormatLogicKey produces the canonical directional key,
// e.g. gInput_1_AP_Buy_InitialLot.
func FormatLogicKey(param, suffix string, group int, direction string) string {
	return fmt.Sprintf("gInput_%d_%s_%s_%s", group, suffix, direction, param)
}

// FormatGlobalKey produces a no-direction global key, e.g. gInput_MagicNumber.
func FormatGlobalKey(param string) string {
	return "gInput_" + param
}

// ParseKey parses a flat key against both directional generations and the
// global grammar. Keys matching neither return ok=false and are ignored by
// callers; a malformed or foreign key must never abort an import.
func ParseKey(key string) (ParsedKey, bool) {
	if m := dirKeyRe.FindStringSubmatch(key); m != nil {
		group, _ := strconv.Atoi(m[1])
		return ParsedKey{Kind: KeyDirectional, Group: group, Suffix: m[2], Direction: m[3], Param: m[4]}, true
	}
	if m := legacyDirKeyRe.FindStringSubmatch(key); m != nil {
		group, _ := strconv.Atoi(m[2])
		return ParsedKey{Kind: KeyDirectional, Group: group, Suffix: m[1], Direction: m[3], Param: m[4]}, true
	}
	if m := globalKeyRe.FindStringSubmatch(key); m != nil {
		if globalParamRecognized(m[1]) {
			return ParsedKey{Kind: KeyGlobal, Param: m[1]}, true
		}
	}
	return ParsedKey{}, false
}

// Package setcodec implements the bidirectional transcoder between the
// structured configuration model and the flat legacy ".set" key-value
// format: enum codec tables, the key grammar, the exporter, and the
// importer/diff engine.
//
// The flat format is frequently hand-edited, so every decode path here is
// tolerant: unknown keys, suffixes and enum spellings are skipped or mapped
// to a fallback, never raised as errors.
package setcodec

import (
	"strconv"
	"strings"

	"robot-config-studio/internal/model"
)

// enumTable is one bidirectional enum <-> legacy numeric code mapping.
// Order defines the code: values[0] is code 0.
type enumTable struct {
	values   []string
	fallback string
}

func (t enumTable) encode(v string) string {
	for i, candidate := range t.values {
		if candidate == v {
			return strconv.Itoa(i)
		}
	}
	// Unrecognized semantic value; emit the fallback's code.
	return strconv.Itoa(t.indexOf(t.fallback))
}

// decode accepts the numeric code, the exact semantic value, or a
// case-insensitive spelling of it. Garbage maps to the fallback.
func (t enumTable) decode(raw string) string {
	raw = strings.TrimSpace(raw)
	if code, err := strconv.Atoi(raw); err == nil {
		if code >= 0 && code < len(t.values) {
			return t.values[code]
		}
		return t.fallback
	}
	for _, candidate := range t.values {
		if strings.EqualFold(candidate, raw) {
			return candidate
		}
	}
	return t.fallback
}

func (t enumTable) indexOf(v string) int {
	for i, candidate := range t.values {
		if candidate == v {
			return i
		}
	}
	return 0
}

var (
	trailMethodTable = enumTable{
		values:   []string{model.TrailPoints, model.TrailPercent, model.TrailATR, model.TrailCandle},
		fallback: model.TrailPoints,
	}
	stepMethodTable = enumTable{
		values:   []string{model.StepPoints, model.StepPercent, model.StepATR, model.StepMultiplier},
		fallback: model.StepPoints,
	}
	stepModeTable = enumTable{
		values:   []string{model.StepModeFixed, model.StepModeCycle, model.StepModeBalance, model.StepModeAdaptive},
		fallback: model.StepModeFixed,
	}
	partialModeTable = enumTable{
		values:   []string{model.PartialConservative, model.PartialBalanced, model.PartialAggressive},
		fallback: model.PartialBalanced,
	}
	balanceBiasTable = enumTable{
		values:   []string{model.BiasNeutral, model.BiasProtect, model.BiasExtend},
		fallback: model.BiasNeutral,
	}
	triggerKindTable = enumTable{
		values:   []string{model.TriggerProfit, model.TriggerHours, model.TriggerBoth},
		fallback: model.TriggerProfit,
	}
	entryMethodTable = enumTable{
		values:   []string{model.EntryImmediate, model.EntryDistance, model.EntrySignal},
		fallback: model.EntryImmediate,
	}
	tradingModeTable = enumTable{
		values:   []string{model.ModeCounterTrend, model.ModeHedge, model.ModeReverse},
		fallback: model.ModeCounterTrend,
	}
	newsImpactTable = enumTable{
		values:   []string{model.ImpactLow, model.ImpactMedium, model.ImpactHigh},
		fallback: model.ImpactHigh,
	}
)

// CanonicalTrailMethod maps any legacy spelling or code to the canonical
// trail method, falling back to Points. Exposed for the hydrator.
func CanonicalTrailMethod(raw string) string { return trailMethodTable.decode(raw) }

// CanonicalStepMethod maps to the canonical trail-step method.
func CanonicalStepMethod(raw string) string { return stepMethodTable.decode(raw) }

// CanonicalStepMode maps to the canonical trail-step mode.
func CanonicalStepMode(raw string) string { return stepModeTable.decode(raw) }

// CanonicalPartialMode maps to the canonical partial-close mode.
func CanonicalPartialMode(raw string) string { return partialModeTable.decode(raw) }

// CanonicalTradingMode maps to the canonical trading mode.
func CanonicalTradingMode(raw string) string { return tradingModeTable.decode(raw) }

// CanonicalBalanceBias maps to the canonical partial-close balance bias.
func CanonicalBalanceBias(raw string) string { return balanceBiasTable.decode(raw) }

// CanonicalTriggerKind maps to the canonical partial-close trigger kind.
func CanonicalTriggerKind(raw string) string { return triggerKindTable.decode(raw) }

// CanonicalEntryMethod maps to the canonical entry-trigger method.
func CanonicalEntryMethod(raw string) string { return entryMethodTable.decode(raw) }

// CanonicalNewsImpact maps to the canonical news impact level.
func CanonicalNewsImpact(raw string) string { return newsImpactTable.decode(raw) }

// Scalar encodings shared by exporter and importer.

func encodeBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func decodeBool(raw string) bool {
	return strings.TrimSpace(raw) == "1" || strings.EqualFold(strings.TrimSpace(raw), "true")
}

func encodeInt(v int) string { return strconv.Itoa(v) }

func decodeInt(raw string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		// Some historical exports wrote integers as "40.0".
		f, ferr := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if ferr != nil {
			return 0, false
		}
		return int(f), true
	}
	return v, true
}

func encodeFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func decodeFloat(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// References are serialized with an "@" prefix so the importer can tell an
// unset reference ("@") from a literal empty value.
func encodeRef(name string) string { return "@" + name }

func decodeRef(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "@") {
		return raw[1:]
	}
	return raw
}

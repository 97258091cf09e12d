package setcodec

import (
	"regexp"
	"strconv"
	"strings"

	"robot-config-studio/internal/model"
)

// logicField binds one legacy parameter name to its canonical field. The
// same entry drives export (Get), import (Set) and diff (Norm), so the two
// directions of the mapping cannot drift apart.
type logicField struct {
	Param string // legacy parameter name as it appears in flat keys
	Field string // canonical field label used in change records

	Get func(l *model.Logic) string
	Set func(l *model.Logic, raw string)
	// Norm converts a raw file value to its canonical string encoding.
	// ok=false means the value is undecodable and the parameter is skipped.
	Norm func(raw string) (string, bool)
}

func boolField(param, field string, get func(*model.Logic) bool, set func(*model.Logic, bool)) logicField {
	return logicField{
		Param: param,
		Field: field,
		Get:   func(l *model.Logic) string { return encodeBool(get(l)) },
		Set:   func(l *model.Logic, raw string) { set(l, decodeBool(raw)) },
		Norm:  func(raw string) (string, bool) { return encodeBool(decodeBool(raw)), true },
	}
}

func intField(param, field string, get func(*model.Logic) int, set func(*model.Logic, int)) logicField {
	return logicField{
		Param: param,
		Field: field,
		Get:   func(l *model.Logic) string { return encodeInt(get(l)) },
		Set: func(l *model.Logic, raw string) {
			if v, ok := decodeInt(raw); ok {
				set(l, v)
			}
		},
		Norm: func(raw string) (string, bool) {
			v, ok := decodeInt(raw)
			if !ok {
				return "", false
			}
			return encodeInt(v), true
		},
	}
}

func floatField(param, field string, get func(*model.Logic) float64, set func(*model.Logic, float64)) logicField {
	return logicField{
		Param: param,
		Field: field,
		Get:   func(l *model.Logic) string { return encodeFloat(get(l)) },
		Set: func(l *model.Logic, raw string) {
			if v, ok := decodeFloat(raw); ok {
				set(l, v)
			}
		},
		Norm: func(raw string) (string, bool) {
			v, ok := decodeFloat(raw)
			if !ok {
				return "", false
			}
			return encodeFloat(v), true
		},
	}
}

func enumField(param, field string, table enumTable, get func(*model.Logic) string, set func(*model.Logic, string)) logicField {
	return logicField{
		Param: param,
		Field: field,
		Get:   func(l *model.Logic) string { return table.encode(get(l)) },
		Set:   func(l *model.Logic, raw string) { set(l, table.decode(raw)) },
		Norm:  func(raw string) (string, bool) { return table.encode(table.decode(raw)), true },
	}
}

func refField(param, field string, get func(*model.Logic) string, set func(*model.Logic, string)) logicField {
	return logicField{
		Param: param,
		Field: field,
		Get:   func(l *model.Logic) string { return encodeRef(get(l)) },
		Set:   func(l *model.Logic, raw string) { set(l, decodeRef(raw)) },
		Norm:  func(raw string) (string, bool) { return encodeRef(decodeRef(raw)), true },
	}
}

// scalarLogicFields covers every non-level parameter of a logic instance.
var scalarLogicFields = []logicField{
	boolField("Enabled", "enabled",
		func(l *model.Logic) bool { return l.Enabled },
		func(l *model.Logic, v bool) { l.Enabled = v }),
	enumField("TradingMode", "trading_mode", tradingModeTable,
		func(l *model.Logic) string { return l.TradingMode },
		func(l *model.Logic, v string) { l.TradingMode = v }),

	floatField("InitialLot", "initial_lot",
		func(l *model.Logic) float64 { return l.InitialLot },
		func(l *model.Logic, v float64) { l.InitialLot = v }),
	floatField("LotMultiplier", "lot_multiplier",
		func(l *model.Logic) float64 { return l.LotMultiplier },
		func(l *model.Logic, v float64) { l.LotMultiplier = v }),
	floatField("MaxLot", "max_lot",
		func(l *model.Logic) float64 { return l.MaxLot },
		func(l *model.Logic, v float64) { l.MaxLot = v }),
	intField("MaxOrders", "max_orders",
		func(l *model.Logic) int { return l.MaxOrders },
		func(l *model.Logic, v int) { l.MaxOrders = v }),
	intField("Grid", "grid",
		func(l *model.Logic) int { return l.Grid },
		func(l *model.Logic, v int) { l.Grid = v }),
	floatField("GridMultiplier", "grid_multiplier",
		func(l *model.Logic) float64 { return l.GridMultiplier },
		func(l *model.Logic, v float64) { l.GridMultiplier = v }),
	intField("GridMax", "grid_max",
		func(l *model.Logic) int { return l.GridMax },
		func(l *model.Logic, v int) { l.GridMax = v }),
	intField("StartLevel", "start_level",
		func(l *model.Logic) int { return l.StartLevel },
		func(l *model.Logic, v int) { l.StartLevel = v }),
	refField("OrderCountRef", "order_count_ref",
		func(l *model.Logic) string { return l.OrderCountRef },
		func(l *model.Logic, v string) { l.OrderCountRef = v }),

	intField("TakeProfit", "take_profit",
		func(l *model.Logic) int { return l.TakeProfit },
		func(l *model.Logic, v int) { l.TakeProfit = v }),
	floatField("TakeProfitPercent", "take_profit_percent",
		func(l *model.Logic) float64 { return l.TakeProfitPercent },
		func(l *model.Logic, v float64) { l.TakeProfitPercent = v }),
	intField("StopLoss", "stop_loss",
		func(l *model.Logic) int { return l.StopLoss },
		func(l *model.Logic, v int) { l.StopLoss = v }),
	floatField("StopLossPercent", "stop_loss_percent",
		func(l *model.Logic) float64 { return l.StopLossPercent },
		func(l *model.Logic, v float64) { l.StopLossPercent = v }),

	boolField("BreakEvenEnabled", "break_even_enabled",
		func(l *model.Logic) bool { return l.BreakEvenEnabled },
		func(l *model.Logic, v bool) { l.BreakEvenEnabled = v }),
	intField("BreakEvenStart", "break_even_start",
		func(l *model.Logic) int { return l.BreakEvenStart },
		func(l *model.Logic, v int) { l.BreakEvenStart = v }),
	intField("BreakEvenOffset", "break_even_offset",
		func(l *model.Logic) int { return l.BreakEvenOffset },
		func(l *model.Logic, v int) { l.BreakEvenOffset = v }),

	boolField("ProfitTrailEnabled", "profit_trail_enabled",
		func(l *model.Logic) bool { return l.ProfitTrailEnabled },
		func(l *model.Logic, v bool) { l.ProfitTrailEnabled = v }),
	floatField("ProfitTrailStart", "profit_trail_start",
		func(l *model.Logic) float64 { return l.ProfitTrailStart },
		func(l *model.Logic, v float64) { l.ProfitTrailStart = v }),
	floatField("ProfitTrailStep", "profit_trail_step",
		func(l *model.Logic) float64 { return l.ProfitTrailStep },
		func(l *model.Logic, v float64) { l.ProfitTrailStep = v }),
	floatField("ProfitTrailLock", "profit_trail_lock",
		func(l *model.Logic) float64 { return l.ProfitTrailLock },
		func(l *model.Logic, v float64) { l.ProfitTrailLock = v }),

	enumField("TrailMethod", "trail_method", trailMethodTable,
		func(l *model.Logic) string { return l.TrailMethod },
		func(l *model.Logic, v string) { l.TrailMethod = v }),
	intField("TrailValue", "trail_value",
		func(l *model.Logic) int { return l.TrailValue },
		func(l *model.Logic, v int) { l.TrailValue = v }),
	intField("TrailStart", "trail_start",
		func(l *model.Logic) int { return l.TrailStart },
		func(l *model.Logic, v int) { l.TrailStart = v }),

	boolField("TriggerEnabled", "trigger_enabled",
		func(l *model.Logic) bool { return l.TriggerEnabled },
		func(l *model.Logic, v bool) { l.TriggerEnabled = v }),
	enumField("TriggerMethod", "trigger_method", entryMethodTable,
		func(l *model.Logic) string { return l.TriggerMethod },
		func(l *model.Logic, v string) { l.TriggerMethod = v }),
	intField("TriggerPoints", "trigger_points",
		func(l *model.Logic) int { return l.TriggerPoints },
		func(l *model.Logic, v int) { l.TriggerPoints = v }),
	refField("TriggerRef", "trigger_ref",
		func(l *model.Logic) string { return l.TriggerRef },
		func(l *model.Logic, v string) { l.TriggerRef = v }),
	floatField("TriggerThreshold", "trigger_threshold",
		func(l *model.Logic) float64 { return l.TriggerThreshold },
		func(l *model.Logic, v float64) { l.TriggerThreshold = v }),

	boolField("ReverseEnabled", "reverse_enabled",
		func(l *model.Logic) bool { return l.ReverseEnabled },
		func(l *model.Logic, v bool) { l.ReverseEnabled = v }),
	refField("ReverseRef", "reverse_ref",
		func(l *model.Logic) string { return l.ReverseRef },
		func(l *model.Logic, v string) { l.ReverseRef = v }),
	floatField("ReverseScale", "reverse_scale",
		func(l *model.Logic) float64 { return l.ReverseScale },
		func(l *model.Logic, v float64) { l.ReverseScale = v }),
	boolField("HedgeEnabled", "hedge_enabled",
		func(l *model.Logic) bool { return l.HedgeEnabled },
		func(l *model.Logic, v bool) { l.HedgeEnabled = v }),
	refField("HedgeRef", "hedge_ref",
		func(l *model.Logic) string { return l.HedgeRef },
		func(l *model.Logic, v string) { l.HedgeRef = v }),
	floatField("HedgeScale", "hedge_scale",
		func(l *model.Logic) float64 { return l.HedgeScale },
		func(l *model.Logic, v float64) { l.HedgeScale = v }),
}

var scalarLogicFieldsByParam = buildScalarIndex()

func buildScalarIndex() map[string]logicField {
	idx := make(map[string]logicField, len(scalarLogicFields))
	for _, f := range scalarLogicFields {
		idx[f.Param] = f
	}
	return idx
}

// ============================================================================
// LEVELLED SUB-RECORD FIELDS (trail steps 1..7, partial closes 1..4)
// ============================================================================

// Level 1 has no numeric suffix in the flat format; levels 2+ append the
// level digit to the base parameter name ("TrailStepDistance3").
var levelSuffixRe = regexp.MustCompile(`^([A-Za-z]+?)([2-9])$`)

func levelSuffix(level int) string {
	if level <= 1 {
		return ""
	}
	return strconv.Itoa(level)
}

func levelFieldLabel(base string, level int) string {
	if level <= 1 {
		return base
	}
	return base + "_" + strconv.Itoa(level)
}

// trailStepAt returns the step at 1-based level, backed by the default
// template when the ladder is shorter.
func trailStepAt(l *model.Logic, level int) model.TrailStep {
	if level >= 1 && level <= len(l.TrailSteps) {
		return l.TrailSteps[level-1]
	}
	return model.DefaultTrailStep()
}

// ensureTrailStep grows the ladder with template entries so level is
// addressable, then returns a pointer to it.
func ensureTrailStep(l *model.Logic, level int) *model.TrailStep {
	for len(l.TrailSteps) < level {
		l.TrailSteps = append(l.TrailSteps, model.DefaultTrailStep())
	}
	return &l.TrailSteps[level-1]
}

func partialCloseAt(l *model.Logic, level int) model.PartialClose {
	if level >= 1 && level <= len(l.PartialCloses) {
		return l.PartialCloses[level-1]
	}
	return model.DefaultPartialClose()
}

func ensurePartialClose(l *model.Logic, level int) *model.PartialClose {
	for len(l.PartialCloses) < level {
		l.PartialCloses = append(l.PartialCloses, model.DefaultPartialClose())
	}
	return &l.PartialCloses[level-1]
}

// trailStepFieldFor builds the dispatch entry for one trail-step base
// parameter at one level. Unknown bases return ok=false.
func trailStepFieldFor(base string, level int) (logicField, bool) {
	param := base + levelSuffix(level)
	switch base {
	case "TrailStepDistance":
		return logicField{
			Param: param,
			Field: levelFieldLabel("trail_step_distance", level),
			Get:   func(l *model.Logic) string { return encodeInt(trailStepAt(l, level).Distance) },
			Set: func(l *model.Logic, raw string) {
				if v, ok := decodeInt(raw); ok {
					ensureTrailStep(l, level).Distance = v
				}
			},
			Norm: normInt,
		}, true
	case "TrailStepMethod":
		return logicField{
			Param: param,
			Field: levelFieldLabel("trail_step_method", level),
			Get:   func(l *model.Logic) string { return stepMethodTable.encode(trailStepAt(l, level).Method) },
			Set: func(l *model.Logic, raw string) {
				ensureTrailStep(l, level).Method = stepMethodTable.decode(raw)
			},
			Norm: normEnum(stepMethodTable),
		}, true
	case "TrailStepCycles":
		return logicField{
			Param: param,
			Field: levelFieldLabel("trail_step_cycles", level),
			Get:   func(l *model.Logic) string { return encodeInt(trailStepAt(l, level).Cycles) },
			Set: func(l *model.Logic, raw string) {
				if v, ok := decodeInt(raw); ok {
					ensureTrailStep(l, level).Cycles = v
				}
			},
			Norm: normInt,
		}, true
	case "TrailStepBalance":
		return logicField{
			Param: param,
			Field: levelFieldLabel("trail_step_balance", level),
			Get:   func(l *model.Logic) string { return encodeFloat(trailStepAt(l, level).Balance) },
			Set: func(l *model.Logic, raw string) {
				if v, ok := decodeFloat(raw); ok {
					ensureTrailStep(l, level).Balance = v
				}
			},
			Norm: normFloat,
		}, true
	case "TrailStepMode":
		return logicField{
			Param: param,
			Field: levelFieldLabel("trail_step_mode", level),
			Get:   func(l *model.Logic) string { return stepModeTable.encode(trailStepAt(l, level).Mode) },
			Set: func(l *model.Logic, raw string) {
				ensureTrailStep(l, level).Mode = stepModeTable.decode(raw)
			},
			Norm: normEnum(stepModeTable),
		}, true
	}
	return partialCloseFieldFor(base, level)
}

func partialCloseFieldFor(base string, level int) (logicField, bool) {
	param := base + levelSuffix(level)
	switch base {
	case "ClosePartialEnabled":
		return logicField{
			Param: param,
			Field: levelFieldLabel("partial_close_enabled", level),
			Get:   func(l *model.Logic) string { return encodeBool(partialCloseAt(l, level).Enabled) },
			Set: func(l *model.Logic, raw string) {
				ensurePartialClose(l, level).Enabled = decodeBool(raw)
			},
			Norm: normBool,
		}, true
	case "ClosePartialMode":
		return logicField{
			Param: param,
			Field: levelFieldLabel("partial_close_mode", level),
			Get:   func(l *model.Logic) string { return partialModeTable.encode(partialCloseAt(l, level).Mode) },
			Set: func(l *model.Logic, raw string) {
				ensurePartialClose(l, level).Mode = partialModeTable.decode(raw)
			},
			Norm: normEnum(partialModeTable),
		}, true
	case "ClosePartialBias":
		return logicField{
			Param: param,
			Field: levelFieldLabel("partial_close_bias", level),
			Get:   func(l *model.Logic) string { return balanceBiasTable.encode(partialCloseAt(l, level).BalanceBias) },
			Set: func(l *model.Logic, raw string) {
				ensurePartialClose(l, level).BalanceBias = balanceBiasTable.decode(raw)
			},
			Norm: normEnum(balanceBiasTable),
		}, true
	case "ClosePartialTrigger":
		return logicField{
			Param: param,
			Field: levelFieldLabel("partial_close_trigger", level),
			Get:   func(l *model.Logic) string { return triggerKindTable.encode(partialCloseAt(l, level).TriggerKind) },
			Set: func(l *model.Logic, raw string) {
				ensurePartialClose(l, level).TriggerKind = triggerKindTable.decode(raw)
			},
			Norm: normEnum(triggerKindTable),
		}, true
	case "ClosePartialProfit":
		return logicField{
			Param: param,
			Field: levelFieldLabel("partial_close_profit", level),
			Get:   func(l *model.Logic) string { return encodeFloat(partialCloseAt(l, level).ProfitThreshold) },
			Set: func(l *model.Logic, raw string) {
				if v, ok := decodeFloat(raw); ok {
					ensurePartialClose(l, level).ProfitThreshold = v
				}
			},
			Norm: normFloat,
		}, true
	case "ClosePartialHours":
		return logicField{
			Param: param,
			Field: levelFieldLabel("partial_close_hours", level),
			Get:   func(l *model.Logic) string { return encodeFloat(partialCloseAt(l, level).HoursThreshold) },
			Set: func(l *model.Logic, raw string) {
				if v, ok := decodeFloat(raw); ok {
					ensurePartialClose(l, level).HoursThreshold = v
				}
			},
			Norm: normFloat,
		}, true
	}
	return logicField{}, false
}

func isTrailStepBase(base string) bool {
	switch base {
	case "TrailStepDistance", "TrailStepMethod", "TrailStepCycles", "TrailStepBalance", "TrailStepMode":
		return true
	}
	return false
}

func maxLevelFor(base string) int {
	if isTrailStepBase(base) {
		return model.MaxTrailSteps
	}
	return model.MaxPartialCloses
}

// resolveLogicParam maps a legacy parameter name (with optional level
// suffix) to its dispatch entry. Unknown parameters return ok=false and are
// skipped by callers.
func resolveLogicParam(param string) (logicField, bool) {
	if f, ok := scalarLogicFieldsByParam[param]; ok {
		return f, ok
	}
	base, level := param, 1
	if m := levelSuffixRe.FindStringSubmatch(param); m != nil {
		base = m[1]
		level, _ = strconv.Atoi(m[2])
	}
	if f, ok := trailStepFieldFor(base, level); ok && level <= maxLevelFor(base) {
		return f, true
	}
	return logicField{}, false
}

// SetLogicField applies a raw value onto a logic field resolved by
// case-insensitive parameter or field-label lookup. Used by the hydrator to
// fold legacy _b/_s directional overrides onto a split instance. Returns
// false for unknown names.
func SetLogicField(l *model.Logic, name, raw string) bool {
	f, ok := resolveLogicParam(name)
	if !ok {
		f, ok = resolveLogicParamLoose(name)
	}
	if !ok {
		return false
	}
	f.Set(l, raw)
	return true
}

// LogicFieldValue reads the encoded value of a logic field resolved the
// same way SetLogicField resolves its target. Returns ok=false for unknown
// names.
func LogicFieldValue(l *model.Logic, name string) (string, bool) {
	f, ok := resolveLogicParam(name)
	if !ok {
		f, ok = resolveLogicParamLoose(name)
	}
	if !ok {
		return "", false
	}
	return f.Get(l), true
}

// FieldLabelFor maps a parameter name to its stable field label, falling
// back to the parameter itself for unknown names.
func FieldLabelFor(name string) string {
	if f, ok := resolveLogicParam(name); ok {
		return f.Field
	}
	if f, ok := resolveLogicParamLoose(name); ok {
		return f.Field
	}
	return name
}

func resolveLogicParamLoose(name string) (logicField, bool) {
	folded := foldFieldName(name)
	for _, f := range scalarLogicFields {
		if foldFieldName(f.Param) == folded || foldFieldName(f.Field) == folded {
			return f, true
		}
	}
	return logicField{}, false
}

func foldFieldName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

// Shared Norm helpers.

func normBool(raw string) (string, bool) { return encodeBool(decodeBool(raw)), true }

func normInt(raw string) (string, bool) {
	v, ok := decodeInt(raw)
	if !ok {
		return "", false
	}
	return encodeInt(v), true
}

func normFloat(raw string) (string, bool) {
	v, ok := decodeFloat(raw)
	if !ok {
		return "", false
	}
	return encodeFloat(v), true
}

func normEnum(table enumTable) func(string) (string, bool) {
	return func(raw string) (string, bool) {
		return table.encode(table.decode(raw)), true
	}
}

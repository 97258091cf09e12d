// Package model defines the structured in-memory representation of a robot
// configuration: global settings plus engines, groups and per-direction logic
// instances. The flat ".set" wire form lives in internal/setcodec; this
// package is the canonical shape every other component operates on.
package model

// Engine names form a closed set.
const (
	EngineA = "A"
	EngineB = "B"
	EngineC = "C"
)

// EngineNames lists the engines in canonical order.
var EngineNames = []string{EngineA, EngineB, EngineC}

// Direction values for a logic instance.
const (
	DirectionBuy  = "Buy"
	DirectionSell = "Sell"
)

// Trading modes. A logic instance is in exactly one mode after hydration.
const (
	ModeCounterTrend = "Counter Trend"
	ModeHedge        = "Hedge"
	ModeReverse      = "Reverse"
)

// Trail methods (how the trailing distance is measured).
const (
	TrailPoints  = "Points"
	TrailPercent = "Percent"
	TrailATR     = "ATR"
	TrailCandle  = "Candle"
)

// Trail step methods (legacy "Step_*" vocabulary).
const (
	StepPoints     = "Step_Points"
	StepPercent    = "Step_Percent"
	StepATR        = "Step_ATR"
	StepMultiplier = "Step_Multiplier"
)

// Trail step modes.
const (
	StepModeFixed    = "Fixed"
	StepModeCycle    = "Cycle"
	StepModeBalance  = "Balance"
	StepModeAdaptive = "Adaptive"
)

// Partial close risk postures.
const (
	PartialConservative = "Conservative"
	PartialBalanced     = "Balanced"
	PartialAggressive   = "Aggressive"
)

// Partial close balance bias.
const (
	BiasNeutral = "Neutral"
	BiasProtect = "Protect"
	BiasExtend  = "Extend"
)

// Partial close trigger kinds.
const (
	TriggerProfit = "Profit"
	TriggerHours  = "Hours"
	TriggerBoth   = "Both"
)

// Entry trigger methods.
const (
	EntryImmediate = "Immediate"
	EntryDistance  = "Distance"
	EntrySignal    = "Signal"
)

// News impact levels.
const (
	ImpactLow    = "Low"
	ImpactMedium = "Medium"
	ImpactHigh   = "High"
)

// Structural bounds.
const (
	MaxGroups        = 20
	MaxTrailSteps    = 7
	MaxPartialCloses = 4
	SessionCount     = 7
)

// RobotConfig is the full structured configuration.
type RobotConfig struct {
	Global  GlobalSettings `json:"global"`
	Engines []Engine       `json:"engines"`
}

// GlobalSettings holds top-level scalar settings shared by all engines.
type GlobalSettings struct {
	MagicNumber     int     `json:"magic_number"`
	MagicNumberBuy  int     `json:"magic_number_buy"`
	MagicNumberSell int     `json:"magic_number_sell"`
	Slippage        int     `json:"slippage"`
	MaxSpread       float64 `json:"max_spread"`
	EnableLogs      bool    `json:"enable_logs"`
	OrderComment    string  `json:"order_comment"`

	// Risk block
	RiskPercent        float64 `json:"risk_percent"`
	MaxDrawdownPercent float64 `json:"max_drawdown_percent"`
	EquityStopLevel    float64 `json:"equity_stop_level"`
	MaxDailyLoss       float64 `json:"max_daily_loss"`

	// Always exactly SessionCount entries after hydration, indexed 1..7.
	Sessions []SessionWindow `json:"sessions"`

	News NewsFilter `json:"news_filter"`

	// License labels travel with the config for display only; they are not
	// part of the flat export.
	LicenseOwner  string `json:"license_owner,omitempty"`
	LicenseExpiry string `json:"license_expiry,omitempty"`
}

// SessionWindow is one trading-hours entry.
type SessionWindow struct {
	Index   int    `json:"index"`
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"` // "HH:MM"
	End     string `json:"end"`   // "HH:MM"
}

// NewsFilter holds the news avoidance block.
type NewsFilter struct {
	Enabled       bool   `json:"enabled"`
	MinutesBefore int    `json:"minutes_before"`
	MinutesAfter  int    `json:"minutes_after"`
	ImpactLevel   string `json:"impact_level"`
}

// Engine is one of the three independent trading sub-systems.
type Engine struct {
	Name      string  `json:"name"`
	MaxOrders int     `json:"max_orders"`
	Groups    []Group `json:"groups"`
}

// Group is a numbered bucket of logic instances with group-level
// coordination settings. PowerStart is only meaningful for groups past the
// first one.
type Group struct {
	Number         int     `json:"number"`
	Enabled        bool    `json:"enabled"`
	PowerStart     float64 `json:"power_start,omitempty"`
	ReverseEnabled bool    `json:"reverse_enabled"`
	HedgeEnabled   bool    `json:"hedge_enabled"`
	HedgeRef       string  `json:"hedge_ref,omitempty"`
	Logics         []Logic `json:"logics"`
}

// Logic is a single strategy module instance. After hydration every instance
// is directionally pure: exactly one of AllowBuy/AllowSell is set.
type Logic struct {
	LogicName string `json:"logic_name"`
	LogicID   string `json:"logic_id,omitempty"` // derived, e.g. "AP-1-Buy"
	Enabled   bool   `json:"enabled"`

	// Direction. Older payloads carry an explicit Direction marker or a
	// bidirectional instance with _b/_s overrides; hydration resolves both.
	AllowBuy  bool   `json:"allow_buy"`
	AllowSell bool   `json:"allow_sell"`
	Direction string `json:"direction,omitempty"`

	// Legacy direction-suffixed overrides ("initiallot_b" → "0.02"). Consumed
	// and cleared by hydration when a bidirectional record is split.
	DirectionalOverrides map[string]string `json:"directional_overrides,omitempty"`

	TradingMode string `json:"trading_mode,omitempty"`

	// Order / grid block
	InitialLot     float64 `json:"initial_lot"`
	LotMultiplier  float64 `json:"lot_multiplier"`
	MaxLot         float64 `json:"max_lot"`
	MaxOrders      int     `json:"max_orders"`
	Grid           int     `json:"grid"`
	GridMultiplier float64 `json:"grid_multiplier"`
	GridMax        int     `json:"grid_max"`
	StartLevel     int     `json:"start_level"`
	OrderCountRef  string  `json:"order_count_ref,omitempty"`

	// Take profit / stop loss
	TakeProfit        int     `json:"take_profit"`
	TakeProfitPercent float64 `json:"take_profit_percent"`
	StopLoss          int     `json:"stop_loss"`
	StopLossPercent   float64 `json:"stop_loss_percent"`

	// Break even
	BreakEvenEnabled bool `json:"break_even_enabled"`
	BreakEvenStart   int  `json:"break_even_start"`
	BreakEvenOffset  int  `json:"break_even_offset"`

	// Profit trail
	ProfitTrailEnabled bool    `json:"profit_trail_enabled"`
	ProfitTrailStart   float64 `json:"profit_trail_start"`
	ProfitTrailStep    float64 `json:"profit_trail_step"`
	ProfitTrailLock    float64 `json:"profit_trail_lock"`

	// Trail configuration
	TrailMethod string      `json:"trail_method"`
	TrailValue  int         `json:"trail_value"`
	TrailStart  int         `json:"trail_start"`
	TrailSteps  []TrailStep `json:"trail_steps,omitempty"`

	PartialCloses []PartialClose `json:"partial_closes,omitempty"`

	// Entry trigger
	TriggerEnabled   bool    `json:"trigger_enabled"`
	TriggerMethod    string  `json:"trigger_method"`
	TriggerPoints    int     `json:"trigger_points"`
	TriggerRef       string  `json:"trigger_ref,omitempty"`
	TriggerThreshold float64 `json:"trigger_threshold"`

	// Cross-logic references. Names, not pointers; resolved by lookup at use
	// time. At most one of Reverse/Hedge is enabled after hydration.
	ReverseEnabled bool    `json:"reverse_enabled"`
	ReverseRef     string  `json:"reverse_ref,omitempty"`
	ReverseScale   float64 `json:"reverse_scale"`
	HedgeEnabled   bool    `json:"hedge_enabled"`
	HedgeRef       string  `json:"hedge_ref,omitempty"`
	HedgeScale     float64 `json:"hedge_scale"`
}

// TrailStep is one entry of a logic's stepped trailing ladder.
type TrailStep struct {
	Distance int     `json:"distance"`
	Method   string  `json:"method"`
	Cycles   int     `json:"cycles"`
	Balance  float64 `json:"balance"`
	Mode     string  `json:"mode"`
}

// PartialClose is one partial-close level.
type PartialClose struct {
	Enabled         bool    `json:"enabled"`
	Mode            string  `json:"mode"`
	BalanceBias     string  `json:"balance_bias"`
	TriggerKind     string  `json:"trigger_kind"`
	ProfitThreshold float64 `json:"profit_threshold"`
	HoursThreshold  float64 `json:"hours_threshold"`
}

// ChangeRecord is the shared change representation used by the diff engine,
// the import preview and the command layer. Values are the canonical string
// encodings used by the flat format.
type ChangeRecord struct {
	Engine       string `json:"engine"`
	Group        int    `json:"group"`
	Logic        string `json:"logic"`
	Field        string `json:"field"`
	CurrentValue string `json:"currentValue"`
	NewValue     string `json:"newValue"`
}

// Target scopes an operation to a subset of the configuration. Empty slices
// mean "all". Produced by the command layer, consumed here.
type Target struct {
	Engines []string `json:"engines,omitempty"`
	Groups  []int    `json:"groups,omitempty"`
	Logics  []string `json:"logics,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

// Matches reports whether a change record falls inside the target scope.
func (t Target) Matches(rec ChangeRecord) bool {
	if len(t.Engines) > 0 && !containsString(t.Engines, rec.Engine) {
		return false
	}
	if len(t.Groups) > 0 && !containsInt(t.Groups, rec.Group) {
		return false
	}
	if len(t.Logics) > 0 && !containsString(t.Logics, rec.Logic) {
		return false
	}
	if len(t.Fields) > 0 && !containsString(t.Fields, rec.Field) {
		return false
	}
	return true
}

// FilterChanges returns the records inside the target scope, preserving order.
func FilterChanges(records []ChangeRecord, target Target) []ChangeRecord {
	out := make([]ChangeRecord, 0, len(records))
	for _, rec := range records {
		if target.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}

// FindEngine returns the engine with the given name, or nil.
func (c *RobotConfig) FindEngine(name string) *Engine {
	for i := range c.Engines {
		if c.Engines[i].Name == name {
			return &c.Engines[i]
		}
	}
	return nil
}

// FindGroup returns the group with the given number, or nil.
func (e *Engine) FindGroup(number int) *Group {
	for i := range e.Groups {
		if e.Groups[i].Number == number {
			return &e.Groups[i]
		}
	}
	return nil
}

// FindLogic returns the logic instance with the given name and direction,
// or nil. Name comparison is exact; callers canonicalize first.
func (g *Group) FindLogic(name, direction string) *Logic {
	for i := range g.Logics {
		l := &g.Logics[i]
		if l.LogicName != name {
			continue
		}
		if direction == DirectionBuy && l.AllowBuy {
			return l
		}
		if direction == DirectionSell && l.AllowSell {
			return l
		}
	}
	return nil
}

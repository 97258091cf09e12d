// Package hydrate normalizes a structured configuration into its canonical,
// internally consistent form: defaults filled, aliases collapsed, every
// logic instance directionally pure, and the trading-mode invariant
// enforced. Hydration is idempotent; running it on already-hydrated input
// is a no-op.
package hydrate

import (
	"fmt"
	"strings"

	"robot-config-studio/internal/model"
	"robot-config-studio/internal/setcodec"
)

// Hydrate returns a fully-populated, consistent copy of the configuration.
// The input is never mutated. Step order matters: direction splitting needs
// canonical names, and mode resolution needs settled directions.
func Hydrate(c *model.RobotConfig) (*model.RobotConfig, error) {
	if c == nil {
		return nil, setcodec.ErrNilConfig
	}
	out := c.Clone()

	fillGlobalDefaults(&out.Global)
	fillEngines(out)

	for ei := range out.Engines {
		engine := &out.Engines[ei]
		for gi := range engine.Groups {
			group := &engine.Groups[gi]
			if group.Number == 0 {
				group.Number = gi + 1
			}

			canonicalizeNames(group)
			group.Logics = splitDirections(group.Logics)

			for li := range group.Logics {
				logic := &group.Logics[li]
				fillLogicDefaults(logic)
				resolveTradingMode(engine.Name, logic)
				canonicalizeEnums(logic)
				repairStartLevel(engine.Name, logic)
				logic.LogicID = deriveLogicID(engine.Name, group.Number, logic)
			}
		}
	}
	return out, nil
}

// fillGlobalDefaults merges the constant template under the input: template
// values only land where the input carries nothing.
func fillGlobalDefaults(g *model.GlobalSettings) {
	def := model.DefaultGlobalSettings()

	if g.MagicNumber == 0 {
		g.MagicNumber = def.MagicNumber
	}
	if g.MagicNumberBuy == 0 {
		g.MagicNumberBuy = def.MagicNumberBuy
	}
	if g.MagicNumberSell == 0 {
		g.MagicNumberSell = def.MagicNumberSell
	}
	if g.Slippage == 0 {
		g.Slippage = def.Slippage
	}
	if g.MaxSpread == 0 {
		g.MaxSpread = def.MaxSpread
	}
	if g.OrderComment == "" {
		g.OrderComment = def.OrderComment
	}
	if g.RiskPercent == 0 {
		g.RiskPercent = def.RiskPercent
	}
	if g.MaxDrawdownPercent == 0 {
		g.MaxDrawdownPercent = def.MaxDrawdownPercent
	}
	if g.News.MinutesBefore == 0 {
		g.News.MinutesBefore = def.News.MinutesBefore
	}
	if g.News.MinutesAfter == 0 {
		g.News.MinutesAfter = def.News.MinutesAfter
	}
	g.News.ImpactLevel = setcodec.CanonicalNewsImpact(g.News.ImpactLevel)

	g.Sessions = normalizeSessions(g.Sessions)
}

// normalizeSessions produces exactly SessionCount entries indexed 1..7,
// keeping input entries by index and filling gaps from the template.
func normalizeSessions(in []model.SessionWindow) []model.SessionWindow {
	byIndex := make(map[int]model.SessionWindow, len(in))
	for i, s := range in {
		if s.Index == 0 {
			s.Index = i + 1
		}
		if s.Index >= 1 && s.Index <= model.SessionCount {
			byIndex[s.Index] = s
		}
	}
	out := model.DefaultSessions()
	for i := range out {
		if s, ok := byIndex[out[i].Index]; ok {
			if s.Start == "" {
				s.Start = out[i].Start
			}
			if s.End == "" {
				s.End = out[i].End
			}
			out[i] = s
		}
	}
	return out
}

// fillEngines guarantees the three engines exist; an engine absent from the
// input gets its full default layout.
func fillEngines(c *model.RobotConfig) {
	for _, name := range model.EngineNames {
		engine := c.FindEngine(name)
		if engine == nil {
			c.Engines = append(c.Engines, model.Engine{
				Name:      name,
				MaxOrders: 60,
				Groups:    []model.Group{model.DefaultGroup(name, 1)},
			})
			continue
		}
		if engine.MaxOrders == 0 {
			engine.MaxOrders = 60
		}
		if len(engine.Groups) == 0 {
			engine.Groups = []model.Group{model.DefaultGroup(name, 1)}
		}
	}
}

func canonicalizeNames(g *model.Group) {
	for i := range g.Logics {
		g.Logics[i].LogicName = model.CanonicalLogicName(g.Logics[i].LogicName)
	}
	g.HedgeRef = model.CanonicalLogicName(g.HedgeRef)
}

// splitDirections makes every instance directionally pure. Records with an
// explicit marker or an unambiguous flag pair are kept; a bidirectional or
// directionless record is split into a Buy and a Sell instance, with any
// _b/_s suffixed overrides folded onto the matching side.
func splitDirections(in []model.Logic) []model.Logic {
	out := make([]model.Logic, 0, len(in))
	for _, l := range in {
		switch {
		case strings.EqualFold(l.Direction, model.DirectionBuy):
			l.AllowBuy, l.AllowSell = true, false
		case strings.EqualFold(l.Direction, model.DirectionSell):
			l.AllowBuy, l.AllowSell = false, true
		}
		l.Direction = ""

		if l.AllowBuy != l.AllowSell {
			direction := model.DirectionSell
			if l.AllowBuy {
				direction = model.DirectionBuy
			}
			applyOverrides(&l, direction)
			out = append(out, l)
			continue
		}

		buy := cloneFor(l, model.DirectionBuy)
		sell := cloneFor(l, model.DirectionSell)
		out = append(out, buy, sell)
	}
	return out
}

func cloneFor(l model.Logic, direction string) model.Logic {
	side := l
	side.TrailSteps = append([]model.TrailStep(nil), l.TrailSteps...)
	side.PartialCloses = append([]model.PartialClose(nil), l.PartialCloses...)
	side.DirectionalOverrides = l.DirectionalOverrides
	side.AllowBuy = direction == model.DirectionBuy
	side.AllowSell = direction == model.DirectionSell
	applyOverrides(&side, direction)
	return side
}

// applyOverrides folds "{field}_b"/"{field}_s" legacy override values onto
// the base fields of the matching side, then drops the override map.
func applyOverrides(l *model.Logic, direction string) {
	overrides := l.DirectionalOverrides
	l.DirectionalOverrides = nil
	if len(overrides) == 0 {
		return
	}
	want := "_s"
	if direction == model.DirectionBuy {
		want = "_b"
	}
	for key, value := range overrides {
		lower := strings.ToLower(key)
		if !strings.HasSuffix(lower, want) {
			continue
		}
		base := key[:len(key)-len(want)]
		setcodec.SetLogicField(l, base, value)
	}
}

// resolveTradingMode settles the mode tag and forces the boolean, reference
// and scale fields to agree with it. An explicit tag wins over the flags;
// without one the mode is inferred from hedge/reverse (both or neither
// collapse to Counter Trend). Engine A's primary logic is always Counter
// Trend no matter what the input says.
func resolveTradingMode(engine string, l *model.Logic) {
	mode := ""
	if strings.TrimSpace(l.TradingMode) != "" {
		mode = setcodec.CanonicalTradingMode(l.TradingMode)
	} else if l.HedgeEnabled != l.ReverseEnabled {
		if l.HedgeEnabled {
			mode = model.ModeHedge
		} else {
			mode = model.ModeReverse
		}
	} else {
		mode = model.ModeCounterTrend
	}

	if model.IsPrimaryLogic(engine, l.LogicName) {
		mode = model.ModeCounterTrend
	}

	l.TradingMode = mode
	switch mode {
	case model.ModeHedge:
		l.HedgeEnabled = true
		l.ReverseEnabled = false
		l.ReverseRef = ""
		l.ReverseScale = 0
		if l.HedgeScale == 0 {
			l.HedgeScale = 1.0
		}
	case model.ModeReverse:
		l.ReverseEnabled = true
		l.HedgeEnabled = false
		l.HedgeRef = ""
		l.HedgeScale = 0
		if l.ReverseScale == 0 {
			l.ReverseScale = 1.0
		}
	default:
		l.HedgeEnabled = false
		l.ReverseEnabled = false
		l.HedgeRef = ""
		l.ReverseRef = ""
		l.HedgeScale = 0
		l.ReverseScale = 0
	}
}

// canonicalizeEnums runs every enum-like string field through its tolerant
// mapping; garbage input lands on the documented fallback, never an error.
func canonicalizeEnums(l *model.Logic) {
	l.TrailMethod = setcodec.CanonicalTrailMethod(l.TrailMethod)
	l.TriggerMethod = setcodec.CanonicalEntryMethod(l.TriggerMethod)

	if len(l.TrailSteps) > model.MaxTrailSteps {
		l.TrailSteps = l.TrailSteps[:model.MaxTrailSteps]
	}
	for i := range l.TrailSteps {
		l.TrailSteps[i].Method = setcodec.CanonicalStepMethod(l.TrailSteps[i].Method)
		l.TrailSteps[i].Mode = setcodec.CanonicalStepMode(l.TrailSteps[i].Mode)
	}

	if len(l.PartialCloses) > model.MaxPartialCloses {
		l.PartialCloses = l.PartialCloses[:model.MaxPartialCloses]
	}
	for i := range l.PartialCloses {
		l.PartialCloses[i].Mode = setcodec.CanonicalPartialMode(l.PartialCloses[i].Mode)
		l.PartialCloses[i].BalanceBias = setcodec.CanonicalBalanceBias(l.PartialCloses[i].BalanceBias)
		l.PartialCloses[i].TriggerKind = setcodec.CanonicalTriggerKind(l.PartialCloses[i].TriggerKind)
	}
}

// fillLogicDefaults backfills fields whose zero value is never a legitimate
// configuration.
func fillLogicDefaults(l *model.Logic) {
	def := model.DefaultLogic(l.LogicName, model.DirectionBuy)
	if l.InitialLot == 0 {
		l.InitialLot = def.InitialLot
	}
	if l.LotMultiplier == 0 {
		l.LotMultiplier = def.LotMultiplier
	}
	if l.MaxLot == 0 {
		l.MaxLot = def.MaxLot
	}
	if l.MaxOrders == 0 {
		l.MaxOrders = def.MaxOrders
	}
	if l.Grid == 0 {
		l.Grid = def.Grid
	}
	if l.GridMultiplier == 0 {
		l.GridMultiplier = def.GridMultiplier
	}
	if l.GridMax == 0 {
		l.GridMax = def.GridMax
	}
	if len(l.TrailSteps) == 0 {
		l.TrailSteps = []model.TrailStep{model.DefaultTrailStep()}
	}
	if len(l.PartialCloses) == 0 {
		l.PartialCloses = []model.PartialClose{model.DefaultPartialClose()}
	}
}

// repairStartLevel is a deliberate data-repair rule, not a default: B and C
// Power logics were historically persisted with a start level of 0, which
// the runtime never supported. Business rule pending confirmation from the
// domain owner; do not generalize.
func repairStartLevel(engine string, l *model.Logic) {
	if engine == model.EngineA {
		return
	}
	if model.IsPowerVariant(l.LogicName) && l.StartLevel == 0 {
		l.StartLevel = 4
	}
}

func deriveLogicID(engine string, group int, l *model.Logic) string {
	suffix, ok := setcodec.SuffixFor(engine, l.LogicName)
	if !ok {
		suffix = strings.ToUpper(engine)
	}
	direction := model.DirectionSell
	if l.AllowBuy {
		direction = model.DirectionBuy
	}
	return fmt.Sprintf("%s-%d-%s", suffix, group, direction)
}

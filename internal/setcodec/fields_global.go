package setcodec

import (
	"regexp"
	"strconv"
	"strings"

	"robot-config-studio/internal/model"
)

// globalField binds one no-direction parameter to the structured model.
// Get returns ok=false when the addressed engine/group/session is absent
// from the model; per the import contract such keys are skipped silently.
type globalField struct {
	Param  string
	Field  string
	Engine string // set for engine- and group-scoped params
	Group  int    // set for group-scoped params

	Get  func(c *model.RobotConfig) (string, bool)
	Set  func(c *model.RobotConfig, raw string)
	Norm func(raw string) (string, bool)
}

var (
	sessionParamRe = regexp.MustCompile(`^Session([1-7])(Enabled|Start|End)$`)
	groupParamRe   = regexp.MustCompile(`^Group([ABC])(\d{1,2})(Enabled|PowerStart|Reverse|Hedge|HedgeRef)$`)
	engineParamRe  = regexp.MustCompile(`^Engine([ABC])MaxOrders$`)
)

// Fixed scalar global parameters.
var scalarGlobalFields = []globalField{
	{
		Param: "MagicNumber", Field: "magic_number",
		Get:  func(c *model.RobotConfig) (string, bool) { return encodeInt(c.Global.MagicNumber), true },
		Set:  func(c *model.RobotConfig, raw string) { setGlobalInt(&c.Global.MagicNumber, raw) },
		Norm: normInt,
	},
	{
		Param: "MagicNumberBuy", Field: "magic_number_buy",
		Get:  func(c *model.RobotConfig) (string, bool) { return encodeInt(c.Global.MagicNumberBuy), true },
		Set:  func(c *model.RobotConfig, raw string) { setGlobalInt(&c.Global.MagicNumberBuy, raw) },
		Norm: normInt,
	},
	{
		Param: "MagicNumberSell", Field: "magic_number_sell",
		Get:  func(c *model.RobotConfig) (string, bool) { return encodeInt(c.Global.MagicNumberSell), true },
		Set:  func(c *model.RobotConfig, raw string) { setGlobalInt(&c.Global.MagicNumberSell, raw) },
		Norm: normInt,
	},
	{
		Param: "Slippage", Field: "slippage",
		Get:  func(c *model.RobotConfig) (string, bool) { return encodeInt(c.Global.Slippage), true },
		Set:  func(c *model.RobotConfig, raw string) { setGlobalInt(&c.Global.Slippage, raw) },
		Norm: normInt,
	},
	{
		Param: "MaxSpread", Field: "max_spread",
		Get:  func(c *model.RobotConfig) (string, bool) { return encodeFloat(c.Global.MaxSpread), true },
		Set:  func(c *model.RobotConfig, raw string) { setGlobalFloat(&c.Global.MaxSpread, raw) },
		Norm: normFloat,
	},
	{
		Param: "EnableLogs", Field: "enable_logs",
		Get:  func(c *model.RobotConfig) (string, bool) { return encodeBool(c.Global.EnableLogs), true },
		Set:  func(c *model.RobotConfig, raw string) { c.Global.EnableLogs = decodeBool(raw) },
		Norm: normBool,
	},
	{
		Param: "OrderComment", Field: "order_comment",
		Get:  func(c *model.RobotConfig) (string, bool) { return c.Global.OrderComment, true },
		Set:  func(c *model.RobotConfig, raw string) { c.Global.OrderComment = strings.TrimSpace(raw) },
		Norm: normString,
	},
	{
		Param: "RiskPercent", Field: "risk_percent",
		Get:  func(c *model.RobotConfig) (string, bool) { return encodeFloat(c.Global.RiskPercent), true },
		Set:  func(c *model.RobotConfig, raw string) { setGlobalFloat(&c.Global.RiskPercent, raw) },
		Norm: normFloat,
	},
	{
		Param: "MaxDrawdownPercent", Field: "max_drawdown_percent",
		Get:  func(c *model.RobotConfig) (string, bool) { return encodeFloat(c.Global.MaxDrawdownPercent), true },
		Set:  func(c *model.RobotConfig, raw string) { setGlobalFloat(&c.Global.MaxDrawdownPercent, raw) },
		Norm: normFloat,
	},
	{
		Param: "EquityStopLevel", Field: "equity_stop_level",
		Get:  func(c *model.RobotConfig) (string, bool) { return encodeFloat(c.Global.EquityStopLevel), true },
		Set:  func(c *model.RobotConfig, raw string) { setGlobalFloat(&c.Global.EquityStopLevel, raw) },
		Norm: normFloat,
	},
	{
		Param: "MaxDailyLoss", Field: "max_daily_loss",
		Get:  func(c *model.RobotConfig) (string, bool) { return encodeFloat(c.Global.MaxDailyLoss), true },
		Set:  func(c *model.RobotConfig, raw string) { setGlobalFloat(&c.Global.MaxDailyLoss, raw) },
		Norm: normFloat,
	},
	{
		Param: "NewsFilterEnabled", Field: "news_filter_enabled",
		Get:  func(c *model.RobotConfig) (string, bool) { return encodeBool(c.Global.News.Enabled), true },
		Set:  func(c *model.RobotConfig, raw string) { c.Global.News.Enabled = decodeBool(raw) },
		Norm: normBool,
	},
	{
		Param: "NewsMinutesBefore", Field: "news_minutes_before",
		Get:  func(c *model.RobotConfig) (string, bool) { return encodeInt(c.Global.News.MinutesBefore), true },
		Set:  func(c *model.RobotConfig, raw string) { setGlobalInt(&c.Global.News.MinutesBefore, raw) },
		Norm: normInt,
	},
	{
		Param: "NewsMinutesAfter", Field: "news_minutes_after",
		Get:  func(c *model.RobotConfig) (string, bool) { return encodeInt(c.Global.News.MinutesAfter), true },
		Set:  func(c *model.RobotConfig, raw string) { setGlobalInt(&c.Global.News.MinutesAfter, raw) },
		Norm: normInt,
	},
	{
		Param: "NewsImpactLevel", Field: "news_impact_level",
		Get: func(c *model.RobotConfig) (string, bool) {
			return newsImpactTable.encode(c.Global.News.ImpactLevel), true
		},
		Set: func(c *model.RobotConfig, raw string) {
			c.Global.News.ImpactLevel = newsImpactTable.decode(raw)
		},
		Norm: normEnum(newsImpactTable),
	},
}

var scalarGlobalFieldsByParam = buildGlobalIndex()

func buildGlobalIndex() map[string]globalField {
	idx := make(map[string]globalField, len(scalarGlobalFields))
	for _, f := range scalarGlobalFields {
		idx[f.Param] = f
	}
	return idx
}

func setGlobalInt(dst *int, raw string) {
	if v, ok := decodeInt(raw); ok {
		*dst = v
	}
}

func setGlobalFloat(dst *float64, raw string) {
	if v, ok := decodeFloat(raw); ok {
		*dst = v
	}
}

func normString(raw string) (string, bool) { return strings.TrimSpace(raw), true }

// globalParamRecognized reports whether a bare gInput_{Param} key belongs to
// the recognized global vocabulary. Anything else is ignored by the parser.
func globalParamRecognized(param string) bool {
	if _, ok := scalarGlobalFieldsByParam[param]; ok {
		return true
	}
	return sessionParamRe.MatchString(param) ||
		groupParamRe.MatchString(param) ||
		engineParamRe.MatchString(param)
}

func sessionFieldFor(index int, kind string) globalField {
	param := "Session" + strconv.Itoa(index) + kind
	find := func(c *model.RobotConfig) *model.SessionWindow {
		for i := range c.Global.Sessions {
			if c.Global.Sessions[i].Index == index {
				return &c.Global.Sessions[i]
			}
		}
		return nil
	}
	switch kind {
	case "Enabled":
		return globalField{
			Param: param, Field: "session_" + strconv.Itoa(index) + "_enabled",
			Get: func(c *model.RobotConfig) (string, bool) {
				s := find(c)
				if s == nil {
					return "", false
				}
				return encodeBool(s.Enabled), true
			},
			Set: func(c *model.RobotConfig, raw string) {
				if s := find(c); s != nil {
					s.Enabled = decodeBool(raw)
				}
			},
			Norm: normBool,
		}
	case "Start":
		return globalField{
			Param: param, Field: "session_" + strconv.Itoa(index) + "_start",
			Get: func(c *model.RobotConfig) (string, bool) {
				s := find(c)
				if s == nil {
					return "", false
				}
				return s.Start, true
			},
			Set: func(c *model.RobotConfig, raw string) {
				if s := find(c); s != nil {
					s.Start = strings.TrimSpace(raw)
				}
			},
			Norm: normString,
		}
	default: // End
		return globalField{
			Param: param, Field: "session_" + strconv.Itoa(index) + "_end",
			Get: func(c *model.RobotConfig) (string, bool) {
				s := find(c)
				if s == nil {
					return "", false
				}
				return s.End, true
			},
			Set: func(c *model.RobotConfig, raw string) {
				if s := find(c); s != nil {
					s.End = strings.TrimSpace(raw)
				}
			},
			Norm: normString,
		}
	}
}

func groupFieldFor(engine string, number int, kind string) globalField {
	param := "Group" + engine + strconv.Itoa(number) + kind
	find := func(c *model.RobotConfig) *model.Group {
		e := c.FindEngine(engine)
		if e == nil {
			return nil
		}
		return e.FindGroup(number)
	}
	gf := globalField{Param: param, Engine: engine, Group: number}
	switch kind {
	case "Enabled":
		gf.Field = "group_enabled"
		gf.Get = func(c *model.RobotConfig) (string, bool) {
			g := find(c)
			if g == nil {
				return "", false
			}
			return encodeBool(g.Enabled), true
		}
		gf.Set = func(c *model.RobotConfig, raw string) {
			if g := find(c); g != nil {
				g.Enabled = decodeBool(raw)
			}
		}
		gf.Norm = normBool
	case "PowerStart":
		gf.Field = "group_power_start"
		gf.Get = func(c *model.RobotConfig) (string, bool) {
			g := find(c)
			if g == nil {
				return "", false
			}
			return encodeFloat(g.PowerStart), true
		}
		gf.Set = func(c *model.RobotConfig, raw string) {
			if g := find(c); g != nil {
				setGlobalFloat(&g.PowerStart, raw)
			}
		}
		gf.Norm = normFloat
	case "Reverse":
		gf.Field = "group_reverse_enabled"
		gf.Get = func(c *model.RobotConfig) (string, bool) {
			g := find(c)
			if g == nil {
				return "", false
			}
			return encodeBool(g.ReverseEnabled), true
		}
		gf.Set = func(c *model.RobotConfig, raw string) {
			if g := find(c); g != nil {
				g.ReverseEnabled = decodeBool(raw)
			}
		}
		gf.Norm = normBool
	case "Hedge":
		gf.Field = "group_hedge_enabled"
		gf.Get = func(c *model.RobotConfig) (string, bool) {
			g := find(c)
			if g == nil {
				return "", false
			}
			return encodeBool(g.HedgeEnabled), true
		}
		gf.Set = func(c *model.RobotConfig, raw string) {
			if g := find(c); g != nil {
				g.HedgeEnabled = decodeBool(raw)
			}
		}
		gf.Norm = normBool
	default: // HedgeRef
		gf.Field = "group_hedge_ref"
		gf.Get = func(c *model.RobotConfig) (string, bool) {
			g := find(c)
			if g == nil {
				return "", false
			}
			return encodeRef(g.HedgeRef), true
		}
		gf.Set = func(c *model.RobotConfig, raw string) {
			if g := find(c); g != nil {
				g.HedgeRef = decodeRef(raw)
			}
		}
		gf.Norm = func(raw string) (string, bool) { return encodeRef(decodeRef(raw)), true }
	}
	return gf
}

func engineFieldFor(engine string) globalField {
	return globalField{
		Param: "Engine" + engine + "MaxOrders", Field: "engine_max_orders", Engine: engine,
		Get: func(c *model.RobotConfig) (string, bool) {
			e := c.FindEngine(engine)
			if e == nil {
				return "", false
			}
			return encodeInt(e.MaxOrders), true
		},
		Set: func(c *model.RobotConfig, raw string) {
			if e := c.FindEngine(engine); e != nil {
				setGlobalInt(&e.MaxOrders, raw)
			}
		},
		Norm: normInt,
	}
}

// resolveGlobalParam maps a recognized global parameter name to its
// dispatch entry.
func resolveGlobalParam(param string) (globalField, bool) {
	if f, ok := scalarGlobalFieldsByParam[param]; ok {
		return f, true
	}
	if m := sessionParamRe.FindStringSubmatch(param); m != nil {
		index, _ := strconv.Atoi(m[1])
		return sessionFieldFor(index, m[2]), true
	}
	if m := groupParamRe.FindStringSubmatch(param); m != nil {
		number, _ := strconv.Atoi(m[2])
		if number < 1 || number > model.MaxGroups {
			return globalField{}, false
		}
		return groupFieldFor(m[1], number, m[3]), true
	}
	if m := engineParamRe.FindStringSubmatch(param); m != nil {
		return engineFieldFor(m[1]), true
	}
	return globalField{}, false
}

// allGlobalFields enumerates every global parameter the given config can
// emit: fixed scalars, its sessions, and group/engine params for the
// engines and groups actually present.
func allGlobalFields(c *model.RobotConfig) []globalField {
	fields := make([]globalField, 0, 64)
	fields = append(fields, scalarGlobalFields...)
	for _, s := range c.Global.Sessions {
		if s.Index < 1 || s.Index > model.SessionCount {
			continue
		}
		fields = append(fields,
			sessionFieldFor(s.Index, "Enabled"),
			sessionFieldFor(s.Index, "Start"),
			sessionFieldFor(s.Index, "End"),
		)
	}
	for _, e := range c.Engines {
		fields = append(fields, engineFieldFor(e.Name))
		for _, g := range e.Groups {
			fields = append(fields,
				groupFieldFor(e.Name, g.Number, "Enabled"),
				groupFieldFor(e.Name, g.Number, "PowerStart"),
				groupFieldFor(e.Name, g.Number, "Reverse"),
				groupFieldFor(e.Name, g.Number, "Hedge"),
				groupFieldFor(e.Name, g.Number, "HedgeRef"),
			)
		}
	}
	return fields
}

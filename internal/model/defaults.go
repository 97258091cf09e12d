package model

// This file is the single source of truth for default configuration values.
// The hydrator deep-merges DefaultConfig() under incoming data; present
// input fields always win over the template.

// DefaultGlobalSettings returns the constant global-settings template,
// including the full 7-entry session array and the news-filter block.
func DefaultGlobalSettings() GlobalSettings {
	return GlobalSettings{
		MagicNumber:     77001,
		MagicNumberBuy:  77101,
		MagicNumberSell: 77201,
		Slippage:        30,
		MaxSpread:       25,
		EnableLogs:      true,
		OrderComment:    "rcs",

		RiskPercent:        2.0,
		MaxDrawdownPercent: 35.0,
		EquityStopLevel:    0,
		MaxDailyLoss:       0,

		Sessions: DefaultSessions(),
		News: NewsFilter{
			Enabled:       false,
			MinutesBefore: 30,
			MinutesAfter:  30,
			ImpactLevel:   ImpactHigh,
		},
	}
}

// DefaultSessions returns the 7-entry session template, indexed 1..7.
// Entries past the first are disabled placeholders.
func DefaultSessions() []SessionWindow {
	sessions := make([]SessionWindow, SessionCount)
	for i := range sessions {
		sessions[i] = SessionWindow{
			Index:   i + 1,
			Enabled: i == 0,
			Start:   "00:00",
			End:     "23:59",
		}
	}
	return sessions
}

// DefaultLogic returns the template for a logic instance of the given name
// and direction. Direction flags are set from the direction argument; the
// caller owns name canonicalization.
func DefaultLogic(name, direction string) Logic {
	l := Logic{
		LogicName: name,
		Enabled:   false,
		AllowBuy:  direction == DirectionBuy,
		AllowSell: direction == DirectionSell,

		TradingMode: ModeCounterTrend,

		InitialLot:     0.01,
		LotMultiplier:  1.5,
		MaxLot:         10,
		MaxOrders:      15,
		Grid:           40,
		GridMultiplier: 1.2,
		GridMax:        400,
		StartLevel:     0,

		TakeProfit:        60,
		TakeProfitPercent: 0,
		StopLoss:          0,
		StopLossPercent:   0,

		BreakEvenEnabled: false,
		BreakEvenStart:   30,
		BreakEvenOffset:  5,

		ProfitTrailEnabled: false,
		ProfitTrailStart:   10,
		ProfitTrailStep:    5,
		ProfitTrailLock:    50,

		TrailMethod: TrailPoints,
		TrailValue:  20,
		TrailStart:  15,

		TriggerEnabled:   false,
		TriggerMethod:    EntryImmediate,
		TriggerPoints:    0,
		TriggerThreshold: 0,

		ReverseScale: 1.0,
		HedgeScale:   1.0,
	}
	l.TrailSteps = []TrailStep{DefaultTrailStep()}
	l.PartialCloses = []PartialClose{DefaultPartialClose()}
	return l
}

// DefaultTrailStep returns the level-1 trail step template.
func DefaultTrailStep() TrailStep {
	return TrailStep{
		Distance: 20,
		Method:   StepPoints,
		Cycles:   1,
		Balance:  0,
		Mode:     StepModeFixed,
	}
}

// DefaultPartialClose returns the level-1 partial-close template.
func DefaultPartialClose() PartialClose {
	return PartialClose{
		Enabled:         false,
		Mode:            PartialBalanced,
		BalanceBias:     BiasNeutral,
		TriggerKind:     TriggerProfit,
		ProfitThreshold: 1.0,
		HoursThreshold:  0,
	}
}

// DefaultGroup returns a group template with one Buy/Sell pair of every
// logic in the engine's vocabulary.
func DefaultGroup(engine string, number int) Group {
	g := Group{
		Number:  number,
		Enabled: number == 1,
	}
	for _, name := range LogicNamesForEngine(engine) {
		g.Logics = append(g.Logics,
			DefaultLogic(name, DirectionBuy),
			DefaultLogic(name, DirectionSell),
		)
	}
	return g
}

// DefaultConfig returns a fully-populated configuration with one group per
// engine. This is the baseline the importer applies files onto.
func DefaultConfig() *RobotConfig {
	cfg := &RobotConfig{Global: DefaultGlobalSettings()}
	for _, engine := range EngineNames {
		cfg.Engines = append(cfg.Engines, Engine{
			Name:      engine,
			MaxOrders: 60,
			Groups:    []Group{DefaultGroup(engine, 1)},
		})
	}
	return cfg
}

// Package validate runs advisory consistency checks over a hydrated
// configuration. Warnings never block a save or an export; they exist so
// the dashboard can point at a control that is probably misconfigured.
package validate

import (
	"fmt"

	"robot-config-studio/internal/model"
)

// Severity of an advisory record.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Warning is one advisory record. Engine/Group/Logic/Field carry enough
// identity for the UI to jump to the offending control.
type Warning struct {
	Severity Severity `json:"severity"`
	Engine   string   `json:"engine,omitempty"`
	Group    int      `json:"group,omitempty"`
	Logic    string   `json:"logic,omitempty"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
}

// Validate inspects the configuration and returns advisory warnings. It is
// read-only and never fails; a nil configuration yields a single error-level
// record rather than a panic.
func Validate(c *model.RobotConfig) []Warning {
	if c == nil {
		return []Warning{{Severity: SeverityError, Message: "no configuration loaded"}}
	}

	var warnings []Warning
	for _, engine := range c.Engines {
		for _, group := range engine.Groups {
			warnings = append(warnings, checkGroup(engine.Name, group)...)
			for _, logic := range group.Logics {
				warnings = append(warnings, checkLogic(engine.Name, group, logic)...)
			}
		}
	}
	return warnings
}

func checkGroup(engine string, group model.Group) []Warning {
	var warnings []Warning

	// PowerStart only means anything past the first group.
	if group.Number == 1 && group.PowerStart != 0 {
		warnings = append(warnings, Warning{
			Severity: SeverityInfo,
			Engine:   engine, Group: group.Number, Field: "group_power_start",
			Message: "power start is set on group 1 where it has no effect",
		})
	}

	if group.HedgeEnabled && group.HedgeRef == "" {
		warnings = append(warnings, Warning{
			Severity: SeverityWarning,
			Engine:   engine, Group: group.Number, Field: "group_hedge_ref",
			Message: "group hedge is enabled but no hedge reference is set",
		})
	}

	// A group with active non-primary logic should have something pointing
	// back at the primary for order-count synchronization.
	if engine == model.EngineA && group.Enabled {
		hasActiveSecondary := false
		primaryReferenced := false
		for _, l := range group.Logics {
			if !l.Enabled {
				continue
			}
			if !model.IsPrimaryLogic(engine, l.LogicName) {
				hasActiveSecondary = true
			}
			if model.CanonicalLogicName(l.OrderCountRef) == model.PrimaryLogicName ||
				model.CanonicalLogicName(l.TriggerRef) == model.PrimaryLogicName {
				primaryReferenced = true
			}
		}
		if hasActiveSecondary && !primaryReferenced {
			warnings = append(warnings, Warning{
				Severity: SeverityInfo,
				Engine:   engine, Group: group.Number,
				Message: "active secondary logics but nothing references the primary for synchronization",
			})
		}
	}
	return warnings
}

func checkLogic(engine string, group model.Group, logic model.Logic) []Warning {
	var warnings []Warning
	name := logic.LogicName

	// Reference fields left unset while their enable flag is on.
	if logic.HedgeEnabled && logic.HedgeRef == "" {
		warnings = append(warnings, Warning{
			Severity: SeverityWarning,
			Engine:   engine, Group: group.Number, Logic: name, Field: "hedge_ref",
			Message: "hedge mode is on but no hedge reference is set",
		})
	}
	if logic.ReverseEnabled && logic.ReverseRef == "" {
		warnings = append(warnings, Warning{
			Severity: SeverityWarning,
			Engine:   engine, Group: group.Number, Logic: name, Field: "reverse_ref",
			Message: "reverse mode is on but no reverse reference is set",
		})
	}

	// A dependent logic with a trigger threshold needs an active trigger
	// source, otherwise it can never fire.
	if logic.Enabled && logic.TriggerEnabled && logic.TriggerThreshold > 0 {
		if logic.TriggerRef == "" {
			warnings = append(warnings, Warning{
				Severity: SeverityWarning,
				Engine:   engine, Group: group.Number, Logic: name, Field: "trigger_ref",
				Message: "trigger threshold is set but no triggering logic is referenced",
			})
		} else if src := findByName(group, logic.TriggerRef); src == nil || !src.Enabled {
			warnings = append(warnings, Warning{
				Severity: SeverityWarning,
				Engine:   engine, Group: group.Number, Logic: name, Field: "trigger_ref",
				Message: fmt.Sprintf("trigger source %q is missing or disabled; this logic can never fire", logic.TriggerRef),
			})
		}
	}

	// Hedging or reversing the primary is allowed but suspicious.
	if model.IsPrimaryLogic(engine, name) && logic.TradingMode != model.ModeCounterTrend {
		warnings = append(warnings, Warning{
			Severity: SeverityWarning,
			Engine:   engine, Group: group.Number, Logic: name, Field: "trading_mode",
			Message: "primary logic is not in Counter Trend mode",
		})
	}

	// Directional override scope: profit-trail locking is only supported on
	// the Buy side of Recovery variants; flag it elsewhere.
	if logic.ProfitTrailEnabled && logic.ProfitTrailLock > 0 && logic.AllowSell &&
		model.CanonicalLogicName(name) != "Recovery" {
		warnings = append(warnings, Warning{
			Severity: SeverityInfo,
			Engine:   engine, Group: group.Number, Logic: name, Field: "profit_trail_lock",
			Message: "profit trail lock on a sell-side non-recovery logic is outside its supported scope",
		})
	}

	return warnings
}

func findByName(group model.Group, name string) *model.Logic {
	canonical := model.CanonicalLogicName(name)
	for i := range group.Logics {
		if model.CanonicalLogicName(group.Logics[i].LogicName) == canonical {
			return &group.Logics[i]
		}
	}
	return nil
}

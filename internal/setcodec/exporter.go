package setcodec

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"robot-config-studio/internal/model"
)

// FormatVersion is written into the export header.
const FormatVersion = "2.1"

// ErrNilConfig is returned when an operation is asked to run without a
// configuration.
var ErrNilConfig = errors.New("setcodec: nil configuration")

var trailStepBases = []string{
	"TrailStepDistance", "TrailStepMethod", "TrailStepCycles", "TrailStepBalance", "TrailStepMode",
}

var partialCloseBases = []string{
	"ClosePartialEnabled", "ClosePartialMode", "ClosePartialBias",
	"ClosePartialTrigger", "ClosePartialProfit", "ClosePartialHours",
}

// Export serializes the configuration to the flat ".set" text using the
// current timestamp in the header.
func Export(c *model.RobotConfig) (string, error) {
	return ExportAt(c, time.Now().UTC())
}

// ExportAt is Export with an explicit header timestamp. The key section is
// sorted lexicographically, so two exports of an identical configuration at
// the same timestamp are byte-identical regardless of in-memory ordering.
func ExportAt(c *model.RobotConfig, at time.Time) (string, error) {
	if c == nil {
		return "", ErrNilConfig
	}

	pairs := collectPairs(c)

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	writeHeader(&b, c, at, len(keys))
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(pairs[k])
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// collectPairs walks the whole model and produces the flat key/value map.
func collectPairs(c *model.RobotConfig) map[string]string {
	pairs := make(map[string]string, 2048)

	for _, f := range allGlobalFields(c) {
		if v, ok := f.Get(c); ok {
			pairs[FormatGlobalKey(f.Param)] = v
		}
	}

	for ei := range c.Engines {
		engine := &c.Engines[ei]
		for gi := range engine.Groups {
			group := &engine.Groups[gi]
			for li := range group.Logics {
				logic := &group.Logics[li]
				suffix, ok := SuffixFor(engine.Name, logic.LogicName)
				if !ok {
					continue
				}
				for _, direction := range activeDirections(logic) {
					emitLogic(pairs, logic, suffix, group.Number, direction)
				}
			}
		}
	}
	return pairs
}

// activeDirections returns the directions a logic exports under. A hydrated
// instance has exactly one; an odd both-true instance exports both.
func activeDirections(l *model.Logic) []string {
	var dirs []string
	if l.AllowBuy {
		dirs = append(dirs, model.DirectionBuy)
	}
	if l.AllowSell {
		dirs = append(dirs, model.DirectionSell)
	}
	return dirs
}

func emitLogic(pairs map[string]string, l *model.Logic, suffix string, group int, direction string) {
	for _, f := range scalarLogicFields {
		pairs[FormatLogicKey(f.Param, suffix, group, direction)] = f.Get(l)
	}

	steps := len(l.TrailSteps)
	if steps > model.MaxTrailSteps {
		steps = model.MaxTrailSteps
	}
	for level := 1; level <= steps; level++ {
		for _, base := range trailStepBases {
			f, _ := trailStepFieldFor(base, level)
			pairs[FormatLogicKey(f.Param, suffix, group, direction)] = f.Get(l)
		}
	}

	closes := len(l.PartialCloses)
	if closes > model.MaxPartialCloses {
		closes = model.MaxPartialCloses
	}
	for level := 1; level <= closes; level++ {
		for _, base := range partialCloseBases {
			f, _ := partialCloseFieldFor(base, level)
			pairs[FormatLogicKey(f.Param, suffix, group, direction)] = f.Get(l)
		}
	}
}

func writeHeader(b *strings.Builder, c *model.RobotConfig, at time.Time, keyCount int) {
	groups, logics, buys, sells := 0, 0, 0, 0
	for _, e := range c.Engines {
		groups += len(e.Groups)
		for _, g := range e.Groups {
			logics += len(g.Logics)
			for _, l := range g.Logics {
				if l.AllowBuy {
					buys++
				}
				if l.AllowSell {
					sells++
				}
			}
		}
	}

	fmt.Fprintf(b, "; Robot configuration set file, format version %s\n", FormatVersion)
	fmt.Fprintf(b, "; Generated: %s\n", at.Format(time.RFC3339))
	fmt.Fprintf(b, "; Keys: %d\n", keyCount)
	fmt.Fprintf(b, "; Engines: %d, groups: %d, logics: %d (buy: %d, sell: %d)\n",
		len(c.Engines), groups, logics, buys, sells)
	b.WriteString("; Lines are key=value; ';' starts a comment; unknown keys are ignored on import.\n")
}

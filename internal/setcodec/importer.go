package setcodec

import (
	"sort"
	"strings"

	"robot-config-studio/internal/model"
)

// BucketKey identifies one directional parameter bucket in a parsed file.
type BucketKey struct {
	Suffix    string
	Group     int
	Direction string
}

// ParsedFile is the key/value content of a flat file, bucketed for
// resolution against a structured model. Unparseable lines are dropped
// during Parse, never reported.
type ParsedFile struct {
	Directional map[BucketKey]map[string]string
	Global      map[string]string
}

// Parse splits flat text into recognized buckets. Comment lines (';'),
// blank lines, lines without '=' and keys matching neither grammar are all
// skipped; hand-edited files routinely contain such lines. Duplicate keys
// keep the last occurrence.
func Parse(text string) *ParsedFile {
	out := &ParsedFile{
		Directional: make(map[BucketKey]map[string]string),
		Global:      make(map[string]string),
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		value := line[eq+1:]

		parsed, ok := ParseKey(key)
		if !ok {
			continue
		}
		switch parsed.Kind {
		case KeyGlobal:
			out.Global[parsed.Param] = value
		case KeyDirectional:
			bucket := BucketKey{Suffix: parsed.Suffix, Group: parsed.Group, Direction: parsed.Direction}
			if out.Directional[bucket] == nil {
				out.Directional[bucket] = make(map[string]string)
			}
			out.Directional[bucket][parsed.Param] = value
		}
	}
	return out
}

// ComputeChanges parses flat text and diffs it against the configuration
// without mutating it. Only real differences are reported: values are
// normalized through the codec before comparison, so a cosmetic respelling
// ("true" vs "1") never shows up as a pending change. Buckets that address
// an engine, group or logic absent from the model are skipped.
func ComputeChanges(c *model.RobotConfig, text string) ([]model.ChangeRecord, error) {
	if c == nil {
		return nil, ErrNilConfig
	}
	parsed := Parse(text)
	records := make([]model.ChangeRecord, 0, 32)

	for _, param := range sortedKeys(parsed.Global) {
		f, ok := resolveGlobalParam(param)
		if !ok {
			continue
		}
		current, ok := f.Get(c)
		if !ok {
			continue
		}
		next, ok := f.Norm(parsed.Global[param])
		if !ok || next == current {
			continue
		}
		records = append(records, model.ChangeRecord{
			Engine:       f.Engine,
			Group:        f.Group,
			Field:        f.Field,
			CurrentValue: current,
			NewValue:     next,
		})
	}

	for _, bucket := range sortedBuckets(parsed.Directional) {
		logic, owner, ok := locateLogic(c, bucket)
		if !ok {
			continue
		}
		params := parsed.Directional[bucket]
		for _, param := range sortedKeys(params) {
			f, ok := resolveLogicParam(param)
			if !ok {
				continue
			}
			current := f.Get(logic)
			next, ok := f.Norm(params[param])
			if !ok || next == current {
				continue
			}
			records = append(records, model.ChangeRecord{
				Engine:       owner.Engine,
				Group:        bucket.Group,
				Logic:        owner.Logic,
				Field:        f.Field,
				CurrentValue: current,
				NewValue:     next,
			})
		}
	}
	return records, nil
}

// Apply parses flat text and applies every resolvable value onto a deep
// clone of the configuration. The input is never mutated; the clone is
// returned. Resolution and skip semantics match ComputeChanges exactly.
func Apply(c *model.RobotConfig, text string) (*model.RobotConfig, error) {
	if c == nil {
		return nil, ErrNilConfig
	}
	out := c.Clone()
	parsed := Parse(text)

	for _, param := range sortedKeys(parsed.Global) {
		if f, ok := resolveGlobalParam(param); ok {
			f.Set(out, parsed.Global[param])
		}
	}

	for _, bucket := range sortedBuckets(parsed.Directional) {
		logic, _, ok := locateLogic(out, bucket)
		if !ok {
			continue
		}
		params := parsed.Directional[bucket]
		for _, param := range sortedKeys(params) {
			if f, ok := resolveLogicParam(param); ok {
				f.Set(logic, params[param])
			}
		}
	}
	return out, nil
}

// ApplyScoped applies only the file values whose change records fall inside
// the target scope. An empty target behaves exactly like Apply. Returns the
// committed records alongside the updated clone.
func ApplyScoped(c *model.RobotConfig, text string, target model.Target) (*model.RobotConfig, []model.ChangeRecord, error) {
	if c == nil {
		return nil, nil, ErrNilConfig
	}
	out := c.Clone()
	parsed := Parse(text)
	committed := make([]model.ChangeRecord, 0, 16)

	for _, param := range sortedKeys(parsed.Global) {
		f, ok := resolveGlobalParam(param)
		if !ok {
			continue
		}
		current, ok := f.Get(out)
		if !ok {
			continue
		}
		next, ok := f.Norm(parsed.Global[param])
		if !ok || next == current {
			continue
		}
		rec := model.ChangeRecord{
			Engine: f.Engine, Group: f.Group, Field: f.Field,
			CurrentValue: current, NewValue: next,
		}
		if !target.Matches(rec) {
			continue
		}
		f.Set(out, parsed.Global[param])
		committed = append(committed, rec)
	}

	for _, bucket := range sortedBuckets(parsed.Directional) {
		logic, owner, ok := locateLogic(out, bucket)
		if !ok {
			continue
		}
		params := parsed.Directional[bucket]
		for _, param := range sortedKeys(params) {
			f, ok := resolveLogicParam(param)
			if !ok {
				continue
			}
			current := f.Get(logic)
			next, ok := f.Norm(params[param])
			if !ok || next == current {
				continue
			}
			rec := model.ChangeRecord{
				Engine: owner.Engine, Group: bucket.Group, Logic: owner.Logic,
				Field: f.Field, CurrentValue: current, NewValue: next,
			}
			if !target.Matches(rec) {
				continue
			}
			f.Set(logic, params[param])
			committed = append(committed, rec)
		}
	}
	return out, committed, nil
}

// locateLogic resolves a directional bucket to its logic instance. Unknown
// suffixes and instances missing from the model return ok=false.
func locateLogic(c *model.RobotConfig, bucket BucketKey) (*model.Logic, suffixOwner, bool) {
	engineName, logicName, ok := LogicForSuffix(bucket.Suffix)
	if !ok {
		return nil, suffixOwner{}, false
	}
	engine := c.FindEngine(engineName)
	if engine == nil {
		return nil, suffixOwner{}, false
	}
	group := engine.FindGroup(bucket.Group)
	if group == nil {
		return nil, suffixOwner{}, false
	}
	logic := group.FindLogic(logicName, bucket.Direction)
	if logic == nil {
		return nil, suffixOwner{}, false
	}
	return logic, suffixOwner{Engine: engineName, Logic: logicName}, true
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedBuckets(m map[BucketKey]map[string]string) []BucketKey {
	buckets := make([]BucketKey, 0, len(m))
	for b := range m {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Suffix != buckets[j].Suffix {
			return buckets[i].Suffix < buckets[j].Suffix
		}
		if buckets[i].Group != buckets[j].Group {
			return buckets[i].Group < buckets[j].Group
		}
		return buckets[i].Direction < buckets[j].Direction
	})
	return buckets
}

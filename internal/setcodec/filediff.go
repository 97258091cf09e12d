package setcodec

import (
	"sort"
	"strings"
)

// KeyMismatch is one key present on both sides with differing values.
type KeyMismatch struct {
	Key   string `json:"key"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

// FileDiff is a raw key-by-key comparison of two flat files, used to verify
// export → import → export round-trips byte-for-byte (export's sort makes
// line order deterministic).
type FileDiff struct {
	MatchingKeys    int           `json:"matching_keys"`
	ValueMismatches []KeyMismatch `json:"value_mismatches,omitempty"`
	OnlyLeft        []string      `json:"only_left,omitempty"`
	OnlyRight       []string      `json:"only_right,omitempty"`
}

// Clean reports whether the two files carry identical key/value content.
func (d FileDiff) Clean() bool {
	return len(d.ValueMismatches) == 0 && len(d.OnlyLeft) == 0 && len(d.OnlyRight) == 0
}

// DiffFlatFiles compares two raw flat-file texts key-by-key. Unlike
// ComputeChanges this works on raw keys without grammar resolution, so it
// also surfaces foreign keys that the importer would skip.
func DiffFlatFiles(left, right string) FileDiff {
	lm := rawPairs(left)
	rm := rawPairs(right)

	var diff FileDiff
	for key, lv := range lm {
		rv, ok := rm[key]
		switch {
		case !ok:
			diff.OnlyLeft = append(diff.OnlyLeft, key)
		case lv != rv:
			diff.ValueMismatches = append(diff.ValueMismatches, KeyMismatch{Key: key, Left: lv, Right: rv})
		default:
			diff.MatchingKeys++
		}
	}
	for key := range rm {
		if _, ok := lm[key]; !ok {
			diff.OnlyRight = append(diff.OnlyRight, key)
		}
	}

	sort.Strings(diff.OnlyLeft)
	sort.Strings(diff.OnlyRight)
	sort.Slice(diff.ValueMismatches, func(i, j int) bool {
		return diff.ValueMismatches[i].Key < diff.ValueMismatches[j].Key
	})
	return diff
}

// rawPairs reads every key=value line, comment and blank lines excluded,
// with no grammar filtering.
func rawPairs(text string) map[string]string {
	pairs := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		pairs[strings.TrimSpace(line[:eq])] = line[eq+1:]
	}
	return pairs
}

// Package builtin contains the reusable record stages of the paket pipeline:
// Normalize, ExcludePrefix and DeDup.
//
// DeDup collapses catalog entries that share a business key (by default the
// product id). The winner among duplicates is chosen by policy:
//
//   - "keep-first"   : keep the earliest occurrence (default)
//   - "keep-last"    : keep the latest occurrence
//   - "most-complete": keep the record with the most non-empty fields;
//     ties break by keep-first
//
// Records missing any key field are never collapsed and keep their position.
package builtin

import (
	"fmt"
	"strings"

	"paketetl/pkg/records"
)

// DeDup policies.
const (
	KeepFirst    = "keep-first"
	KeepLast     = "keep-last"
	MostComplete = "most-complete"
)

// DedupPolicies lists the accepted policy names.
func DedupPolicies() []string { return []string{KeepFirst, KeepLast, MostComplete} }

// ParseDedupPolicy canonicalizes s. Empty selects KeepFirst.
func ParseDedupPolicy(s string) (string, error) {
	switch p := strings.ToLower(strings.TrimSpace(s)); p {
	case "":
		return KeepFirst, nil
	case KeepFirst, KeepLast, MostComplete:
		return p, nil
	}
	return "", fmt.Errorf("unknown dedup policy %q; want %s", s, strings.Join(DedupPolicies(), ", "))
}

// DeDup implements a configurable, in-memory de-duplication policy.
type DeDup struct {
	// Keys are the fields forming the business key. Empty means productId.
	Keys []string

	// Policy selects the winner among duplicates. Unknown values behave
	// like KeepFirst; use ParseDedupPolicy to reject them up front.
	Policy string
}

// Apply returns a new slice containing the winning record per key and every
// unkeyed record. Output order follows the position of each winner in the
// input.
func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) < 2 {
		return in
	}
	keys := d.Keys
	if len(keys) == 0 {
		keys = []string{records.FieldProductID}
	}
	policy := strings.ToLower(strings.TrimSpace(d.Policy))

	keyOf := func(r records.Record) (string, bool) {
		var b strings.Builder
		for i, k := range keys {
			v, ok := r[k]
			if !ok || v == nil {
				return "", false
			}
			if i > 0 {
				b.WriteByte('\x1f')
			}
			b.WriteString(records.String(v))
		}
		return b.String(), true
	}

	// winner[i] is true when in[i] survives.
	winner := make([]bool, len(in))
	slotOf := make(map[string]int, len(in))
	scores := make(map[int]int)

	for i, r := range in {
		key, ok := keyOf(r)
		if !ok {
			winner[i] = true
			continue
		}
		prev, seen := slotOf[key]
		if !seen {
			slotOf[key] = i
			winner[i] = true
			continue
		}
		switch policy {
		case KeepLast:
			winner[prev], winner[i] = false, true
			slotOf[key] = i
		case MostComplete:
			ps, ok := scores[prev]
			if !ok {
				ps = completeness(in[prev])
				scores[prev] = ps
			}
			if s := completeness(r); s > ps {
				winner[prev], winner[i] = false, true
				slotOf[key] = i
				scores[i] = s
			}
		default: // keep-first
		}
	}

	out := make([]records.Record, 0, len(slotOf))
	for i, r := range in {
		if winner[i] {
			out = append(out, r)
		}
	}
	return out
}

func completeness(r records.Record) int {
	n := 0
	for _, v := range r {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		n++
	}
	return n
}

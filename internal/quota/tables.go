// Package quota implements the quota-string cleaning stages of the paket
// pipeline: keyword tables, the segment text cleaner, bonus-label detection,
// the per-record quota processor, the regex simplifier and the memoizing
// caches that sit in front of them.
//
// Everything in this package is safe for concurrent use once constructed.
// Tables are immutable; cleaners and detectors hold no mutable state except
// the optional caches, which synchronize internally.
package quota

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DefaultRemoveKeywords are the vendor routing tags stripped from every quota
// segment.
var DefaultRemoveKeywords = []string{
	"DATA NATIONAL/",
	"LOCAL DATA/",
	"DATA DPI/",
	"SMS ONNET/",
	"VOICE ONNET/",
}

// DefaultReplaceKeywords are the bonus category markers, in priority order.
var DefaultReplaceKeywords = []string{"VIDEO", "VAS", "FITA", "COUPON"}

// Tables holds the keyword configuration shared by every cleaner of a
// pipeline. Build it once with NewTables and share the pointer.
type Tables struct {
	remove  []string
	replace []string

	removeRe *regexp.Regexp // nil when there is nothing to remove
	replUp   []string       // upper-cased replace keywords, same order as replace
	labels   []string       // "Bonus <kw>" per replace keyword
}

// NewTables compiles the keyword lists. Blank entries are ignored.
//
// Remove keywords are matched as one case-insensitive alternation, longest
// keyword first, so overlapping keywords resolve to the longest match.
// Replace keywords keep their given order; the first one contained in a
// segment wins.
func NewTables(remove, replace []string) (*Tables, error) {
	t := &Tables{}

	for _, kw := range remove {
		if strings.TrimSpace(kw) == "" {
			continue
		}
		t.remove = append(t.remove, kw)
	}
	for _, kw := range replace {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		t.replace = append(t.replace, kw)
		t.replUp = append(t.replUp, strings.ToUpper(kw))
		t.labels = append(t.labels, "Bonus "+strings.ToLower(kw))
	}

	if len(t.remove) > 0 {
		alts := make([]string, len(t.remove))
		for i, kw := range t.remove {
			alts[i] = regexp.QuoteMeta(kw)
		}
		sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
		re, err := regexp.Compile("(?i)(?:" + strings.Join(alts, "|") + ")")
		if err != nil {
			return nil, fmt.Errorf("quota: compile remove keywords: %w", err)
		}
		t.removeRe = re
	}
	return t, nil
}

// DefaultTables returns tables built from DefaultRemoveKeywords and
// DefaultReplaceKeywords.
func DefaultTables() *Tables {
	t, err := NewTables(DefaultRemoveKeywords, DefaultReplaceKeywords)
	if err != nil {
		// Quoted literals always compile.
		panic(err)
	}
	return t
}

// RemoveKeywords returns a copy of the configured remove keywords.
func (t *Tables) RemoveKeywords() []string { return append([]string(nil), t.remove...) }

// ReplaceKeywords returns a copy of the configured replace keywords in
// priority order.
func (t *Tables) ReplaceKeywords() []string { return append([]string(nil), t.replace...) }

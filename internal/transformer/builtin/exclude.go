package builtin

import (
	"strings"

	"paketetl/pkg/records"
)

// ExcludePrefix drops records whose product name starts with one of the
// configured prefixes. Matching is case-insensitive on the folded name.
// Survivors keep their relative order.
type ExcludePrefix struct {
	Field    string // defaults to records.FieldProductName
	prefixes []string
}

// NewExcludePrefix builds the filter. Each entry may itself be a
// comma-separated list ("FACEBOOK,TIKTOK"); blanks are ignored.
func NewExcludePrefix(entries []string) ExcludePrefix {
	var ps []string
	for _, e := range entries {
		for _, p := range strings.Split(e, ",") {
			p = strings.ToUpper(strings.TrimSpace(p))
			if p != "" {
				ps = append(ps, p)
			}
		}
	}
	return ExcludePrefix{prefixes: ps}
}

// Prefixes returns the upper-cased prefixes.
func (x ExcludePrefix) Prefixes() []string { return append([]string(nil), x.prefixes...) }

// Apply returns a new slice holding the records that survive; the input slice
// is left untouched.
func (x ExcludePrefix) Apply(in []records.Record) []records.Record {
	if len(x.prefixes) == 0 || len(in) == 0 {
		return in
	}
	field := x.Field
	if field == "" {
		field = records.FieldProductName
	}
	out := make([]records.Record, 0, len(in))
	for _, r := range in {
		if x.Excluded(records.String(r[field])) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Excluded reports whether name starts with any configured prefix. The name
// is folded first, so upstream padding (",FACEBOOK") cannot hide a prefix
// that the record cleaner would later expose.
func (x ExcludePrefix) Excluded(name string) bool {
	if len(x.prefixes) == 0 {
		return false
	}
	up := Fold(name)
	for _, p := range x.prefixes {
		if strings.HasPrefix(up, p) {
			return true
		}
	}
	return false
}

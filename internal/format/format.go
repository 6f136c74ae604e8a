// Package format serializes cleaned paket records into the single-line
// catalog text sent over SMS/USSD, and wraps it in the response envelope.
package format

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"paketetl/pkg/records"
)

// Formatter renders record collections with one Profile.
type Formatter struct {
	profile Profile
}

// New returns a Formatter for p.
func New(p Profile) *Formatter { return &Formatter{profile: p} }

// Profile returns the profile in use.
func (f *Formatter) Profile() Profile { return f.profile }

// Format renders recs back to back with no separator; the profile's lead
// sigil delimits records. With sortByName the records are stably sorted by
// case-folded productName first; recs itself is never reordered.
func (f *Formatter) Format(recs []records.Record, sortByName bool) string {
	if len(recs) == 0 {
		return ""
	}
	if sortByName {
		recs = SortByName(recs)
	}

	var b strings.Builder
	b.Grow(len(recs) * 48)
	for _, r := range recs {
		f.write(&b, r)
	}
	out := b.String()
	if f.profile.CollapseDashes {
		out = collapseDashes(out)
	}
	return out
}

func (f *Formatter) write(b *strings.Builder, r records.Record) {
	p := f.profile

	// Only an absent or null id gets the placeholder; "" stays empty.
	id := p.MissingID
	if v, ok := r[records.FieldProductID]; ok && v != nil {
		id = records.TrimEdges(records.String(v))
	}
	q := field(r, records.FieldQuota)
	if q == "" {
		q = p.EmptyQuota
	}

	b.WriteString(p.Lead)
	b.WriteString(id)
	b.WriteString(p.NameSep)
	b.WriteString(field(r, records.FieldProductName))
	b.WriteByte('(')
	b.WriteString(q)
	b.WriteByte(')')
	b.WriteString(p.TotalSep)
	b.WriteString(field(r, records.FieldTotal))
	b.WriteString(p.Trail)
}

func field(r records.Record, k string) string {
	v, ok := r[k]
	if !ok {
		return ""
	}
	return records.TrimEdges(records.String(v))
}

// SortByName returns a copy of recs stably sorted by case-folded productName.
func SortByName(recs []records.Record) []records.Record {
	fold := cases.Fold()
	type keyed struct {
		key string
		rec records.Record
	}
	ks := make([]keyed, len(recs))
	for i, r := range recs {
		ks[i] = keyed{key: fold.String(field(r, records.FieldProductName)), rec: r}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })

	out := make([]records.Record, len(ks))
	for i, k := range ks {
		out[i] = k.rec
	}
	return out
}

func collapseDashes(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}

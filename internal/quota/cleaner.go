package quota

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Cleaner turns a raw quota segment into its canonical upper-case form.
type Cleaner interface {
	Clean(raw string) string
}

// Detector maps a cleaned segment to a bonus label.
type Detector interface {
	Detect(seg string) (label string, ok bool)
}

// edgeCutset is what upstream pads fields with.
const edgeCutset = " ,\t"

// TextCleaner is the uncached segment cleaner.
type TextCleaner struct {
	tables *Tables
}

// NewTextCleaner returns a cleaner bound to t.
func NewTextCleaner(t *Tables) *TextCleaner {
	return &TextCleaner{tables: t}
}

// Clean upper-cases raw, strips every remove keyword and collapses
// whitespace. Removal repeats until nothing matches, so the result never
// contains a remove keyword even when a removal glues two halves of another
// keyword together. Clean(Clean(x)) == Clean(x).
func (c *TextCleaner) Clean(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.Trim(strings.ToUpper(raw), edgeCutset)
	s = squeeze(s)

	if re := c.tables.removeRe; re != nil {
		for {
			next := squeeze(re.ReplaceAllLiteralString(s, ""))
			if next == s {
				break
			}
			s = next
		}
	}
	return strings.Trim(s, edgeCutset)
}

// BonusDetector reports the bonus label for segments that contain one of the
// replace keywords.
type BonusDetector struct {
	tables *Tables
}

// NewBonusDetector returns a detector bound to t.
func NewBonusDetector(t *Tables) *BonusDetector {
	return &BonusDetector{tables: t}
}

// Detect scans replace keywords in table order; the first substring match
// wins and yields "Bonus <keyword in lower case>".
func (d *BonusDetector) Detect(seg string) (string, bool) {
	if seg == "" {
		return "", false
	}
	up := strings.ToUpper(seg)
	for i, kw := range d.tables.replUp {
		if strings.Contains(up, kw) {
			return d.tables.labels[i], true
		}
	}
	return "", false
}

// squeeze collapses every whitespace run into one ASCII space and trims the
// ends.
func squeeze(s string) string {
	if !needsSqueeze(s) {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}

// needsSqueeze is the fast path for already-clean strings.
func needsSqueeze(s string) bool {
	prevSpace := true // leading whitespace counts
	for _, r := range s {
		isSpace := unicode.IsSpace(r)
		if isSpace && (prevSpace || r != ' ') {
			return true
		}
		prevSpace = isSpace
	}
	return prevSpace && s != ""
}

// titleWords upper-cases the first letter of every whitespace-separated word
// and leaves the rest of the word untouched ("5GB" stays "5GB").
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if r == utf8.RuneError || unicode.IsUpper(r) || !unicode.IsLetter(r) {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

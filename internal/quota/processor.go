package quota

import (
	"fmt"
	"strings"
)

// SegmentMode selects which characters split a quota string into segments.
type SegmentMode string

const (
	// SegmentComma splits on ',' only.
	SegmentComma SegmentMode = "comma"
	// SegmentCommaPlus splits on ',' and '+'.
	SegmentCommaPlus SegmentMode = "comma_plus"
)

// ParseSegmentMode maps a config string onto a SegmentMode. The empty string
// selects SegmentComma.
func ParseSegmentMode(s string) (SegmentMode, error) {
	switch SegmentMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SegmentComma:
		return SegmentComma, nil
	case SegmentCommaPlus:
		return SegmentCommaPlus, nil
	default:
		return "", fmt.Errorf("quota: unknown segment mode %q (want comma or comma_plus)", s)
	}
}

// Processor rewrites the quota field of one record.
type Processor struct {
	cleaner          Cleaner
	detector         Detector
	mode             SegmentMode
	stripBeforeSlash bool
}

// ProcessorOption customizes a Processor.
type ProcessorOption func(*Processor)

// WithSegmentMode sets the segment delimiters.
func WithSegmentMode(m SegmentMode) ProcessorOption {
	return func(p *Processor) { p.mode = m }
}

// WithStripBeforeSlash drops everything up to and including the first '/'
// of each segment before cleaning ("LOCAL DATA/5GB" -> "5GB").
func WithStripBeforeSlash(on bool) ProcessorOption {
	return func(p *Processor) { p.stripBeforeSlash = on }
}

// NewProcessor builds a Processor from a segment cleaner and a bonus
// detector. Either may be a cached decorator.
func NewProcessor(c Cleaner, d Detector, opts ...ProcessorOption) *Processor {
	p := &Processor{cleaner: c, detector: d, mode: SegmentComma}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Process splits raw into segments, cleans each one, collapses bonus
// segments into their label and joins the distinct results with '+'.
//
//	"DATA NATIONAL/VIDEO, LOCAL DATA/5GB" -> "Bonus video+5GB"
//	"SMS ONNET/100, SMS ONNET/100"        -> "100"
func (p *Processor) Process(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	var (
		parts []string
		seen  map[string]struct{}
	)
	// A segment may itself carry '+' (comma mode); dedup is on the final
	// '+'-separated parts.
	emit := func(s string) {
		for _, part := range strings.Split(s, "+") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if seen == nil {
				seen = make(map[string]struct{}, 4)
			}
			if _, dup := seen[part]; dup {
				continue
			}
			seen[part] = struct{}{}
			parts = append(parts, part)
		}
	}

	for _, seg := range p.split(raw) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if p.stripBeforeSlash {
			if i := strings.IndexByte(seg, '/'); i >= 0 {
				seg = strings.TrimSpace(seg[i+1:])
			}
		}
		cleaned := p.cleaner.Clean(seg)
		if cleaned == "" {
			continue
		}
		if label, ok := p.detector.Detect(cleaned); ok {
			emit(label)
			continue
		}
		// A no-op after TextCleaner, which already upper-cases; other
		// Cleaner implementations get word-initial capitals.
		emit(titleWords(cleaned))
	}

	if len(parts) == 0 {
		return ""
	}
	return squeeze(strings.Join(parts, "+"))
}

// DedupParts drops repeated '+'-separated parts of an already joined quota,
// keeping the first occurrence. Used after rewrites that can make two parts
// equal ("1 GB+1GB" simplifies to "1GB+1GB").
func DedupParts(q string) string {
	if strings.IndexByte(q, '+') < 0 {
		return q
	}
	parts := strings.Split(q, "+")
	out := parts[:0]
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return strings.Join(out, "+")
}

func (p *Processor) split(raw string) []string {
	if p.mode == SegmentCommaPlus {
		return strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '+' })
	}
	return strings.Split(raw, ",")
}

package engine

import (
	"paketetl/internal/quota"
	"paketetl/internal/transformer/builtin"
	"paketetl/pkg/records"
)

// Cleaner turns one record into its cleaned copy. Implementations must not
// mutate their input and must be safe for concurrent use.
type Cleaner interface {
	Clean(rec records.Record) records.Record
}

// RecordCleaner is the per-record orchestration: quota processing plus
// optional simplification, and normalization of the other string fields.
type RecordCleaner struct {
	processor  *quota.Processor
	simplifier *quota.Simplifier // nil disables simplification
	fields     FieldMode
}

// NewRecordCleaner wires the stages. simplifier may be nil.
func NewRecordCleaner(p *quota.Processor, s *quota.Simplifier, mode FieldMode) *RecordCleaner {
	if mode == "" {
		mode = FieldsNormalize
	}
	return &RecordCleaner{processor: p, simplifier: s, fields: mode}
}

// Clean returns a new record; rec is never modified. A nil quota stays nil,
// any other quota value is coerced to a string first. Non-string fields pass
// through.
func (c *RecordCleaner) Clean(rec records.Record) records.Record {
	out := make(records.Record, len(rec))
	for k, v := range rec {
		if k == records.FieldQuota && v != nil {
			out[k] = c.Quota(records.String(v))
			continue
		}
		s, ok := v.(string)
		if !ok || c.fields == FieldsPassthrough {
			out[k] = v
			continue
		}
		out[k] = builtin.Fold(s)
	}
	return out
}

// Quota runs the quota processor and, when configured, the simplifier.
func (c *RecordCleaner) Quota(raw string) string {
	q := c.processor.Process(raw)
	if c.simplifier != nil && q != "" {
		q = quota.DedupParts(c.simplifier.Simplify(q))
	}
	return q
}

// Package transformer defines the slice-level record stage used by the paket
// pipeline and a Chain to compose stages in order.
package transformer

import "paketetl/pkg/records"

// Transformer is one whole-collection stage: filter, dedup, normalize.
type Transformer interface{ Apply([]records.Record) []records.Record }

// Func adapts a plain function to Transformer.
type Func func([]records.Record) []records.Record

func (f Func) Apply(in []records.Record) []records.Record { return f(in) }

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

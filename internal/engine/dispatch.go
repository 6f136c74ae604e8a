package engine

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"paketetl/pkg/records"
)

// Dispatch defaults.
const (
	DefaultWorkers    = 6
	DefaultBatchSize  = 100
	DefaultEvictEvery = 10

	// ctxCheckEvery is how many records are cleaned between context checks.
	ctxCheckEvery = 64
)

// DispatchOptions configures Dispatch. Zero values take the defaults above.
type DispatchOptions struct {
	Strategy Strategy
	Workers  int

	BatchSize int
	// BatchInner is how each chunk is cleaned: Sequential or Concurrent.
	BatchInner Strategy
	// EvictEvery calls Evict after every N chunks; 0 disables eviction.
	EvictEvery int
	Evict      func()

	// OnBatch, when set, is called after each chunk with its 1-based number.
	OnBatch func(n int)
}

// Dispatch applies c to every record of in and returns the cleaned records
// in input order. Every strategy yields the same output; they differ only in
// scheduling. On cancellation the context error is returned and no partial
// result is exposed.
func Dispatch(ctx context.Context, c Cleaner, in []records.Record, o DispatchOptions) ([]records.Record, error) {
	if len(in) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []records.Record{}, nil
	}
	out := make([]records.Record, len(in))

	var err error
	switch o.Strategy {
	case Concurrent:
		err = cleanConcurrent(ctx, c, in, out, workers(o.Workers))
	case Batched:
		err = cleanBatched(ctx, c, in, out, o)
	default:
		err = cleanSequential(ctx, c, in, out)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func workers(n int) int {
	if n <= 0 {
		return DefaultWorkers
	}
	return n
}

func cleanSequential(ctx context.Context, c Cleaner, in, out []records.Record) error {
	for i, r := range in {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		out[i] = c.Clean(r)
	}
	return ctx.Err()
}

// cleanConcurrent runs n workers that claim indexes from a shared counter
// and write each result to its own slot, so order needs no reassembly.
func cleanConcurrent(ctx context.Context, c Cleaner, in, out []records.Record, n int) error {
	if n > len(in) {
		n = len(in)
	}
	if n <= 1 {
		return cleanSequential(ctx, c, in, out)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n)

	var next atomic.Int64
	for w := 0; w < n; w++ {
		g.Go(func() error {
			for {
				i := int(next.Add(1) - 1)
				if i >= len(in) {
					return nil
				}
				if i%ctxCheckEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				out[i] = c.Clean(in[i])
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func cleanBatched(ctx context.Context, c Cleaner, in, out []records.Record, o DispatchOptions) error {
	size := o.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	batch := 0
	for start := 0; start < len(in); start += size {
		end := min(start+size, len(in))

		var err error
		if o.BatchInner == Concurrent {
			err = cleanConcurrent(ctx, c, in[start:end], out[start:end], workers(o.Workers))
		} else {
			err = cleanSequential(ctx, c, in[start:end], out[start:end])
		}
		if err != nil {
			return err
		}

		batch++
		if o.OnBatch != nil {
			o.OnBatch(batch)
		}
		if o.EvictEvery > 0 && o.Evict != nil && batch%o.EvictEvery == 0 {
			o.Evict()
		}
	}
	return nil
}

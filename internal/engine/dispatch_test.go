package engine

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"

	"paketetl/pkg/records"
)

// tagCleaner copies the record and stamps it; it counts calls.
type tagCleaner struct{ calls atomic.Int64 }

func (c *tagCleaner) Clean(r records.Record) records.Record {
	c.calls.Add(1)
	out := r.Clone()
	out["seen"] = true
	return out
}

func ids(n int) []records.Record {
	out := make([]records.Record, n)
	for i := range out {
		out[i] = records.Record{"i": i}
	}
	return out
}

func TestDispatch_AllStrategiesVisitEachRecordOnce(t *testing.T) {
	t.Parallel()
	in := ids(1001)
	for _, o := range []DispatchOptions{
		{Strategy: Sequential},
		{Strategy: Concurrent, Workers: 7},
		{Strategy: Batched, BatchSize: 10},
		{Strategy: Batched, BatchSize: 10, BatchInner: Concurrent, Workers: 3},
	} {
		c := &tagCleaner{}
		out, err := Dispatch(context.Background(), c, in, o)
		if err != nil {
			t.Fatalf("%+v: %v", o, err)
		}
		if got := c.calls.Load(); got != int64(len(in)) {
			t.Fatalf("%+v: calls = %d; want %d", o, got, len(in))
		}
		for i, r := range out {
			if r["i"] != i || r["seen"] != true {
				t.Fatalf("%+v: out[%d] = %#v", o, i, r)
			}
		}
	}
}

/*
TestDispatch_BatchedEviction verifies Evict runs once per EvictEvery chunks
and OnBatch sees every chunk.
*/
func TestDispatch_BatchedEviction(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n, size, every int
		wantBatches    int
		wantEvicts     int
	}{
		{n: 1000, size: 100, every: 10, wantBatches: 10, wantEvicts: 1},
		{n: 1001, size: 100, every: 10, wantBatches: 11, wantEvicts: 1},
		{n: 95, size: 10, every: 3, wantBatches: 10, wantEvicts: 3},
		{n: 50, size: 10, every: 0, wantBatches: 5, wantEvicts: 0},
	}
	for _, tt := range tests {
		var evicts, batches int
		_, err := Dispatch(context.Background(), &tagCleaner{}, ids(tt.n), DispatchOptions{
			Strategy:   Batched,
			BatchSize:  tt.size,
			EvictEvery: tt.every,
			Evict:      func() { evicts++ },
			OnBatch:    func(n int) { batches = n },
		})
		if err != nil {
			t.Fatalf("Dispatch: %v", err)
		}
		if batches != tt.wantBatches || evicts != tt.wantEvicts {
			t.Fatalf("%+v: batches=%d evicts=%d", tt, batches, evicts)
		}
	}
}

func TestDispatch_DefaultsAndEmpty(t *testing.T) {
	t.Parallel()
	out, err := Dispatch(context.Background(), &tagCleaner{}, nil, DispatchOptions{Strategy: Concurrent})
	if err != nil || out == nil || len(out) != 0 {
		t.Fatalf("empty: out=%#v err=%v", out, err)
	}
	if workers(0) != DefaultWorkers || workers(3) != 3 {
		t.Fatalf("workers defaults wrong")
	}
}

func BenchmarkDispatch(b *testing.B) {
	in := catalog(5000)
	for _, s := range Strategies() {
		for _, w := range []int{1, 6} {
			b.Run(string(s)+"_w"+strconv.Itoa(w), func(b *testing.B) {
				e := newEngine(b, func(o *Options) { o.Strategy = string(s); o.Workers = w })
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := e.Run(context.Background(), in); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

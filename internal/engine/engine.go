// Package engine runs the paket pipeline: normalization, prefix filter,
// optional dedup, per-record cleaning through a pluggable dispatch strategy, and
// serialization.
//
// An Engine is built once per module configuration and is safe for
// concurrent Run calls; the keyword tables are immutable and the caches
// synchronize internally.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"paketetl/internal/format"
	"paketetl/internal/metrics"
	"paketetl/internal/quota"
	"paketetl/internal/transformer"
	"paketetl/internal/transformer/builtin"
	"paketetl/pkg/records"
)

// Options is the full engine configuration. Use DefaultOptions and override.
type Options struct {
	// Name labels logs and metrics (usually the module name).
	Name string

	RemoveKeywords   []string
	ReplaceKeywords  []string
	ExcludedPrefixes []string

	// Simplify enables the simplifier with Rules (DefaultRules when empty).
	Simplify bool
	Rules    []quota.Rule

	Strategy   string
	Workers    int
	BatchSize  int
	BatchInner string
	EvictEvery int

	// CacheSize bounds each memo cache. 0 selects quota.DefaultCacheSize,
	// negative disables caching.
	CacheSize int

	FieldMode        string
	SegmentMode      string
	StripBeforeSlash bool

	// Dedup collapses records sharing a productId; DedupPolicy picks the
	// survivor (builtin.KeepFirst when empty).
	Dedup       bool
	DedupPolicy string

	Profile    string
	SortByName bool
	EmptyQuota string

	Logger *zerolog.Logger
}

// DefaultOptions returns the stock pipeline configuration.
func DefaultOptions() Options {
	return Options{
		Name:            "paket",
		RemoveKeywords:  quota.DefaultRemoveKeywords,
		ReplaceKeywords: quota.DefaultReplaceKeywords,
		Strategy:        string(Sequential),
		Workers:         DefaultWorkers,
		BatchSize:       DefaultBatchSize,
		BatchInner:      string(Sequential),
		EvictEvery:      DefaultEvictEvery,
		SortByName:      true,
	}
}

// Stats describes one Run.
type Stats struct {
	In       int           `json:"in"`
	Filtered int           `json:"filtered"`
	Deduped  int           `json:"deduped"`
	Out      int           `json:"out"`
	Batches  int           `json:"batches"`
	Duration time.Duration `json:"duration"`

	TextCache  quota.CacheStats `json:"text_cache"`
	BonusCache quota.CacheStats `json:"bonus_cache"`
}

// Result is what Run hands to the caller.
type Result struct {
	Serialized string           `json:"serialized"`
	Records    []records.Record `json:"records"`
	Stats      Stats            `json:"stats"`
}

// Engine is a configured pipeline.
type Engine struct {
	name     string
	dispatch DispatchOptions

	normalize transformer.Transformer // nil in passthrough field mode
	filter    builtin.ExcludePrefix
	dedup     *builtin.DeDup
	cleaner   *RecordCleaner
	formatter *format.Formatter
	sortBy    bool

	textCache  *quota.LRU
	bonusCache *quota.LRU

	log zerolog.Logger
}

// New validates o and builds an Engine. Configuration errors (unknown
// strategy, profile or mode, bad rule regex, negative worker or batch
// counts) are reported here, never during Run.
func New(o Options) (*Engine, error) {
	strategy, err := ParseStrategy(o.Strategy)
	if err != nil {
		return nil, err
	}
	inner, err := ParseStrategy(o.BatchInner)
	if err != nil {
		return nil, fmt.Errorf("engine: batch_inner: %w", err)
	}
	if inner == Batched {
		return nil, fmt.Errorf("engine: batch_inner must be sequential or concurrent")
	}
	if o.Workers < 0 {
		return nil, fmt.Errorf("engine: workers must be >= 1, got %d", o.Workers)
	}
	if o.BatchSize < 0 {
		return nil, fmt.Errorf("engine: batch_size must be >= 1, got %d", o.BatchSize)
	}
	if o.EvictEvery < 0 {
		return nil, fmt.Errorf("engine: evict_every must be >= 0, got %d", o.EvictEvery)
	}
	fields, err := ParseFieldMode(o.FieldMode)
	if err != nil {
		return nil, err
	}
	segMode, err := quota.ParseSegmentMode(o.SegmentMode)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	policy, err := builtin.ParseDedupPolicy(o.DedupPolicy)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	profile, err := format.ProfileByName(o.Profile)
	if err != nil {
		return nil, err
	}
	if o.EmptyQuota != "" {
		profile.EmptyQuota = o.EmptyQuota
	}

	tables, err := quota.NewTables(o.RemoveKeywords, o.ReplaceKeywords)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	var simplifier *quota.Simplifier
	if o.Simplify {
		rules := o.Rules
		if len(rules) == 0 {
			rules = quota.DefaultRules()
		}
		if simplifier, err = quota.NewSimplifier(rules); err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}

	e := &Engine{
		name:      o.Name,
		filter:    builtin.NewExcludePrefix(o.ExcludedPrefixes),
		formatter: format.New(profile),
		sortBy:    o.SortByName,
		log:       zerolog.Nop(),
	}
	if o.Logger != nil {
		e.log = o.Logger.With().Str("module", o.Name).Logger()
	}

	var (
		textCleaner quota.Cleaner  = quota.NewTextCleaner(tables)
		detector    quota.Detector = quota.NewBonusDetector(tables)
	)
	if o.CacheSize >= 0 {
		e.textCache = quota.NewLRU(o.CacheSize)
		e.bonusCache = quota.NewLRU(o.CacheSize)
		textCleaner = quota.NewCachedCleaner(textCleaner, e.textCache)
		detector = quota.NewCachedDetector(detector, e.bonusCache)
	}
	processor := quota.NewProcessor(textCleaner, detector,
		quota.WithSegmentMode(segMode),
		quota.WithStripBeforeSlash(o.StripBeforeSlash),
	)
	e.cleaner = NewRecordCleaner(processor, simplifier, fields)

	if fields == FieldsNormalize {
		e.normalize = builtin.Normalize{Skip: []string{records.FieldQuota}}
	}
	if o.Dedup {
		e.dedup = &builtin.DeDup{Keys: []string{records.FieldProductID}, Policy: policy}
	}

	e.dispatch = DispatchOptions{
		Strategy:   strategy,
		Workers:    o.Workers,
		BatchSize:  o.BatchSize,
		BatchInner: inner,
		EvictEvery: o.EvictEvery,
		Evict:      e.Purge,
	}
	return e, nil
}

// Name returns the engine label.
func (e *Engine) Name() string { return e.name }

// Strategy returns the configured dispatch strategy.
func (e *Engine) Strategy() Strategy { return e.dispatch.Strategy }

// Cleaner exposes the per-record cleaner.
func (e *Engine) Cleaner() *RecordCleaner { return e.cleaner }

// Clean filters and cleans recs without formatting them.
func (e *Engine) Clean(ctx context.Context, recs []records.Record) ([]records.Record, error) {
	res, err := e.run(ctx, recs, false)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// Run executes the whole pipeline and returns the serialized catalog line
// together with the cleaned records.
func (e *Engine) Run(ctx context.Context, recs []records.Record) (Result, error) {
	return e.run(ctx, recs, true)
}

func (e *Engine) run(ctx context.Context, recs []records.Record, serialize bool) (Result, error) {
	start := time.Now()
	stats := Stats{In: len(recs)}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	textBefore, bonusBefore := e.cacheStats()

	kept := e.pre(&stats).Apply(recs)

	opts := e.dispatch
	opts.OnBatch = func(n int) { stats.Batches = n }
	cleaned, err := Dispatch(ctx, e.cleaner, kept, opts)
	metrics.RecordStep(e.name, "clean", err, time.Since(start))
	if err != nil {
		e.log.Warn().Err(err).Str("strategy", string(opts.Strategy)).Int("records_in", stats.In).Msg("pipeline aborted")
		return Result{}, err
	}
	stats.Out = len(cleaned)

	res := Result{Records: cleaned}
	if serialize {
		fstart := time.Now()
		res.Serialized = e.formatter.Format(cleaned, e.sortBy)
		metrics.RecordStep(e.name, "format", nil, time.Since(fstart))
	}

	stats.Duration = time.Since(start)
	textAfter, bonusAfter := e.cacheStats()
	stats.TextCache = cacheDelta(textBefore, textAfter)
	stats.BonusCache = cacheDelta(bonusBefore, bonusAfter)
	res.Stats = stats

	e.observe(stats)
	e.log.Debug().
		Str("strategy", string(opts.Strategy)).
		Int("records_in", stats.In).
		Int("filtered", stats.Filtered).
		Int("deduped", stats.Deduped).
		Int("records_out", stats.Out).
		Dur("duration", stats.Duration).
		Msg("pipeline done")
	return res, nil
}

// pre assembles the collection stages ahead of dispatch: Normalize, then
// ExcludePrefix, then DeDup. Drop counts land in stats.
func (e *Engine) pre(stats *Stats) transformer.Chain {
	chain := make(transformer.Chain, 0, 3)
	if e.normalize != nil {
		chain = append(chain, e.normalize)
	}
	chain = append(chain, counted(e.filter, &stats.Filtered))
	if e.dedup != nil {
		chain = append(chain, counted(e.dedup, &stats.Deduped))
	}
	return chain
}

func counted(t transformer.Transformer, dropped *int) transformer.Func {
	return func(in []records.Record) []records.Record {
		out := t.Apply(in)
		*dropped += len(in) - len(out)
		return out
	}
}

func (e *Engine) observe(s Stats) {
	metrics.RecordRecords(e.name, "in", int64(s.In))
	metrics.RecordRecords(e.name, "filtered", int64(s.Filtered))
	metrics.RecordRecords(e.name, "deduped", int64(s.Deduped))
	metrics.RecordRecords(e.name, "out", int64(s.Out))
	metrics.RecordBatches(e.name, int64(s.Batches))
	if e.textCache != nil {
		metrics.RecordCache(e.name, "text", s.TextCache.Hits, s.TextCache.Misses)
		metrics.RecordCache(e.name, "bonus", s.BonusCache.Hits, s.BonusCache.Misses)
	}
}

func (e *Engine) cacheStats() (text, bonus quota.CacheStats) {
	if e.textCache == nil {
		return
	}
	return e.textCache.Stats(), e.bonusCache.Stats()
}

// cacheDelta reports the hits and misses of one run. Concurrent runs on the
// same engine share the caches, so their deltas may overlap.
func cacheDelta(before, after quota.CacheStats) quota.CacheStats {
	after.Hits -= min(before.Hits, after.Hits)
	after.Misses -= min(before.Misses, after.Misses)
	return after
}

// Purge empties both memo caches.
func (e *Engine) Purge() {
	if e.textCache != nil {
		e.textCache.Purge()
		e.bonusCache.Purge()
	}
}

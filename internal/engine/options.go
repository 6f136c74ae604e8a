package engine

import (
	"github.com/rs/zerolog"

	"paketetl/internal/config"
)

// OptionsFromModule maps a settings module plus the global response switches
// onto engine Options. Empty settings keep the defaults.
func OptionsFromModule(m config.Module, resp config.Response, log *zerolog.Logger) Options {
	o := DefaultOptions()
	o.Name = m.Name
	o.Logger = log

	if len(m.RemoveKeywords) > 0 {
		o.RemoveKeywords = m.RemoveKeywords
	}
	if len(m.ReplaceKeywords) > 0 {
		o.ReplaceKeywords = m.ReplaceKeywords
	}
	if resp.ExcludeProduct {
		o.ExcludedPrefixes = m.ExcludedProductPrefixes
	}
	o.Simplify = resp.ReplaceWithRegex
	o.Rules = m.Rules()

	rt := m.Runtime
	if rt.Strategy != "" {
		o.Strategy = rt.Strategy
	}
	if rt.Workers != 0 {
		o.Workers = rt.Workers
	}
	if rt.BatchSize != 0 {
		o.BatchSize = rt.BatchSize
	}
	if rt.BatchInner != "" {
		o.BatchInner = rt.BatchInner
	}
	if rt.EvictEvery != nil {
		o.EvictEvery = *rt.EvictEvery
	}
	o.CacheSize = rt.CacheSize
	o.FieldMode = rt.FieldMode
	o.SegmentMode = rt.SegmentMode
	o.StripBeforeSlash = rt.StripBeforeSlash
	o.Dedup = rt.Dedup
	o.DedupPolicy = rt.DedupPolicy

	o.Profile = m.Format.Profile
	if m.Format.SortByName != nil {
		o.SortByName = *m.Format.SortByName
	}
	o.EmptyQuota = m.Format.EmptyQuota
	return o
}

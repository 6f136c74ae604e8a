// This file adds a linter for Settings values. It performs static checks
// over decoded settings and returns a list of issues (errors and warnings)
// that callers can surface in a CLI or tests.

package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"paketetl/internal/format"
	"paketetl/internal/quota"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path is a dotted path into the settings (e.g. "modules[1].runtime.workers").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

var (
	knownStrategies  = set("sequential", "concurrent", "batched")
	knownFieldModes  = set("normalize", "passthrough")
	knownDedupPolicy = set("keep-first", "keep-last", "most-complete")
	knownMethods     = set("GET", "POST")
	knownLogLevels   = set("trace", "debug", "info", "warn", "error")
	knownLogFormats  = set("json", "console")
	knownMetricKinds = set("none", "prometheus", "pushgateway", "datadog")
)

// ValidateSettings performs static validation of s. It does not mutate s.
func ValidateSettings(s Settings) []Issue {
	var issues []Issue

	issues = append(issues, validateLog(s.Log)...)
	issues = append(issues, validateMetrics(s.Metrics)...)

	if s.Response.MinInboundCharacters < 0 {
		issues = append(issues, errorf("response.min_inbound_characters", "must be >= 0, got %d", s.Response.MinInboundCharacters))
	}

	if len(s.Modules) == 0 {
		issues = append(issues, errorf("modules", "at least one module is required"))
	}
	seen := map[string]int{}
	for i, m := range s.Modules {
		path := fmt.Sprintf("modules[%d]", i)
		key := strings.ToLower(strings.TrimSpace(m.Name))
		if prev, dup := seen[key]; dup && key != "" {
			issues = append(issues, errorf(path+".name", "duplicate module name %q (also modules[%d])", m.Name, prev))
		}
		seen[key] = i
		issues = append(issues, validateModule(path, m)...)
	}
	return issues
}

func validateLog(l Log) []Issue {
	var issues []Issue
	if l.Level != "" && !has(knownLogLevels, strings.ToLower(l.Level)) {
		issues = append(issues, errorf("log.level", "unknown level %q", l.Level))
	}
	if l.Format != "" && !has(knownLogFormats, strings.ToLower(l.Format)) {
		issues = append(issues, errorf("log.format", "unknown format %q; want json or console", l.Format))
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	kind := strings.ToLower(m.Backend)
	if kind != "" && !has(knownMetricKinds, kind) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown backend %q; metrics will be disabled", m.Backend),
		})
	}
	if kind == "datadog" && strings.TrimSpace(m.DatadogAddr) == "" {
		issues = append(issues, errorf("metrics.datadog_addr", "datadog backend requires an address"))
	}
	return issues
}

func validateModule(path string, m Module) []Issue {
	var issues []Issue

	if strings.TrimSpace(m.Name) == "" {
		issues = append(issues, errorf(path+".name", "name must not be empty"))
	}
	if strings.TrimSpace(m.BaseURL) == "" {
		issues = append(issues, errorf(path+".base_url", "base_url must not be empty"))
	} else if u, err := url.Parse(m.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, errorf(path+".base_url", "base_url %q is not an absolute URL", m.BaseURL))
	}
	if m.Method != "" && !has(knownMethods, strings.ToUpper(m.Method)) {
		issues = append(issues, errorf(path+".method", "unsupported method %q", m.Method))
	}
	if m.Timeout < 0 {
		issues = append(issues, errorf(path+".timeout", "must be >= 0, got %d", m.Timeout))
	}
	if m.MaxRetries < 0 {
		issues = append(issues, errorf(path+".max_retries", "must be >= 0, got %d", m.MaxRetries))
	}
	if m.SecondsBetweenRetries < 0 {
		issues = append(issues, errorf(path+".seconds_between_retries", "must be >= 0, got %d", m.SecondsBetweenRetries))
	}
	if m.RateLimit < 0 {
		issues = append(issues, errorf(path+".rate_limit", "must be >= 0, got %v", m.RateLimit))
	}

	for i, r := range m.RegexsReplacement {
		rp := fmt.Sprintf("%s.regexs_replacement[%d]", path, i)
		if r.Pattern == "" {
			issues = append(issues, errorf(rp, "pattern must not be empty"))
			continue
		}
		if _, err := regexp.Compile("(?i)" + r.Pattern); err != nil {
			issues = append(issues, errorf(rp, "invalid pattern %q: %v", r.Pattern, err))
			continue
		}
		if _, canonical := quota.DefaultReplacement(r.Pattern); !canonical && r.Replacement == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     rp,
				Message:  fmt.Sprintf("pattern %q has no replacement; matches will be removed", r.Pattern),
			})
		}
	}
	if _, err := quota.NewTables(m.RemoveKeywords, m.ReplaceKeywords); err != nil {
		issues = append(issues, errorf(path+".remove_keywords", "%v", err))
	}

	if _, err := format.ProfileByName(m.Format.Profile); err != nil {
		issues = append(issues, errorf(path+".format.profile", "%v", err))
	}
	issues = append(issues, validateRuntime(path+".runtime", m.Runtime)...)
	return issues
}

func validateRuntime(path string, rt Runtime) []Issue {
	var issues []Issue

	if rt.Strategy != "" && !has(knownStrategies, strings.ToLower(strings.TrimSpace(rt.Strategy))) {
		issues = append(issues, errorf(path+".strategy", "unknown strategy %q; want sequential, concurrent or batched", rt.Strategy))
	}
	if inner := strings.ToLower(strings.TrimSpace(rt.BatchInner)); inner != "" && inner != "sequential" && inner != "concurrent" {
		issues = append(issues, errorf(path+".batch_inner", "want sequential or concurrent, got %q", rt.BatchInner))
	}
	if rt.Workers < 0 {
		issues = append(issues, errorf(path+".workers", "must be >= 1, got %d", rt.Workers))
	}
	if rt.BatchSize < 0 {
		issues = append(issues, errorf(path+".batch_size", "must be >= 1, got %d", rt.BatchSize))
	}
	if rt.EvictEvery != nil && *rt.EvictEvery < 0 {
		issues = append(issues, errorf(path+".evict_every", "must be >= 0, got %d", *rt.EvictEvery))
	}
	if rt.FieldMode != "" && !has(knownFieldModes, strings.ToLower(rt.FieldMode)) {
		issues = append(issues, errorf(path+".field_mode", "unknown field mode %q", rt.FieldMode))
	}
	if p := strings.ToLower(strings.TrimSpace(rt.DedupPolicy)); p != "" {
		if !has(knownDedupPolicy, p) {
			issues = append(issues, errorf(path+".dedup_policy", "unknown dedup policy %q; want keep-first, keep-last or most-complete", rt.DedupPolicy))
		} else if !rt.Dedup {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".dedup_policy",
				Message:  "ignored while dedup is off",
			})
		}
	}
	if _, err := quota.ParseSegmentMode(rt.SegmentMode); err != nil {
		issues = append(issues, errorf(path+".segment_mode", "%v", err))
	}
	if rt.Workers > 256 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     path + ".workers",
			Message:  fmt.Sprintf("%d workers is far above the CPU-bound sweet spot", rt.Workers),
		})
	}
	return issues
}

func errorf(path, format string, a ...any) Issue {
	return Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, a...)}
}

func set(vals ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}

func has(m map[string]struct{}, k string) bool {
	_, ok := m[k]
	return ok
}

// Package config defines the settings model of the paket service: global
// logging, server, metrics and response switches plus one Module per
// upstream provider.
//
// Settings are loaded from YAML (the usual deployment format) or JSON,
// selected by file extension. Runtime knobs can be overridden from the
// environment (see ApplyEnv).
//
// Example (trimmed):
//
//	response:
//	  replace_with_regex: true
//	  exclude_product: true
//	  min_inbound_characters: 10
//	modules:
//	  - name: xl
//	    base_url: http://10.0.0.5:8080/api
//	    method: GET
//	    timeout: 30
//	    max_retries: 3
//	    seconds_between_retries: 2
//	    regexs_replacement:
//	      - '\b(DAYS?|HARI)\b'
//	      - { pattern: '(\d+)\s*MB', replacement: '\1MB' }
//	    excluded_product_prefixes: ["FACEBOOK,TIKTOK"]
//	    runtime: { strategy: concurrent, workers: 6 }
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"paketetl/internal/quota"
)

// ErrModuleNotFound is returned by Settings.Module for unknown names.
var ErrModuleNotFound = errors.New("config: module not found")

// Settings is the top-level settings document.
type Settings struct {
	Log      Log      `yaml:"log" json:"log"`
	Server   Server   `yaml:"server" json:"server"`
	Metrics  Metrics  `yaml:"metrics" json:"metrics"`
	Response Response `yaml:"response" json:"response"`
	Modules  []Module `yaml:"modules" json:"modules"`
}

// Log configures the process logger.
type Log struct {
	Level   string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format  string `yaml:"format" json:"format"` // json or console
	Output  string `yaml:"output" json:"output"` // stdout, stderr or a file path
	Service string `yaml:"service" json:"service"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `yaml:"addr" json:"addr"`
	// Timeouts in seconds.
	ReadTimeout    int `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout   int `yaml:"write_timeout" json:"write_timeout"`
	RequestTimeout int `yaml:"request_timeout" json:"request_timeout"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	Backend        string   `yaml:"backend" json:"backend"` // none, prometheus, datadog
	PushgatewayURL string   `yaml:"pushgateway_url" json:"pushgateway_url"`
	DatadogAddr    string   `yaml:"datadog_addr" json:"datadog_addr"`
	Namespace      string   `yaml:"namespace" json:"namespace"`
	Tags           []string `yaml:"tags" json:"tags"`
}

// Response holds the switches shared by every module.
type Response struct {
	// ReplaceWithRegex enables the quota simplifier.
	ReplaceWithRegex bool `yaml:"replace_with_regex" json:"replace_with_regex"`
	// ExcludeProduct enables the product-name prefix filter.
	ExcludeProduct bool `yaml:"exclude_product" json:"exclude_product"`
	// MinInboundCharacters rejects upstream bodies shorter than this.
	MinInboundCharacters int `yaml:"min_inbound_characters" json:"min_inbound_characters"`
}

// Module is one upstream provider and the pipeline applied to its catalog.
type Module struct {
	Name    string `yaml:"name" json:"name"`
	BaseURL string `yaml:"base_url" json:"base_url"`
	Method  string `yaml:"method" json:"method"`
	// Timeout is the per-attempt request timeout in seconds.
	Timeout int `yaml:"timeout" json:"timeout"`
	// MaxRetries is the total number of attempts.
	MaxRetries            int `yaml:"max_retries" json:"max_retries"`
	SecondsBetweenRetries int `yaml:"seconds_between_retries" json:"seconds_between_retries"`
	// RateLimit caps upstream requests per second; 0 means unlimited.
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`
	// ListKeys are the JSON keys searched for the record list.
	ListKeys []string `yaml:"list_keys" json:"list_keys"`

	RegexsReplacement       []Rule   `yaml:"regexs_replacement" json:"regexs_replacement"`
	ExcludedProductPrefixes []string `yaml:"excluded_product_prefixes" json:"excluded_product_prefixes"`
	RemoveKeywords          []string `yaml:"remove_keywords" json:"remove_keywords"`
	ReplaceKeywords         []string `yaml:"replace_keywords" json:"replace_keywords"`

	Format  Format  `yaml:"format" json:"format"`
	Runtime Runtime `yaml:"runtime" json:"runtime"`
}

// Format configures serialization.
type Format struct {
	Profile    string `yaml:"profile" json:"profile"`
	SortByName *bool  `yaml:"sort_by_name" json:"sort_by_name"`
	EmptyQuota string `yaml:"empty_quota" json:"empty_quota"`
}

// Runtime controls dispatch and caching.
type Runtime struct {
	Strategy         string `yaml:"strategy" json:"strategy"`
	Workers          int    `yaml:"workers" json:"workers"`
	BatchSize        int    `yaml:"batch_size" json:"batch_size"`
	BatchInner       string `yaml:"batch_inner" json:"batch_inner"`
	EvictEvery       *int   `yaml:"evict_every" json:"evict_every"`
	CacheSize        int    `yaml:"cache_size" json:"cache_size"`
	FieldMode        string `yaml:"field_mode" json:"field_mode"`
	SegmentMode      string `yaml:"segment_mode" json:"segment_mode"`
	StripBeforeSlash bool   `yaml:"strip_before_slash" json:"strip_before_slash"`
	Dedup            bool   `yaml:"dedup" json:"dedup"`
	DedupPolicy      string `yaml:"dedup_policy" json:"dedup_policy"`
}

// Rule is a simplifier rule. It decodes from a bare pattern string or from
// an object with pattern and replacement.
type Rule quota.Rule

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Rule) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var s string
		if err := n.Decode(&s); err != nil {
			return err
		}
		*r = bareRule(s)
		return nil
	}
	var raw struct {
		Pattern     string  `yaml:"pattern"`
		Replacement *string `yaml:"replacement"`
	}
	if err := n.Decode(&raw); err != nil {
		return fmt.Errorf("config: rule: %w", err)
	}
	*r = objectRule(raw.Pattern, raw.Replacement)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rule) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = bareRule(s)
		return nil
	}
	var raw struct {
		Pattern     string  `json:"pattern"`
		Replacement *string `json:"replacement"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("config: rule: %w", err)
	}
	*r = objectRule(raw.Pattern, raw.Replacement)
	return nil
}

// A bare pattern takes the replacement of the matching canonical rule and
// otherwise deletes what it matches.
func bareRule(pattern string) Rule {
	repl, _ := quota.DefaultReplacement(pattern)
	return Rule{Pattern: pattern, Replacement: repl}
}

func objectRule(pattern string, repl *string) Rule {
	if repl == nil {
		return bareRule(pattern)
	}
	return Rule{Pattern: pattern, Replacement: *repl}
}

// Rules converts module rules into simplifier rules.
func (m Module) Rules() []quota.Rule {
	if len(m.RegexsReplacement) == 0 {
		return nil
	}
	out := make([]quota.Rule, len(m.RegexsReplacement))
	for i, r := range m.RegexsReplacement {
		out[i] = quota.Rule(r)
	}
	return out
}

// Load reads and decodes the settings file at path. ".json" files are
// decoded as JSON, everything else as YAML. Unknown fields are rejected.
func Load(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	s, err := Decode(b, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return Settings{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return s, nil
}

// Decode parses a settings document.
func Decode(b []byte, isJSON bool) (Settings, error) {
	var s Settings
	if isJSON {
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return Settings{}, fmt.Errorf("decode json: %w", err)
		}
		return s, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("decode yaml: %w", err)
	}
	return s, nil
}

// Module returns the module named name (case-insensitive).
func (s Settings) Module(name string) (Module, error) {
	for _, m := range s.Modules {
		if strings.EqualFold(m.Name, strings.TrimSpace(name)) {
			return m, nil
		}
	}
	return Module{}, fmt.Errorf("%w: %q", ErrModuleNotFound, name)
}

// ModuleNames lists the configured module names in file order.
func (s Settings) ModuleNames() []string {
	out := make([]string, len(s.Modules))
	for i, m := range s.Modules {
		out[i] = m.Name
	}
	return out
}

// Package json decodes upstream catalog responses into records.
//
// Three body shapes are accepted:
//
//   - an envelope object holding the list under one of the list keys:
//     {"status":"ok","paket":[{...},{...}]}
//   - a bare array of objects: [{...},{...}]
//   - newline-delimited objects: {...}\n{...}
//
// Numbers are decoded as json.Number so prices keep their exact text.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"paketetl/pkg/records"
)

// DefaultListKeys are searched when no keys are configured.
var DefaultListKeys = []string{"paket", "data"}

// ErrNoList is returned for a single object that carries no record list.
var ErrNoList = errors.New("json: no record list in response")

// Parser adapts DecodeCatalog to parser.Parser.
type Parser struct {
	Keys []string
}

// Parse implements parser.Parser.
func (p Parser) Parse(r io.Reader) ([]records.Record, error) {
	return DecodeCatalog(r, p.Keys...)
}

// DecodeCatalog reads a catalog body. Keys are tried in order; when none is
// present the object's fields are scanned (sorted by name) for the first
// array of objects.
func DecodeCatalog(r io.Reader, keys ...string) ([]records.Record, error) {
	if len(keys) == 0 {
		keys = DefaultListKeys
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("json: decode root: %w", err)
	}

	switch v := root.(type) {
	case []any:
		return objects(v)
	case map[string]any:
		if list, ok := findList(v, keys); ok {
			return objects(list)
		}
		if !dec.More() {
			return nil, ErrNoList
		}
		out := []records.Record{records.Record(v)}
		next := &Decoder{dec: dec}
		for {
			rec, err := next.Next()
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
	default:
		return nil, fmt.Errorf("json: unsupported root type %T (want object or array)", v)
	}
}

// findList returns the record list of an envelope object.
func findList(root map[string]any, keys []string) ([]any, bool) {
	for _, k := range keys {
		v, ok := root[k]
		if !ok {
			continue
		}
		if v == nil {
			return nil, true
		}
		if list, ok := v.([]any); ok {
			return list, true
		}
	}

	names := make([]string, 0, len(root))
	for k := range root {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		list, ok := root[k].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		if _, ok := list[0].(map[string]any); ok {
			return list, true
		}
	}
	return nil, false
}

// objects converts a decoded array into records. Null elements are skipped.
func objects(list []any) ([]records.Record, error) {
	out := make([]records.Record, 0, len(list))
	for i, elem := range list {
		if elem == nil {
			continue
		}
		m, ok := elem.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("json: element %d is not an object (got %T)", i, elem)
		}
		out = append(out, records.Record(m))
	}
	return out, nil
}

// Decoder streams newline-delimited objects.
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	d := json.NewDecoder(r)
	d.UseNumber()
	return &Decoder{dec: d}
}

// Next returns the next object in the stream, skipping non-object values.
// io.EOF marks the end of the stream.
func (d *Decoder) Next() (records.Record, error) {
	for {
		var raw any
		if err := d.dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("json: decode: %w", err)
		}
		if m, ok := raw.(map[string]any); ok {
			return records.Record(m), nil
		}
	}
}

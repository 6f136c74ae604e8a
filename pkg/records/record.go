// Package records defines the generic record type that flows through the
// paket pipeline. A Record is one catalog product as decoded from the
// upstream JSON: a flat map of field name to value.
package records

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Well-known catalog fields.
const (
	FieldProductID   = "productId"
	FieldProductName = "productName"
	FieldQuota       = "quota"
	FieldTotal       = "total_"
)

// Record is a single catalog entry. Values are whatever encoding/json produced
// (string, json.Number, float64, bool, nil, nested maps/slices).
type Record map[string]any

// Clone returns a shallow copy of r. Nested values are shared.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Get returns the string form of field k and whether the field was present.
func (r Record) Get(k string) (string, bool) {
	v, ok := r[k]
	if !ok {
		return "", false
	}
	return String(v), true
}

// String coerces an arbitrary decoded value into its display string.
//
// Numbers are rendered as plain decimals: 10000, 12500.5 (never 1e+04 or
// "10000.0"), which is what ends up in the price column of the response.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d.String()
		}
		return t.String()
	case float64:
		return decimal.NewFromFloat(t).String()
	case float32:
		return decimal.NewFromFloat32(t).String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// TrimEdges strips the characters upstream catalogs pad fields with:
// spaces, commas and tabs.
func TrimEdges(s string) string {
	return strings.Trim(s, " ,\t")
}

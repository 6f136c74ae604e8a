package records

import (
	"encoding/json"
	"testing"
)

func TestString_Coercion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"json_int", json.Number("10000"), "10000"},
		{"json_decimal", json.Number("12500.50"), "12500.5"},
		{"json_exponent", json.Number("1e4"), "10000"},
		{"float_whole", float64(25000), "25000"},
		{"float_frac", 1.25, "1.25"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"bool", true, "true"},
		{"slice", []int{1, 2}, "[1 2]"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := String(tt.in); got != tt.want {
				t.Fatalf("String(%#v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRecord_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	r := Record{FieldProductID: "1", FieldQuota: "5GB"}
	c := r.Clone()
	c[FieldQuota] = "changed"
	if r[FieldQuota] != "5GB" {
		t.Fatalf("Clone shares map storage: original quota = %v", r[FieldQuota])
	}
}

func TestRecord_Get(t *testing.T) {
	t.Parallel()

	r := Record{FieldTotal: json.Number("5000")}
	if got, ok := r.Get(FieldTotal); !ok || got != "5000" {
		t.Fatalf("Get(total_) = %q,%v want 5000,true", got, ok)
	}
	if _, ok := r.Get(FieldProductName); ok {
		t.Fatalf("Get(productName) reported present on missing field")
	}
}

func TestTrimEdges(t *testing.T) {
	t.Parallel()

	if got := TrimEdges(" ,\tPAKET 5GB,, "); got != "PAKET 5GB" {
		t.Fatalf("TrimEdges = %q", got)
	}
}

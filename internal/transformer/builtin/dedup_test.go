package builtin

import (
	"reflect"
	"testing"

	"paketetl/pkg/records"
)

func mk(id any, fields map[string]any) records.Record {
	r := records.Record{records.FieldProductID: id}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

func TestDeDupKeepFirst(t *testing.T) {
	in := []records.Record{
		mk("1", map[string]any{"quota": "A"}),
		mk("1", map[string]any{"quota": "B"}),
		mk("2", map[string]any{"quota": "C"}),
	}
	got := DeDup{}.Apply(in)
	want := []records.Record{
		mk("1", map[string]any{"quota": "A"}),
		mk("2", map[string]any{"quota": "C"}),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("keep-first: got %#v want %#v", got, want)
	}
}

func TestDeDupKeepLast(t *testing.T) {
	in := []records.Record{
		mk("1", map[string]any{"quota": "A"}),
		mk("2", map[string]any{"quota": "C"}),
		mk("1", map[string]any{"quota": "B"}),
	}
	got := DeDup{Policy: "keep-last"}.Apply(in)
	want := []records.Record{
		mk("2", map[string]any{"quota": "C"}),
		mk("1", map[string]any{"quota": "B"}),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("keep-last: got %#v want %#v", got, want)
	}
}

func TestDeDupMostComplete(t *testing.T) {
	in := []records.Record{
		mk("1", map[string]any{"quota": ""}),
		mk("1", map[string]any{"quota": "B", "total_": "5000"}),
		mk("1", map[string]any{"quota": "C"}),
		mk("2", map[string]any{"quota": "D"}),
	}
	got := DeDup{Policy: "most-complete"}.Apply(in)
	want := []records.Record{
		mk("1", map[string]any{"quota": "B", "total_": "5000"}),
		mk("2", map[string]any{"quota": "D"}),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("most-complete: got %#v want %#v", got, want)
	}
}

/*
TestDeDupMixedKeyTypes verifies that ids decoded as different types but with
the same display string collapse, and unkeyed records pass through in place.
*/
func TestDeDupMixedKeyTypes(t *testing.T) {
	in := []records.Record{
		{"productName": "no id"},
		mk(float64(7), nil),
		mk("7", map[string]any{"quota": "dup"}),
		mk(nil, nil),
	}
	d := DeDup{}
	got := d.Apply(in)
	want := []records.Record{{"productName": "no id"}, mk(float64(7), nil), mk(nil, nil)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
	if n := len(in) - len(got); n != 1 {
		t.Fatalf("dropped = %d; want 1", n)
	}
}

func TestDeDupCompositeKeys(t *testing.T) {
	in := []records.Record{
		{"productId": "1", "total_": "10"},
		{"productId": "1", "total_": "20"},
		{"productId": "1", "total_": "10"},
	}
	got := DeDup{Keys: []string{"productId", "total_"}}.Apply(in)
	if len(got) != 2 {
		t.Fatalf("len = %d; want 2: %#v", len(got), got)
	}
}

func TestParseDedupPolicy(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", KeepFirst, false},
		{" Keep-Last ", KeepLast, false},
		{"MOST-COMPLETE", MostComplete, false},
		{"newest", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDedupPolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDedupPolicy(%q) = (%q, %v); want %q, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

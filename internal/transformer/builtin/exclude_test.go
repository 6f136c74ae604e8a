package builtin

import (
	"reflect"
	"strings"
	"testing"

	"paketetl/pkg/records"
)

func named(s string) records.Record { return records.Record{records.FieldProductName: s} }

func TestExcludePrefix_Apply(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		entries []string
		in      []records.Record
		want    []records.Record
	}{
		{
			name:    "drops_case_insensitive",
			entries: []string{"Facebook"},
			in:      []records.Record{named("Facebook Flash"), named("Paket Hemat"), named("FACEBOOK 1GB")},
			want:    []records.Record{named("Paket Hemat")},
		},
		{
			name:    "comma_separated_entry",
			entries: []string{"facebook, tiktok", " "},
			in:      []records.Record{named("TikTok 2GB"), named("Youtube"), named(" facebook x")},
			want:    []records.Record{named("Youtube")},
		},
		{
			name:    "order_preserved",
			entries: []string{"X"},
			in:      []records.Record{named("A"), named("XB"), named("C"), named("D")},
			want:    []records.Record{named("A"), named("C"), named("D")},
		},
		{
			name:    "missing_and_non_string_names",
			entries: []string{"1"},
			in:      []records.Record{{"productId": "1"}, {records.FieldProductName: 123}, named("2")},
			want:    []records.Record{{"productId": "1"}, named("2")},
		},
		{
			name:    "padded_names",
			entries: []string{"Facebook"},
			in: []records.Record{
				named(",Facebook Flash"), named("\tfacebook 1GB,"), named("\u00a0Facebook"), named("Paket, Facebook"),
			},
			want: []records.Record{named("Paket, Facebook")},
		},
		{
			name: "no_prefixes_noop",
			in:   []records.Record{named("Facebook")},
			want: []records.Record{named("Facebook")},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NewExcludePrefix(tt.entries).Apply(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %#v\nwant %#v", got, tt.want)
			}
		})
	}
}

/*
TestExcludePrefix_Invariant checks that no survivor starts with an excluded
prefix, whatever the casing.
*/
func TestExcludePrefix_Invariant(t *testing.T) {
	t.Parallel()
	x := NewExcludePrefix([]string{"promo", "FB"})
	in := []records.Record{named("Promo 1"), named("pROMO 2"), named("fb"), named("Fb lite"), named("Paket promo"), named("Netflix")}
	for _, r := range x.Apply(in) {
		n := strings.ToUpper(records.String(r[records.FieldProductName]))
		for _, p := range x.Prefixes() {
			if strings.HasPrefix(n, p) {
				t.Fatalf("survivor %q starts with %q", n, p)
			}
		}
	}
}

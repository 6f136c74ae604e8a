package json

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"paketetl/internal/parser"
	"paketetl/pkg/records"
)

var _ parser.Parser = Parser{}

func productIDs(recs []records.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i], _ = r.Get(records.FieldProductID)
	}
	return out
}

/*
TestDecodeCatalog_Shapes verifies the accepted body shapes:

  - envelope object with the list under a configured key,
  - key order decides between two present keys,
  - fallback scan when no key matches,
  - bare array (null elements skipped),
  - NDJSON stream of objects,
  - empty input and a null list yield no records.
*/
func TestDecodeCatalog_Shapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		keys []string
		want []string
	}{
		{"envelope default key", `{"status":"ok","paket":[{"productId":"A"},{"productId":"B"}]}`, nil, []string{"A", "B"}},
		{"data key", `{"data":[{"productId":"D"}]}`, nil, []string{"D"}},
		{"key order", `{"data":[{"productId":"D"}],"list":[{"productId":"L"}]}`, []string{"list", "data"}, []string{"L"}},
		{"fallback scan", `{"meta":{"n":1},"items":[{"productId":"X"}],"zz":[{"productId":"Z"}]}`, []string{"paket"}, []string{"X"}},
		{"bare array", `[{"productId":"1"},null,{"productId":"2"}]`, nil, []string{"1", "2"}},
		{"ndjson", "{\"productId\":\"N1\"}\n{\"productId\":\"N2\"}\n", nil, []string{"N1", "N2"}},
		{"empty", "  ", nil, []string{}},
		{"null list", `{"paket":null}`, nil, []string{}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := DecodeCatalog(strings.NewReader(tc.body), tc.keys...)
			if err != nil {
				t.Fatalf("DecodeCatalog: %v", err)
			}
			if ids := productIDs(got); !reflect.DeepEqual(ids, tc.want) {
				t.Fatalf("ids = %v; want %v", ids, tc.want)
			}
		})
	}
}

func TestDecodeCatalog_NumbersKeepText(t *testing.T) {
	t.Parallel()

	got, err := DecodeCatalog(strings.NewReader(`[{"total_":12500.50,"productId":10000}]`))
	if err != nil {
		t.Fatalf("DecodeCatalog: %v", err)
	}
	if n, ok := got[0]["total_"].(json.Number); !ok || n.String() != "12500.50" {
		t.Fatalf("total_ = %#v (%T)", got[0]["total_"], got[0]["total_"])
	}
	if id, _ := got[0].Get(records.FieldProductID); id != "10000" {
		t.Fatalf("productId = %q; want 10000", id)
	}
}

func TestDecodeCatalog_Errors(t *testing.T) {
	t.Parallel()

	if _, err := DecodeCatalog(strings.NewReader(`{"status":"error","message":"down"}`)); !errors.Is(err, ErrNoList) {
		t.Fatalf("single object err = %v; want ErrNoList", err)
	}
	if _, err := DecodeCatalog(strings.NewReader(`[1,2]`)); err == nil {
		t.Fatalf("expected error for non-object elements")
	}
	if _, err := DecodeCatalog(strings.NewReader(`"text"`)); err == nil {
		t.Fatalf("expected error for string root")
	}
	if _, err := DecodeCatalog(strings.NewReader(`{"paket":[`)); err == nil {
		t.Fatalf("expected error for truncated body")
	}
}

/*
TestDecoderNext_SkipsPrimitives verifies Decoder.Next on a mixed stream:
primitive top-level values are skipped and EOF ends the stream.
*/
func TestDecoderNext_SkipsPrimitives(t *testing.T) {
	t.Parallel()

	d := NewDecoder(strings.NewReader("{\"productId\":\"a\"}\n42\n{\"productId\":\"b\"}\n"))
	var ids []string
	for {
		rec, err := d.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		id, _ := rec.Get(records.FieldProductID)
		ids = append(ids, id)
	}
	if !reflect.DeepEqual(ids, []string{"a", "b"}) {
		t.Fatalf("ids = %v", ids)
	}
}

func TestParser_UsesKeys(t *testing.T) {
	t.Parallel()

	p := Parser{Keys: []string{"list"}}
	got, err := p.Parse(strings.NewReader(`{"list":[{"productId":"k"}]}`))
	if err != nil || len(got) != 1 {
		t.Fatalf("Parse = %v, %v", got, err)
	}
}

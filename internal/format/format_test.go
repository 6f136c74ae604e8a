package format

import (
	"errors"
	"reflect"
	"testing"

	"paketetl/pkg/records"
)

func rec(id, name, quota, total any) records.Record {
	r := records.Record{}
	if id != nil {
		r[records.FieldProductID] = id
	}
	if name != nil {
		r[records.FieldProductName] = name
	}
	if quota != nil {
		r[records.FieldQuota] = quota
	}
	if total != nil {
		r[records.FieldTotal] = total
	}
	return r
}

func TestFormat_Profiles(t *testing.T) {
	t.Parallel()
	in := []records.Record{
		rec("1", "PAKET A", "Bonus video+5GB", "1000"),
		rec("2", "PAKET B", "100", "2000"),
	}
	tests := []struct {
		profile Profile
		want    string
	}{
		{ProfileAt, "@1#PAKET A(Bonus video+5GB)#1000@2#PAKET B(100)#2000"},
		{ProfileHashID, "#id:1#PAKET A(Bonus video+5GB)#1000#id:2#PAKET B(100)#2000"},
		{ProfilePipe, "#1|PAKET A(Bonus video+5GB)|1000#2|PAKET B(100)|2000"},
		{ProfileDash, "-1#PAKET A(Bonus video+5GB)#1000-2#PAKET B(100)#2000-"},
	}
	for _, tt := range tests {
		if got := New(tt.profile).Format(in, false); got != tt.want {
			t.Fatalf("%s: got %q\nwant %q", tt.profile.Name, got, tt.want)
		}
	}
}

func TestFormat_EmptyInput(t *testing.T) {
	t.Parallel()
	f := New(ProfileAt)
	if got := f.Format(nil, true); got != "" {
		t.Fatalf("Format(nil) = %q", got)
	}
	if got := f.Format([]records.Record{}, true); got != "" {
		t.Fatalf("Format([]) = %q", got)
	}
}

/*
TestFormat_MissingFields checks the placeholders: "-" for an absent or null
id, empty strings for name, quota and total. An id that is present but empty
renders empty.
*/
func TestFormat_MissingFields(t *testing.T) {
	t.Parallel()
	in := []records.Record{
		rec(nil, nil, nil, nil),
		rec("", "X", nil, 5),
		{records.FieldProductID: nil, records.FieldProductName: "Y"},
	}
	if got, want := New(ProfileAt).Format(in, false), "@-#()#@#X()#5@-#Y()#"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	p := ProfileAt
	p.EmptyQuota = "-"
	if got, want := New(p).Format(in[1:2], false), "@#X(-)#5"; got != want {
		t.Fatalf("empty quota placeholder: got %q want %q", got, want)
	}
}

func TestFormat_TrimsAndCoerces(t *testing.T) {
	t.Parallel()
	in := []records.Record{rec(float64(12), " ,NAME\t", "1GB,", 12500.5)}
	if got, want := New(ProfileAt).Format(in, false), "@12#NAME(1GB)#12500.5"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestFormat_SortByNameStable(t *testing.T) {
	t.Parallel()
	in := []records.Record{
		rec("1", "beta", "", ""),
		rec("2", "Alpha", "", ""),
		rec("3", "BETA", "", ""),
		rec("4", "alpha", "", ""),
	}
	orig := append([]records.Record(nil), in...)

	got := New(ProfileAt).Format(in, true)
	want := "@2#Alpha()#@4#alpha()#@1#beta()#@3#BETA()#"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if !reflect.DeepEqual(in, orig) {
		t.Fatalf("input reordered")
	}
}

func TestFormat_DashCollapse(t *testing.T) {
	t.Parallel()
	in := []records.Record{rec("-7-", "A", "", "1"), rec("8", "B", "", "")}
	if got, want := New(ProfileDash).Format(in, false), "-7-#A()#1-8#B()#-"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestProfileByName(t *testing.T) {
	t.Parallel()
	for name, want := range map[string]string{"": "at", "AT": "at", " dash ": "dash", "pipe": "pipe", "hashid": "hashid"} {
		p, err := ProfileByName(name)
		if err != nil || p.Name != want {
			t.Fatalf("ProfileByName(%q) = (%q,%v); want %q", name, p.Name, err, want)
		}
	}
	if _, err := ProfileByName("xml"); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("err = %v; want ErrUnknownProfile", err)
	}
}

func TestEnvelope(t *testing.T) {
	t.Parallel()
	e := Envelope{TrxID: "ABC1", To: "0812"}
	if got, want := e.Success("@1#A()#1"), "trxid=ABC1&to=0812&status=success&message=listpaket in paket : @1#A()#1"; got != want {
		t.Fatalf("Success = %q", got)
	}
	e.Category = "data"
	if got, want := e.Success(""), "trxid=ABC1&to=0812&status=success&message=listpaket in data : "; got != want {
		t.Fatalf("Success(empty) = %q", got)
	}
	if got, want := e.Failure("upstream unavailable"), "trxid=ABC1&to=0812&status=failed&message=upstream unavailable"; got != want {
		t.Fatalf("Failure = %q", got)
	}
}

func BenchmarkFormat_Sorted(b *testing.B) {
	in := make([]records.Record, 500)
	for i := range in {
		in[i] = rec(i, "PAKET "+string(rune('A'+i%26)), "Bonus video+5GB", 10000+i)
	}
	f := New(ProfileAt)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = f.Format(in, true)
	}
}

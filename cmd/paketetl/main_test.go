package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const testCatalog = `{"status":"ok","paket":[
  {"productId":"2","productName":"Nelpon","quota":"SMS ONNET/100, SMS ONNET/100","total_":2000},
  {"productId":"1","productName":"Facebook Flash","quota":"1GB","total_":1000},
  {"productId":"3","productName":"Combo","quota":"DATA NATIONAL/VIDEO, LOCAL DATA/5GB","total_":12500.5}
]}`

// writeFixtures writes a settings file and a catalog into a temp dir and
// returns their paths.
func writeFixtures(t *testing.T, settings string) (cfgPath, catalogPath string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "paketetl.yaml")
	catalogPath = filepath.Join(dir, "catalog.json")
	settings = strings.ReplaceAll(settings, "LOGFILE", filepath.Join(dir, "paketetl.log"))
	if err := os.WriteFile(cfgPath, []byte(settings), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(catalogPath, []byte(testCatalog), 0o600); err != nil {
		t.Fatal(err)
	}
	return cfgPath, catalogPath
}

const testSettings = `
log: { level: debug, output: LOGFILE }
response: { exclude_product: true }
modules:
  - name: xl
    base_url: http://upstream.invalid
    excluded_product_prefixes: ["Facebook"]
`

// run executes the CLI with args and returns stdout, stderr and the error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"paketetl"}, args...))
	return out.String(), errOut.String(), err
}

func TestFormatCommand(t *testing.T) {
	cfg, cat := writeFixtures(t, testSettings)

	out, _, err := run(t, "--config", cfg, "format", "-m", "XL", "-i", cat)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	want := "@3#COMBO(Bonus video+5GB)#12500.5@2#NELPON(100)#2000\n"
	if out != want {
		t.Fatalf("out = %q\nwant %q", out, want)
	}
}

func TestFormatCommand_EnvelopeAndStrategy(t *testing.T) {
	cfg, cat := writeFixtures(t, testSettings)

	out, _, err := run(t, "--config", cfg, "format", "-m", "xl", "-i", cat,
		"--strategy", "batched", "--trxid", "TRX1", "--to", "0812", "--category", "data")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	want := "trxid=TRX1&to=0812&status=success&message=listpaket in data : @3#COMBO(Bonus video+5GB)#12500.5@2#NELPON(100)#2000\n"
	if out != want {
		t.Fatalf("out = %q\nwant %q", out, want)
	}
}

func TestFormatCommand_Records(t *testing.T) {
	cfg, cat := writeFixtures(t, testSettings)

	out, _, err := run(t, "--config", cfg, "format", "-m", "xl", "-i", cat, "--records")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	var recs []map[string]any
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	var quotas []any
	for _, r := range recs {
		quotas = append(quotas, r["quota"])
	}
	// Records keep input order; only the serialized line is sorted.
	if want := []any{"100", "Bonus video+5GB"}; !reflect.DeepEqual(quotas, want) {
		t.Fatalf("quotas = %v; want %v", quotas, want)
	}
}

func TestFormatCommand_Errors(t *testing.T) {
	cfg, cat := writeFixtures(t, testSettings)

	if _, _, err := run(t, "--config", cfg, "format", "-m", "telkomsel", "-i", cat); err == nil || !strings.Contains(err.Error(), "configured: xl") {
		t.Fatalf("unknown module err = %v", err)
	}
	if _, _, err := run(t, "--config", cfg, "format", "-m", "xl", "-i", cat, "--strategy", "parallel"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
	if _, _, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "format", "-m", "xl", "-i", cat); err == nil {
		t.Fatalf("expected error for missing settings")
	}
}

func TestCompareCommand(t *testing.T) {
	cfg, cat := writeFixtures(t, testSettings)

	out, _, err := run(t, "--config", cfg, "compare", "-m", "xl", "-i", cat, "--runs", "2")
	if err != nil {
		t.Fatalf("compare: %v\n%s", err, out)
	}
	for _, s := range []string{"sequential", "concurrent", "batched", "outputs identical", "3->2"} {
		if !strings.Contains(out, s) {
			t.Fatalf("compare output missing %q:\n%s", s, out)
		}
	}
	if _, _, err := run(t, "--config", cfg, "compare", "-m", "xl", "-i", cat, "--runs", "0"); err == nil {
		t.Fatalf("expected error for --runs 0")
	}
}

func TestValidateCommand(t *testing.T) {
	cfg, _ := writeFixtures(t, testSettings)
	out, _, err := run(t, "--config", cfg, "validate")
	if err != nil || !strings.Contains(out, "settings are valid") {
		t.Fatalf("validate = %q, %v", out, err)
	}

	bad, _ := writeFixtures(t, `
modules:
  - name: xl
    base_url: not-a-url
    runtime: { strategy: parallel }
`)
	_, errOut, err := run(t, "--config", bad, "validate")
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	for _, s := range []string{"modules[0].base_url", "modules[0].runtime.strategy"} {
		if !strings.Contains(errOut, s) {
			t.Fatalf("stderr missing %q:\n%s", s, errOut)
		}
	}
}

func TestQueryFromParams(t *testing.T) {
	t.Parallel()

	q, err := queryFromParams([]string{"msisdn=0812", "a=1", "a=2", "empty="})
	if err != nil {
		t.Fatalf("queryFromParams: %v", err)
	}
	if q.Get("msisdn") != "0812" || !reflect.DeepEqual(q["a"], []string{"1", "2"}) || q.Get("empty") != "" {
		t.Fatalf("q = %v", q)
	}
	if _, err := queryFromParams([]string{"novalue"}); err == nil {
		t.Fatalf("expected error for missing '='")
	}
}

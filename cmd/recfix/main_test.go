package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recfix/internal/services"
	"recfix/internal/testsupport"
)

type cliTestEnv struct {
	configPath string
	baseDir    string
	dataDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("RECFIX_LOG_LEVEL", "")
	t.Setenv("RECFIX_LOG_FORMAT", "")
	t.Setenv("RECFIX_STATE_DIR", "")

	configPath := filepath.Join(base, "recfix.toml")
	content := fmt.Sprintf("[paths]\nstate_dir = %q\nlog_dir = %q\n\n[logging]\nlevel = \"error\"\nretention_days = 0\n",
		filepath.Join(base, "state"), filepath.Join(base, "logs"))
	testsupport.WriteFile(t, configPath, content)

	return &cliTestEnv{configPath: configPath, baseDir: base, dataDir: filepath.Join(base, "data")}
}

func runCLI(t *testing.T, env *cliTestEnv, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConvertWritesCSV(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteFile(t, filepath.Join(env.dataDir, "export.json"), testsupport.SampleExport)

	out, _, err := runCLI(t, env, "", "convert", input)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "Converted")
	requireContains(t, out, "first ids rec1, rec2")
	requireContains(t, out, "1 converted, 0 skipped, 0 failed")

	got := testsupport.ReadFile(t, filepath.Join(env.dataDir, "export.csv"))
	if got != testsupport.SampleCSV {
		t.Fatalf("unexpected csv %q", got)
	}
}

func TestConvertJSONOutputAndOutDir(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteFile(t, filepath.Join(env.dataDir, "table.csv"), testsupport.SampleCSV)
	outDir := filepath.Join(env.baseDir, "out")

	out, _, err := runCLI(t, env, "", "convert", "--json", "--out-dir", outDir, input)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	var view struct {
		RunID    string `json:"run_id"`
		Outcomes []struct {
			Output  string `json:"output"`
			Records int    `json:"records"`
			Status  string `json:"status"`
		} `json:"outcomes"`
	}
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode json output: %v\n%s", err, out)
	}
	if view.RunID == "" || len(view.Outcomes) != 1 {
		t.Fatalf("unexpected view %+v", view)
	}
	o := view.Outcomes[0]
	if o.Output != filepath.Join(outDir, "table.json") || o.Records != 2 || o.Status != "converted" {
		t.Fatalf("unexpected outcome %+v", o)
	}
	requireContains(t, testsupport.ReadFile(t, o.Output), `"rec1": {`)
}

func TestConvertRequiresPath(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env, "", "convert")
	if !errors.Is(err, services.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(env.baseDir, "state")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no state directory to be created, stat err %v", statErr)
	}
}

func TestConvertOutputFlagSingleInput(t *testing.T) {
	env := setupCLITestEnv(t)
	a := testsupport.WriteFile(t, filepath.Join(env.dataDir, "a.json"), testsupport.SampleExport)
	b := testsupport.WriteFile(t, filepath.Join(env.dataDir, "b.json"), testsupport.SampleExport)

	if _, _, err := runCLI(t, env, "", "convert", "-o", filepath.Join(env.baseDir, "x.csv"), a, b); err == nil {
		t.Fatal("expected error for -o with several inputs")
	}

	target := filepath.Join(env.baseDir, "named.csv")
	if _, _, err := runCLI(t, env, "", "convert", "-o", target, a); err != nil {
		t.Fatalf("convert -o: %v", err)
	}
	if got := testsupport.ReadFile(t, target); got != testsupport.SampleCSV {
		t.Fatalf("unexpected csv %q", got)
	}
}

func TestConvertMalformedPrintsDiagnostic(t *testing.T) {
	env := setupCLITestEnv(t)
	bad := testsupport.WriteFile(t, filepath.Join(env.dataDir, "bad.json"), `{"records": [{"id": "a",}]}`)
	good := testsupport.WriteFile(t, filepath.Join(env.dataDir, "good.json"), testsupport.SampleExport)

	out, stderr, err := runCLI(t, env, "", "convert", bad, good)
	if err == nil {
		t.Fatal("expected failure exit")
	}
	requireContains(t, err.Error(), "1 file of 2 failed")
	requireContains(t, stderr, "--- original ---")
	requireContains(t, stderr, "--- sanitized ---")
	requireContains(t, out, "1 converted, 0 skipped, 1 failed")
	if _, statErr := os.Stat(filepath.Join(env.dataDir, "bad.csv")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no output for malformed input, stat err %v", statErr)
	}
}

func TestConvertEmptySourceIsNotFatal(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteFile(t, filepath.Join(env.dataDir, "empty.json"), `{"offset": "x"}`)

	out, _, err := runCLI(t, env, "", "convert", input)
	if err != nil {
		t.Fatalf("expected empty source to exit cleanly, got %v", err)
	}
	requireContains(t, out, "0 converted, 1 skipped, 0 failed")
}

func TestConvertNoHeaderRequiresColumns(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteFile(t, filepath.Join(env.dataDir, "rows.csv"), "rec1,Acme\n")

	_, _, err := runCLI(t, env, "", "convert", "--no-header", input)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}

	if _, _, err := runCLI(t, env, "", "convert", "--no-header", "--columns", "id,name", input); err != nil {
		t.Fatalf("convert with columns: %v", err)
	}
	requireContains(t, testsupport.ReadFile(t, filepath.Join(env.dataDir, "rows.json")), `"name": "Acme"`)
}

func TestConvertDecodeStructuredIsOptIn(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteFile(t, filepath.Join(env.dataDir, "meta.csv"), "id,meta\nrec1,{}\n")

	plain := filepath.Join(env.dataDir, "plain.json")
	if _, _, err := runCLI(t, env, "", "convert", "-o", plain, input); err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, testsupport.ReadFile(t, plain), `"meta": "{}"`)

	decoded := filepath.Join(env.dataDir, "decoded.json")
	if _, _, err := runCLI(t, env, "", "convert", "--decode-structured", "-o", decoded, input); err != nil {
		t.Fatalf("convert --decode-structured: %v", err)
	}
	requireContains(t, testsupport.ReadFile(t, decoded), `"meta": {}`)
}

func TestConvertRejectsNegativeJobs(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteFile(t, filepath.Join(env.dataDir, "rows.csv"), "id,name\nrec1,Acme\n")

	_, _, err := runCLI(t, env, "", "convert", "--jobs=-1", input)
	if err == nil || !strings.Contains(err.Error(), "non-negative") {
		t.Fatalf("expected non-negative jobs error, got %v", err)
	}
}

func TestRepairWritesFixedCopy(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteFile(t, filepath.Join(env.dataDir, "export.json"), testsupport.SampleExport)

	if _, _, err := runCLI(t, env, "", "repair", input); err != nil {
		t.Fatalf("repair: %v", err)
	}
	fixed := testsupport.ReadFile(t, filepath.Join(env.dataDir, "export_FIXED.json"))
	requireContains(t, fixed, `"notes": "Line one\nLine two"`)
	var decoded map[string]any
	if err := json.Unmarshal([]byte(fixed), &decoded); err != nil {
		t.Fatalf("repaired output is not valid JSON: %v", err)
	}
}

func TestSanitizeFilter(t *testing.T) {
	env := setupCLITestEnv(t)
	out, stderr, err := runCLI(t, env, "{\"a\":\"x\ny\"}", "sanitize", "--stats")
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if out != `{"a":"x\ny"}` {
		t.Fatalf("unexpected sanitized output %q", out)
	}
	requireContains(t, stderr, "escaped 1 newlines")
}

func TestHistoryListAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteFile(t, filepath.Join(env.dataDir, "export.json"), testsupport.SampleExport)
	if _, _, err := runCLI(t, env, "", "convert", input); err != nil {
		t.Fatalf("convert: %v", err)
	}

	out, _, err := runCLI(t, env, "", "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, input)
	requireContains(t, out, "Converted")
	requireContains(t, out, "1 total: 1 converted")

	out, _, err = runCLI(t, env, "", "history", "list", "--json")
	if err != nil {
		t.Fatalf("history list --json: %v", err)
	}
	requireContains(t, out, `"status": "converted"`)

	out, _, err = runCLI(t, env, "", "history", "clear")
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 history entries")

	out, _, err = runCLI(t, env, "", "history")
	if err != nil {
		t.Fatalf("history after clear: %v", err)
	}
	requireContains(t, out, "No conversions recorded")
}

func TestConfigInitValidateAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, env, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, _, err := runCLI(t, env, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}

	out, _, err = runCLI(t, env, "", "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[paths]")
	requireContains(t, out, filepath.Join(env.baseDir, "state"))
}

func TestInvalidConfigIsConfigurationError(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, env.configPath, "[output]\nunknown_key = 1\n")

	_, _, err := runCLI(t, env, "", "config", "validate")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestWatchRequiresOutputDir(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(env.baseDir, "inbox")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	_, _, err := runCLI(t, env, "", "watch", dir)
	if err == nil {
		t.Fatal("expected error without an output directory")
	}
	requireContains(t, err.Error(), "output directory")
}

func TestLogsShowsLatestRun(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteFile(t, filepath.Join(env.dataDir, "export.json"), testsupport.SampleExport)
	bad := testsupport.WriteFile(t, filepath.Join(env.dataDir, "bad.csv"), "name\nx\n")

	if _, _, err := runCLI(t, env, "", "convert", input, bad); err == nil {
		t.Fatal("expected failed run")
	}

	out, _, err := runCLI(t, env, "", "logs", "--lines", "5")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "==> ")
	requireContains(t, out, `"msg":"conversion failed"`)
}

package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"regrade/internal/sanitize"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "whitelist.py", "unused_name\n")
	path := writeFile(t, dir, FileName, `
[sentinels]
begin = "START HERE"

[sanitize]
strategy = "trailing"
no_join = true

[batch]
jobs = 4
question_from = "dir"

[checkers.lint]
codes = ["W0104"]
timeout = "5s"

[checkers.deadcode]
whitelist = "whitelist.py"

[questions.q1]
legit = [2, 10]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sentinels.Begin != "START HERE" || cfg.Sentinels.End != "END" {
		t.Errorf("sentinels = %+v", cfg.Sentinels)
	}
	if cfg.Sanitize.Strategy != sanitize.StrategyTrailing || !cfg.Sanitize.NoJoin || cfg.Sanitize.NoFold {
		t.Errorf("sanitize = %+v", cfg.Sanitize)
	}
	if cfg.Batch.Jobs != 4 || cfg.Batch.QuestionFrom != QuestionFromDir || !cfg.Batch.Cache {
		t.Errorf("batch = %+v", cfg.Batch)
	}
	if got := cfg.Checkers.Lint; len(got.Codes) != 1 || got.Timeout != 5*time.Second || got.Bin != "pylint" {
		t.Errorf("lint = %+v", got)
	}
	if want := filepath.Join(dir, "whitelist.py"); cfg.Checkers.DeadCode.Whitelist != want {
		t.Errorf("whitelist = %q, want %q", cfg.Checkers.DeadCode.Whitelist, want)
	}
	cal, err := cfg.Calibration("q1")
	if err != nil || cal == nil || cal.Lo != 2 || cal.Hi != 10 {
		t.Errorf("calibration = %v, %v", cal, err)
	}
	if cal, err := cfg.Calibration("q9"); cal != nil || err != nil {
		t.Errorf("uncalibrated question = %v, %v", cal, err)
	}
	if cfg.Path != path {
		t.Errorf("path = %q", cfg.Path)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown key", "[batch]\nworkers = 2\n", "unknown keys batch.workers"},
		{"bad strategy", "[sanitize]\nstrategy = \"all\"\n", "strategy"},
		{"bad question_from", "[batch]\nquestion_from = \"name\"\n", "question_from"},
		{"negative jobs", "[batch]\njobs = -1\n", "jobs"},
		{"equal sentinels", "[sentinels]\nbegin = \"X\"\nend = \"X\"\n", "both"},
		{"missing whitelist", "[checkers.deadcode]\nwhitelist = \"nope.py\"\n", "whitelist"},
		{"bad legit arity", "[questions.q1]\nlegit = [1]\n", "[lo, hi]"},
		{"bad legit range", "[questions.q1]\nlegit = [5, 2]\n", "invalid legit range"},
		{"empty codes", "[checkers.lint]\ncodes = []\n", "codes is empty"},
		{"broken toml", "[batch\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), FileName, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResolveWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, "[batch]\njobs = 3\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Resolve("", nested)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Batch.Jobs != 3 {
		t.Errorf("jobs = %d, want 3", cfg.Batch.Jobs)
	}
}

func TestResolveDefaults(t *testing.T) {
	cfg, err := Resolve("", t.TempDir())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Path == "" && cfg.Batch.QuestionFrom != QuestionFromStem {
		t.Errorf("defaults = %+v", cfg.Batch)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Questions = map[string]QuestionConfig{"q2": {Legit: []int{1, 4}}}
	path := filepath.Join(dir, FileName)
	if err := Write(path, cfg); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := Write(path, cfg); err == nil {
		t.Fatal("Write must refuse to overwrite")
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Fingerprint() != cfg.Fingerprint() {
		var a, b bytes.Buffer
		_ = Encode(&a, cfg)
		_ = Encode(&b, back)
		t.Errorf("fingerprint changed after round trip:\n%s\n---\n%s", a.String(), b.String())
	}
}

func TestFingerprint(t *testing.T) {
	a := Default()
	b := Default()
	b.Batch.Jobs = 16
	b.Store.DSN = "sqlite:///tmp/x.db"
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("jobs and store must not change the fingerprint")
	}
	b.Sanitize.Strategy = sanitize.StrategyQuoted
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("strategy must change the fingerprint")
	}
}

func TestCombineOrder(t *testing.T) {
	var head, x, y Digest
	x[0], y[0] = 1, 2
	if Combine(head, x, y) == Combine(head, y, x) {
		t.Error("Combine must depend on order")
	}
}

func TestCheckersDisabled(t *testing.T) {
	cfg := Default()
	cfg.Checkers.Lint.Enabled = false
	if cfg.LintChecker() != nil {
		t.Error("disabled lint checker must be nil")
	}
	if c := cfg.DeadCodeChecker(); c == nil || c.Name() != "dead_code" {
		t.Errorf("dead code checker = %v", c)
	}
}

package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"regrade/internal/flaw"
	"regrade/internal/report"
)

func withValue(r flaw.Report, name string, v flaw.Value) flaw.Report {
	out := flaw.Report{Entries: append([]flaw.Entry(nil), r.Entries...)}
	for i := range out.Entries {
		if out.Entries[i].Name == name {
			out.Entries[i].Value = v
		}
	}
	return out
}

func TestTable(t *testing.T) {
	clean := flaw.Baseline()
	dirty := withValue(clean, flaw.Semicolons, flaw.Int(2))
	records := []report.Record{
		{
			Question:   "q1",
			NewPath:    "c/q1.py",
			Comparable: true,
			Comparison: report.Comparison{Ratio: 0.75, Old: clean, New: dirty},
			Inspect:    []string{flaw.Semicolons},
		},
		{Question: "q2", NewPath: "c/q2.py", Comparison: report.Comparison{Old: clean, New: clean}},
		{Question: "q3", NewPath: "c/q3.py", Err: "boom"},
	}

	var buf bytes.Buffer
	Table(&buf, records, TableOpts{Verbose: true})
	out := buf.String()

	for _, want := range []string{
		"QUESTION  SUBMISSION  RATIO",
		"q1        c/q1.py     0.750           semicolons",
		"    semicolons             0 -> 2",
		"q2        c/q2.py     not comparable  -",
		"error: boom",
		"3 pairs: 1 comparable, 1 not comparable, 1 failed, 3 need review",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestTableTruncatesPath(t *testing.T) {
	long := strings.Repeat("d/", 40) + "x.py"
	records := []report.Record{{Question: "q", NewPath: long}}

	var buf bytes.Buffer
	Table(&buf, records, TableOpts{Width: 60})
	if strings.Contains(buf.String(), long) {
		t.Errorf("path not truncated:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "...") {
		t.Errorf("missing ellipsis:\n%s", buf.String())
	}
}

func TestFlaws(t *testing.T) {
	rep := withValue(flaw.Baseline(), flaw.ExecCalls, flaw.Int(1))

	var buf bytes.Buffer
	Flaws(&buf, rep, TableOpts{})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != len(flaw.Names()) {
		t.Fatalf("lines = %d, want %d", len(lines), len(flaw.Names()))
	}
	var marked []string
	for _, l := range lines {
		if strings.HasPrefix(l, "!") {
			marked = append(marked, strings.Fields(l)[1])
		}
	}
	if len(marked) != 1 || marked[0] != flaw.ExecCalls {
		t.Errorf("marked = %v", marked)
	}
}

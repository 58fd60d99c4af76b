package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"regrade/internal/diag"
	"regrade/internal/report"
)

func TestBuildDiagnosticsOutput(t *testing.T) {
	bag, fs := sampleBag(t)

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{PathMode: PathModeBasename})
	if out.Count != 1 {
		t.Fatalf("count = %d, want 1", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Code != "REG2001" || d.Severity != "WARNING" {
		t.Errorf("diag = %+v", d)
	}
	if d.Location.File != "alice.py" || d.Location.StartLine != 4 {
		t.Errorf("location = %+v", d.Location)
	}
	if len(d.Notes) != 0 {
		t.Errorf("notes included without IncludeNotes: %+v", d.Notes)
	}

	out = BuildDiagnosticsOutput(bag, fs, JSONOpts{PathMode: PathModeBasename, IncludeNotes: true})
	if len(out.Diagnostics[0].Notes) != 1 {
		t.Errorf("notes = %+v", out.Diagnostics[0].Notes)
	}
}

func TestBuildDiagnosticsOutputMax(t *testing.T) {
	bag, fs := sampleBag(t)
	bag.Add(diag.NewError(diag.IOLoadFileError, bag.Items()[0].Primary, "boom"))

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("max not applied: %+v", out)
	}
}

func TestRecordsJSON(t *testing.T) {
	records := []report.Record{
		{Question: "q1", OldPath: "o/q1.py", NewPath: "c/q1.py", Comparable: true,
			Comparison: report.Comparison{EditDistance: 2, Ratio: 0.5}},
		{Question: "q2", OldPath: "o/q2.py", NewPath: "c/q2.py"},
	}
	for i := range records {
		records[i].Expand()
	}

	var buf bytes.Buffer
	if err := RecordsJSON(&buf, records, nil, nil, JSONOpts{}); err != nil {
		t.Fatalf("RecordsJSON: %v", err)
	}

	var got struct {
		Records []map[string]any `json:"records"`
		Summary report.Summary   `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}
	if len(got.Records) != 2 {
		t.Fatalf("records = %d", len(got.Records))
	}
	if got.Summary.Comparable != 1 || got.Summary.NotComparable != 1 {
		t.Errorf("summary = %+v", got.Summary)
	}
	cmp, ok := got.Records[0]["comparison"].(map[string]any)
	if !ok || cmp["ratio"] != 0.5 {
		t.Errorf("comparison = %v", got.Records[0]["comparison"])
	}
}

func TestRecordsJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RecordsJSON(&buf, nil, nil, nil, JSONOpts{}); err != nil {
		t.Fatalf("RecordsJSON: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"records": []`)) {
		t.Errorf("empty records must encode as []: %s", buf.String())
	}
}

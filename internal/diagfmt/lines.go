package diagfmt

import (
	"fmt"
	"io"

	"regrade/internal/diag"
	"regrade/internal/flaw"
	"regrade/internal/region"
	"regrade/internal/source"
)

// LineOutput is one canonical logical line with the physical lines it came from.
type LineOutput struct {
	First uint32 `json:"first"`
	Last  uint32 `json:"last"`
	Text  string `json:"text"`
}

// RangeOutput is one BEGIN/END range, by logical line index.
type RangeOutput struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// LinesOutput is the JSON document of `sanitize` and `region`.
type LinesOutput struct {
	File        string           `json:"file"`
	Lines       []LineOutput     `json:"lines"`
	WellFormed  *bool            `json:"well_formed,omitempty"`
	Sentinels   string           `json:"sentinels,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics,omitempty"`
}

// FlawsOutput is the JSON document of `flaws`.
type FlawsOutput struct {
	File        string           `json:"file"`
	Flaws       map[string]any   `json:"flaws"`
	Inspect     []string         `json:"inspect"`
	Diagnostics []DiagnosticJSON `json:"diagnostics,omitempty"`
}

// FormatLinesPretty выводит строки; с numbers - с диапазоном физических строк
func FormatLinesPretty(w io.Writer, lines []source.Line, numbers bool) error {
	for _, line := range lines {
		var err error
		switch {
		case !numbers:
			_, err = fmt.Fprintln(w, line.Text)
		case line.Last > line.First:
			_, err = fmt.Fprintf(w, "%4d-%-4d| %s\n", line.First, line.Last, line.Text)
		default:
			_, err = fmt.Fprintf(w, "%9d| %s\n", line.First, line.Text)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// FormatRegionSummary печатает итог извлечения: корректность и раскладку маркеров.
func FormatRegionSummary(w io.Writer, res region.Result) error {
	state := "well-formed"
	if !res.WellFormed {
		state = "malformed"
	}
	_, err := fmt.Fprintf(w, "# sentinels %s: %s, %d lines\n", state, region.Describe(res.Flags), len(res.Lines))
	return err
}

// FormatLinesJSON выводит строки в JSON; res == nil для sanitize
func FormatLinesJSON(w io.Writer, path string, lines []source.Line, res *region.Result, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	out := LinesOutput{
		File:  path,
		Lines: make([]LineOutput, 0, len(lines)),
	}
	for _, line := range lines {
		out.Lines = append(out.Lines, LineOutput{First: line.First, Last: line.Last, Text: line.Text})
	}
	if res != nil {
		wellFormed := res.WellFormed
		out.WellFormed = &wellFormed
		out.Sentinels = region.Describe(res.Flags)
	}
	if bag != nil && bag.Len() > 0 {
		out.Diagnostics = BuildDiagnosticsOutput(bag, fs, opts).Diagnostics
	}
	return encode(w, out)
}

// FlawsJSON выводит отчёт правил одной работы
func FlawsJSON(w io.Writer, path string, rep flaw.Report, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	out := FlawsOutput{
		File:    path,
		Flaws:   rep.Map(),
		Inspect: flaw.Inspect(rep),
	}
	if out.Inspect == nil {
		out.Inspect = []string{}
	}
	if bag != nil && bag.Len() > 0 {
		out.Diagnostics = BuildDiagnosticsOutput(bag, fs, opts).Diagnostics
	}
	return encode(w, out)
}

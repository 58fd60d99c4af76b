package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"regrade/internal/flaw"
	"regrade/internal/report"
)

var tableHeader = []string{"QUESTION", "SUBMISSION", "RATIO", "INSPECT"}

// Table prints one row per record, aligned by display width, and a summary.
func Table(w io.Writer, records []report.Record, opts TableOpts) {
	p := newPalette(opts.Color)
	ok := color.New(color.FgGreen)
	if opts.Color {
		ok.EnableColor()
	} else {
		ok.DisableColor()
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Question, r.NewPath, r.RatioText(), inspectText(r)})
	}

	widths := make([]int, len(tableHeader))
	for i, h := range tableHeader {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	// путь сжимаем, если таблица не влезает в терминал
	if opts.Width > 0 {
		fixed := widths[0] + widths[2] + widths[3] + 3*2
		if room := opts.Width - fixed; room >= 20 && widths[1] > room {
			widths[1] = room
		}
	}

	cells := make([]string, len(tableHeader))
	for i, h := range tableHeader {
		cells[i] = runewidth.FillRight(h, widths[i])
	}
	fmt.Fprintln(w, p.path.Sprint(strings.TrimRight(strings.Join(cells, "  "), " ")))

	for i, row := range rows {
		rec := records[i]
		for j, cell := range row {
			cell = truncate(cell, widths[j])
			padded := runewidth.FillRight(cell, widths[j])
			switch {
			case j == 2 && rec.Err != "":
				padded = p.err.Sprint(padded)
			case j == 2 && !rec.Comparable:
				padded = p.warn.Sprint(padded)
			case j == 3 && !rec.NeedsReview():
				padded = ok.Sprint(padded)
			case j == 3:
				padded = p.warn.Sprint(padded)
			}
			cells[j] = padded
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))

		if opts.Verbose {
			writeFlawDiff(w, rec)
		}
		if opts.Diagnose {
			for _, d := range rec.Diagnostics {
				fmt.Fprintf(w, "    %s\n", p.code.Sprint(d))
			}
		}
	}

	s := report.Summarize(records)
	fmt.Fprintf(w, "\n%d pairs: %d comparable, %d not comparable, %d failed, %d need review\n",
		s.Total, s.Comparable, s.NotComparable, s.Failed, s.NeedsReview)
}

func inspectText(r report.Record) string {
	switch {
	case r.Err != "":
		return "error: " + r.Err
	case len(r.Inspect) == 0:
		return "-"
	default:
		return strings.Join(r.Inspect, ",")
	}
}

// writeFlawDiff prints rules whose value changed between the two submissions.
func writeFlawDiff(w io.Writer, r report.Record) {
	for _, name := range flaw.Names() {
		nv, ok := r.Comparison.New.Get(name)
		if !ok {
			continue
		}
		ov, _ := r.Comparison.Old.Get(name)
		if ov.Equal(nv) {
			continue
		}
		fmt.Fprintf(w, "    %-22s %s -> %s\n", name, ov.String(), nv.String())
	}
}

// Flaws prints every rule of rep with its observed value; deviations from the
// clean baseline are marked.
func Flaws(w io.Writer, rep flaw.Report, opts TableOpts) {
	p := newPalette(opts.Color)
	width := 0
	for _, e := range rep.Entries {
		width = max(width, runewidth.StringWidth(e.Name))
	}
	deviating := make(map[string]bool)
	for _, name := range flaw.Inspect(rep) {
		deviating[name] = true
	}
	for _, e := range rep.Entries {
		mark := " "
		value := e.Value.String()
		if deviating[e.Name] {
			mark = p.warn.Sprint("!")
			value = p.warn.Sprint(value)
		}
		fmt.Fprintf(w, "%s %s  %s\n", mark, runewidth.FillRight(e.Name, width), value)
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

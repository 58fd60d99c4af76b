package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"regrade/internal/diag"
	"regrade/internal/source"
)

type palette struct {
	err, warn, info, note *color.Color
	path, code, gutter    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan),
		note:   color.New(color.FgBlue),
		path:   color.New(color.Bold),
		code:   color.New(color.Faint),
		gutter: color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.path, p.code, p.gutter} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>: <SEV> <CODE>: <Message>
// затем строки исходника по Span (если Context > 0), затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		loc := location(d.Primary, fs, opts.PathMode)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.path.Sprint(loc),
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			d.Message,
		)
		if opts.Context > 0 {
			writeContext(w, p, d.Primary, fs, int(opts.Context))
		}
		if opts.ShowNotes || d.Code == diag.ObsTimings {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), location(n.Span, fs, opts.PathMode), n.Msg)
			}
		}
	}
}

// writeContext печатает строки span'а плюс ctx строк до и после.
func writeContext(w io.Writer, p palette, sp source.Span, fs *source.FileSet, ctx int) {
	if fs == nil || sp.Empty() {
		return
	}
	f := fs.Get(sp.File)
	if f == nil {
		return
	}
	from := int(sp.Start) - ctx
	from = max(from, 1)
	to := min(int(sp.End)+ctx, len(f.Lines))
	width := len(fmt.Sprint(to))
	for n := from; n <= to; n++ {
		marker := " "
		if n >= int(sp.Start) && n <= int(sp.End) {
			marker = ">"
		}
		fmt.Fprintf(w, "%s %s %s\n", p.gutter.Sprintf("%*d |", width, n), marker, f.Lines[n-1])
	}
}

// location renders "path:line" or "path:first-last"; file-level spans get the bare path.
func location(sp source.Span, fs *source.FileSet, mode PathMode) string {
	path := formatPath(sp.File, fs, mode)
	switch {
	case sp.Empty():
		return path
	case sp.End > sp.Start:
		return fmt.Sprintf("%s:%d-%d", path, sp.Start, sp.End)
	default:
		return fmt.Sprintf("%s:%d", path, sp.Start)
	}
}

func formatPath(id source.FileID, fs *source.FileSet, mode PathMode) string {
	if fs == nil {
		return "<unknown>"
	}
	f := fs.Get(id)
	if f == nil {
		return "<unknown>"
	}
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}

// Short prints one line per diagnostic, sorted, in the golden layout.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) {
	if bag == nil {
		return
	}
	out := diag.FormatShortDiagnostics(bag.Items(), fs, includeNotes)
	if out != "" {
		fmt.Fprintln(w, out)
	}
}

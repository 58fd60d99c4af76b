// Package region locates the author-editable part of a submission: the lines
// enclosed by BEGIN/END sentinel comments.
package region

import (
	"fmt"
	"strings"

	"regrade/internal/diag"
	"regrade/internal/lexer"
	"regrade/internal/source"
)

// Kind is the sentinel a comment carries.
type Kind uint8

const (
	Begin Kind = iota + 1
	End
)

func (k Kind) String() string {
	switch k {
	case Begin:
		return "begin"
	case End:
		return "end"
	}
	return "none"
}

// Flag marks a logical line whose comment holds a sentinel.
type Flag struct {
	Line int // индекс логической строки, 0-based
	Kind Kind
}

// Sentinels are the substrings searched for in comments.
type Sentinels struct {
	Begin string `toml:"begin" msgpack:"begin"`
	End   string `toml:"end" msgpack:"end"`
}

// DefaultSentinels returns BEGIN/END.
func DefaultSentinels() Sentinels {
	return Sentinels{Begin: "BEGIN", End: "END"}
}

// OrDefault fills empty sentinels with the defaults.
func (s Sentinels) OrDefault() Sentinels {
	def := DefaultSentinels()
	if s.Begin == "" {
		s.Begin = def.Begin
	}
	if s.End == "" {
		s.End = def.End
	}
	return s
}

// Result is the outcome of an extraction. A malformed result still carries
// the lines of every well-formed range that was found.
type Result struct {
	Lines      []string
	WellFormed bool
	Flags      []Flag
}

// Classify returns the sentinel carried by the comment of line, if any.
// Begin wins when a comment holds both.
func Classify(line string, s Sentinels) (Kind, bool) {
	text, ok := lexer.CommentText(line)
	if !ok {
		return 0, false
	}
	switch {
	case strings.Contains(text, s.Begin):
		return Begin, true
	case strings.Contains(text, s.End):
		return End, true
	}
	return 0, false
}

// Scan collects the sentinel flags of lines in order.
func Scan(lines []string, s Sentinels) []Flag {
	s = s.OrDefault()
	var flags []Flag
	for i, line := range lines {
		if kind, ok := Classify(line, s); ok {
			flags = append(flags, Flag{Line: i, Kind: kind})
		}
	}
	return flags
}

// WellFormed checks positional parity only: Begin at every even position,
// End at every odd one, even count.
func WellFormed(flags []Flag) bool {
	if len(flags)%2 != 0 {
		return false
	}
	for i, f := range flags {
		want := Begin
		if i%2 == 1 {
			want = End
		}
		if f.Kind != want {
			return false
		}
	}
	return true
}

// Range is a half-open range [From, To) of logical line indices.
type Range struct {
	From int
	To   int
}

// Ranges returns the enclosed line ranges of every (even, odd) flag pair
// that reads Begin then End.
func Ranges(flags []Flag) []Range {
	var out []Range
	for i := 0; i+1 < len(flags); i += 2 {
		b, e := flags[i], flags[i+1]
		if b.Kind != Begin || e.Kind != End || e.Line <= b.Line {
			continue
		}
		out = append(out, Range{From: b.Line + 1, To: e.Line})
	}
	return out
}

// Extract returns the lines enclosed by sentinel pairs.
func Extract(lines []string, s Sentinels) Result {
	_, res := New(Options{Sentinels: s}).Extract(source.LinesOf(lines))
	return res
}

// Options configures an Extractor.
type Options struct {
	Sentinels Sentinels
	File      source.FileID
	Reporter  diag.Reporter
}

// Extractor runs the extraction over logical lines with provenance.
type Extractor struct {
	opts Options
}

// New creates an Extractor.
func New(opts Options) *Extractor {
	opts.Sentinels = opts.Sentinels.OrDefault()
	return &Extractor{opts: opts}
}

// Extract returns the enclosed logical lines together with the result.
// Result.Lines holds their texts.
func (x *Extractor) Extract(lines []source.Line) ([]source.Line, Result) {
	flags := Scan(source.Texts(lines), x.opts.Sentinels)
	res := Result{WellFormed: WellFormed(flags), Flags: flags}

	var kept []source.Line
	for _, r := range Ranges(flags) {
		kept = append(kept, lines[r.From:r.To]...)
	}
	res.Lines = source.Texts(kept)

	x.diagnose(lines, res)
	return kept, res
}

func (x *Extractor) diagnose(lines []source.Line, res Result) {
	r := x.opts.Reporter
	if r == nil {
		return
	}
	file := x.opts.File
	switch {
	case len(res.Flags) == 0:
		diag.ReportInfo(r, diag.RegNoSentinels, source.Span{File: file},
			fmt.Sprintf("no %s/%s sentinel comments found", x.opts.Sentinels.Begin, x.opts.Sentinels.End)).Emit()
		return
	case !res.WellFormed:
		b := diag.ReportWarning(r, diag.RegMalformedSentinels, flagSpan(file, lines, res.Flags[0]),
			fmt.Sprintf("malformed sentinels: %s", Describe(res.Flags)))
		for _, f := range res.Flags[1:] {
			b.WithNote(flagSpan(file, lines, f), f.Kind.String())
		}
		b.Emit()
	}
	if len(res.Lines) == 0 {
		diag.ReportInfo(r, diag.RegEmptyRegion, flagSpan(file, lines, res.Flags[0]),
			"editable region is empty").Emit()
	}
}

func flagSpan(file source.FileID, lines []source.Line, f Flag) source.Span {
	if f.Line < 0 || f.Line >= len(lines) {
		return source.Span{File: file}
	}
	return source.SpanOf(file, lines[f.Line])
}

// Describe renders the flag sequence, e.g. "begin@1 end@4 begin@6".
func Describe(flags []Flag) string {
	parts := make([]string, 0, len(flags))
	for _, f := range flags {
		parts = append(parts, fmt.Sprintf("%s@%d", f.Kind, f.Line))
	}
	return strings.Join(parts, " ")
}

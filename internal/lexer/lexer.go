package lexer

import (
	"strings"

	"regrade/internal/diag"
	"regrade/internal/source"
)

// Scanner wraps the pure scanning functions with diagnostics tied to
// physical lines of one file. It keeps no scanning state between calls.
type Scanner struct {
	opts Options
}

// New creates a Scanner.
func New(opts Options) *Scanner {
	return &Scanner{opts: opts}
}

// Scan scans one line starting from st and reports a single-line literal
// that never closes.
func (s *Scanner) Scan(l source.Line, st State) LineInfo {
	info := Scan(l.Text, st)
	if info.Failed() {
		s.report(diag.LexUnterminatedQuote, diag.SevWarning, source.SpanOf(s.opts.File, l),
			"string literal is not closed on this line")
	}
	return info
}

// CommentIndex returns the comment marker index of a logical line, or -1.
// When tokenization fails and the line still contains '#', the comment can
// not be located reliably; the line is kept as is and a warning is reported.
func (s *Scanner) CommentIndex(l source.Line) int {
	info := Scan(l.Text, State{})
	if !info.Failed() {
		return info.Comment
	}
	if strings.IndexByte(l.Text, '#') >= 0 {
		s.report(diag.LexAmbiguousComment, diag.SevWarning, source.SpanOf(s.opts.File, l),
			"line has an unterminated string and a '#'; comment position unknown")
	}
	return -1
}

// Unterminated reports a triple-quoted literal that runs to the end of the file.
func (s *Scanner) Unterminated(l source.Line, st State) {
	if !st.InString() {
		return
	}
	s.report(diag.LexUnterminatedTriple, diag.SevWarning, source.SpanOf(s.opts.File, l),
		"triple-quoted string "+st.Quote+" is never closed")
}

// DanglingContinuation reports a trailing backslash on the last line.
func (s *Scanner) DanglingContinuation(l source.Line) {
	s.report(diag.LexDanglingContinuation, diag.SevInfo, source.SpanOf(s.opts.File, l),
		"line continuation at end of file")
}

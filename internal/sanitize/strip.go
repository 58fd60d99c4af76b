package sanitize

import (
	"strings"

	"regrade/internal/diag"
	"regrade/internal/lexer"
	"regrade/internal/source"
)

// stripTrailing truncates every line at its top-level comment marker.
// Lines are kept even if they become blank; normalize drops them.
func (p *Pipeline) stripTrailing(lines []source.Line) []source.Line {
	out := make([]source.Line, 0, len(lines))
	for _, l := range lines {
		if idx := p.scanner.CommentIndex(l); idx >= 0 {
			l.Text = l.Text[:idx]
		}
		out = append(out, l)
	}
	return out
}

// stripQuoted removes bare string-literal statements (docstrings and
// literals used as comments) from the start of each line.
func (p *Pipeline) stripQuoted(lines []source.Line) []source.Line {
	out := make([]source.Line, 0, len(lines))
	for _, l := range lines {
		text, ok := stripLeadingLiterals(l.Text)
		if !ok {
			diag.ReportWarning(p.reporter, diag.LexUnterminatedQuote, source.SpanOf(p.opts.File, l),
				"unterminated quote; line dropped").Emit()
			continue
		}
		l.Text = text
		out = append(out, l)
	}
	return out
}

// dropOpen removes lines that still hold an unterminated literal: their
// comment can not be located, so they can not be made canonical. A triple
// literal left open by fold was already reported there.
func (p *Pipeline) dropOpen(lines []source.Line) []source.Line {
	out := make([]source.Line, 0, len(lines))
	for _, l := range lines {
		info := p.scanner.Scan(l, lexer.State{})
		switch {
		case info.Failed():
			continue
		case info.End.InString():
			if p.opts.NoFold {
				p.scanner.Unterminated(l, info.End)
			}
			continue
		}
		out = append(out, l)
	}
	return out
}

// stripLeadingLiterals drops leading literal statements from line. A literal
// is only dropped when it forms a whole statement: it is followed by the end
// of the line, a ';', or another literal (implicit concatenation). Otherwise
// the literal is an operand and the line is left untouched. ok is false when
// a literal at the line start never closes.
func stripLeadingLiterals(line string) (string, bool) {
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	rest := line[len(indent):]
	for {
		stmt, stripped := rest, false
		for {
			end, status := lexer.LeadingLiteral(stmt)
			if status == lexer.OpenLiteral {
				return "", false
			}
			if status == lexer.NoLiteral {
				break
			}
			stmt = strings.TrimLeft(stmt[end:], " \t")
			stripped = true
		}
		if !stripped {
			break
		}
		switch {
		case stmt == "":
			return indent, true
		case stmt[0] == ';':
			rest = strings.TrimLeft(stmt[1:], " \t")
			continue
		}
		break
	}
	return indent + rest, true
}

// StripTrailing truncates each line at its comment marker.
func StripTrailing(lines []string) []string {
	p := New(Options{}, nil)
	return source.Texts(p.stripTrailing(source.LinesOf(lines)))
}

// StripQuoted removes leading bare string-literal statements. Lines whose
// leading literal never closes are dropped.
func StripQuoted(lines []string) []string {
	p := New(Options{}, nil)
	return source.Texts(p.stripQuoted(source.LinesOf(lines)))
}

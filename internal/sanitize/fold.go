package sanitize

import (
	"strings"

	"regrade/internal/lexer"
	"regrade/internal/source"
)

// NewlineMarker replaces a newline enclosed by a folded literal.
const NewlineMarker = `\n`

// endsWithContinuation reports an unescaped trailing backslash.
func endsWithContinuation(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// fold merges physical lines enclosed by a triple-quoted literal into one line.
func (p *Pipeline) fold(raw []source.Line) []source.Line {
	out := make([]source.Line, 0, len(raw))
	var (
		b      strings.Builder
		cur    source.Line
		st     lexer.State
		open   bool
		marked bool // последний байт в b - наш маркер
	)
	for _, l := range raw {
		if !open {
			b.Reset()
			cur = source.Line{First: l.First}
		}
		st = lexer.Scan(l.Text, st).End
		cur.Last = l.Last

		if !st.InString() {
			b.WriteString(l.Text)
			cur.Text = b.String()
			out = append(out, cur)
			open = false
			continue
		}

		// строка закончилась внутри литерала
		if endsWithContinuation(l.Text) {
			b.WriteString(l.Text[:len(l.Text)-1])
			marked = false
		} else {
			b.WriteString(l.Text)
			b.WriteString(NewlineMarker)
			marked = true
		}
		open = true
	}
	if open {
		cur.Text = b.String()
		if marked {
			cur.Text = cur.Text[:len(cur.Text)-len(NewlineMarker)]
		}
		p.scanner.Unterminated(cur, st)
		out = append(out, cur)
	}
	return out
}

// join merges lines ending in a continuation backslash that is real code.
func (p *Pipeline) join(lines []source.Line) []source.Line {
	out := make([]source.Line, 0, len(lines))
	var (
		cur  source.Line
		open bool
	)
	for i, l := range lines {
		if open {
			cur.Text += l.Text
			cur.Last = l.Last
		} else {
			cur = l
		}
		open = false

		if endsWithContinuation(cur.Text) && lexer.CommentIndex(cur.Text) < 0 {
			cur.Text = cur.Text[:len(cur.Text)-1]
			if i < len(lines)-1 {
				open = true
				continue
			}
			p.scanner.DanglingContinuation(cur)
		}
		out = append(out, cur)
	}
	return out
}

// Fold merges triple-quoted literals spanning several lines into single lines,
// replacing each enclosed newline with NewlineMarker.
func Fold(raw []string) []string {
	return source.Texts(New(Options{}, nil).fold(source.LinesOf(raw)))
}

// Join merges explicit line continuations.
func Join(lines []string) []string {
	return source.Texts(New(Options{}, nil).join(source.LinesOf(lines)))
}

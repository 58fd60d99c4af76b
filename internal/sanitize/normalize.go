package sanitize

import (
	"strings"

	"regrade/internal/source"
)

// terminators are trimmed from the end of every line.
const terminators = " \t\r\n;"

func normalize(lines []source.Line) []source.Line {
	out := make([]source.Line, 0, len(lines))
	for _, l := range lines {
		l.Text = strings.TrimRight(l.Text, terminators)
		if l.Text == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Normalize trims trailing whitespace and semicolons and drops blank lines.
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(lines []string) []string {
	return source.Texts(normalize(source.LinesOf(lines)))
}

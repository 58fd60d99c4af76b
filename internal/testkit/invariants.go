package testkit

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"regrade/internal/lexer"
	"regrade/internal/region"
	"regrade/internal/source"
)

// CheckLineInvariants runs a minimal set of invariants on canonical lines
// produced from f:
// 1) every line covers a non-empty physical range inside the file
// 2) lines are in source order and do not overlap
// 3) no line is empty or ends with whitespace or ';'
// 4) no line holds a comment or an unterminated literal
func CheckLineInvariants(lines []source.Line, f *source.File) error {
	if f == nil {
		return fmt.Errorf("nil file")
	}
	total, err := safecast.Conv[uint32](len(f.Lines))
	if err != nil {
		return fmt.Errorf("line count overflow: %w", err)
	}

	var prev uint32
	for i, line := range lines {
		// 1) диапазон внутри файла
		if line.First == 0 || line.First > line.Last {
			return fmt.Errorf("line %d: bad range %d-%d", i, line.First, line.Last)
		}
		if line.Last > total {
			return fmt.Errorf("line %d: range %d-%d beyond %d file lines", i, line.First, line.Last, total)
		}
		// 2) порядок
		if i > 0 && line.First <= prev {
			return fmt.Errorf("line %d: starts at %d, previous ended at %d", i, line.First, prev)
		}
		prev = line.Last
		// 3) нормализация
		if line.Text == "" {
			return fmt.Errorf("line %d: empty canonical line", i)
		}
		if trimmed := strings.TrimRight(line.Text, " \t\r\n;"); trimmed != line.Text {
			return fmt.Errorf("line %d: trailing whitespace or ';' in %q", i, line.Text)
		}
		// 4) комментарии и открытые литералы
		info := lexer.ScanLine(line.Text)
		switch {
		case info.Failed():
			return fmt.Errorf("line %d: unterminated quote at %d in %q", i, info.Unterminated, line.Text)
		case info.End.InString():
			return fmt.Errorf("line %d: open %s literal in %q", i, info.End.Quote, line.Text)
		case info.Comment >= 0:
			return fmt.Errorf("line %d: comment at %d in %q", i, info.Comment, line.Text)
		}
	}
	return nil
}

// CheckRegionInvariants checks an extraction result:
// 1) sentinel flags are in strictly increasing line order
// 2) a well-formed result alternates begin/end and has an even count
// 3) extracted lines match the canonical lines they were built from
func CheckRegionInvariants(res region.Result, canon []source.Line) error {
	for i := 1; i < len(res.Flags); i++ {
		if res.Flags[i].Line <= res.Flags[i-1].Line {
			return fmt.Errorf("flag %d at line %d after line %d", i, res.Flags[i].Line, res.Flags[i-1].Line)
		}
	}
	if res.WellFormed {
		if len(res.Flags)%2 != 0 {
			return fmt.Errorf("well-formed result with %d flags", len(res.Flags))
		}
		for i, fl := range res.Flags {
			want := region.Begin
			if i%2 == 1 {
				want = region.End
			}
			if fl.Kind != want {
				return fmt.Errorf("flag %d is %s, want %s", i, fl.Kind, want)
			}
		}
	}
	if len(res.Lines) != len(canon) {
		return fmt.Errorf("result has %d lines, canonical %d", len(res.Lines), len(canon))
	}
	for i := range canon {
		if res.Lines[i] != canon[i].Text {
			return fmt.Errorf("line %d: %q != %q", i, res.Lines[i], canon[i].Text)
		}
	}
	return nil
}

package lexer

import "strings"

// SegmentKind classifies a run of bytes inside one logical line.
type SegmentKind uint8

const (
	SegCode SegmentKind = iota
	SegString
	SegComment
)

func (k SegmentKind) String() string {
	switch k {
	case SegCode:
		return "code"
	case SegString:
		return "string"
	case SegComment:
		return "comment"
	}
	return "unknown"
}

// Segment is a half-open byte range [Start, End) of a line.
type Segment struct {
	Kind  SegmentKind
	Start int
	End   int
}

// State is the scanner state carried from one physical line to the next.
// It is a plain value: callers own it and pass it back in, so scanning many
// submissions concurrently never shares state.
type State struct {
	// Quote is the open triple delimiter, empty while scanning code.
	Quote string
}

// InString reports whether the scanner stopped inside a multi-line literal.
func (s State) InString() bool {
	return s.Quote != ""
}

// LineInfo is the result of scanning one line.
type LineInfo struct {
	Segments []Segment
	// Comment is the byte index of the top-level '#', or -1.
	Comment int
	// Unterminated is the start of a single-line literal that never closes, or -1.
	Unterminated int
	// End is the state after the last byte of the line.
	End State
}

// Failed reports whether tokenization of the line hit an unterminated
// single-line literal.
func (li LineInfo) Failed() bool {
	return li.Unterminated >= 0
}

func (li *LineInfo) add(kind SegmentKind, start, end int) {
	if end <= start {
		return
	}
	if n := len(li.Segments); n > 0 && li.Segments[n-1].Kind == kind && li.Segments[n-1].End == start {
		li.Segments[n-1].End = end
		return
	}
	li.Segments = append(li.Segments, Segment{Kind: kind, Start: start, End: end})
}

// ScanLine scans a line that starts outside any literal.
func ScanLine(line string) LineInfo {
	return Scan(line, State{})
}

// Scan classifies every byte of line as code, string or comment, starting
// from st. The earliest literal opener wins, so a triple delimiter hidden in a
// single-quoted string or a comment is never mistaken for one.
func Scan(line string, st State) LineInfo {
	info := LineInfo{Comment: -1, Unterminated: -1}
	c := NewCursor(line)

	if st.InString() {
		closed := scanUntilClose(&c, st.Quote)
		info.add(SegString, 0, c.Pos())
		if !closed {
			info.End = st
			return info
		}
	}

	for !c.EOF() {
		start := c.Pos()
		b := c.Peek()
		switch {
		case b == '#':
			info.Comment = start
			info.add(SegComment, start, len(line))
			return info

		case isQuote(b) || isIdentStartByte(b):
			if n, ok := literalStart(&c); ok {
				c.BumpN(n)
				delim, closed := scanString(&c)
				info.add(SegString, start, c.Pos())
				if !closed {
					if len(delim) == 3 {
						info.End = State{Quote: delim}
					} else {
						info.Unterminated = start
					}
					return info
				}
				continue
			}
			// идентификатор целиком, чтобы "rb" внутри "verb" не стал префиксом
			for !c.EOF() && isIdentContinueByte(c.Peek()) {
				c.Bump()
			}
			info.add(SegCode, start, c.Pos())

		default:
			c.Bump()
			info.add(SegCode, start, c.Pos())
		}
	}
	return info
}

// CommentIndex returns the byte index of the top-level comment marker of line,
// or -1. A line whose tokenization fails reports no comment.
func CommentIndex(line string) int {
	info := ScanLine(line)
	if info.Failed() {
		return -1
	}
	return info.Comment
}

// CommentText returns the text after the top-level '#' of line.
func CommentText(line string) (string, bool) {
	idx := CommentIndex(line)
	if idx < 0 {
		return "", false
	}
	return line[idx+1:], true
}

// Mask returns the code of line with every literal collapsed to `""` and the
// comment removed. Heuristic counters run over masked text so that string
// contents never match.
func (li LineInfo) Mask(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	for _, seg := range li.Segments {
		switch seg.Kind {
		case SegCode:
			b.WriteString(line[seg.Start:seg.End])
		case SegString:
			b.WriteString(`""`)
		}
	}
	return b.String()
}

// MaskLine is ScanLine followed by Mask.
func MaskLine(line string) string {
	return ScanLine(line).Mask(line)
}

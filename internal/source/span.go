package source

import (
	"fmt"
)

// Span points at a range of physical lines inside a file.
type Span struct {
	File  FileID
	Start uint32 // первая строка, 1-based, включительно
	End   uint32 // последняя строка, включительно
}

// Empty reports whether the span points at no line at all (file-level span).
func (s Span) Empty() bool {
	return s.Start == 0 && s.End == 0
}

// Len returns the number of physical lines covered.
func (s Span) Len() uint32 {
	if s.Empty() || s.End < s.Start {
		return 0
	}
	return s.End - s.Start + 1
}

func (s Span) String() string {
	if s.Start == s.End {
		return fmt.Sprintf("%d:%d", s.File, s.Start)
	}
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both spans of the same file.
func (s Span) Cover(other Span) Span {
	if s.File != other.File || other.Empty() {
		return s
	}
	if s.Empty() {
		return other
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// SpanOf returns the span of physical lines a logical line was built from.
func SpanOf(file FileID, l Line) Span {
	return Span{File: file, Start: l.First, End: l.Last}
}

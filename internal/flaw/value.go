package flaw

import (
	"strconv"
)

// ValueKind tags a Value.
type ValueKind uint8

const (
	KindInt ValueKind = iota
	KindBool
	KindText
)

// Value is the observed (or expected) result of one rule.
type Value struct {
	Kind ValueKind `msgpack:"k"`
	Int  int       `msgpack:"i,omitempty"`
	Bool bool      `msgpack:"b,omitempty"`
	Text string    `msgpack:"t,omitempty"`
}

func Int(n int) Value { return Value{Kind: KindInt, Int: n} }
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInt:
		return v.Int == o.Int
	case KindBool:
		return v.Bool == o.Bool
	default:
		return v.Text == o.Text
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.Itoa(v.Int)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return strconv.Quote(v.Text)
	}
}

// Any returns the payload as a plain Go value, for JSON output.
func (v Value) Any() any {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindBool:
		return v.Bool
	default:
		return v.Text
	}
}

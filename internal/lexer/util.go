package lexer

import "strings"

// ===== Классификаторы =====

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b >= 0x80
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || (b >= '0' && b <= '9')
}

func isQuote(b byte) bool {
	return b == '"' || b == '\''
}

// IsIdentByte reports whether b can continue an identifier.
func IsIdentByte(b byte) bool {
	return isIdentContinueByte(b)
}

// isStringPrefix reports whether ident is a valid literal prefix (r, b, u, f and
// the two-letter combinations), in any case.
func isStringPrefix(ident string) bool {
	switch strings.ToLower(ident) {
	case "r", "u", "b", "f", "br", "rb", "fr", "rf":
		return true
	}
	return false
}

// ===== Матчеры последовательностей (жадность) =====

// tripleAt returns the triple delimiter starting at the cursor, if any.
func tripleAt(c *Cursor) string {
	b0, b1, b2, ok := c.Peek3()
	if !ok || !isQuote(b0) || b0 != b1 || b1 != b2 {
		return ""
	}
	return string([]byte{b0, b1, b2})
}

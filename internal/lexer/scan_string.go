package lexer

// literalStart проверяет, начинается ли под курсором строковый литерал
// (с необязательным префиксом r/b/u/f и их парами). Курсор не двигается.
func literalStart(c *Cursor) (prefixLen int, ok bool) {
	if isQuote(c.Peek()) {
		return 0, true
	}
	limit := int(c.limit())
	off := c.Pos()
	for n := 1; n <= 2 && off+n < limit; n++ {
		if !isStringPrefix(c.Src[off : off+n]) {
			return 0, false
		}
		if isQuote(c.Src[off+n]) {
			return n, true
		}
	}
	return 0, false
}

// scanString съедает литерал, начиная с открывающей кавычки под курсором.
// Возвращает разделитель ("'", "\"", "'''" или "\"\"\"") и признак закрытия.
// Для незакрытого литерала курсор оказывается в конце строки.
func scanString(c *Cursor) (delim string, closed bool) {
	if t := tripleAt(c); t != "" {
		c.BumpN(3)
		return t, scanUntilClose(c, t)
	}
	delim = string(c.Bump())
	return delim, scanUntilClose(c, delim)
}

// scanUntilClose ищет закрывающий разделитель; '\' экранирует следующий байт,
// в том числе маркер свёрнутого перевода строки "\n".
func scanUntilClose(c *Cursor, delim string) bool {
	for !c.EOF() {
		if c.Peek() == '\\' {
			c.Bump()
			c.Bump()
			continue
		}
		if c.HasPrefix(delim) {
			c.BumpN(len(delim))
			return true
		}
		c.Bump()
	}
	return false
}

// LiteralStatus describes the literal found at the start of a text.
type LiteralStatus uint8

const (
	// NoLiteral means the text does not start with a string literal.
	NoLiteral LiteralStatus = iota
	// ClosedLiteral means a complete literal was found.
	ClosedLiteral
	// OpenLiteral means a literal starts but is never closed.
	OpenLiteral
)

// LeadingLiteral reports whether s starts with a string literal and returns
// the index just past it. For an open literal the index is len(s).
func LeadingLiteral(s string) (end int, status LiteralStatus) {
	c := NewCursor(s)
	n, ok := literalStart(&c)
	if !ok {
		return 0, NoLiteral
	}
	c.BumpN(n)
	if _, closed := scanString(&c); !closed {
		return c.Pos(), OpenLiteral
	}
	return c.Pos(), ClosedLiteral
}

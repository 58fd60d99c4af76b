package flaw

import (
	"regexp"
	"strings"

	"regrade/internal/lexer"
)

// Все счётчики смотрят только на код: литералы схлопнуты в "", комментарий отрезан.

var (
	reExec           = regexp.MustCompile(`(?:^|[^.\w])exec\s*\(`)
	reGlobalNonlocal = regexp.MustCompile(`\b(?:global|nonlocal)\b`)
	reIf             = regexp.MustCompile(`\bif\b`)
	reElse           = regexp.MustCompile(`\belse\b`)
	reAndOr          = regexp.MustCompile(`\b(?:and|or)\b`)
	reEmptyReturn    = regexp.MustCompile(`^return\s*\(?\s*[rRbBuU]{0,2}(?:""|'')\s*\)?$`)

	// x == "a" or "b"
	reSillyCompare = regexp.MustCompile(`(?:==|!=)\s*""\s*(?:or|and)\s+(?:not\s+)?""`)
	// "a" or x: a literal as the left operand
	reSillyLeft = regexp.MustCompile(`(?:^|[(,]|[^=!<>]=|\b(?:if|elif|while|return|not|assert))\s*""\s*(?:or|and)\b`)
	// if x or "b": a bare literal as the last operand of a condition
	reSillyRight = regexp.MustCompile(`\b(?:or|and)\s+(?:not\s+)?""\s*(?::|\)|$)`)
)

// headerKeywords start a compound statement whose body may follow ':'.
var headerKeywords = map[string]bool{
	"if": true, "elif": true, "else": true, "for": true, "while": true,
	"def": true, "class": true, "with": true, "try": true, "except": true,
	"finally": true, "async": true, "match": true, "case": true,
}

// conditionKeywords open a boolean context.
var conditionKeywords = map[string]bool{
	"if": true, "elif": true, "while": true, "assert": true,
}

// statementKeywords start statements where and/or is a normal operand.
var statementKeywords = map[string]bool{
	"if": true, "elif": true, "while": true, "assert": true, "return": true,
	"yield": true, "lambda": true, "for": true, "with": true, "def": true,
	"class": true, "raise": true, "del": true, "import": true, "from": true,
	"except": true, "match": true, "case": true,
}

// keywords never name a callee, so '(' after them is a bare paren.
var keywords = map[string]bool{
	"and": true, "or": true, "not": true, "in": true, "is": true, "if": true,
	"elif": true, "else": true, "while": true, "for": true, "return": true,
	"yield": true, "assert": true, "del": true, "import": true, "from": true,
	"lambda": true, "await": true, "raise": true, "with": true, "as": true,
	"except": true,
}

func code(line string) string {
	return strings.TrimSpace(lexer.MaskLine(line))
}

func firstWord(s string) string {
	i := 0
	for i < len(s) && lexer.IsIdentByte(s[i]) {
		i++
	}
	return s[:i]
}

func lastWord(s string) string {
	i := len(s)
	for i > 0 && lexer.IsIdentByte(s[i-1]) {
		i--
	}
	return s[i:]
}

// topLevel blanks every byte enclosed by brackets, keeping offsets.
func topLevel(s string) string {
	b := []byte(s)
	depth := 0
	for i, c := range b {
		switch c {
		case '(', '[', '{':
			depth++
			b[i] = ' '
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
			b[i] = ' '
		default:
			if depth > 0 {
				b[i] = ' '
			}
		}
	}
	return string(b)
}

// assignIndex returns the first top-level '=' of s that assigns, or -1.
// Comparisons and ':=' are skipped; augmented is set for '+=' and friends.
// isCode, when non-nil, hides bytes that are not code.
func assignIndex(s string, isCode func(i int) bool) (idx int, augmented bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		if isCode != nil && !isCode(i) {
			continue
		}
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case '=':
			if depth > 0 {
				continue
			}
			if i+1 < len(s) && s[i+1] == '=' {
				i++
				continue
			}
			if i > 0 {
				prev := s[i-1]
				if strings.IndexByte("!<>:", prev) >= 0 {
					continue
				}
				if strings.IndexByte("+-*/%&|^@", prev) >= 0 {
					return i, true
				}
			}
			return i, false
		}
	}
	return -1, false
}

func countColonCode(line string) int {
	c := code(line)
	if !headerKeywords[firstWord(c)] {
		return 0
	}
	depth := 0
	for i := 0; i < len(c); i++ {
		switch c[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth > 0 || (i+1 < len(c) && c[i+1] == '=') {
				continue
			}
			if strings.TrimSpace(c[i+1:]) != "" {
				return 1
			}
			return 0
		}
	}
	return 0
}

func countSemicolons(line string) int {
	return strings.Count(code(line), ";")
}

// countNakedCommas counts commas that are not inside a call/def argument
// list or a [] / {} display. Commas in a bare tuple paren still count.
func countNakedCommas(line string) int {
	c := code(line)
	var stack []bool // true: скобка исключает запятые
	n := 0
	for i := 0; i < len(c); i++ {
		switch c[i] {
		case '(':
			stack = append(stack, isCallParen(c[:i]))
		case '[', '{':
			stack = append(stack, true)
		case ')', ']', '}':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ',':
			excluded := false
			for _, ex := range stack {
				excluded = excluded || ex
			}
			if !excluded {
				n++
			}
		}
	}
	return n
}

// isCallParen reports whether a '(' preceded by prefix opens an argument
// list: it follows a name that is not a keyword, or a closing bracket.
func isCallParen(prefix string) bool {
	p := strings.TrimRight(prefix, " \t")
	if p == "" {
		return false
	}
	switch last := p[len(p)-1]; {
	case last == ')' || last == ']':
		return true
	case lexer.IsIdentByte(last):
		w := lastWord(p)
		return !keywords[w]
	}
	return false
}

func countExecCalls(line string) int {
	return len(reExec.FindAllStringIndex(code(line), -1))
}

func countGlobalNonlocal(line string) int {
	return len(reGlobalNonlocal.FindAllStringIndex(code(line), -1))
}

// countTernaries counts `a if c else b`: an `if` that is not the statement
// keyword and has an `else` after it on the same line.
func countTernaries(line string) int {
	c := code(line)
	n := 0
	for _, loc := range reIf.FindAllStringIndex(c, -1) {
		if loc[0] == 0 {
			continue
		}
		if reElse.MatchString(c[loc[1]:]) {
			n++
		}
	}
	return n
}

func countSelfAssignment(line string) int {
	info := lexer.ScanLine(line)
	end := len(line)
	if info.Comment >= 0 {
		end = info.Comment
	}
	inCode := make([]bool, len(line))
	for _, seg := range info.Segments {
		if seg.Kind != lexer.SegCode {
			continue
		}
		for i := seg.Start; i < seg.End; i++ {
			inCode[i] = true
		}
	}
	idx, augmented := assignIndex(line[:end], func(i int) bool { return inCode[i] })
	if idx < 0 || augmented {
		return 0
	}
	lhs := strings.TrimSpace(line[:idx])
	rhs := strings.TrimSpace(line[idx+1 : end])
	if lhs != "" && lhs == rhs {
		return 1
	}
	return 0
}

func countEmptyStringReturn(line string) int {
	if reEmptyReturn.MatchString(strings.TrimSpace(line)) {
		return 1
	}
	return 0
}

// countSillyAndOr flags boolean operators applied to a literal operand,
// which is always truthy (or always falsy) and so vacuous.
func countSillyAndOr(line string) int {
	c := code(line)
	switch {
	case reSillyCompare.MatchString(c), reSillyLeft.MatchString(c):
		return 1
	case conditionKeywords[firstWord(c)] && reSillyRight.MatchString(c):
		return 1
	}
	return 0
}

// countStrayAndOr counts top-level and/or in expression statements, where
// they act as control flow rather than in a condition or an assignment.
func countStrayAndOr(line string) int {
	c := code(line)
	if statementKeywords[firstWord(c)] {
		return 0
	}
	if idx, _ := assignIndex(c, nil); idx >= 0 {
		return 0
	}
	return len(reAndOr.FindAllStringIndex(topLevel(c), -1))
}

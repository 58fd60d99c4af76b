package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0
	// Лексические
	LexInfo                 Code = 1000
	LexUnterminatedTriple   Code = 1001
	LexUnterminatedQuote    Code = 1002
	LexAmbiguousComment     Code = 1003
	LexDanglingContinuation Code = 1004

	// Пользовательский регион
	RegInfo               Code = 2000
	RegMalformedSentinels Code = 2001
	RegEmptyRegion        Code = 2002
	RegNoSentinels        Code = 2003

	// Сравнение
	CmpInfo          Code = 3000
	CmpNotComparable Code = 3001
	CmpNeedsReview   Code = 3002

	// Внешние анализаторы
	ToolInfo        Code = 4000
	ToolUnavailable Code = 4001
	ToolFailed      Code = 4002
	ToolDirty       Code = 4003

	IOInfo            Code = 5000
	IOLoadFileError   Code = 5001
	IOMissingOriginal Code = 5002
	IOCacheError      Code = 5003

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:             "Unknown error",
		LexInfo:                 "Lexical information",
		LexUnterminatedTriple:   "Unterminated triple-quoted string",
		LexUnterminatedQuote:    "Unterminated quote",
		LexAmbiguousComment:     "Comment marker after unterminated string",
		LexDanglingContinuation: "Line continuation at end of file",
		RegInfo:                 "Region information",
		RegMalformedSentinels:   "Malformed region sentinels",
		RegEmptyRegion:          "Editable region is empty",
		RegNoSentinels:          "No region sentinels found",
		CmpInfo:                 "Comparison information",
		CmpNotComparable:        "Submission is not comparable",
		CmpNeedsReview:          "Submission needs manual inspection",
		ToolInfo:                "Checker information",
		ToolUnavailable:         "Checker could not be started",
		ToolFailed:              "Checker failed",
		ToolDirty:               "Checker reported findings",
		IOInfo:                  "I/O information",
		IOLoadFileError:         "I/O load file error",
		IOMissingOriginal:       "Original submission not found",
		IOCacheError:            "Result cache error",
		ObsInfo:                 "Observability information",
		ObsTimings:              "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("REG%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CMP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("TOOL%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

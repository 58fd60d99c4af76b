package lexer

import (
	"regrade/internal/diag"
	"regrade/internal/source"
)

// Options configures a Scanner.
type Options struct {
	Reporter diag.Reporter // может быть nil — тогда диагностики игнорируем
	File     source.FileID
}

func (s *Scanner) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	if s.opts.Reporter != nil {
		s.opts.Reporter.Report(code, sev, sp, msg, nil)
	}
}

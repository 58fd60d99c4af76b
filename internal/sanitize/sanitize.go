// Package sanitize reduces a submission to its canonical logical lines:
// folded literals, joined continuations, no comments, no blank lines.
package sanitize

import (
	"regrade/internal/diag"
	"regrade/internal/lexer"
	"regrade/internal/region"
	"regrade/internal/source"
)

// Pipeline runs the sanitizing stages with one set of Options. It holds no
// state between calls and is safe for concurrent use when its Reporter is.
type Pipeline struct {
	opts     Options
	reporter diag.Reporter
	scanner  *lexer.Scanner
}

// New creates a Pipeline. r may be nil.
func New(opts Options, r diag.Reporter) *Pipeline {
	if r == nil {
		r = diag.NopReporter{}
	}
	opts.Sentinels = opts.Sentinels.OrDefault()
	return &Pipeline{
		opts:     opts,
		reporter: r,
		scanner:  lexer.New(lexer.Options{Reporter: r, File: opts.File}),
	}
}

// Options returns the pipeline configuration.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Logical folds and joins raw lines. Comments are still present.
func (p *Pipeline) Logical(raw []source.Line) []source.Line {
	lines := raw
	if !p.opts.NoFold {
		lines = p.fold(lines)
	}
	if !p.opts.NoJoin {
		lines = p.join(lines)
	}
	return lines
}

// Canonical strips comments and normalizes logical lines.
func (p *Pipeline) Canonical(lines []source.Line) []source.Line {
	switch p.opts.Strategy {
	case StrategyTrailing:
		lines = p.stripTrailing(lines)
	case StrategyQuoted:
		lines = p.stripQuoted(lines)
	default:
		lines = p.stripQuoted(p.stripTrailing(lines))
	}
	return normalize(p.dropOpen(lines))
}

// Sanitize runs the whole pipeline over the entire file.
func (p *Pipeline) Sanitize(raw []source.Line) []source.Line {
	return p.Canonical(p.Logical(raw))
}

// ExtractUserRegion extracts the sentinel-bounded region from the
// comment-visible logical lines and canonicalizes it.
func (p *Pipeline) ExtractUserRegion(raw []source.Line) ([]source.Line, region.Result) {
	x := region.New(region.Options{
		Sentinels: p.opts.Sentinels,
		File:      p.opts.File,
		Reporter:  p.reporter,
	})
	kept, res := x.Extract(p.Logical(raw))
	canon := p.Canonical(kept)
	res.Lines = source.Texts(canon)
	return canon, res
}

// Sanitize returns the canonical logical lines of raw.
func Sanitize(raw []string, opts Options, r diag.Reporter) []string {
	return source.Texts(New(opts, r).Sanitize(source.LinesOf(raw)))
}

// ExtractUserRegion returns the canonical lines of the editable region of raw.
func ExtractUserRegion(raw []string, opts Options, r diag.Reporter) region.Result {
	_, res := New(opts, r).ExtractUserRegion(source.LinesOf(raw))
	return res
}

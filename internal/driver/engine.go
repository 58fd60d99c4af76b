package driver

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"regrade/internal/checker"
	"regrade/internal/config"
	"regrade/internal/diag"
	"regrade/internal/observ"
	"regrade/internal/progress"
	"regrade/internal/report"
	"regrade/internal/sanitize"
	"regrade/internal/source"
	"regrade/internal/trace"
)

// DefaultMaxDiagnostics bounds the bag of one pair.
const DefaultMaxDiagnostics = 100

// Engine processes pairs with one configuration. It is safe for concurrent use.
type Engine struct {
	cfg      *config.Config
	fs       *source.FileSet
	lint     checker.Checker
	deadCode checker.Checker
	cache    *DiskCache
	sink     progress.Sink
	timer    *observ.Timer
	maxDiag  int
	fp       config.Digest
}

// EngineOptions are the optional collaborators of an Engine.
type EngineOptions struct {
	FileSet        *source.FileSet
	Cache          *DiskCache
	Sink           progress.Sink
	Timer          *observ.Timer
	MaxDiagnostics int
	// NoCheckers disables both external tools regardless of config.
	NoCheckers bool
}

// NewEngine builds an engine; cfg must already be validated.
func NewEngine(cfg *config.Config, opts EngineOptions) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.FileSet == nil {
		opts.FileSet = source.NewFileSet()
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = DefaultMaxDiagnostics
	}
	e := &Engine{
		cfg:     cfg,
		fs:      opts.FileSet,
		cache:   opts.Cache,
		sink:    opts.Sink,
		timer:   opts.Timer,
		maxDiag: opts.MaxDiagnostics,
		fp:      cfg.Fingerprint(),
	}
	if !opts.NoCheckers {
		e.lint = cfg.LintChecker()
		e.deadCode = cfg.DeadCodeChecker()
	}
	return e
}

// FileSet returns the file set every loaded submission lands in.
func (e *Engine) FileSet() *source.FileSet {
	return e.fs
}

func (e *Engine) emit(pair string, stage progress.Stage, status progress.Status, err error, elapsed time.Duration) {
	if e.sink == nil {
		return
	}
	e.sink.OnEvent(progress.Event{Pair: pair, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

func (e *Engine) stage(pair string, stage progress.Stage, start time.Time) {
	d := time.Since(start)
	if e.timer != nil {
		e.timer.Add(string(stage), d)
	}
	e.emit(pair, stage, progress.StatusWorking, nil, d)
}

// Load reads a submission into the file set. A file that cannot be read is
// registered as an empty virtual file so the diagnostic can point at it.
func (e *Engine) Load(path string, r diag.Reporter) (*source.File, error) {
	id, err := e.fs.Load(path)
	if err != nil {
		id = e.fs.AddVirtual(path, nil)
		diag.ReportError(r, diag.IOLoadFileError, source.Span{File: id}, fmt.Sprintf("failed to load file: %v", err)).Emit()
		return nil, err
	}
	return e.fs.Get(id), nil
}

// Sanitize extracts and canonicalizes the editable region of f.
func (e *Engine) Sanitize(f *source.File, r diag.Reporter) report.Side {
	opts := e.cfg.SanitizeOptions()
	opts.File = f.ID
	_, res := sanitize.New(opts, r).ExtractUserRegion(f.RawLines())
	return report.Side{Path: f.Path, Region: res}
}

// Check runs the configured tools over the raw content of f.
func (e *Engine) Check(ctx context.Context, f *source.File, side *report.Side, r diag.Reporter) {
	side.Lint = e.runChecker(ctx, e.lint, f, r)
	side.DeadCode = e.runChecker(ctx, e.deadCode, f, r)
}

func (e *Engine) runChecker(ctx context.Context, c checker.Checker, f *source.File, r diag.Reporter) checker.Outcome {
	if c == nil {
		return checker.Outcome{}
	}
	span, _ := trace.Start(ctx, trace.ScopePair, "check:"+c.Name())
	out := checker.Run(ctx, c, filepath.Base(f.Path), f.Content)
	span.End(outcomeLabel(out))

	file := source.Span{File: f.ID}
	switch {
	case out.Unavailable:
		diag.ReportWarning(r, diag.ToolUnavailable, file, fmt.Sprintf("%s: %s", c.Name(), out.Err)).Emit()
	case out.Failed():
		diag.ReportWarning(r, diag.ToolFailed, file, fmt.Sprintf("%s: %s", c.Name(), out.Err)).Emit()
	case !out.Result.Clean:
		diag.ReportInfo(r, diag.ToolDirty, file, fmt.Sprintf("%s reported findings", c.Name())).Emit()
	}
	return out
}

func outcomeLabel(o checker.Outcome) string {
	switch {
	case o.Failed():
		return "failed"
	case o.Result.Clean:
		return "clean"
	default:
		return "dirty"
	}
}

// Process runs one pair end to end and returns its record together with the
// diagnostics of the pair. Per-pair failures end up on the record.
func (e *Engine) Process(ctx context.Context, p Pair) (report.Record, *diag.Bag) {
	bag := diag.NewBag(e.maxDiag)
	name := p.Name()

	span, ctx := trace.Start(trace.WithPair(ctx, name, p.Question), trace.ScopePair, "pair")
	rec, status := e.process(ctx, p, bag)
	span.End(string(status))

	if status == progress.StatusError {
		rec.Diagnostics = renderDiagnostics(bag, e.fs)
	}
	var err error
	if rec.Err != "" {
		err = errors.New(rec.Err)
	}
	e.emit(name, progress.StageCompare, status, err, 0)
	return rec, bag
}

func (e *Engine) process(ctx context.Context, p Pair, bag *diag.Bag) (report.Record, progress.Status) {
	name := p.Name()
	// pylint repeats some messages for the same line
	r := diag.NewDedupReporter(diag.BagReporter{Bag: bag})

	start := time.Now()
	e.emit(name, progress.StageLoad, progress.StatusWorking, nil, 0)
	newFile, err := e.Load(p.New, r)
	if err != nil {
		return report.Failed(p.Question, p.Old, p.New, err), progress.StatusError
	}
	if p.Old == "" {
		err := fmt.Errorf("original of %s not found", p.Rel)
		diag.ReportError(r, diag.IOMissingOriginal, source.Span{File: newFile.ID}, err.Error()).Emit()
		return report.Failed(p.Question, p.Old, p.New, err), progress.StatusError
	}
	oldFile, err := e.Load(p.Old, r)
	if err != nil {
		return report.Failed(p.Question, p.Old, p.New, err), progress.StatusError
	}
	e.stage(name, progress.StageLoad, start)

	key := RecordKey(e.fp, p, oldFile.Hash, newFile.Hash)
	if rec, ok, err := e.cache.Get(key); err != nil {
		diag.ReportWarning(r, diag.IOCacheError, source.Span{File: newFile.ID}, fmt.Sprintf("cache read failed: %v", err)).Emit()
	} else if ok {
		trace.Point(ctx, trace.ScopePair, "cache-hit", hex.EncodeToString(key[:4]))
		return rec, progress.StatusCached
	}

	if err := ctx.Err(); err != nil {
		return report.Failed(p.Question, p.Old, p.New, err), progress.StatusError
	}

	start = time.Now()
	e.emit(name, progress.StageSanitize, progress.StatusWorking, nil, 0)
	oldSide := e.Sanitize(oldFile, r)
	newSide := e.Sanitize(newFile, r)
	oldSide.Path, newSide.Path = p.Old, p.New
	e.stage(name, progress.StageSanitize, start)

	start = time.Now()
	e.emit(name, progress.StageCheck, progress.StatusWorking, nil, 0)
	e.Check(ctx, oldFile, &oldSide, r)
	e.Check(ctx, newFile, &newSide, r)
	e.stage(name, progress.StageCheck, start)

	start = time.Now()
	e.emit(name, progress.StageCompare, progress.StatusWorking, nil, 0)
	cal, err := e.cfg.Calibration(p.Question)
	if err != nil {
		return report.Failed(p.Question, p.Old, p.New, err), progress.StatusError
	}
	rec := report.Assemble(report.Input{
		Question:    p.Question,
		Old:         oldSide,
		New:         newSide,
		Calibration: cal,
	})
	e.diagnoseRecord(rec, newFile, r)
	rec.Diagnostics = renderDiagnostics(bag, e.fs)
	e.stage(name, progress.StageCompare, start)

	// записи с упавшими инструментами не кэшируем: следующий прогон повторит проверку
	if rec.Err == "" && !anyFailed(oldSide, newSide) {
		if err := e.cache.Put(key, rec); err != nil {
			diag.ReportWarning(r, diag.IOCacheError, source.Span{File: newFile.ID}, fmt.Sprintf("cache write failed: %v", err)).Emit()
		}
	}
	if rec.Err != "" {
		return rec, progress.StatusError
	}
	return rec, progress.StatusDone
}

func anyFailed(sides ...report.Side) bool {
	for _, s := range sides {
		if s.Lint.Failed() || s.DeadCode.Failed() {
			return true
		}
	}
	return false
}

func (e *Engine) diagnoseRecord(rec report.Record, f *source.File, r diag.Reporter) {
	file := source.Span{File: f.ID}
	if !rec.Comparable && rec.Err == "" {
		diag.ReportWarning(r, diag.CmpNotComparable, file, "corrected submission has an empty editable region").Emit()
	}
	if len(rec.Inspect) > 0 {
		diag.ReportInfo(r, diag.CmpNeedsReview, file, "inspect: "+strings.Join(rec.Inspect, ", ")).Emit()
	}
}

func renderDiagnostics(bag *diag.Bag, fs *source.FileSet) []string {
	if bag.Len() == 0 {
		return nil
	}
	out := diag.FormatShortDiagnostics(bag.Items(), fs, false)
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

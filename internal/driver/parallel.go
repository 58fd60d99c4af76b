package driver

import (
	"context"
	"encoding/hex"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"regrade/internal/config"
	"regrade/internal/diag"
	"regrade/internal/observ"
	"regrade/internal/progress"
	"regrade/internal/report"
	"regrade/internal/source"
	"regrade/internal/store"
	"regrade/internal/trace"
)

// BatchOptions configures a batch run.
type BatchOptions struct {
	Config         *config.Config
	Jobs           int // 0 = config, then GOMAXPROCS
	Cache          *DiskCache
	Store          *store.Store
	Sink           progress.Sink
	MaxDiagnostics int
	NoCheckers     bool
	Timings        bool
	BaseDir        string
}

// BatchResult is everything a batch run produced.
type BatchResult struct {
	FileSet *source.FileSet
	Pairs   []Pair
	Records []report.Record // отсортированы report.Sort
	Bag     *diag.Bag       // диагностики всех пар плюс тайминги
	Timer   *observ.Timer
	RunID   int64 // 0, если результаты не сохранялись
}

// Batch pairs the submissions under corrections with their originals and
// processes the pairs in parallel. Only configuration, discovery and storage
// errors are returned; per-pair failures live on the records.
func Batch(ctx context.Context, originals, corrections string, opts BatchOptions) (*BatchResult, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	runSpan, ctx := trace.Start(ctx, trace.ScopeDriver, "batch")
	defer runSpan.End("")

	started := time.Now()
	timer := observ.NewTimer()

	idx := timer.Begin("discover")
	discover, _ := trace.Start(ctx, trace.ScopePass, "discover")
	pairs, err := DiscoverPairs(originals, corrections, cfg.Batch.QuestionFrom)
	discover.End(fmt.Sprintf("%d pairs", len(pairs)))
	timer.End(idx, fmt.Sprintf("%d pairs", len(pairs)))
	if err != nil {
		return nil, fmt.Errorf("discover pairs: %w", err)
	}

	res := &BatchResult{
		FileSet: source.NewFileSetWithBase(opts.BaseDir),
		Pairs:   pairs,
		Records: make([]report.Record, len(pairs)),
		Bag:     diag.NewBag(max(opts.MaxDiagnostics, DefaultMaxDiagnostics) * max(len(pairs), 1)),
		Timer:   timer,
	}
	engine := NewEngine(cfg, EngineOptions{
		FileSet:        res.FileSet,
		Cache:          opts.Cache,
		Sink:           opts.Sink,
		Timer:          timer,
		MaxDiagnostics: opts.MaxDiagnostics,
		NoCheckers:     opts.NoCheckers,
	})

	for _, p := range pairs {
		engine.emit(p.Name(), progress.StageLoad, progress.StatusQueued, nil, 0)
	}
	counts := trace.ProgressFrom(ctx)
	counts.Start(len(pairs))

	// Настраиваем параллелизм
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = cfg.Batch.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	bags := make([]*diag.Bag, len(pairs))

	idx = timer.Begin("pairs")
	pass, pctx := trace.Start(ctx, trace.ScopePass, "pairs")
	if len(pairs) > 0 {
		g, gctx := errgroup.WithContext(pctx)
		g.SetLimit(min(jobs, len(pairs)))

		for i, p := range pairs {
			g.Go(func() error {
				// Проверка отмены
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				res.Records[i], bags[i] = engine.Process(gctx, p)
				counts.Finish(res.Records[i].Err != "")
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			pass.End("cancelled")
			timer.End(idx, "cancelled")
			return nil, err
		}
	}
	pass.End("")
	timer.End(idx, fmt.Sprintf("jobs=%d", jobs))

	for _, b := range bags {
		if b != nil {
			res.Bag.Merge(b)
		}
	}
	report.Sort(res.Records)

	if opts.Store != nil {
		idx = timer.Begin("store")
		engine.emit("", progress.StageStore, progress.StatusWorking, nil, 0)
		fp := cfg.Fingerprint()
		id, err := opts.Store.SaveRun(ctx, store.Run{
			StartedAt:   started,
			Fingerprint: hex.EncodeToString(fp[:]),
			Originals:   originals,
			Corrections: corrections,
		}, res.Records)
		timer.End(idx, "")
		if err != nil {
			engine.emit("", progress.StageStore, progress.StatusError, err, 0)
			return nil, fmt.Errorf("store results: %w", err)
		}
		engine.emit("", progress.StageStore, progress.StatusDone, nil, 0)
		res.RunID = id
	}

	if opts.Timings {
		rep := timer.Report()
		appendTimingDiagnostic(res.Bag, timingPayload{
			Kind:    "batch",
			Path:    corrections,
			TotalMS: rep.TotalMS,
			Phases:  rep.Phases,
		})
	}
	return res, nil
}

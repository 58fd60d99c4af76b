package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"regrade/internal/config"
	"regrade/internal/diagfmt"
	"regrade/internal/driver"
	"regrade/internal/report"
	"regrade/internal/store"
)

var batchCmd = &cobra.Command{
	Use:   "batch [flags] <originals-dir> <corrections-dir>",
	Short: "Compare every corrected submission with its original",
	Long: `Batch pairs each *.py file under <corrections-dir> with the file at the
same relative path under <originals-dir>, processes the pairs in parallel and
prints one row per pair. With --last it prints the latest run stored in --db
instead.`,
	Args: func(cmd *cobra.Command, args []string) error {
		last, _ := cmd.Flags().GetBool("last")
		if last {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().Int("jobs", 0, "max parallel pairs (0 = [batch].jobs or GOMAXPROCS)")
	batchCmd.Flags().String("db", "", "store results in sqlite file or postgres:// DSN (overrides [store].dsn)")
	batchCmd.Flags().Bool("no-cache", false, "do not read or write the record cache")
	batchCmd.Flags().Bool("clear-cache", false, "drop every cached record before the run")
	batchCmd.Flags().Bool("no-checkers", false, "skip the external lint and dead-code tools")
	batchCmd.Flags().BoolP("verbose", "v", false, "print every rule value of both submissions")
	batchCmd.Flags().Bool("diagnose", false, "print the diagnostics of each pair under its row")
	batchCmd.Flags().Bool("last", false, "print the latest stored run instead of processing")
}

type batchFlags struct {
	jobs       int
	db         string
	noCache    bool
	clearCache bool
	noCheckers bool
	verbose    bool
	diagnose   bool
	last       bool
}

func readBatchFlags(cmd *cobra.Command) (batchFlags, error) {
	var f batchFlags
	var err error
	if f.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return f, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if f.db, err = cmd.Flags().GetString("db"); err != nil {
		return f, fmt.Errorf("failed to get db flag: %w", err)
	}
	if f.noCache, err = cmd.Flags().GetBool("no-cache"); err != nil {
		return f, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if f.clearCache, err = cmd.Flags().GetBool("clear-cache"); err != nil {
		return f, fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	if f.noCheckers, err = cmd.Flags().GetBool("no-checkers"); err != nil {
		return f, fmt.Errorf("failed to get no-checkers flag: %w", err)
	}
	if f.verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
		return f, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if f.diagnose, err = cmd.Flags().GetBool("diagnose"); err != nil {
		return f, fmt.Errorf("failed to get diagnose flag: %w", err)
	}
	if f.last, err = cmd.Flags().GetBool("last"); err != nil {
		return f, fmt.Errorf("failed to get last flag: %w", err)
	}
	if f.jobs < 0 {
		return f, fmt.Errorf("--jobs must be >= 0, got %d", f.jobs)
	}
	return f, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	out, err := readOutputOptions(cmd)
	if err != nil {
		return err
	}
	flags, err := readBatchFlags(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if flags.db != "" {
		cfg.Store.DSN = flags.db
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var st *store.Store
	if cfg.Store.DSN != "" {
		if st, err = store.Open(ctx, cfg.Store.DSN); err != nil {
			return err
		}
		defer st.Close()
	}
	if flags.last {
		return printLastRun(ctx, cmd, st, out, flags)
	}

	cache := openCache(cmd, cfg, flags, out)

	uiValue, err := cmd.Root().PersistentFlags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	opts := driver.BatchOptions{
		Config:         cfg,
		Jobs:           flags.jobs,
		Cache:          cache,
		Store:          st,
		MaxDiagnostics: out.maxDiagnostics,
		NoCheckers:     flags.noCheckers,
		Timings:        out.timings,
	}
	originals, corrections := args[0], args[1]

	var res *driver.BatchResult
	if out.format != diagfmt.FormatJSON && shouldUseTUI(mode, out.quiet) {
		res, err = runBatchWithUI(ctx, "regrade "+corrections, originals, corrections, opts)
	} else {
		res, err = driver.Batch(ctx, originals, corrections, opts)
	}
	if err != nil {
		return err
	}

	if out.format == diagfmt.FormatJSON {
		return diagfmt.RecordsJSON(cmd.OutOrStdout(), res.Records, res.Bag, res.FileSet, diagfmt.JSONOpts{
			PathMode:     out.pathMode,
			IncludeNotes: true,
		})
	}
	printRecords(cmd, res.Records, out, flags)
	if out.timings {
		printTimings(cmd.ErrOrStderr(), res.Timer.Summary())
	}
	if res.RunID != 0 && !out.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "stored as run %d (%s)\n", res.RunID, st.Driver())
	}
	return nil
}

// openCache открывает кэш записей; ошибка кэша не прерывает прогон.
func openCache(cmd *cobra.Command, cfg *config.Config, flags batchFlags, out outputOptions) *driver.DiskCache {
	if flags.noCache || !cfg.Batch.Cache {
		return nil
	}
	var (
		cache *driver.DiskCache
		err   error
	)
	if cfg.Batch.CacheDir != "" {
		cache, err = driver.OpenDiskCacheAt(cfg.Batch.CacheDir)
	} else {
		cache, err = driver.OpenDiskCache("regrade")
	}
	if err == nil && flags.clearCache {
		err = cache.DropAll()
	}
	if err != nil {
		if !out.quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "cache disabled: %v\n", err)
		}
		return nil
	}
	return cache
}

func printRecords(cmd *cobra.Command, records []report.Record, out outputOptions, flags batchFlags) {
	diagfmt.Table(cmd.OutOrStdout(), records, diagfmt.TableOpts{
		Color:    out.color,
		Width:    terminalWidth(),
		Verbose:  flags.verbose,
		Diagnose: flags.diagnose,
	})
}

func printLastRun(ctx context.Context, cmd *cobra.Command, st *store.Store, out outputOptions, flags batchFlags) error {
	if st == nil {
		return errors.New("--last needs --db or [store].dsn")
	}
	run, err := st.LatestRun(ctx)
	if err != nil {
		return err
	}
	records, err := st.Records(ctx, run.ID)
	if err != nil {
		return err
	}
	if out.format == diagfmt.FormatJSON {
		return diagfmt.RecordsJSON(cmd.OutOrStdout(), records, nil, nil, diagfmt.JSONOpts{})
	}
	if !out.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "run %d, %s: %s -> %s\n\n",
			run.ID, run.StartedAt.Format("2006-01-02 15:04:05"), run.Originals, run.Corrections)
	}
	printRecords(cmd, records, out, flags)
	return nil
}

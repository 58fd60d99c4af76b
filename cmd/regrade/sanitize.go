package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"regrade/internal/config"
	"regrade/internal/diag"
	"regrade/internal/diagfmt"
	"regrade/internal/sanitize"
	"regrade/internal/source"
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize [flags] <file.py>",
	Short: "Print the canonical lines of a submission",
	Long: `Sanitize folds triple-quoted strings, joins backslash continuations,
strips comments and normalizes the whole file, printing one canonical
logical line per output line.`,
	Args: cobra.ExactArgs(1),
	RunE: runSanitize,
}

var regionCmd = &cobra.Command{
	Use:   "region [flags] <file.py>",
	Short: "Print the canonical editable region of a submission",
	Long: `Region extracts the lines between BEGIN/END sentinel comments, then
strips and normalizes them exactly as compare and batch do.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegion,
}

func init() {
	for _, cmd := range []*cobra.Command{sanitizeCmd, regionCmd} {
		cmd.Flags().String("strategy", "", "comment stripping strategy (both|trailing|quoted), overrides config")
		cmd.Flags().Bool("no-fold", false, "do not fold triple-quoted strings")
		cmd.Flags().Bool("no-join", false, "do not join backslash continuations")
		cmd.Flags().Bool("numbers", false, "prefix lines with their physical line numbers")
	}
}

// applySanitizeFlags переносит флаги командной строки поверх конфига
func applySanitizeFlags(cmd *cobra.Command, cfg *config.Config) error {
	strategy, err := cmd.Flags().GetString("strategy")
	if err != nil {
		return fmt.Errorf("failed to get strategy flag: %w", err)
	}
	if strategy != "" {
		if cfg.Sanitize.Strategy, err = sanitize.ParseStrategy(strategy); err != nil {
			return err
		}
	}
	noFold, err := cmd.Flags().GetBool("no-fold")
	if err != nil {
		return fmt.Errorf("failed to get no-fold flag: %w", err)
	}
	noJoin, err := cmd.Flags().GetBool("no-join")
	if err != nil {
		return fmt.Errorf("failed to get no-join flag: %w", err)
	}
	cfg.Sanitize.NoFold = cfg.Sanitize.NoFold || noFold
	cfg.Sanitize.NoJoin = cfg.Sanitize.NoJoin || noJoin
	return nil
}

// singleFile is the shared setup of the one-file commands.
type singleFile struct {
	cfg  *config.Config
	out  outputOptions
	fs   *source.FileSet
	bag  *diag.Bag
	file *source.File
}

func openSingleFile(cmd *cobra.Command, path string) (*singleFile, error) {
	out, err := readOutputOptions(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Lookup("strategy") != nil {
		if err := applySanitizeFlags(cmd, cfg); err != nil {
			return nil, err
		}
	}
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return &singleFile{
		cfg:  cfg,
		out:  out,
		fs:   fs,
		bag:  diag.NewBag(out.maxDiagnostics),
		file: fs.Get(id),
	}, nil
}

func (s *singleFile) pipeline() *sanitize.Pipeline {
	opts := s.cfg.SanitizeOptions()
	opts.File = s.file.ID
	return sanitize.New(opts, diag.BagReporter{Bag: s.bag})
}

func (s *singleFile) jsonOpts() diagfmt.JSONOpts {
	return diagfmt.JSONOpts{
		PathMode:     s.out.pathMode,
		Max:          s.out.maxDiagnostics,
		IncludeNotes: true,
	}
}

func runSanitize(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	s, err := openSingleFile(cmd, args[0])
	if err != nil {
		return err
	}
	numbers, err := cmd.Flags().GetBool("numbers")
	if err != nil {
		return fmt.Errorf("failed to get numbers flag: %w", err)
	}

	lines := s.pipeline().Sanitize(s.file.RawLines())

	if s.out.format == diagfmt.FormatJSON {
		return diagfmt.FormatLinesJSON(cmd.OutOrStdout(), args[0], lines, nil, s.bag, s.fs, s.jsonOpts())
	}
	if err := printDiagnostics(cmd, s.bag, s.fs, s.out); err != nil {
		return err
	}
	return diagfmt.FormatLinesPretty(cmd.OutOrStdout(), lines, numbers)
}

func runRegion(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	s, err := openSingleFile(cmd, args[0])
	if err != nil {
		return err
	}
	numbers, err := cmd.Flags().GetBool("numbers")
	if err != nil {
		return fmt.Errorf("failed to get numbers flag: %w", err)
	}

	lines, res := s.pipeline().ExtractUserRegion(s.file.RawLines())

	if s.out.format == diagfmt.FormatJSON {
		return diagfmt.FormatLinesJSON(cmd.OutOrStdout(), args[0], lines, &res, s.bag, s.fs, s.jsonOpts())
	}
	if err := printDiagnostics(cmd, s.bag, s.fs, s.out); err != nil {
		return err
	}
	if !s.out.quiet {
		if err := diagfmt.FormatRegionSummary(cmd.OutOrStdout(), res); err != nil {
			return err
		}
	}
	return diagfmt.FormatLinesPretty(cmd.OutOrStdout(), lines, numbers)
}

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"regrade/internal/diagfmt"
	"regrade/internal/driver"
	"regrade/internal/observ"
	"regrade/internal/report"
	"regrade/internal/source"
)

var compareCmd = &cobra.Command{
	Use:   "compare [flags] <original.py> <corrected.py>",
	Short: "Compare one corrected submission with its original",
	Long: `Compare sanitizes both submissions, scores the similarity of their
editable regions and lists the flaws of the corrected one.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().String("question", "", "question id used for calibration (default: corrected file stem)")
	compareCmd.Flags().Bool("no-checkers", false, "skip the external lint and dead-code tools")
	compareCmd.Flags().BoolP("verbose", "v", false, "print every rule value of both submissions")
}

func runCompare(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	out, err := readOutputOptions(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	question, err := cmd.Flags().GetString("question")
	if err != nil {
		return fmt.Errorf("failed to get question flag: %w", err)
	}
	noCheckers, err := cmd.Flags().GetBool("no-checkers")
	if err != nil {
		return fmt.Errorf("failed to get no-checkers flag: %w", err)
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}

	oldPath, newPath := args[0], args[1]
	rel := filepath.Base(newPath)
	if question == "" {
		question = strings.TrimSuffix(rel, filepath.Ext(rel))
	}
	if _, err := cfg.Calibration(question); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	timer := observ.NewTimer()
	engine := driver.NewEngine(cfg, driver.EngineOptions{
		FileSet:        source.NewFileSet(),
		Timer:          timer,
		MaxDiagnostics: out.maxDiagnostics,
		NoCheckers:     noCheckers,
	})
	rec, bag := engine.Process(cmd.Context(), driver.Pair{
		Question: question,
		Rel:      rel,
		Old:      oldPath,
		New:      newPath,
	})
	records := []report.Record{rec}

	if out.format == diagfmt.FormatJSON {
		return diagfmt.RecordsJSON(cmd.OutOrStdout(), records, bag, engine.FileSet(), diagfmt.JSONOpts{
			PathMode:     out.pathMode,
			Max:          out.maxDiagnostics,
			IncludeNotes: true,
		})
	}
	if err := printDiagnostics(cmd, bag, engine.FileSet(), out); err != nil {
		return err
	}
	diagfmt.Table(cmd.OutOrStdout(), records, diagfmt.TableOpts{
		Color:   out.color,
		Width:   terminalWidth(),
		Verbose: verbose,
	})
	if out.timings {
		printTimings(cmd.ErrOrStderr(), timer.Summary())
	}
	return nil
}

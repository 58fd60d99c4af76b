package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"regrade/internal/diag"
	"regrade/internal/diagfmt"
	"regrade/internal/driver"
	"regrade/internal/source"
)

var flawsCmd = &cobra.Command{
	Use:   "flaws [flags] <file.py>",
	Short: "Run the flaw rules over one submission",
	Long: `Flaws extracts the editable region of a submission, runs the configured
external checkers and prints every rule value; deviating rules are marked.`,
	Args: cobra.ExactArgs(1),
	RunE: runFlaws,
}

func init() {
	flawsCmd.Flags().Bool("no-checkers", false, "skip the external lint and dead-code tools")
}

func runFlaws(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	out, err := readOutputOptions(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	noCheckers, err := cmd.Flags().GetBool("no-checkers")
	if err != nil {
		return fmt.Errorf("failed to get no-checkers flag: %w", err)
	}

	engine := driver.NewEngine(cfg, driver.EngineOptions{
		FileSet:        source.NewFileSet(),
		MaxDiagnostics: out.maxDiagnostics,
		NoCheckers:     noCheckers,
	})
	bag := diag.NewBag(out.maxDiagnostics)
	r := diag.BagReporter{Bag: bag}

	f, err := engine.Load(args[0], r)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	side := engine.Sanitize(f, r)
	engine.Check(cmd.Context(), f, &side, r)
	rep := side.Flaws()

	if out.format == diagfmt.FormatJSON {
		return diagfmt.FlawsJSON(cmd.OutOrStdout(), args[0], rep, bag, engine.FileSet(), diagfmt.JSONOpts{
			PathMode:     out.pathMode,
			Max:          out.maxDiagnostics,
			IncludeNotes: true,
		})
	}
	if err := printDiagnostics(cmd, bag, engine.FileSet(), out); err != nil {
		return err
	}
	diagfmt.Flaws(cmd.OutOrStdout(), rep, diagfmt.TableOpts{
		Color: out.color,
		Width: terminalWidth(),
	})
	return nil
}

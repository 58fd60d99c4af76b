package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"regrade/internal/config"
	"regrade/internal/diag"
	"regrade/internal/diagfmt"
	"regrade/internal/source"
	"regrade/internal/trace"
)

// outputOptions are the persistent flags that shape what a command prints.
type outputOptions struct {
	format         diagfmt.Format
	pathMode       diagfmt.PathMode
	color          bool
	quiet          bool
	timings        bool
	maxDiagnostics int
}

func readOutputOptions(cmd *cobra.Command) (outputOptions, error) {
	flags := cmd.Root().PersistentFlags()
	var opts outputOptions

	formatStr, err := flags.GetString("format")
	if err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	if opts.format, err = diagfmt.ParseFormat(formatStr); err != nil {
		return opts, err
	}

	pathStr, err := flags.GetString("path-mode")
	if err != nil {
		return opts, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	if opts.pathMode, err = diagfmt.ParsePathMode(pathStr); err != nil {
		return opts, err
	}

	if opts.quiet, err = flags.GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = flags.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if opts.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	opts.color = !color.NoColor
	return opts, nil
}

// applyColor sets the global color switch from --color.
func applyColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		color.NoColor = !isTerminal(os.Stdout)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// loadConfig resolves regrade.toml from --config or the working directory.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	explicit, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Resolve(explicit, wd)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	origin := cfg.Path
	if origin == "" {
		origin = "defaults"
	}
	trace.Point(cmd.Context(), trace.ScopeDriver, "config", origin)
	return cfg, nil
}

// printDiagnostics renders bag in the selected format; pretty and short go
// to stderr so that stdout keeps only the command result.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet, opts outputOptions) error {
	if bag == nil || bag.Len() == 0 || opts.quiet {
		return nil
	}
	bag.Sort()
	switch opts.format {
	case diagfmt.FormatShort:
		diagfmt.Short(cmd.ErrOrStderr(), bag, fs, opts.timings)
	case diagfmt.FormatJSON:
		return diagfmt.JSON(cmd.ErrOrStderr(), bag, fs, diagfmt.JSONOpts{
			PathMode:     opts.pathMode,
			Max:          opts.maxDiagnostics,
			IncludeNotes: true,
		})
	default:
		diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, diagfmt.PrettyOpts{
			Color:     opts.color,
			Context:   1,
			PathMode:  opts.pathMode,
			ShowNotes: true,
		})
	}
	return nil
}

// terminalWidth returns the width of stdout, or 0 when it is not a terminal.
func terminalWidth() int {
	if !isTerminal(os.Stdout) {
		return 0
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}

func printTimings(out io.Writer, summary string) {
	if out == nil || summary == "" {
		return
	}
	fmt.Fprint(out, summary)
}

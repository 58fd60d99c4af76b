package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"regrade/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "regrade",
	Short: "Compare corrected Python submissions with their originals",
	Long: `regrade sanitizes pairs of Python submissions, extracts the editable
region between BEGIN/END comments, scores their line similarity and lists
the heuristic flaws a reviewer should look at.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupRoot,
}

// main executes the root command. A failed command exits with status 1.
func main() {
	err := rootCmd.Execute()
	stopProfiling()
	closeTracing(rootCmd)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	// Добавляем команды
	rootCmd.AddCommand(sanitizeCmd)
	rootCmd.AddCommand(regionCmd)
	rootCmd.AddCommand(flawsCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics per submission")
	flags.String("config", "", "path to regrade.toml (default: nearest one above the working directory)")
	flags.String("format", "pretty", "output format (pretty|short|json)")
	flags.String("path-mode", "auto", "how paths are printed (auto|absolute|relative|basename)")
	flags.String("ui", "auto", "interactive progress for batch runs (auto|on|off)")

	flags.String("trace", "", "write trace events to file (\"-\" for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "events kept in memory for ring mode")
	flags.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")

	flags.String("cpu-profile", "", "write CPU profile to file")
	flags.String("mem-profile", "", "write heap profile to file on exit")
	flags.String("runtime-trace", "", "write Go runtime trace to file")
}

func setupRoot(cmd *cobra.Command, _ []string) error {
	if err := applyColor(cmd); err != nil {
		return err
	}
	if err := setupTracing(cmd); err != nil {
		return err
	}
	return setupProfiling(cmd)
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

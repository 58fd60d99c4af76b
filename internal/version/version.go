package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the regrade CLI.
// These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Colored раскрашивает major/minor/patch; суффикс (-dev, +build) остаётся как есть.
func Colored() string {
	core, suffix := Version, ""
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core, suffix = core[:i], core[i:]
	}
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	return versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(parts[2]) + suffix
}

// Lines returns the version block printed by `regrade version`; empty
// optional fields are skipped.
func Lines() []string {
	lines := []string{"regrade " + Colored()}
	if GitCommit != "" {
		commit := "commit: " + GitCommit
		if GitMessage != "" {
			commit += " (" + GitMessage + ")"
		}
		lines = append(lines, commit)
	}
	if BuildDate != "" {
		lines = append(lines, "built: "+BuildDate)
	}
	return lines
}

package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withValues(t *testing.T, version, commit, message, date string) {
	t.Helper()
	origVersion, origCommit, origMessage, origDate := Version, GitCommit, GitMessage, BuildDate
	Version, GitCommit, GitMessage, BuildDate = version, commit, message, date
	origNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		Version, GitCommit, GitMessage, BuildDate = origVersion, origCommit, origMessage, origDate
		color.NoColor = origNoColor
	})
}

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestColored_PlainWhenColorDisabled(t *testing.T) {
	tests := []string{
		"0.1.0",
		"0.1.0-dev",
		"1.2.3-rc.1+build.123",
		"not-a-version",
	}
	for _, v := range tests {
		withValues(t, v, "", "", "")
		if got := Colored(); got != v {
			t.Errorf("Colored() with %q = %q", v, got)
		}
	}
}

func TestColored_KeepsSuffixUncolored(t *testing.T) {
	withValues(t, "1.2.3-dev", "", "", "")
	color.NoColor = false
	got := Colored()
	if !strings.HasSuffix(got, "-dev") {
		t.Fatalf("suffix lost: %q", got)
	}
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected ANSI escapes: %q", got)
	}
}

func TestLines(t *testing.T) {
	tests := []struct {
		name    string
		commit  string
		message string
		date    string
		want    []string
	}{
		{"bare", "", "", "", []string{"regrade 0.1.0"}},
		{"commit", "abc123", "", "", []string{"regrade 0.1.0", "commit: abc123"}},
		{"full", "abc123", "fix cache", "2026-01-15", []string{"regrade 0.1.0", "commit: abc123 (fix cache)", "built: 2026-01-15"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withValues(t, "0.1.0", tt.commit, tt.message, tt.date)
			got := Lines()
			if strings.Join(got, "\n") != strings.Join(tt.want, "\n") {
				t.Fatalf("Lines() = %q, want %q", got, tt.want)
			}
		})
	}
}

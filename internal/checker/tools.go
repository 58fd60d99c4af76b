package checker

import (
	"strings"
	"time"
)

// DefaultTimeout bounds one tool invocation.
const DefaultTimeout = 30 * time.Second

// DefaultLintCodes are the pylint messages enabled by default:
// W0104 pointless-statement and W0106 expression-not-assigned.
var DefaultLintCodes = []string{"W0104", "W0106"}

// LintOptions configures the lint checker.
type LintOptions struct {
	Bin     string
	Codes   []string
	Timeout time.Duration
}

// NewLint builds `pylint --disable=all --enable=<codes> <file>`. Only lines
// mentioning one of the codes are kept.
func NewLint(opts LintOptions) *Command {
	if opts.Bin == "" {
		opts.Bin = "pylint"
	}
	if len(opts.Codes) == 0 {
		opts.Codes = DefaultLintCodes
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	codes := append([]string(nil), opts.Codes...)
	return &Command{
		ToolName: "lint",
		Bin:      opts.Bin,
		Args: []string{
			"--disable=all",
			"--enable=" + strings.Join(codes, ","),
			"--score=n",
			"--persistent=n",
		},
		Timeout: opts.Timeout,
		// pylint: битовая маска; 1 = fatal, 32 = usage error
		Classify: func(code int) Verdict {
			switch {
			case code == 0:
				return VerdictClean
			case code&1 != 0 || code&32 != 0:
				return VerdictFailed
			}
			return VerdictDirty
		},
		Keep: func(line string) bool {
			for _, c := range codes {
				if strings.Contains(line, c) {
					return true
				}
			}
			return false
		},
	}
}

// DeadCodeOptions configures the dead-code checker.
type DeadCodeOptions struct {
	Bin       string
	Whitelist string
	Timeout   time.Duration
}

// NewDeadCode builds `vulture <file> [whitelist]`.
func NewDeadCode(opts DeadCodeOptions) *Command {
	if opts.Bin == "" {
		opts.Bin = "vulture"
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	var trailing []string
	if opts.Whitelist != "" {
		trailing = []string{opts.Whitelist}
	}
	return &Command{
		ToolName: "dead_code",
		Bin:      opts.Bin,
		Trailing: trailing,
		Timeout:  opts.Timeout,
		// vulture: 3 = найден мёртвый код
		Classify: func(code int) Verdict {
			switch code {
			case 0:
				return VerdictClean
			case 3:
				return VerdictDirty
			}
			return VerdictFailed
		},
	}
}

package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Verdict classifies a tool exit code.
type Verdict uint8

const (
	VerdictClean Verdict = iota
	VerdictDirty
	VerdictFailed
)

// Command runs an executable as `Bin Args... <path> Trailing...`.
type Command struct {
	ToolName string
	Bin      string
	Args     []string
	Trailing []string
	Timeout  time.Duration
	// Classify maps the exit code to a verdict; nil means 0 is clean and
	// anything else is dirty.
	Classify func(code int) Verdict
	// Keep filters output lines; nil keeps all non-empty lines.
	Keep func(line string) bool
}

// Name returns the tool name.
func (c *Command) Name() string {
	return c.ToolName
}

// Check runs the tool on path.
func (c *Command) Check(ctx context.Context, path string) (Result, error) {
	bin, err := exec.LookPath(c.Bin)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrUnavailable, c.Bin, err)
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(c.Args)+1+len(c.Trailing))
	args = append(args, c.Args...)
	args = append(args, path)
	args = append(args, c.Trailing...)

	// #nosec G204 -- binary and arguments come from the config file
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	code := 0
	if runErr := cmd.Run(); runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("%w: %s: %w", ErrFailed, c.ToolName, ctxErr)
		}
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return Result{}, fmt.Errorf("%w: %s: %w", ErrUnavailable, c.ToolName, runErr)
		}
		code = exitErr.ExitCode()
	}

	verdict := c.classify(code)
	if verdict == VerdictFailed {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = fmt.Sprintf("exit status %d", code)
		}
		return Result{}, fmt.Errorf("%w: %s: %s", ErrFailed, c.ToolName, msg)
	}
	return Result{
		Clean:  verdict == VerdictClean,
		Output: c.filter(stdout.String(), path),
	}, nil
}

func (c *Command) classify(code int) Verdict {
	if c.Classify != nil {
		return c.Classify(code)
	}
	if code == 0 {
		return VerdictClean
	}
	return VerdictDirty
}

// filter keeps the interesting lines and hides the temporary file name.
func (c *Command) filter(out, path string) string {
	lines := strings.Split(out, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		if c.Keep != nil && !c.Keep(line) {
			continue
		}
		kept = append(kept, strings.ReplaceAll(line, path, "<submission>"))
	}
	return strings.Join(kept, "\n")
}

// Package checker runs external static-analysis tools over a submission.
package checker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrUnavailable means the tool could not be started at all.
	ErrUnavailable = errors.New("checker unavailable")
	// ErrFailed means the tool started but did not produce a verdict
	// (crash, usage error, timeout).
	ErrFailed = errors.New("checker failed")
)

// Result is the verdict of one tool on one file.
type Result struct {
	Clean  bool   `msgpack:"clean"`
	Output string `msgpack:"output"`
}

// Checker analyses the file at path.
type Checker interface {
	Name() string
	Check(ctx context.Context, path string) (Result, error)
}

// Outcome is what a caller records for one checker run.
type Outcome struct {
	Ran    bool   `msgpack:"ran"`
	Result Result `msgpack:"result"`
	Err    string `msgpack:"err,omitempty"`

	// Unavailable is set when Err wraps ErrUnavailable.
	Unavailable bool `msgpack:"unavailable,omitempty"`
}

// Text is the flaw value of the outcome: empty when clean or not run, the
// tool output when dirty, "error: ..." when the tool could not run.
func (o Outcome) Text() string {
	switch {
	case o.Err != "":
		return "error: " + o.Err
	case !o.Ran || o.Result.Clean:
		return ""
	}
	return o.Result.Output
}

// Failed reports whether the tool could not produce a verdict.
func (o Outcome) Failed() bool {
	return o.Err != ""
}

// CheckSource writes content to a private temporary file, runs c on it and
// removes the file on every path.
func CheckSource(ctx context.Context, c Checker, name string, content []byte) (res Result, err error) {
	f, err := os.CreateTemp("", "regrade-*-"+filepath.Base(name))
	if err != nil {
		return Result{}, fmt.Errorf("%w: temp file: %w", ErrUnavailable, err)
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && err == nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = fmt.Errorf("failed to remove temp file: %w", rmErr)
		}
	}()

	_, werr := f.Write(content)
	cerr := f.Close()
	if werr != nil {
		return Result{}, fmt.Errorf("%w: write temp file: %w", ErrUnavailable, werr)
	}
	if cerr != nil {
		return Result{}, fmt.Errorf("%w: close temp file: %w", ErrUnavailable, cerr)
	}
	return c.Check(ctx, f.Name())
}

// Run is CheckSource folded into an Outcome. A nil checker yields a zero
// Outcome (not run).
func Run(ctx context.Context, c Checker, name string, content []byte) Outcome {
	if c == nil {
		return Outcome{}
	}
	res, err := CheckSource(ctx, c, name, content)
	if err != nil {
		return Outcome{Ran: true, Err: err.Error(), Unavailable: errors.Is(err, ErrUnavailable)}
	}
	return Outcome{Ran: true, Result: res}
}

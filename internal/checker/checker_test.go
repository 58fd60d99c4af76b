package checker_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"regrade/internal/checker"
)

// shell builds a checker that runs script with the file path as $1.
func shell(t *testing.T, script string, classify func(int) checker.Verdict) *checker.Command {
	t.Helper()
	return &checker.Command{
		ToolName: "test",
		Bin:      "sh",
		Args:     []string{"-c", script, "sh"},
		Timeout:  5 * time.Second,
		Classify: classify,
	}
}

func TestCommandClean(t *testing.T) {
	c := shell(t, `exit 0`, nil)
	res, err := c.Check(context.Background(), "/dev/null")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.Clean {
		t.Errorf("expected clean result, got %+v", res)
	}
}

func TestCommandDirtyHidesPath(t *testing.T) {
	c := shell(t, `echo "$1:3: W0104 pointless"; echo; exit 4`, nil)
	res, err := c.Check(context.Background(), "/tmp/some-file.py")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Clean {
		t.Fatal("expected dirty result")
	}
	if res.Output != "<submission>:3: W0104 pointless" {
		t.Errorf("Output = %q", res.Output)
	}
}

func TestCommandFailed(t *testing.T) {
	c := shell(t, `echo boom >&2; exit 2`, func(code int) checker.Verdict {
		if code == 2 {
			return checker.VerdictFailed
		}
		return checker.VerdictDirty
	})
	_, err := c.Check(context.Background(), "x.py")
	if !errors.Is(err, checker.ErrFailed) {
		t.Fatalf("err = %v, want ErrFailed", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("stderr not surfaced: %v", err)
	}
}

func TestCommandUnavailable(t *testing.T) {
	c := &checker.Command{ToolName: "missing", Bin: "regrade-no-such-tool"}
	_, err := c.Check(context.Background(), "x.py")
	if !errors.Is(err, checker.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestCommandTimeout(t *testing.T) {
	c := shell(t, `exec sleep 5`, nil)
	c.Timeout = 50 * time.Millisecond
	_, err := c.Check(context.Background(), "x.py")
	if !errors.Is(err, checker.ErrFailed) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want ErrFailed wrapping DeadlineExceeded", err)
	}
}

func TestCheckSourceRemovesTempFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "seen")
	// скрипт запоминает путь и проверяет содержимое
	c := shell(t, `echo "$1" > "`+out+`"; grep -q 'x = 1' "$1"`, nil)

	res, err := checker.CheckSource(context.Background(), c, "answer.py", []byte("x = 1\n"))
	if err != nil {
		t.Fatalf("CheckSource: %v", err)
	}
	if !res.Clean {
		t.Errorf("content not written to temp file: %+v", res)
	}

	seen, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	tmp := strings.TrimSpace(string(seen))
	if !strings.HasSuffix(tmp, "answer.py") {
		t.Errorf("temp file %q does not keep the submission name", tmp)
	}
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Errorf("temp file %q still exists", tmp)
	}
}

func TestRunOutcome(t *testing.T) {
	ctx := context.Background()

	if o := checker.Run(ctx, nil, "a.py", nil); o.Ran || o.Text() != "" {
		t.Errorf("nil checker: %+v", o)
	}

	dirty := shell(t, `echo dead; exit 3`, nil)
	if o := checker.Run(ctx, dirty, "a.py", nil); o.Text() != "dead" {
		t.Errorf("dirty Text = %q", o.Text())
	}

	missing := &checker.Command{ToolName: "missing", Bin: "regrade-no-such-tool"}
	o := checker.Run(ctx, missing, "a.py", nil)
	if !o.Failed() || !o.Unavailable || !strings.HasPrefix(o.Text(), "error: ") {
		t.Errorf("missing tool outcome: %+v", o)
	}
}

func TestToolBuilders(t *testing.T) {
	lint := checker.NewLint(checker.LintOptions{})
	if lint.Bin != "pylint" || lint.Args[1] != "--enable=W0104,W0106" {
		t.Errorf("lint command: %+v", lint)
	}
	if lint.Classify(0) != checker.VerdictClean || lint.Classify(4) != checker.VerdictDirty ||
		lint.Classify(32) != checker.VerdictFailed || lint.Classify(1) != checker.VerdictFailed {
		t.Error("lint exit code classification")
	}
	if lint.Keep("************* Module x") || !lint.Keep("x.py:1:0: W0106: Expression") {
		t.Error("lint output filter")
	}

	dead := checker.NewDeadCode(checker.DeadCodeOptions{Whitelist: "wl.py"})
	if dead.Bin != "vulture" || len(dead.Trailing) != 1 || dead.Trailing[0] != "wl.py" {
		t.Errorf("dead-code command: %+v", dead)
	}
	if dead.Classify(3) != checker.VerdictDirty || dead.Classify(1) != checker.VerdictFailed {
		t.Error("dead-code exit code classification")
	}
}

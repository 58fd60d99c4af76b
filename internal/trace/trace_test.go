package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"off", LevelOff, false},
		{"PHASE", LevelPhase, false},
		{"detail", LevelDetail, false},
		{"debug", LevelDebug, false},
		{"loud", LevelOff, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelShouldEmit(t *testing.T) {
	if LevelPhase.ShouldEmit(ScopePair) {
		t.Error("phase level must not emit pair events")
	}
	if !LevelPhase.ShouldEmit(ScopePass) {
		t.Error("phase level must emit pass events")
	}
	if !LevelDetail.ShouldEmit(ScopePair) {
		t.Error("detail level must emit pair events")
	}
	if LevelError.ShouldEmit(ScopeDriver) {
		t.Error("error level emits nothing by scope")
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)

	sp, _ := Start(WithTracer(context.Background(), tr), ScopePass, "sanitize")
	sp.WithExtra("lines", "12").End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	var end map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &end); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if end["kind"] != "end" || end["name"] != "sanitize" || end["detail"] != "ok" {
		t.Errorf("unexpected end event: %v", end)
	}
	extra, ok := end["extra"].(map[string]any)
	if !ok || extra["lines"] != "12" {
		t.Errorf("extra = %v", end["extra"])
	}
}

func TestStreamTracerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	ctx := WithTracer(context.Background(), tr)

	sp, pctx := Start(ctx, ScopePair, "pair")
	sp.End("")
	if buf.Len() != 0 {
		t.Fatalf("pair span leaked at phase level: %q", buf.String())
	}
	if pctx != ctx {
		t.Error("filtered span must not change the context")
	}

	Point(ctx, ScopeDriver, "config", "regrade.toml")
	if !strings.Contains(buf.String(), "config (regrade.toml)") {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestRingTracerWraps(t *testing.T) {
	tr := NewRingTracer(3, LevelDebug)
	ctx := WithTracer(context.Background(), tr)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ctx, ScopePair, name, "")
	}
	snap := tr.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot len = %d, want 3", len(snap))
	}
	got := []string{snap[0].Name, snap[1].Name, snap[2].Name}
	want := []string{"c", "d", "e"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("snapshot = %v, want %v", got, want)
		}
	}

	var buf bytes.Buffer
	if err := tr.Dump(&buf, FormatText); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Errorf("dump = %q", buf.String())
	}
}

func TestMultiTracerFansOut(t *testing.T) {
	var buf bytes.Buffer
	ring := NewRingTracer(8, LevelDebug)
	stream := NewStreamTracer(&buf, LevelDebug, FormatText)
	multi := NewMultiTracer(stream, ring, NewRingTracer(2, LevelPhase))
	if multi.Level() != LevelDebug {
		t.Errorf("level = %v, want the most verbose child", multi.Level())
	}

	Point(WithTracer(context.Background(), multi), ScopeDriver, "batch", "")

	if len(ring.Snapshot()) != 1 {
		t.Error("ring did not receive event")
	}
	if !strings.Contains(buf.String(), "batch") {
		t.Error("stream did not receive event")
	}
	if FindRing(multi) != ring {
		t.Error("FindRing did not locate the ring inside the multi tracer")
	}
	if FindRing(stream) != nil {
		t.Error("stream tracer has no ring")
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Enabled() {
		t.Error("off tracer must be disabled")
	}
	if sp, _ := Start(WithTracer(context.Background(), tr), ScopeDriver, "x"); sp.End("") != 0 {
		t.Error("nop span must report zero duration")
	}
}

func TestNewRejectsUnknownMode(t *testing.T) {
	if _, err := New(Config{Level: LevelPhase, Mode: StorageMode(42)}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("empty context must yield Nop")
	}
	tr := NewRingTracer(4, LevelPhase)
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != Tracer(tr) {
		t.Fatal("tracer not propagated")
	}
	ctx = WithSpanContext(ctx, SpanContext{SpanID: 7})
	if CurrentSpan(ctx).SpanID != 7 {
		t.Fatal("span context not propagated")
	}
}

func TestHeartbeatEmits(t *testing.T) {
	tr := NewRingTracer(64, LevelPhase)
	counts := &Progress{}
	counts.Start(4)
	counts.Finish(false)
	hb := StartHeartbeat(tr, 5*time.Millisecond, counts)
	deadline := time.Now().Add(2 * time.Second)
	for len(tr.Snapshot()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	hb.Stop()
	hb.Stop()

	snap := tr.Snapshot()
	if len(snap) < 2 {
		t.Fatalf("got %d heartbeats, want at least 2", len(snap))
	}
	if snap[0].Kind != KindHeartbeat || snap[0].Detail != "1/4 pairs, 0 failed" {
		t.Errorf("first beat = %v %q", snap[0].Kind, snap[0].Detail)
	}
	if snap[1].Extra["stalled"] != "1" {
		t.Errorf("second beat without progress: extra = %v", snap[1].Extra)
	}
	if StartHeartbeat(Nop, time.Millisecond, counts) != nil {
		t.Error("disabled tracer must not start a heartbeat")
	}
}

func TestBeatEvent(t *testing.T) {
	if ev := beatEvent(0, 0, 0, 0); ev.Detail != "no pairs queued" || ev.Extra != nil {
		t.Errorf("idle beat = %q %v", ev.Detail, ev.Extra)
	}
	ev := beatEvent(3, 1, 10, 2)
	if ev.Detail != "3/10 pairs, 1 failed" {
		t.Errorf("detail = %q", ev.Detail)
	}
	want := map[string]string{"done": "3", "failed": "1", "total": "10", "stalled": "2"}
	for k, v := range want {
		if ev.Extra[k] != v {
			t.Errorf("extra[%s] = %q, want %q", k, ev.Extra[k], v)
		}
	}
}

func TestProgressNilSafe(t *testing.T) {
	var p *Progress
	p.Start(3)
	p.Finish(true)
	if d, f, n := p.Counts(); d != 0 || f != 0 || n != 0 {
		t.Errorf("nil counts = %d %d %d", d, f, n)
	}
	if ProgressFrom(context.Background()) != nil {
		t.Error("empty context has no progress")
	}

	p = &Progress{}
	ctx := WithProgress(context.Background(), p)
	ProgressFrom(ctx).Start(2)
	ProgressFrom(ctx).Finish(true)
	if d, f, n := p.Counts(); d != 1 || f != 1 || n != 2 {
		t.Errorf("counts = %d %d %d, want 1 1 2", d, f, n)
	}
}

func TestStartCarriesPair(t *testing.T) {
	ring := NewRingTracer(16, LevelDetail)
	ctx := WithTracer(context.Background(), ring)

	batch, ctx := Start(ctx, ScopeDriver, "batch")
	pair, pctx := Start(WithPair(ctx, "q1/alice.py", "q1"), ScopePair, "pair")
	if got := CurrentSpan(pctx); got.SpanID != pair.ID() || got.Pair != "q1/alice.py" {
		t.Fatalf("span context = %+v", got)
	}
	check, _ := Start(pctx, ScopePair, "check:pylint")
	check.WithExtra("verdict", "clean").End("")
	Point(pctx, ScopePair, "cache-hit", "")
	pair.End("done")
	batch.End("")

	var sawCheck bool
	for _, ev := range ring.Snapshot() {
		switch ev.Name {
		case "batch":
			if ev.Extra != nil {
				t.Errorf("batch span carries pair extras: %v", ev.Extra)
			}
		case "pair":
			if ev.ParentID != batch.ID() {
				t.Errorf("pair parent = %d, want %d", ev.ParentID, batch.ID())
			}
		case "check:pylint":
			if ev.ParentID != pair.ID() || ev.Extra["question"] != "q1" {
				t.Errorf("check event = %+v", ev)
			}
			if ev.Kind == KindSpanEnd {
				sawCheck = ev.Extra["verdict"] == "clean" && ev.Extra["pair"] == "q1/alice.py"
			} else if _, ok := ev.Extra["verdict"]; ok {
				t.Error("end extras leaked into the begin event")
			}
		case "cache-hit":
			if ev.ParentID != pair.ID() || ev.Extra["pair"] != "q1/alice.py" {
				t.Errorf("point = %+v", ev)
			}
		}
	}
	if !sawCheck {
		t.Error("check end event lost its extras")
	}
}

func TestNewModes(t *testing.T) {
	ring, err := New(Config{Level: LevelPhase, Mode: ModeRing})
	if err != nil || FindRing(ring) == nil {
		t.Fatalf("ring mode: %T, %v", ring, err)
	}
	var buf bytes.Buffer
	both, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := both.(*MultiTracer); !ok || FindRing(both) == nil {
		t.Errorf("both mode = %T", both)
	}
	if f := (Config{OutputPath: "run.jsonl"}).format(); f != FormatNDJSON {
		t.Errorf("format for .jsonl = %v", f)
	}
	if f := (Config{OutputPath: "run.log"}).format(); f != FormatText {
		t.Errorf("format for .log = %v", f)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("Both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode(Both) = %v, %v", m, err)
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Fatal("expected error")
	}
}

package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerBeginEnd(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("load")
	tm.End(idx, "3 files")
	tm.End(99, "ignored")

	r := tm.Report()
	if len(r.Phases) != 1 {
		t.Fatalf("phases = %d, want 1", len(r.Phases))
	}
	if r.Phases[0].Name != "load" || r.Phases[0].Note != "3 files" {
		t.Errorf("phase = %+v", r.Phases[0])
	}
}

func TestTimerAddAggregates(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Add("compare", time.Millisecond)
		}()
	}
	wg.Wait()

	r := tm.Report()
	if len(r.Phases) != 1 {
		t.Fatalf("phases = %d, want 1", len(r.Phases))
	}
	p := r.Phases[0]
	if p.Count != 10 || p.DurationMS != 10 {
		t.Errorf("aggregate = %+v", p)
	}
	if r.TotalMS != 0 {
		t.Errorf("aggregates must not count toward total, got %v", r.TotalMS)
	}
	if !strings.Contains(tm.Summary(), "x10") {
		t.Errorf("summary missing count:\n%s", tm.Summary())
	}
}

func TestTimerEmptyReport(t *testing.T) {
	if r := NewTimer().Report(); len(r.Phases) != 0 || r.TotalMS != 0 {
		t.Fatalf("empty report = %+v", r)
	}
}

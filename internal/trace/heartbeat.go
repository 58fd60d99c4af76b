package trace

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Progress counts the pairs of a running batch. All methods are safe for
// concurrent use and on a nil *Progress.
type Progress struct {
	total  atomic.Int64
	done   atomic.Int64
	failed atomic.Int64
}

// Start adds n queued pairs.
func (p *Progress) Start(n int) {
	if p == nil {
		return
	}
	p.total.Add(int64(n))
}

// Finish records one finished pair.
func (p *Progress) Finish(failed bool) {
	if p == nil {
		return
	}
	p.done.Add(1)
	if failed {
		p.failed.Add(1)
	}
}

// Counts returns finished, failed and queued pair counts.
func (p *Progress) Counts() (done, failed, total int64) {
	if p == nil {
		return 0, 0, 0
	}
	return p.done.Load(), p.failed.Load(), p.total.Load()
}

// Heartbeat emits a liveness event every interval with the batch counts.
// Beats during which no pair finished are marked stalled; a checker that
// hangs shows up as a growing stalled count.
type Heartbeat struct {
	tracer   Tracer
	progress *Progress
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// StartHeartbeat starts the heartbeat goroutine. It returns nil when t is
// disabled or interval is not positive; p may be nil.
func StartHeartbeat(t Tracer, interval time.Duration, p *Progress) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   t,
		progress: p,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run(interval)
	return h
}

func (h *Heartbeat) run(interval time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last, stalled := int64(-1), 0
	for {
		select {
		case <-ticker.C:
			done, failed, total := h.progress.Counts()
			if total > 0 && done == last && done < total {
				stalled++
			} else {
				stalled = 0
			}
			last = done
			h.tracer.Emit(beatEvent(done, failed, total, stalled))
		case <-h.stop:
			return
		}
	}
}

// beatEvent builds one heartbeat event from the batch counts.
func beatEvent(done, failed, total int64, stalled int) *Event {
	ev := &Event{
		Time:  time.Now(),
		Seq:   NextSeq(),
		Kind:  KindHeartbeat,
		Scope: ScopeDriver,
		GID:   getGoroutineID(),
		Name:  "heartbeat",
	}
	if total == 0 {
		ev.Detail = "no pairs queued"
		return ev
	}
	ev.Detail = fmt.Sprintf("%d/%d pairs, %d failed", done, total, failed)
	ev.Extra = map[string]string{
		"done":   strconv.FormatInt(done, 10),
		"failed": strconv.FormatInt(failed, 10),
		"total":  strconv.FormatInt(total, 10),
	}
	if stalled > 0 {
		ev.Extra["stalled"] = strconv.Itoa(stalled)
	}
	return ev
}

// Stop ends the heartbeat and waits for the goroutine. Safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}

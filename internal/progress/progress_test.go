package progress

import (
	"testing"
	"time"
)

func TestRecorderTimings(t *testing.T) {
	var r Recorder
	r.OnEvent(Event{Pair: "a", Stage: StageSanitize, Status: StatusWorking})
	r.OnEvent(Event{Pair: "a", Stage: StageSanitize, Status: StatusDone, Elapsed: 2 * time.Millisecond})
	r.OnEvent(Event{Pair: "b", Stage: StageSanitize, Status: StatusDone, Elapsed: 3 * time.Millisecond})
	r.OnEvent(Event{Pair: "b", Stage: StageCheck, Status: StatusError, Elapsed: time.Millisecond})

	tm := r.Timings()
	if got := tm.Duration(StageSanitize); got != 5*time.Millisecond {
		t.Errorf("sanitize = %v", got)
	}
	if got := tm.Sum(StageSanitize, StageCheck, StageStore); got != 6*time.Millisecond {
		t.Errorf("sum = %v", got)
	}
	if len(r.Events()) != 4 {
		t.Errorf("events = %d", len(r.Events()))
	}
}

func TestChannelSink(t *testing.T) {
	ch := make(chan Event, 1)
	ChannelSink{Ch: ch}.OnEvent(Event{Pair: "x", Status: StatusDone})
	if ev := <-ch; ev.Pair != "x" {
		t.Errorf("event = %+v", ev)
	}
	ChannelSink{}.OnEvent(Event{}) // nil channel is ignored
}

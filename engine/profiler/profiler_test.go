package profiler

import (
	"testing"
	"time"
)

func TestRecordFrame(t *testing.T) {
	p := NewProfiler()
	p.RecordFrame(8, true, false)
	p.RecordFrame(0, false, false)
	p.RecordFrame(2, false, true)

	got := p.Totals()
	want := Totals{Frames: 3, Recomputes: 2, Reallocations: 1, Dispatches: 10, Skipped: 1}
	if got != want {
		t.Errorf("totals = %+v, want %+v", got, want)
	}
}

func TestTickInterval(t *testing.T) {
	p := NewProfiler()
	p.SetInterval(time.Hour)
	if p.Tick() {
		t.Error("logged before the interval elapsed")
	}
	p.SetInterval(time.Nanosecond)
	p.SetInterval(-1)
	time.Sleep(time.Millisecond)
	p.RecordFrame(1, false, false)
	if !p.Tick() {
		t.Error("did not log after the interval")
	}
	if p.recomputes != 0 || p.Totals().Recomputes != 1 {
		t.Error("interval counters not reset or totals lost")
	}
}

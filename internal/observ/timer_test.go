package observ

import (
	"context"
	"strings"
	"sync"
	"testing"
)

func TestTrackAccumulatesRuns(t *testing.T) {
	timer := NewTimer()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			timer.Track("resolve")()
		}()
	}
	wg.Wait()
	idx := timer.Begin("load")
	timer.End(idx, "2 files")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %+v", report.Phases)
	}
	if report.Phases[0].Name != "resolve" || report.Phases[0].Runs != 8 {
		t.Fatalf("resolve phase = %+v", report.Phases[0])
	}
	if !strings.Contains(timer.Summary(), "// 2 files") {
		t.Fatalf("summary lacks note:\n%s", timer.Summary())
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Fatal("expected no timer")
	}
	var nilTimer *Timer
	nilTimer.Track("noop")()

	timer := NewTimer()
	ctx := WithTimer(context.Background(), timer)
	FromContext(ctx).Track("parse")()
	if got := timer.Report().Phases[0].Name; got != "parse" {
		t.Fatalf("phase = %q", got)
	}
}

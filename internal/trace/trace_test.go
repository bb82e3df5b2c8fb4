package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLevelFiltersScopes(t *testing.T) {
	tests := []struct {
		level Level
		want  []Scope
	}{
		{LevelOff, nil},
		{LevelPhase, []Scope{ScopeEngine, ScopeDocument}},
		{LevelDetail, []Scope{ScopeEngine, ScopeDocument, ScopeQuery}},
		{LevelDebug, []Scope{ScopeEngine, ScopeDocument, ScopeQuery, ScopeNode}},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var got []Scope
			for _, s := range []Scope{ScopeEngine, ScopeDocument, ScopeQuery, ScopeNode} {
				if tt.level.ShouldEmit(s) {
					got = append(got, s)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("emitted %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("emitted %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	if l, err := ParseLevel("Detail"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel(Detail) = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
	if f, err := ParseFormat("json"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat(json) = %v, %v", f, err)
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode(both) = %v, %v", m, err)
	}
}

func TestStreamTracerWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)

	span := BeginAt(tr, ScopeDocument, "parse", 0, Where{URI: "file:///a.ky", Key: "Parse#0"})
	span.At(7).WithExtra("tokens", "12").End("ok")
	Begin(tr, ScopeNode, "resolve-decl", span.ID()).End("")
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d events, want begin and end of parse only:\n%s", len(lines), buf.String())
	}
	var end struct {
		Kind   string            `json:"kind"`
		Name   string            `json:"name"`
		Detail string            `json:"detail"`
		URI    string            `json:"uri"`
		Rev    uint64            `json:"rev"`
		Key    string            `json:"key"`
		Extra  map[string]string `json:"extra"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &end); err != nil {
		t.Fatalf("bad ndjson %q: %v", lines[1], err)
	}
	if end.Kind != "end" || end.Name != "parse" || end.Detail != "ok" || end.Extra["tokens"] != "12" ||
		end.URI != "file:///a.ky" || end.Rev != 7 || end.Key != "Parse#0" {
		t.Fatalf("end event = %+v", end)
	}
}

func TestRingTracerKeepsLatest(t *testing.T) {
	tr := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(tr, ScopeQuery, name, "", Where{})
	}
	events := tr.Snapshot()
	var names []string
	for _, ev := range events {
		names = append(names, ev.Name)
	}
	if strings.Join(names, ",") != "c,d,e" {
		t.Fatalf("ring holds %v, want the last three", names)
	}

	var buf bytes.Buffer
	if err := tr.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "query") || strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("unexpected dump:\n%s", buf.String())
	}
}

func TestNewWithLevelOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Fatal("off tracer reports enabled")
	}
	// spans on a disabled tracer are safe to use
	Begin(tr, ScopeEngine, "noop", 0).WithExtra("k", "v").End("")
}

func TestChildSpansInheritDocument(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	outer := BeginAt(ring, ScopeQuery, "query:hover", 0, Where{URI: "file:///b.ky", Revision: 3})
	inner := BeginIn(outer.Bind(ctx), ScopeNode, "resolve-decl")
	inner.End("")
	outer.End("")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	begin := events[1]
	if begin.Name != "resolve-decl" || begin.ParentID != outer.ID() || begin.Where.URI != "file:///b.ky" || begin.Where.Revision != 3 {
		t.Fatalf("child begin = %+v", begin)
	}
	line := string(FormatEvent(&events[2], FormatText))
	if !strings.Contains(line, "resolve-decl file:///b.ky@3") {
		t.Fatalf("text line %q lacks the document", line)
	}
	if len(ring.Document("file:///other.ky")) != 0 {
		t.Fatal("events leaked into another document")
	}
}

func TestRingOfLooksThroughFanout(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf, Format: FormatText})
	if err != nil {
		t.Fatal(err)
	}
	ring, ok := RingOf(tr)
	if !ok {
		t.Fatal("no ring behind a stream+ring tracer")
	}
	Point(tr, ScopeEngine, "tick", "", Where{})
	if len(ring.Snapshot()) != 1 || !strings.Contains(buf.String(), "tick") {
		t.Fatalf("event did not reach both sinks: ring=%d stream=%q", len(ring.Snapshot()), buf.String())
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestHeartbeatStop(t *testing.T) {
	var nilBeat *Heartbeat
	nilBeat.Stop()
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatal("heartbeat started on a disabled tracer")
	}
	ring := NewRingTracer(8, LevelPhase)
	hb := StartHeartbeat(ring, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	hb.Stop()
	hb.Stop()
	n := len(ring.Snapshot())
	if n == 0 {
		t.Fatal("no heartbeat recorded")
	}
	time.Sleep(5 * time.Millisecond)
	if len(ring.Snapshot()) != n {
		t.Fatal("heartbeat kept running after Stop")
	}
}

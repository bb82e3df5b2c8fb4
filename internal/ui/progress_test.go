package ui

import (
	"errors"
	"strings"
	"testing"

	"kymera/internal/check"
)

func TestApplyEventTracksFiles(t *testing.T) {
	m := NewProgressModel("checking", []string{"a.ky", "b.ky", "a.ky"}, nil).(*progressModel)
	if len(m.items) != 2 {
		t.Fatalf("items = %+v, want duplicates folded", m.items)
	}

	m.applyEvent(check.Event{File: "a.ky", Stage: check.StageAnalyze, Status: check.StatusWorking})
	if m.items[0].status != "analyzing" {
		t.Fatalf("a.ky status = %q", m.items[0].status)
	}
	if got := m.percent(); got != 0.2 {
		t.Fatalf("percent = %v, want 0.2", got)
	}

	m.applyEvent(check.Event{File: "a.ky", Stage: check.StageAnalyze, Status: check.StatusDone})
	m.applyEvent(check.Event{File: "b.ky", Stage: check.StageLoad, Status: check.StatusError, Err: errors.New("boom")})
	m.applyEvent(check.Event{File: "c.ky", Status: check.StatusDone})
	if m.percent() != 1 || m.errors != 1 {
		t.Fatalf("percent = %v errors = %d", m.percent(), m.errors)
	}

	m.Update(doneMsg{})
	view := m.View()
	if !strings.Contains(view, "done: checking, 1 with errors") {
		t.Fatalf("unexpected header:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.ky", 20, "short.ky"},
		{"very/long/path/to/file.ky", 10, "very..."},
		{"abcdef", 3, "abc"},
		{"日本語のファイル.ky", 9, "日..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"limbs/internal/batch"
)

func TestProgressModelTracksFiles(t *testing.T) {
	events := make(chan batch.Event)
	m := NewProgressModel("limbs batch", []string{"a.txt", "b.txt"}, events).(*progressModel)

	m.Update(eventMsg{File: "a.txt", Stage: batch.StageEval, Status: batch.StatusWorking})
	if got := m.fraction(); got != 0.25 {
		t.Fatalf("fraction = %v, want 0.25", got)
	}
	view := m.View()
	if !strings.Contains(view, "evaluating") || !strings.Contains(view, "0/2") {
		t.Fatalf("view:\n%s", view)
	}

	m.Update(eventMsg{File: "a.txt", Stage: batch.StageEval, Status: batch.StatusDone})
	m.Update(eventMsg{File: "b.txt", Stage: batch.StageCache, Status: batch.StatusCached})
	m.Update(eventMsg{File: "unknown", Status: batch.StatusError})
	if got := m.fraction(); got != 1 {
		t.Fatalf("fraction = %v, want 1", got)
	}

	_, cmd := m.Update(closedMsg{})
	if !m.done || cmd == nil {
		t.Fatal("closed channel must finish the model")
	}
	view = m.View()
	if !strings.Contains(view, "done: limbs batch  2/2") || !strings.Contains(view, "cached") {
		t.Fatalf("final view:\n%s", view)
	}
}

func TestProgressModelResize(t *testing.T) {
	m := NewProgressModel("t", []string{"x"}, nil).(*progressModel)
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if m.width != 40 || m.bar.Width != 36 {
		t.Fatalf("width=%d bar=%d", m.width, m.bar.Width)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("a/very/long/path.txt", 10); got != "a/very/..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Fatalf("truncate = %q", got)
	}
}

package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"limbs/internal/cache"
	"limbs/internal/eval"
	"limbs/internal/limbstore"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) count(status Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Status == status {
			n++
		}
	}
	return n
}

func TestRunEvaluatesFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "# header\n4294967295 add:1\n\n-12 mul:3\r\n")
	b := writeFile(t, dir, "b.txt", "i64:7 mul:6\nbogus:1 add:x\n")
	missing := filepath.Join(dir, "missing.txt")

	rec := &recorder{}
	results, err := Run(context.Background(), Request{
		Files:    []string{a, b, missing},
		Jobs:     2,
		Progress: rec,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 || results[0].Path != a || results[1].Path != b {
		t.Fatalf("results out of order: %+v", results)
	}

	got := results[0].Lines
	if len(got) != 2 || got[0].Line != 2 || got[0].Value != "4294967296" || got[0].Limbs != 2 || got[1].Value != "-36" {
		t.Fatalf("a.txt lines = %+v", got)
	}
	if got[1].Line != 4 {
		t.Fatalf("CRLF line number = %d, want 4", got[1].Line)
	}

	lines := results[1].Lines
	if len(lines) != 2 || lines[0].Value != "42" || lines[1].Err == "" {
		t.Fatalf("b.txt lines = %+v", lines)
	}
	if !errors.Is(results[2].Err, os.ErrNotExist) {
		t.Fatalf("missing file err = %v", results[2].Err)
	}

	sum := Summarize(results)
	if sum.Files != 3 || sum.Lines != 4 || sum.Failed != 1 || sum.Broken != 1 || sum.Cached != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	if rec.count(StatusQueued) != 3 || rec.count(StatusDone) != 2 || rec.count(StatusError) != 1 {
		t.Fatalf("events = %+v", rec.events)
	}
}

func TestRunUsesCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "jobs.txt", "99 mul:1000000000 add:1\n")
	c, err := cache.OpenDir(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	req := Request{Files: []string{path}, Cache: c, Settings: []string{"geometric"}}

	first, err := Run(context.Background(), req)
	if err != nil || first[0].Cached {
		t.Fatalf("first run: cached=%v err=%v", first[0].Cached, err)
	}
	second, err := Run(context.Background(), req)
	if err != nil || !second[0].Cached {
		t.Fatalf("second run: cached=%v err=%v", second[0].Cached, err)
	}
	if second[0].Lines[0].Value != "99000000001" {
		t.Fatalf("cached value = %q", second[0].Lines[0].Value)
	}

	req.Settings = []string{"fixed"}
	third, err := Run(context.Background(), req)
	if err != nil || third[0].Cached {
		t.Fatalf("settings change must miss: cached=%v err=%v", third[0].Cached, err)
	}
}

func TestRunRecordsLimitPerLine(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "big.txt", "1 *4294967295 *4294967295 *4294967295\n5\n")
	ev := eval.New(eval.Options{Store: []limbstore.Option{limbstore.WithMaxLimbs(2)}})
	results, err := Run(context.Background(), Request{Files: []string{path}, Evaluator: ev})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	lines := results[0].Lines
	if len(lines) != 2 || !strings.Contains(lines[0].Err, limbstore.ErrMaxLimbs.Error()) || lines[1].Value != "5" {
		t.Fatalf("lines = %+v", lines)
	}
}

func TestRunCanceled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "1 add:1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, Request{Files: []string{path}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestChannelSink(t *testing.T) {
	ch := make(chan Event, 1)
	ChannelSink{Ch: ch}.OnEvent(Event{File: "x", Status: StatusDone})
	if evt := <-ch; evt.File != "x" {
		t.Fatalf("event = %+v", evt)
	}
	ChannelSink{}.OnEvent(Event{})
}

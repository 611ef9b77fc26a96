package cmd

import (
	"errors"
	"strings"
	"testing"

	"wiiware-modder/config"
	"wiiware-modder/patch"
)

// TestBatchModelInitialization tests that the batch model starts clean
func TestBatchModelInitialization(t *testing.T) {
	m := initialBatchModel(config.Config{}, "fix.ips", []string{"a.brres", "b.brres"}, "out")

	if m.done {
		t.Fatal("model should not start done")
	}
	if m.totalDone != 0 || m.totalFailed != 0 {
		t.Fatal("counters should start at zero")
	}
	if m.progressChan == nil {
		t.Fatal("progress channel should be created")
	}
}

// TestBatchProgressCounting tests that events update the counters
func TestBatchProgressCounting(t *testing.T) {
	m := initialBatchModel(config.Config{}, "fix.ips", []string{"a.brres", "b.brres"}, "out")

	apply := func(ev patch.ProgressEvent) {
		updated, _ := m.Update(batchProgressMsg(ev))
		m = updated.(batchModel)
	}

	apply(patch.ProgressEvent{Index: 1, Total: 2, File: "a.brres", Phase: "patching"})
	if !strings.Contains(m.status, "a.brres") {
		t.Fatalf("status should name the current file, got %q", m.status)
	}

	apply(patch.ProgressEvent{Index: 1, Total: 2, File: "a.brres", Phase: "done"})
	if m.totalDone != 1 {
		t.Fatalf("expected 1 done, got %d", m.totalDone)
	}

	apply(patch.ProgressEvent{Index: 2, Total: 2, File: "b.brres", Phase: "failed", Err: errors.New("missing PATCH header")})
	if m.totalFailed != 1 {
		t.Fatalf("expected 1 failed, got %d", m.totalFailed)
	}
	if len(m.errors) != 1 || !strings.Contains(m.errors[0], "b.brres") {
		t.Fatalf("expected error entry for b.brres, got %v", m.errors)
	}
}

// TestBatchDone tests the done transition and summary
func TestBatchDone(t *testing.T) {
	m := initialBatchModel(config.Config{}, "fix.ips", []string{"a.brres"}, "out")
	m.totalDone = 2
	m.totalFailed = 1

	updated, cmd := m.Update(batchDoneMsg{})
	m = updated.(batchModel)

	if !m.done {
		t.Fatal("expected done after batchDoneMsg")
	}
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if !strings.Contains(m.status, "2 patched") || !strings.Contains(m.status, "1 failed") {
		t.Fatalf("summary should report counts, got %q", m.status)
	}
}

// TestBatchViewShowsErrors tests the error section of the view
func TestBatchViewShowsErrors(t *testing.T) {
	m := initialBatchModel(config.Config{}, "fix.ips", []string{"a.brres"}, "out")
	m.errors = []string{"a.brres: missing PATCH header"}

	view := m.View()
	if !strings.Contains(view, "missing PATCH header") {
		t.Fatalf("expected error in view, got %q", view)
	}
}

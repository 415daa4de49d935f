package reminders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScheduleAndTriggerDue(t *testing.T) {
	idx := NewIndex()
	r := idx.ScheduleFollowUp("ping me later", "slack", "alice", 0, "normal")
	due := idx.TriggerDue()
	if len(due) != 1 || due[0].ID != r.ID {
		t.Fatalf("expected reminder to trigger immediately (minutes=0), got %+v", due)
	}
	if due[0].Status != StatusTriggered {
		t.Fatalf("expected triggered status, got %v", due[0].Status)
	}
}

func TestTriggerDueSkipsFuture(t *testing.T) {
	idx := NewIndex()
	idx.ScheduleFollowUp("later", "slack", "bob", 60, "normal")
	if due := idx.TriggerDue(); len(due) != 0 {
		t.Fatalf("expected no due reminders, got %d", len(due))
	}
}

func TestDismissAndComplete(t *testing.T) {
	idx := NewIndex()
	r := idx.ScheduleFollowUp("x", "slack", "a", 0, "low")
	if err := idx.Dismiss(r.ID); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	all := idx.All()
	if all[0].Status != StatusDismissed {
		t.Fatalf("expected dismissed status")
	}
	if err := idx.Complete(r.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
}

func TestTransitionUnknownID(t *testing.T) {
	idx := NewIndex()
	if err := idx.Dismiss(r().ID); err == nil {
		t.Fatalf("expected error for unknown reminder id")
	}
}

func r() FollowUpReminder {
	idx := NewIndex()
	return idx.ScheduleFollowUp("x", "c", "s", 5, "low")
}

func TestSaveLoadIndexRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")

	idx := NewIndex()
	idx.ScheduleFollowUp("first", "slack", "alice", 5, "normal")
	idx.ScheduleFollowUp("second", "email", "bob", 10, "high")

	if err := idx.SaveIndex(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}

	loaded := NewIndex()
	if err := loaded.LoadIndex(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.All()) != 2 {
		t.Fatalf("expected 2 reminders reloaded, got %d", len(loaded.All()))
	}
}

func TestLoadMissingIndexIsNotError(t *testing.T) {
	idx := NewIndex()
	if err := idx.LoadIndex(filepath.Join(t.TempDir(), "missing.json")); err != nil {
		t.Fatalf("expected missing file to be a no-op, got %v", err)
	}
}

// E7 / property 13 — ICS injection resistance.
func TestExportICSInjectionResistance(t *testing.T) {
	idx := NewIndex()
	r := idx.ScheduleFollowUp("Review PR\r\nATTACH:http://attacker.com/malware\r\nDESCRIPTION:fake", "slack", "alice", 5, "high")

	out := ExportICS(r)
	if strings.Contains(out, "\r\nATTACH:") {
		t.Fatalf("expected no injected ATTACH property line, got:\n%s", out)
	}
	if !strings.Contains(out, "DESCRIPTION:Original message:") {
		t.Fatalf("expected a single legitimate DESCRIPTION line, got:\n%s", out)
	}
	// The embedded CRLF must show up escaped as literal \n, not a raw line break.
	if !strings.Contains(out, "\\n") {
		t.Fatalf("expected embedded newline escaped to literal backslash-n, got:\n%s", out)
	}
}

func TestExportICSEscapesSemicolonAndComma(t *testing.T) {
	idx := NewIndex()
	r := idx.ScheduleFollowUp("buy milk; eggs, bread", "slack", "alice", 5, "low")
	out := ExportICS(r)
	if !strings.Contains(out, `milk\; eggs\,`) {
		t.Fatalf("expected escaped ; and , in output:\n%s", out)
	}
}

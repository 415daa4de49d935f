// Package reminders implements the scheduler bridge: follow-up reminders
// derived from classified messages, persisted as a single JSON index and
// exported per-reminder as iCalendar files (spec 4.L).
package reminders

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/goclaw/internal/textutil"
)

// Status is a FollowUpReminder's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusTriggered Status = "triggered"
	StatusDismissed Status = "dismissed"
	StatusCompleted Status = "completed"
)

const maxDescriptionGraphemes = 80

// FollowUpReminder is a scheduled future nudge.
type FollowUpReminder struct {
	ID             uuid.UUID
	SourceMessage  string
	SourceChannel  string
	SourceSender   string
	RemindAt       time.Time
	Description    string
	Status         Status
	Priority       string
	CreatedAt      time.Time
}

var nowFunc = time.Now

// Index holds the in-memory set of reminders and persists to a single JSON
// file via a temp-file-then-rename, matching the original's
// ".tmp-<pid>" convention so a crash mid-write never corrupts the index.
type Index struct {
	mu        sync.Mutex
	reminders map[uuid.UUID]*FollowUpReminder
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{reminders: make(map[uuid.UUID]*FollowUpReminder)}
}

// ScheduleFollowUp creates a new Pending reminder remind_at = now + minutes.
func (idx *Index) ScheduleFollowUp(sourceMessage, channel, sender string, minutes int, priority string) FollowUpReminder {
	r := FollowUpReminder{
		ID:            uuid.New(),
		SourceMessage: sourceMessage,
		SourceChannel: channel,
		SourceSender:  sender,
		RemindAt:      nowFunc().Add(time.Duration(minutes) * time.Minute),
		Description:   textutil.TruncateGraphemes(sourceMessage, maxDescriptionGraphemes),
		Status:        StatusPending,
		Priority:      priority,
		CreatedAt:     nowFunc(),
	}
	idx.mu.Lock()
	idx.reminders[r.ID] = &r
	idx.mu.Unlock()
	return r
}

// TriggerDue promotes every Pending reminder whose remind_at has passed to
// Triggered and returns copies of those reminders.
func (idx *Index) TriggerDue() []FollowUpReminder {
	now := nowFunc()
	idx.mu.Lock()
	defer idx.mu.Unlock()
	var due []FollowUpReminder
	for _, r := range idx.reminders {
		if r.Status == StatusPending && !r.RemindAt.After(now) {
			r.Status = StatusTriggered
			due = append(due, *r)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].RemindAt.Before(due[j].RemindAt) })
	return due
}

// Dismiss transitions a reminder to Dismissed.
func (idx *Index) Dismiss(id uuid.UUID) error {
	return idx.transition(id, StatusDismissed)
}

// Complete transitions a reminder to Completed.
func (idx *Index) Complete(id uuid.UUID) error {
	return idx.transition(id, StatusCompleted)
}

var ErrNotFound = fmt.Errorf("reminder not found")

func (idx *Index) transition(id uuid.UUID, to Status) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	r, ok := idx.reminders[id]
	if !ok {
		return ErrNotFound
	}
	r.Status = to
	return nil
}

// All returns a stable-ordered snapshot of every reminder.
func (idx *Index) All() []FollowUpReminder {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	out := make([]FollowUpReminder, 0, len(idx.reminders))
	for _, r := range idx.reminders {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// SaveIndex serializes the reminder list to path via a temp-file-then-rename
// so a crash mid-write never leaves a truncated index on disk.
func (idx *Index) SaveIndex(path string) error {
	all := idx.All()
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal reminder index: %w", err)
	}

	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".tmp-%d-%s", os.Getpid(), filepath.Base(path)))
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp reminder index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename reminder index into place: %w", err)
	}
	return nil
}

// LoadIndex replaces the Index's contents with what's persisted at path. A
// missing file is not an error — it leaves the Index empty.
func (idx *Index) LoadIndex(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read reminder index: %w", err)
	}
	var all []FollowUpReminder
	if err := json.Unmarshal(data, &all); err != nil {
		return fmt.Errorf("unmarshal reminder index: %w", err)
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.reminders = make(map[uuid.UUID]*FollowUpReminder, len(all))
	for i := range all {
		r := all[i]
		idx.reminders[r.ID] = &r
	}
	return nil
}

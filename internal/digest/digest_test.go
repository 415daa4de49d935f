package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/classify"
)

func classified(priority classify.Priority, mtype classify.MessageType, text string) classify.ClassifiedMessage {
	return classify.ClassifiedMessage{
		Message:      classify.ChannelMessage{Text: text, SenderName: "alice"},
		Priority:     priority,
		MessageType:  mtype,
		ClassifiedAt: time.Now(),
	}
}

// E5 — digest generation.
func TestGenerateDigestSelection(t *testing.T) {
	c := New(IntervalOff, 0)
	c.AddMessage(classified(classify.PriorityUrgent, classify.TypeActionRequired, "server down"), "slack")
	c.AddMessage(classified(classify.PriorityNormal, classify.TypeNotification, "deploy finished"), "slack")
	c.AddMessage(classified(classify.PriorityNormal, classify.TypeActionRequired, "please review PR"), "email")

	d := c.Generate()
	if d.TotalMessages != 3 {
		t.Fatalf("expected 3 total messages, got %d", d.TotalMessages)
	}
	if len(d.Highlights) != 1 {
		t.Fatalf("expected 1 highlight (priority >= High), got %d", len(d.Highlights))
	}
	if len(d.ActionItems) != 2 {
		t.Fatalf("expected 2 action items, got %d", len(d.ActionItems))
	}
	if d.ChannelCounts["slack"] != 2 || d.ChannelCounts["email"] != 1 {
		t.Fatalf("unexpected channel counts: %+v", d.ChannelCounts)
	}

	// Collector state must be empty afterward.
	d2 := c.Generate()
	if d2.TotalMessages != 0 {
		t.Fatalf("expected collector reset after generate, got %d messages", d2.TotalMessages)
	}
}

func TestShouldGenerateRespectsInterval(t *testing.T) {
	c := New(IntervalHourly, 0)
	if c.ShouldGenerate() {
		t.Fatalf("expected not to generate immediately after creation")
	}
	c.periodStart = time.Now().Add(-2 * time.Hour)
	if !c.ShouldGenerate() {
		t.Fatalf("expected to generate after interval elapsed")
	}
}

func TestOffIntervalNeverGenerates(t *testing.T) {
	c := New(IntervalOff, 0)
	c.periodStart = time.Now().Add(-365 * 24 * time.Hour)
	if c.ShouldGenerate() {
		t.Fatalf("expected Off interval to never trigger")
	}
}

func TestEntryBoundEviction(t *testing.T) {
	c := New(IntervalOff, 3)
	for i := 0; i < 5; i++ {
		c.AddMessage(classified(classify.PriorityNormal, classify.TypeNotification, "msg"), "slack")
	}
	d := c.Generate()
	if d.TotalMessages != 3 {
		t.Fatalf("expected bound of 3 entries retained, got %d", d.TotalMessages)
	}
}

func TestToMarkdownEscapesUserContent(t *testing.T) {
	c := New(IntervalOff, 0)
	c.AddMessage(classified(classify.PriorityUrgent, classify.TypeActionRequired, "*bold* _ital_ [link]"), "slack")
	d := c.Generate()
	md := d.ToMarkdown()
	if strings.Contains(md, "[link]") {
		t.Fatalf("expected markdown-special characters to be escaped: %s", md)
	}
	if !strings.HasPrefix(md, "# Channel Digest") {
		t.Fatalf("expected title header, got %s", md)
	}
}

// Package digest implements the digest collector: it accumulates classified
// channel messages into a rolling window and emits a markdown + in-app
// summary on the configured cadence (spec 4.K).
package digest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/goclaw/internal/classify"
	"github.com/nextlevelbuilder/goclaw/internal/textutil"
)

// Interval is the digest cadence.
type Interval string

const (
	IntervalOff    Interval = "off"
	IntervalHourly Interval = "hourly"
	IntervalDaily  Interval = "daily"
	IntervalWeekly Interval = "weekly"
)

func (i Interval) duration() (time.Duration, bool) {
	switch i {
	case IntervalHourly:
		return time.Hour, true
	case IntervalDaily:
		return 24 * time.Hour, true
	case IntervalWeekly:
		return 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

const maxSummaryGraphemes = 120
const defaultMaxEntries = 10_000

// Entry is a single accumulated line item, derived from a ClassifiedMessage.
type Entry struct {
	ChannelName string
	SenderName  string
	Summary     string
	Priority    classify.Priority
	MessageType classify.MessageType
	At          time.Time
}

// Digest is the emitted windowed summary.
type Digest struct {
	ID              uuid.UUID
	PeriodStart     time.Time
	PeriodEnd       time.Time
	ChannelsCovered []string
	TotalMessages   int
	Summary         string
	Highlights      []Entry
	ActionItems     []Entry
	ChannelCounts   map[string]int
}

var nowFunc = time.Now

// Collector accumulates Entry values until a Digest is generated.
type Collector struct {
	mu          sync.Mutex
	interval    Interval
	maxEntries  int
	periodStart time.Time
	entries     []Entry
}

// New creates a Collector for the given cadence. maxEntries <= 0 uses the
// default bound (10,000).
func New(interval Interval, maxEntries int) *Collector {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Collector{interval: interval, maxEntries: maxEntries, periodStart: nowFunc()}
}

// AddMessage derives a summary line from a classified message and appends it
// to the collector, dropping the oldest entry if the bound is exceeded.
func (c *Collector) AddMessage(msg classify.ClassifiedMessage, channelName string) {
	sender := msg.Message.SenderName
	if sender == "" {
		sender = msg.Message.SenderID
	}

	var summary string
	switch {
	case msg.Message.IsCommand:
		summary = fmt.Sprintf("ran command: %s", textutil.TruncateGraphemes(msg.Message.Text, maxSummaryGraphemes))
	case msg.Message.HasFile:
		summary = "shared a file"
	default:
		summary = textutil.TruncateGraphemes(msg.Message.Text, maxSummaryGraphemes)
	}

	entry := Entry{
		ChannelName: channelName,
		SenderName:  sender,
		Summary:     summary,
		Priority:    msg.Priority,
		MessageType: msg.MessageType,
		At:          msg.ClassifiedAt,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
	if len(c.entries) > c.maxEntries {
		c.entries = c.entries[len(c.entries)-c.maxEntries:]
	}
}

// ShouldGenerate reports whether the configured interval has elapsed since
// the period started. An Off interval never triggers.
func (c *Collector) ShouldGenerate() bool {
	d, ok := c.interval.duration()
	if !ok {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return nowFunc().Sub(c.periodStart) >= d
}

// Generate builds a Digest from the current window, resets the collector's
// state (entries cleared, period_start reset to now), and returns the
// generated Digest.
func (c *Collector) Generate() Digest {
	c.mu.Lock()
	defer c.mu.Unlock()

	end := nowFunc()
	channelSet := map[string]bool{}
	counts := map[string]int{}
	var highlights, actionItems []Entry

	for _, e := range c.entries {
		channelSet[e.ChannelName] = true
		counts[e.ChannelName]++
		if e.Priority >= classify.PriorityHigh {
			highlights = append(highlights, e)
		}
		if e.MessageType == classify.TypeActionRequired {
			actionItems = append(actionItems, e)
		}
	}

	channels := make([]string, 0, len(channelSet))
	for ch := range channelSet {
		channels = append(channels, ch)
	}

	d := Digest{
		ID:              uuid.New(),
		PeriodStart:     c.periodStart,
		PeriodEnd:       end,
		ChannelsCovered: channels,
		TotalMessages:   len(c.entries),
		Summary:         fmt.Sprintf("%d messages across %d channel(s)", len(c.entries), len(channelSet)),
		Highlights:      highlights,
		ActionItems:     actionItems,
		ChannelCounts:   counts,
	}

	c.entries = nil
	c.periodStart = end
	return d
}

// escapeMarkdown neutralizes characters that would otherwise be interpreted
// as markdown formatting in user-provided content.
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
		"[", "\\[",
		"]", "\\]",
	)
	return replacer.Replace(s)
}

// ToMarkdown renders a Digest as a markdown document matching the format
// consumed by the UI and exported to .rustant/digests/.
func (d Digest) ToMarkdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Channel Digest — %s to %s\n\n",
		d.PeriodStart.Format(time.RFC3339), d.PeriodEnd.Format(time.RFC3339))

	fmt.Fprintf(&b, "## Summary\n\n%s\n\n", escapeMarkdown(d.Summary))

	b.WriteString("## Highlights\n\n")
	if len(d.Highlights) == 0 {
		b.WriteString("_none_\n\n")
	} else {
		for _, h := range d.Highlights {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", escapeMarkdown(h.SenderName), escapeMarkdown(h.ChannelName), escapeMarkdown(h.Summary))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Action Items\n\n")
	if len(d.ActionItems) == 0 {
		b.WriteString("_none_\n\n")
	} else {
		for _, a := range d.ActionItems {
			fmt.Fprintf(&b, "- [ ] %s (%s): %s\n", escapeMarkdown(a.SenderName), escapeMarkdown(a.ChannelName), escapeMarkdown(a.Summary))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Channel Breakdown\n\n")
	for ch, n := range d.ChannelCounts {
		fmt.Fprintf(&b, "- %s: %d\n", escapeMarkdown(ch), n)
	}

	return b.String()
}

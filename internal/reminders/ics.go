package reminders

import (
	"fmt"
	"strings"
	"time"
)

const icsTimeLayout = "20060102T150405Z"

// escapeICSText strips CR/LF (which would otherwise let user content inject
// additional iCalendar property lines) and backslash-escapes ';' and ','
// per RFC 5545 §3.3.11.
func escapeICSText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\n")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	return s
}

// ExportICS renders r as a single-VEVENT iCalendar document. Every
// user-controlled field is passed through escapeICSText so injected CRLF
// sequences can never start a new property line.
func ExportICS(r FollowUpReminder) string {
	start := r.RemindAt.UTC()
	end := start.Add(30 * time.Minute)
	stamp := nowFunc().UTC()

	summary := fmt.Sprintf("Follow up: %s (%s from %s)", r.Description, r.SourceChannel, r.SourceSender)
	description := fmt.Sprintf("Original message: %s. Priority: %s.", r.SourceMessage, r.Priority)

	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//goclaw//reminders//EN\r\n")
	b.WriteString("BEGIN:VEVENT\r\n")
	fmt.Fprintf(&b, "DTSTART:%s\r\n", start.Format(icsTimeLayout))
	fmt.Fprintf(&b, "DTEND:%s\r\n", end.Format(icsTimeLayout))
	fmt.Fprintf(&b, "DTSTAMP:%s\r\n", stamp.Format(icsTimeLayout))
	fmt.Fprintf(&b, "SUMMARY:%s\r\n", escapeICSText(summary))
	fmt.Fprintf(&b, "DESCRIPTION:%s\r\n", escapeICSText(description))
	fmt.Fprintf(&b, "UID:%s@rustant\r\n", r.ID.String())
	b.WriteString("END:VEVENT\r\n")
	b.WriteString("END:VCALENDAR\r\n")
	return b.String()
}

// Package findings implements the canonical cross-scanner finding schema and
// its content-hash deduplication, shared by every scanner integration (SAST,
// IaC, dependency audit, ...) without depending on any of them.
package findings

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Severity ranks a Finding from informational to critical.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Status tracks a Finding's disposition over its lifetime.
type Status string

const (
	StatusOpen        Status = "open"
	StatusSuppressed  Status = "suppressed"
	StatusResolved    Status = "resolved"
	StatusFalsePositive Status = "false_positive"
)

// Location pinpoints a Finding within a workspace, when known. It is
// deliberately excluded from the dedup hash since line numbers shift.
type Location struct {
	Path      string
	StartLine int
	EndLine   int
}

// Provenance records which scanner produced a Finding and, optionally, a
// cross-scanner consensus count. The consensus field has no driver wired
// yet in this core — left as a documented data point for callers that want
// to aggregate reports from multiple scanners on the same content hash.
type Provenance struct {
	Scanner    string
	RuleID     string
	Confidence float64
	Consensus  int
}

// Suppression records why and by whom a Finding was dismissed.
type Suppression struct {
	Reason      string
	SuppressedBy string
	SuppressedAt time.Time
}

// Finding is the canonical record every scanner integration normalizes into.
type Finding struct {
	ID           uuid.UUID
	Title        string
	Description  string
	Severity     Severity
	Category     string
	Location     *Location
	ContentHash  string
	Provenance   Provenance
	Remediation  string
	References   []string
	Suppression  *Suppression
	CreatedAt    time.Time
	Status       Status
	Tags         []string
}

// ContentHash computes the SHA-256 (hex-encoded) of
// title|description|scanner|rule_id — deliberately excluding location so the
// same logical finding survives line-number drift across runs.
func ContentHash(title, description, scanner, ruleID string) string {
	h := sha256.New()
	h.Write([]byte(title))
	h.Write([]byte{'|'})
	h.Write([]byte(description))
	h.Write([]byte{'|'})
	h.Write([]byte(scanner))
	h.Write([]byte{'|'})
	h.Write([]byte(ruleID))
	return hex.EncodeToString(h.Sum(nil))
}

// New builds a Finding with its ID, CreatedAt, ContentHash and default
// Status populated from the supplied fields.
func New(title, description string, severity Severity, category string, provenance Provenance) Finding {
	return Finding{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Severity:    severity,
		Category:    category,
		ContentHash: ContentHash(title, description, provenance.Scanner, provenance.RuleID),
		Provenance:  provenance,
		CreatedAt:   time.Now(),
		Status:      StatusOpen,
	}
}

// Dedup collapses findings sharing a ContentHash into a single representative
// (the first one seen), preserving input order of first occurrence.
func Dedup(all []Finding) []Finding {
	seen := make(map[string]bool, len(all))
	out := make([]Finding, 0, len(all))
	for _, f := range all {
		if seen[f.ContentHash] {
			continue
		}
		seen[f.ContentHash] = true
		out = append(out, f)
	}
	return out
}

// IsDuplicate reports whether a and b share a content hash.
func IsDuplicate(a, b Finding) bool {
	return a.ContentHash == b.ContentHash
}

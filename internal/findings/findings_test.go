package findings

import "testing"

func TestContentHashIgnoresLocation(t *testing.T) {
	a := New("SQL injection", "unescaped input", SeverityHigh, "security", Provenance{Scanner: "sast", RuleID: "SQLI-1"})
	a.Location = &Location{Path: "a.go", StartLine: 10}
	b := New("SQL injection", "unescaped input", SeverityHigh, "security", Provenance{Scanner: "sast", RuleID: "SQLI-1"})
	b.Location = &Location{Path: "a.go", StartLine: 99}

	if !IsDuplicate(a, b) {
		t.Fatalf("expected findings with differing locations but identical title/desc/scanner/rule to be duplicates")
	}
}

func TestDedupKeepsFirstOccurrence(t *testing.T) {
	f1 := New("X", "Y", SeverityLow, "quality", Provenance{Scanner: "lint", RuleID: "R1"})
	f2 := New("X", "Y", SeverityLow, "quality", Provenance{Scanner: "lint", RuleID: "R1"})
	f3 := New("Z", "W", SeverityLow, "quality", Provenance{Scanner: "lint", RuleID: "R2"})

	out := Dedup([]Finding{f1, f2, f3})
	if len(out) != 2 {
		t.Fatalf("expected 2 deduped findings, got %d", len(out))
	}
	if out[0].ID != f1.ID {
		t.Fatalf("expected first occurrence kept")
	}
}

func TestDifferentRuleIDsAreNotDuplicates(t *testing.T) {
	a := New("X", "Y", SeverityLow, "quality", Provenance{Scanner: "lint", RuleID: "R1"})
	b := New("X", "Y", SeverityLow, "quality", Provenance{Scanner: "lint", RuleID: "R2"})
	if IsDuplicate(a, b) {
		t.Fatalf("expected different rule ids to produce distinct hashes")
	}
}

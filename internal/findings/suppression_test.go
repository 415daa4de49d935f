package findings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAndApplySuppressionList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suppressions.yaml")
	content := `
rules:
  semgrep:
    - rule_id: hardcoded-secret
      path_prefix: vendor/
      reason: vendored code, not ours to fix
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	list, err := LoadSuppressionList(path)
	if err != nil {
		t.Fatalf("LoadSuppressionList: %v", err)
	}

	matching := New("hardcoded secret", "desc", SeverityHigh, "secrets", Provenance{Scanner: "semgrep", RuleID: "hardcoded-secret"})
	matching.Location = &Location{Path: "vendor/lib/a.go"}
	other := New("hardcoded secret", "desc", SeverityHigh, "secrets", Provenance{Scanner: "semgrep", RuleID: "hardcoded-secret"})
	other.Location = &Location{Path: "internal/a.go"}

	out := list.Apply([]Finding{matching, other}, "ci-bot")

	if out[0].Status != StatusSuppressed {
		t.Fatalf("expected vendor/ finding suppressed, got %s", out[0].Status)
	}
	if out[0].Suppression == nil || out[0].Suppression.SuppressedBy != "ci-bot" {
		t.Fatalf("expected suppression metadata set, got %+v", out[0].Suppression)
	}
	if out[1].Status == StatusSuppressed {
		t.Fatalf("expected non-vendor finding to remain unsuppressed")
	}
}

func TestLoadSuppressionListMissingFile(t *testing.T) {
	if _, err := LoadSuppressionList("/nonexistent/path.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

package findings

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SuppressionRule is one entry in a checked-in suppression list: findings
// whose rule ID and path prefix match are marked suppressed rather than
// surfaced, without needing a round-trip through whatever UI created them.
type SuppressionRule struct {
	RuleID     string `yaml:"rule_id"`
	PathPrefix string `yaml:"path_prefix"`
	Reason     string `yaml:"reason"`
}

// SuppressionList is the parsed form of a YAML suppression file, keyed by
// scanner name (e.g. "semgrep", "trivy") so a single file can cover a
// project's whole scanner set.
type SuppressionList struct {
	Rules map[string][]SuppressionRule `yaml:"rules"`
}

// LoadSuppressionList reads and parses a YAML suppression file.
func LoadSuppressionList(path string) (*SuppressionList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suppression list: %w", err)
	}
	var list SuppressionList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse suppression list: %w", err)
	}
	return &list, nil
}

// matches reports whether rule applies to f.
func (r SuppressionRule) matches(f Finding) bool {
	if r.RuleID != "" && r.RuleID != f.Provenance.RuleID {
		return false
	}
	if r.PathPrefix != "" {
		if f.Location == nil {
			return false
		}
		if len(f.Location.Path) < len(r.PathPrefix) || f.Location.Path[:len(r.PathPrefix)] != r.PathPrefix {
			return false
		}
	}
	return true
}

// Apply marks every Finding in all that matches a rule for its scanner as
// StatusSuppressed, returning a new slice (the input is left untouched).
func (l *SuppressionList) Apply(all []Finding, suppressedBy string) []Finding {
	out := make([]Finding, len(all))
	copy(out, all)
	for i, f := range out {
		rules := l.Rules[f.Provenance.Scanner]
		for _, r := range rules {
			if r.matches(f) {
				out[i].Status = StatusSuppressed
				out[i].Suppression = &Suppression{
					Reason:       r.Reason,
					SuppressedBy: suppressedBy,
					SuppressedAt: time.Now(),
				}
				break
			}
		}
	}
	return out
}

// Package redact implements the secret redactor: the component
// required at every external boundary (LLM requests/responses, logs,
// persisted memory, audit payloads) so that secret material is never
// written to disk or sent off-box in the clear.
package redact

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Result is the outcome of a single Redact call.
type Result struct {
	Redacted string
	Count    int
	Types    []string
}

// Redactor detects and masks secrets in text using ~100 compiled
// regex patterns per provider family, followed by a high-entropy
// second pass for anything the named patterns missed.
type Redactor struct {
	patterns         []compiledPattern
	entropyThreshold float64
}

const defaultEntropyThreshold = 4.5

// New creates a Redactor with the default entropy threshold (4.5
// bits/symbol) and all built-in patterns.
func New() *Redactor {
	return WithEntropyThreshold(defaultEntropyThreshold)
}

// WithEntropyThreshold creates a Redactor with a custom high-entropy
// detection threshold.
func WithEntropyThreshold(threshold float64) *Redactor {
	return &Redactor{
		patterns:         compileAll(builtinPatternDefs),
		entropyThreshold: threshold,
	}
}

const redactedTag = "[REDACTED:"

// Redact replaces every detected secret in text with
// "[REDACTED:<type>]" and, in a second pass, any remaining unbroken
// run of base64/hex-alphabet characters of length >= 20 whose Shannon
// entropy exceeds the configured threshold.
func (r *Redactor) Redact(text string) Result {
	redacted := text
	count := 0
	var types []string
	seen := make(map[string]bool)

	for _, p := range r.patterns {
		matches := p.re.FindAllStringIndex(redacted, -1)
		if len(matches) == 0 {
			continue
		}
		count += len(matches)
		if !seen[p.name] {
			seen[p.name] = true
			types = append(types, p.name)
		}
		redacted = p.re.ReplaceAllString(redacted, fmt.Sprintf("[REDACTED:%s]", p.name))
	}

	redacted = r.redactHighEntropy(redacted, &count, &types, seen)

	sort.Strings(types)
	return Result{Redacted: redacted, Count: count, Types: types}
}

var highEntropyPattern = compileHighEntropy()

func (r *Redactor) redactHighEntropy(text string, count *int, types *[]string, seen map[string]bool) string {
	matches := highEntropyPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		candidate := text[start:end]
		if strings.HasPrefix(candidate, "REDACTED") {
			continue
		}
		entropy := ShannonEntropy(candidate)
		if entropy <= r.entropyThreshold {
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString("[REDACTED:high_entropy]")
		last = end
		*count++
		if !seen["high_entropy"] {
			seen["high_entropy"] = true
			*types = append(*types, "high_entropy")
		}
	}
	b.WriteString(text[last:])
	return b.String()
}

// ShannonEntropy computes the Shannon entropy, in bits per symbol, of s.
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	var freq [256]int
	for i := 0; i < len(s); i++ {
		freq[s[i]]++
	}
	n := float64(len(s))
	var entropy float64
	for _, c := range freq {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// sensitiveKeys are JSON/map key names whose value is wholesale
// replaced regardless of content.
var sensitiveKeys = map[string]bool{
	"password": true, "passwd": true, "secret": true,
	"api_key": true, "apikey": true, "api-key": true,
	"token": true, "access_token": true, "refresh_token": true,
	"auth_token": true, "private_key": true, "secret_key": true,
	"client_secret": true, "connection_string": true, "credentials": true,
}

// IsSensitiveKey reports whether key (case-insensitively) names a
// field whose value should always be redacted outright.
func IsSensitiveKey(key string) bool {
	return sensitiveKeys[strings.ToLower(key)]
}

// RedactJSON recursively walks an arbitrary decoded JSON value
// (map[string]any / []any / string / ...) and redacts in place:
// string leaves are passed through Redact; values of sensitive-named
// keys are wholesale replaced with "[REDACTED:<key>]" regardless of
// content, unless already redacted.
func (r *Redactor) RedactJSON(value any) any {
	switch v := value.(type) {
	case string:
		res := r.Redact(v)
		if res.Count > 0 {
			return res.Redacted
		}
		return v
	case map[string]any:
		for k, val := range v {
			if IsSensitiveKey(k) {
				if s, ok := val.(string); ok && s != "" && !strings.HasPrefix(s, redactedTag) {
					v[k] = fmt.Sprintf("[REDACTED:%s]", k)
					continue
				}
			}
			v[k] = r.RedactJSON(val)
		}
		return v
	case []any:
		for i, val := range v {
			v[i] = r.RedactJSON(val)
		}
		return v
	default:
		return v
	}
}

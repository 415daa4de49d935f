package safety

import "strings"

// MatchGlob implements the restricted glob dialect the guardian's
// deny-lists use (spec.md §4.D):
//
//   - "**"            matches every path
//   - "**/X/**"       matches any path containing the segment X
//   - "**/*.ext"      matches any path with that extension
//   - "**/suffix"     matches any path ending with "/suffix", or equal to "suffix"
//   - "prefix/**"     matches any path strictly under "prefix/"
//   - "*.ext"         matches literally (extension match on the final segment)
//   - "prefix*"       matches literally (prefix match)
//
// Paths are compared using "/"-separated segments regardless of the
// host OS path separator.
func MatchGlob(pattern, path string) bool {
	path = normalizeSlashes(path)
	pattern = normalizeSlashes(pattern)

	if pattern == "**" {
		return true
	}

	if strings.HasPrefix(pattern, "**/") && strings.HasSuffix(pattern, "/**") {
		segment := strings.TrimSuffix(strings.TrimPrefix(pattern, "**/"), "/**")
		return containsSegment(path, segment)
	}

	if strings.HasPrefix(pattern, "**/*.") {
		ext := strings.TrimPrefix(pattern, "**/*")
		return strings.HasSuffix(path, ext)
	}

	if strings.HasPrefix(pattern, "**/") {
		suffix := strings.TrimPrefix(pattern, "**/")
		return path == suffix || strings.HasSuffix(path, "/"+suffix)
	}

	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		return strings.HasPrefix(path, prefix+"/")
	}

	if strings.HasPrefix(pattern, "*.") {
		ext := strings.TrimPrefix(pattern, "*")
		base := path
		if idx := strings.LastIndex(path, "/"); idx != -1 {
			base = path[idx+1:]
		}
		return strings.HasSuffix(base, ext)
	}

	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		base := path
		if idx := strings.LastIndex(path, "/"); idx != -1 {
			base = path[idx+1:]
		}
		return strings.HasPrefix(base, prefix) || strings.HasPrefix(path, prefix)
	}

	// Literal match, e.g. ".env*" handled above via trailing "*"; a bare
	// literal pattern with no wildcard matches the full path or its
	// final segment exactly.
	if path == pattern {
		return true
	}
	base := path
	if idx := strings.LastIndex(path, "/"); idx != -1 {
		base = path[idx+1:]
	}
	return base == pattern
}

func containsSegment(path, segment string) bool {
	parts := strings.Split(path, "/")
	for _, p := range parts {
		if p == segment {
			return true
		}
	}
	return false
}

func normalizeSlashes(s string) string {
	return strings.ReplaceAll(s, "\\", "/")
}

// MatchAny reports whether path matches any of patterns.
func MatchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if MatchGlob(p, path) {
			return true
		}
	}
	return false
}

// MatchCommand implements the case-insensitive substring-or-prefix
// match spec.md §4.D requires for denied_commands.
func MatchCommand(patterns []string, command string) bool {
	lc := strings.ToLower(command)
	for _, p := range patterns {
		lp := strings.ToLower(p)
		if strings.Contains(lc, lp) || strings.HasPrefix(lc, lp) {
			return true
		}
	}
	return false
}

// MatchHost reports whether host is permitted. An empty allow-list
// means no host restriction.
func MatchHost(allowed []string, host string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(a, host) {
			return true
		}
	}
	return false
}

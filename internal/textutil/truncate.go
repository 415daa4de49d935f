// Package textutil provides grapheme-safe string helpers shared by the
// digest collector and the scheduler bridge, both of which must truncate
// arbitrary user text without ever splitting a multi-byte character.
package textutil

import "github.com/rivo/uniseg"

// TruncateGraphemes truncates s to at most maxChars grapheme clusters,
// appending an ellipsis ("...") when truncation occurred. It never
// panics and never splits a multi-byte rune or an extended grapheme
// cluster (e.g. an emoji with skin-tone or ZWJ modifiers).
func TruncateGraphemes(s string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}

	gr := uniseg.NewGraphemes(s)
	clusters := make([]string, 0, maxChars+1)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
		if len(clusters) > maxChars {
			break
		}
	}

	if len(clusters) <= maxChars {
		return s
	}

	return joinN(clusters, maxChars) + "..."
}

func joinN(clusters []string, n int) string {
	out := make([]byte, 0, n*4)
	for i := 0; i < n && i < len(clusters); i++ {
		out = append(out, clusters[i]...)
	}
	return string(out)
}

// CountGraphemes returns the number of extended grapheme clusters in s.
func CountGraphemes(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

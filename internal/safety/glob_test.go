package safety

import "testing"

func TestMatchGlob(t *testing.T) {
	cases := []struct {
		pattern, path string
		want          bool
	}{
		{"**", "anything/at/all", true},
		{"**/secrets/**", "config/secrets/api.key", true},
		{"**/secrets/**", "config/other/api.key", false},
		{"**/*.key", "path/to/secret.key", true},
		{"**/*.key", "path/to/secret.pem", false},
		{"**/suffix", "suffix", true},
		{"**/suffix", "a/b/suffix", true},
		{"**/suffix", "a/b/suffixes", false},
		{"prefix/**", "prefix/a/b", true},
		{"prefix/**", "prefix", false},
		{"prefix/**", "prefixed/a", false},
		{"*.ext", "file.ext", true},
		{"*.ext", "dir/file.ext", true},
		{"*.ext", "file.ext2", false},
		{".env*", ".env.local", true},
		{".env*", "config.toml", false},
	}
	for _, c := range cases {
		got := MatchGlob(c.pattern, c.path)
		if got != c.want {
			t.Errorf("MatchGlob(%q, %q) = %v, want %v", c.pattern, c.path, got, c.want)
		}
	}
}

func TestMatchCommandCaseInsensitive(t *testing.T) {
	if !MatchCommand([]string{"rm -rf"}, "sudo RM -RF /") {
		t.Fatalf("expected case-insensitive substring match")
	}
	if MatchCommand([]string{"rm -rf"}, "ls -la") {
		t.Fatalf("expected no match")
	}
}

func TestMatchHostEmptyAllowListMeansNoRestriction(t *testing.T) {
	if !MatchHost(nil, "anything.example.com") {
		t.Fatalf("empty allow-list should permit any host")
	}
	if !MatchHost([]string{"api.example.com"}, "api.example.com") {
		t.Fatalf("expected exact allowed host to match")
	}
	if MatchHost([]string{"api.example.com"}, "evil.example.com") {
		t.Fatalf("expected non-allowed host to be rejected")
	}
}

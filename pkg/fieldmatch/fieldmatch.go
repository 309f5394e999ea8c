package fieldmatch

import "strings"

// Custom fields on the tracker side are named by end users, so exact lookups
// don't work across workspaces ("QA", "qa (lm)", "QA Date" should all hit a
// "qa" rule). Matching is a case-insensitive substring test on the normalized
// label.

// Normalize lowercases and collapses internal whitespace.
func Normalize(s string) string {
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// Match reports whether label contains target, case-insensitively.
func Match(label, target string) bool {
	if target == "" {
		return false
	}
	return strings.Contains(Normalize(label), Normalize(target))
}

// FirstMatch returns the index of the first label containing target, or -1.
// Declaration order wins when several labels match.
func FirstMatch(labels []string, target string) int {
	for i, l := range labels {
		if Match(l, target) {
			return i
		}
	}
	return -1
}

// SplitList turns a comma-separated value into trimmed, non-empty tokens.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

package gate

import (
	"regexp"
	"strings"
)

var (
	codePattern     = regexp.MustCompile(`[^A-Za-z0-9]`)
	categoryPattern = regexp.MustCompile(`[^A-Za-z0-9 ]`)
)

// SanitizeCode strips every character outside [A-Za-z0-9]. The sanitized
// form is used uniformly: as the lookup key, in the attempt ledger and in
// logs. The raw code is never persisted.
func SanitizeCode(code string) string {
	return codePattern.ReplaceAllString(code, "")
}

// SanitizeCategories trims each entry, strips characters outside letters,
// digits and interior spaces, and drops entries that end up empty.
func SanitizeCategories(categories []string) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = categoryPattern.ReplaceAllString(c, "")
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

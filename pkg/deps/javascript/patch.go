package javascript

import "strings"

// ExtractFromPatch recovers dependency names added by a unified diff of a
// package.json.
//
// This is a line heuristic, not a JSON parse: an added line counts when,
// after trimming, it starts with `+    "` (plus, four spaces, quote) and
// contains `":`. The name is the text between the first pair of quotes.
// Empty names and names beginning with "@" are dropped. Other indentation
// styles are missed and some non-dependency keys are picked up; both are
// accepted. Duplicates are kept in line order.
func ExtractFromPatch(patch string) []string {
	var names []string
	for _, line := range strings.Split(patch, "\n") {
		if !strings.HasPrefix(line, "+") || !strings.Contains(line, `"`) || !strings.Contains(line, ":") {
			continue
		}
		if !strings.HasPrefix(strings.TrimSpace(line), `+    "`) || !strings.Contains(line, `":`) {
			continue
		}
		parts := strings.Split(line, `"`)
		if len(parts) < 2 {
			continue
		}
		name := parts[1]
		if name == "" || strings.HasPrefix(name, "@") {
			continue
		}
		names = append(names, name)
	}
	return names
}

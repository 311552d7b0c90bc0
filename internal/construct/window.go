package construct

import (
	"regexp"
	"strings"
)

var windowCall = regexp.MustCompile(`(?i)\b(\w+)\s*\(([^()]*)\)\s+OVER\s*\(([^()]*)\)`)

// parseWindow extracts window function calls as flat "window" steps. Nested
// parentheses inside the OVER clause are not chased; the raw match is enough
// for downstream summarization.
func parseWindow(sql string) ([]Step, error) {
	matches := windowCall.FindAllString(sql, -1)
	if len(matches) == 0 {
		return nil, nil
	}
	steps := make([]Step, 0, len(matches))
	for _, m := range matches {
		steps = append(steps, Step{Kind: "window", RawText: strings.TrimSpace(m)})
	}
	return steps, nil
}

// windowStats lists the distinct window function names, lowercased, in
// first-seen order.
func windowStats(sql string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range windowCall.FindAllStringSubmatch(sql, -1) {
		name := strings.ToLower(m[1])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

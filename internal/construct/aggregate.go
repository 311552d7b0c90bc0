package construct

import (
	"regexp"
	"strings"
)

var aggregateFilterCall = regexp.MustCompile(`(?i)\b(\w+)\s*\(([^()]*|\*)\)\s+FILTER\s*\(\s*WHERE\b([^()]*)\)`)

// parseAggregateFilter extracts aggregate calls carrying a FILTER (WHERE)
// clause as flat "aggregate_filter" steps.
func parseAggregateFilter(sql string) ([]Step, error) {
	matches := aggregateFilterCall.FindAllString(sql, -1)
	if len(matches) == 0 {
		return nil, nil
	}
	steps := make([]Step, 0, len(matches))
	for _, m := range matches {
		steps = append(steps, Step{Kind: "aggregate_filter", RawText: strings.TrimSpace(m)})
	}
	return steps, nil
}

// aggregateStats counts filtered aggregate calls for coordinator metadata.
func aggregateStats(sql string) int {
	return len(aggregateFilterCall.FindAllString(sql, -1))
}

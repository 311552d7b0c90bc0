package construct

import (
	"regexp"
	"strings"
)

var (
	executeStmt = regexp.MustCompile(`(?is)\bEXECUTE\b\s*(.*?)(?:;|$)`)
	usingClause = regexp.MustCompile(`(?i)\bUSING\b`)
	intoClause  = regexp.MustCompile(`(?i)\bINTO\b`)
)

// parseDynamicSQL extracts EXECUTE statements. Dynamic SQL cannot be
// statically verified, so the coordinator scores it negatively; the parser
// itself only reports what it found.
func parseDynamicSQL(sql string) ([]Step, error) {
	matches := executeStmt.FindAllStringSubmatch(sql, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	var steps []Step
	for _, m := range matches {
		expr := strings.TrimSpace(m[1])
		if expr == "" {
			continue
		}
		kind := "execute"
		if usingClause.MatchString(expr) {
			kind = "execute_using"
		} else if intoClause.MatchString(expr) {
			kind = "execute_into"
		}
		steps = append(steps, Step{Kind: kind, RawText: "EXECUTE " + expr})
	}
	return steps, nil
}

// dynamicSQLStats reports whether the text builds statements via format(),
// the discriminating fact the coordinator records.
func dynamicSQLStats(sql string) (hasFormat bool) {
	return strings.Contains(strings.ToLower(sql), "format(")
}

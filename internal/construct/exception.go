package construct

import (
	"regexp"
	"strings"
)

// exceptionBoost is documented at 0.15 but the coordinator applies its own
// 0.05 constant for this construct and never reads this value. The mismatch
// is inherited behavior; do not unify the two without checking downstream
// consumers of the scores.
const exceptionBoost = 0.15

var (
	exceptionKeyword = regexp.MustCompile(`(?i)\bEXCEPTION\b`)
	whenKeyword      = regexp.MustCompile(`(?i)\bWHEN\b`)
	thenKeyword      = regexp.MustCompile(`(?i)\bTHEN\b`)
)

// exceptionHandler is one (condition, action) pair from a WHEN clause.
// Handlers are parsed for validation but not emitted: the block is
// summarized as a single try-except step.
type exceptionHandler struct {
	condition string
	action    string
}

// parseException splits sql on the first EXCEPTION keyword and summarizes
// the trailing handler block as one try-except step. The step's raw text is
// the literal EXCEPTION keyword followed by the untouched remainder; both
// branches stay empty.
func parseException(sql string) ([]Step, error) {
	loc := exceptionKeyword.FindStringIndex(sql)
	if loc == nil {
		return nil, nil
	}

	block := sql[loc[1]:]
	parseExceptionHandlers(block)

	return []Step{{
		Kind:    "try-except",
		RawText: "EXCEPTION" + block,
	}}, nil
}

// parseExceptionHandlers splits the handler block on WHEN and pairs each
// condition with its THEN action. Segments without THEN are skipped.
func parseExceptionHandlers(block string) []exceptionHandler {
	segments := whenKeyword.Split(block, -1)
	if len(segments) < 2 {
		return nil
	}

	var handlers []exceptionHandler
	for _, seg := range segments[1:] {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		loc := thenKeyword.FindStringIndex(seg)
		if loc == nil {
			continue
		}
		handlers = append(handlers, exceptionHandler{
			condition: strings.TrimSpace(seg[:loc[0]]),
			action:    strings.TrimSpace(seg[loc[1]:]),
		})
	}
	return handlers
}

// exceptionStats counts WHEN handlers for coordinator metadata.
func exceptionStats(sql string) int {
	return len(whenKeyword.FindAllString(sql, -1))
}

package construct

import (
	"regexp"
	"strings"
)

const maxCTENesting = 10

var (
	withKeyword      = regexp.MustCompile(`(?i)\bWITH\b`)
	recursiveKeyword = regexp.MustCompile(`(?i)\bRECURSIVE\b`)
	cteNameAs        = regexp.MustCompile(`(?i)(\w+)\s+AS\s*\(`)
)

// parseCTE extracts every named common table expression as a "cte" step.
// Each step's raw text is the definition in `name AS (query)` form so the
// name survives the flattened step model. Nested WITH clauses are parsed
// recursively up to maxCTENesting levels.
func parseCTE(sql string) ([]Step, error) {
	return parseCTEDepth(sql, 0)
}

func parseCTEDepth(sql string, depth int) ([]Step, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, parseErrorf(CTE, "empty input")
	}
	if depth > maxCTENesting {
		return nil, parseErrorf(CTE, "nesting exceeds %d levels", maxCTENesting)
	}
	if !withKeyword.MatchString(sql) {
		return nil, nil
	}

	var steps []Step
	consumed := 0
	for _, loc := range withKeyword.FindAllStringIndex(sql, -1) {
		if loc[0] < consumed {
			// WITH inside a definition already handled by the recursive pass.
			continue
		}
		clause, end, err := parseWithClause(sql, loc[1], depth)
		if err != nil {
			return nil, err
		}
		steps = append(steps, clause...)
		consumed = end
	}
	return steps, nil
}

// parseWithClause walks `name AS (...)` definitions from pos until the main
// query (or unrecognized text) begins. It returns the steps and the index
// just past the last consumed definition.
func parseWithClause(sql string, pos int, depth int) ([]Step, int, error) {
	// Skip RECURSIVE directly after WITH.
	if m := recursiveKeyword.FindStringIndex(sql[pos:]); m != nil && m[0] < 20 {
		pos += m[1]
	}

	var steps []Step
	for pos < len(sql) {
		m := cteNameAs.FindStringSubmatchIndex(sql[pos:])
		if m == nil {
			break
		}
		name := sql[pos+m[2] : pos+m[3]]
		openParen := pos + m[1] - 1

		body, end := balancedParens(sql, openParen)
		if end < 0 {
			break
		}

		if withKeyword.MatchString(body) {
			nested, err := parseCTEDepth(body, depth+1)
			if err != nil {
				return nil, 0, err
			}
			steps = append(steps, nested...)
		}

		steps = append(steps, Step{
			Kind:    "cte",
			RawText: name + " AS (" + strings.TrimSpace(body) + ")",
		})

		pos = end
		rest := strings.TrimSpace(sql[pos:])
		if strings.HasPrefix(rest, ",") {
			pos += strings.Index(sql[pos:], ",") + 1
			continue
		}
		// Main query reached, or content this parser does not claim.
		break
	}
	return steps, pos, nil
}

// balancedParens returns the content of the parenthesized group opening at
// start and the index just past its closing paren, or ("", -1) when the
// group never closes.
func balancedParens(sql string, start int) (string, int) {
	if start >= len(sql) || sql[start] != '(' {
		return "", -1
	}
	depth := 0
	for i := start; i < len(sql); i++ {
		switch sql[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return sql[start+1 : i], i + 1
			}
		}
	}
	return "", -1
}

// cteStats reports the facts the coordinator folds into metadata and the
// confidence delta: whether the block is recursive and how many named CTEs
// appear.
func cteStats(sql string) (recursive bool, count int) {
	recursive = strings.Contains(strings.ToUpper(sql), "RECURSIVE")
	count = len(cteNameAs.FindAllString(sql, -1))
	return recursive, count
}

package construct

import (
	"regexp"
	"strings"
)

var (
	forLoop   = regexp.MustCompile(`(?is)\bFOR\s+(\w+)\s+IN\s+(.*?)\bLOOP\b(.*?)\bEND\s+LOOP\b`)
	whileLoop = regexp.MustCompile(`(?is)\bWHILE\s+(.*?)\bLOOP\b(.*?)\bEND\s+LOOP\b`)
	ifBlock   = regexp.MustCompile(`(?is)\bIF\s+(.*?)\bTHEN\b(.*?)\bEND\s+IF\b`)
	elseSplit = regexp.MustCompile(`(?i)\bELSE\b`)
)

// parseControlFlow extracts FOR/WHILE loops and IF branches. Loop bodies and
// branch arms become child statement steps; a branch step carries its ELSE
// arm in the else branch.
func parseControlFlow(sql string) ([]Step, error) {
	var steps []Step

	for _, m := range forLoop.FindAllStringSubmatch(sql, -1) {
		steps = append(steps, Step{
			Kind:    "loop",
			RawText: "FOR " + m[1] + " IN " + strings.TrimSpace(m[2]),
			Then:    statementSteps(m[3]),
		})
	}

	for _, m := range whileLoop.FindAllStringSubmatch(sql, -1) {
		steps = append(steps, Step{
			Kind:    "loop",
			RawText: "WHILE " + strings.TrimSpace(m[1]),
			Then:    statementSteps(m[2]),
		})
	}

	for _, m := range ifBlock.FindAllStringSubmatch(sql, -1) {
		cond := strings.TrimSpace(m[1])
		body := m[2]

		step := Step{Kind: "branch", RawText: "IF " + cond}
		if loc := elseSplit.FindStringIndex(body); loc != nil {
			step.Then = statementSteps(body[:loc[0]])
			step.Else = statementSteps(body[loc[1]:])
		} else {
			step.Then = statementSteps(body)
		}
		steps = append(steps, step)
	}

	return steps, nil
}

// statementSteps splits a block body on semicolons into flat statement
// steps. Empty fragments are dropped.
func statementSteps(body string) []Step {
	var out []Step
	for _, stmt := range strings.Split(body, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		out = append(out, Step{Kind: "statement", RawText: stmt})
	}
	return out
}

// controlFlowStats counts loops and branches for coordinator metadata.
func controlFlowStats(sql string) (loops, branches int) {
	loops = len(forLoop.FindAllString(sql, -1)) + len(whileLoop.FindAllString(sql, -1))
	branches = len(ifBlock.FindAllString(sql, -1))
	return loops, branches
}

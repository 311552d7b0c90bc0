package construct

import (
	"regexp"
	"strings"
)

var (
	cursorDecl = regexp.MustCompile(`(?is)(\w+)\s+CURSOR\s+FOR\s+(.+?);`)
	fetchInto  = regexp.MustCompile(`(?i)\bFETCH\s+(\w+)\s+INTO\s+(\w+)`)
)

// parseCursorOps extracts cursor declarations and OPEN/FETCH/CLOSE
// statements, including FETCHes buried inside LOOP bodies.
func parseCursorOps(sql string) ([]Step, error) {
	var steps []Step

	for _, m := range cursorDecl.FindAllStringSubmatch(sql, -1) {
		steps = append(steps, Step{
			Kind:    "cursor_declare",
			RawText: m[1] + " CURSOR FOR " + strings.TrimSpace(m[2]),
		})
	}

	for _, stmt := range strings.Split(sql, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		upper := strings.ToUpper(stmt)

		// BEGIN and DECLARE take no semicolon of their own, so the first
		// real statement of a block lands in the same segment.
		for _, kw := range []string{"BEGIN", "DECLARE"} {
			if strings.HasPrefix(upper, kw) {
				stmt = strings.TrimSpace(stmt[len(kw):])
				upper = strings.ToUpper(stmt)
			}
		}
		if stmt == "" {
			continue
		}

		switch {
		case strings.HasPrefix(upper, "OPEN "):
			steps = append(steps, Step{Kind: "cursor_open", RawText: stmt})
		case strings.HasPrefix(upper, "FETCH "):
			if m := fetchInto.FindStringSubmatch(stmt); m != nil {
				steps = append(steps, Step{Kind: "cursor_fetch", RawText: "FETCH " + m[1] + " INTO " + m[2]})
			}
		case strings.HasPrefix(upper, "CLOSE "):
			steps = append(steps, Step{Kind: "cursor_close", RawText: stmt})
		case strings.Contains(upper, "LOOP") && strings.Contains(upper, "FETCH"):
			for _, m := range fetchInto.FindAllStringSubmatch(stmt, -1) {
				steps = append(steps, Step{Kind: "cursor_fetch", RawText: "FETCH " + m[1] + " INTO " + m[2]})
			}
		}
	}

	return steps, nil
}

// cursorStats counts declarations and fetches for coordinator metadata.
func cursorStats(sql string) (declarations, fetches int) {
	declarations = len(cursorDecl.FindAllString(sql, -1))
	fetches = len(fetchInto.FindAllString(sql, -1))
	return declarations, fetches
}

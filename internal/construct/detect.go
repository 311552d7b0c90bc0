package construct

import "regexp"

// Signal detection: cheap lexical predicates that decide which specialized
// parsers are worth invoking. False positives are fine, since an invoked
// parser returns an empty result when its construct is absent; these are a
// cost-saving gate, not a correctness gate.

var signalPatterns = map[Construct][]*regexp.Regexp{
	CTE:              {regexp.MustCompile(`(?i)\bWITH\b`)},
	ExceptionHandler: {regexp.MustCompile(`(?i)\bEXCEPTION\b`)},
	DynamicSQL:       {regexp.MustCompile(`(?i)\bEXECUTE\b`)},
	ControlFlow: {
		regexp.MustCompile(`(?i)\bFOR\b`),
		regexp.MustCompile(`(?i)\bLOOP\b`),
		regexp.MustCompile(`(?i)\bWHILE\b`),
	},
	WindowFunction: {
		regexp.MustCompile(`(?i)\bOVER\s*\(`),
		regexp.MustCompile(`(?i)\bPARTITION\s+BY\b`),
		regexp.MustCompile(`(?i)\bROW_NUMBER\b`),
	},
	AggregateFilter: {regexp.MustCompile(`(?i)\bFILTER\s*\(\s*WHERE\b`)},
	CursorOps: {
		regexp.MustCompile(`(?i)\bCURSOR\b`),
		regexp.MustCompile(`(?i)\bFETCH\b`),
		regexp.MustCompile(`(?i)\bOPEN\b`),
		regexp.MustCompile(`(?i)\bCLOSE\b`),
	},
}

// HasSignal reports whether sql carries the lexical cue for c.
func HasSignal(c Construct, sql string) bool {
	for _, p := range signalPatterns[c] {
		if p.MatchString(sql) {
			return true
		}
	}
	return false
}

// Applicable returns the constructs whose signal fires for sql, in dispatch
// order.
func Applicable(sql string) []Construct {
	var out []Construct
	for _, c := range All() {
		if HasSignal(c, sql) {
			out = append(out, c)
		}
	}
	return out
}

// Package construct implements the confidence-scored multi-strategy parsing
// engine for PL/pgSQL function bodies.
//
// Seven specialized parsers each recognize one linguistic construct (CTEs,
// exception handlers, dynamic SQL, control flow, window functions, filtered
// aggregates, cursor operations). A Coordinator decides which parsers apply
// to a text fragment, invokes them behind an isolation boundary, and folds
// their contributions into a signed confidence adjustment. Parsing is
// best-effort by design: malformed input yields empty or failed results,
// never a panic or an error past the coordinator.
package construct

import "fmt"

// Construct identifies one of the seven specialized parsers. The constant
// order is the coordinator's dispatch order and is load-bearing: aggregate
// output mirrors it.
type Construct int

const (
	CTE Construct = iota
	ExceptionHandler
	DynamicSQL
	ControlFlow
	WindowFunction
	AggregateFilter
	CursorOps

	numConstructs
)

// All returns every construct in dispatch order.
func All() []Construct {
	return []Construct{CTE, ExceptionHandler, DynamicSQL, ControlFlow, WindowFunction, AggregateFilter, CursorOps}
}

func (c Construct) String() string {
	switch c {
	case CTE:
		return "cte"
	case ExceptionHandler:
		return "exception"
	case DynamicSQL:
		return "dynamic_sql"
	case ControlFlow:
		return "control_flow"
	case WindowFunction:
		return "window"
	case AggregateFilter:
		return "aggregate"
	case CursorOps:
		return "cursor"
	}
	return fmt.Sprintf("construct(%d)", int(c))
}

// Step is one node in the step tree produced by a specialized parser.
// Then and Else are populated only for conditional constructs.
type Step struct {
	Kind    string
	RawText string
	Then    []Step
	Else    []Step
}

// Result is the output of one specialized parser invocation. It is created
// by the coordinator and never mutated afterwards. A Result with
// Succeeded == false always carries empty Steps.
type Result struct {
	Construct       Construct
	Steps           []Step
	ConfidenceDelta float64
	Metadata        map[string]any
	Succeeded       bool
}

// ParseError is the error kind a specialized parser reports when it cannot
// interpret its construct. It never crosses the coordinator boundary: the
// coordinator matches it (and anything else) into a failed outcome.
type ParseError struct {
	Construct Construct
	Reason    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parser: %s", e.Construct, e.Reason)
}

func parseErrorf(c Construct, format string, args ...any) *ParseError {
	return &ParseError{Construct: c, Reason: fmt.Sprintf(format, args...)}
}

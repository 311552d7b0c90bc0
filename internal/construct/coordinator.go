package construct

import "go.uber.org/zap"

// Confidence deltas applied per construct when a parser produces steps.
// Fixed constants; downstream scores depend on these exact values.
const (
	deltaCTE            = 0.10
	deltaCTERecursive   = 0.15 // overrides the base, not added to it
	deltaCTEMultiBonus  = 0.05 // additive when more than two named CTEs appear
	deltaException      = 0.05
	deltaDynamicSQL     = -0.10 // dynamic SQL is harder to statically verify
	deltaControlFlow    = 0.08
	deltaWindowFunction = 0.08
	deltaAggFilter      = 0.07
	deltaCursorOps      = 0.08
)

type parseFn func(sql string) ([]Step, error)

// Coordinator orchestrates the seven specialized parsers: signal detection,
// invocation, failure isolation, confidence aggregation, and metrics. One
// coordinator owns one metrics record set; it is not safe for concurrent
// use.
type Coordinator struct {
	logger  *zap.SugaredLogger
	metrics metricsSet
	parsers [numConstructs]parseFn
}

func NewCoordinator(logger *zap.SugaredLogger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	c := &Coordinator{logger: logger}
	c.parsers = [numConstructs]parseFn{
		CTE:              parseCTE,
		ExceptionHandler: parseException,
		DynamicSQL:       parseDynamicSQL,
		ControlFlow:      parseControlFlow,
		WindowFunction:   parseWindow,
		AggregateFilter:  parseAggregateFilter,
		CursorOps:        parseCursorOps,
	}
	return c
}

// Detector predicates, one per construct. Exposed so callers can gate a
// direct single-construct invocation the same way the full dispatch does.

func (c *Coordinator) ShouldUseCTEParser(sql string) bool       { return HasSignal(CTE, sql) }
func (c *Coordinator) ShouldUseExceptionParser(sql string) bool { return HasSignal(ExceptionHandler, sql) }
func (c *Coordinator) ShouldUseDynamicSQLParser(sql string) bool {
	return HasSignal(DynamicSQL, sql)
}
func (c *Coordinator) ShouldUseControlFlowParser(sql string) bool {
	return HasSignal(ControlFlow, sql)
}
func (c *Coordinator) ShouldUseWindowParser(sql string) bool { return HasSignal(WindowFunction, sql) }
func (c *Coordinator) ShouldUseAggregateParser(sql string) bool {
	return HasSignal(AggregateFilter, sql)
}
func (c *Coordinator) ShouldUseCursorParser(sql string) bool { return HasSignal(CursorOps, sql) }

// Parse invokes the specialized parser for one construct directly, bypassing
// the signal detector: the attempt is always counted. It returns nil when
// the parser produced nothing or failed; failures never propagate.
func (c *Coordinator) Parse(construct Construct, sql string) *Result {
	if construct < 0 || construct >= numConstructs {
		return nil
	}

	rec := &c.metrics.byConstruct[construct]
	rec.Attempts++

	steps, err := c.invoke(construct, sql)
	if err != nil {
		rec.Failures++
		c.logger.Warnw("construct parser failed",
			"construct", construct.String(),
			"error", err,
		)
		return nil
	}
	if len(steps) == 0 {
		rec.Failures++
		return nil
	}

	rec.Successes++
	delta, metadata := c.score(construct, sql)
	return &Result{
		Construct:       construct,
		Steps:           steps,
		ConfidenceDelta: delta,
		Metadata:        metadata,
		Succeeded:       true,
	}
}

// ParseWithBestParsers runs every construct whose signal fires, in dispatch
// order, and returns the results that produced steps. The caller sums the
// deltas with the baseline structural confidence.
func (c *Coordinator) ParseWithBestParsers(sql string) []*Result {
	var results []*Result
	for _, construct := range All() {
		if !HasSignal(construct, sql) {
			continue
		}
		if r := c.Parse(construct, sql); r != nil {
			results = append(results, r)
		}
	}
	return results
}

// invoke is the isolation boundary: any error or panic inside a specialized
// parser becomes a plain error here and goes no further.
func (c *Coordinator) invoke(construct Construct, sql string) (steps []Step, err error) {
	defer func() {
		if r := recover(); r != nil {
			steps = nil
			err = parseErrorf(construct, "recovered panic: %v", r)
		}
	}()
	return c.parsers[construct](sql)
}

// score computes the confidence delta and metadata for a successful parse.
func (c *Coordinator) score(construct Construct, sql string) (float64, map[string]any) {
	switch construct {
	case CTE:
		recursive, count := cteStats(sql)
		delta := deltaCTE
		if recursive {
			delta = deltaCTERecursive
		}
		if count > 2 {
			delta += deltaCTEMultiBonus
		}
		return delta, map[string]any{
			"is_recursive": recursive,
			"cte_count":    count,
		}
	case ExceptionHandler:
		return deltaException, map[string]any{
			"handler_count": exceptionStats(sql),
		}
	case DynamicSQL:
		return deltaDynamicSQL, map[string]any{
			"has_format": dynamicSQLStats(sql),
		}
	case ControlFlow:
		loops, branches := controlFlowStats(sql)
		return deltaControlFlow, map[string]any{
			"loop_count":   loops,
			"branch_count": branches,
		}
	case WindowFunction:
		return deltaWindowFunction, map[string]any{
			"functions": windowStats(sql),
		}
	case AggregateFilter:
		return deltaAggFilter, map[string]any{
			"filter_count": aggregateStats(sql),
		}
	case CursorOps:
		declarations, fetches := cursorStats(sql)
		return deltaCursorOps, map[string]any{
			"declaration_count": declarations,
			"fetch_count":       fetches,
		}
	}
	return 0, map[string]any{}
}

// GetMetrics returns a snapshot copy of the per-construct counters.
func (c *Coordinator) GetMetrics() map[Construct]Metrics {
	return c.metrics.snapshot()
}

// GetSuccessRates returns successes/attempts per construct, and exactly 0.0
// for constructs never attempted.
func (c *Coordinator) GetSuccessRates() map[Construct]float64 {
	return c.metrics.successRates()
}

// ResetMetrics zeroes all counters for all constructs.
func (c *Coordinator) ResetMetrics() {
	c.metrics.reset()
}

// MetricsSummary is the human-readable report of attempted constructs.
func (c *Coordinator) MetricsSummary() string {
	return c.metrics.summary()
}

// SumDeltas adds up the confidence deltas of a result list.
func SumDeltas(results []*Result) float64 {
	var sum float64
	for _, r := range results {
		sum += r.ConfidenceDelta
	}
	return sum
}

package construct

import (
	"fmt"
	"sort"
	"strings"
)

// Metrics holds the per-parser counters. Attempts is incremented before the
// invocation resolves, so successes+failures may trail attempts only while a
// parse is in flight, never in any externally observable state.
type Metrics struct {
	Attempts  int
	Successes int
	Failures  int
}

// metricsSet is one counter record per construct, owned by exactly one
// coordinator. Single-owner, single-thread use is assumed; concurrent
// callers must synchronize externally.
type metricsSet struct {
	byConstruct [numConstructs]Metrics
}

func (m *metricsSet) snapshot() map[Construct]Metrics {
	out := make(map[Construct]Metrics, numConstructs)
	for _, c := range All() {
		out[c] = m.byConstruct[c]
	}
	return out
}

func (m *metricsSet) successRates() map[Construct]float64 {
	rates := make(map[Construct]float64, numConstructs)
	for _, c := range All() {
		rec := m.byConstruct[c]
		if rec.Attempts > 0 {
			rates[c] = float64(rec.Successes) / float64(rec.Attempts)
		} else {
			rates[c] = 0.0
		}
	}
	return rates
}

func (m *metricsSet) reset() {
	for i := range m.byConstruct {
		m.byConstruct[i] = Metrics{}
	}
}

// summary renders the attempted constructs sorted by identifier, each with
// its success percentage and attempt count. Operator-facing only; not a
// stable machine format.
func (m *metricsSet) summary() string {
	rates := m.successRates()

	labels := make([]string, 0, numConstructs)
	byLabel := make(map[string]Construct, numConstructs)
	for _, c := range All() {
		labels = append(labels, c.String())
		byLabel[c.String()] = c
	}
	sort.Strings(labels)

	var b strings.Builder
	b.WriteString("Parser Success Rates:")
	for _, label := range labels {
		c := byLabel[label]
		attempts := m.byConstruct[c].Attempts
		if attempts == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n  %-15s: %5.1f%% (%d attempts)", label, rates[c]*100, attempts)
	}
	return b.String()
}

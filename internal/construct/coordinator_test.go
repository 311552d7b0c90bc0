package construct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recursiveCTESQL = `
	WITH RECURSIVE ancestors AS (
		SELECT pk_unit, fk_parent FROM tb_administrative_unit WHERE pk_unit = $1
		UNION ALL
		SELECT u.pk_unit, u.fk_parent FROM tb_administrative_unit u
		JOIN ancestors a ON u.pk_unit = a.fk_parent
	), leaves AS (
		SELECT pk_unit FROM ancestors WHERE fk_parent IS NULL
	)
	SELECT * FROM leaves;
`

func TestParseRecursiveCTE(t *testing.T) {
	c := NewCoordinator(nil)

	r := c.Parse(CTE, recursiveCTESQL)
	require.NotNil(t, r)
	assert.True(t, r.Succeeded)
	assert.Equal(t, CTE, r.Construct)
	assert.Len(t, r.Steps, 2)

	// Recursion replaces the base delta instead of stacking on it.
	assert.InDelta(t, 0.15, r.ConfidenceDelta, 1e-9)
	assert.Equal(t, true, r.Metadata["is_recursive"])
	assert.Equal(t, 2, r.Metadata["cte_count"])
}

func TestParseManyCTEsBonus(t *testing.T) {
	c := NewCoordinator(nil)
	sql := `WITH a AS (SELECT 1), b AS (SELECT 2), c AS (SELECT 3), d AS (SELECT 4) SELECT * FROM d;`

	r := c.Parse(CTE, sql)
	require.NotNil(t, r)
	assert.Len(t, r.Steps, 4)
	// 0.10 base plus 0.05 for more than two CTEs.
	assert.InDelta(t, 0.15, r.ConfidenceDelta, 1e-9)
	assert.Equal(t, false, r.Metadata["is_recursive"])
	assert.Equal(t, 4, r.Metadata["cte_count"])
}

func TestParseDynamicSQLPenalty(t *testing.T) {
	c := NewCoordinator(nil)
	sql := `EXECUTE format('INSERT INTO %I VALUES ($1)', tbl) USING val;`

	r := c.Parse(DynamicSQL, sql)
	require.NotNil(t, r)
	assert.InDelta(t, -0.10, r.ConfidenceDelta, 1e-9)
	assert.Equal(t, true, r.Metadata["has_format"])
	require.Len(t, r.Steps, 1)
	assert.Equal(t, "execute_using", r.Steps[0].Kind)
}

func TestParseCountsFailures(t *testing.T) {
	c := NewCoordinator(nil)

	// Empty input is a CTE parse error; no signal gate on direct Parse.
	assert.Nil(t, c.Parse(CTE, ""))
	// Signal word present but no named definition: empty result, also a failure.
	assert.Nil(t, c.Parse(CTE, "WITH"))
	require.NotNil(t, c.Parse(CTE, "WITH t AS (SELECT 1) SELECT * FROM t"))

	m := c.GetMetrics()[CTE]
	assert.Equal(t, 3, m.Attempts)
	assert.Equal(t, 1, m.Successes)
	assert.Equal(t, 2, m.Failures)

	rates := c.GetSuccessRates()
	assert.InDelta(t, 1.0/3.0, rates[CTE], 1e-9)
	// Never-attempted parsers report exactly zero.
	assert.Equal(t, 0.0, rates[WindowFunction])
}

func TestParseUnknownConstruct(t *testing.T) {
	c := NewCoordinator(nil)
	assert.Nil(t, c.Parse(Construct(99), "WITH t AS (SELECT 1)"))
	assert.Nil(t, c.Parse(Construct(-1), "WITH t AS (SELECT 1)"))
}

func TestParseWithBestParsers(t *testing.T) {
	c := NewCoordinator(nil)
	sql := `
		CREATE OR REPLACE FUNCTION refresh_totals() RETURNS void AS $$
		BEGIN
			WITH totals AS (SELECT fk_org, count(*) FILTER (WHERE NOT is_deleted) AS n FROM tb_contact GROUP BY fk_org)
			UPDATE tb_org o SET contact_count = t.n FROM totals t WHERE o.pk_org = t.fk_org;
		EXCEPTION WHEN others THEN
			RAISE NOTICE 'refresh failed';
		END;
		$$ LANGUAGE plpgsql;
	`

	results := c.ParseWithBestParsers(sql)
	require.NotEmpty(t, results)

	var constructs []Construct
	for _, r := range results {
		constructs = append(constructs, r.Construct)
	}
	assert.Contains(t, constructs, CTE)
	assert.Contains(t, constructs, ExceptionHandler)
	assert.Contains(t, constructs, AggregateFilter)

	// Dispatch order is preserved in the result list.
	for i := 1; i < len(results); i++ {
		assert.Less(t, int(results[i-1].Construct), int(results[i].Construct))
	}

	total := SumDeltas(results)
	assert.Greater(t, total, 0.0)
}

func TestResetMetrics(t *testing.T) {
	c := NewCoordinator(nil)
	c.Parse(CTE, "WITH t AS (SELECT 1) SELECT * FROM t")
	c.Parse(DynamicSQL, "EXECUTE stmt;")

	c.ResetMetrics()
	for _, m := range c.GetMetrics() {
		assert.Equal(t, Metrics{}, m)
	}
	// Reset is idempotent.
	c.ResetMetrics()
	for _, m := range c.GetMetrics() {
		assert.Equal(t, Metrics{}, m)
	}
}

func TestResetThenRerunReproducesSnapshot(t *testing.T) {
	c := NewCoordinator(nil)

	run := func() {
		c.Parse(CTE, "WITH t AS (SELECT 1) SELECT * FROM t")
		c.Parse(DynamicSQL, "EXECUTE stmt;")
		c.Parse(WindowFunction, "")
		c.ParseWithBestParsers(recursiveCTESQL)
	}

	run()
	first := c.GetMetrics()
	firstRates := c.GetSuccessRates()
	firstSummary := c.MetricsSummary()

	c.ResetMetrics()
	run()

	assert.Equal(t, first, c.GetMetrics())
	assert.Equal(t, firstRates, c.GetSuccessRates())
	assert.Equal(t, firstSummary, c.MetricsSummary())
}

func TestIsolationRecoversPanic(t *testing.T) {
	c := NewCoordinator(nil)
	c.parsers[CTE] = func(string) ([]Step, error) { panic("boom") }

	assert.NotPanics(t, func() {
		assert.Nil(t, c.Parse(CTE, "WITH t AS (SELECT 1)"))
	})
	m := c.GetMetrics()[CTE]
	assert.Equal(t, 1, m.Attempts)
	assert.Equal(t, 1, m.Failures)
}

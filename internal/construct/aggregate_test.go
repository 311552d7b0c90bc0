package construct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAggregateFilter(t *testing.T) {
	sql := `SELECT
		count(*) FILTER (WHERE NOT is_deleted) AS active,
		sum(amount) FILTER (WHERE status = 'paid') AS paid_total
	FROM tb_invoice;`

	steps, err := parseAggregateFilter(sql)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "aggregate_filter", steps[0].Kind)
	assert.Contains(t, steps[0].RawText, "count(*)")
	assert.Contains(t, steps[1].RawText, "sum(amount)")
}

func TestParseAggregateFilterPlainAggregate(t *testing.T) {
	steps, err := parseAggregateFilter("SELECT count(*) FROM t")
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestAggregateStats(t *testing.T) {
	assert.Equal(t, 1, aggregateStats("SELECT avg(x) FILTER (WHERE ok) FROM t"))
	assert.Equal(t, 0, aggregateStats("SELECT avg(x) FROM t"))
}

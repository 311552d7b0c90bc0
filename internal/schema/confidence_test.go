package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tableWith(cols ...string) Table {
	t := Table{Name: "tb_example"}
	for _, c := range cols {
		t.Columns = append(t.Columns, Column{Name: c})
	}
	return t
}

func TestBaselineConfidence(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    float64
	}{
		{"bare table", []string{"payload"}, 0.50},
		{"surrogate key only", []string{"pk_example"}, 0.65},
		{"full trinity", []string{"pk_example", "id", "identifier"}, 0.90},
		{"trinity plus tenant", []string{"pk_example", "id", "identifier", "fk_customer_org"}, 0.95},
		{"everything", []string{"pk_example", "id", "identifier", "fk_tenant", "deleted_at"}, 1.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := BaselineConfidence(tableWith(tt.columns...))
			assert.InDelta(t, tt.want, score, 1e-9)
		})
	}
}

func TestBaselineConfidenceSignals(t *testing.T) {
	score, signals := BaselineConfidence(tableWith("pk_x", "id", "is_deleted"))
	assert.InDelta(t, 0.85, score, 1e-9)
	assert.True(t, signals.SurrogateKey)
	assert.True(t, signals.StableID)
	assert.False(t, signals.LookupKey)
	assert.False(t, signals.Tenant)
	assert.True(t, signals.SoftDelete)
}

func TestBaselineConfidenceCountsEachBoostOnce(t *testing.T) {
	// Two pk_ columns and two soft delete columns still earn each boost once.
	score, _ := BaselineConfidence(tableWith("pk_a", "pk_b", "deleted_at", "deleted_by"))
	assert.InDelta(t, 0.70, score, 1e-9)
}

func TestBaselineConfidenceCaseInsensitive(t *testing.T) {
	score, signals := BaselineConfidence(tableWith("PK_Example", "ID"))
	assert.InDelta(t, 0.80, score, 1e-9)
	assert.True(t, signals.SurrogateKey)
	assert.True(t, signals.StableID)
}

package schema

import "strings"

// Baseline structural confidence. A table starts at the base score and
// earns a boost per convention it follows; the full trinity plus both
// tenancy conventions reaches 1.0 exactly.
const (
	confidenceBase    = 0.50
	boostSurrogateKey = 0.15 // pk_* surrogate key
	boostStableID     = 0.15 // stable id column
	boostLookupKey    = 0.10 // identifier lookup key
	boostTenantColumn = 0.05
	boostSoftDelete   = 0.05
	confidenceCeiling = 1.00
)

var (
	tenantColumns     = []string{"fk_customer_org", "fk_tenant", "tenant_id"}
	softDeleteColumns = []string{"deleted_at", "deleted_by", "is_deleted"}
)

// ConfidenceSignals records which structural conventions a table follows.
// It exists so operators can see why a table scored the way it did.
type ConfidenceSignals struct {
	SurrogateKey bool
	StableID     bool
	LookupKey    bool
	Tenant       bool
	SoftDelete   bool
}

// BaselineConfidence scores how closely a table follows the house
// structural conventions. This is the structural half of the final score;
// the construct coordinator's deltas are the other half.
func BaselineConfidence(t Table) (float64, ConfidenceSignals) {
	var signals ConfidenceSignals
	score := confidenceBase

	for _, col := range t.Columns {
		name := strings.ToLower(col.Name)
		switch {
		case strings.HasPrefix(name, "pk_") && !signals.SurrogateKey:
			signals.SurrogateKey = true
			score += boostSurrogateKey
		case name == "id" && !signals.StableID:
			signals.StableID = true
			score += boostStableID
		case name == "identifier" && !signals.LookupKey:
			signals.LookupKey = true
			score += boostLookupKey
		case matchesAny(name, tenantColumns) && !signals.Tenant:
			signals.Tenant = true
			score += boostTenantColumn
		case matchesAny(name, softDeleteColumns) && !signals.SoftDelete:
			signals.SoftDelete = true
			score += boostSoftDelete
		}
	}

	if score > confidenceCeiling {
		score = confidenceCeiling
	}
	return score, signals
}

func matchesAny(name string, candidates []string) bool {
	for _, c := range candidates {
		if name == c {
			return true
		}
	}
	return false
}

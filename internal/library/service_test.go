package library

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemarev/schemarev/internal/entity"
)

func TestProfileText(t *testing.T) {
	e := entity.Entity{Name: "administrative_unit"}
	cs := entity.ConstructSummary{Construct: "cte", StepCount: 2, ConfidenceDelta: 0.15}

	got := profileText(e, cs)
	assert.Equal(t, "entity administrative_unit construct cte with 2 steps (delta +0.15)", got)
}

func TestProfileTextWithDescription(t *testing.T) {
	e := entity.Entity{Name: "contact", Description: "Customer contact records."}
	cs := entity.ConstructSummary{Construct: "dynamic_sql", StepCount: 1, ConfidenceDelta: -0.10}

	got := profileText(e, cs)
	assert.Contains(t, got, "delta -0.10")
	assert.Contains(t, got, ": Customer contact records.")
}

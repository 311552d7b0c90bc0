package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemarev/schemarev/internal/construct"
	"github.com/schemarev/schemarev/internal/pattern"
	"github.com/schemarev/schemarev/internal/schema"
)

func contactTable() schema.Table {
	return schema.Table{
		Schema: "public",
		Name:   "tb_contact",
		Columns: []schema.Column{
			{Name: "pk_contact", Type: "BIGSERIAL", CanonicalType: "integer"},
			{Name: "id", Type: "UUID", CanonicalType: "uuid"},
			{Name: "identifier", Type: "VARCHAR(120)", CanonicalType: "text"},
			{Name: "fk_customer_org", Type: "BIGINT", CanonicalType: "integer", Nullable: true},
			{Name: "fk_parent_contact", Type: "BIGINT", CanonicalType: "integer", Nullable: true},
			{Name: "display_name", Type: "TEXT", CanonicalType: "text", Nullable: true},
		},
		PrimaryKey: []string{"pk_contact"},
		Comment:    "People reachable by the system",
	}
}

func TestFromTable(t *testing.T) {
	e := FromTable(contactTable())

	assert.Equal(t, "contact", e.Name)
	assert.Equal(t, "tb_contact", e.Table)
	assert.Equal(t, "public", e.Schema)
	assert.Equal(t, "People reachable by the system", e.Description)
	assert.Len(t, e.Fields, 6)

	// fk_ columns become refs; the self-referential parent column does not.
	require.Len(t, e.Refs, 1)
	assert.Equal(t, Ref{Field: "fk_customer_org", Target: "customer_org"}, e.Refs[0])

	// pk_ + id + identifier + tenant column
	assert.InDelta(t, 0.95, e.BaselineConfidence, 1e-9)
	assert.Equal(t, e.BaselineConfidence, e.Confidence)
}

func TestAttachConstructs(t *testing.T) {
	e := FromTable(contactTable())
	base := e.BaselineConfidence

	e.AttachConstructs([]*construct.Result{
		{Construct: construct.CTE, Steps: []construct.Step{{Kind: "cte"}}, ConfidenceDelta: 0.10},
		{Construct: construct.DynamicSQL, Steps: []construct.Step{{Kind: "execute"}}, ConfidenceDelta: -0.10},
	})

	require.Len(t, e.Constructs, 2)
	assert.Equal(t, "cte", e.Constructs[0].Construct)
	assert.Equal(t, 1, e.Constructs[0].StepCount)
	assert.InDelta(t, base, e.Confidence, 1e-9)
}

func TestAttachPair(t *testing.T) {
	entities := []Entity{
		{Name: "unit_info", Table: "tb_unit_info"},
		{Name: "unit", Table: "tb_unit"},
		{Name: "contact", Table: "tb_contact"},
	}
	p := pattern.Pair{
		VocabularyTable:  "tb_unit_info",
		InstanceTable:    "tb_unit",
		BaseEntityName:   "unit",
		TranslationTable: "tb_unit_translation",
	}
	detections := map[string]pattern.DetectionResult{
		"tb_unit": {
			IsInstanceTable: true,
			VocabularyFK:    "fk_unit_info",
			ParentFK:        "fk_parent_unit",
		},
	}

	AttachPair(entities, p, detections)

	require.NotNil(t, entities[0].Pairing)
	assert.Equal(t, "vocabulary", entities[0].Pairing.Role)
	assert.Equal(t, "tb_unit", entities[0].Pairing.CounterpartTable)

	require.NotNil(t, entities[1].Pairing)
	assert.Equal(t, "instance", entities[1].Pairing.Role)
	assert.Equal(t, "fk_unit_info", entities[1].Pairing.VocabularyFK)
	assert.Equal(t, "fk_parent_unit", entities[1].Pairing.ParentFK)
	assert.Equal(t, "tb_unit_translation", entities[1].Pairing.TranslationTable)

	assert.Nil(t, entities[2].Pairing)
}

func TestMergeTranslation(t *testing.T) {
	e := Entity{
		Name:  "product",
		Table: "tb_product",
		Fields: []Field{
			{Name: "pk_product", Type: "integer"},
			{Name: "name", Type: "text"},
		},
	}
	tr := schema.Table{
		Name: "tb_product_translation",
		Columns: []schema.Column{
			{Name: "fk_product", CanonicalType: "integer"},
			{Name: "locale", CanonicalType: "text"},
			{Name: "name", CanonicalType: "text", Nullable: true},
			{Name: "description", CanonicalType: "text", Nullable: true},
		},
	}
	result := pattern.TranslationResult{
		IsTranslationTable: true,
		ParentTable:        "tb_product",
		FKColumn:           "fk_product",
		LocaleColumn:       "locale",
		TranslatableFields: []string{"name", "description"},
	}

	e.MergeTranslation(tr, result)

	require.NotNil(t, e.Translations)
	assert.Equal(t, "tb_product_translation", e.Translations.Table)
	assert.Equal(t, "locale", e.Translations.LocaleColumn)
	require.Len(t, e.Translations.Fields, 2)

	// The shadowed parent field is gone, the key survives.
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "pk_product", e.Fields[0].Name)
}

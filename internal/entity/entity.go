// Package entity assembles the canonical, confidence-scored entity model
// that downstream generators consume.
package entity

import (
	"strings"

	"github.com/schemarev/schemarev/internal/construct"
	"github.com/schemarev/schemarev/internal/pattern"
	"github.com/schemarev/schemarev/internal/schema"
)

// Field is one canonical entity field.
type Field struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Nullable    bool   `yaml:"nullable,omitempty"`
	Default     string `yaml:"default,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Ref is a relationship inferred from an fk_ column.
type Ref struct {
	Field  string `yaml:"field"`
	Target string `yaml:"target"`
}

// Translations is the nested structure merged in from a translation
// side-table.
type Translations struct {
	Table        string  `yaml:"table"`
	LocaleColumn string  `yaml:"locale_column"`
	Fields       []Field `yaml:"fields"`
}

// Pairing carries vocabulary/instance metadata attached by the structural
// classifiers.
type Pairing struct {
	Role             string `yaml:"role"` // vocabulary or instance
	BaseEntityName   string `yaml:"base_entity_name"`
	CounterpartTable string `yaml:"counterpart_table,omitempty"`
	VocabularyFK     string `yaml:"vocabulary_fk,omitempty"`
	ParentFK         string `yaml:"parent_fk,omitempty"`
	TranslationTable string `yaml:"translation_table,omitempty"`
}

// ConstructSummary is the per-construct outcome recorded on an entity whose
// associated function bodies went through the coordinator.
type ConstructSummary struct {
	Construct       string         `yaml:"construct"`
	StepCount       int            `yaml:"step_count"`
	ConfidenceDelta float64        `yaml:"confidence_delta"`
	Metadata        map[string]any `yaml:"metadata,omitempty"`
}

// Entity is one canonical entity.
type Entity struct {
	Name               string             `yaml:"name"`
	Schema             string             `yaml:"schema"`
	Table              string             `yaml:"table"`
	Description        string             `yaml:"description,omitempty"`
	Fields             []Field            `yaml:"fields"`
	Refs               []Ref              `yaml:"refs,omitempty"`
	Translations       *Translations      `yaml:"translations,omitempty"`
	Pairing            *Pairing           `yaml:"pairing,omitempty"`
	Constructs         []ConstructSummary `yaml:"constructs,omitempty"`
	BaselineConfidence float64            `yaml:"baseline_confidence"`
	Confidence         float64            `yaml:"confidence"`
}

// FromTable builds the baseline entity for one parsed table. Construct
// summaries and pairing metadata are attached later by the pipeline.
func FromTable(t schema.Table) Entity {
	baseline, _ := schema.BaselineConfidence(t)

	e := Entity{
		Name:               entityName(t.Name),
		Schema:             t.Schema,
		Table:              t.Name,
		Description:        t.Comment,
		BaselineConfidence: baseline,
		Confidence:         baseline,
	}

	for _, col := range t.Columns {
		e.Fields = append(e.Fields, Field{
			Name:        col.Name,
			Type:        col.CanonicalType,
			Nullable:    col.Nullable,
			Default:     col.Default,
			Description: col.Comment,
		})
		if target, ok := refTarget(col.Name); ok {
			e.Refs = append(e.Refs, Ref{Field: col.Name, Target: target})
		}
	}
	return e
}

// entityName strips table-kind prefixes so tb_contact becomes contact.
func entityName(tableName string) string {
	name := strings.ToLower(tableName)
	for _, prefix := range []string{"tb_", "tv_"} {
		name = strings.TrimPrefix(name, prefix)
	}
	return name
}

// refTarget derives the referenced entity from an fk_ column name, skipping
// the self-referential parent convention which the pairing pass owns.
func refTarget(columnName string) (string, bool) {
	name := strings.ToLower(columnName)
	if !strings.HasPrefix(name, "fk_") {
		return "", false
	}
	if strings.HasPrefix(name, "fk_parent_") {
		return "", false
	}
	return strings.TrimPrefix(name, "fk_"), true
}

// AttachConstructs folds coordinator results into the entity: summaries are
// recorded and the summed deltas move the combined confidence.
func (e *Entity) AttachConstructs(results []*construct.Result) {
	for _, r := range results {
		e.Constructs = append(e.Constructs, ConstructSummary{
			Construct:       r.Construct.String(),
			StepCount:       len(r.Steps),
			ConfidenceDelta: r.ConfidenceDelta,
			Metadata:        r.Metadata,
		})
	}
	e.Confidence = e.BaselineConfidence + construct.SumDeltas(results)
}

// AttachPair records vocabulary/instance pairing metadata on both sides.
func AttachPair(entities []Entity, p pattern.Pair, detections map[string]pattern.DetectionResult) {
	for i := range entities {
		switch entities[i].Table {
		case p.VocabularyTable:
			entities[i].Pairing = &Pairing{
				Role:             "vocabulary",
				BaseEntityName:   p.BaseEntityName,
				CounterpartTable: p.InstanceTable,
				TranslationTable: p.TranslationTable,
			}
		case p.InstanceTable:
			pairing := &Pairing{
				Role:             "instance",
				BaseEntityName:   p.BaseEntityName,
				CounterpartTable: p.VocabularyTable,
				TranslationTable: p.TranslationTable,
			}
			if d, ok := detections[p.InstanceTable]; ok {
				pairing.VocabularyFK = d.VocabularyFK
				pairing.ParentFK = d.ParentFK
			}
			entities[i].Pairing = pairing
		}
	}
}

// MergeTranslation nests a translation table's translatable fields into the
// parent entity instead of emitting the side-table as its own entity.
func (e *Entity) MergeTranslation(t schema.Table, result pattern.TranslationResult) {
	translations := &Translations{
		Table:        t.Name,
		LocaleColumn: result.LocaleColumn,
	}
	for _, fieldName := range result.TranslatableFields {
		col := t.Column(fieldName)
		if col == nil {
			continue
		}
		translations.Fields = append(translations.Fields, Field{
			Name:     col.Name,
			Type:     col.CanonicalType,
			Nullable: col.Nullable,
		})
	}
	e.Translations = translations

	// Drop merged fields from the parent if they shadow translated ones.
	merged := make(map[string]bool, len(result.TranslatableFields))
	for _, f := range result.TranslatableFields {
		merged[f] = true
	}
	var kept []Field
	for _, f := range e.Fields {
		if !merged[f.Name] {
			kept = append(kept, f)
		}
	}
	e.Fields = kept
}

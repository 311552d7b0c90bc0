// Package pattern holds the structural classifiers that run over the full
// set of extracted tables: relationships like a vocabulary table paired with
// a hierarchy table are not visible from any single statement.
package pattern

import (
	"strings"

	"github.com/elliotchance/orderedmap/v2"
)

// DetectionResult classifies a single table. A table matching neither rule
// has both booleans false and no base name.
type DetectionResult struct {
	IsVocabularyTable bool
	IsInstanceTable   bool
	BaseEntityName    string
	VocabularyFK      string // instance tables only
	ParentFK          string // instance tables only (self-referential)
}

// Pair is a matched vocabulary/instance relationship. TranslationTable is
// empty when no matching translation table exists.
type Pair struct {
	VocabularyTable  string
	InstanceTable    string
	BaseEntityName   string
	TranslationTable string
}

// TableColumns is the minimal table shape the pairing pass consumes.
type TableColumns struct {
	Name    string
	Columns []string
}

const vocabularySuffix = "_info"

var tablePrefixes = []string{"tb_", "tv_"}

// Classify detects whether a table is the vocabulary or the instance side of
// the dual-table convention: tb_{entity}_info defines what the entity is,
// tb_{entity} defines where it sits in the hierarchy.
func Classify(tableName string, columns []string) DetectionResult {
	normalized := normalizeTableName(tableName)

	if base, ok := strings.CutSuffix(normalized, vocabularySuffix); ok {
		return DetectionResult{
			IsVocabularyTable: true,
			BaseEntityName:    base,
		}
	}

	if fk := findColumn(columns, "fk_"+normalized+vocabularySuffix); fk != "" {
		return DetectionResult{
			IsInstanceTable: true,
			BaseEntityName:  normalized,
			VocabularyFK:    fk,
			ParentFK:        findColumn(columns, "fk_parent_"+normalized),
		}
	}

	return DetectionResult{}
}

// DetectPairs matches vocabulary tables to instance tables sharing a base
// entity name. Pass one buckets every table; name collisions are resolved
// last-write-wins in input order. Pass two walks the vocabulary bucket in
// first-seen order and probes the translation index under the
// vocabulary-qualified name, then the bare base name. Vocabulary tables
// without an instance counterpart produce no pair.
func DetectPairs(tables []TableColumns, translationIndex map[string]string) []Pair {
	vocab := orderedmap.NewOrderedMap[string, string]()
	instances := orderedmap.NewOrderedMap[string, string]()

	for _, t := range tables {
		result := Classify(t.Name, t.Columns)
		switch {
		case result.IsVocabularyTable:
			vocab.Set(result.BaseEntityName, t.Name)
		case result.IsInstanceTable:
			instances.Set(result.BaseEntityName, t.Name)
		}
	}

	var pairs []Pair
	for el := vocab.Front(); el != nil; el = el.Next() {
		base, vocabName := el.Key, el.Value
		instanceName, ok := instances.Get(base)
		if !ok {
			continue
		}

		var translation string
		if translationIndex != nil {
			translation = translationIndex[base+vocabularySuffix]
			if translation == "" {
				translation = translationIndex[base]
			}
		}

		pairs = append(pairs, Pair{
			VocabularyTable:  vocabName,
			InstanceTable:    instanceName,
			BaseEntityName:   base,
			TranslationTable: translation,
		})
	}
	return pairs
}

func normalizeTableName(name string) string {
	lower := strings.ToLower(name)
	for _, prefix := range tablePrefixes {
		lower = strings.TrimPrefix(lower, prefix)
	}
	return lower
}

func findColumn(columns []string, want string) string {
	for _, col := range columns {
		if strings.ToLower(col) == want {
			return col
		}
	}
	return ""
}

package pattern

import (
	"strings"

	"github.com/schemarev/schemarev/internal/schema"
)

// TranslationResult describes whether a table is a translation side-table
// and, if so, how it relates to its parent.
type TranslationResult struct {
	IsTranslationTable bool
	ParentTable        string
	FKColumn           string
	LocaleColumn       string
	TranslatableFields []string
}

const translationSuffix = "_translation"

var localeColumnNames = []string{"locale", "language", "lang_code", "lang"}

// DetectTranslation classifies a table as a translation table when its name
// carries the _translation suffix and its structure matches: an fk_ column,
// a locale column, and a composite primary key over exactly those two.
func DetectTranslation(t schema.Table) TranslationResult {
	if !strings.HasSuffix(t.Name, translationSuffix) {
		return TranslationResult{}
	}

	fk := findTranslationFK(t)
	locale := findLocaleColumn(t)

	ok := fk != "" && locale != "" &&
		len(t.PrimaryKey) == 2 &&
		containsString(t.PrimaryKey, fk) &&
		containsString(t.PrimaryKey, locale)
	if !ok {
		return TranslationResult{}
	}

	return TranslationResult{
		IsTranslationTable: true,
		ParentTable:        strings.TrimSuffix(t.Name, translationSuffix),
		FKColumn:           fk,
		LocaleColumn:       locale,
		TranslatableFields: translatableFields(t, fk, locale),
	}
}

// BuildTranslationIndex maps each normalized parent base name to its
// translation table. The pairing pass probes this index.
func BuildTranslationIndex(tables []schema.Table) map[string]string {
	index := make(map[string]string)
	for _, t := range tables {
		result := DetectTranslation(t)
		if !result.IsTranslationTable {
			continue
		}
		index[normalizeTableName(result.ParentTable)] = t.Name
	}
	return index
}

func findTranslationFK(t schema.Table) string {
	for _, col := range t.Columns {
		if strings.HasPrefix(col.Name, "fk_") {
			return col.Name
		}
	}
	return ""
}

func findLocaleColumn(t schema.Table) string {
	for _, col := range t.Columns {
		for _, candidate := range localeColumnNames {
			if col.Name == candidate {
				return col.Name
			}
		}
	}
	return ""
}

func translatableFields(t schema.Table, fk, locale string) []string {
	var fields []string
	for _, col := range t.Columns {
		if col.Name == fk || col.Name == locale {
			continue
		}
		fields = append(fields, col.Name)
	}
	return fields
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

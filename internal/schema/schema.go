// Package schema builds the baseline entity and field model from PostgreSQL
// DDL. It is the boundary between raw statement text and the construct
// engine: tables carry the structural confidence signal, functions carry the
// bodies the coordinator scores.
package schema

// Column is one table column with its declared and canonical types.
type Column struct {
	Name          string
	Type          string // SQL display type, e.g. VARCHAR(120)
	CanonicalType string // entity-facing type, e.g. text
	Nullable      bool
	Default       string
	Comment       string
}

// Table is a parsed CREATE TABLE statement plus any COMMENT ON text that
// followed it in the same batch.
type Table struct {
	Schema            string
	Name              string
	Columns           []Column
	PrimaryKey        []string
	UniqueConstraints [][]string
	CheckConstraints  []string
	Comment           string
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// ColumnNames lists column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Function is a parsed CREATE FUNCTION/PROCEDURE with its body text, which
// is what the construct coordinator consumes.
type Function struct {
	Schema      string
	Name        string
	Signature   string
	Language    string
	IsProcedure bool
	Body        string
}

// SkippedStatement records input excluded from the batch instead of
// aborting it.
type SkippedStatement struct {
	Text   string
	Reason string
}

// ParseResult is the outcome of parsing one batch of statements.
type ParseResult struct {
	Tables    []Table
	Functions []Function
	Skipped   []SkippedStatement
}

package schema

import "strings"

// canonicalTypes maps PostgreSQL type names (internal and display forms,
// lowercased, modifiers stripped) to the entity-facing canonical type names
// that downstream generators consume.
var canonicalTypes = map[string]string{
	"int2":             "integer",
	"int4":             "integer",
	"int8":             "integer",
	"smallint":         "integer",
	"integer":          "integer",
	"int":              "integer",
	"bigint":           "integer",
	"serial":           "integer",
	"bigserial":        "integer",
	"float4":           "float",
	"float8":           "float",
	"real":             "float",
	"double precision": "float",
	"numeric":          "decimal",
	"decimal":          "decimal",
	"money":            "decimal",
	"text":             "text",
	"varchar":          "text",
	"bpchar":           "text",
	"char":             "text",
	"character":        "text",
	"citext":           "text",
	"bool":             "boolean",
	"boolean":          "boolean",
	"date":             "date",
	"time":             "time",
	"timetz":           "time",
	"timestamp":        "timestamp",
	"timestamptz":      "timestamp",
	"interval":         "duration",
	"uuid":             "uuid",
	"json":             "json",
	"jsonb":            "json",
	"bytea":            "binary",
	"inet":             "ip_address",
	"cidr":             "ip_network",
	"macaddr":          "mac_address",
	"ltree":            "path",
	"tsvector":         "search_vector",
}

// CanonicalType maps a SQL display type to its canonical entity type.
// Unknown types pass through lowercased so nothing is silently lost.
func CanonicalType(sqlType string) string {
	base := strings.ToLower(sqlType)
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(strings.TrimSpace(base), "[]")

	if canonical, ok := canonicalTypes[base]; ok {
		return canonical
	}
	return base
}

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contactDDL = `
CREATE TABLE tb_contact (
	pk_contact BIGSERIAL PRIMARY KEY,
	id UUID NOT NULL,
	identifier VARCHAR(120) NOT NULL,
	fk_customer_org BIGINT,
	display_name TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at TIMESTAMPTZ,
	CONSTRAINT uq_contact_identifier UNIQUE (fk_customer_org, identifier),
	CHECK (char_length(identifier) > 0)
);

COMMENT ON TABLE tb_contact IS 'People reachable by the system';
COMMENT ON COLUMN tb_contact.identifier IS 'Human-facing lookup key';
`

func TestParseCreateTable(t *testing.T) {
	result, err := Parse(contactDDL)
	require.NoError(t, err)
	require.Len(t, result.Tables, 1)
	assert.Empty(t, result.Skipped)

	tbl := result.Tables[0]
	assert.Equal(t, "tb_contact", tbl.Name)
	assert.Equal(t, "public", tbl.Schema)
	assert.Equal(t, "People reachable by the system", tbl.Comment)
	require.Len(t, tbl.Columns, 7)

	pk := tbl.Column("pk_contact")
	require.NotNil(t, pk)
	assert.False(t, pk.Nullable)
	assert.Equal(t, "integer", pk.CanonicalType)

	ident := tbl.Column("identifier")
	require.NotNil(t, ident)
	assert.Equal(t, "VARCHAR(120)", ident.Type)
	assert.Equal(t, "text", ident.CanonicalType)
	assert.False(t, ident.Nullable)
	assert.Equal(t, "Human-facing lookup key", ident.Comment)

	created := tbl.Column("created_at")
	require.NotNil(t, created)
	assert.Equal(t, "timestamp", created.CanonicalType)
	assert.Contains(t, created.Default, "now()")

	deleted := tbl.Column("deleted_at")
	require.NotNil(t, deleted)
	assert.True(t, deleted.Nullable)

	assert.Equal(t, []string{"pk_contact"}, tbl.PrimaryKey)
	require.Len(t, tbl.UniqueConstraints, 1)
	assert.Equal(t, []string{"fk_customer_org", "identifier"}, tbl.UniqueConstraints[0])
	require.Len(t, tbl.CheckConstraints, 1)
	assert.Contains(t, tbl.CheckConstraints[0], "char_length")
}

func TestParseCompositePrimaryKey(t *testing.T) {
	sql := `CREATE TABLE tb_product_translation (
		fk_product BIGINT NOT NULL,
		locale CHAR(5) NOT NULL,
		name TEXT,
		PRIMARY KEY (fk_product, locale)
	);`

	result, err := Parse(sql)
	require.NoError(t, err)
	require.Len(t, result.Tables, 1)
	assert.Equal(t, []string{"fk_product", "locale"}, result.Tables[0].PrimaryKey)
}

func TestParseQualifiedSchema(t *testing.T) {
	result, err := Parse(`CREATE TABLE billing.tb_invoice (pk_invoice BIGSERIAL PRIMARY KEY);`)
	require.NoError(t, err)
	require.Len(t, result.Tables, 1)
	assert.Equal(t, "billing", result.Tables[0].Schema)
	assert.Equal(t, "tb_invoice", result.Tables[0].Name)
}

func TestParseCreateFunction(t *testing.T) {
	sql := `
CREATE OR REPLACE FUNCTION soft_delete_contact(p_contact BIGINT)
RETURNS boolean AS $$
BEGIN
	UPDATE tb_contact SET deleted_at = now() WHERE pk_contact = p_contact;
	RETURN FOUND;
EXCEPTION WHEN others THEN
	RETURN false;
END;
$$ LANGUAGE plpgsql;
`
	result, err := Parse(sql)
	require.NoError(t, err)
	require.Len(t, result.Functions, 1)

	fn := result.Functions[0]
	assert.Equal(t, "soft_delete_contact", fn.Name)
	assert.Equal(t, "public", fn.Schema)
	assert.Equal(t, "plpgsql", fn.Language)
	assert.False(t, fn.IsProcedure)
	assert.Contains(t, fn.Signature, "p_contact")
	assert.Contains(t, fn.Body, "UPDATE tb_contact")
	assert.Contains(t, fn.Body, "EXCEPTION")
}

func TestParseRecoversFromBadStatement(t *testing.T) {
	sql := `
CREATE TABLE tb_ok (pk_ok BIGSERIAL PRIMARY KEY);
THIS IS NOT SQL AT ALL;
CREATE TABLE tb_also_ok (pk_also_ok BIGSERIAL PRIMARY KEY);
`
	result, err := Parse(sql)
	require.NoError(t, err)
	assert.Len(t, result.Tables, 2)
	require.Len(t, result.Skipped, 1)
	assert.Contains(t, result.Skipped[0].Text, "THIS IS NOT SQL")
	assert.NotEmpty(t, result.Skipped[0].Reason)
}

func TestParseUnknownStatementsIgnored(t *testing.T) {
	result, err := Parse(`CREATE INDEX idx_x ON t (a); SELECT 1;`)
	require.NoError(t, err)
	assert.Empty(t, result.Tables)
	assert.Empty(t, result.Functions)
	assert.Empty(t, result.Skipped)
}

func TestSplitStatementsDollarQuote(t *testing.T) {
	sql := `CREATE FUNCTION f() RETURNS void AS $$
BEGIN
	PERFORM 1;
END;
$$ LANGUAGE plpgsql;
CREATE TABLE t (x INT);`

	stmts := splitStatements(sql)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "PERFORM 1;")
	assert.Contains(t, stmts[1], "CREATE TABLE t")
}

package schema

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Parse runs a batch of SQL statements through pg_query and extracts tables,
// functions, and comments. A statement that cannot be interpreted is
// excluded from the result set, never fatal: when the batch as a whole fails
// to parse, it is re-split on statement boundaries and each piece is parsed
// independently.
func Parse(sql string) (*ParseResult, error) {
	result := &ParseResult{}

	tree, err := pg_query.Parse(sql)
	if err != nil {
		for _, stmt := range splitStatements(sql) {
			piece, pieceErr := pg_query.Parse(stmt)
			if pieceErr != nil {
				result.Skipped = append(result.Skipped, SkippedStatement{
					Text:   stmt,
					Reason: pieceErr.Error(),
				})
				continue
			}
			walkStatements(piece, result)
		}
		return result, nil
	}

	walkStatements(tree, result)
	return result, nil
}

func walkStatements(tree *pg_query.ParseResult, result *ParseResult) {
	for _, raw := range tree.Stmts {
		if raw.Stmt == nil {
			continue
		}
		node := raw.Stmt
		switch {
		case node.GetCreateStmt() != nil:
			result.Tables = append(result.Tables, parseCreateTable(node.GetCreateStmt()))
		case node.GetCreateFunctionStmt() != nil:
			result.Functions = append(result.Functions, parseCreateFunction(node.GetCreateFunctionStmt()))
		case node.GetCommentStmt() != nil:
			attachComment(node.GetCommentStmt(), result)
		}
	}
}

func parseCreateTable(stmt *pg_query.CreateStmt) Table {
	t := Table{Schema: "public"}
	if stmt.Relation != nil {
		if stmt.Relation.Schemaname != "" {
			t.Schema = stmt.Relation.Schemaname
		}
		t.Name = stmt.Relation.Relname
	}

	var inlinePK []string
	for _, elt := range stmt.TableElts {
		if colDef := elt.GetColumnDef(); colDef != nil {
			col, isPrimary := parseColumn(colDef)
			t.Columns = append(t.Columns, col)
			if isPrimary {
				inlinePK = append(inlinePK, col.Name)
			}
			continue
		}
		if constraint := elt.GetConstraint(); constraint != nil {
			parseTableConstraint(constraint, &t)
		}
	}

	if len(t.PrimaryKey) == 0 && len(inlinePK) > 0 {
		t.PrimaryKey = inlinePK
	}
	return t
}

func parseColumn(colDef *pg_query.ColumnDef) (Column, bool) {
	col := Column{
		Name:     colDef.Colname,
		Nullable: true,
	}

	if colDef.TypeName != nil {
		col.Type = displayType(colDef.TypeName)
		col.CanonicalType = CanonicalType(col.Type)
	}

	isPrimary := false
	for _, c := range colDef.Constraints {
		constraint := c.GetConstraint()
		if constraint == nil {
			continue
		}
		switch constraint.Contype {
		case pg_query.ConstrType_CONSTR_NOTNULL:
			col.Nullable = false
		case pg_query.ConstrType_CONSTR_PRIMARY:
			isPrimary = true
			col.Nullable = false
		case pg_query.ConstrType_CONSTR_DEFAULT:
			if constraint.RawExpr != nil {
				col.Default = deparseExpr(constraint.RawExpr)
			}
		}
	}
	return col, isPrimary
}

func parseTableConstraint(constraint *pg_query.Constraint, t *Table) {
	switch constraint.Contype {
	case pg_query.ConstrType_CONSTR_PRIMARY:
		t.PrimaryKey = keyNames(constraint.Keys)
	case pg_query.ConstrType_CONSTR_UNIQUE:
		if keys := keyNames(constraint.Keys); len(keys) > 0 {
			t.UniqueConstraints = append(t.UniqueConstraints, keys)
		}
	case pg_query.ConstrType_CONSTR_CHECK:
		if constraint.RawExpr != nil {
			t.CheckConstraints = append(t.CheckConstraints, deparseExpr(constraint.RawExpr))
		}
	}
}

func parseCreateFunction(stmt *pg_query.CreateFunctionStmt) Function {
	fn := Function{Schema: "public", IsProcedure: stmt.IsProcedure}

	parts := make([]string, 0, len(stmt.Funcname))
	for _, n := range stmt.Funcname {
		if s := n.GetString_(); s != nil {
			parts = append(parts, s.Sval)
		}
	}
	if len(parts) == 2 {
		fn.Schema = parts[0]
		fn.Name = parts[1]
	} else if len(parts) == 1 {
		fn.Name = parts[0]
	}

	var paramParts []string
	for _, param := range stmt.Parameters {
		fp := param.GetFunctionParameter()
		if fp == nil {
			continue
		}
		paramType := ""
		if fp.ArgType != nil {
			paramType = typeNameString(fp.ArgType)
		}
		if fp.Name != "" {
			paramParts = append(paramParts, fp.Name+" "+paramType)
		} else {
			paramParts = append(paramParts, paramType)
		}
	}
	if len(paramParts) > 0 {
		fn.Signature = "(" + strings.Join(paramParts, ", ") + ")"
	}

	for _, opt := range stmt.Options {
		defElem := opt.GetDefElem()
		if defElem == nil || defElem.Arg == nil {
			continue
		}
		switch defElem.Defname {
		case "as":
			// The body is typically a list with one string element.
			if list := defElem.Arg.GetList(); list != nil && len(list.Items) > 0 {
				if s := list.Items[0].GetString_(); s != nil {
					fn.Body = s.Sval
				}
			}
		case "language":
			if s := defElem.Arg.GetString_(); s != nil {
				fn.Language = s.Sval
			}
		}
	}
	return fn
}

// attachComment associates COMMENT ON TABLE/COLUMN text with an already
// parsed table. Comments for unknown objects are ignored.
func attachComment(stmt *pg_query.CommentStmt, result *ParseResult) {
	names := objectNames(stmt.Object)

	switch stmt.Objtype {
	case pg_query.ObjectType_OBJECT_TABLE:
		if t := findTable(result, names); t != nil {
			t.Comment = stmt.Comment
		}
	case pg_query.ObjectType_OBJECT_COLUMN:
		if len(names) < 2 {
			return
		}
		colName := names[len(names)-1]
		if t := findTable(result, names[:len(names)-1]); t != nil {
			if col := t.Column(colName); col != nil {
				col.Comment = stmt.Comment
			}
		}
	}
}

func findTable(result *ParseResult, names []string) *Table {
	if len(names) == 0 {
		return nil
	}
	tableName := names[len(names)-1]
	for i := range result.Tables {
		if result.Tables[i].Name == tableName {
			return &result.Tables[i]
		}
	}
	return nil
}

// objectNames flattens the object reference of a COMMENT statement into its
// dotted name parts.
func objectNames(node *pg_query.Node) []string {
	if node == nil {
		return nil
	}
	if list := node.GetList(); list != nil {
		var names []string
		for _, item := range list.Items {
			if s := item.GetString_(); s != nil {
				names = append(names, s.Sval)
			}
		}
		return names
	}
	if s := node.GetString_(); s != nil {
		return []string{s.Sval}
	}
	return nil
}

func keyNames(keys []*pg_query.Node) []string {
	var names []string
	for _, k := range keys {
		if s := k.GetString_(); s != nil {
			names = append(names, s.Sval)
		}
	}
	return names
}

// displayType renders a TypeName with its modifiers, e.g. VARCHAR(120).
func displayType(tn *pg_query.TypeName) string {
	base := strings.ToUpper(typeNameString(tn))

	var mods []string
	for _, mod := range tn.Typmods {
		if ac := mod.GetAConst(); ac != nil {
			if ival := ac.GetIval(); ival != nil {
				mods = append(mods, fmt.Sprintf("%d", ival.Ival))
			}
		}
	}
	if len(mods) > 0 {
		return base + "(" + strings.Join(mods, ",") + ")"
	}
	return base
}

func typeNameString(tn *pg_query.TypeName) string {
	parts := make([]string, 0, len(tn.Names))
	for _, n := range tn.Names {
		if s := n.GetString_(); s != nil {
			if s.Sval == "pg_catalog" {
				continue
			}
			parts = append(parts, s.Sval)
		}
	}
	return strings.Join(parts, ".")
}

// deparseExpr renders an expression node back to SQL, falling back to the
// node's debug form when deparsing fails.
func deparseExpr(node *pg_query.Node) string {
	// Wrap in a SELECT so the deparser accepts a bare expression.
	stmt := &pg_query.ParseResult{
		Stmts: []*pg_query.RawStmt{{
			Stmt: &pg_query.Node{Node: &pg_query.Node_SelectStmt{
				SelectStmt: &pg_query.SelectStmt{
					TargetList: []*pg_query.Node{{Node: &pg_query.Node_ResTarget{
						ResTarget: &pg_query.ResTarget{Val: node},
					}}},
				},
			}},
		}},
	}
	out, err := pg_query.Deparse(stmt)
	if err != nil {
		return node.String()
	}
	return strings.TrimPrefix(out, "SELECT ")
}

// splitStatements is the recovery path for batches pg_query rejects
// outright: a coarse split on statement-terminating semicolons at line ends.
func splitStatements(sql string) []string {
	var stmts []string
	var current strings.Builder
	inDollarQuote := false
	for _, line := range strings.Split(sql, "\n") {
		current.WriteString(line)
		current.WriteString("\n")
		if strings.Count(line, "$$")%2 == 1 {
			inDollarQuote = !inDollarQuote
		}
		trimmed := strings.TrimSpace(line)
		if !inDollarQuote && strings.HasSuffix(trimmed, ";") && !strings.HasPrefix(trimmed, "--") {
			if s := strings.TrimSpace(current.String()); s != "" {
				stmts = append(stmts, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		stmts = append(stmts, s)
	}
	return stmts
}

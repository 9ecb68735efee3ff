package ddl

import (
	"fmt"

	"github.com/rzpsarthak13/schema-forge/internal/core"
)

// OperationKind names an alter table operation.
type OperationKind string

const (
	KindAddColumn        OperationKind = "add_column"
	KindDropColumn       OperationKind = "drop_column"
	KindRenameColumn     OperationKind = "rename_column"
	KindSetColumnType    OperationKind = "set_column_type"
	KindSetColumnDefault OperationKind = "set_column_default"
	KindAddIndex         OperationKind = "add_index"
	KindDropIndex        OperationKind = "drop_index"
	KindAddConstraint    OperationKind = "add_constraint"
	KindDropConstraint   OperationKind = "drop_constraint"
)

// AlterOperation is one schema change applied to a table. The set of
// implementations is closed; each carries only the fields its kind needs.
type AlterOperation interface {
	Kind() OperationKind
	alterOperation()
}

// AddColumn adds a column.
type AddColumn struct {
	Column core.ColumnSpec
}

// DropColumn drops a column.
type DropColumn struct {
	Name string
}

// RenameColumn renames a column.
type RenameColumn struct {
	Name    string
	NewName string
}

// SetColumnType changes the type of a column.
type SetColumnType struct {
	Name string
	Type core.TypeSpec
}

// SetColumnDefault changes the default of a column. A nil Default sets DEFAULT NULL.
type SetColumnDefault struct {
	Name    string
	Default any
}

// AddIndex creates an index on the table.
type AddIndex struct {
	Index core.IndexSpec
}

// DropIndex drops an index. When Name is empty, the name is inferred from
// Columns with DefaultIndexName.
type DropIndex struct {
	Name    string
	Columns []string
}

// AddConstraint adds a table constraint.
type AddConstraint struct {
	Constraint core.ConstraintSpec
}

// DropConstraint drops a named constraint.
type DropConstraint struct {
	Name string
}

func (AddColumn) Kind() OperationKind        { return KindAddColumn }
func (DropColumn) Kind() OperationKind       { return KindDropColumn }
func (RenameColumn) Kind() OperationKind     { return KindRenameColumn }
func (SetColumnType) Kind() OperationKind    { return KindSetColumnType }
func (SetColumnDefault) Kind() OperationKind { return KindSetColumnDefault }
func (AddIndex) Kind() OperationKind         { return KindAddIndex }
func (DropIndex) Kind() OperationKind        { return KindDropIndex }
func (AddConstraint) Kind() OperationKind    { return KindAddConstraint }
func (DropConstraint) Kind() OperationKind   { return KindDropConstraint }

func (AddColumn) alterOperation()        {}
func (DropColumn) alterOperation()       {}
func (RenameColumn) alterOperation()     {}
func (SetColumnType) alterOperation()    {}
func (SetColumnDefault) alterOperation() {}
func (AddIndex) alterOperation()         {}
func (DropIndex) alterOperation()        {}
func (AddConstraint) alterOperation()    {}
func (DropConstraint) alterOperation()   {}

// AlterTableSQL compiles one operation on table into one statement.
// Index operations produce standalone CREATE/DROP INDEX statements.
func (g *Generator) AlterTableSQL(table string, op AlterOperation) (string, error) {
	quoted := g.quoteTable(table)
	prefix := "ALTER TABLE " + quoted + " "

	switch o := op.(type) {
	case AddColumn:
		def, err := g.ColumnDefinition(o.Column)
		if err != nil {
			return "", err
		}
		return prefix + "ADD COLUMN " + def, nil
	case DropColumn:
		return prefix + "DROP COLUMN " + g.r.QuoteIdentifier(o.Name), nil
	case RenameColumn:
		return prefix + fmt.Sprintf("RENAME COLUMN %s TO %s", g.r.QuoteIdentifier(o.Name), g.r.QuoteIdentifier(o.NewName)), nil
	case SetColumnType:
		typeLit, err := g.TypeLiteral(o.Type)
		if err != nil {
			return "", err
		}
		return prefix + fmt.Sprintf("ALTER COLUMN %s TYPE %s", g.r.QuoteIdentifier(o.Name), typeLit), nil
	case SetColumnDefault:
		lit, err := g.r.Literal(o.Default)
		if err != nil {
			return "", err
		}
		return prefix + fmt.Sprintf("ALTER COLUMN %s SET DEFAULT %s", g.r.QuoteIdentifier(o.Name), lit), nil
	case AddIndex:
		return g.IndexDefinition(table, o.Index)
	case DropIndex:
		name := o.Name
		if name == "" {
			name = DefaultIndexName(table, o.Columns)
		}
		stmt := "DROP INDEX " + g.r.QuoteIdentifier(name)
		if g.dialect.DropIndexOnTable {
			stmt += " ON " + quoted
		}
		return stmt, nil
	case AddConstraint:
		def, err := g.ConstraintDefinition(o.Constraint)
		if err != nil {
			return "", err
		}
		return prefix + "ADD " + def, nil
	case DropConstraint:
		return prefix + "DROP CONSTRAINT " + g.r.QuoteIdentifier(o.Name), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedOperation, op)
	}
}

// AlterTableSQLList compiles operations in order. It stops at the first
// failure and returns no statements in that case.
func (g *Generator) AlterTableSQLList(table string, ops []AlterOperation) ([]string, error) {
	statements := make([]string, 0, len(ops))
	for _, op := range ops {
		stmt, err := g.AlterTableSQL(table, op)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	return statements, nil
}

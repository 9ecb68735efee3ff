package ddl

import (
	"fmt"
	"strings"

	"github.com/rzpsarthak13/schema-forge/internal/core"
	"github.com/rzpsarthak13/schema-forge/internal/schema"
)

// Generator builds DDL statements for one dialect. It holds no mutable state
// and is safe for concurrent use if its Renderer is.
type Generator struct {
	dialect *Dialect
	r       core.Renderer
	types   *schema.TypeMapper
}

// NewGenerator creates a generator for dialect d rendering names and values with r.
func NewGenerator(d *Dialect, r core.Renderer) *Generator {
	return &Generator{
		dialect: d,
		r:       r,
		types:   schema.NewTypeMapper(schema.WithOverrides(d.TypeOverrides)),
	}
}

// Dialect returns the generator's dialect.
func (g *Generator) Dialect() *Dialect {
	return g.dialect
}

// DefaultIndexName derives the name used for an index created without an
// explicit one: <table>_<col>..._index, with schema qualifiers flattened.
func DefaultIndexName(table string, columns []string) string {
	return strings.ReplaceAll(table, ".", "_") + "_" + strings.Join(columns, "_") + "_index"
}

// TypeLiteral renders a type for the generator's dialect.
func (g *Generator) TypeLiteral(spec core.TypeSpec) (string, error) {
	return g.types.TypeLiteral(spec, g.r)
}

// ColumnDefinition renders one column as used inside CREATE TABLE and
// ALTER TABLE ... ADD COLUMN. The REFERENCES clause is written only when
// col.References names a table; a reference without one is ignored.
func (g *Generator) ColumnDefinition(col core.ColumnSpec) (string, error) {
	if col.Type == core.TypeCheck {
		return g.ConstraintDefinition(core.ConstraintSpec{
			Name:  col.Name,
			Type:  core.ConstraintCheck,
			Check: col.Check,
		})
	}

	typeLit, err := g.TypeLiteral(col.TypeSpec)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(g.r.QuoteIdentifier(col.Name))
	b.WriteString(" ")
	b.WriteString(typeLit)
	if col.Unique {
		b.WriteString(" UNIQUE")
	}
	switch col.Nullable {
	case core.NotNull:
		b.WriteString(" NOT NULL")
	case core.NullAllowed:
		b.WriteString(" NULL")
	}
	if col.Default != nil {
		lit, err := g.r.Literal(col.Default.Value)
		if err != nil {
			return "", err
		}
		b.WriteString(" DEFAULT ")
		b.WriteString(lit)
	}
	if col.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if col.AutoIncrement {
		b.WriteString(" ")
		b.WriteString(g.dialect.AutoIncrementKeyword)
	}
	if col.References != nil && col.References.Table != "" {
		b.WriteString(g.ReferenceClause(col.References))
	}
	return b.String(), nil
}

// ReferenceClause renders " REFERENCES <table>[(<cols>)][ ON DELETE ..][ ON UPDATE ..]".
func (g *Generator) ReferenceClause(fk *core.ForeignKey) string {
	var b strings.Builder
	b.WriteString(" REFERENCES ")
	b.WriteString(g.quoteTable(fk.Table))
	if len(fk.Columns) > 0 {
		b.WriteString("(")
		b.WriteString(g.columnList(fk.Columns))
		b.WriteString(")")
	}
	if fk.OnDelete != core.ActionNone {
		b.WriteString(" ON DELETE ")
		b.WriteString(ActionClause(fk.OnDelete))
	}
	if fk.OnUpdate != core.ActionNone {
		b.WriteString(" ON UPDATE ")
		b.WriteString(ActionClause(fk.OnUpdate))
	}
	return b.String()
}

// ActionClause maps an ON DELETE / ON UPDATE action to SQL. Unknown actions fall
// back to NO ACTION rather than failing.
func ActionClause(action core.Action) string {
	switch action {
	case core.ActionRestrict:
		return "RESTRICT"
	case core.ActionCascade:
		return "CASCADE"
	case core.ActionSetNull:
		return "SET NULL"
	case core.ActionSetDefault:
		return "SET DEFAULT"
	default:
		return "NO ACTION"
	}
}

// ConstraintDefinition renders a table constraint, optionally named. A
// foreign key must name the referenced table.
func (g *Generator) ConstraintDefinition(c core.ConstraintSpec) (string, error) {
	var b strings.Builder
	if c.Name != "" {
		b.WriteString("CONSTRAINT ")
		b.WriteString(g.r.QuoteIdentifier(c.Name))
		b.WriteString(" ")
	}

	switch c.Type {
	case core.ConstraintPrimaryKey:
		fmt.Fprintf(&b, "PRIMARY KEY (%s)", g.columnList(c.Columns))
	case core.ConstraintForeignKey:
		if c.References == nil || c.References.Table == "" {
			return "", fmt.Errorf("%w: foreign key %q has no referenced table", schema.ErrInvalidDefinition, c.Name)
		}
		fmt.Fprintf(&b, "FOREIGN KEY (%s)", g.columnList(c.Columns))
		b.WriteString(g.ReferenceClause(c.References))
	case core.ConstraintUnique:
		fmt.Fprintf(&b, "UNIQUE (%s)", g.columnList(c.Columns))
	default:
		expr, err := g.r.RenderFilterExpression(c.Check)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "CHECK (%s)", expr)
	}
	return b.String(), nil
}

// IndexDefinition renders CREATE [UNIQUE ]INDEX for idx on table.
func (g *Generator) IndexDefinition(table string, idx core.IndexSpec) (string, error) {
	if idx.Type != "" && !g.dialect.SupportsIndexType {
		return "", fmt.Errorf("%w: index type %q on dialect %s", ErrUnsupportedFeature, idx.Type, g.dialect.Name)
	}
	if idx.Where != nil && !g.dialect.SupportsPartialIndex {
		return "", fmt.Errorf("%w: partial index on dialect %s", ErrUnsupportedFeature, g.dialect.Name)
	}

	name := idx.Name
	if name == "" {
		name = DefaultIndexName(table, idx.Columns)
	}

	var b strings.Builder
	b.WriteString("CREATE ")
	if idx.Unique {
		b.WriteString("UNIQUE ")
	}
	fmt.Fprintf(&b, "INDEX %s ON %s", g.r.QuoteIdentifier(name), g.quoteTable(table))
	using := ""
	if idx.Type != "" {
		using = " USING " + idx.Type
	}
	if g.dialect.IndexTypeAfterColumns {
		fmt.Fprintf(&b, " (%s)%s", g.columnList(idx.Columns), using)
	} else {
		fmt.Fprintf(&b, "%s (%s)", using, g.columnList(idx.Columns))
	}
	if idx.Where != nil {
		pred, err := g.r.RenderFilterExpression(idx.Where)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHERE ")
		b.WriteString(pred)
	}
	return b.String(), nil
}

// CreateTableSQLList returns the CREATE TABLE statement followed by one
// CREATE INDEX statement per index, in input order.
func (g *Generator) CreateTableSQLList(name string, columns []core.ColumnSpec, indexes []core.IndexSpec) ([]string, error) {
	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		def, err := g.ColumnDefinition(col)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	statements := make([]string, 0, len(indexes)+1)
	statements = append(statements, fmt.Sprintf("CREATE TABLE %s (%s)", g.quoteTable(name), strings.Join(defs, ", ")))
	for _, idx := range indexes {
		stmt, err := g.IndexDefinition(name, idx)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	return statements, nil
}

// DropTableSQL renders DROP TABLE.
func (g *Generator) DropTableSQL(name string) string {
	return "DROP TABLE " + g.quoteTable(name)
}

// RenameTableSQL renders ALTER TABLE <old> RENAME TO <new>.
func (g *Generator) RenameTableSQL(oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", g.quoteTable(oldName), g.quoteTable(newName))
}

// quoteTable quotes each dot-separated part of a possibly schema-qualified name.
func (g *Generator) quoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = g.r.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

func (g *Generator) columnList(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = g.r.QuoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}

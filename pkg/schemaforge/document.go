package schemaforge

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/rzpsarthak13/schema-forge/internal/core"
	"github.com/rzpsarthak13/schema-forge/internal/ddl"
	"github.com/rzpsarthak13/schema-forge/internal/render"
	"github.com/rzpsarthak13/schema-forge/internal/schema"
)

// TableDocument is the YAML form of a CREATE TABLE request.
//
//	name: users
//	columns:
//	  - name: id
//	    type: integer
//	    primary_key: true
//	    auto_increment: true
//	  - name: email
//	    type: varchar
//	    size: 120
//	    nullable: false
//	indexes:
//	  - columns: [email]
//	    unique: true
type TableDocument struct {
	Name    string           `yaml:"name"`
	Columns []ColumnDocument `yaml:"columns"`
	Indexes []IndexDocument  `yaml:"indexes,omitempty"`
}

// ColumnDocument is one column of a TableDocument or an add_column
// operation.
type ColumnDocument struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Size     *int   `yaml:"size,omitempty"`
	Elements []any  `yaml:"elements,omitempty"`
	Unsigned bool   `yaml:"unsigned,omitempty"`

	// Nullable is tri-state: omitted, true (NULL) or false (NOT NULL).
	Nullable *bool `yaml:"nullable,omitempty"`

	Unique        bool `yaml:"unique,omitempty"`
	PrimaryKey    bool `yaml:"primary_key,omitempty"`
	AutoIncrement bool `yaml:"auto_increment,omitempty"`

	// Default keeps the raw node so that "default: null" and an omitted key
	// stay distinguishable. A mapping {raw: <sql>} is emitted unquoted.
	Default yaml.Node `yaml:"default,omitempty"`

	References *ReferenceDocument `yaml:"references,omitempty"`
	Check      string             `yaml:"check,omitempty"`
}

// ReferenceDocument is a foreign key target.
type ReferenceDocument struct {
	Table    string   `yaml:"table"`
	Columns  []string `yaml:"columns"`
	OnDelete string   `yaml:"on_delete,omitempty"`
	OnUpdate string   `yaml:"on_update,omitempty"`
}

// IndexDocument describes an index.
type IndexDocument struct {
	Name    string   `yaml:"name,omitempty"`
	Columns []string `yaml:"columns"`
	Unique  bool     `yaml:"unique,omitempty"`
	Type    string   `yaml:"type,omitempty"`
	Where   string   `yaml:"where,omitempty"`
}

// ConstraintDocument describes a table constraint.
type ConstraintDocument struct {
	Name       string             `yaml:"name,omitempty"`
	Type       string             `yaml:"type"`
	Columns    []string           `yaml:"columns,omitempty"`
	Check      string             `yaml:"check,omitempty"`
	References *ReferenceDocument `yaml:"references,omitempty"`
}

// AlterDocument is the YAML form of an ALTER TABLE request.
//
//	table: users
//	operations:
//	  - kind: add_column
//	    column: {name: age, type: integer}
//	  - kind: rename_column
//	    name: email
//	    new_name: email_address
type AlterDocument struct {
	Table      string              `yaml:"table"`
	Operations []OperationDocument `yaml:"operations"`
}

// OperationDocument is one entry of an AlterDocument. Kind selects which of
// the remaining fields are read.
type OperationDocument struct {
	Kind string `yaml:"kind"`

	Name    string `yaml:"name,omitempty"`
	NewName string `yaml:"new_name,omitempty"`

	// set_column_type
	Type     string `yaml:"type,omitempty"`
	Size     *int   `yaml:"size,omitempty"`
	Elements []any  `yaml:"elements,omitempty"`
	Unsigned bool   `yaml:"unsigned,omitempty"`

	// set_column_default
	Default yaml.Node `yaml:"default,omitempty"`

	// drop_index
	Columns []string `yaml:"columns,omitempty"`

	Column     *ColumnDocument     `yaml:"column,omitempty"`
	Index      *IndexDocument      `yaml:"index,omitempty"`
	Constraint *ConstraintDocument `yaml:"constraint,omitempty"`
}

// ParseTableDocument decodes a TableDocument. Unknown keys are rejected.
func ParseTableDocument(data []byte) (*TableDocument, error) {
	var doc TableDocument
	if err := decodeStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse table document: %w", err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("table document: name is required")
	}
	return &doc, nil
}

// ParseAlterDocument decodes an AlterDocument. Unknown keys are rejected.
func ParseAlterDocument(data []byte) (*AlterDocument, error) {
	var doc AlterDocument
	if err := decodeStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse alter document: %w", err)
	}
	if doc.Table == "" {
		return nil, fmt.Errorf("alter document: table is required")
	}
	return &doc, nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("document is empty")
		}
		return err
	}
	return nil
}

// Specs converts the document into column and index specs and validates the
// resulting definition.
func (d *TableDocument) Specs() ([]ColumnSpec, []IndexSpec, error) {
	cols := make([]ColumnSpec, 0, len(d.Columns))
	for i := range d.Columns {
		col, err := d.Columns[i].spec()
		if err != nil {
			return nil, nil, err
		}
		cols = append(cols, col)
	}
	idxs := make([]IndexSpec, 0, len(d.Indexes))
	for _, idx := range d.Indexes {
		idxs = append(idxs, idx.spec())
	}
	if err := schema.NewDefinitionValidator().ValidateTable(d.Name, cols, idxs); err != nil {
		return nil, nil, err
	}
	return cols, idxs, nil
}

// CreateTableSQLList generates the CREATE TABLE and CREATE INDEX statements
// for the document.
func (d *TableDocument) CreateTableSQLList(g *Generator) ([]string, error) {
	cols, idxs, err := d.Specs()
	if err != nil {
		return nil, err
	}
	return g.CreateTableSQLList(d.Name, cols, idxs)
}

// AlterOperations converts the document's operations in order.
func (d *AlterDocument) AlterOperations() ([]AlterOperation, error) {
	ops := make([]AlterOperation, 0, len(d.Operations))
	for i := range d.Operations {
		op, err := d.Operations[i].operation()
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// AlterTableSQLList generates one statement per operation.
func (d *AlterDocument) AlterTableSQLList(g *Generator) ([]string, error) {
	ops, err := d.AlterOperations()
	if err != nil {
		return nil, err
	}
	return g.AlterTableSQLList(d.Table, ops)
}

func (c *ColumnDocument) spec() (ColumnSpec, error) {
	def, err := defaultFromNode(&c.Default)
	if err != nil {
		return ColumnSpec{}, fmt.Errorf("column %s: %w", c.Name, err)
	}

	spec := ColumnSpec{
		Name: c.Name,
		TypeSpec: core.TypeSpec{
			Type:     core.Type(c.Type),
			Size:     c.Size,
			Elements: c.Elements,
			Unsigned: c.Unsigned,
		},
		Nullable:      nullability(c.Nullable),
		Unique:        c.Unique,
		Default:       def,
		PrimaryKey:    c.PrimaryKey,
		AutoIncrement: c.AutoIncrement,
		References:    c.References.foreignKey(),
	}
	if c.Check != "" {
		spec.Check = c.Check
	}
	return spec, nil
}

func (i IndexDocument) spec() IndexSpec {
	spec := IndexSpec{
		Name:    i.Name,
		Columns: i.Columns,
		Unique:  i.Unique,
		Type:    i.Type,
	}
	if i.Where != "" {
		spec.Where = i.Where
	}
	return spec
}

func (c *ConstraintDocument) spec() ConstraintSpec {
	spec := ConstraintSpec{
		Name:       c.Name,
		Type:       core.ConstraintType(c.Type),
		Columns:    c.Columns,
		References: c.References.foreignKey(),
	}
	if c.Check != "" {
		spec.Check = c.Check
	}
	return spec
}

func (r *ReferenceDocument) foreignKey() *ForeignKey {
	if r == nil {
		return nil
	}
	return &ForeignKey{
		Table:    r.Table,
		Columns:  r.Columns,
		OnDelete: core.Action(r.OnDelete),
		OnUpdate: core.Action(r.OnUpdate),
	}
}

func (o *OperationDocument) operation() (AlterOperation, error) {
	switch ddl.OperationKind(o.Kind) {
	case ddl.KindAddColumn:
		if o.Column == nil {
			return nil, fmt.Errorf("add_column: column is required")
		}
		col, err := o.Column.spec()
		if err != nil {
			return nil, err
		}
		if err := schema.NewDefinitionValidator().ValidateColumn(col); err != nil {
			return nil, err
		}
		return AddColumn{Column: col}, nil
	case ddl.KindDropColumn:
		return DropColumn{Name: o.Name}, nil
	case ddl.KindRenameColumn:
		return RenameColumn{Name: o.Name, NewName: o.NewName}, nil
	case ddl.KindSetColumnType:
		return SetColumnType{Name: o.Name, Type: core.TypeSpec{
			Type:     core.Type(o.Type),
			Size:     o.Size,
			Elements: o.Elements,
			Unsigned: o.Unsigned,
		}}, nil
	case ddl.KindSetColumnDefault:
		def, err := defaultFromNode(&o.Default)
		if err != nil {
			return nil, err
		}
		op := SetColumnDefault{Name: o.Name}
		if def != nil {
			op.Default = def.Value
		}
		return op, nil
	case ddl.KindAddIndex:
		if o.Index == nil {
			return nil, fmt.Errorf("add_index: index is required")
		}
		return AddIndex{Index: o.Index.spec()}, nil
	case ddl.KindDropIndex:
		return DropIndex{Name: o.Name, Columns: o.Columns}, nil
	case ddl.KindAddConstraint:
		if o.Constraint == nil {
			return nil, fmt.Errorf("add_constraint: constraint is required")
		}
		return AddConstraint{Constraint: o.Constraint.spec()}, nil
	case ddl.KindDropConstraint:
		return DropConstraint{Name: o.Name}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperation, o.Kind)
	}
}

func nullability(b *bool) Nullability {
	switch {
	case b == nil:
		return core.NullUnset
	case *b:
		return core.NullAllowed
	default:
		return core.NotNull
	}
}

// defaultFromNode returns nil for an omitted key and DefaultOf(nil) for an
// explicit null.
func defaultFromNode(n *yaml.Node) (*Default, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return core.DefaultOf(nil), nil
	}
	if n.Kind == yaml.MappingNode {
		var raw struct {
			Raw string `yaml:"raw"`
		}
		if err := n.Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid default: %w", err)
		}
		if raw.Raw == "" {
			return nil, fmt.Errorf("invalid default: mapping form needs a raw key")
		}
		return core.DefaultOf(render.Raw(raw.Raw)), nil
	}

	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid default: %w", err)
	}
	return core.DefaultOf(v), nil
}

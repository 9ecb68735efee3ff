package core

// Type is a dialect-independent column type tag.
// Values outside the declared constants are treated as raw extension types
// and rendered verbatim.
type Type string

const (
	TypeInteger  Type = "integer"
	TypeBigint   Type = "bigint"
	TypeString   Type = "string"
	TypeVarchar  Type = "varchar"
	TypeText     Type = "text"
	TypeDate     Type = "date"
	TypeDateTime Type = "datetime"
	TypeTime     Type = "time"
	TypeBoolean  Type = "boolean"
	TypeFloat    Type = "float"
	TypeDouble   Type = "double"
	TypeDecimal  Type = "decimal"
	TypeBlob     Type = "blob"

	// TypeCheck marks a column entry that is really an inline CHECK constraint.
	TypeCheck Type = "check"
)

// TypeSpec describes a column type before it is rendered for a dialect.
type TypeSpec struct {
	// Type is the canonical type.
	Type Type `json:"type" yaml:"type"`

	// Size is the optional length or precision, e.g. 255 for varchar(255).
	Size *int `json:"size,omitempty" yaml:"size,omitempty"`

	// Elements lists enumerated values, e.g. for enum or set types.
	// Rendered through the literal renderer as a parenthesized list.
	Elements []any `json:"elements,omitempty" yaml:"elements,omitempty"`

	// Unsigned appends UNSIGNED to the type literal.
	Unsigned bool `json:"unsigned,omitempty" yaml:"unsigned,omitempty"`
}

// Nullability is the tri-state NULL / NOT NULL marker of a column.
type Nullability int

const (
	// NullUnset emits neither NULL nor NOT NULL.
	NullUnset Nullability = iota
	// NullAllowed emits NULL.
	NullAllowed
	// NotNull emits NOT NULL.
	NotNull
)

// Default carries a column default. A nil *Default means "no default";
// a non-nil Default with a nil Value means DEFAULT NULL.
type Default struct {
	Value any
}

// DefaultOf returns a present default holding v.
func DefaultOf(v any) *Default {
	return &Default{Value: v}
}

// Action is a referential action for ON DELETE / ON UPDATE.
type Action string

const (
	ActionNone       Action = ""
	ActionRestrict   Action = "restrict"
	ActionCascade    Action = "cascade"
	ActionSetNull    Action = "set_null"
	ActionSetDefault Action = "set_default"
	ActionNoAction   Action = "no_action"
)

// ForeignKey is the target of a REFERENCES clause.
type ForeignKey struct {
	// Table is the referenced table.
	Table string

	// Columns are the referenced key columns. Empty means the target's primary key.
	Columns []string

	OnDelete Action
	OnUpdate Action
}

// ColumnSpec describes a single column in a CREATE TABLE or ADD COLUMN statement.
type ColumnSpec struct {
	// Name is the column name.
	Name string

	TypeSpec

	Nullable      Nullability
	Unique        bool
	Default       *Default
	PrimaryKey    bool
	AutoIncrement bool

	// References, when set, appends a REFERENCES clause.
	References *ForeignKey

	// Check is the expression for columns of type TypeCheck.
	Check any
}

// ConstraintType enumerates table constraint kinds.
type ConstraintType string

const (
	ConstraintPrimaryKey ConstraintType = "primary_key"
	ConstraintForeignKey ConstraintType = "foreign_key"
	ConstraintUnique     ConstraintType = "unique"
	ConstraintCheck      ConstraintType = "check"
)

// ConstraintSpec describes a table-level constraint.
type ConstraintSpec struct {
	// Name is optional; when set a CONSTRAINT <name> prefix is emitted.
	Name string

	Type ConstraintType

	// Columns are used by primary_key, foreign_key and unique constraints.
	Columns []string

	// Check is the opaque expression of a check constraint.
	Check any

	// References is the target of a foreign_key constraint.
	References *ForeignKey
}

// IndexSpec describes an index on a table.
type IndexSpec struct {
	// Name is optional; the default index name is derived from table and columns.
	Name string

	Columns []string
	Unique  bool

	// Type is an index method such as "btree" or "gin".
	Type string

	// Where is a partial index predicate, rendered by the expression renderer.
	Where any
}

// SchemaRow is one normalized column row read from the database catalog.
type SchemaRow struct {
	// DBType is the type string reported by the database.
	DBType string `json:"db_type"`

	// Type is the canonical type, empty when DBType is not recognized.
	Type Type `json:"type,omitempty"`

	AllowNull bool `json:"allow_null"`

	// Default is the column default literal, nil when the column has none.
	Default *string `json:"default"`

	MaxChars         *int64 `json:"max_chars,omitempty"`
	NumericPrecision *int64 `json:"numeric_precision,omitempty"`

	// Table is the owning table, only filled in by whole-database scans.
	Table string `json:"table,omitempty"`
}

// ColumnSchema pairs a column name with its catalog attributes.
type ColumnSchema struct {
	Name string    `json:"name"`
	Row  SchemaRow `json:"row"`
}

// DatabaseSchema is the schema of every base table, in first-seen order.
type DatabaseSchema struct {
	Order  []string                  `json:"order"`
	Tables map[string][]ColumnSchema `json:"tables"`
}

// NewDatabaseSchema returns an empty DatabaseSchema.
func NewDatabaseSchema() *DatabaseSchema {
	return &DatabaseSchema{Tables: make(map[string][]ColumnSchema)}
}

// Add appends a column to table, registering the table on first sight.
func (s *DatabaseSchema) Add(table string, col ColumnSchema) {
	if _, ok := s.Tables[table]; !ok {
		s.Order = append(s.Order, table)
	}
	s.Tables[table] = append(s.Tables[table], col)
}

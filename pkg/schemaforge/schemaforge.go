// Package schemaforge generates dialect specific DDL from declarative table
// definitions and reads existing table schemas back from a database's
// information_schema.
//
// Typical usage:
//
//	gen, _ := schemaforge.NewGenerator("postgres")
//	stmts, _ := gen.CreateTableSQLList("users", columns, indexes)
//
//	db, _ := schemaforge.Open(cfg, logger)
//	defer db.Close()
//	cols, _ := db.Schema(ctx, "users", false)
package schemaforge

import (
	"github.com/rzpsarthak13/schema-forge/internal/config"
	"github.com/rzpsarthak13/schema-forge/internal/core"
	"github.com/rzpsarthak13/schema-forge/internal/ddl"
	"github.com/rzpsarthak13/schema-forge/internal/publish"
	"github.com/rzpsarthak13/schema-forge/internal/render"
	"github.com/rzpsarthak13/schema-forge/internal/schema"
	"github.com/rzpsarthak13/schema-forge/internal/snapshot"
)

type (
	Type           = core.Type
	TypeSpec       = core.TypeSpec
	Nullability    = core.Nullability
	Default        = core.Default
	Action         = core.Action
	ForeignKey     = core.ForeignKey
	ColumnSpec     = core.ColumnSpec
	ConstraintType = core.ConstraintType
	ConstraintSpec = core.ConstraintSpec
	IndexSpec      = core.IndexSpec
	SchemaRow      = core.SchemaRow
	ColumnSchema   = core.ColumnSchema
	DatabaseSchema = core.DatabaseSchema
	Querier        = core.Querier

	Generator        = ddl.Generator
	Dialect          = ddl.Dialect
	OperationKind    = ddl.OperationKind
	AlterOperation   = ddl.AlterOperation
	AddColumn        = ddl.AddColumn
	DropColumn       = ddl.DropColumn
	RenameColumn     = ddl.RenameColumn
	SetColumnType    = ddl.SetColumnType
	SetColumnDefault = ddl.SetColumnDefault
	AddIndex         = ddl.AddIndex
	DropIndex        = ddl.DropIndex
	AddConstraint    = ddl.AddConstraint
	DropConstraint   = ddl.DropConstraint

	// Raw is a literal SQL fragment emitted without quoting.
	Raw = render.Raw

	Config = config.Config
	Batch  = publish.Batch
)

const (
	TypeInteger  = core.TypeInteger
	TypeBigint   = core.TypeBigint
	TypeString   = core.TypeString
	TypeVarchar  = core.TypeVarchar
	TypeText     = core.TypeText
	TypeDate     = core.TypeDate
	TypeDateTime = core.TypeDateTime
	TypeTime     = core.TypeTime
	TypeBoolean  = core.TypeBoolean
	TypeFloat    = core.TypeFloat
	TypeDouble   = core.TypeDouble
	TypeDecimal  = core.TypeDecimal
	TypeBlob     = core.TypeBlob

	NullUnset   = core.NullUnset
	NullAllowed = core.NullAllowed
	NotNull     = core.NotNull

	ActionRestrict   = core.ActionRestrict
	ActionCascade    = core.ActionCascade
	ActionSetNull    = core.ActionSetNull
	ActionSetDefault = core.ActionSetDefault
	ActionNoAction   = core.ActionNoAction

	ConstraintPrimaryKey = core.ConstraintPrimaryKey
	ConstraintForeignKey = core.ConstraintForeignKey
	ConstraintUnique     = core.ConstraintUnique
	ConstraintCheck      = core.ConstraintCheck
)

var (
	ErrUnsupportedOperation = ddl.ErrUnsupportedOperation
	ErrUnsupportedFeature   = ddl.ErrUnsupportedFeature
	ErrSnapshotNotFound     = snapshot.ErrNotFound
	ErrInvalidDefinition    = schema.ErrInvalidDefinition
)

// DefaultOf returns a present default holding v. DefaultOf(nil) renders
// DEFAULT NULL.
func DefaultOf(v any) *Default {
	return core.DefaultOf(v)
}

// NewGenerator returns a DDL generator for the named dialect ("generic",
// "mysql", "postgres").
func NewGenerator(dialect string) (*Generator, error) {
	d, err := ddl.LookupDialect(dialect)
	if err != nil {
		return nil, err
	}
	return ddl.NewGenerator(d, render.ForDialect(d.Name)), nil
}

// Dialects lists the registered dialect names.
func Dialects() []string {
	return ddl.RegisteredDialects()
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads a YAML or JSON file, when path is not empty, and then
// applies SCHEMA_FORGE_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	m := config.NewManager()
	if path != "" {
		if err := m.LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := m.LoadFromEnv(); err != nil {
		return nil, err
	}
	return m.Config(), nil
}

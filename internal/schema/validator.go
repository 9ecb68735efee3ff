package schema

import (
	"errors"
	"fmt"

	"github.com/rzpsarthak13/schema-forge/internal/core"
)

// ErrInvalidDefinition is wrapped by every error DefinitionValidator returns.
var ErrInvalidDefinition = errors.New("invalid table definition")

// DefinitionValidator checks a table definition for mistakes the builders
// would otherwise turn into broken SQL.
type DefinitionValidator struct {
	mapper *TypeMapper
}

// NewDefinitionValidator creates a new definition validator.
func NewDefinitionValidator() *DefinitionValidator {
	return &DefinitionValidator{mapper: NewTypeMapper()}
}

// ValidateTable validates a whole CREATE TABLE definition and returns the
// first problem found.
func (v *DefinitionValidator) ValidateTable(name string, columns []core.ColumnSpec, indexes []core.IndexSpec) error {
	if name == "" {
		return fmt.Errorf("%w: table name is required", ErrInvalidDefinition)
	}
	if len(columns) == 0 {
		return fmt.Errorf("%w: table %s has no columns", ErrInvalidDefinition, name)
	}

	seen := make(map[string]struct{}, len(columns))
	primaryKeys := 0
	for _, col := range columns {
		if err := v.ValidateColumn(col); err != nil {
			return err
		}
		if col.Type == core.TypeCheck {
			continue
		}
		if _, dup := seen[col.Name]; dup {
			return fmt.Errorf("%w: duplicate column %s", ErrInvalidDefinition, col.Name)
		}
		seen[col.Name] = struct{}{}
		if col.PrimaryKey {
			primaryKeys++
		}
	}
	if primaryKeys > 1 {
		return fmt.Errorf("%w: table %s declares %d inline primary keys, use a primary_key constraint instead", ErrInvalidDefinition, name, primaryKeys)
	}

	for _, idx := range indexes {
		if len(idx.Columns) == 0 {
			return fmt.Errorf("%w: index %s has no columns", ErrInvalidDefinition, idx.Name)
		}
		for _, c := range idx.Columns {
			if _, ok := seen[c]; !ok {
				return fmt.Errorf("%w: index column %s is not defined on table %s", ErrInvalidDefinition, c, name)
			}
		}
	}
	return nil
}

// ValidateColumn validates a single column definition.
func (v *DefinitionValidator) ValidateColumn(col core.ColumnSpec) error {
	if col.Type == core.TypeCheck {
		if col.Check == nil {
			return fmt.Errorf("%w: check column %s has no expression", ErrInvalidDefinition, col.Name)
		}
		return nil
	}

	if col.Name == "" {
		return fmt.Errorf("%w: column name is required", ErrInvalidDefinition)
	}
	if col.Type == "" {
		return fmt.Errorf("%w: column %s has no type", ErrInvalidDefinition, col.Name)
	}
	if col.Size != nil && *col.Size <= 0 {
		return fmt.Errorf("%w: column %s has non-positive size %d", ErrInvalidDefinition, col.Name, *col.Size)
	}
	if col.AutoIncrement && v.mapper.Family(col.Type) != core.TypeInteger {
		return fmt.Errorf("%w: auto-increment column %s must be an integer type, got %s", ErrInvalidDefinition, col.Name, col.Type)
	}
	if col.PrimaryKey && col.Nullable == core.NullAllowed {
		return fmt.Errorf("%w: primary key column %s cannot be nullable", ErrInvalidDefinition, col.Name)
	}
	if col.References != nil && col.References.Table == "" {
		return fmt.Errorf("%w: column %s references no table", ErrInvalidDefinition, col.Name)
	}
	return nil
}

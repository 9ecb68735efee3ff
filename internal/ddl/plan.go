package ddl

import (
	"strings"

	"github.com/rzpsarthak13/schema-forge/internal/core"
)

// PlanColumns returns the operations that bring a table whose catalog
// columns are current to the desired column list. Columns missing from the
// table are added and columns whose type family changed get SetColumnType,
// both in desired order. Columns no longer desired are dropped last, in
// catalog order.
//
// Types the catalog reports but the mapper does not recognize are left
// alone, and a tinyint column satisfies a boolean one since MySQL stores
// booleans as tinyint. Check columns carry no catalog entry and are ignored.
func (g *Generator) PlanColumns(current []core.ColumnSchema, desired []core.ColumnSpec) []AlterOperation {
	existing := make(map[string]core.SchemaRow, len(current))
	for _, col := range current {
		existing[col.Name] = col.Row
	}

	var ops []AlterOperation
	wanted := make(map[string]struct{}, len(desired))
	for _, col := range desired {
		if col.Type == core.TypeCheck {
			continue
		}
		wanted[col.Name] = struct{}{}

		row, ok := existing[col.Name]
		if !ok {
			ops = append(ops, AddColumn{Column: col})
			continue
		}
		if !g.sameFamily(row, col.Type) {
			ops = append(ops, SetColumnType{Name: col.Name, Type: col.TypeSpec})
		}
	}

	for _, col := range current {
		if _, ok := wanted[col.Name]; !ok {
			ops = append(ops, DropColumn{Name: col.Name})
		}
	}
	return ops
}

func (g *Generator) sameFamily(row core.SchemaRow, want core.Type) bool {
	if row.Type == "" {
		return true
	}
	family := g.types.Family(want)
	if family == core.TypeBoolean && strings.HasPrefix(strings.ToLower(row.DBType), "tinyint") {
		return true
	}
	return row.Type == family
}

package ddl

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/schema-forge/internal/core"
	"github.com/rzpsarthak13/schema-forge/internal/render"
)

func catalogColumn(name string, t core.Type) core.ColumnSchema {
	return core.ColumnSchema{Name: name, Row: core.SchemaRow{DBType: string(t), Type: t}}
}

func TestPlanColumns(t *testing.T) {
	g := newGeneric()

	current := []core.ColumnSchema{
		catalogColumn("id", core.TypeInteger),
		catalogColumn("email", core.TypeString),
		catalogColumn("score", core.TypeInteger),
		catalogColumn("legacy", core.TypeString),
		{Name: "search", Row: core.SchemaRow{DBType: "tsvector"}},
	}
	desired := []core.ColumnSpec{
		{Name: "id", TypeSpec: core.TypeSpec{Type: core.TypeBigint}},
		{Name: "email", TypeSpec: core.TypeSpec{Type: core.TypeVarchar, Size: intPtr(320)}},
		{Name: "score", TypeSpec: core.TypeSpec{Type: core.TypeDecimal}},
		{Name: "search", TypeSpec: core.TypeSpec{Type: "tsvector"}},
		{Name: "age", TypeSpec: core.TypeSpec{Type: core.TypeInteger}},
		{Name: "positive", TypeSpec: core.TypeSpec{Type: core.TypeCheck}, Check: "age > 0"},
	}

	ops := g.PlanColumns(current, desired)
	require.Equal(t, []AlterOperation{
		SetColumnType{Name: "score", Type: core.TypeSpec{Type: core.TypeDecimal}},
		AddColumn{Column: desired[4]},
		DropColumn{Name: "legacy"},
	}, ops)

	stmts, err := g.AlterTableSQLList("users", ops)
	require.NoError(t, err)
	require.Equal(t, []string{
		`ALTER TABLE "users" ALTER COLUMN "score" TYPE numeric`,
		`ALTER TABLE "users" ADD COLUMN "age" integer`,
		`ALTER TABLE "users" DROP COLUMN "legacy"`,
	}, stmts)
}

func TestPlanColumnsNoChanges(t *testing.T) {
	g := newGeneric()
	current := []core.ColumnSchema{catalogColumn("id", core.TypeInteger)}
	desired := []core.ColumnSpec{{Name: "id", TypeSpec: core.TypeSpec{Type: core.TypeInteger}}}
	require.Empty(t, g.PlanColumns(current, desired))
}

func TestPlanColumnsTinyintSatisfiesBoolean(t *testing.T) {
	g := NewGenerator(MySQL, render.New(render.MySQL))
	current := []core.ColumnSchema{
		{Name: "active", Row: core.SchemaRow{DBType: "tinyint", Type: core.TypeInteger}},
		{Name: "flag", Row: core.SchemaRow{DBType: "tinyint", Type: core.TypeBoolean}},
		{Name: "count", Row: core.SchemaRow{DBType: "tinyint", Type: core.TypeInteger}},
	}
	desired := []core.ColumnSpec{
		{Name: "active", TypeSpec: core.TypeSpec{Type: core.TypeBoolean}},
		{Name: "flag", TypeSpec: core.TypeSpec{Type: core.TypeBoolean}},
		{Name: "count", TypeSpec: core.TypeSpec{Type: core.TypeString}},
	}

	require.Equal(t, []AlterOperation{
		SetColumnType{Name: "count", Type: core.TypeSpec{Type: core.TypeString}},
	}, g.PlanColumns(current, desired))
}

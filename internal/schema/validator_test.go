package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/schema-forge/internal/core"
)

func TestValidateTable(t *testing.T) {
	v := NewDefinitionValidator()

	cols := []core.ColumnSpec{
		{Name: "id", TypeSpec: core.TypeSpec{Type: core.TypeBigint}, PrimaryKey: true, AutoIncrement: true},
		{Name: "email", TypeSpec: core.TypeSpec{Type: core.TypeVarchar, Size: intPtr(120)}},
		{TypeSpec: core.TypeSpec{Type: core.TypeCheck}, Check: "length(email) > 3"},
	}
	require.NoError(t, v.ValidateTable("users", cols, []core.IndexSpec{{Columns: []string{"email"}}}))

	cases := []struct {
		name    string
		table   string
		cols    []core.ColumnSpec
		indexes []core.IndexSpec
		errMsg  string
	}{
		{"no name", "", cols, nil, "table name is required"},
		{"no columns", "users", nil, nil, "has no columns"},
		{"duplicate column", "users", append(cols[:2:2], core.ColumnSpec{Name: "email", TypeSpec: core.TypeSpec{Type: core.TypeText}}), nil, "duplicate column email"},
		{"two primary keys", "users", []core.ColumnSpec{
			{Name: "a", TypeSpec: core.TypeSpec{Type: core.TypeInteger}, PrimaryKey: true},
			{Name: "b", TypeSpec: core.TypeSpec{Type: core.TypeInteger}, PrimaryKey: true},
		}, nil, "2 inline primary keys"},
		{"index on unknown column", "users", cols, []core.IndexSpec{{Columns: []string{"phone"}}}, "index column phone"},
		{"empty index", "users", cols, []core.IndexSpec{{Name: "idx"}}, "index idx has no columns"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateTable(tc.table, tc.cols, tc.indexes)
			require.ErrorIs(t, err, ErrInvalidDefinition)
			require.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestValidateColumn(t *testing.T) {
	v := NewDefinitionValidator()

	cases := []struct {
		name   string
		col    core.ColumnSpec
		errMsg string
	}{
		{"missing name", core.ColumnSpec{TypeSpec: core.TypeSpec{Type: core.TypeInteger}}, "column name is required"},
		{"missing type", core.ColumnSpec{Name: "a"}, "has no type"},
		{"zero size", core.ColumnSpec{Name: "a", TypeSpec: core.TypeSpec{Type: core.TypeVarchar, Size: intPtr(0)}}, "non-positive size"},
		{"autoincrement text", core.ColumnSpec{Name: "a", TypeSpec: core.TypeSpec{Type: core.TypeText}, AutoIncrement: true}, "must be an integer type"},
		{"nullable primary key", core.ColumnSpec{Name: "a", TypeSpec: core.TypeSpec{Type: core.TypeInteger}, PrimaryKey: true, Nullable: core.NullAllowed}, "cannot be nullable"},
		{"reference without table", core.ColumnSpec{Name: "a", TypeSpec: core.TypeSpec{Type: core.TypeInteger}, References: &core.ForeignKey{}}, "references no table"},
		{"check without expression", core.ColumnSpec{Name: "c", TypeSpec: core.TypeSpec{Type: core.TypeCheck}}, "has no expression"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateColumn(tc.col)
			require.ErrorIs(t, err, ErrInvalidDefinition)
			require.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestFamily(t *testing.T) {
	tm := NewTypeMapper()
	require.Equal(t, core.TypeInteger, tm.Family(core.TypeBigint))
	require.Equal(t, core.TypeString, tm.Family(core.TypeText))
	require.Equal(t, core.TypeFloat, tm.Family(core.TypeDouble))
	require.Equal(t, core.TypeDecimal, tm.Family(core.TypeDecimal))
	require.Equal(t, core.Type("uuid"), tm.Family("uuid"))
}

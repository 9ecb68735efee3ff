package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type gtExpr struct {
	column string
}

func (e gtExpr) SQL() string { return e.column + " > 0" }

func TestQuoteIdentifier(t *testing.T) {
	require.Equal(t, `"users"`, New(ANSI).QuoteIdentifier("users"))
	require.Equal(t, `"we""ird"`, New(ANSI).QuoteIdentifier(`we"ird`))
	require.Equal(t, "`users`", New(MySQL).QuoteIdentifier("users"))
	require.Equal(t, "`a``b`", ForDialect("mysql").QuoteIdentifier("a`b"))
}

func TestLiteral(t *testing.T) {
	ansi := New(ANSI)
	cases := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "NULL"},
		{"string", "it's", "'it''s'"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"uint8", uint8(3), "3"},
		{"float", 1.5, "1.5"},
		{"bool", true, "TRUE"},
		{"raw", Raw("CURRENT_TIMESTAMP"), "CURRENT_TIMESTAMP"},
		{"bytes", []byte{0xde, 0xad}, "X'dead'"},
		{"time", time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), "'2024-03-01 12:30:00'"},
		{"list", []any{"a", 1, nil}, "('a', 1, NULL)"},
		{"string slice", []string{"x", "y"}, "('x', 'y')"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ansi.Literal(tc.value)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestLiteralMySQL(t *testing.T) {
	my := New(MySQL)

	got, err := my.Literal(`a\b`)
	require.NoError(t, err)
	require.Equal(t, `'a\\b'`, got)

	got, err = my.Literal(false)
	require.NoError(t, err)
	require.Equal(t, "0", got)
}

func TestLiteralUnsupported(t *testing.T) {
	_, err := New(ANSI).Literal(map[string]int{"a": 1})
	require.ErrorIs(t, err, ErrUnsupportedLiteral)
}

func TestRenderFilterExpression(t *testing.T) {
	r := New(ANSI)

	got, err := r.RenderFilterExpression("price > 0")
	require.NoError(t, err)
	require.Equal(t, "price > 0", got)

	got, err = r.RenderFilterExpression(gtExpr{column: "qty"})
	require.NoError(t, err)
	require.Equal(t, "qty > 0", got)

	_, err = r.RenderFilterExpression(42)
	require.ErrorIs(t, err, ErrUnsupportedExpression)
}

package core

import (
	"context"
	"database/sql"
)

// Renderer is the collaborator that turns names, values and filter
// expressions into SQL text. Implementations are dialect specific.
type Renderer interface {
	// QuoteIdentifier quotes a single identifier.
	QuoteIdentifier(name string) string

	// Literal renders a Go value as a SQL literal. Slices render as a
	// parenthesized, comma-separated list of literals.
	Literal(value any) (string, error)

	// RenderFilterExpression renders an opaque boolean expression, as used by
	// CHECK constraints and partial index predicates.
	RenderFilterExpression(expr any) (string, error)
}

// Querier issues catalog queries. *sql.DB and *sql.Tx satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

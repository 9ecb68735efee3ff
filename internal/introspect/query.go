package introspect

import (
	"fmt"
	"strings"
)

// query is a small SELECT builder covering the from/select/join/filter shape
// the catalog scan needs.
type query struct {
	selects []string
	from    string
	joins   []string
	where   []condition
	orderBy []string
}

// condition is a WHERE term. Args bind to "?" markers in sql, left to right.
type condition struct {
	sql  string
	args []any
}

func from(table string) *query {
	return &query{from: table}
}

func (q *query) selecting(columns ...string) *query {
	q.selects = append(q.selects, columns...)
	return q
}

func (q *query) join(table string, on ...string) *query {
	q.joins = append(q.joins, fmt.Sprintf("INNER JOIN %s ON %s", table, strings.Join(on, " AND ")))
	return q
}

func (q *query) filter(sql string, args ...any) *query {
	q.where = append(q.where, condition{sql: sql, args: args})
	return q
}

func (q *query) order(columns ...string) *query {
	q.orderBy = append(q.orderBy, columns...)
	return q
}

// build renders the statement, replacing each "?" marker with placeholder(n).
func (q *query) build(placeholder func(n int) string) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(q.selects, ", "))
	b.WriteString(" FROM ")
	b.WriteString(q.from)
	for _, j := range q.joins {
		b.WriteString(" ")
		b.WriteString(j)
	}

	var args []any
	if len(q.where) > 0 {
		terms := make([]string, 0, len(q.where))
		for _, c := range q.where {
			sql := c.sql
			for _, arg := range c.args {
				args = append(args, arg)
				sql = strings.Replace(sql, "?", placeholder(len(args)), 1)
			}
			terms = append(terms, sql)
		}
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(terms, " AND "))
	}
	if len(q.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(q.orderBy, ", "))
	}
	return b.String(), args
}

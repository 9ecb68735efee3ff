// Package introspect reads column metadata from a database's
// information_schema and caches it per table.
package introspect

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"github.com/rzpsarthak13/schema-forge/internal/core"
	"github.com/rzpsarthak13/schema-forge/internal/schema"
)

// Options configures a Parser.
type Options struct {
	// Schema restricts the scan to a named schema. When empty, CurrentSchema is used.
	Schema string

	// CurrentSchema is the SQL expression naming the connection's schema,
	// e.g. "current_schema()" or "DATABASE()".
	CurrentSchema string

	// Placeholder renders the n-th bind parameter. Defaults to "?".
	Placeholder func(n int) string

	// ConvertTinyintToBool maps tinyint columns to boolean.
	ConvertTinyintToBool bool

	Logger *zap.Logger
}

// Parser issues catalog queries through a Querier and normalizes the rows
// into canonical column schemas.
type Parser struct {
	q     core.Querier
	types *schema.TypeMapper
	cache *Cache
	opts  Options
	log   *zap.Logger
}

// NewParser creates a parser with an empty cache.
func NewParser(q core.Querier, opts Options) *Parser {
	if opts.CurrentSchema == "" {
		opts.CurrentSchema = "current_schema()"
	}
	if opts.Placeholder == nil {
		opts.Placeholder = func(int) string { return "?" }
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		q:     q,
		types: schema.NewTypeMapper(schema.WithTinyintAsBool(opts.ConvertTinyintToBool)),
		cache: NewCache(),
		opts:  opts,
		log:   logger.Named("introspect"),
	}
}

// Cache exposes the parser's cache for explicit invalidation.
func (p *Parser) Cache() *Cache {
	return p.cache
}

// Table returns the columns of table in physical order. A warm cache entry
// is returned without querying unless reload is set.
func (p *Parser) Table(ctx context.Context, table string, reload bool) ([]core.ColumnSchema, error) {
	if reload {
		p.cache.Invalidate(table)
	}
	return p.cache.GetOrPopulateTable(table, func() ([]core.ColumnSchema, error) {
		db, err := p.scan(ctx, table)
		if err != nil {
			return nil, err
		}
		return db.Tables[table], nil
	})
}

// Database returns the columns of every base table, grouped by table in
// first-seen order. reload empties the whole cache first.
func (p *Parser) Database(ctx context.Context, reload bool) (*core.DatabaseSchema, error) {
	if reload {
		p.cache.InvalidateAll()
	}
	return p.cache.GetOrPopulateDatabase(func() (*core.DatabaseSchema, error) {
		return p.scan(ctx, "")
	})
}

// catalogQuery builds the information_schema scan, for one table or, when
// table is empty, for all base tables.
func (p *Parser) catalogQuery(table string) (string, []any) {
	q := from("information_schema.tables t").
		selecting(
			"c.column_name",
			"c.data_type",
			"c.character_maximum_length",
			"c.numeric_precision",
			"c.column_default",
			"c.is_nullable",
		).
		join("information_schema.columns c",
			"c.table_catalog = t.table_catalog",
			"c.table_schema = t.table_schema",
			"c.table_name = t.table_name",
		)

	schemaName, tableName := p.opts.Schema, table
	if i := strings.LastIndex(table, "."); i >= 0 {
		schemaName, tableName = table[:i], table[i+1:]
	}
	if schemaName != "" {
		q.filter("t.table_schema = ?", schemaName)
	} else {
		q.filter("t.table_schema = " + p.opts.CurrentSchema)
	}

	if table != "" {
		q.filter("t.table_name = ?", tableName).order("c.ordinal_position")
	} else {
		q.selecting("t.table_name").
			filter("t.table_type = 'BASE TABLE'").
			order("t.table_name", "c.ordinal_position")
	}
	return q.build(p.opts.Placeholder)
}

// scan runs exactly one catalog query. For a single table every row is
// filed under the requested name.
func (p *Parser) scan(ctx context.Context, table string) (*core.DatabaseSchema, error) {
	query, args := p.catalogQuery(table)
	p.log.Debug("querying catalog", zap.String("table", table), zap.String("query", query))

	rows, err := p.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	db := core.NewDatabaseSchema()
	if table != "" {
		db.Order = append(db.Order, table)
		db.Tables[table] = []core.ColumnSchema{}
	}
	for rows.Next() {
		var (
			name, dbType, isNullable string
			maxChars, precision      sql.NullInt64
			colDefault               sql.NullString
			owner                    string
		)
		dest := []any{&name, &dbType, &maxChars, &precision, &colDefault, &isNullable}
		if table == "" {
			dest = append(dest, &owner)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		row := p.normalize(dbType, isNullable, maxChars, precision, colDefault)
		if table == "" {
			row.Table = owner
			db.Add(owner, core.ColumnSchema{Name: name, Row: row})
		} else {
			db.Add(table, core.ColumnSchema{Name: name, Row: row})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	p.log.Debug("catalog scanned", zap.String("table", table), zap.Int("tables", len(db.Order)))
	return db, nil
}

func (p *Parser) normalize(dbType, isNullable string, maxChars, precision sql.NullInt64, colDefault sql.NullString) core.SchemaRow {
	row := core.SchemaRow{
		DBType:    dbType,
		AllowNull: isNullable == "YES",
	}
	if t, ok := p.types.CanonicalType(dbType); ok {
		row.Type = t
	}
	if colDefault.Valid && strings.TrimSpace(colDefault.String) != "" {
		def := colDefault.String
		row.Default = &def
	}
	if maxChars.Valid {
		n := maxChars.Int64
		row.MaxChars = &n
	}
	if precision.Valid {
		n := precision.Int64
		row.NumericPrecision = &n
	}
	return row
}

package introspect

import (
	"slices"

	"github.com/rzpsarthak13/schema-forge/internal/core"
)

// Cache holds parsed table schemas for one database context.
//
// Entries never expire; they change only through Put, PutDatabase,
// Invalidate and InvalidateAll. Column slices are copied on the way in and
// out. Cache is not safe for concurrent use: the owner must serialize
// access.
type Cache struct {
	tables map[string][]core.ColumnSchema

	// order is the table list of the last whole-database scan. Single-table
	// entries never join it.
	order []string

	// complete is set when tables holds a whole-database scan.
	complete bool
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{tables: make(map[string][]core.ColumnSchema)}
}

// Get returns the cached schema of table.
func (c *Cache) Get(table string) ([]core.ColumnSchema, bool) {
	cols, ok := c.tables[table]
	if !ok {
		return nil, false
	}
	return slices.Clone(cols), true
}

// Put stores the schema of table. It does not change the whole-database
// view.
func (c *Cache) Put(table string, cols []core.ColumnSchema) {
	c.tables[table] = slices.Clone(cols)
}

// Database returns the cached whole-database schema, if one was stored and
// nothing has been invalidated since.
func (c *Cache) Database() (*core.DatabaseSchema, bool) {
	if !c.complete {
		return nil, false
	}
	db := core.NewDatabaseSchema()
	for _, table := range c.order {
		db.Order = append(db.Order, table)
		db.Tables[table] = slices.Clone(c.tables[table])
	}
	return db, true
}

// PutDatabase replaces the cache content with a whole-database scan.
func (c *Cache) PutDatabase(db *core.DatabaseSchema) {
	c.InvalidateAll()
	for _, table := range db.Order {
		c.Put(table, db.Tables[table])
	}
	c.order = slices.Clone(db.Order)
	c.complete = true
}

// Invalidate drops the entry of table. The whole-database view is dropped
// too since it no longer covers every table.
func (c *Cache) Invalidate(table string) {
	delete(c.tables, table)
	c.order = nil
	c.complete = false
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.tables = make(map[string][]core.ColumnSchema)
	c.order = nil
	c.complete = false
}

// GetOrPopulateTable returns the cached schema of table or, on a miss,
// calls load once and caches its result. Errors from load are returned
// as-is and nothing is cached.
func (c *Cache) GetOrPopulateTable(table string, load func() ([]core.ColumnSchema, error)) ([]core.ColumnSchema, error) {
	if cols, ok := c.Get(table); ok {
		return cols, nil
	}
	cols, err := load()
	if err != nil {
		return nil, err
	}
	c.Put(table, cols)
	return slices.Clone(cols), nil
}

// GetOrPopulateDatabase is GetOrPopulateTable for the whole-database view.
func (c *Cache) GetOrPopulateDatabase(load func() (*core.DatabaseSchema, error)) (*core.DatabaseSchema, error) {
	if db, ok := c.Database(); ok {
		return db, nil
	}
	db, err := load()
	if err != nil {
		return nil, err
	}
	c.PutDatabase(db)
	cached, _ := c.Database()
	return cached, nil
}

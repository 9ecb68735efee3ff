package ddl

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/rzpsarthak13/schema-forge/internal/core"
)

// Dialect holds the hooks in which SQL engines differ when generating DDL
// and querying their catalog.
type Dialect struct {
	// Name is the registry key, e.g. "mysql".
	Name string

	// AutoIncrementKeyword is appended to auto-increment columns.
	AutoIncrementKeyword string

	// SupportsIndexType allows IndexSpec.Type (CREATE INDEX ... USING <type>).
	SupportsIndexType bool

	// IndexTypeAfterColumns places USING <type> after the column list
	// instead of before it.
	IndexTypeAfterColumns bool

	// SupportsPartialIndex allows IndexSpec.Where.
	SupportsPartialIndex bool

	// DropIndexOnTable renders DROP INDEX <name> ON <table>.
	DropIndexOnTable bool

	// TypeOverrides replaces the generic literal of selected canonical types.
	TypeOverrides map[core.Type]string

	// CurrentSchema is the SQL expression naming the connection's schema.
	CurrentSchema string

	// Placeholder returns the bind parameter marker for the n-th (1-based) argument.
	Placeholder func(n int) string
}

func questionMark(int) string { return "?" }

func dollar(n int) string { return "$" + strconv.Itoa(n) }

var (
	// Generic is the reference dialect. It supports neither index types nor
	// partial indexes.
	Generic = &Dialect{
		Name:                 "generic",
		AutoIncrementKeyword: "AUTOINCREMENT",
		CurrentSchema:        "current_schema()",
		Placeholder:          questionMark,
	}

	MySQL = &Dialect{
		Name:                  "mysql",
		AutoIncrementKeyword:  "AUTO_INCREMENT",
		SupportsIndexType:     true,
		IndexTypeAfterColumns: true,
		DropIndexOnTable:      true,
		TypeOverrides: map[core.Type]string{
			core.TypeDateTime: "datetime",
			core.TypeDouble:   "double",
			core.TypeDecimal:  "decimal",
			core.TypeFloat:    "float",
		},
		CurrentSchema: "DATABASE()",
		Placeholder:   questionMark,
	}

	Postgres = &Dialect{
		Name:                 "postgres",
		AutoIncrementKeyword: "GENERATED BY DEFAULT AS IDENTITY",
		SupportsIndexType:    true,
		SupportsPartialIndex: true,
		TypeOverrides: map[core.Type]string{
			core.TypeBlob: "bytea",
		},
		CurrentSchema: "current_schema()",
		Placeholder:   dollar,
	}
)

var (
	// dialectRegistry stores all registered dialects by name.
	dialectRegistry = make(map[string]*Dialect)

	// dialectRegistryMutex protects the registry from concurrent access.
	dialectRegistryMutex sync.RWMutex
)

func init() {
	RegisterDialect(Generic)
	RegisterDialect(MySQL)
	RegisterDialect(Postgres)
}

// RegisterDialect registers a dialect under its name.
// Panics if the dialect is nil, unnamed, or already registered.
func RegisterDialect(d *Dialect) {
	if d == nil {
		panic("dialect cannot be nil")
	}
	if d.Name == "" {
		panic("dialect name cannot be empty")
	}

	dialectRegistryMutex.Lock()
	defer dialectRegistryMutex.Unlock()

	if _, exists := dialectRegistry[d.Name]; exists {
		panic(fmt.Sprintf("dialect %q is already registered", d.Name))
	}
	dialectRegistry[d.Name] = d
}

// LookupDialect returns the dialect registered under name. "postgresql" is
// accepted as an alias of "postgres".
func LookupDialect(name string) (*Dialect, error) {
	if name == "postgresql" {
		name = Postgres.Name
	}

	dialectRegistryMutex.RLock()
	d, exists := dialectRegistry[name]
	dialectRegistryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported dialect: %s", name)
	}
	return d, nil
}

// RegisteredDialects returns the names of all registered dialects, sorted.
func RegisteredDialects() []string {
	dialectRegistryMutex.RLock()
	defer dialectRegistryMutex.RUnlock()

	names := make([]string, 0, len(dialectRegistry))
	for name := range dialectRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

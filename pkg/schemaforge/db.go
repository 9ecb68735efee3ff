package schemaforge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rzpsarthak13/schema-forge/internal/config"
	"github.com/rzpsarthak13/schema-forge/internal/database"
	"github.com/rzpsarthak13/schema-forge/internal/ddl"
	"github.com/rzpsarthak13/schema-forge/internal/introspect"
	"github.com/rzpsarthak13/schema-forge/internal/logging"
	"github.com/rzpsarthak13/schema-forge/internal/publish"
	"github.com/rzpsarthak13/schema-forge/internal/snapshot"
)

// ErrPublishDisabled is returned by Publish when publish.enabled is false.
var ErrPublishDisabled = errors.New("publishing is disabled")

// DB bundles schema introspection against a live database with the
// snapshot store and DDL publisher configured next to it.
//
// Lookups share one cache. A DB must not be used from several goroutines at
// once.
type DB struct {
	conn      *database.Database
	parser    *introspect.Parser
	gen       *Generator
	dialect   string
	store     snapshot.Store
	snapshots *snapshot.Snapshotter
	publisher *publish.Publisher
	log       *zap.Logger

	closeOnce sync.Once
}

// Open connects to the database in cfg.Database and builds the configured
// snapshot store and publisher.
func Open(cfg *Config, logger *zap.Logger) (*DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	conn, err := database.Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	db, err := newDB(conn, conn, cfg, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// New builds a DB on top of an existing Querier, such as a *sql.DB. The
// querier is not closed by Close.
func New(q Querier, cfg *Config, logger *zap.Logger) (*DB, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	return newDB(nil, q, cfg, logger)
}

func newDB(conn *database.Database, q Querier, cfg *Config, logger *zap.Logger) (*DB, error) {
	logger = logging.OrNop(logger)

	d, err := ddl.LookupDialect(cfg.DialectName())
	if err != nil {
		return nil, err
	}
	gen, err := NewGenerator(d.Name)
	if err != nil {
		return nil, err
	}

	store, err := snapshot.Create(cfg.Snapshot, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot store: %w", err)
	}

	var pub *publish.Publisher
	if cfg.Publish.Enabled {
		pub, err = publish.NewKafkaPublisher(cfg.Publish.Kafka, logger)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to create publisher: %w", err)
		}
	}

	parser := introspect.NewParser(q, introspect.Options{
		Schema:               cfg.Introspection.Schema,
		CurrentSchema:        d.CurrentSchema,
		Placeholder:          d.Placeholder,
		ConvertTinyintToBool: cfg.Introspection.ConvertTinyintToBool,
		Logger:               logger,
	})

	return &DB{
		conn:      conn,
		parser:    parser,
		gen:       gen,
		dialect:   d.Name,
		store:     store,
		snapshots: snapshot.NewSnapshotter(store, cfg.Snapshot.Namespace, logger),
		publisher: pub,
		log:       logger.Named("db").With(zap.String("dialect", d.Name)),
	}, nil
}

// Generator returns the DDL generator for the configured dialect.
func (db *DB) Generator() *Generator {
	return db.gen
}

// Schema returns the columns of table. reload bypasses and refreshes the
// cache entry.
func (db *DB) Schema(ctx context.Context, table string, reload bool) ([]ColumnSchema, error) {
	return db.parser.Table(ctx, table, reload)
}

// DatabaseSchema returns every base table of the current schema.
func (db *DB) DatabaseSchema(ctx context.Context, reload bool) (*DatabaseSchema, error) {
	return db.parser.Database(ctx, reload)
}

// InvalidateSchema drops the cached columns of table. An empty table drops
// everything.
func (db *DB) InvalidateSchema(table string) {
	if table == "" {
		db.parser.Cache().InvalidateAll()
		return
	}
	db.parser.Cache().Invalidate(table)
}

// SaveSnapshot introspects the whole database and writes it to the
// snapshot store.
func (db *DB) SaveSnapshot(ctx context.Context, reload bool) (*DatabaseSchema, error) {
	schema, err := db.parser.Database(ctx, reload)
	if err != nil {
		return nil, err
	}
	if err := db.snapshots.Save(ctx, schema); err != nil {
		return nil, err
	}
	return schema, nil
}

// LoadSnapshot reads the stored columns of table.
func (db *DB) LoadSnapshot(ctx context.Context, table string) ([]ColumnSchema, error) {
	return db.snapshots.Load(ctx, table)
}

// Plan returns the statements that bring the live table to doc: the CREATE
// TABLE list when the table does not exist yet, otherwise the column
// changes. The table is always read fresh from the catalog.
func (db *DB) Plan(ctx context.Context, doc *TableDocument) ([]string, error) {
	cols, idxs, err := doc.Specs()
	if err != nil {
		return nil, err
	}
	current, err := db.parser.Table(ctx, doc.Name, true)
	if err != nil {
		return nil, err
	}
	if len(current) == 0 {
		return db.gen.CreateTableSQLList(doc.Name, cols, idxs)
	}
	ops := db.gen.PlanColumns(current, cols)
	db.log.Debug("planned table changes", zap.String("table", doc.Name), zap.Int("operations", len(ops)))
	return db.gen.AlterTableSQLList(doc.Name, ops)
}

// Publish sends statements generated for table to the configured topic.
func (db *DB) Publish(ctx context.Context, table string, statements []string) error {
	if db.publisher == nil {
		return ErrPublishDisabled
	}
	return db.publisher.Publish(ctx, Batch{
		Table:      table,
		Dialect:    db.dialect,
		Statements: statements,
	})
}

// Close releases the publisher, the snapshot store and the connection opened
// by Open.
func (db *DB) Close() error {
	var errs []error
	db.closeOnce.Do(func() {
		if db.publisher != nil {
			if err := db.publisher.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := db.store.Close(); err != nil {
			errs = append(errs, err)
		}
		if db.conn != nil {
			if err := db.conn.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

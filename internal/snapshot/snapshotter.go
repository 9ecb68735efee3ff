package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rzpsarthak13/schema-forge/internal/core"
	"github.com/rzpsarthak13/schema-forge/internal/logging"
)

// Snapshotter writes introspected schemas to a Store under a namespace.
//
// Layout:
//
//	{namespace}:schema          JSON array of table names, in catalog order
//	{namespace}:schema:{table}  JSON array of core.ColumnSchema
type Snapshotter struct {
	store     Store
	namespace string
	log       *zap.Logger
}

// NewSnapshotter returns a Snapshotter writing to store.
func NewSnapshotter(store Store, namespace string, logger *zap.Logger) *Snapshotter {
	return &Snapshotter{
		store:     store,
		namespace: namespace,
		log:       logging.OrNop(logger).Named("snapshot"),
	}
}

// TableKey returns the key holding the columns of table.
func (s *Snapshotter) TableKey(table string) string {
	return s.IndexKey() + ":" + table
}

// IndexKey returns the key holding the table list.
func (s *Snapshotter) IndexKey() string {
	return s.namespace + ":schema"
}

// Save writes every table of db and then the table list. Tables that were in
// the previous list but are missing from db are deleted.
func (s *Snapshotter) Save(ctx context.Context, db *core.DatabaseSchema) error {
	previous, err := s.Tables(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	for _, table := range db.Order {
		if err := s.SaveTable(ctx, table, db.Tables[table]); err != nil {
			return err
		}
	}

	current := make(map[string]struct{}, len(db.Order))
	for _, table := range db.Order {
		current[table] = struct{}{}
	}
	for _, table := range previous {
		if _, ok := current[table]; ok {
			continue
		}
		if err := s.store.Delete(ctx, s.TableKey(table)); err != nil {
			return fmt.Errorf("failed to delete snapshot of %s: %w", table, err)
		}
		s.log.Info("removed stale table snapshot", zap.String("table", table))
	}

	order := db.Order
	if order == nil {
		order = []string{}
	}
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal table list: %w", err)
	}
	if err := s.store.Set(ctx, s.IndexKey(), data); err != nil {
		return fmt.Errorf("failed to store table list: %w", err)
	}
	s.log.Info("saved schema snapshot", zap.Int("tables", len(order)))
	return nil
}

// SaveTable writes the columns of a single table.
func (s *Snapshotter) SaveTable(ctx context.Context, table string, cols []core.ColumnSchema) error {
	if cols == nil {
		cols = []core.ColumnSchema{}
	}
	data, err := json.Marshal(cols)
	if err != nil {
		return fmt.Errorf("failed to marshal schema of %s: %w", table, err)
	}
	if err := s.store.Set(ctx, s.TableKey(table), data); err != nil {
		return fmt.Errorf("failed to store schema of %s: %w", table, err)
	}
	return nil
}

// Load reads the stored columns of table. A missing snapshot yields
// ErrNotFound.
func (s *Snapshotter) Load(ctx context.Context, table string) ([]core.ColumnSchema, error) {
	data, err := s.store.Get(ctx, s.TableKey(table))
	if err != nil {
		return nil, err
	}
	var cols []core.ColumnSchema
	if err := json.Unmarshal(data, &cols); err != nil {
		return nil, fmt.Errorf("failed to decode schema of %s: %w", table, err)
	}
	return cols, nil
}

// Tables reads the stored table list.
func (s *Snapshotter) Tables(ctx context.Context) ([]string, error) {
	data, err := s.store.Get(ctx, s.IndexKey())
	if err != nil {
		return nil, err
	}
	var tables []string
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("failed to decode table list: %w", err)
	}
	return tables, nil
}

// LoadDatabase reads every table named in the stored table list.
func (s *Snapshotter) LoadDatabase(ctx context.Context) (*core.DatabaseSchema, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return nil, err
	}
	db := core.NewDatabaseSchema()
	for _, table := range tables {
		cols, err := s.Load(ctx, table)
		if err != nil {
			return nil, err
		}
		db.Order = append(db.Order, table)
		db.Tables[table] = cols
	}
	return db, nil
}

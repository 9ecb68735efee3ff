package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/rzpsarthak13/schema-forge/internal/logging"
	"github.com/rzpsarthak13/schema-forge/internal/publish"
	"github.com/rzpsarthak13/schema-forge/pkg/schemaforge"
)

// load reads the configuration and applies flag overrides.
func (g *Globals) load() (*schemaforge.Config, error) {
	cfg, err := schemaforge.LoadConfig(g.Config)
	if err != nil {
		return nil, err
	}
	if g.Dialect != "" {
		cfg.Dialect = g.Dialect
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	return cfg, nil
}

func (g *Globals) generator(cfg *schemaforge.Config) (*schemaforge.Generator, error) {
	return schemaforge.NewGenerator(cfg.DialectName())
}

func printStatements(w io.Writer, statements []string) error {
	for _, stmt := range statements {
		if _, err := fmt.Fprintf(w, "%s;\n", stmt); err != nil {
			return err
		}
	}
	return nil
}

// InspectCmd prints the schema of one table, or of every base table.
type InspectCmd struct {
	Table  string `arg:"" optional:"" help:"Table to inspect; all base tables when omitted"`
	Reload bool   `help:"Bypass the schema cache"`
	Save   bool   `help:"Write the whole-database schema to the snapshot store"`
}

func (c *InspectCmd) Run(g *Globals, ctx context.Context, kctx *kong.Context) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := schemaforge.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	var out any
	switch {
	case c.Save:
		schema, err := db.SaveSnapshot(ctx, c.Reload)
		if err != nil {
			return err
		}
		logger.Info("snapshot saved", zap.Int("tables", len(schema.Order)))
		out = schema
		if c.Table != "" {
			out = schema.Tables[c.Table]
		}
	case c.Table != "":
		out, err = db.Schema(ctx, c.Table, c.Reload)
	default:
		out, err = db.DatabaseSchema(ctx, c.Reload)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(kctx.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// CreateTableCmd renders a table document.
type CreateTableCmd struct {
	File string `arg:"" help:"Table document (YAML)" type:"existingfile"`
}

func (c *CreateTableCmd) Run(g *Globals, kctx *kong.Context) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	gen, err := g.generator(cfg)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}
	doc, err := schemaforge.ParseTableDocument(data)
	if err != nil {
		return err
	}
	stmts, err := doc.CreateTableSQLList(gen)
	if err != nil {
		return err
	}
	return printStatements(kctx.Stdout, stmts)
}

// AlterCmd renders an alter document and optionally publishes the batch.
type AlterCmd struct {
	File    string `arg:"" help:"Alter document (YAML)" type:"existingfile"`
	Publish bool   `help:"Send the generated statements to the configured Kafka topic"`
}

func (c *AlterCmd) Run(g *Globals, ctx context.Context, kctx *kong.Context) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	gen, err := g.generator(cfg)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}
	doc, err := schemaforge.ParseAlterDocument(data)
	if err != nil {
		return err
	}
	stmts, err := doc.AlterTableSQLList(gen)
	if err != nil {
		return err
	}
	if err := printStatements(kctx.Stdout, stmts); err != nil {
		return err
	}
	if !c.Publish {
		return nil
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	pub, err := publish.NewKafkaPublisher(cfg.Publish.Kafka, logger)
	if err != nil {
		return err
	}
	defer pub.Close()
	return pub.Publish(ctx, schemaforge.Batch{
		Table:      doc.Table,
		Dialect:    gen.Dialect().Name,
		Statements: stmts,
	})
}

// PlanCmd diffs a table document against the database.
type PlanCmd struct {
	File    string `arg:"" help:"Table document (YAML)" type:"existingfile"`
	Publish bool   `help:"Send the planned statements to the configured Kafka topic"`
}

func (c *PlanCmd) Run(g *Globals, ctx context.Context, kctx *kong.Context) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.Publish {
		cfg.Publish.Enabled = true
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}
	doc, err := schemaforge.ParseTableDocument(data)
	if err != nil {
		return err
	}

	db, err := schemaforge.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	stmts, err := db.Plan(ctx, doc)
	if err != nil {
		return err
	}
	if len(stmts) == 0 {
		logger.Info("table is up to date", zap.String("table", doc.Name))
		return nil
	}
	if err := printStatements(kctx.Stdout, stmts); err != nil {
		return err
	}
	if c.Publish {
		return db.Publish(ctx, doc.Name, stmts)
	}
	return nil
}

// DropTableCmd renders DROP TABLE.
type DropTableCmd struct {
	Table string `arg:"" help:"Table to drop"`
}

func (c *DropTableCmd) Run(g *Globals, kctx *kong.Context) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	gen, err := g.generator(cfg)
	if err != nil {
		return err
	}
	return printStatements(kctx.Stdout, []string{gen.DropTableSQL(c.Table)})
}

// RenameTableCmd renders a table rename.
type RenameTableCmd struct {
	Table   string `arg:"" help:"Current table name"`
	NewName string `arg:"" help:"New table name"`
}

func (c *RenameTableCmd) Run(g *Globals, kctx *kong.Context) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	gen, err := g.generator(cfg)
	if err != nil {
		return err
	}
	return printStatements(kctx.Stdout, []string{gen.RenameTableSQL(c.Table, c.NewName)})
}

// DialectsCmd lists the registered dialects.
type DialectsCmd struct{}

func (c *DialectsCmd) Run(kctx *kong.Context) error {
	for _, name := range schemaforge.Dialects() {
		fmt.Fprintln(kctx.Stdout, name)
	}
	return nil
}

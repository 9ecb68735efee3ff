// Command schema-forge generates DDL from YAML table documents and inspects
// live database schemas.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

// CLI defines the command-line interface for schema-forge.
type CLI struct {
	Globals

	Inspect     InspectCmd     `cmd:"" help:"Read table schemas from the database and print them as JSON"`
	CreateTable CreateTableCmd `cmd:"" name:"create-table" help:"Generate CREATE TABLE and CREATE INDEX statements from a table document"`
	Alter       AlterCmd       `cmd:"" help:"Generate ALTER TABLE statements from an alter document"`
	DropTable   DropTableCmd   `cmd:"" name:"drop-table" help:"Generate a DROP TABLE statement"`
	RenameTable RenameTableCmd `cmd:"" name:"rename-table" help:"Generate a table rename statement"`
	Plan        PlanCmd        `cmd:"" help:"Compare a table document with the live table and print the statements that reconcile them"`
	Dialects    DialectsCmd    `cmd:"" help:"List supported dialects"`
}

// Globals are flags shared by every command.
type Globals struct {
	Config   string `name:"config" short:"c" help:"Path to a YAML or JSON config file" type:"path"`
	Dialect  string `name:"dialect" short:"d" help:"DDL dialect, overrides the config (generic, mysql, postgres)"`
	LogLevel string `name:"log-level" help:"Log level, overrides the config (debug, info, warn, error)"`
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("schema-forge"),
		kong.Description("Dialect aware DDL generation and information_schema introspection"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cli CLI
	parser, err := newParser(&cli, kong.BindTo(ctx, (*context.Context)(nil)))
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = kctx.Run(&cli.Globals)
	kctx.FatalIfErrorf(err)
}

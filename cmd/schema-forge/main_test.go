package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var cli CLI
	var out bytes.Buffer
	parser, err := newParser(&cli,
		kong.Writers(&out, &out),
		kong.Exit(func(int) { t.Fatalf("unexpected exit: %s", out.String()) }),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	err = kctx.Run(&cli.Globals)
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCreateTable(t *testing.T) {
	path := writeFile(t, "users.yaml", `
name: users
columns:
  - name: id
    type: integer
    primary_key: true
    auto_increment: true
  - name: email
    type: varchar
    nullable: false
indexes:
  - columns: [email]
    unique: true
`)
	out, err := run(t, "--dialect", "mysql", "create-table", path)
	require.NoError(t, err)
	require.Equal(t,
		"CREATE TABLE `users` (`id` integer PRIMARY KEY AUTO_INCREMENT, `email` varchar(255) NOT NULL);\n"+
			"CREATE UNIQUE INDEX `users_email_index` ON `users` (`email`);\n",
		out)
}

func TestAlter(t *testing.T) {
	path := writeFile(t, "alter.yaml", `
table: users
operations:
  - kind: add_column
    column: {name: age, type: integer}
  - kind: drop_index
    columns: [email]
`)
	out, err := run(t, "--dialect", "postgres", "alter", path)
	require.NoError(t, err)
	require.Equal(t,
		"ALTER TABLE \"users\" ADD COLUMN \"age\" integer;\n"+
			"DROP INDEX \"users_email_index\";\n",
		out)
}

func TestAlterUnsupportedKind(t *testing.T) {
	path := writeFile(t, "alter.yaml", "table: users\noperations:\n  - kind: vacuum\n")
	out, err := run(t, "alter", path)
	require.ErrorContains(t, err, "unsupported alter table operation")
	require.Empty(t, out)
}

func TestDropAndRenameTable(t *testing.T) {
	out, err := run(t, "--dialect", "generic", "drop-table", "billing.invoices")
	require.NoError(t, err)
	require.Equal(t, "DROP TABLE \"billing\".\"invoices\";\n", out)

	out, err = run(t, "rename-table", "users", "members")
	require.NoError(t, err)
	require.Equal(t, "ALTER TABLE \"users\" RENAME TO \"members\";\n", out)
}

func TestUnknownDialect(t *testing.T) {
	_, err := run(t, "--dialect", "sybase", "drop-table", "users")
	require.ErrorContains(t, err, "unsupported dialect: sybase")
}

func TestDialects(t *testing.T) {
	out, err := run(t, "dialects")
	require.NoError(t, err)
	require.Equal(t, "generic\nmysql\npostgres\n", out)
}

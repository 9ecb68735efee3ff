package schemaforge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const usersDocument = `
name: app.users
columns:
  - name: id
    type: integer
    primary_key: true
    auto_increment: true
  - name: email
    type: varchar
    size: 120
    nullable: false
    unique: true
  - name: nickname
    type: string
    default: null
  - name: status
    type: string
    size: 16
    default: active
  - name: created_at
    type: datetime
    default: {raw: CURRENT_TIMESTAMP}
  - name: account_id
    type: bigint
    references: {table: accounts, columns: [id], on_delete: cascade}
  - name: positive_age
    type: check
    check: age > 0
indexes:
  - columns: [email]
    unique: true
  - columns: [created_at]
    where: deleted_at IS NULL
`

func TestTableDocumentPostgres(t *testing.T) {
	doc, err := ParseTableDocument([]byte(usersDocument))
	require.NoError(t, err)

	gen, err := NewGenerator("postgres")
	require.NoError(t, err)

	stmts, err := doc.CreateTableSQLList(gen)
	require.NoError(t, err)
	require.Equal(t, []string{
		`CREATE TABLE "app"."users" (` +
			`"id" integer PRIMARY KEY GENERATED BY DEFAULT AS IDENTITY, ` +
			`"email" varchar(120) UNIQUE NOT NULL, ` +
			`"nickname" varchar(255) DEFAULT NULL, ` +
			`"status" varchar(16) DEFAULT 'active', ` +
			`"created_at" timestamp DEFAULT CURRENT_TIMESTAMP, ` +
			`"account_id" bigint REFERENCES "accounts"("id") ON DELETE CASCADE, ` +
			`CONSTRAINT "positive_age" CHECK (age > 0))`,
		`CREATE UNIQUE INDEX "app_users_email_index" ON "app"."users" ("email")`,
		`CREATE INDEX "app_users_created_at_index" ON "app"."users" ("created_at") WHERE deleted_at IS NULL`,
	}, stmts)
}

func TestTableDocumentDefaultPresence(t *testing.T) {
	doc, err := ParseTableDocument([]byte(usersDocument))
	require.NoError(t, err)

	cols, _, err := doc.Specs()
	require.NoError(t, err)
	require.Nil(t, cols[0].Default, "omitted default stays absent")
	require.NotNil(t, cols[2].Default, "explicit null is a present default")
	require.Nil(t, cols[2].Default.Value)
	require.Equal(t, NotNull, cols[1].Nullable)
	require.Equal(t, NullUnset, cols[0].Nullable)
}

func TestTableDocumentPartialIndexOnGeneric(t *testing.T) {
	doc, err := ParseTableDocument([]byte(usersDocument))
	require.NoError(t, err)

	gen, err := NewGenerator("generic")
	require.NoError(t, err)

	stmts, err := doc.CreateTableSQLList(gen)
	require.ErrorIs(t, err, ErrUnsupportedFeature)
	require.Nil(t, stmts)
}

func TestParseTableDocumentErrors(t *testing.T) {
	_, err := ParseTableDocument([]byte(``))
	require.ErrorContains(t, err, "document is empty")

	_, err = ParseTableDocument([]byte("columns: []\n"))
	require.ErrorContains(t, err, "name is required")

	_, err = ParseTableDocument([]byte("name: t\ncolour: blue\n"))
	require.ErrorContains(t, err, "colour")

	doc, err := ParseTableDocument([]byte("name: t\ncolumns:\n  - name: a\n"))
	require.NoError(t, err)
	_, _, err = doc.Specs()
	require.ErrorIs(t, err, ErrInvalidDefinition)
	require.ErrorContains(t, err, "column a has no type")
}

const alterDocument = `
table: users
operations:
  - kind: add_column
    column: {name: age, type: integer, nullable: true}
  - kind: drop_column
    name: legacy
  - kind: rename_column
    name: email
    new_name: email_address
  - kind: set_column_type
    name: score
    type: decimal
    size: 10
  - kind: set_column_default
    name: status
    default: pending
  - kind: set_column_default
    name: nickname
    default: null
  - kind: add_index
    index: {columns: [age], type: btree}
  - kind: drop_index
    columns: [age]
  - kind: add_constraint
    constraint: {name: users_age_check, type: check, check: age >= 0}
  - kind: drop_constraint
    name: users_age_check
`

func TestAlterDocumentMySQL(t *testing.T) {
	doc, err := ParseAlterDocument([]byte(alterDocument))
	require.NoError(t, err)

	gen, err := NewGenerator("mysql")
	require.NoError(t, err)

	stmts, err := doc.AlterTableSQLList(gen)
	require.NoError(t, err)
	require.Equal(t, []string{
		"ALTER TABLE `users` ADD COLUMN `age` integer NULL",
		"ALTER TABLE `users` DROP COLUMN `legacy`",
		"ALTER TABLE `users` RENAME COLUMN `email` TO `email_address`",
		"ALTER TABLE `users` ALTER COLUMN `score` TYPE decimal(10)",
		"ALTER TABLE `users` ALTER COLUMN `status` SET DEFAULT 'pending'",
		"ALTER TABLE `users` ALTER COLUMN `nickname` SET DEFAULT NULL",
		"CREATE INDEX `users_age_index` ON `users` USING btree (`age`)",
		"DROP INDEX `users_age_index` ON `users`",
		"ALTER TABLE `users` ADD CONSTRAINT `users_age_check` CHECK (age >= 0)",
		"ALTER TABLE `users` DROP CONSTRAINT `users_age_check`",
	}, stmts)
}

func TestAlterDocumentUnknownKind(t *testing.T) {
	doc, err := ParseAlterDocument([]byte("table: users\noperations:\n  - kind: truncate\n"))
	require.NoError(t, err)

	gen, err := NewGenerator("generic")
	require.NoError(t, err)

	stmts, err := doc.AlterTableSQLList(gen)
	require.ErrorIs(t, err, ErrUnsupportedOperation)
	require.Nil(t, stmts)
}

func TestAlterDocumentMissingPayload(t *testing.T) {
	doc, err := ParseAlterDocument([]byte("table: users\noperations:\n  - kind: add_index\n"))
	require.NoError(t, err)
	_, err = doc.AlterOperations()
	require.ErrorContains(t, err, "operation 0: add_index: index is required")
}

package table

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestSelectCustomersQuery(t *testing.T) {
	require.Equal(t,
		"SELECT [id], [name], [email], [created_at], [is_active], [notes] FROM [dbo].[customers] ORDER BY [id]",
		SelectCustomersQuery(DialectSQLServer, "dbo.customers"),
	)
	require.Equal(t,
		"SELECT `id`, `name`, `email`, `created_at`, `is_active`, `notes` FROM `customers` ORDER BY `id`",
		SelectCustomersQuery(DialectMySQL, "customers"),
	)
	require.Equal(t,
		`SELECT "id", "name", "email", "created_at", "is_active", "notes" FROM "public"."customers" ORDER BY "id"`,
		SelectCustomersQuery(DialectPostgres, "public.customers"),
	)
}

func TestInsertCustomersQuery(t *testing.T) {
	require.Equal(t,
		`INSERT INTO "customers" ("id", "name", "email", "created_at", "is_active", "notes") VALUES ($1, $2, $3, $4, $5, $6), ($7, $8, $9, $10, $11, $12)`,
		InsertCustomersQuery(DialectPostgres, "customers", 2),
	)
	require.Equal(t,
		"INSERT INTO `customers` (`id`, `name`, `email`, `created_at`, `is_active`, `notes`) VALUES (?, ?, ?, ?, ?, ?)",
		InsertCustomersQuery(DialectMySQL, "customers", 1),
	)
}

func TestDialect(t *testing.T) {
	require.Equal(t, "@p3", DialectSQLServer.Placeholder(3))
	require.Equal(t, "?", DialectMySQL.Placeholder(3))
	require.Equal(t, "$3", DialectPostgres.Placeholder(3))
	require.Equal(t, `"we""ird"`, DialectPostgres.Quote(`we"ird`))
	require.Equal(t, "[a]]b]", DialectSQLServer.Quote("a]b"))

	schema, name := SplitName("dbo.customers")
	require.Equal(t, "dbo", schema)
	require.Equal(t, "customers", name)
	schema, name = SplitName("customers")
	require.Empty(t, schema)
	require.Equal(t, "customers", name)
}

func TestScanCustomers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t1 := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	t2 := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(SelectCustomersQuery(DialectSQLServer, "dbo.customers"))).
		WillReturnRows(sqlmock.NewRows(Columns).
			AddRow(int64(1), "Alice", "a@x.com", t1, true, nil).
			AddRow(int64(2), "Bob", "b@x.com", t2, false, "note"),
		)

	rows, err := db.Query(SelectCustomersQuery(DialectSQLServer, "dbo.customers"))
	require.NoError(t, err)

	recs, err := ScanCustomers(rows)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	require.Equal(t, CustomerRecord{ID: 1, Name: "Alice", Email: "a@x.com", CreatedAt: t1, IsActive: true}, recs[0])
	require.Equal(t, int64(2), recs[1].ID)
	require.False(t, recs[1].IsActive)
	require.NotNil(t, recs[1].Notes)
	require.Equal(t, "note", *recs[1].Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScanCustomersRowError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows(Columns).
			AddRow(int64(1), "Alice", "a@x.com", time.Now(), true, nil).
			RowError(0, errBroken),
		)

	rows, err := db.Query("SELECT 1")
	require.NoError(t, err)

	_, err = ScanCustomers(rows)
	require.ErrorIs(t, err, errBroken)
}

func TestCustomerValues(t *testing.T) {
	note := "note"
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	require.Equal(t,
		[]interface{}{int64(2), "Bob", "b@x.com", created, false, "note"},
		CustomerRecord{ID: 2, Name: "Bob", Email: "b@x.com", CreatedAt: created, Notes: &note}.Values(),
	)
	require.Nil(t, CustomerRecord{ID: 1}.Values()[5])
}

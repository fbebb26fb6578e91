package table

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// CustomerRecord : one row of the customers table
type CustomerRecord struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
	IsActive  bool
	Notes     *string
}

// Columns : customers columns in select / insert order
var Columns = []string{"id", "name", "email", "created_at", "is_active", "notes"}

// postgres accepts at most 65535 bind parameters per statement
const postgresMaxBindParams = 65535

// MaxInsertRows : largest row count InsertCustomersQuery can bind in one statement
var MaxInsertRows = postgresMaxBindParams / len(Columns)

// customer column types as they are written to the transport file
var customerFileTypes = map[string]string{
	"id":         "INT64",
	"name":       "UTF8",
	"email":      "UTF8",
	"created_at": "TIMESTAMP_MICROS",
	"is_active":  "BOOLEAN",
	"notes":      "UTF8",
}

// CustomerInfo : table info of the customers table as it travels through the transport file
func CustomerInfo(tableName string) *Info {
	schema, name := SplitName(tableName)
	return &Info{
		TableName:    name,
		DatabaseName: schema,
		Schema: lo.Map(Columns, func(col string, _ int) *ColumnTypes {
			return &ColumnTypes{ColumnName: col, Type: customerFileTypes[col]}
		}),
	}
}

// SelectCustomersQuery : deterministic read of the customers table ordered by primary key
func SelectCustomersQuery(d Dialect, tableName string) string {
	cols := lo.Map(Columns, func(col string, _ int) string { return d.Quote(col) })
	return fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s`, strings.Join(cols, ", "), d.Quote(tableName), d.Quote("id"))
}

// InsertCustomersQuery : multi row insert of rowCount customers, bind values come from Values()
func InsertCustomersQuery(d Dialect, tableName string, rowCount int) string {
	cols := lo.Map(Columns, func(col string, _ int) string { return d.Quote(col) })
	tuples := make([]string, rowCount)
	n := 0
	for i := range tuples {
		ph := make([]string, len(Columns))
		for j := range ph {
			n++
			ph[j] = d.Placeholder(n)
		}
		tuples[i] = "(" + strings.Join(ph, ", ") + ")"
	}
	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES %s`, d.Quote(tableName), strings.Join(cols, ", "), strings.Join(tuples, ", "))
}

// ScanCustomers : materializes the full result set, rows are closed before returning
func ScanCustomers(rows *sql.Rows) ([]CustomerRecord, error) {
	defer rows.Close()

	var res []CustomerRecord
	for rows.Next() {
		var (
			rec   CustomerRecord
			notes sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.CreatedAt, &rec.IsActive, &notes); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		if notes.Valid {
			rec.Notes = &notes.String
		}
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Values : record fields in Columns order, ready to be bound to an insert
func (c CustomerRecord) Values() []interface{} {
	var notes interface{}
	if c.Notes != nil {
		notes = *c.Notes
	}
	return []interface{}{c.ID, c.Name, c.Email, c.CreatedAt, c.IsActive, notes}
}

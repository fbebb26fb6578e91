package table

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/baderkha/custmig/pkg/migrate/table/colmap"
)

var ErrTableNotFound = errors.New("table has no columns or does not exist")

var _ InfoFetcher = (*InfoFetcherSQL)(nil)

// NewInfoFetcherSQL : inspects tables through INFORMATION_SCHEMA, shared by sql server and mysql.
// defaultSchema is used for unqualified table names (dbo on sql server, the database on mysql).
func NewInfoFetcherSQL(db *sql.DB, d Dialect, defaultSchema string) *InfoFetcherSQL {
	return &InfoFetcherSQL{
		source:        db,
		dialect:       d,
		defaultSchema: defaultSchema,
	}
}

type InfoFetcherSQL struct {
	source        *sql.DB
	dialect       Dialect
	defaultSchema string
}

func (m *InfoFetcherSQL) Get(ctx context.Context, tableName string) (*Info, error) {
	var (
		rowCount   int64
		schema, tb = SplitName(tableName)
	)
	if schema == "" {
		schema = m.defaultSchema
	}

	schma, err := m.GetTableInfo(ctx, schema, tb)
	if err != nil {
		return nil, err
	}
	if len(schma) == 0 {
		return nil, fmt.Errorf("%s.%s: %w", schema, tb, ErrTableNotFound)
	}
	err = m.source.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, m.dialect.Quote(tableName))).Scan(&rowCount)
	if err != nil {
		return nil, err
	}

	return &Info{
		TableName:    tb,
		DatabaseName: schema,
		Schema:       schma,
		RowCount:     rowCount,
	}, nil
}

func (m *InfoFetcherSQL) GetTableInfo(ctx context.Context, schema string, table string) ([]*ColumnTypes, error) {
	var res []*ColumnTypes
	rows, err := m.source.QueryContext(ctx, fmt.Sprintf(`SELECT COLUMN_NAME AS col_name, DATA_TYPE AS col_type
	FROM INFORMATION_SCHEMA.COLUMNS
	WHERE TABLE_SCHEMA = %s AND TABLE_NAME = %s
	ORDER BY ORDINAL_POSITION`, m.dialect.Placeholder(1), m.dialect.Placeholder(2)), schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ifo ColumnTypes
		if err := rows.Scan(&ifo.ColumnName, &ifo.Type); err != nil {
			return nil, err
		}
		res = append(res, &ifo)
	}
	return res, rows.Err()
}

// MysqlBooleanColumns : columns declared as tinyint(1) / bit(1), which the mysql driver reports as integers
func (m *InfoFetcherSQL) MysqlBooleanColumns(ctx context.Context, tableName string) ([]string, error) {
	schema, tb := SplitName(tableName)
	if schema == "" {
		schema = m.defaultSchema
	}
	rows, err := m.source.QueryContext(ctx, fmt.Sprintf(`SELECT COLUMN_NAME AS col_name, COLUMN_TYPE AS col_type
	FROM INFORMATION_SCHEMA.COLUMNS
	WHERE TABLE_SCHEMA = %s AND TABLE_NAME = %s
	ORDER BY ORDINAL_POSITION`, m.dialect.Placeholder(1), m.dialect.Placeholder(2)), schema, tb)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var name, colType string
		if err := rows.Scan(&name, &colType); err != nil {
			return nil, err
		}
		if colmap.IsMysqlBoolean(colType) {
			res = append(res, name)
		}
	}
	return res, rows.Err()
}

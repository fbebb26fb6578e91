package table

import (
	"database/sql"
	"fmt"
	"strings"
)

// Column : name and driver reported database type of a result column
type Column struct {
	Name         string
	DatabaseType string
}

// ResultSet : a fully materialized query result
type ResultSet struct {
	Columns []Column
	Rows    [][]interface{}
}

// ReadAll : materializes every row of rows, rows are closed before returning
func ReadAll(rows *sql.Rows) (*ResultSet, error) {
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}
	rs := &ResultSet{Columns: make([]Column, len(colTypes))}
	for i, ct := range colTypes {
		rs.Columns[i] = Column{Name: ct.Name(), DatabaseType: ct.DatabaseTypeName()}
	}

	for rows.Next() {
		values := make([]interface{}, len(colTypes))
		ptrs := make([]interface{}, len(colTypes))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

// MarkBoolean : overrides the driver type of the named columns with BOOL
func (rs *ResultSet) MarkBoolean(names []string) {
	for i := range rs.Columns {
		for _, name := range names {
			if strings.EqualFold(rs.Columns[i].Name, name) {
				rs.Columns[i].DatabaseType = "BOOL"
			}
		}
	}
}

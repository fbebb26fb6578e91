package table

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"github.com/baderkha/custmig/pkg/migrate/table/colmap"
)

type ColumnTypes struct {
	ColumnName string `db:"col_name"`
	Type       string `db:"col_type"`
	TargetType string `db:"target_type"`
}

type Info struct {
	TableName    string `db:"table_name"`
	DatabaseName string `db:"db_name"`
	Schema       []*ColumnTypes
	RowCount     int64
}

// QualifiedName : schema.table, or just the table when no schema is known
func (i *Info) QualifiedName() string {
	if i.DatabaseName == "" {
		return i.TableName
	}
	return i.DatabaseName + "." + i.TableName
}

// Column : looks up a column by case insensitive name
func (i *Info) Column(name string) (*ColumnTypes, bool) {
	return lo.Find(i.Schema, func(c *ColumnTypes) bool {
		return strings.EqualFold(c.ColumnName, name)
	})
}

type InfoFetcher interface {
	// fetches the column schema and row count of a single table
	Get(ctx context.Context, tableName string) (*Info, error)
}

// GenerateTargetCast : fills TargetType of every column, all cast failures are reported together
func GenerateTargetCast(t colmap.Type, inf *Info) (*Info, error) {
	var finalErr error
	for i := range inf.Schema {
		convertedField, err := colmap.Convert(t, inf.Schema[i].Type)
		if err != nil {
			finalErr = multierror.Append(finalErr, fmt.Errorf("Cast Error : Bad Casting for %s for column %s due to : %w", inf.QualifiedName(), inf.Schema[i].ColumnName, err))
			continue
		}
		inf.Schema[i].TargetType = convertedField
	}
	if finalErr != nil {
		return nil, finalErr
	}
	return inf, nil
}

// CreateTableQuery : CREATE TABLE IF NOT EXISTS statement from a casted info
func CreateTableQuery(d Dialect, inf *Info) string {
	defs := lo.Map(inf.Schema, func(c *ColumnTypes, _ int) string {
		return d.Quote(c.ColumnName) + " " + c.TargetType
	})
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.Quote(inf.QualifiedName()), strings.Join(defs, ", "))
}

// CheckCustomerColumns : every customers column must exist in the inspected table
func CheckCustomerColumns(inf *Info) error {
	var finalErr error
	for _, col := range Columns {
		if _, ok := inf.Column(col); !ok {
			finalErr = multierror.Append(finalErr, fmt.Errorf("%s is missing column %s", inf.QualifiedName(), col))
		}
	}
	return finalErr
}

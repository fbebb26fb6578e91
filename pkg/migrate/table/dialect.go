package table

import (
	"fmt"
	"strings"
)

// Dialect : identifier quoting and bind parameter style of a driver
type Dialect string

const (
	DialectSQLServer Dialect = "sqlserver"
	DialectMySQL     Dialect = "mysql"
	DialectPostgres  Dialect = "postgres"
)

// Quote : quotes every part of a possibly schema qualified name (dbo.customers)
func (d Dialect) Quote(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		switch d {
		case DialectSQLServer:
			parts[i] = "[" + strings.ReplaceAll(p, "]", "]]") + "]"
		case DialectMySQL:
			parts[i] = "`" + strings.ReplaceAll(p, "`", "``") + "`"
		default:
			parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
		}
	}
	return strings.Join(parts, ".")
}

// Placeholder : 1 based bind parameter
func (d Dialect) Placeholder(n int) string {
	switch d {
	case DialectSQLServer:
		return fmt.Sprintf("@p%d", n)
	case DialectMySQL:
		return "?"
	default:
		return fmt.Sprintf("$%d", n)
	}
}

// SplitName : splits schema.table, schema is empty when the name is not qualified
func SplitName(name string) (schema string, tableName string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// package colmap
//
// maps columns between different database types
package colmap

import (
	"fmt"
	"strings"
)

// Type : column mapping type
type Type string

const (
	// SQLServerToPostgres : sql server -> postgres type casting
	SQLServerToPostgres Type = "SQLSERVER_POSTGRES"
	// MysqlToPostgres : mysql -> postgres type casting
	MysqlToPostgres Type = "MYSQL_POSTGRES"
	// ParquetToPostgres : parquet (physical or converted type) -> postgres type casting
	ParquetToPostgres Type = "PARQUET_POSTGRES"
)

var (
	sqlServerToPostgresMap = map[string]string{
		"TINYINT":          "SMALLINT",
		"SMALLINT":         "SMALLINT",
		"INT":              "INTEGER",
		"BIGINT":           "BIGINT",
		"DECIMAL":          "NUMERIC",
		"NUMERIC":          "NUMERIC",
		"MONEY":            "NUMERIC(19,4)",
		"SMALLMONEY":       "NUMERIC(10,4)",
		"FLOAT":            "DOUBLE PRECISION",
		"REAL":             "REAL",
		"BIT":              "BOOLEAN",
		"DATE":             "DATE",
		"TIME":             "TIME",
		"DATETIME":         "TIMESTAMP",
		"DATETIME2":        "TIMESTAMP",
		"SMALLDATETIME":    "TIMESTAMP",
		"DATETIMEOFFSET":   "TIMESTAMPTZ",
		"CHAR":             "TEXT",
		"VARCHAR":          "TEXT",
		"NCHAR":            "TEXT",
		"NVARCHAR":         "TEXT",
		"TEXT":             "TEXT",
		"NTEXT":            "TEXT",
		"BINARY":           "BYTEA",
		"VARBINARY":        "BYTEA",
		"IMAGE":            "BYTEA",
		"UNIQUEIDENTIFIER": "UUID",
		"XML":              "XML",
	}
	mysqlToPostgresMap = map[string]string{
		"TINYINT":    "SMALLINT",
		"SMALLINT":   "SMALLINT",
		"MEDIUMINT":  "INTEGER",
		"INT":        "INTEGER",
		"BIGINT":     "BIGINT",
		"FLOAT":      "REAL",
		"DOUBLE":     "DOUBLE PRECISION",
		"DECIMAL":    "NUMERIC",
		"DATE":       "DATE",
		"TIME":       "TIME",
		"DATETIME":   "TIMESTAMP",
		"TIMESTAMP":  "TIMESTAMP",
		"YEAR":       "SMALLINT",
		"CHAR":       "TEXT",
		"VARCHAR":    "TEXT",
		"BINARY":     "BYTEA",
		"VARBINARY":  "BYTEA",
		"BLOB":       "BYTEA",
		"TEXT":       "TEXT",
		"LONGTEXT":   "TEXT",
		"MEDIUMTEXT": "TEXT",
		"ENUM":       "TEXT",
		"SET":        "TEXT",
		"JSON":       "JSONB",
		"BIT":        "BOOLEAN",
		"BOOLEAN":    "BOOLEAN",
	}
	parquetToPostgresMap = map[string]string{
		"INT32":            "INTEGER",
		"INT64":            "BIGINT",
		"FLOAT":            "REAL",
		"DOUBLE":           "DOUBLE PRECISION",
		"BOOLEAN":          "BOOLEAN",
		"UTF8":             "TEXT",
		"BYTE_ARRAY":       "BYTEA",
		"TIMESTAMP_MILLIS": "TIMESTAMP",
		"TIMESTAMP_MICROS": "TIMESTAMP",
		"DATE":             "DATE",
	}

	// database type names as reported by the drivers (sql.ColumnType.DatabaseTypeName)
	integerTypes = map[string]struct{}{
		"TINYINT":            {},
		"SMALLINT":           {},
		"MEDIUMINT":          {},
		"INT":                {},
		"INTEGER":            {},
		"BIGINT":             {},
		"INT2":               {},
		"INT4":               {},
		"INT8":               {},
		"SERIAL":             {},
		"BIGSERIAL":          {},
		"YEAR":               {},
		"UNSIGNED TINYINT":   {},
		"UNSIGNED SMALLINT":  {},
		"UNSIGNED MEDIUMINT": {},
		"UNSIGNED INT":       {},
		"UNSIGNED BIGINT":    {},
	}
	fractionalTypes = map[string]struct{}{
		"DECIMAL":          {},
		"NUMERIC":          {},
		"MONEY":            {},
		"SMALLMONEY":       {},
		"FLOAT":            {},
		"REAL":             {},
		"DOUBLE":           {},
		"DOUBLE PRECISION": {},
		"FLOAT4":           {},
		"FLOAT8":           {},
	}

	// full column types (INFORMATION_SCHEMA.COLUMNS.COLUMN_TYPE) that mysql uses for booleans
	mysqlBooleanColumnTypes = map[string]struct{}{
		"TINYINT(1)":          {},
		"TINYINT(1) UNSIGNED": {},
		"BIT(1)":              {},
		"BOOL":                {},
		"BOOLEAN":             {},
	}
)

func normalize(colType string) string {
	return strings.TrimSpace(strings.ToUpper(strings.Split(colType, "(")[0]))
}

// Convert : converts types to the target db if it cannot then it will error out
func Convert(t Type, colTypeSource string) (string, error) {
	colTypeSource = normalize(colTypeSource)
	var mp map[string]string
	switch t {
	case SQLServerToPostgres:
		mp = sqlServerToPostgresMap
	case MysqlToPostgres:
		mp = mysqlToPostgresMap
	case ParquetToPostgres:
		mp = parquetToPostgresMap
	default:
		return "", fmt.Errorf("Unsupported type %s", t)
	}
	itm, ok := mp[colTypeSource]
	if !ok {
		return "", fmt.Errorf("This col type %s does not have a postgres mapping", colTypeSource)
	}
	return itm, nil
}

// MustConvert : if the conversion errors out it panics
func MustConvert(t Type, colTypeSource string) string {
	val, err := Convert(t, colTypeSource)
	if err != nil {
		panic(fmt.Errorf("%s : Could not cast %s", t, colTypeSource))
	}
	return val
}

// IsNumeric : true when the database type name holds numbers that take part in a sum.
// Boolean types (BIT, BOOL) are not numeric here even though some engines store them as 0/1.
func IsNumeric(dbTypeName string) bool {
	return IsInteger(dbTypeName) || isFractional(dbTypeName)
}

// IsInteger : numeric types without a fractional part
func IsInteger(dbTypeName string) bool {
	_, ok := integerTypes[normalize(dbTypeName)]
	return ok
}

func isFractional(dbTypeName string) bool {
	_, ok := fractionalTypes[normalize(dbTypeName)]
	return ok
}

// IsMysqlBoolean : the mysql driver reports these columns as TINYINT or BIT, only the
// declared column type tells them apart from integers
func IsMysqlBoolean(columnType string) bool {
	_, ok := mysqlBooleanColumnTypes[strings.Join(strings.Fields(strings.ToUpper(columnType)), " ")]
	return ok
}

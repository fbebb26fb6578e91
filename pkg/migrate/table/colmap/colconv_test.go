package colmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	testCases := []struct {
		name     string
		t        Type
		source   string
		expected string
	}{
		{name: "sqlserver bigint", t: SQLServerToPostgres, source: "bigint", expected: "BIGINT"},
		{name: "sqlserver nvarchar with length", t: SQLServerToPostgres, source: "nvarchar(255)", expected: "TEXT"},
		{name: "sqlserver bit", t: SQLServerToPostgres, source: "BIT", expected: "BOOLEAN"},
		{name: "sqlserver datetime2", t: SQLServerToPostgres, source: "datetime2(7)", expected: "TIMESTAMP"},
		{name: "mysql tinyint", t: MysqlToPostgres, source: "tinyint(1)", expected: "SMALLINT"},
		{name: "mysql varchar", t: MysqlToPostgres, source: "varchar(100)", expected: "TEXT"},
		{name: "parquet timestamp", t: ParquetToPostgres, source: "TIMESTAMP_MICROS", expected: "TIMESTAMP"},
		{name: "parquet utf8", t: ParquetToPostgres, source: "UTF8", expected: "TEXT"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Convert(tc.t, tc.source)
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}

	t.Run("unknown column type", func(t *testing.T) {
		_, err := Convert(SQLServerToPostgres, "geography")
		require.EqualError(t, err, "This col type GEOGRAPHY does not have a postgres mapping")
	})

	t.Run("unknown mapping", func(t *testing.T) {
		_, err := Convert(Type("ORACLE_POSTGRES"), "int")
		require.Error(t, err)
	})

	t.Run("must convert panics", func(t *testing.T) {
		require.Panics(t, func() { MustConvert(ParquetToPostgres, "INT96") })
		require.Equal(t, "BIGINT", MustConvert(ParquetToPostgres, "INT64"))
	})
}

func TestIsNumeric(t *testing.T) {
	for _, typ := range []string{"INT", "BIGINT", "INT8", "int4", "DECIMAL", "NUMERIC", "FLOAT8", "MONEY", "decimal(10,2)",
		"UNSIGNED TINYINT", "UNSIGNED SMALLINT", "UNSIGNED MEDIUMINT", "UNSIGNED INT", "UNSIGNED BIGINT"} {
		require.True(t, IsNumeric(typ), typ)
	}
	for _, typ := range []string{"BIT", "BOOL", "BOOLEAN", "NVARCHAR", "TEXT", "DATETIME2", "TIMESTAMP", ""} {
		require.False(t, IsNumeric(typ), typ)
	}
}

func TestIsInteger(t *testing.T) {
	for _, typ := range []string{"INT", "BIGINT", "INT8", "UNSIGNED TINYINT", "UNSIGNED SMALLINT", "tinyint"} {
		require.True(t, IsInteger(typ), typ)
	}
	for _, typ := range []string{"DECIMAL", "NUMERIC", "FLOAT8", "MONEY", "BIT", "TEXT"} {
		require.False(t, IsInteger(typ), typ)
	}
}

func TestIsMysqlBoolean(t *testing.T) {
	for _, typ := range []string{"tinyint(1)", "TINYINT(1)", "tinyint(1)  unsigned", "bit(1)", "boolean"} {
		require.True(t, IsMysqlBoolean(typ), typ)
	}
	for _, typ := range []string{"tinyint(4)", "tinyint", "bit(8)", "int(11)", "bigint(20) unsigned"} {
		require.False(t, IsMysqlBoolean(typ), typ)
	}
}

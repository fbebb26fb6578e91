package sourcecfg

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetDSN(t *testing.T) {
	t.Run("sqlserver", func(t *testing.T) {
		d := Database{
			Driver:         DriverSQLServer,
			Host:           "localhost",
			Port:           1433,
			DB:             "RetailSource",
			UserName:       "sa",
			Password:       "YourStrong@Passw0rd",
			ConnectTimeout: 30 * time.Second,
		}
		u, err := url.Parse(d.GetDSN())
		require.NoError(t, err)
		require.Equal(t, "sqlserver", u.Scheme)
		require.Equal(t, "localhost:1433", u.Host)
		require.Equal(t, "sa", u.User.Username())
		pw, _ := u.User.Password()
		require.Equal(t, "YourStrong@Passw0rd", pw)
		require.Equal(t, "RetailSource", u.Query().Get("database"))
		require.Equal(t, "30", u.Query().Get("connection timeout"))
	})

	t.Run("sqlserver sub second timeout rounds up", func(t *testing.T) {
		d := Database{Driver: DriverSQLServer, Host: "localhost", Port: 1433, ConnectTimeout: 500 * time.Millisecond}
		u, err := url.Parse(d.GetDSN())
		require.NoError(t, err)
		require.Equal(t, "1", u.Query().Get("connection timeout"))
		require.Equal(t, "1", u.Query().Get("dial timeout"))

		d.ConnectTimeout = 1500 * time.Millisecond
		u, err = url.Parse(d.GetDSN())
		require.NoError(t, err)
		require.Equal(t, "2", u.Query().Get("connection timeout"))
	})

	t.Run("mysql", func(t *testing.T) {
		d := Database{
			Driver:                DriverMySQL,
			Host:                  "db",
			Port:                  3306,
			DB:                    "retail",
			UserName:              "root",
			Password:              "pw",
			ConnectTimeout:        5 * time.Second,
			SessionVariableValues: map[string]string{"sql_mode": "'ANSI_QUOTES'"},
		}
		require.Equal(t,
			"root:pw@tcp(db:3306)/retail?parseTime=true&loc=UTC&collation=utf8mb4_general_ci&autocommit=true&timeout=5s&sql_mode=%27ANSI_QUOTES%27",
			d.GetDSN(),
		)
	})
}

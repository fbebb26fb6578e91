package sourcecfg

import (
	"fmt"
	"math"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// DriverSQLServer : microsoft sql server through go-mssqldb
	DriverSQLServer = "sqlserver"
	// DriverMySQL : mysql through go-sql-driver
	DriverMySQL = "mysql"
)

// Database : source database the customers table is read from
type Database struct {
	Driver                string            `mapstructure:"driver"`
	Host                  string            `mapstructure:"host"`
	Port                  int               `mapstructure:"port"`
	DB                    string            `mapstructure:"db"`
	UserName              string            `mapstructure:"user_name"`
	Password              string            `mapstructure:"password"`
	Table                 string            `mapstructure:"table"`
	ConnectTimeout        time.Duration     `mapstructure:"connect_timeout"`
	MaxRetry              int               `mapstructure:"max_retry"`
	RetryDelay            time.Duration     `mapstructure:"retry_delay"`
	QueryLogging          bool              `mapstructure:"query_log"`
	SessionVariableValues map[string]string `mapstructure:"session_vars"`
}

// GetDSN : builds the driver specific connection string
func (d *Database) GetDSN() string {
	switch d.Driver {
	case DriverMySQL:
		return d.mysqlDSN()
	default:
		return d.sqlServerDSN()
	}
}

func (d *Database) sqlServerDSN() string {
	query := url.Values{}
	query.Add("database", d.DB)
	query.Add("TrustServerCertificate", "true")
	if d.ConnectTimeout > 0 {
		// whole seconds, 0 would disable the timeout
		secs := strconv.Itoa(int(math.Ceil(d.ConnectTimeout.Seconds())))
		query.Add("connection timeout", secs)
		query.Add("dial timeout", secs)
	}
	connURL := &url.URL{
		Scheme:   DriverSQLServer,
		User:     url.UserPassword(d.UserName, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		RawQuery: query.Encode(),
	}
	return connURL.String()
}

func (d *Database) mysqlDSN() string {
	var ses []string
	for k, v := range d.SessionVariableValues {
		ses = append(ses, k+"="+url.QueryEscape(v))
	}
	sort.Strings(ses)
	dsn := fmt.Sprintf(`%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&collation=utf8mb4_general_ci&autocommit=true`, d.UserName, d.Password, net.JoinHostPort(d.Host, strconv.Itoa(d.Port)), d.DB)
	if d.ConnectTimeout > 0 {
		dsn += "&timeout=" + d.ConnectTimeout.String()
	}
	if len(ses) > 0 {
		dsn += "&" + strings.Join(ses, "&")
	}
	return dsn
}

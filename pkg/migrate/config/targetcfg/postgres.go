package targetcfg

import (
	"math"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Postgres : target database the customers rows are appended to
type Postgres struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	DB             string        `mapstructure:"db"`
	UserName       string        `mapstructure:"user_name"`
	Password       string        `mapstructure:"password"`
	SSLMode        string        `mapstructure:"sslmode"`
	Table          string        `mapstructure:"table"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	CreateTable    bool          `mapstructure:"create_table"`
	QueryLogging   bool          `mapstructure:"query_log"`
}

func (p *Postgres) GetDSN() string {
	query := url.Values{}
	if p.SSLMode != "" {
		query.Add("sslmode", p.SSLMode)
	}
	if p.ConnectTimeout > 0 {
		query.Add("connect_timeout", strconv.Itoa(int(math.Ceil(p.ConnectTimeout.Seconds()))))
	}
	connURL := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.UserName, p.Password),
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:     "/" + p.DB,
		RawQuery: query.Encode(),
	}
	return connURL.String()
}

package connection

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"

	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"

	"github.com/baderkha/custmig/pkg/migrate/config/sourcecfg"
)

// DialFunc : a single connection attempt, the returned db has answered a ping
type DialFunc func(ctx context.Context) (*sql.DB, error)

func AddLogger(db *sql.DB, dsn string, driverName string, log zerolog.Logger) *sql.DB {
	loggerAdapter := zerologadapter.New(log.With().Str("driver", driverName).Logger())
	wrapped := sqldblogger.OpenDriver(dsn, db.Driver(), loggerAdapter,
		sqldblogger.WithWrapResult(false),
		sqldblogger.WithDurationFieldname("dur_ms"),
		sqldblogger.WithDurationUnit(sqldblogger.DurationMillisecond),
		sqldblogger.WithSQLQueryAsMessage(true),        // default: false
		sqldblogger.WithSQLQueryFieldname("sql_query"), // default: query
	) // default: LevelInfo)
	// nothing was dialed through the unwrapped handle yet
	_ = db.Close()
	return wrapped
}

// Open : opens the driver and pings it, the connect timeout bounds the ping
func Open(ctx context.Context, driverName string, dsn string, connectTimeout time.Duration, qlog bool, log zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s : could not dial connection due to : %w", driverName, err)
	}
	if qlog {
		db = AddLogger(db, dsn, driverName, log)
	}

	pingCtx := ctx
	if connectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, connectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s : could not ping due to : %w", driverName, err)
	}
	return db, nil
}

// DialSource : sql server or mysql depending on the configured driver
func DialSource(cfg *sourcecfg.Database, log zerolog.Logger) DialFunc {
	return func(ctx context.Context) (*sql.DB, error) {
		log.Debug().Str("driver", cfg.Driver).Str("host", cfg.Host).Msg("getting source con")
		db, err := Open(ctx, cfg.Driver, cfg.GetDSN(), cfg.ConnectTimeout, cfg.QueryLogging, log)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		log.Debug().Str("driver", cfg.Driver).Msg("got source con")
		return db, nil
	}
}

package connection

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/rs/zerolog"

	"github.com/baderkha/custmig/pkg/migrate/config/targetcfg"
)

const DriverPostgres = "postgres"

// DialPostgres : target connection, callers make a single attempt
func DialPostgres(cfg *targetcfg.Postgres, log zerolog.Logger) DialFunc {
	return func(ctx context.Context) (*sql.DB, error) {
		log.Debug().Str("host", cfg.Host).Msg("getting DialPostgres con")
		db, err := Open(ctx, DriverPostgres, cfg.GetDSN(), cfg.ConnectTimeout, cfg.QueryLogging, log)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		log.Debug().Msg("got DialPostgres con")
		return db, nil
	}
}

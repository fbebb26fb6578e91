package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samber/lo"

	"github.com/baderkha/custmig/pkg/migrate/config"
	"github.com/baderkha/custmig/pkg/migrate/table"
	"github.com/baderkha/custmig/pkg/migrate/table/colmap"
	"github.com/baderkha/custmig/pkg/migrate/transport"
)

type LoadResult struct {
	Appended int
	// RowsInTarget includes rows that were there before the load
	RowsInTarget int64
}

// Loader : transport file -> target table, always appends
type Loader struct {
	cfg *config.Job
	settings
}

func NewLoader(cfg *config.Job, opts ...Option) *Loader {
	return &Loader{
		cfg:      cfg,
		settings: newSettings(cfg, "load", opts),
	}
}

func (l *Loader) Run(ctx context.Context) (LoadResult, error) {
	var (
		res  LoadResult
		tgt  = &l.cfg.Target
		path = l.cfg.Transport.ReadPath()
	)

	records, err := transport.ReadFile(l.fs, path, l.cfg.Transport.ParallelWriters)
	if err != nil {
		return res, fmt.Errorf("load: %w", err)
	}
	l.log.Info().Int("rows", len(records)).Str("path", path).Msg("read transport file")

	db, err := l.dialTarget(ctx)
	if err != nil {
		return res, fmt.Errorf("load: connect to target: %w", err)
	}
	defer closeAndLog(db, "target connection", l.log)

	if tgt.CreateTable {
		if err := l.createTable(ctx, db); err != nil {
			return res, err
		}
	}

	for _, batch := range lo.Chunk(records, l.cfg.BatchRecordSize) {
		args := make([]interface{}, 0, len(batch)*len(table.Columns))
		for _, rec := range batch {
			args = append(args, rec.Values()...)
		}
		q := table.InsertCustomersQuery(table.DialectPostgres, tgt.Table, len(batch))
		if _, err := db.ExecContext(ctx, q, args...); err != nil {
			return res, fmt.Errorf("load: insert into %s after %d rows: %w", tgt.Table, res.Appended, err)
		}
		res.Appended += len(batch)
		l.log.Debug().Int("batch", len(batch)).Int("appended", res.Appended).Msg("inserted batch")
	}
	fmt.Fprintf(l.out, "Import completed: %s (%d rows appended)\n", tgt.Table, res.Appended)

	countQ := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table.DialectPostgres.Quote(tgt.Table))
	if err := db.QueryRowContext(ctx, countQ).Scan(&res.RowsInTarget); err != nil {
		return res, fmt.Errorf("load: count %s: %w", tgt.Table, err)
	}
	fmt.Fprintf(l.out, "Rows in target: %d\n", res.RowsInTarget)
	return res, nil
}

func (l *Loader) createTable(ctx context.Context, db *sql.DB) error {
	inf, err := table.GenerateTargetCast(colmap.ParquetToPostgres, table.CustomerInfo(l.cfg.Target.Table))
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if _, err := db.ExecContext(ctx, table.CreateTableQuery(table.DialectPostgres, inf)); err != nil {
		return fmt.Errorf("load: create %s: %w", l.cfg.Target.Table, err)
	}
	return nil
}

package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/baderkha/custmig/pkg/migrate/config"
	"github.com/baderkha/custmig/pkg/migrate/config/sourcecfg"
	"github.com/baderkha/custmig/pkg/migrate/table"
	"github.com/baderkha/custmig/pkg/migrate/table/colmap"
)

type PreflightResult struct {
	Source *table.Info
	// Target is nil when the table is missing and will be created by the loader
	Target *table.Info
}

// Preflight : checks both databases are reachable and the customers tables can be migrated
// without moving any data.
type Preflight struct {
	cfg *config.Job
	settings
}

func NewPreflight(cfg *config.Job, opts ...Option) *Preflight {
	return &Preflight{
		cfg:      cfg,
		settings: newSettings(cfg, "validate", opts),
	}
}

func (p *Preflight) Run(ctx context.Context) (PreflightResult, error) {
	var (
		res PreflightResult
		src = &p.cfg.SourceConfig
		tgt = &p.cfg.Target
	)
	srcDB, err := p.dialSource(ctx)
	if err != nil {
		return res, fmt.Errorf("validate: connect to source: %w", err)
	}
	defer closeAndLog(srcDB, "source connection", p.log)

	defaultSchema, castType := "dbo", colmap.SQLServerToPostgres
	if src.Driver == sourcecfg.DriverMySQL {
		defaultSchema, castType = src.DB, colmap.MysqlToPostgres
	}
	res.Source, err = table.NewInfoFetcherSQL(srcDB, table.Dialect(src.Driver), defaultSchema).Get(ctx, src.Table)
	if err != nil {
		return res, fmt.Errorf("validate: source: %w", err)
	}
	if err := table.CheckCustomerColumns(res.Source); err != nil {
		return res, fmt.Errorf("validate: source: %w", err)
	}
	if _, err := table.GenerateTargetCast(castType, res.Source); err != nil {
		return res, fmt.Errorf("validate: source: %w", err)
	}
	fmt.Fprintf(p.out, "Source table %s: %d rows, %d columns\n", res.Source.QualifiedName(), res.Source.RowCount, len(res.Source.Schema))

	tgtDB, err := p.dialTarget(ctx)
	if err != nil {
		return res, fmt.Errorf("validate: connect to target: %w", err)
	}
	defer closeAndLog(tgtDB, "target connection", p.log)

	res.Target, err = table.NewInfoFetcherSQL(tgtDB, table.DialectPostgres, "public").Get(ctx, tgt.Table)
	switch {
	case errors.Is(err, table.ErrTableNotFound) && tgt.CreateTable:
		res.Target = nil
		fmt.Fprintf(p.out, "Target table %s: missing, created on load\n", tgt.Table)
	case err != nil:
		return res, fmt.Errorf("validate: target: %w", err)
	default:
		if err := table.CheckCustomerColumns(res.Target); err != nil {
			return res, fmt.Errorf("validate: target: %w", err)
		}
		fmt.Fprintf(p.out, "Target table %s: %d rows\n", res.Target.QualifiedName(), res.Target.RowCount)
	}

	fmt.Fprintln(p.out, "Configuration is valid and databases are accessible")
	return res, nil
}

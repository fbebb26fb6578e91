package migrate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/baderkha/custmig/pkg/migrate/checksum"
	"github.com/baderkha/custmig/pkg/migrate/config"
	"github.com/baderkha/custmig/pkg/migrate/connection"
	"github.com/baderkha/custmig/pkg/migrate/table"
)

type VerifyResult struct {
	Source checksum.Checksum
	Target checksum.Checksum
	Match  bool
}

// Verifier : compares a checksum of the source table with one of the target table.
// A mismatch is reported through the result, not as an error.
type Verifier struct {
	cfg *config.Job
	settings
}

func NewVerifier(cfg *config.Job, opts ...Option) *Verifier {
	return &Verifier{
		cfg:      cfg,
		settings: newSettings(cfg, "verify", opts),
	}
}

func (v *Verifier) Run(ctx context.Context) (VerifyResult, error) {
	var res VerifyResult
	mode, err := checksum.ParseMode(v.cfg.Verify.Mode)
	if err != nil {
		return res, fmt.Errorf("verify: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if !v.cfg.Verify.Parallel {
		g.SetLimit(1)
	}
	g.Go(func() error {
		var err error
		res.Source, err = v.checksumOf(gctx, "source", v.dialSource, table.Dialect(v.cfg.SourceConfig.Driver), v.cfg.SourceConfig.Table, mode)
		return err
	})
	g.Go(func() error {
		var err error
		res.Target, err = v.checksumOf(gctx, "target", v.dialTarget, table.DialectPostgres, v.cfg.Target.Table, mode)
		return err
	})
	if err := g.Wait(); err != nil {
		return res, fmt.Errorf("verify: %w", err)
	}

	res.Match = res.Source.Equal(res.Target)
	v.log.Info().
		Str("mode", string(mode)).
		Int("source_rows", res.Source.Rows).
		Int("target_rows", res.Target.Rows).
		Bool("match", res.Match).
		Msg("compared checksums")
	fmt.Fprintf(v.out, "Source checksum: %s\n", res.Source)
	fmt.Fprintf(v.out, "Target checksum: %s\n", res.Target)
	fmt.Fprintf(v.out, "Match: %t\n", res.Match)
	return res, nil
}

func (v *Verifier) checksumOf(ctx context.Context, side string, dial connection.DialFunc, d table.Dialect, tableName string, mode checksum.Mode) (checksum.Checksum, error) {
	db, err := dial(ctx)
	if err != nil {
		return checksum.Checksum{}, fmt.Errorf("connect to %s: %w", side, err)
	}
	defer closeAndLog(db, side+" connection", v.log)

	var boolCols []string
	if d == table.DialectMySQL {
		boolCols, err = table.NewInfoFetcherSQL(db, d, v.cfg.SourceConfig.DB).MysqlBooleanColumns(ctx, tableName)
		if err != nil {
			return checksum.Checksum{}, fmt.Errorf("inspect %s %s: %w", side, tableName, err)
		}
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s ORDER BY %s`, d.Quote(tableName), d.Quote("id")))
	if err != nil {
		return checksum.Checksum{}, fmt.Errorf("query %s %s: %w", side, tableName, err)
	}
	rs, err := table.ReadAll(rows)
	if err != nil {
		return checksum.Checksum{}, fmt.Errorf("read %s %s: %w", side, tableName, err)
	}
	rs.MarkBoolean(boolCols)
	sum, err := checksum.Compute(rs, mode)
	if err != nil {
		return checksum.Checksum{}, fmt.Errorf("%s checksum: %w", side, err)
	}
	v.log.Debug().Str("side", side).Int("rows", sum.Rows).Str("checksum", sum.String()).Msg("computed checksum")
	return sum, nil
}

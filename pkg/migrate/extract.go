package migrate

import (
	"context"
	"fmt"

	"github.com/baderkha/custmig/pkg/migrate/config"
	"github.com/baderkha/custmig/pkg/migrate/connection"
	"github.com/baderkha/custmig/pkg/migrate/table"
	"github.com/baderkha/custmig/pkg/migrate/transport"
)

type ExtractResult struct {
	Path string
	Rows int
	// StagedURI is only set when an uploader is configured
	StagedURI string
}

// Extractor : source table -> transport file
type Extractor struct {
	cfg *config.Job
	settings
}

func NewExtractor(cfg *config.Job, opts ...Option) *Extractor {
	return &Extractor{
		cfg:      cfg,
		settings: newSettings(cfg, "extract", opts),
	}
}

func (e *Extractor) Run(ctx context.Context) (ExtractResult, error) {
	var (
		res  ExtractResult
		src  = &e.cfg.SourceConfig
		path = e.cfg.Transport.WritePath()
		log  = e.log.With().Str("driver", src.Driver).Logger()
	)

	db, err := connection.DialWithRetry(ctx, e.dialSource, src.MaxRetry, src.RetryDelay, log)
	if err != nil {
		return res, fmt.Errorf("extract: connect to source: %w", err)
	}
	defer closeAndLog(db, "source connection", log)
	fmt.Fprintln(e.out, "Connected to source")

	rows, err := db.QueryContext(ctx, table.SelectCustomersQuery(table.Dialect(src.Driver), src.Table))
	if err != nil {
		return res, fmt.Errorf("extract: query %s: %w", src.Table, err)
	}
	records, err := table.ScanCustomers(rows)
	if err != nil {
		return res, fmt.Errorf("extract: read %s: %w", src.Table, err)
	}
	log.Info().Int("rows", len(records)).Msg("read source table")

	if err := transport.WriteFile(e.fs, path, records, e.cfg.Transport.ParallelWriters); err != nil {
		return res, fmt.Errorf("extract: %w", err)
	}
	res.Path, res.Rows = path, len(records)
	fmt.Fprintf(e.out, "Export completed: %s (%d rows)\n", path, len(records))

	if e.uploader != nil {
		uri, err := e.uploader.UploadFile(ctx, e.runID, path)
		if err != nil {
			return res, fmt.Errorf("extract: stage upload: %w", err)
		}
		res.StagedURI = uri
		log.Info().Str("uri", uri).Msg("staged transport file")
		fmt.Fprintf(e.out, "Staged: %s\n", uri)
	}
	return res, nil
}

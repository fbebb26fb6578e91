package migrate

import (
	"context"
	"io"
	"os"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/baderkha/custmig/pkg/migrate/config"
	"github.com/baderkha/custmig/pkg/migrate/connection"
	"github.com/baderkha/custmig/pkg/migrate/transport"
)

// Stage : one step of the customers migration, runs to completion or returns a fatal error
type Stage[R any] interface {
	Run(ctx context.Context) (R, error)
}

var (
	_ Stage[ExtractResult]   = (*Extractor)(nil)
	_ Stage[LoadResult]      = (*Loader)(nil)
	_ Stage[VerifyResult]    = (*Verifier)(nil)
	_ Stage[PreflightResult] = (*Preflight)(nil)
)

// Option : overrides what a stage uses to reach the outside world
type Option func(s *settings)

type settings struct {
	fs         afero.Fs
	out        io.Writer
	log        zerolog.Logger
	runID      string
	dialSource connection.DialFunc
	dialTarget connection.DialFunc
	uploader   *transport.Uploader
}

// WithFs : filesystem holding the transport file, the os filesystem otherwise
func WithFs(fs afero.Fs) Option {
	return func(s *settings) { s.fs = fs }
}

// WithOutput : where the result lines are printed, stdout otherwise
func WithOutput(w io.Writer) Option {
	return func(s *settings) { s.out = w }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *settings) { s.log = log }
}

func WithRunID(runID string) Option {
	return func(s *settings) { s.runID = runID }
}

func WithSourceDialer(dial connection.DialFunc) Option {
	return func(s *settings) { s.dialSource = dial }
}

func WithTargetDialer(dial connection.DialFunc) Option {
	return func(s *settings) { s.dialTarget = dial }
}

// WithUploader : stages the written transport file in s3 after an extract
func WithUploader(u *transport.Uploader) Option {
	return func(s *settings) { s.uploader = u }
}

// NewRunID : identifies one invocation in logs and staging keys
func NewRunID() string {
	uid, err := uuid.NewV4()
	if err != nil {
		panic(err)
	}
	return uid.String()
}

func newSettings(cfg *config.Job, stage string, opts []Option) settings {
	s := settings{
		fs:  afero.NewOsFs(),
		out: os.Stdout,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.runID == "" {
		s.runID = NewRunID()
	}
	s.log = s.log.With().Str("stage", stage).Str("run_id", s.runID).Logger()
	if s.dialSource == nil {
		s.dialSource = connection.DialSource(&cfg.SourceConfig, s.log)
	}
	if s.dialTarget == nil {
		s.dialTarget = connection.DialPostgres(&cfg.Target, s.log)
	}
	return s
}

type closer interface {
	Close() error
}

func closeAndLog(c closer, what string, log zerolog.Logger) {
	if err := c.Close(); err != nil {
		log.Warn().Err(err).Msgf("closing %s", what)
	}
}

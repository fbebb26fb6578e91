package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/baderkha/custmig/pkg/migrate"
	"github.com/baderkha/custmig/pkg/migrate/config"
	"github.com/baderkha/custmig/pkg/migrate/transport"
)

var version = "dev"

type rootOptions struct {
	cfgFile  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "custmig",
		Short: "Customers table migration from SQL Server to PostgreSQL",
		Long: `Moves the customers table from the source database to PostgreSQL through a
parquet file and verifies the result with a checksum. Each stage runs on its own:
extract, load, then verify.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "job config file (yaml, json or toml), defaults and CUSTMIG_* env otherwise")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", zerolog.InfoLevel.String(), "log level written to stderr")

	root.AddCommand(
		&cobra.Command{
			Use:   "extract",
			Short: "Export the source customers table to the transport file",
			RunE: func(cmd *cobra.Command, _ []string) error {
				job, stageOpts, err := opts.setup(cmd)
				if err != nil {
					return err
				}
				if s3 := job.Transport.S3; s3.Bucket != "" {
					u, err := transport.NewS3Uploader(afero.NewOsFs(), s3.Region, s3.Bucket, s3.PrefixOverride, s3.MaxRetry)
					if err != nil {
						return err
					}
					stageOpts = append(stageOpts, migrate.WithUploader(u))
				}
				_, err = migrate.NewExtractor(job, stageOpts...).Run(cmd.Context())
				return err
			},
		},
		&cobra.Command{
			Use:   "load",
			Short: "Append the transport file to the target customers table",
			RunE: func(cmd *cobra.Command, _ []string) error {
				job, stageOpts, err := opts.setup(cmd)
				if err != nil {
					return err
				}
				_, err = migrate.NewLoader(job, stageOpts...).Run(cmd.Context())
				return err
			},
		},
		&cobra.Command{
			Use:   "verify",
			Short: "Compare source and target checksums",
			Long: `Compare a checksum of the source table with one of the target table.
The default sum mode only covers numeric columns, use verify.mode=rowhash for a
comparison of every cell. A mismatch is reported, it does not fail the command.`,
			RunE: func(cmd *cobra.Command, _ []string) error {
				job, stageOpts, err := opts.setup(cmd)
				if err != nil {
					return err
				}
				_, err = migrate.NewVerifier(job, stageOpts...).Run(cmd.Context())
				return err
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Validate configuration and database access",
			Long: `Test both database connections and the customers table layout
without moving any data.`,
			RunE: func(cmd *cobra.Command, _ []string) error {
				job, stageOpts, err := opts.setup(cmd)
				if err != nil {
					return err
				}
				_, err = migrate.NewPreflight(job, stageOpts...).Run(cmd.Context())
				return err
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "custmig %s\n", version)
			},
		},
	)
	return root
}

func (o *rootOptions) setup(cmd *cobra.Command) (*config.Job, []migrate.Option, error) {
	lvl, err := zerolog.ParseLevel(o.logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("--log-level: %w", err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	job, err := config.Load(config.NewViper(), o.cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if job.Transport.PathsDiffer() {
		log.Warn().
			Str("write_path", job.Transport.WritePath()).
			Str("read_path", job.Transport.ReadPath()).
			Msg("transport.allow_path_mismatch is set, extract and load use different files")
	}

	return job, []migrate.Option{
		migrate.WithLogger(log),
		migrate.WithOutput(cmd.OutOrStdout()),
	}, nil
}

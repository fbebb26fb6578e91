package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"

	"github.com/baderkha/custmig/pkg/migrate/checksum"
	"github.com/baderkha/custmig/pkg/migrate/config/sourcecfg"
	"github.com/baderkha/custmig/pkg/migrate/config/targetcfg"
	"github.com/baderkha/custmig/pkg/migrate/table"
)

// EnvPrefix : every key can be overridden from the environment, source.password -> CUSTMIG_SOURCE_PASSWORD
const EnvPrefix = "CUSTMIG"

// Config : configuration for the job
type Config[S any, T any] struct {
	BatchRecordSize int       `mapstructure:"max_batch_record_size"`
	SourceConfig    S         `mapstructure:"source"`
	Target          T         `mapstructure:"target"`
	Transport       Transport `mapstructure:"transport"`
	Verify          Verify    `mapstructure:"verify"`
}

// Job : the customers migration job
type Job = Config[sourcecfg.Database, targetcfg.Postgres]

type S3Options struct {
	Bucket         string `mapstructure:"bucket"`
	PrefixOverride string `mapstructure:"prefix"`
	Region         string `mapstructure:"region"`
	MaxRetry       int    `mapstructure:"max_retry"`
}

// Transport : the parquet file handed from the extractor to the loader
type Transport struct {
	Path              string    `mapstructure:"path"`
	WritePathOverride string    `mapstructure:"write_path"`
	ReadPathOverride  string    `mapstructure:"read_path"`
	AllowPathMismatch bool      `mapstructure:"allow_path_mismatch"`
	ParallelWriters   int64     `mapstructure:"parallel_writers"`
	S3                S3Options `mapstructure:"s3"`
}

// WritePath : where the extractor writes
func (t Transport) WritePath() string {
	if t.WritePathOverride != "" {
		return t.WritePathOverride
	}
	return t.Path
}

// ReadPath : where the loader reads
func (t Transport) ReadPath() string {
	if t.ReadPathOverride != "" {
		return t.ReadPathOverride
	}
	return t.Path
}

// PathsDiffer : true when extractor and loader resolve to different files
func (t Transport) PathsDiffer() bool {
	w, errW := filepath.Abs(t.WritePath())
	r, errR := filepath.Abs(t.ReadPath())
	if errW != nil || errR != nil {
		return filepath.Clean(t.WritePath()) != filepath.Clean(t.ReadPath())
	}
	return w != r
}

type Verify struct {
	Mode     string `mapstructure:"mode"`
	Parallel bool   `mapstructure:"parallel"`
}

var defaults = map[string]interface{}{
	"max_batch_record_size": 1000,

	"source.driver":          sourcecfg.DriverSQLServer,
	"source.host":            "localhost",
	"source.port":            1433,
	"source.db":              "RetailSource",
	"source.user_name":       "",
	"source.password":        "",
	"source.table":           "dbo.customers",
	"source.connect_timeout": "30s",
	"source.max_retry":       10,
	"source.retry_delay":     "5s",
	"source.query_log":       false,

	"target.host":            "localhost",
	"target.port":            5432,
	"target.db":              "retail_target",
	"target.user_name":       "",
	"target.password":        "",
	"target.sslmode":         "disable",
	"target.table":           "customers",
	"target.connect_timeout": "30s",
	"target.create_table":    true,
	"target.query_log":       false,

	"transport.path":                "data/customers.parquet",
	"transport.write_path":          "",
	"transport.read_path":           "",
	"transport.allow_path_mismatch": false,
	"transport.parallel_writers":    4,
	"transport.s3.bucket":           "",
	"transport.s3.prefix":           "files",
	"transport.s3.region":           "us-east-1",
	"transport.s3.max_retry":        3,

	"verify.mode":     string(checksum.ModeSum),
	"verify.parallel": false,
}

// NewViper : defaults plus environment overrides, the config file is optional
func NewViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load : reads the job once at start up, path may be empty to rely on defaults and environment
func Load(v *viper.Viper, path string) (*Job, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var job Job
	if err := v.Unmarshal(&job); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := Validate(&job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Validate : reports every problem of the job at once
func Validate(job *Job) error {
	var finalErr error
	add := func(err error) {
		finalErr = multierror.Append(finalErr, err)
	}

	src := job.SourceConfig
	switch src.Driver {
	case sourcecfg.DriverSQLServer, sourcecfg.DriverMySQL:
	default:
		add(fmt.Errorf("source.driver must be %s or %s, got %q", sourcecfg.DriverSQLServer, sourcecfg.DriverMySQL, src.Driver))
	}
	if src.Host == "" {
		add(errors.New("source.host is required"))
	}
	if src.Port <= 0 {
		add(errors.New("source.port must be positive"))
	}
	if src.DB == "" {
		add(errors.New("source.db is required"))
	}
	if src.Table == "" {
		add(errors.New("source.table is required"))
	}
	if src.MaxRetry < 1 {
		add(errors.New("source.max_retry must be at least 1"))
	}
	if src.RetryDelay < 0 {
		add(errors.New("source.retry_delay must not be negative"))
	}

	tgt := job.Target
	if tgt.Host == "" {
		add(errors.New("target.host is required"))
	}
	if tgt.Port <= 0 {
		add(errors.New("target.port must be positive"))
	}
	if tgt.DB == "" {
		add(errors.New("target.db is required"))
	}
	if tgt.Table == "" {
		add(errors.New("target.table is required"))
	}
	if job.BatchRecordSize < 1 || job.BatchRecordSize > table.MaxInsertRows {
		add(fmt.Errorf("max_batch_record_size must be between 1 and %d", table.MaxInsertRows))
	}

	if job.Transport.WritePath() == "" || job.Transport.ReadPath() == "" {
		add(errors.New("transport.path is required"))
	} else if job.Transport.PathsDiffer() && !job.Transport.AllowPathMismatch {
		add(fmt.Errorf("transport paths differ: extractor writes %s, loader reads %s (set transport.allow_path_mismatch if intended)", job.Transport.WritePath(), job.Transport.ReadPath()))
	}
	if job.Transport.ParallelWriters < 1 {
		add(errors.New("transport.parallel_writers must be at least 1"))
	}

	if _, err := checksum.ParseMode(job.Verify.Mode); err != nil {
		add(fmt.Errorf("verify.mode: %w", err))
	}
	return finalErr
}

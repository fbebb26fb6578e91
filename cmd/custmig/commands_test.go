package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Equal(t, "custmig dev\n", out)
}

func TestInvalidConfigFailsBeforeConnecting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source:
  driver: odbc
transport:
  write_path: data/customers.parquet
  read_path: customers.parquet
`), 0o600))

	for _, stage := range []string{"extract", "load", "verify", "validate"} {
		t.Run(stage, func(t *testing.T) {
			_, err := execute(t, stage, "--config", path)
			require.ErrorContains(t, err, `source.driver must be sqlserver or mysql, got "odbc"`)
			require.ErrorContains(t, err, "transport paths differ")
		})
	}
}

func TestBadLogLevel(t *testing.T) {
	_, err := execute(t, "load", "--log-level", "loud")
	require.ErrorContains(t, err, "--log-level")
}

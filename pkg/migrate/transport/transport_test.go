package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/baderkha/custmig/pkg/migrate/table"
)

func strPtr(s string) *string { return &s }

func customers() []table.CustomerRecord {
	return []table.CustomerRecord{
		{ID: 1, Name: "Alice", Email: "a@x.com", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 123456000, time.UTC), IsActive: true},
		{ID: 2, Name: "Bob", Email: "b@x.com", CreatedAt: time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC), IsActive: false, Notes: strPtr("note")},
		{ID: 7, Name: "Zoë", Email: "z@x.com", CreatedAt: time.Date(1999, 12, 31, 23, 59, 59, 999999000, time.UTC), IsActive: true, Notes: strPtr("")},
	}
}

func TestRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "data/customers.parquet"

	require.NoError(t, WriteFile(fs, path, customers(), 4))

	got, err := ReadFile(fs, path, 4)
	require.NoError(t, err)
	require.Equal(t, customers(), got)
}

func TestWriteFileOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "data/customers.parquet"

	require.NoError(t, WriteFile(fs, path, customers(), 1))
	require.NoError(t, WriteFile(fs, path, customers()[:1], 1))

	got, err := ReadFile(fs, path, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(1), got[0].ID)
}

func TestEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil, 1))

	got, err := Decode(buf.Bytes(), 1)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestReadFileErrors(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := ReadFile(fs, "customers.parquet", 1)
	require.ErrorContains(t, err, "reading customers.parquet")
}

func TestWriteFileReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	require.Error(t, WriteFile(fs, "data/customers.parquet", customers(), 1))
}

type mockS3 struct {
	s3iface.S3API
	failures int
	calls    int
	bodies   [][]byte
	keys     []string
}

func (m *mockS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	m.calls++
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if m.calls <= m.failures {
		return nil, errors.New("SlowDown")
	}
	m.bodies = append(m.bodies, b)
	m.keys = append(m.keys, aws.StringValue(in.Key))
	return &s3.PutObjectOutput{}, nil
}

func TestUploader(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, WriteFile(fs, "data/customers.parquet", customers(), 1))
	want, err := afero.ReadFile(fs, "data/customers.parquet")
	require.NoError(t, err)

	t.Run("retries until success with the full body", func(t *testing.T) {
		api := &mockS3{failures: 2}
		u := NewUploader(api, fs, "staging", "files", 3)

		uri, err := u.UploadFile(context.Background(), "run-1", "data/customers.parquet")
		require.NoError(t, err)
		require.Equal(t, "s3://staging/files/run_id=run-1/customers.parquet", uri)
		require.Equal(t, 3, api.calls)
		require.Equal(t, [][]byte{want}, api.bodies)
	})

	t.Run("gives up after max retry", func(t *testing.T) {
		api := &mockS3{failures: 10}
		u := NewUploader(api, fs, "staging", "files", 2)

		_, err := u.UploadFile(context.Background(), "run-1", "data/customers.parquet")
		require.ErrorContains(t, err, "2 times with no success")
		require.Equal(t, 2, api.calls)
	})
}

// Package transport moves the customers table through a parquet file.
package transport

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/types"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/baderkha/custmig/pkg/migrate/table"
)

type customerParquet struct {
	ID        int64   `parquet:"name=id, type=INT64"`
	Name      string  `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Email     string  `parquet:"name=email, type=BYTE_ARRAY, convertedtype=UTF8"`
	CreatedAt int64   `parquet:"name=created_at, type=INT64, convertedtype=TIMESTAMP_MICROS"`
	IsActive  bool    `parquet:"name=is_active, type=BOOLEAN"`
	Notes     *string `parquet:"name=notes, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

func toParquet(r table.CustomerRecord) customerParquet {
	return customerParquet{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		CreatedAt: types.TimeToTIMESTAMP_MICROS(r.CreatedAt, true),
		IsActive:  r.IsActive,
		Notes:     r.Notes,
	}
}

func fromParquet(p customerParquet) table.CustomerRecord {
	return table.CustomerRecord{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		CreatedAt: time.UnixMicro(p.CreatedAt).UTC(),
		IsActive:  p.IsActive,
		Notes:     p.Notes,
	}
}

// Encode : writes the records in the given order, compression is the writer default
func Encode(w io.Writer, records []table.CustomerRecord, parallelWriters int64) error {
	pw, err := writer.NewParquetWriterFromWriter(w, new(customerParquet), parallelWriters)
	if err != nil {
		return fmt.Errorf("creating parquet writer: %w", err)
	}
	for _, rec := range records {
		if err = pw.Write(toParquet(rec)); err != nil {
			return fmt.Errorf("writing parquet: %w", err)
		}
	}
	if err = pw.WriteStop(); err != nil {
		return fmt.Errorf("stopping parquet writer: %w", err)
	}
	return nil
}

// Decode : reads every record of an in memory parquet file
func Decode(b []byte, parallelReaders int64) ([]table.CustomerRecord, error) {
	pr, err := reader.NewParquetReader(buffer.NewBufferFileFromBytes(b), new(customerParquet), parallelReaders)
	if err != nil {
		return nil, fmt.Errorf("opening parquet reader: %w", err)
	}
	defer pr.ReadStop()

	num := int(pr.GetNumRows())
	rows := make([]customerParquet, num)
	if num > 0 {
		if err := pr.Read(&rows); err != nil {
			return nil, fmt.Errorf("reading parquet: %w", err)
		}
	}

	res := make([]table.CustomerRecord, 0, len(rows))
	for _, r := range rows {
		res = append(res, fromParquet(r))
	}
	return res, nil
}

// WriteFile : replaces the file at path, parent directories are created
func WriteFile(fs afero.Fs, path string, records []table.CustomerRecord, parallelWriters int64) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	return Encode(f, records, parallelWriters)
}

// ReadFile : loads the whole file into memory and decodes it
func ReadFile(fs afero.Fs, path string, parallelReaders int64) ([]table.CustomerRecord, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	recs, err := Decode(b, parallelReaders)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

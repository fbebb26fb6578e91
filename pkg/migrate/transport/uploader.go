package transport

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/spf13/afero"
)

// Uploader : copies the written transport file to an s3 staging bucket
type Uploader struct {
	targetFs s3iface.S3API
	fs       afero.Fs
	bucket   string
	prefix   string
	maxRetry int
}

func NewS3Uploader(fs afero.Fs, region string, bucket string, prefix string, maxRetry int) (*Uploader, error) {
	sess, err := session.NewSession(aws.NewConfig().WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("creating aws session: %w", err)
	}
	return NewUploader(s3.New(sess), fs, bucket, prefix, maxRetry), nil
}

func NewUploader(api s3iface.S3API, fs afero.Fs, bucket string, prefix string, maxRetry int) *Uploader {
	if maxRetry < 1 {
		maxRetry = 1
	}
	return &Uploader{
		targetFs: api,
		fs:       fs,
		bucket:   bucket,
		prefix:   prefix,
		maxRetry: maxRetry,
	}
}

// Key : object key of a local file for a run
func (u *Uploader) Key(runID string, localPath string) string {
	return path.Join(u.prefix, "run_id="+runID, filepath.Base(localPath))
}

// UploadFile : puts the file, retrying up to maxRetry times. Returns the s3 uri.
func (u *Uploader) UploadFile(ctx context.Context, runID string, localPath string) (string, error) {
	var (
		retryCtr int
		err      error
		key      = u.Key(runID, localPath)
	)
	b, err := afero.ReadFile(u.fs, localPath)
	if err != nil {
		return "", fmt.Errorf("reading %s for upload: %w", localPath, err)
	}
	for retryCtr < u.maxRetry {
		_, err = u.targetFs.PutObjectWithContext(ctx, &s3.PutObjectInput{
			Body:   bytes.NewReader(b),
			Bucket: aws.String(u.bucket),
			Key:    aws.String(key),
		})
		if err == nil {
			return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
		}
		retryCtr++
	}
	return "", fmt.Errorf("Attemted uploading key (%s) %d times with no success this is a failure and will be treated as a fatal event : original_err=%w", key, retryCtr, err)
}

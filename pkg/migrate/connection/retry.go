package connection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

var ErrRetriesExhausted = errors.New("connection retries exhausted")

// DialWithRetry : makes at most maxAttempts attempts with a constant delay between them.
// Every failed attempt is logged with its number.
func DialWithRetry(ctx context.Context, dial DialFunc, maxAttempts int, delay time.Duration, log zerolog.Logger) (*sql.DB, error) {
	var (
		attempt int
		db      *sql.DB
	)
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	operation := func() error {
		attempt++
		var err error
		db, err = dial(ctx)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", maxAttempts).Msgf("Attempt %d failed", attempt)
			return err
		}
		return nil
	}

	backoffWithMaxRetry := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(maxAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(operation, backoffWithMaxRetry); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("connecting aborted after %d attempts: %w", attempt, ctxErr)
		}
		return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, err)
	}
	return db, nil
}

package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/sethvargo/go-retry"

	apperrors "insurance-predictor/internal/common/errors"
)

// LoadWithRetry calls Load up to attempts times with exponential backoff
// starting at delay. Only a missing file is retried; an artifact that exists
// but does not validate fails on the first attempt. The returned error is a
// MODEL_LOAD_FAILED StandardError wrapping the last cause.
func LoadWithRetry(ctx context.Context, path string, attempts int, delay time.Duration) (*Pipeline, error) {
	if attempts < 1 {
		attempts = 1
	}
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	var p *Pipeline
	b := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(delay))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		loaded, err := Load(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return retry.RetryableError(err)
			}
			return err
		}
		p = loaded
		return nil
	})
	if err != nil {
		return nil, apperrors.NewModelLoadFailedError(path, err).WithMetadata("attempts", attempts)
	}
	return p, nil
}

package pipeline

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "insurance-predictor/internal/common/errors"
	"insurance-predictor/internal/pipeline/pipelinetest"
	"insurance-predictor/pkg/modelformat"
)

func TestLoadWithRetry(t *testing.T) {
	path, err := pipelinetest.Save(t.TempDir())
	require.NoError(t, err)

	p, err := LoadWithRetry(context.Background(), path, 3, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "insurance-test-forest", p.Name())
}

func TestLoadWithRetry_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")

	start := time.Now()
	_, err := LoadWithRetry(context.Background(), path, 3, 5*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeModelLoadFailed))

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, path, stdErr.Metadata["path"])
	assert.Equal(t, 3, stdErr.Metadata["attempts"])
	// 5ms + 10ms of backoff between the three attempts.
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestLoadWithRetry_FileAppears(t *testing.T) {
	staging, err := pipelinetest.Save(t.TempDir())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model.json")

	go func() {
		time.Sleep(20 * time.Millisecond)
		os.Rename(staging, path)
	}()

	p, err := LoadWithRetry(context.Background(), path, 10, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 2, p.NumTrees())
}

func TestLoadWithRetry_InvalidArtifactIsNotRetried(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"format_version":2}`), 0o644))

	start := time.Now()
	_, err := LoadWithRetry(context.Background(), path, 5, time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, modelformat.ErrUnsupportedVersion)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLoadWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadWithRetry(ctx, filepath.Join(t.TempDir(), "absent.json"), 5, time.Second)
	assert.Error(t, err)
}

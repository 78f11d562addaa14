// ABOUTME: Tests for session recording lifecycle
// ABOUTME: Covers chunk accumulation, idempotent stop, and post-stop chunk dropping

package recording

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRecorder_WritesChunks(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewFileRecorder(dir, 42)
	require.NoError(t, err)

	rec.Start()
	require.NoError(t, rec.AddChunk([]byte("chunk-one")))
	require.NoError(t, rec.AddChunk([]byte("chunk-two")))
	path := rec.Stop()

	assert.True(t, strings.HasPrefix(filepath.Base(path), "session_42_"))
	assert.True(t, strings.HasSuffix(path, ".webm"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "chunk-onechunk-two", string(data))
}

func TestFileRecorder_StopIdempotent(t *testing.T) {
	rec, err := NewFileRecorder(t.TempDir(), 1)
	require.NoError(t, err)

	rec.Start()
	first := rec.Stop()
	second := rec.Stop()
	assert.Equal(t, first, second)
}

func TestFileRecorder_ChunksAfterStopDropped(t *testing.T) {
	rec, err := NewFileRecorder(t.TempDir(), 1)
	require.NoError(t, err)

	rec.Start()
	require.NoError(t, rec.AddChunk([]byte("before")))
	path := rec.Stop()
	require.NoError(t, rec.AddChunk([]byte("after")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "before", string(data))
}

func TestFileRecorder_ChunksBeforeStartDropped(t *testing.T) {
	rec, err := NewFileRecorder(t.TempDir(), 1)
	require.NoError(t, err)

	require.NoError(t, rec.AddChunk([]byte("early")))
	rec.Start()
	path := rec.Stop()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFileRecorder_StartTwice(t *testing.T) {
	rec, err := NewFileRecorder(t.TempDir(), 1)
	require.NoError(t, err)

	rec.Start()
	rec.Start()
	require.NoError(t, rec.AddChunk([]byte("data")))
	path := rec.Stop()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestNewFileRecorder_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "recordings")
	rec, err := NewFileRecorder(dir, 1)
	require.NoError(t, err)

	rec.Start()
	rec.Stop()

	_, err = os.Stat(rec.Path())
	assert.NoError(t, err)
}

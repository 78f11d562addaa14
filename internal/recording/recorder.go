// ABOUTME: Session recording lifecycle and artifact storage on local disk
// ABOUTME: Recorders collect uploaded media chunks into one file per session

package recording

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileRecorder accumulates media chunks for one session into a single
// artifact file under the recording directory. Start and Stop are
// idempotent; chunks written after Stop are dropped.
type FileRecorder struct {
	mu        sync.Mutex
	sessionID int64
	path      string
	file      *os.File
	started   bool
	stopped   bool
	startedAt time.Time
	logger    *slog.Logger
}

// NewFileRecorder creates a recorder for the session. The artifact
// lives at dir/session_<id>_<timestamp>.webm; the directory is created
// if needed.
func NewFileRecorder(dir string, sessionID int64) (*FileRecorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating recording directory: %w", err)
	}

	name := fmt.Sprintf("session_%d_%s.webm", sessionID, time.Now().UTC().Format("20060102T150405"))
	return &FileRecorder{
		sessionID: sessionID,
		path:      filepath.Join(dir, name),
		logger:    slog.Default().With("component", "recording", "session_id", sessionID),
	}, nil
}

// Path returns the artifact path.
func (r *FileRecorder) Path() string {
	return r.path
}

// Start opens the artifact file. Calling Start twice is a no-op.
func (r *FileRecorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started || r.stopped {
		return
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// Recording failure must not kill the session; chunks are
		// dropped and the path still identifies the intended artifact.
		r.logger.Error("failed to open recording file", "path", r.path, "error", err)
		return
	}

	r.file = f
	r.started = true
	r.startedAt = time.Now()
	r.logger.Info("recording started", "path", r.path)
}

// AddChunk appends a media chunk to the artifact. Chunks arriving
// before Start or after Stop are dropped.
func (r *FileRecorder) AddChunk(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil || r.stopped {
		return nil
	}
	if _, err := r.file.Write(data); err != nil {
		return fmt.Errorf("writing recording chunk: %w", err)
	}
	return nil
}

// Stop closes the artifact and returns its path. Safe to call more
// than once; repeat calls return the same path.
func (r *FileRecorder) Stop() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return r.path
	}
	r.stopped = true

	if r.file != nil {
		if err := r.file.Close(); err != nil {
			r.logger.Warn("failed to close recording file", "error", err)
		}
		r.file = nil
		r.logger.Info("recording stopped", "path", r.path, "duration", time.Since(r.startedAt).Round(time.Second).String())
	}
	return r.path
}

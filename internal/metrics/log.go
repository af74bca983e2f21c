package metrics

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// SnapshotFileName is the append-only log file inside the log directory.
// The file grows unboundedly; rotation is an external operational
// concern.
const SnapshotFileName = "snapshots.ndjson"

// SnapshotLog appends snapshots as newline-delimited JSON records to an
// append-only file.
type SnapshotLog struct {
	dir    string
	logger *slog.Logger

	mu sync.Mutex
}

// NewSnapshotLog creates a log rooted at dir. The directory is created
// lazily on first append.
func NewSnapshotLog(dir string, logger *slog.Logger) *SnapshotLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotLog{dir: dir, logger: logger}
}

// Path returns the full path of the log file.
func (l *SnapshotLog) Path() string {
	return filepath.Join(l.dir, SnapshotFileName)
}

// Append serializes one snapshot and appends it as a single line.
func (l *SnapshotLog) Append(s Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(l.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open snapshot log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}
	return nil
}

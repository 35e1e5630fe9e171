package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"sumofix/internal/archive"
)

const (
	// BackendMemory keeps staged entries in RAM.
	BackendMemory = "memory"
	// BackendDisk stages entries in a temporary directory.
	BackendDisk = "disk"
)

// ErrClosed is returned by operations on a closed workspace.
var ErrClosed = errors.New("workspace closed")

type manifestEntry struct {
	name     string
	modified time.Time
	mode     fs.FileMode
	dir      bool
}

// Workspace holds staged archive entries.
type Workspace struct {
	backend  string
	fs       billy.Filesystem
	root     string
	manifest []manifestEntry
	bytes    int64
	closed   bool
}

// New creates an empty workspace. For the disk backend parentDir selects where
// the temporary directory is created; empty uses the system temp dir.
func New(backend, parentDir string) (*Workspace, error) {
	switch backend {
	case "", BackendMemory:
		return &Workspace{backend: BackendMemory, fs: memfs.New()}, nil
	case BackendDisk:
		if parentDir != "" {
			if err := os.MkdirAll(parentDir, 0o755); err != nil {
				return nil, fmt.Errorf("create workspace parent: %w", err)
			}
		}
		root, err := os.MkdirTemp(parentDir, "sumofix-*")
		if err != nil {
			return nil, fmt.Errorf("create workspace dir: %w", err)
		}
		return &Workspace{backend: BackendDisk, fs: osfs.New(root), root: root}, nil
	default:
		return nil, fmt.Errorf("unknown workspace backend %q", backend)
	}
}

// Backend reports which backend holds the entries.
func (w *Workspace) Backend() string { return w.backend }

// Root returns the temporary directory of a disk workspace, or "" in memory.
func (w *Workspace) Root() string { return w.root }

// Len returns the number of staged entries.
func (w *Workspace) Len() int { return len(w.manifest) }

// Bytes returns the total payload size of staged entries.
func (w *Workspace) Bytes() int64 { return w.bytes }

// Stage writes entries into the workspace and records their order.
func (w *Workspace) Stage(entries []archive.Entry) error {
	if w.closed {
		return ErrClosed
	}
	for _, entry := range entries {
		if entry.IsDir() {
			dir := strings.TrimSuffix(entry.Name, "/")
			if err := w.fs.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("stage %q: %w", entry.Name, err)
			}
		} else {
			if parent := path.Dir(entry.Name); parent != "." {
				if err := w.fs.MkdirAll(parent, 0o755); err != nil {
					return fmt.Errorf("stage %q: %w", entry.Name, err)
				}
			}
			if err := util.WriteFile(w.fs, entry.Name, entry.Data, filePerm(entry.Mode)); err != nil {
				return fmt.Errorf("stage %q: %w", entry.Name, err)
			}
			w.bytes += int64(len(entry.Data))
		}
		w.manifest = append(w.manifest, manifestEntry{
			name:     entry.Name,
			modified: entry.Modified,
			mode:     entry.Mode,
			dir:      entry.IsDir(),
		})
	}
	return nil
}

// Collect reads every staged entry back in staging order.
func (w *Workspace) Collect() ([]archive.Entry, error) {
	if w.closed {
		return nil, ErrClosed
	}
	entries := make([]archive.Entry, 0, len(w.manifest))
	for _, m := range w.manifest {
		entry := archive.Entry{Name: m.name, Modified: m.modified, Mode: m.mode}
		if !m.dir {
			data, err := util.ReadFile(w.fs, m.name)
			if err != nil {
				return nil, fmt.Errorf("collect %q: %w", m.name, err)
			}
			entry.Data = data
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Close discards the workspace. It is safe to call more than once.
func (w *Workspace) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.manifest = nil
	if w.root != "" {
		if err := os.RemoveAll(w.root); err != nil {
			return fmt.Errorf("remove workspace dir: %w", err)
		}
	}
	return nil
}

func filePerm(mode fs.FileMode) fs.FileMode {
	if perm := mode.Perm(); perm != 0 {
		return perm
	}
	return 0o644
}

package workspace

import (
	"bytes"
	"os"
	"testing"
	"time"

	"sumofix/internal/archive"
)

func sampleEntries() []archive.Entry {
	modified := time.Date(2021, 7, 4, 10, 0, 0, 0, time.UTC)
	return []archive.Entry{
		{Name: "z.bin", Data: []byte{0, 1, 2}, Modified: modified},
		{Name: "textures/", Modified: modified, Mode: os.ModeDir | 0o755},
		{Name: "textures/wood.png", Data: []byte("wood"), Modified: modified, Mode: 0o600},
		{Name: "deep/nested/a.txt", Data: []byte("a"), Modified: modified},
	}
}

func TestStageCollectPreservesOrder(t *testing.T) {
	for _, backend := range []string{BackendMemory, BackendDisk} {
		t.Run(backend, func(t *testing.T) {
			ws, err := New(backend, t.TempDir())
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer ws.Close()

			entries := sampleEntries()
			if err := ws.Stage(entries); err != nil {
				t.Fatalf("Stage: %v", err)
			}
			if ws.Len() != len(entries) {
				t.Fatalf("expected %d staged, got %d", len(entries), ws.Len())
			}
			if ws.Bytes() != 8 {
				t.Fatalf("expected 8 staged bytes, got %d", ws.Bytes())
			}

			got, err := ws.Collect()
			if err != nil {
				t.Fatalf("Collect: %v", err)
			}
			if len(got) != len(entries) {
				t.Fatalf("expected %d entries, got %d", len(entries), len(got))
			}
			for i := range entries {
				if got[i].Name != entries[i].Name {
					t.Fatalf("entry %d: got %q want %q", i, got[i].Name, entries[i].Name)
				}
				if !bytes.Equal(got[i].Data, entries[i].Data) {
					t.Fatalf("entry %q: data %q want %q", entries[i].Name, got[i].Data, entries[i].Data)
				}
				if !got[i].Modified.Equal(entries[i].Modified) || got[i].Mode != entries[i].Mode {
					t.Fatalf("entry %q: metadata not preserved", entries[i].Name)
				}
			}
		})
	}
}

func TestDiskWorkspaceRemovedOnClose(t *testing.T) {
	ws, err := New(BackendDisk, t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	root := ws.Root()
	if root == "" {
		t.Fatal("expected disk workspace root")
	}
	if err := ws.Stage(sampleEntries()); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("expected root to exist: %v", err)
	}

	if err := ws.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Fatalf("expected root removed, stat err=%v", err)
	}
	if err := ws.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := ws.Collect(); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	if _, err := New("s3", ""); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestMemoryWorkspaceHasNoRoot(t *testing.T) {
	ws, err := New("", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ws.Backend() != BackendMemory || ws.Root() != "" {
		t.Fatalf("unexpected memory workspace: backend=%q root=%q", ws.Backend(), ws.Root())
	}
}

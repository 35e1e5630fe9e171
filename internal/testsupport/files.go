package testsupport

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
)

// Member is one entry of a test archive.
type Member struct {
	Name string
	Data string
}

// Stamp is the modification time given to every member built by BuildArchive.
var Stamp = time.Date(2023, 6, 15, 8, 30, 0, 0, time.UTC)

// BuildArchive returns zip bytes holding members in order.
func BuildArchive(t testing.TB, members ...Member) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: m.Name, Method: zip.Deflate, Modified: Stamp})
		if err != nil {
			t.Fatalf("create %s: %v", m.Name, err)
		}
		if _, err := io.WriteString(w, m.Data); err != nil {
			t.Fatalf("write %s: %v", m.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

// WriteArchive builds an archive from members and writes it to path.
func WriteArchive(t testing.TB, path string, members ...Member) {
	t.Helper()
	WriteFile(t, path, BuildArchive(t, members...))
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadArchive opens the archive at path and returns every member in order.
func ReadArchive(t testing.TB, path string) []Member {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive %s: %v", path, err)
	}
	members := make([]Member, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open member %s: %v", f.Name, err)
		}
		payload, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read member %s: %v", f.Name, err)
		}
		members = append(members, Member{Name: f.Name, Data: string(payload)})
	}
	return members
}

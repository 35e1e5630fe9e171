package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"sumofix/internal/document"
)

// DocumentName is the archive entry holding the JSON scene document.
const DocumentName = "data.txt"

// maxEntryBytes bounds a single decompressed entry.
const maxEntryBytes = 1 << 30

var (
	// ErrCorruptArchive indicates the container could not be opened or read.
	ErrCorruptArchive = errors.New("corrupt archive")
	// ErrMissingDocument indicates data.txt is absent or not valid JSON.
	ErrMissingDocument = errors.New("missing document")
)

// Entry is one non-document archive member.
type Entry struct {
	Name     string
	Data     []byte
	Modified time.Time
	Mode     fs.FileMode
}

// IsDir reports whether the entry is a directory marker.
func (e Entry) IsDir() bool {
	return strings.HasSuffix(e.Name, "/")
}

// Contents is an unpacked archive.
type Contents struct {
	// DocumentBytes is the raw data.txt payload as stored in the archive.
	DocumentBytes []byte
	// Document is DocumentBytes parsed.
	Document *document.Value
	// Entries lists every other member in archive order.
	Entries []Entry
}

// Unpack opens a zip container held in memory and reads every member.
func Unpack(data []byte) (*Contents, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open container: %w", ErrCorruptArchive, err)
	}

	contents := &Contents{}
	seen := make(map[string]struct{}, len(zr.File))
	foundDocument := false
	for _, file := range zr.File {
		if err := checkName(file.Name); err != nil {
			return nil, err
		}
		if _, dup := seen[file.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate entry %q", ErrCorruptArchive, file.Name)
		}
		seen[file.Name] = struct{}{}

		payload, err := readEntry(file)
		if err != nil {
			return nil, fmt.Errorf("%w: read %q: %w", ErrCorruptArchive, file.Name, err)
		}
		if file.Name == DocumentName {
			contents.DocumentBytes = payload
			foundDocument = true
			continue
		}
		contents.Entries = append(contents.Entries, Entry{
			Name:     file.Name,
			Data:     payload,
			Modified: file.Modified,
			Mode:     file.Mode(),
		})
	}

	if !foundDocument {
		return nil, fmt.Errorf("%w: no %s entry", ErrMissingDocument, DocumentName)
	}
	doc, err := document.Parse(contents.DocumentBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrMissingDocument, DocumentName, err)
	}
	contents.Document = doc
	return contents, nil
}

// Pack serializes doc and writes a deflate-compressed zip to w holding
// data.txt followed by every entry in order. The document is serialized
// before anything is written, so a marshal failure leaves w untouched.
func Pack(w io.Writer, doc *document.Value, entries []Entry) error {
	payload, err := document.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", DocumentName, err)
	}

	zw := zip.NewWriter(w)
	docHeader := &zip.FileHeader{
		Name:     DocumentName,
		Method:   zip.Deflate,
		Modified: time.Now(),
	}
	docHeader.SetMode(0o644)
	if err := writeEntry(zw, docHeader, payload); err != nil {
		return err
	}

	for _, entry := range entries {
		header := &zip.FileHeader{
			Name:     entry.Name,
			Method:   zip.Deflate,
			Modified: entry.Modified,
		}
		if entry.IsDir() {
			header.Method = zip.Store
		}
		if entry.Mode != 0 {
			header.SetMode(entry.Mode)
		}
		if err := writeEntry(zw, header, entry.Data); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, header *zip.FileHeader, data []byte) error {
	fw, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create entry %q: %w", header.Name, err)
	}
	if strings.HasSuffix(header.Name, "/") {
		return nil
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("write entry %q: %w", header.Name, err)
	}
	return nil
}

func readEntry(file *zip.File) ([]byte, error) {
	if strings.HasSuffix(file.Name, "/") {
		return nil, nil
	}
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	payload, err := io.ReadAll(io.LimitReader(rc, maxEntryBytes+1))
	if err != nil {
		return nil, err
	}
	if len(payload) > maxEntryBytes {
		return nil, fmt.Errorf("entry exceeds %d bytes", maxEntryBytes)
	}
	return payload, nil
}

// checkName rejects member names that would escape a workspace root.
func checkName(name string) error {
	trimmed := strings.TrimSuffix(name, "/")
	if trimmed == "" || strings.Contains(trimmed, "\\") || !fs.ValidPath(trimmed) {
		return fmt.Errorf("%w: unsafe entry name %q", ErrCorruptArchive, name)
	}
	return nil
}

package archive_test

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"

	"sumofix/internal/archive"
	"sumofix/internal/document"
)

type member struct {
	name string
	data string
}

func buildZip(t *testing.T, members ...member) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		header := &zip.FileHeader{
			Name:     m.name,
			Method:   zip.Deflate,
			Modified: time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC),
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			t.Fatalf("create %s: %v", m.name, err)
		}
		if _, err := io.WriteString(w, m.data); err != nil {
			t.Fatalf("write %s: %v", m.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestUnpackKeepsEntryOrder(t *testing.T) {
	data := buildZip(t,
		member{"assets/a.bin", "AAAA"},
		member{"data.txt", `{"data":{"scene":{}}}`},
		member{"assets/", ""},
		member{"z.bin", "\x00\x01\x02"},
	)

	contents, err := archive.Unpack(data)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if string(contents.DocumentBytes) != `{"data":{"scene":{}}}` {
		t.Fatalf("unexpected document bytes %q", contents.DocumentBytes)
	}
	if contents.Document.Kind() != document.KindObject {
		t.Fatalf("expected parsed object, got %s", contents.Document.Kind())
	}

	wantNames := []string{"assets/a.bin", "assets/", "z.bin"}
	if len(contents.Entries) != len(wantNames) {
		t.Fatalf("expected %d entries, got %d", len(wantNames), len(contents.Entries))
	}
	for i, name := range wantNames {
		if contents.Entries[i].Name != name {
			t.Fatalf("entry %d: got %q want %q", i, contents.Entries[i].Name, name)
		}
	}
	if !contents.Entries[1].IsDir() {
		t.Fatal("expected directory entry to be preserved")
	}
	if string(contents.Entries[2].Data) != "\x00\x01\x02" {
		t.Fatalf("binary payload altered: %q", contents.Entries[2].Data)
	}
}

func TestPackRoundTrip(t *testing.T) {
	doc, err := document.Parse([]byte(`{"b":1,"a":"é"}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	modified := time.Date(2022, 1, 2, 3, 4, 6, 0, time.UTC)
	entries := []archive.Entry{
		{Name: "images/", Modified: modified},
		{Name: "images/tex.png", Data: []byte("png-bytes"), Modified: modified, Mode: 0o600},
		{Name: "notes.txt", Data: []byte("hello"), Modified: modified},
	}

	var buf bytes.Buffer
	if err := archive.Pack(&buf, doc, entries); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if zr.File[0].Name != archive.DocumentName {
		t.Fatalf("expected %s first, got %q", archive.DocumentName, zr.File[0].Name)
	}
	if zr.File[0].Method != zip.Deflate {
		t.Fatalf("expected deflate for document, got %d", zr.File[0].Method)
	}

	contents, err := archive.Unpack(buf.Bytes())
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	wantDoc := "{\n  \"b\": 1,\n  \"a\": \"é\"\n}"
	if string(contents.DocumentBytes) != wantDoc {
		t.Fatalf("unexpected document:\n%s", contents.DocumentBytes)
	}
	if len(contents.Entries) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(contents.Entries))
	}
	for i, want := range entries {
		got := contents.Entries[i]
		if got.Name != want.Name {
			t.Fatalf("entry %d name: got %q want %q", i, got.Name, want.Name)
		}
		if !bytes.Equal(got.Data, want.Data) {
			t.Fatalf("entry %q data: got %q want %q", want.Name, got.Data, want.Data)
		}
		if !got.Modified.Equal(want.Modified) {
			t.Fatalf("entry %q modified: got %v want %v", want.Name, got.Modified, want.Modified)
		}
	}
	if perm := contents.Entries[1].Mode.Perm(); perm != 0o600 {
		t.Fatalf("expected mode 0600 preserved, got %o", perm)
	}
}

func TestUnpackFailures(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"not a zip", []byte("this is not a zip file"), archive.ErrCorruptArchive},
		{"empty", nil, archive.ErrCorruptArchive},
		{"missing document", buildZip(t, member{"other.txt", "x"}), archive.ErrMissingDocument},
		{"invalid json", buildZip(t, member{"data.txt", "{not json"}), archive.ErrMissingDocument},
		{"trailing data", buildZip(t, member{"data.txt", "{} {}"}), archive.ErrMissingDocument},
		{"parent escape", buildZip(t, member{"data.txt", "{}"}, member{"../evil", "x"}), archive.ErrCorruptArchive},
		{"absolute name", buildZip(t, member{"data.txt", "{}"}, member{"/etc/passwd", "x"}), archive.ErrCorruptArchive},
		{"backslash name", buildZip(t, member{"data.txt", "{}"}, member{`a\b`, "x"}), archive.ErrCorruptArchive},
		{"duplicate name", buildZip(t, member{"data.txt", "{}"}, member{"a", "1"}, member{"a", "2"}), archive.ErrCorruptArchive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := archive.Unpack(tc.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

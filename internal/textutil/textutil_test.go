package textutil

import (
	"strings"
	"testing"
)

func TestFormatTags(t *testing.T) {
	if got := FormatTags(nil); got != "none" {
		t.Fatalf("FormatTags(nil) = %q", got)
	}
	if got := FormatTags([]string{"jpeg", "png", "svg+xml"}); got != "JPEG, PNG, SVG+XML" {
		t.Fatalf("unexpected tags %q", got)
	}
}

func TestBytesAndPlural(t *testing.T) {
	if got := Bytes(1500); got != "1.5 kB" {
		t.Fatalf("Bytes(1500) = %q", got)
	}
	if got := Bytes(-4); got != "0 B" {
		t.Fatalf("Bytes(-4) = %q", got)
	}
	if got := Plural(1, "archive", "archives"); got != "1 archive" {
		t.Fatalf("Plural(1) = %q", got)
	}
	if got := Plural(0, "archive", "archives"); got != "0 archives" {
		t.Fatalf("Plural(0) = %q", got)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := RenderTable(
		[]string{"Archive", "Removed"},
		[][]string{{"a.sumo", "2"}, {"b.sumo"}},
		[]Alignment{AlignLeft, AlignRight},
	)
	if !strings.Contains(out, "a.sumo") || !strings.Contains(out, "b.sumo") {
		t.Fatalf("rows missing from table:\n%s", out)
	}
	if !strings.Contains(out, "╭") {
		t.Fatalf("expected rounded style:\n%s", out)
	}
	if RenderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}

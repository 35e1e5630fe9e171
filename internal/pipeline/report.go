package pipeline

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"sumofix/internal/textutil"
)

// FormatResult renders the summary of one repaired archive.
func FormatResult(res *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repaired %s\n", filepath.Base(res.Input))
	fmt.Fprintf(&b, "  Output:             %s (%s)\n", res.Output, textutil.Bytes(res.OutputBytes))
	writeOutcome(&b, res.Outcome)
	return strings.TrimRight(b.String(), "\n")
}

func writeOutcome(b *strings.Builder, outcome Outcome) {
	images := outcome.Images
	fmt.Fprintf(b, "  Geometries renamed: %d\n", outcome.Geometry.Renamed)
	fmt.Fprintf(b, "  Image formats:      %s\n", textutil.FormatTags(images.Formats()))
	fmt.Fprintf(b, "  Images checked:     %d (%d failed, %d reverted)\n", images.Matched, images.Failed, images.Reverted)
	fmt.Fprintf(b, "  Fields removed:     %d\n", len(outcome.Removals))
	for _, removal := range outcome.Removals {
		parent := removal.ParentKey
		if parent == "" {
			parent = "(root)"
		}
		fmt.Fprintf(b, "    - %s in %s\n", removal.Key, parent)
	}
}

// FormatFailure renders a per-archive error.
func FormatFailure(input string, err error) string {
	return fmt.Sprintf("Failed to repair %s: %v", filepath.Base(input), err)
}

// FormatBatch renders the batch summary with a per-archive table.
func FormatBatch(batch *BatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repaired %d of %s from %s into %s\n",
		batch.Succeeded(),
		textutil.Plural(batch.Total(), "archive", "archives"),
		batch.Dir,
		batch.OutputDir,
	)
	if batch.Cancelled {
		b.WriteString("Batch cancelled before every archive was processed.\n")
	}
	if batch.Total() == 0 {
		b.WriteString("No archives found.")
		return b.String()
	}

	seen := map[string]struct{}{}
	rows := make([][]string, 0, batch.Total())
	for _, res := range batch.Results {
		for _, f := range res.Outcome.Images.Formats() {
			seen[f] = struct{}{}
		}
		rows = append(rows, []string{
			filepath.Base(res.Input),
			"repaired",
			strconv.Itoa(res.Outcome.Geometry.Renamed),
			strconv.Itoa(res.Outcome.Images.Matched),
			strconv.Itoa(res.Outcome.Images.Failed),
			strconv.Itoa(len(res.Outcome.Removals)),
			textutil.Bytes(res.OutputBytes),
		})
	}
	for _, failure := range batch.Failures {
		rows = append(rows, []string{filepath.Base(failure.Input), "failed", "", "", "", "", ""})
	}

	b.WriteString(textutil.RenderTable(
		[]string{"Archive", "Status", "Renamed", "Images", "Failed", "Removed", "Size"},
		rows,
		[]textutil.Alignment{
			textutil.AlignLeft, textutil.AlignLeft, textutil.AlignRight, textutil.AlignRight,
			textutil.AlignRight, textutil.AlignRight, textutil.AlignRight,
		},
	))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Image formats: %s\n", textutil.FormatTags(slices.Sorted(maps.Keys(seen))))
	for _, failure := range batch.Failures {
		fmt.Fprintf(&b, "%s\n", FormatFailure(failure.Input, failure.Err))
	}
	return strings.TrimRight(b.String(), "\n")
}

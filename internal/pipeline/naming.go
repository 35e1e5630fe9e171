package pipeline

import (
	"path/filepath"
	"strings"
)

// OutputPath places the repaired archive beside input: scene.sumo becomes
// scene<suffix>.sumo.
func OutputPath(input, suffix string) string {
	return filepath.Join(filepath.Dir(input), outputName(input, suffix))
}

// BatchOutputPath places the repaired archive in outDir under the same
// suffixed name OutputPath would use.
func BatchOutputPath(input, outDir, suffix string) string {
	return filepath.Join(outDir, outputName(input, suffix))
}

func outputName(input, suffix string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + suffix + ext
}

// HasArchiveExtension reports whether name ends in ext, ignoring case.
func HasArchiveExtension(name, ext string) bool {
	return ext != "" && strings.EqualFold(filepath.Ext(name), ext)
}

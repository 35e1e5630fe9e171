package images

import (
	"encoding/base64"
	"maps"
	"regexp"
	"slices"
	"strings"

	"sumofix/internal/document"
	"sumofix/internal/treewalk"
)

var dataURIPattern = regexp.MustCompile(`(?i)^data:image/([a-z0-9]+);base64,`)

// Failure records one embedded image that did not decode.
type Failure struct {
	Path     treewalk.Path
	Format   string
	Reverted bool
	Err      error
}

// ScanResult accumulates the outcome of one validation pass.
type ScanResult struct {
	// Matched counts strings that look like embedded images.
	Matched int
	// Decoded counts matches whose payload is valid base64.
	Decoded int
	// Failed counts matches whose payload did not decode.
	Failed int
	// Reverted counts failures replaced by the shadow value.
	Reverted int
	// Failures lists every failed value in traversal order.
	Failures []Failure

	formats map[string]struct{}
}

// Formats returns the distinct lower-case format tags seen, sorted.
func (r *ScanResult) Formats() []string {
	return slices.Sorted(maps.Keys(r.formats))
}

func (r *ScanResult) addFormat(format string) {
	if r.formats == nil {
		r.formats = make(map[string]struct{})
	}
	r.formats[format] = struct{}{}
}

// ParseDataURI splits a data:image/<format>;base64,<payload> string. The
// format is lower-cased. ok is false when s does not match the pattern.
func ParseDataURI(s string) (format, payload string, ok bool) {
	m := dataURIPattern.FindStringSubmatchIndex(s)
	if m == nil {
		return "", "", false
	}
	return strings.ToLower(s[m[2]:m[3]]), s[m[1]:], true
}

// Validate checks every embedded image string in doc. Values whose payload
// is not valid standard base64 are replaced by the value at the same path in
// shadow when shadow has one that differs; otherwise they are left as is and
// only counted. shadow may be nil.
func Validate(doc, shadow *document.Value) ScanResult {
	var result ScanResult
	treewalk.Walk(doc, shadow, func(n treewalk.Node) treewalk.Action {
		s, ok := n.Value.Str()
		if !ok {
			return treewalk.Descend()
		}
		format, payload, ok := ParseDataURI(s)
		if !ok {
			return treewalk.SkipSubtree()
		}
		result.Matched++
		result.addFormat(format)

		if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
			result.Failed++
			failure := Failure{Path: n.Path, Format: format, Err: err}
			if n.Shadow != nil && !document.Equal(n.Shadow, n.Value) {
				failure.Reverted = true
				result.Reverted++
				result.Failures = append(result.Failures, failure)
				return treewalk.Replace(n.Shadow.Clone())
			}
			result.Failures = append(result.Failures, failure)
			return treewalk.SkipSubtree()
		}

		result.Decoded++
		return treewalk.SkipSubtree()
	})
	return result
}

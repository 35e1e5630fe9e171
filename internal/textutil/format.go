package textutil

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upper = cases.Upper(language.Und)

// FormatTags upper-cases tags and joins them with commas, or returns "none".
func FormatTags(tags []string) string {
	if len(tags) == 0 {
		return "none"
	}
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = upper.String(tag)
	}
	return strings.Join(out, ", ")
}

// Bytes renders n as a SI size such as "1.2 kB".
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Plural renders "1 archive" or "3 archives".
func Plural(n int, singular, plural string) string {
	word := plural
	if n == 1 {
		word = singular
	}
	return strconv.Itoa(n) + " " + word
}

package scrub

import (
	"strings"

	"sumofix/internal/document"
	"sumofix/internal/treewalk"
)

// DefaultEndpoint is the defunct authentication endpoint referenced by old
// scene documents.
const DefaultEndpoint = "sumo.app/api/auth/check"

// DefaultProtectedKeys returns the keys whose values are never inspected.
func DefaultProtectedKeys() []string {
	return []string{"materials", "textures", "images"}
}

// Options configures a scrub pass.
type Options struct {
	// Endpoint is the substring that marks a value for removal.
	Endpoint string
	// ProtectedKeys name members whose values are skipped entirely.
	ProtectedKeys []string
}

// DefaultOptions returns the built-in endpoint and protected keys.
func DefaultOptions() Options {
	return Options{Endpoint: DefaultEndpoint, ProtectedKeys: DefaultProtectedKeys()}
}

// Removal records one deleted member.
type Removal struct {
	// ParentKey is the key of the mapping that held the member, empty at the
	// document root.
	ParentKey string
	// Key is the deleted member's key.
	Key string
	// Path is the full location of the deleted member.
	Path treewalk.Path
}

// RemovalLog lists deletions in the order they were applied.
type RemovalLog []Removal

type pending struct {
	owner   *document.Object
	removal Removal
}

// Scrub deletes every object member whose string value contains the
// endpoint, skipping protected subtrees. Deletions happen after the scan so
// no mapping changes while it is being traversed. An empty endpoint removes
// nothing.
func Scrub(doc *document.Value, opts Options) RemovalLog {
	if opts.Endpoint == "" {
		return nil
	}
	protected := make(map[string]struct{}, len(opts.ProtectedKeys))
	for _, key := range opts.ProtectedKeys {
		protected[key] = struct{}{}
	}

	var marked []pending
	treewalk.Walk(doc, nil, func(n treewalk.Node) treewalk.Action {
		owner := n.Parent.Object()
		if owner != nil {
			if _, skip := protected[n.Key]; skip {
				return treewalk.SkipSubtree()
			}
		}
		s, ok := n.Value.Str()
		if !ok {
			return treewalk.Descend()
		}
		if owner != nil && strings.Contains(s, opts.Endpoint) {
			marked = append(marked, pending{
				owner:   owner,
				removal: Removal{ParentKey: n.ParentKey, Key: n.Key, Path: n.Path},
			})
		}
		return treewalk.SkipSubtree()
	})

	log := make(RemovalLog, 0, len(marked))
	for _, p := range marked {
		if p.owner.Delete(p.removal.Key) {
			log = append(log, p.removal)
		}
	}
	return log
}

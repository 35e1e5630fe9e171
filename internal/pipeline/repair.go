package pipeline

import (
	"fmt"

	"sumofix/internal/config"
	"sumofix/internal/document"
	"sumofix/internal/geometry"
	"sumofix/internal/images"
	"sumofix/internal/scrub"
)

// Rules holds the immutable tables a repair pass reads.
type Rules struct {
	Geometry *geometry.Table
	Scrub    scrub.Options
}

// DefaultRules returns the built-in rename table, endpoint and protected keys.
func DefaultRules() Rules {
	return Rules{Geometry: geometry.DefaultTable(), Scrub: scrub.DefaultOptions()}
}

// RulesFromConfig builds rules from the [repair] section.
func RulesFromConfig(cfg *config.Config) (Rules, error) {
	if cfg == nil {
		return DefaultRules(), nil
	}
	table, err := geometry.NewTable(cfg.Repair.GeometryRenames)
	if err != nil {
		return Rules{}, fmt.Errorf("geometry renames: %w", err)
	}
	return Rules{
		Geometry: table,
		Scrub: scrub.Options{
			Endpoint:      cfg.Repair.DefunctEndpoint,
			ProtectedKeys: append([]string(nil), cfg.Repair.ProtectedKeys...),
		},
	}, nil
}

// Outcome is what one repair pass changed.
type Outcome struct {
	Geometry geometry.Result
	Images   images.ScanResult
	Removals scrub.RemovalLog
}

// Repair runs the three document passes in order, mutating doc in place.
// shadow is the pristine parse used to revert broken images and is never
// modified. Repair performs no I/O.
func (r Rules) Repair(doc, shadow *document.Value) Outcome {
	table := r.Geometry
	if table == nil {
		table = geometry.DefaultTable()
	}
	var outcome Outcome
	outcome.Geometry = table.Normalize(doc)
	outcome.Images = images.Validate(doc, shadow)
	outcome.Removals = scrub.Scrub(doc, r.Scrub)
	return outcome
}

// Repair applies DefaultRules.
func Repair(doc, shadow *document.Value) Outcome {
	return DefaultRules().Repair(doc, shadow)
}

package pipeline

// Stage names one step of the per-archive state machine.
type Stage string

const (
	StageUnpacked           Stage = "unpacked"
	StageGeometryFixed      Stage = "geometry_fixed"
	StageImagesValidated    Stage = "images_validated"
	StageReferencesScrubbed Stage = "references_scrubbed"
	StageRepacked           Stage = "repacked"
)

// Stages lists the states in the order every archive passes through them.
func Stages() []Stage {
	return []Stage{
		StageUnpacked,
		StageGeometryFixed,
		StageImagesValidated,
		StageReferencesScrubbed,
		StageRepacked,
	}
}

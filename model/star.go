package model

// Star represents an occultation target. Either the physical pair
// (RadiusSolar, DistanceParsec) or a directly measured AngularDiameterMas
// may be supplied; when both are present the physical pair wins and the
// angular value is treated as advisory.
type Star struct {
	ID   string
	Name string

	// RadiusSolar is the stellar radius in solar radii.
	RadiusSolar float64
	// DistanceParsec is the distance to the star in parsecs.
	DistanceParsec float64

	// AngularDiameterMas is an optional pre-computed apparent diameter in
	// milliarcseconds, for callers that already have an interferometric or
	// catalog value.
	AngularDiameterMas float64
}

// HasPhysical reports whether the star carries a usable radius/distance pair.
func (s *Star) HasPhysical() bool {
	return s.RadiusSolar > 0 && s.DistanceParsec > 0
}

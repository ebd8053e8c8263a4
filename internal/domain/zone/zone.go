// internal/domain/zone/zone.go
package zone

// ID is the stable key of a monitored zone. It never changes once published in the catalog.
type ID string

// Hazard is the kind of disaster a zone is monitored for.
type Hazard string

const (
	HazardFlood     Hazard = "flood"
	HazardDrought   Hazard = "drought"
	HazardLandslide Hazard = "landslide"
)

// Valid reports whether h is one of the known hazard kinds.
func (h Hazard) Valid() bool {
	switch h {
	case HazardFlood, HazardDrought, HazardLandslide:
		return true
	default:
		return false
	}
}

// Zone is a monitored geography. DisplayName is also the key the observation store uses.
type Zone struct {
	ID          ID
	DisplayName string
	Hazards     []Hazard // ordered, Hazards[0] is the primary hazard
	County      string
	Lat         float64
	Lon         float64
	Aliases     []string // extra chat keywords, lower case
}

// PrimaryHazard returns the first configured hazard of the zone.
func (z Zone) PrimaryHazard() Hazard {
	if len(z.Hazards) == 0 {
		return HazardFlood
	}
	return z.Hazards[0]
}

// HasHazard reports whether the zone is tagged with h.
func (z Zone) HasHazard(h Hazard) bool {
	for _, tag := range z.Hazards {
		if tag == h {
			return true
		}
	}
	return false
}

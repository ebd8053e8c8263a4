// internal/domain/observation/observation.go
package observation

import "time"

// Observation is one weather reading for a zone, keyed by the zone display name.
// Rainfall1hMm is 0 when the provider reported no rain figure.
type Observation struct {
	ID           int64
	Zone         string
	TemperatureC float64
	Rainfall1hMm float64
	HumidityPct  float64
	Lat          float64
	Lon          float64
	ObservedAt   time.Time
}

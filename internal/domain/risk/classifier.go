// internal/domain/risk/classifier.go
package risk

import (
	"fmt"
	"math"

	"geoguard/internal/domain/observation"
	"geoguard/internal/domain/zone"
)

// Label is the verdict attached to an observation.
type Label string

const (
	LabelNormal           Label = "Normal"
	LabelHeavyRainWarning Label = "HeavyRainWarning"
	LabelCriticalFlood    Label = "CriticalFlood"
	LabelDroughtRisk      Label = "DroughtRisk"
	LabelLandslideRisk    Label = "LandslideRisk"
)

// Thresholds. Rainfall values are millimetres in the last hour.
const (
	CriticalFloodRainMm = 50.0
	LandslideRainMm     = 15.0
	HeavyRainMm         = 10.0
	DroughtTemperatureC = 30.0
	DroughtMaxRainMm    = 1.0
)

// Classification is derived on every query and never stored.
type Classification struct {
	Label  Label
	Reason string
	// Alerts lists every threshold the reading crosses, strongest first.
	Alerts []string
}

// Text returns the short human form of the label used in replies.
func (l Label) Text() string {
	switch l {
	case LabelCriticalFlood:
		return "CRITICAL: Flood"
	case LabelLandslideRisk:
		return "Landslide Risk"
	case LabelDroughtRisk:
		return "Heat/Drought Risk"
	case LabelHeavyRainWarning:
		return "Heavy Rain Warning"
	default:
		return "Normal"
	}
}

// IsAlert reports whether the label warrants a broadcast.
func (l Label) IsAlert() bool { return l != LabelNormal && l != "" }

// Classify applies the rules in priority order; the first match wins.
func Classify(obs observation.Observation, hazard zone.Hazard) Classification {
	rain := finiteOrZero(obs.Rainfall1hMm)
	temp := obs.TemperatureC
	alerts := collectAlerts(rain, temp, hazard)

	switch {
	case rain > CriticalFloodRainMm:
		return Classification{
			Label:  LabelCriticalFlood,
			Reason: fmt.Sprintf("%smm of rain in the last hour, move to higher ground.", formatNumber(rain)),
			Alerts: alerts,
		}
	case hazard == zone.HazardLandslide && rain > LandslideRainMm:
		return Classification{
			Label:  LabelLandslideRisk,
			Reason: "Saturated slopes, avoid steep ground and river banks.",
			Alerts: alerts,
		}
	case hazard == zone.HazardDrought && temp > DroughtTemperatureC && rain < DroughtMaxRainMm:
		return Classification{
			Label:  LabelDroughtRisk,
			Reason: "Hot and dry, conserve water and protect livestock.",
			Alerts: alerts,
		}
	case rain > HeavyRainMm:
		return Classification{
			Label:  LabelHeavyRainWarning,
			Reason: "Heavy rain, watch for rising water.",
			Alerts: alerts,
		}
	default:
		return Classification{Label: LabelNormal, Reason: "No threshold exceeded.", Alerts: alerts}
	}
}

func collectAlerts(rain, temp float64, hazard zone.Hazard) []string {
	var alerts []string
	if rain > CriticalFloodRainMm {
		alerts = append(alerts, "rainfall above 50mm/h")
	} else if rain > HeavyRainMm {
		alerts = append(alerts, "rainfall above 10mm/h")
	}
	if hazard == zone.HazardLandslide && rain > LandslideRainMm {
		alerts = append(alerts, "landslide rainfall above 15mm/h")
	}
	if hazard == zone.HazardDrought && temp > DroughtTemperatureC && rain < DroughtMaxRainMm {
		alerts = append(alerts, "temperature above 30C with no rain")
	}
	return alerts
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

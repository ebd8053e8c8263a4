// internal/domain/menu/definition.go
package menu

import "geoguard/internal/domain/zone"

// Definition describes both menu trees. It is loaded from the catalog at startup.
type Definition struct {
	Forecast ForecastDefinition
	Report   ReportDefinition
}

// ForecastDefinition drills down region -> zone.
type ForecastDefinition struct {
	Title   string
	Regions []RegionDefinition
}

// RegionDefinition is one curated region of the forecast menu.
// Hazard, when set, overrides the primary hazard of every zone in the region.
type RegionDefinition struct {
	Label  string
	Title  string
	Hazard zone.Hazard
	Zones  []ZoneRef
}

// ZoneRef points at a registry zone. Label defaults to the zone display name.
type ZoneRef struct {
	ID    zone.ID
	Label string
}

// ReportDefinition is the sign -> region reporting flow.
type ReportDefinition struct {
	SignTitle   string
	RegionTitle string
	Signs       []SignDefinition
	Regions     []ReportRegionDefinition
}

// SignDefinition is a traditional warning sign. Label is shown in the menu, Name is echoed back.
type SignDefinition struct {
	Label  string
	Name   string
	Hazard zone.Hazard
}

// ReportRegionDefinition is a location choice in the reporting flow.
type ReportRegionDefinition struct {
	Label string
	Name  string
	Zone  zone.ID
}

// internal/infra/config/catalog.go
package config

import (
	_ "embed"
	"fmt"
	"os"

	"geoguard/internal/domain/menu"
	"geoguard/internal/domain/sign"
	"geoguard/internal/domain/zone"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the static configuration the menus and the registry are built from.
type Catalog struct {
	Registry *zone.Registry
	Resolver *menu.Resolver
	Glossary *sign.Glossary
}

type catalogFile struct {
	Zones    []zoneEntry   `yaml:"zones"`
	Forecast forecastEntry `yaml:"forecast"`
	Report   reportEntry   `yaml:"report"`
	Glossary []signEntry   `yaml:"glossary"`
}

type zoneEntry struct {
	ID          string   `yaml:"id"`
	DisplayName string   `yaml:"display_name"`
	County      string   `yaml:"county"`
	Hazards     []string `yaml:"hazards"`
	Lat         float64  `yaml:"lat"`
	Lon         float64  `yaml:"lon"`
	Aliases     []string `yaml:"aliases"`
}

type forecastEntry struct {
	Title   string        `yaml:"title"`
	Regions []regionEntry `yaml:"regions"`
}

type regionEntry struct {
	Label  string         `yaml:"label"`
	Title  string         `yaml:"title"`
	Hazard string         `yaml:"hazard"`
	Zones  []zoneRefEntry `yaml:"zones"`
}

type zoneRefEntry struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

type reportEntry struct {
	SignTitle   string              `yaml:"sign_title"`
	RegionTitle string              `yaml:"region_title"`
	Signs       []reportSignEntry   `yaml:"signs"`
	Regions     []reportRegionEntry `yaml:"regions"`
}

type reportSignEntry struct {
	Label  string `yaml:"label"`
	Name   string `yaml:"name"`
	Hazard string `yaml:"hazard"`
}

type reportRegionEntry struct {
	Label string `yaml:"label"`
	Name  string `yaml:"name"`
	Zone  string `yaml:"zone"`
}

type signEntry struct {
	Name     string   `yaml:"name"`
	Hazard   string   `yaml:"hazard"`
	Keywords []string `yaml:"keywords"`
	Meaning  string   `yaml:"meaning"`
}

// LoadCatalog reads the catalog from path, or the embedded default when path is empty.
// Any integrity problem (a menu pointing at an unknown zone, duplicate ids) is returned
// as an error and must stop startup.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
		}
		data = b
	}
	return ParseCatalog(data)
}

// ParseCatalog builds the registry, menu resolver and sign glossary from YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	zones := make([]zone.Zone, 0, len(f.Zones))
	for _, z := range f.Zones {
		hazards := make([]zone.Hazard, 0, len(z.Hazards))
		for _, h := range z.Hazards {
			hazards = append(hazards, zone.Hazard(h))
		}
		zones = append(zones, zone.Zone{
			ID:          zone.ID(z.ID),
			DisplayName: z.DisplayName,
			Hazards:     hazards,
			County:      z.County,
			Lat:         z.Lat,
			Lon:         z.Lon,
			Aliases:     z.Aliases,
		})
	}
	registry, err := zone.NewRegistry(zones)
	if err != nil {
		return nil, err
	}

	resolver, err := menu.NewResolver(f.menuDefinition(), registry)
	if err != nil {
		return nil, err
	}

	signs := make([]sign.Sign, 0, len(f.Glossary))
	for _, s := range f.Glossary {
		signs = append(signs, sign.Sign{
			Name:     s.Name,
			Hazard:   zone.Hazard(s.Hazard),
			Keywords: s.Keywords,
			Meaning:  s.Meaning,
		})
	}
	glossary, err := sign.NewGlossary(signs)
	if err != nil {
		return nil, err
	}

	return &Catalog{Registry: registry, Resolver: resolver, Glossary: glossary}, nil
}

func (f catalogFile) menuDefinition() menu.Definition {
	def := menu.Definition{
		Forecast: menu.ForecastDefinition{Title: f.Forecast.Title},
		Report: menu.ReportDefinition{
			SignTitle:   f.Report.SignTitle,
			RegionTitle: f.Report.RegionTitle,
		},
	}
	for _, r := range f.Forecast.Regions {
		region := menu.RegionDefinition{
			Label:  r.Label,
			Title:  r.Title,
			Hazard: zone.Hazard(r.Hazard),
		}
		for _, ref := range r.Zones {
			region.Zones = append(region.Zones, menu.ZoneRef{ID: zone.ID(ref.ID), Label: ref.Label})
		}
		def.Forecast.Regions = append(def.Forecast.Regions, region)
	}
	for _, s := range f.Report.Signs {
		def.Report.Signs = append(def.Report.Signs, menu.SignDefinition{
			Label:  s.Label,
			Name:   s.Name,
			Hazard: zone.Hazard(s.Hazard),
		})
	}
	for _, r := range f.Report.Regions {
		def.Report.Regions = append(def.Report.Regions, menu.ReportRegionDefinition{
			Label: r.Label,
			Name:  r.Name,
			Zone:  zone.ID(r.Zone),
		})
	}
	return def
}

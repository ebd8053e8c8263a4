// internal/domain/zone/registry.go
package zone

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrEmptyRegistry = errors.New("zone registry: no zones configured")

// Registry is the read-only set of monitored zones. It is safe for concurrent use.
type Registry struct {
	zones   []Zone
	byID    map[ID]int
	byName  map[string]int
	aliases []alias // longest first
}

type alias struct {
	text string
	id   ID
}

// NewRegistry validates zones and builds the lookup indexes.
// Zones keep their declaration order.
func NewRegistry(zones []Zone) (*Registry, error) {
	if len(zones) == 0 {
		return nil, ErrEmptyRegistry
	}

	r := &Registry{
		zones:  make([]Zone, 0, len(zones)),
		byID:   make(map[ID]int, len(zones)),
		byName: make(map[string]int, len(zones)),
	}
	seenAlias := make(map[string]ID)

	for i, z := range zones {
		if strings.TrimSpace(string(z.ID)) == "" {
			return nil, fmt.Errorf("zone registry: entry %d has an empty id", i)
		}
		if strings.TrimSpace(z.DisplayName) == "" {
			return nil, fmt.Errorf("zone registry: zone %q has an empty display name", z.ID)
		}
		if _, dup := r.byID[z.ID]; dup {
			return nil, fmt.Errorf("zone registry: duplicate zone id %q", z.ID)
		}
		if _, dup := r.byName[z.DisplayName]; dup {
			return nil, fmt.Errorf("zone registry: duplicate display name %q", z.DisplayName)
		}
		if len(z.Hazards) == 0 {
			return nil, fmt.Errorf("zone registry: zone %q has no hazards", z.ID)
		}
		for _, h := range z.Hazards {
			if !h.Valid() {
				return nil, fmt.Errorf("zone registry: zone %q has unknown hazard %q", z.ID, h)
			}
		}

		z.Hazards = append([]Hazard(nil), z.Hazards...)
		z.Aliases = append([]string(nil), z.Aliases...)
		r.byID[z.ID] = len(r.zones)
		r.byName[z.DisplayName] = len(r.zones)
		r.zones = append(r.zones, z)

		for _, text := range aliasTexts(z) {
			if owner, taken := seenAlias[text]; taken {
				if owner != z.ID {
					return nil, fmt.Errorf("zone registry: alias %q used by both %q and %q", text, owner, z.ID)
				}
				continue
			}
			seenAlias[text] = z.ID
			r.aliases = append(r.aliases, alias{text: text, id: z.ID})
		}
	}

	sort.SliceStable(r.aliases, func(i, j int) bool {
		return len(r.aliases[i].text) > len(r.aliases[j].text)
	})
	return r, nil
}

func aliasTexts(z Zone) []string {
	texts := []string{normalize(string(z.ID)), normalize(z.DisplayName)}
	for _, a := range z.Aliases {
		texts = append(texts, normalize(a))
	}
	out := texts[:0]
	for _, t := range texts {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Lookup returns the zone with the given id.
func (r *Registry) Lookup(id ID) (Zone, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Zone{}, false
	}
	return r.zones[i], true
}

// ByDisplayName returns the zone whose display name matches exactly.
func (r *Registry) ByDisplayName(name string) (Zone, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Zone{}, false
	}
	return r.zones[i], true
}

// Zones returns a copy of all zones in declaration order.
func (r *Registry) Zones() []Zone {
	return append([]Zone(nil), r.zones...)
}

// Len returns the number of registered zones.
func (r *Registry) Len() int { return len(r.zones) }

// MatchAlias finds the zone whose id, display name or alias appears in text as whole words.
// When several match, the longest alias wins.
func (r *Registry) MatchAlias(text string) (Zone, bool) {
	padded := " " + normalize(text) + " "
	for _, a := range r.aliases {
		if strings.Contains(padded, " "+a.text+" ") {
			return r.Lookup(a.id)
		}
	}
	return Zone{}, false
}

// normalize lower-cases s and collapses every run of non letter/digit characters into one space.
func normalize(s string) string {
	var b strings.Builder
	space := true
	for _, ch := range strings.ToLower(s) {
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch > 127 {
			b.WriteRune(ch)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Normalize exposes the keyword normalization used by MatchAlias.
func Normalize(s string) string { return normalize(s) }

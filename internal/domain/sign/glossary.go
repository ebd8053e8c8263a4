// internal/domain/sign/glossary.go
package sign

import (
	"fmt"
	"sort"
	"strings"

	"geoguard/internal/domain/zone"
)

// Sign is a traditional ("Asili Smart") indicator of coming weather.
type Sign struct {
	Name     string
	Hazard   zone.Hazard
	Keywords []string
	Meaning  string
}

// Glossary matches free text against sign keywords. Read-only after construction.
type Glossary struct {
	signs    []Sign
	keywords []keyword // longest first
}

type keyword struct {
	text string
	idx  int
}

// NewGlossary validates signs and indexes their keywords.
func NewGlossary(signs []Sign) (*Glossary, error) {
	g := &Glossary{signs: make([]Sign, 0, len(signs))}
	owner := make(map[string]string)
	for _, s := range signs {
		if s.Name == "" {
			return nil, fmt.Errorf("sign glossary: sign with empty name")
		}
		if !s.Hazard.Valid() {
			return nil, fmt.Errorf("sign glossary: sign %q has unknown hazard %q", s.Name, s.Hazard)
		}
		idx := len(g.signs)
		g.signs = append(g.signs, s)
		for _, k := range append([]string{s.Name}, s.Keywords...) {
			text := zone.Normalize(k)
			if text == "" {
				continue
			}
			if prev, taken := owner[text]; taken {
				if prev != s.Name {
					return nil, fmt.Errorf("sign glossary: keyword %q used by both %q and %q", text, prev, s.Name)
				}
				continue
			}
			owner[text] = s.Name
			g.keywords = append(g.keywords, keyword{text: text, idx: idx})
		}
	}
	sort.SliceStable(g.keywords, func(i, j int) bool {
		return len(g.keywords[i].text) > len(g.keywords[j].text)
	})
	return g, nil
}

// Match returns the sign whose keyword appears in text as whole words.
func (g *Glossary) Match(text string) (Sign, bool) {
	padded := " " + zone.Normalize(text) + " "
	for _, k := range g.keywords {
		if strings.Contains(padded, " "+k.text+" ") {
			return g.signs[k.idx], true
		}
	}
	return Sign{}, false
}

// Signs returns all signs in declaration order.
func (g *Glossary) Signs() []Sign {
	return append([]Sign(nil), g.signs...)
}

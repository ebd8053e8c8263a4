package sign

import (
	"testing"

	"geoguard/internal/domain/zone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlossary_Match(t *testing.T) {
	g, err := NewGlossary([]Sign{
		{Name: "Safari Ants", Hazard: zone.HazardFlood, Keywords: []string{"ants", "siafu"}},
		{Name: "Goat Intestines", Hazard: zone.HazardDrought, Keywords: []string{"intestines"}},
	})
	require.NoError(t, err)

	s, ok := g.Match("I saw SIAFU near Mathare")
	require.True(t, ok)
	assert.Equal(t, "Safari Ants", s.Name)

	s, ok = g.Match("safari ants!")
	require.True(t, ok)
	assert.Equal(t, zone.HazardFlood, s.Hazard)

	s, ok = g.Match("goat intestines were clear")
	require.True(t, ok)
	assert.Equal(t, "Goat Intestines", s.Name)

	_, ok = g.Match("pants")
	assert.False(t, ok)
}

func TestNewGlossary_Invalid(t *testing.T) {
	_, err := NewGlossary([]Sign{{Name: "", Hazard: zone.HazardFlood}})
	assert.Error(t, err)

	_, err = NewGlossary([]Sign{{Name: "Birds", Hazard: "locusts"}})
	assert.Error(t, err)

	_, err = NewGlossary([]Sign{
		{Name: "A", Hazard: zone.HazardFlood, Keywords: []string{"rain"}},
		{Name: "B", Hazard: zone.HazardFlood, Keywords: []string{"Rain"}},
	})
	assert.Error(t, err)
}

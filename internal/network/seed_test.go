package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yirenWang/myVelib/internal/bike"
)

func TestNewRandom(t *testing.T) {
	spec := SeedSpec{
		Stations:        10,
		SlotsPerStation: 4,
		BikeFill:        0.5,
		PlusShare:       0.3,
		ElectricShare:   0.25,
	}
	n, err := NewRandom("paris", 10, spec, 42, t0)
	require.NoError(t, err)

	stations := n.Stations()
	require.Len(t, stations, 10)

	plus, bikes, electric := 0, 0, 0
	for _, s := range stations {
		assert.Equal(t, 4, s.Capacity())
		assert.True(t, s.Online())
		assert.True(t, s.Coordinates().Within(10))
		if s.IsPlus() {
			plus++
		}
		bikes += s.CountBikes()
		electric += s.CountBikesOf(bike.Electric)
	}
	assert.Equal(t, 3, plus)
	assert.Equal(t, 20, bikes)
	assert.Equal(t, 5, electric)
}

func TestNewRandom_SameSeedSameLayout(t *testing.T) {
	spec := SeedSpec{Stations: 5, SlotsPerStation: 3, BikeFill: 0.4}

	n1, err := NewRandom("a", 10, spec, 7, t0)
	require.NoError(t, err)
	n2, err := NewRandom("b", 10, spec, 7, t0)
	require.NoError(t, err)

	s1, s2 := n1.Stations(), n2.Stations()
	require.Len(t, s2, len(s1))
	for i := range s1 {
		assert.Equal(t, s1[i].Coordinates(), s2[i].Coordinates())
		assert.Equal(t, s1[i].CountBikes(), s2[i].CountBikes())
	}
}

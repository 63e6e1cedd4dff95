package station

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yirenWang/myVelib/internal/bike"
	"github.com/yirenWang/myVelib/internal/geo"
	"github.com/yirenWang/myVelib/internal/ident"
)

func threeStations(t *testing.T, bikes ...int) []*Station {
	t.Helper()
	ids := ident.NewGenerators()
	out := make([]*Station, 0, len(bikes))
	next := 1
	for _, n := range bikes {
		s, err := New(ids, Standard, 2, geo.Point{}, true)
		require.NoError(t, err)
		for i := 0; i < n; i++ {
			require.NoError(t, s.AddBike(&bike.Bike{ID: next, Type: bike.Mechanical}))
			next++
		}
		out = append(out, s)
	}
	return out
}

func TestParseSortPolicy(t *testing.T) {
	p, err := ParseSortPolicy("least_occupied")
	require.NoError(t, err)
	assert.Equal(t, LeastOccupied, p)

	_, err = ParseSortPolicy("SHINIEST")
	assert.ErrorIs(t, err, ErrUnknownSortPolicy)
}

func TestSort_LeastOccupied(t *testing.T) {
	stations := threeStations(t, 1, 1, 0)

	ranked, err := Sort(stations, t0, t0.Add(time.Hour), LeastOccupied)
	require.NoError(t, err)

	// The empty station ranks first; the two equal ones fall back to ids.
	assert.Equal(t, stations[2].ID(), ranked[0].ID())
	assert.Equal(t, stations[0].ID(), ranked[1].ID())
	assert.Equal(t, stations[1].ID(), ranked[2].ID())
	// Input order is untouched.
	assert.Zero(t, stations[2].CountBikes())
}

func TestSort_MostUsed(t *testing.T) {
	stations := threeStations(t, 2, 1, 1)

	_, err := stations[1].RentBike(bike.Mechanical, t0.Add(time.Minute))
	require.NoError(t, err)
	stations[1].RecordReturn(t0.Add(2 * time.Minute))
	_, err = stations[2].RentBike(bike.Mechanical, t0.Add(time.Minute))
	require.NoError(t, err)
	// Activity outside the window does not count.
	stations[0].RecordReturn(t0.Add(2 * time.Hour))

	ranked, err := Sort(stations, t0, t0.Add(time.Hour), MostUsed)
	require.NoError(t, err)

	assert.Equal(t, stations[1].ID(), ranked[0].ID())
	assert.Equal(t, stations[2].ID(), ranked[1].ID())
	assert.Equal(t, stations[0].ID(), ranked[2].ID())
}

func TestSort_InvalidTimeSpan(t *testing.T) {
	stations := threeStations(t, 1)
	for _, policy := range []SortPolicy{MostUsed, LeastOccupied} {
		_, err := Sort(stations, t0.Add(time.Hour), t0, policy)
		assert.ErrorIs(t, err, ErrInvalidTimeSpan, policy)
	}
}

func TestSort_UnknownPolicy(t *testing.T) {
	_, err := Sort(nil, t0, t0, SortPolicy("SHINIEST"))
	assert.ErrorIs(t, err, ErrUnknownSortPolicy)
}

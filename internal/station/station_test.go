package station

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yirenWang/myVelib/internal/bike"
	"github.com/yirenWang/myVelib/internal/geo"
	"github.com/yirenWang/myVelib/internal/ident"
)

var t0 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func newStation(t *testing.T, kind Kind, capacity int, online bool) *Station {
	t.Helper()
	s, err := New(ident.NewGenerators(), kind, capacity, geo.Point{X: 1, Y: 1}, online)
	require.NoError(t, err)
	return s
}

func stock(t *testing.T, s *Station, types ...bike.Type) {
	t.Helper()
	for i, bt := range types {
		require.NoError(t, s.AddBike(&bike.Bike{ID: i + 1, Type: bt}))
	}
}

func TestNew(t *testing.T) {
	s := newStation(t, Plus, 3, true)
	assert.Equal(t, 3, s.Capacity())
	assert.Zero(t, s.CountBikes())
	assert.True(t, s.Online())
	assert.True(t, s.IsPlus())
	assert.Equal(t, 5, s.Kind().BonusCredit())

	_, err := New(ident.NewGenerators(), "MEGA", 3, geo.Point{}, true)
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestRentBike(t *testing.T) {
	t.Run("hands out a bike of the requested type", func(t *testing.T) {
		s := newStation(t, Standard, 3, true)
		stock(t, s, bike.Mechanical, bike.Electric)

		b, err := s.RentBike(bike.Electric, t0)
		require.NoError(t, err)
		assert.Equal(t, bike.Electric, b.Type)
		assert.Equal(t, 1, s.CountBikes())
		assert.Equal(t, 1, s.TotalRentals())
	})

	t.Run("offline rejects regardless of stock", func(t *testing.T) {
		s := newStation(t, Standard, 3, false)
		stock(t, s, bike.Mechanical)

		_, err := s.RentBike(bike.Mechanical, t0)
		assert.ErrorIs(t, err, ErrOffline)
	})

	t.Run("no bike of requested type", func(t *testing.T) {
		s := newStation(t, Standard, 3, true)
		stock(t, s, bike.Mechanical)

		_, err := s.RentBike(bike.Electric, t0)
		assert.ErrorIs(t, err, ErrBikeUnavailable)
	})
}

func TestReturnBike(t *testing.T) {
	t.Run("docks into a free slot", func(t *testing.T) {
		s := newStation(t, Standard, 2, true)
		require.NoError(t, s.ReturnBike(&bike.Bike{ID: 9, Type: bike.Mechanical}, t0))
		assert.Equal(t, 1, s.CountBikes())
		// The coordinator records the return when the transaction commits.
		assert.Zero(t, s.TotalReturns())
	})

	t.Run("full station rejects", func(t *testing.T) {
		s := newStation(t, Standard, 1, true)
		stock(t, s, bike.Mechanical)
		err := s.ReturnBike(&bike.Bike{ID: 9, Type: bike.Mechanical}, t0)
		assert.ErrorIs(t, err, ErrFull)
	})

	t.Run("offline rejects", func(t *testing.T) {
		s := newStation(t, Standard, 2, false)
		err := s.ReturnBike(&bike.Bike{ID: 9, Type: bike.Mechanical}, t0)
		assert.ErrorIs(t, err, ErrOffline)
	})
}

func TestCapacityInvariant(t *testing.T) {
	s := newStation(t, Standard, 2, true)
	stock(t, s, bike.Mechanical, bike.Mechanical)

	assert.True(t, s.IsFull())
	assert.ErrorIs(t, s.AddBike(&bike.Bike{ID: 5, Type: bike.Electric}), ErrFull)
	assert.Equal(t, 2, s.CountBikes())

	_, err := s.RentBike(bike.Mechanical, t0)
	require.NoError(t, err)
	assert.False(t, s.IsFull())
	assert.Equal(t, 1, s.CountBikes())
}

func TestHasBikeOf(t *testing.T) {
	s := newStation(t, Standard, 3, true)
	stock(t, s, bike.Mechanical)

	assert.True(t, s.HasBikeOf(bike.Mechanical))
	assert.False(t, s.HasBikeOf(bike.Electric))
}

func TestSetOnline_Idempotent(t *testing.T) {
	s := newStation(t, Standard, 1, true)
	assert.False(t, s.SetOnline(true), "already online")
	assert.True(t, s.SetOnline(false))
	assert.False(t, s.SetOnline(false), "already offline")
	assert.True(t, s.SetOnline(true))
}

func TestUndock(t *testing.T) {
	s := newStation(t, Standard, 2, true)
	b := &bike.Bike{ID: 7, Type: bike.Mechanical}
	require.NoError(t, s.AddBike(b))

	assert.True(t, s.Undock(b))
	assert.Zero(t, s.CountBikes())
	assert.False(t, s.Undock(b))
}

func TestOccupancy(t *testing.T) {
	s := newStation(t, Standard, 4, true)
	stock(t, s, bike.Mechanical)
	assert.InDelta(t, 0.25, s.Occupancy(), 1e-9)
}

func TestActivityBetween(t *testing.T) {
	s := newStation(t, Standard, 4, true)
	stock(t, s, bike.Mechanical, bike.Mechanical)

	_, err := s.RentBike(bike.Mechanical, t0)
	require.NoError(t, err)
	_, err = s.RentBike(bike.Mechanical, t0.Add(time.Hour))
	require.NoError(t, err)
	s.RecordReturn(t0.Add(2 * time.Hour))

	assert.Equal(t, 3, s.ActivityBetween(t0, t0.Add(2*time.Hour)))
	assert.Equal(t, 1, s.ActivityBetween(t0.Add(30*time.Minute), t0.Add(90*time.Minute)))
	assert.Zero(t, s.ActivityBetween(t0.Add(3*time.Hour), t0.Add(4*time.Hour)))
}

// Two concurrent rents race for a single remaining bike: exactly one wins.
func TestRentBike_ConcurrentSingleBike(t *testing.T) {
	s := newStation(t, Standard, 1, true)
	stock(t, s, bike.Mechanical)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Lock()
			defer s.Unlock()
			_, errs[i] = s.RentBike(bike.Mechanical, t0)
		}(i)
	}
	wg.Wait()

	if errs[0] == nil {
		assert.ErrorIs(t, errs[1], ErrBikeUnavailable)
	} else {
		assert.ErrorIs(t, errs[0], ErrBikeUnavailable)
		assert.NoError(t, errs[1])
	}
	assert.Zero(t, s.CountBikes())
}

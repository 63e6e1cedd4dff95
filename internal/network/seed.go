package network

import (
	"time"

	"github.com/yirenWang/myVelib/internal/bike"
	"github.com/yirenWang/myVelib/internal/logger"
	"github.com/yirenWang/myVelib/internal/station"
)

// SeedSpec describes the random initial state of a network.
type SeedSpec struct {
	Stations        int
	SlotsPerStation int
	// BikeFill is the fraction of all parking slots initially holding a
	// bike, in [0, 1].
	BikeFill float64
	// PlusShare is the fraction of stations created as plus stations.
	PlusShare float64
	// ElectricShare is the fraction of seeded bikes that are electric.
	ElectricShare float64
}

// NewRandom builds a network and seeds it: stations at random points of the
// square (the leading PlusShare fraction as plus stations), then bikes
// spread over random non-full stations until the fill ratio is reached.
func NewRandom(name string, side float64, spec SeedSpec, seed int64, createdAt time.Time) (*Network, error) {
	n := New(name, side, seed, createdAt)

	for i := 0; i < spec.Stations; i++ {
		kind := station.Standard
		if float64(i) < float64(spec.Stations)*spec.PlusShare {
			kind = station.Plus
		}
		if _, err := n.AddStation(kind, spec.SlotsPerStation); err != nil {
			return nil, err
		}
	}

	totalSlots := spec.Stations * spec.SlotsPerStation
	totalBikes := int(float64(totalSlots) * spec.BikeFill)

	notFull := n.Stations()
	for i := 0; i < totalBikes && len(notFull) > 0; i++ {
		t := bike.Mechanical
		if float64(i) < float64(totalBikes)*spec.ElectricShare {
			t = bike.Electric
		}
		idx := n.rng.Intn(len(notFull))
		s := notFull[idx]
		if _, err := n.AddBike(s.ID(), t); err != nil {
			return nil, err
		}
		if s.IsFull() {
			notFull = append(notFull[:idx], notFull[idx+1:]...)
		}
	}

	logger.Infof("seeded network %q: %d stations, %d slots each, %d bikes",
		name, spec.Stations, spec.SlotsPerStation, totalBikes)
	return n, nil
}

// Package rideplan implements the routing policies that pick a source and a
// destination station for a requested ride. Every policy is a pure function
// over a snapshot of the station registry; the set of policies is closed and
// dispatched through a lookup table.
package rideplan

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/yirenWang/myVelib/internal/bike"
	"github.com/yirenWang/myVelib/internal/geo"
	"github.com/yirenWang/myVelib/internal/station"
)

var (
	ErrUnknownPolicy   = errors.New("unknown ride planning policy")
	ErrNoViableStation = errors.New("no station satisfying the policy was found")
)

// walkingSpeedKmh is the assumed walking speed for the fastest-route policy.
const walkingSpeedKmh = 4.0

// plusDetourFactor bounds how much farther than the nearest destination a
// plus station may be and still get substituted by PreferPlus.
const plusDetourFactor = 1.1

type Policy string

const (
	// Shortest picks the eligible station nearest to each endpoint.
	Shortest Policy = "SHORTEST"
	// Fastest minimizes walk + ride + walk time over all station pairs.
	Fastest Policy = "FASTEST"
	// AvoidPlus is Shortest with plus stations excluded as destinations.
	AvoidPlus Policy = "AVOID_PLUS"
	// PreferPlus is Shortest, substituting a nearby plus destination when
	// one exists within 10% of the nearest distance.
	PreferPlus Policy = "PREFER_PLUS"
	// PreserveUniformity trades a slightly farther destination for one
	// whose resulting occupancy keeps the network balanced.
	PreserveUniformity Policy = "PRESERVE_UNIFORMITY"
)

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToUpper(s) {
	case "SHORTEST":
		return Shortest, nil
	case "FASTEST":
		return Fastest, nil
	case "AVOID_PLUS":
		return AvoidPlus, nil
	case "PREFER_PLUS":
		return PreferPlus, nil
	case "PRESERVE_UNIFORMITY":
		return PreserveUniformity, nil
	default:
		return "", ErrUnknownPolicy
	}
}

func (p Policy) String() string {
	return string(p)
}

// Plan is the outcome of a planning call. It is superseded, not merged, when
// the same user plans again.
type Plan struct {
	Source        geo.Point
	Destination   geo.Point
	SourceStation *station.Station
	DestStation   *station.Station
	Policy        Policy
	BikeType      bike.Type
}

func (p *Plan) String() string {
	return fmt.Sprintf("ride plan (%s, %s bike): start at station %d, end at station %d",
		p.Policy, strings.ToLower(p.BikeType.String()), p.SourceStation.ID(), p.DestStation.ID())
}

type strategyFunc func(source, destination geo.Point, t bike.Type, stations []*station.Station) (*station.Station, *station.Station, error)

var strategies = map[Policy]strategyFunc{
	Shortest:           planShortest,
	Fastest:            planFastest,
	AvoidPlus:          planAvoidPlus,
	PreferPlus:         planPreferPlus,
	PreserveUniformity: planPreserveUniformity,
}

// Compute runs the named policy over the station snapshot. The snapshot is
// read without per-station locks; a plan may point at a station that a
// concurrent transaction has already made non-viable, which the caller
// discovers when acting on it.
func Compute(policy Policy, source, destination geo.Point, t bike.Type, stations []*station.Station) (*Plan, error) {
	strategy, ok := strategies[policy]
	if !ok {
		return nil, ErrUnknownPolicy
	}
	src, dst, err := strategy(source, destination, t, stations)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Source:        source,
		Destination:   destination,
		SourceStation: src,
		DestStation:   dst,
		Policy:        policy,
		BikeType:      t,
	}, nil
}

// nearestSource finds the online station closest to the source point that
// holds at least one bike of the requested type.
func nearestSource(source geo.Point, t bike.Type, stations []*station.Station) (*station.Station, float64) {
	var best *station.Station
	bestDist := math.MaxFloat64
	for _, s := range stations {
		if !s.Online() || !s.HasBikeOf(t) {
			continue
		}
		if d := s.Coordinates().Distance(source); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, bestDist
}

// nearestDest finds the online, non-full station closest to the destination
// point, optionally skipping plus stations.
func nearestDest(destination geo.Point, stations []*station.Station, excludePlus bool) (*station.Station, float64) {
	var best *station.Station
	bestDist := math.MaxFloat64
	for _, s := range stations {
		if !s.Online() || s.IsFull() {
			continue
		}
		if excludePlus && s.IsPlus() {
			continue
		}
		if d := s.Coordinates().Distance(destination); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, bestDist
}

func planShortest(source, destination geo.Point, t bike.Type, stations []*station.Station) (*station.Station, *station.Station, error) {
	src, _ := nearestSource(source, t, stations)
	dst, _ := nearestDest(destination, stations, false)
	if src == nil || dst == nil {
		return nil, nil, ErrNoViableStation
	}
	return src, dst, nil
}

func planAvoidPlus(source, destination geo.Point, t bike.Type, stations []*station.Station) (*station.Station, *station.Station, error) {
	src, _ := nearestSource(source, t, stations)
	dst, _ := nearestDest(destination, stations, true)
	if src == nil || dst == nil {
		return nil, nil, ErrNoViableStation
	}
	return src, dst, nil
}

func planPreferPlus(source, destination geo.Point, t bike.Type, stations []*station.Station) (*station.Station, *station.Station, error) {
	src, _ := nearestSource(source, t, stations)
	dst, dstDist := nearestDest(destination, stations, false)
	if src == nil || dst == nil {
		return nil, nil, ErrNoViableStation
	}
	if dst.IsPlus() {
		return src, dst, nil
	}
	// Substitute the closest plus station within the detour budget.
	var plus *station.Station
	plusDist := dstDist * plusDetourFactor
	for _, s := range stations {
		if !s.IsPlus() || !s.Online() || s.IsFull() {
			continue
		}
		if d := s.Coordinates().Distance(destination); d <= plusDist {
			plus, plusDist = s, d
		}
	}
	if plus != nil {
		dst = plus
	}
	return src, dst, nil
}

// planFastest searches every (source, destination) station pair for the one
// minimizing total walk and ride time. Quadratic in the number of stations,
// which is fine at simulation scale.
func planFastest(source, destination geo.Point, t bike.Type, stations []*station.Station) (*station.Station, *station.Station, error) {
	var bestSrc, bestDst *station.Station
	bestTime := math.MaxFloat64
	for _, s1 := range stations {
		if !s1.Online() || !s1.HasBikeOf(t) {
			continue
		}
		for _, s2 := range stations {
			if s2 == s1 || !s2.Online() || s2.IsFull() {
				continue
			}
			total := s1.Coordinates().Distance(source)/walkingSpeedKmh +
				s1.Coordinates().Distance(s2.Coordinates())/t.Speed() +
				s2.Coordinates().Distance(destination)/walkingSpeedKmh
			if total < bestTime {
				bestSrc, bestDst, bestTime = s1, s2, total
			}
		}
	}
	if bestSrc == nil || bestDst == nil {
		return nil, nil, ErrNoViableStation
	}
	return bestSrc, bestDst, nil
}

// planPreserveUniformity keeps the nearest-source rule but, on the
// destination side, considers every non-full station within the detour
// budget of the nearest one and picks the one whose occupancy after the
// return is lowest. Distance, then station id, break ties.
func planPreserveUniformity(source, destination geo.Point, t bike.Type, stations []*station.Station) (*station.Station, *station.Station, error) {
	src, _ := nearestSource(source, t, stations)
	nearest, nearestDist := nearestDest(destination, stations, false)
	if src == nil || nearest == nil {
		return nil, nil, ErrNoViableStation
	}
	dst := nearest
	bestRatio := resultingOccupancy(nearest)
	bestDist := nearestDist
	for _, s := range stations {
		if s == nearest || !s.Online() || s.IsFull() {
			continue
		}
		d := s.Coordinates().Distance(destination)
		if d > nearestDist*plusDetourFactor {
			continue
		}
		ratio := resultingOccupancy(s)
		switch {
		case ratio < bestRatio:
			dst, bestRatio, bestDist = s, ratio, d
		case ratio == bestRatio && d < bestDist:
			dst, bestDist = s, d
		case ratio == bestRatio && d == bestDist && s.ID() < dst.ID():
			dst = s
		}
	}
	return src, dst, nil
}

// resultingOccupancy is the occupancy ratio a station would have after one
// more bike is docked.
func resultingOccupancy(s *station.Station) float64 {
	if s.Capacity() == 0 {
		return 1
	}
	return float64(s.CountBikes()+1) / float64(s.Capacity())
}

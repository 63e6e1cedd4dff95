// Package network is the transaction coordinator of the bike-sharing
// system. It owns the station and user registries, serializes rent and
// return transactions per user and per station, runs the planning and
// sorting policies, and pushes station availability events to subscribed
// users.
package network

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/yirenWang/myVelib/internal/bike"
	"github.com/yirenWang/myVelib/internal/card"
	"github.com/yirenWang/myVelib/internal/geo"
	"github.com/yirenWang/myVelib/internal/ident"
	"github.com/yirenWang/myVelib/internal/logger"
	"github.com/yirenWang/myVelib/internal/metrics"
	"github.com/yirenWang/myVelib/internal/rental"
	"github.com/yirenWang/myVelib/internal/rideplan"
	"github.com/yirenWang/myVelib/internal/station"
	"github.com/yirenWang/myVelib/internal/user"
)

var (
	ErrUnknownUser    = errors.New("no user found with this id")
	ErrUnknownStation = errors.New("no station found with this id")
	ErrOutOfBounds    = errors.New("coordinates are outside the network")
	ErrOngoingRental  = errors.New("user already has an ongoing bike rental")
	ErrNoActiveRental = errors.New("user has no active bike rental")
)

// StationObserver receives synchronous pushes about a station's
// availability. Implementations must not block: the call happens inside the
// transaction that triggered the event.
type StationObserver interface {
	OnStationEvent(st *station.Station, message string)
}

// Network state splits into two locking scopes. The network's own mutex
// guards the registries, the subscriber table and the time cursor. Station
// and user state is guarded by per-entity locks which a transaction acquires
// in the fixed order user → station; the order is uniform across every
// operation, so rent and return can never deadlock against each other.
type Network struct {
	name string
	side float64

	ids   *ident.Generators
	bikes *bike.Factory
	rng   *rand.Rand

	mu          sync.RWMutex
	stations    map[int]*station.Station
	users       map[int]*user.User
	subscribers map[int]map[int]StationObserver // station id -> user id -> observer

	createdAt time.Time
	// clock advances to the latest rent/return time seen. It is simply
	// overwritten by each transaction, so out-of-order timestamps win;
	// last writer wins and no monotonicity is enforced.
	clock time.Time

	// strictReturns undocks the bike again when pricing fails during a
	// return. Off by default: the historical contract leaves the bike
	// committed and rolls back only the credit ledger.
	strictReturns bool
}

func New(name string, side float64, seed int64, createdAt time.Time) *Network {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ids := ident.NewGenerators()
	return &Network{
		name:        name,
		side:        side,
		ids:         ids,
		bikes:       bike.NewFactory(ids.Bikes),
		rng:         rand.New(rand.NewSource(seed)),
		stations:    make(map[int]*station.Station),
		users:       make(map[int]*user.User),
		subscribers: make(map[int]map[int]StationObserver),
		createdAt:   createdAt,
		clock:       createdAt,
	}
}

func (n *Network) Name() string         { return n.name }
func (n *Network) Side() float64        { return n.side }
func (n *Network) CreatedAt() time.Time { return n.createdAt }

// Clock is the network's current simulated time: the timestamp of the last
// rent or return transaction, whatever order those arrived in.
func (n *Network) Clock() time.Time {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.clock
}

// SetStrictReturns toggles the pricing-failure rollback of bike placement.
func (n *Network) SetStrictReturns(strict bool) {
	n.strictReturns = strict
}

// Station resolves a station id.
func (n *Network) Station(id int) (*station.Station, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	s, ok := n.stations[id]
	if !ok {
		return nil, ErrUnknownStation
	}
	return s, nil
}

// User resolves a user id.
func (n *Network) User(id int) (*user.User, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	u, ok := n.users[id]
	if !ok {
		return nil, ErrUnknownUser
	}
	return u, nil
}

// Stations is a snapshot of the registry, ordered by id.
func (n *Network) Stations() []*station.Station {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*station.Station, 0, len(n.stations))
	for _, s := range n.stations {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Users is a snapshot of the registry, ordered by id.
func (n *Network) Users() []*user.User {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*user.User, 0, len(n.users))
	for _, u := range n.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// AddUser registers a user with the given card kind at a random point of the
// square.
func (n *Network) AddUser(name string, kind card.Kind) (*user.User, error) {
	c, err := card.New(kind)
	if err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	at := geo.Point{X: n.rng.Float64() * n.side, Y: n.rng.Float64() * n.side}
	u := user.New(n.ids, name, at, c)
	n.users[u.ID()] = u
	return u, nil
}

// AddStation creates an online station at a random point of the square.
func (n *Network) AddStation(kind station.Kind, capacity int) (*station.Station, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	at := geo.Point{X: n.rng.Float64() * n.side, Y: n.rng.Float64() * n.side}
	return n.addStationLocked(kind, capacity, at, true)
}

// AddStationAt creates a station at explicit coordinates.
func (n *Network) AddStationAt(kind station.Kind, capacity int, at geo.Point, online bool) (*station.Station, error) {
	if !at.Within(n.side) {
		return nil, ErrOutOfBounds
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.addStationLocked(kind, capacity, at, online)
}

func (n *Network) addStationLocked(kind station.Kind, capacity int, at geo.Point, online bool) (*station.Station, error) {
	s, err := station.New(n.ids, kind, capacity, at, online)
	if err != nil {
		return nil, err
	}
	n.stations[s.ID()] = s
	metrics.DockedBikes.WithLabelValues(idLabel(s.ID())).Set(0)
	return s, nil
}

// AddBike creates a bike of the given type and docks it at the station.
func (n *Network) AddBike(stationID int, t bike.Type) (*bike.Bike, error) {
	s, err := n.Station(stationID)
	if err != nil {
		return nil, err
	}
	b, err := n.bikes.New(t)
	if err != nil {
		return nil, err
	}
	s.Lock()
	defer s.Unlock()
	if err := s.AddBike(b); err != nil {
		return nil, err
	}
	metrics.DockedBikes.WithLabelValues(idLabel(s.ID())).Set(float64(s.CountBikes()))
	return b, nil
}

// PlanRide computes a ride plan for the user under the named policy,
// replaces any previous plan and subscribes the user to availability events
// of the chosen destination station. The superseded plan's subscription is
// not revoked; that matches the historical behavior.
func (n *Network) PlanRide(userID int, source, destination geo.Point, policy rideplan.Policy, t bike.Type) (*rideplan.Plan, error) {
	if !source.Within(n.side) || !destination.Within(n.side) {
		return nil, ErrOutOfBounds
	}
	u, err := n.User(userID)
	if err != nil {
		return nil, err
	}
	plan, err := rideplan.Compute(policy, source, destination, t, n.Stations())
	if err != nil {
		return nil, err
	}

	u.Lock()
	u.SetPlan(plan)
	u.Unlock()
	n.subscribe(plan.DestStation.ID(), u)

	metrics.RecordRidePlan(policy.String())
	logger.Debugf("planned ride for user %d: %s", userID, plan)
	return plan, nil
}

// RentBike hands the user a bike of the requested type from the station.
// The transaction holds the user's lock, then the station's lock.
func (n *Network) RentBike(userID, stationID int, t bike.Type, at time.Time) (*bike.Bike, error) {
	u, err := n.User(userID)
	if err != nil {
		return nil, err
	}
	s, err := n.Station(stationID)
	if err != nil {
		return nil, err
	}

	u.Lock()
	defer u.Unlock()
	if u.Rental() != nil {
		metrics.RecordTransactionFailure("rent", "ongoing_rental")
		return nil, ErrOngoingRental
	}

	s.Lock()
	defer s.Unlock()
	wasFull := s.IsFull()
	b, err := s.RentBike(t, at)
	if err != nil {
		metrics.RecordTransactionFailure("rent", reasonLabel(err))
		return nil, err
	}
	u.SetRental(rental.New(b, at))
	n.advanceClock(at)

	metrics.RecordRental(b.Type.String())
	metrics.DockedBikes.WithLabelValues(idLabel(s.ID())).Set(float64(s.CountBikes()))
	logger.Infof("user %d rented bike %d (%s) at station %d", userID, b.ID, b.Type, stationID)
	if wasFull {
		n.notifySubscribers(s, "station has free parking slots again")
	}
	return b, nil
}

// ReturnBike docks the user's rented bike at the station, prices the ride
// and settles the credit ledger. On a pricing failure the tentative bonus
// credit is rolled back and the rental stays attached to the user; the bike
// placement is rolled back only in strict mode.
func (n *Network) ReturnBike(userID, stationID int, at time.Time) (*rental.Rental, error) {
	u, err := n.User(userID)
	if err != nil {
		return nil, err
	}
	s, err := n.Station(stationID)
	if err != nil {
		return nil, err
	}

	u.Lock()
	defer u.Unlock()
	r := u.Rental()
	if r == nil {
		metrics.RecordTransactionFailure("return", "no_active_rental")
		return nil, ErrNoActiveRental
	}
	r.ReturnedAt = at

	s.Lock()
	defer s.Unlock()
	if err := s.ReturnBike(r.Bike, at); err != nil {
		metrics.RecordTransactionFailure("return", reasonLabel(err))
		return nil, err
	}

	// Tentatively grant the station's bonus credit so pricing sees the
	// balance it would settle against, then price the ride.
	r.CreditAdded = u.Card().AddCredit(s.Kind().BonusCredit())
	price, used, err := u.Card().Price(r)
	if err != nil {
		// Pricing failed: roll the tentative credit back. The bike stays
		// docked unless strict returns are on.
		_ = u.Card().RemoveCredit(r.CreditAdded)
		r.CreditAdded = 0
		if n.strictReturns {
			s.Undock(r.Bike)
		}
		metrics.RecordTransactionFailure("return", reasonLabel(err))
		return nil, err
	}
	r.Price = price
	r.CreditUsed = used
	_ = u.Card().RemoveCredit(used)

	// A return at the plan's destination completes the plan.
	if plan := u.Plan(); plan != nil && plan.DestStation == s {
		u.SetPlan(nil)
		n.unsubscribe(s.ID(), u.ID())
	}

	s.RecordReturn(at)
	u.RecordRide(r)
	u.SetRental(nil)
	n.advanceClock(at)

	metrics.RecordReturn(s.Kind().String())
	metrics.RecordTimeCredit(r.CreditAdded)
	metrics.DockedBikes.WithLabelValues(idLabel(s.ID())).Set(float64(s.CountBikes()))
	logger.Infof("user %d returned bike %d at station %d: %s€, %d credit used, %d credit earned",
		userID, r.Bike.ID, stationID, r.Price, r.CreditUsed, r.CreditAdded)
	if s.IsFull() {
		n.notifySubscribers(s, "station is now full")
	}
	return r, nil
}

// SortStations ranks a snapshot of the registry under the named policy over
// the window [creation time, current time].
func (n *Network) SortStations(policy station.SortPolicy) ([]*station.Station, error) {
	n.mu.RLock()
	start, end := n.createdAt, n.clock
	n.mu.RUnlock()
	return station.Sort(n.Stations(), start, end, policy)
}

// SetOnline brings a station online. Reports whether the flag changed.
func (n *Network) SetOnline(stationID int) (bool, error) {
	s, err := n.Station(stationID)
	if err != nil {
		return false, err
	}
	s.Lock()
	changed := s.SetOnline(true)
	s.Unlock()
	if changed {
		n.notifySubscribers(s, "station is back online")
	}
	return changed, nil
}

// SetOffline takes a station offline; it then rejects every rent and return.
func (n *Network) SetOffline(stationID int) (bool, error) {
	s, err := n.Station(stationID)
	if err != nil {
		return false, err
	}
	s.Lock()
	changed := s.SetOnline(false)
	s.Unlock()
	if changed {
		n.notifySubscribers(s, "station went offline")
	}
	return changed, nil
}

// Reset rewinds the id sequences. Only meaningful between independent
// simulation runs.
func (n *Network) Reset() {
	n.ids.Reset()
}

func (n *Network) advanceClock(at time.Time) {
	n.mu.Lock()
	n.clock = at
	n.mu.Unlock()
}

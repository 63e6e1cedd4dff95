// Package user models the people renting bikes: their card, their single
// active rental and ride plan, and their cumulative statistics.
package user

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/yirenWang/myVelib/internal/card"
	"github.com/yirenWang/myVelib/internal/geo"
	"github.com/yirenWang/myVelib/internal/ident"
	"github.com/yirenWang/myVelib/internal/rental"
	"github.com/yirenWang/myVelib/internal/rideplan"
	"github.com/yirenWang/myVelib/internal/station"
)

// Stats accumulates over a user's lifetime in the network.
type Stats struct {
	Rides            int             `json:"rides"`
	TotalCharged     decimal.Decimal `json:"total_charged"`
	TimeCreditEarned int             `json:"time_credit_earned"`
	MinutesOnBike    int             `json:"minutes_on_bike"`
}

// User state is guarded by its own mutex, exposed through Lock/Unlock so the
// network coordinator can hold it for a whole transaction. The lock is
// always acquired before any station lock.
type User struct {
	mu          sync.Mutex
	id          int
	name        string
	coordinates geo.Point
	card        *card.Card

	rental *rental.Rental
	plan   *rideplan.Plan
	stats  Stats

	// The inbox has its own lock: notifications arrive from other users'
	// transactions, which do not hold this user's main lock.
	inboxMu sync.Mutex
	inbox   []string
}

func New(ids *ident.Generators, name string, at geo.Point, c *card.Card) *User {
	return &User{
		id:          ids.Users.NextID(),
		name:        name,
		coordinates: at,
		card:        c,
	}
}

func (u *User) Lock()   { u.mu.Lock() }
func (u *User) Unlock() { u.mu.Unlock() }

func (u *User) ID() int                { return u.id }
func (u *User) Name() string           { return u.name }
func (u *User) Coordinates() geo.Point { return u.coordinates }
func (u *User) Card() *card.Card       { return u.card }

// Rental is the active rental, nil when the user holds no bike.
func (u *User) Rental() *rental.Rental {
	return u.rental
}

func (u *User) SetRental(r *rental.Rental) {
	u.rental = r
}

// Plan is the active ride plan, nil when none was requested. A new plan
// replaces the previous one outright; completing a ride at the plan's
// destination clears it.
func (u *User) Plan() *rideplan.Plan {
	return u.plan
}

func (u *User) SetPlan(p *rideplan.Plan) {
	u.plan = p
}

func (u *User) Stats() Stats {
	return u.stats
}

// RecordRide folds a finalized rental into the user's statistics.
func (u *User) RecordRide(r *rental.Rental) {
	u.stats.Rides++
	u.stats.TotalCharged = u.stats.TotalCharged.Add(r.Price)
	u.stats.TimeCreditEarned += r.CreditAdded
	u.stats.MinutesOnBike += r.Minutes()
}

// OnStationEvent receives a synchronous push about a station the user
// subscribed to. It must not block; the message is kept for the caller to
// display.
func (u *User) OnStationEvent(st *station.Station, message string) {
	u.inboxMu.Lock()
	u.inbox = append(u.inbox, message)
	u.inboxMu.Unlock()
}

// Inbox returns the station event messages received so far.
func (u *User) Inbox() []string {
	u.inboxMu.Lock()
	defer u.inboxMu.Unlock()
	return append([]string(nil), u.inbox...)
}

func (u *User) String() string {
	return fmt.Sprintf("user %d (%s) at %s, card %s", u.id, u.name, u.coordinates, u.card.Kind())
}

// DisplayStats renders the user's statistics block for the CLUI.
func (u *User) DisplayStats() string {
	s := fmt.Sprintf("User %d (%s):\n", u.id, u.name)
	s += fmt.Sprintf("total rides: %d\n", u.stats.Rides)
	s += fmt.Sprintf("total credits accumulated: %d\n", u.stats.TimeCreditEarned)
	s += fmt.Sprintf("total amount spent: %s\n", u.stats.TotalCharged.StringFixed(2))
	s += fmt.Sprintf("total time spent: %d minutes", u.stats.MinutesOnBike)
	return s
}

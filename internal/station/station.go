// Package station implements the dock state machine: a fixed set of parking
// slots, an online flag and atomic rent/return inventory operations.
//
// A station can be online with capacity, online and full, or offline.
// Offline is orthogonal to fullness and always rejects rent and return. The
// full/has-capacity side of the state flips as a side effect of inventory
// changes.
package station

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yirenWang/myVelib/internal/bike"
	"github.com/yirenWang/myVelib/internal/geo"
	"github.com/yirenWang/myVelib/internal/ident"
)

var (
	ErrInvalidKind     = errors.New("invalid station type")
	ErrOffline         = errors.New("station is offline")
	ErrFull            = errors.New("station is full")
	ErrBikeUnavailable = errors.New("no bike of the requested type is available")
)

type Kind string

const (
	Standard Kind = "STANDARD"
	Plus     Kind = "PLUS"
)

func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(s) {
	case "STANDARD":
		return Standard, nil
	case "PLUS":
		return Plus, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k Kind) String() string {
	return string(k)
}

// BonusCredit is the time credit in minutes granted to the returning user's
// card. Station behavior differences are data, not subtypes.
func (k Kind) BonusCredit() int {
	if k == Plus {
		return 5
	}
	return 0
}

// Slot is one parking space. Empty when Bike is nil.
type Slot struct {
	ID   int        `json:"id"`
	Bike *bike.Bike `json:"bike,omitempty"`
}

// Station state is guarded by its own mutex, exposed through Lock/Unlock so
// the network coordinator can hold it across a whole rent or return
// transaction (always acquired after the user's lock). Mutating methods
// assume the caller holds the lock.
type Station struct {
	mu          sync.Mutex
	id          int
	kind        Kind
	coordinates geo.Point
	slots       []*Slot
	online      bool

	totalRentals int
	totalReturns int
	activity     []time.Time // timestamps of every rent and return
}

func New(ids *ident.Generators, kind Kind, capacity int, at geo.Point, online bool) (*Station, error) {
	if kind != Standard && kind != Plus {
		return nil, ErrInvalidKind
	}
	s := &Station{
		id:          ids.Stations.NextID(),
		kind:        kind,
		coordinates: at,
		online:      online,
	}
	for i := 0; i < capacity; i++ {
		s.slots = append(s.slots, &Slot{ID: ids.Slots.NextID()})
	}
	return s, nil
}

func (s *Station) Lock()   { s.mu.Lock() }
func (s *Station) Unlock() { s.mu.Unlock() }

func (s *Station) ID() int                { return s.id }
func (s *Station) Kind() Kind             { return s.kind }
func (s *Station) IsPlus() bool           { return s.kind == Plus }
func (s *Station) Coordinates() geo.Point { return s.coordinates }
func (s *Station) Capacity() int          { return len(s.slots) }
func (s *Station) Online() bool           { return s.online }

// SetOnline toggles the online flag and reports whether it changed.
func (s *Station) SetOnline(online bool) bool {
	if s.online == online {
		return false
	}
	s.online = online
	return true
}

// CountBikes is the number of occupied slots.
func (s *Station) CountBikes() int {
	n := 0
	for _, slot := range s.slots {
		if slot.Bike != nil {
			n++
		}
	}
	return n
}

func (s *Station) CountBikesOf(t bike.Type) int {
	n := 0
	for _, slot := range s.slots {
		if slot.Bike != nil && slot.Bike.Type == t {
			n++
		}
	}
	return n
}

// HasBikeOf reports whether at least one bike of the given type is docked.
// Planning policies use it to filter candidate source stations.
func (s *Station) HasBikeOf(t bike.Type) bool {
	return s.CountBikesOf(t) > 0
}

func (s *Station) IsFull() bool {
	return s.CountBikes() == len(s.slots)
}

// Occupancy is the fraction of slots holding a bike, in [0, 1].
func (s *Station) Occupancy() float64 {
	if len(s.slots) == 0 {
		return 0
	}
	return float64(s.CountBikes()) / float64(len(s.slots))
}

// RentBike removes and returns a bike of the requested type. The first
// docked bike of that type wins; bikes of one type are interchangeable.
func (s *Station) RentBike(t bike.Type, at time.Time) (*bike.Bike, error) {
	if !s.online {
		return nil, ErrOffline
	}
	for _, slot := range s.slots {
		if slot.Bike != nil && slot.Bike.Type == t {
			b := slot.Bike
			slot.Bike = nil
			s.totalRentals++
			s.activity = append(s.activity, at)
			return b, nil
		}
	}
	return nil, ErrBikeUnavailable
}

// ReturnBike docks a bike into a free slot. The return counter is not
// incremented here: the coordinator records the return only once the whole
// transaction commits.
func (s *Station) ReturnBike(b *bike.Bike, at time.Time) error {
	if !s.online {
		return ErrOffline
	}
	return s.dock(b)
}

// RecordReturn bumps the return statistics. Called by the coordinator at the
// end of a committed return transaction.
func (s *Station) RecordReturn(at time.Time) {
	s.totalReturns++
	s.activity = append(s.activity, at)
}

// AddBike docks a bike outside any transaction, used when seeding the
// network or adding stock. It works regardless of the online flag.
func (s *Station) AddBike(b *bike.Bike) error {
	return s.dock(b)
}

func (s *Station) dock(b *bike.Bike) error {
	for _, slot := range s.slots {
		if slot.Bike == nil {
			slot.Bike = b
			return nil
		}
	}
	return ErrFull
}

// Undock removes a specific bike, reversing a dock that should not have been
// committed. Reports whether the bike was found.
func (s *Station) Undock(b *bike.Bike) bool {
	for _, slot := range s.slots {
		if slot.Bike == b {
			slot.Bike = nil
			return true
		}
	}
	return false
}

func (s *Station) TotalRentals() int { return s.totalRentals }
func (s *Station) TotalReturns() int { return s.totalReturns }

// ActivityBetween counts the rent and return operations recorded within
// [start, end], inclusive.
func (s *Station) ActivityBetween(start, end time.Time) int {
	n := 0
	for _, at := range s.activity {
		if !at.Before(start) && !at.After(end) {
			n++
		}
	}
	return n
}

func (s *Station) String() string {
	status := "offline"
	if s.online {
		status = "online"
	}
	return fmt.Sprintf("%s station %d at %s, %d/%d bikes, %s",
		strings.ToLower(string(s.kind)), s.id, s.coordinates, s.CountBikes(), s.Capacity(), status)
}

// Package ident issues the unique integer ids used for stations, users and
// parking slots. One Generators bundle is owned by the network; there are no
// process-wide singletons, so independent simulations can run side by side.
package ident

import "sync"

// Sequence hands out monotonically increasing ids starting at 1.
type Sequence struct {
	mu   sync.Mutex
	last int
}

func NewSequence() *Sequence {
	return &Sequence{}
}

func (s *Sequence) NextID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last
}

// Reset rewinds the sequence. Only meant to be called between independent
// simulation runs, never while ids from the current run are still live.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = 0
}

// Generators bundles the id sequences for every entity kind.
type Generators struct {
	Stations *Sequence
	Users    *Sequence
	Slots    *Sequence
	Bikes    *Sequence
}

func NewGenerators() *Generators {
	return &Generators{
		Stations: NewSequence(),
		Users:    NewSequence(),
		Slots:    NewSequence(),
		Bikes:    NewSequence(),
	}
}

func (g *Generators) Reset() {
	g.Stations.Reset()
	g.Users.Reset()
	g.Slots.Reset()
	g.Bikes.Reset()
}

package user

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yirenWang/myVelib/internal/bike"
	"github.com/yirenWang/myVelib/internal/card"
	"github.com/yirenWang/myVelib/internal/geo"
	"github.com/yirenWang/myVelib/internal/ident"
	"github.com/yirenWang/myVelib/internal/rental"
)

func newUser(t *testing.T, kind card.Kind) *User {
	t.Helper()
	c, err := card.New(kind)
	require.NoError(t, err)
	return New(ident.NewGenerators(), "alice", geo.Point{X: 1, Y: 2}, c)
}

func TestNew(t *testing.T) {
	u := newUser(t, card.Libre)

	assert.Equal(t, 1, u.ID())
	assert.Equal(t, "alice", u.Name())
	assert.Equal(t, geo.Point{X: 1, Y: 2}, u.Coordinates())
	assert.Equal(t, card.Libre, u.Card().Kind())
	assert.Nil(t, u.Rental())
	assert.Nil(t, u.Plan())
}

func TestRecordRide(t *testing.T) {
	u := newUser(t, card.None)

	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	r := rental.New(&bike.Bike{ID: 1, Type: bike.Mechanical}, start)
	r.ReturnedAt = start.Add(75 * time.Minute)
	r.Price = decimal.NewFromInt(2)
	r.CreditAdded = 5
	u.RecordRide(r)

	r2 := rental.New(&bike.Bike{ID: 2, Type: bike.Electric}, start)
	r2.ReturnedAt = start.Add(30 * time.Minute)
	r2.Price = decimal.NewFromInt(2)
	u.RecordRide(r2)

	stats := u.Stats()
	assert.Equal(t, 2, stats.Rides)
	assert.True(t, stats.TotalCharged.Equal(decimal.NewFromInt(4)), "charged %s", stats.TotalCharged)
	assert.Equal(t, 5, stats.TimeCreditEarned)
	assert.Equal(t, 105, stats.MinutesOnBike)
}

func TestInbox_ConcurrentNotifications(t *testing.T) {
	u := newUser(t, card.None)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u.OnStationEvent(nil, fmt.Sprintf("station event %d", i))
		}(i)
	}
	wg.Wait()

	assert.Len(t, u.Inbox(), 50)
}

func TestInbox_ReturnsCopy(t *testing.T) {
	u := newUser(t, card.None)
	u.OnStationEvent(nil, "station 3 is offline")

	inbox := u.Inbox()
	inbox[0] = "mutated"

	assert.Equal(t, []string{"station 3 is offline"}, u.Inbox())
}

func TestDisplayStats(t *testing.T) {
	u := newUser(t, card.Max)

	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	r := rental.New(&bike.Bike{ID: 1, Type: bike.Mechanical}, start)
	r.ReturnedAt = start.Add(90 * time.Minute)
	r.Price = decimal.NewFromInt(1)
	r.CreditAdded = 5
	u.RecordRide(r)

	out := u.DisplayStats()
	assert.Contains(t, out, "User 1 (alice)")
	assert.Contains(t, out, "total rides: 1")
	assert.Contains(t, out, "total credits accumulated: 5")
	assert.Contains(t, out, "total amount spent: 1.00")
	assert.Contains(t, out, "total time spent: 90 minutes")
}

package network

import (
	"strconv"

	"github.com/yirenWang/myVelib/internal/card"
	"github.com/yirenWang/myVelib/internal/logger"
	"github.com/yirenWang/myVelib/internal/metrics"
	"github.com/yirenWang/myVelib/internal/station"
	"github.com/yirenWang/myVelib/internal/user"
)

// subscribe registers the user for availability events of a station. Ride
// planning is the only caller; a user subscribed through a superseded plan
// keeps receiving events until a ride completes at that station.
func (n *Network) subscribe(stationID int, u *user.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	subs, ok := n.subscribers[stationID]
	if !ok {
		subs = make(map[int]StationObserver)
		n.subscribers[stationID] = subs
	}
	subs[u.ID()] = u
}

func (n *Network) unsubscribe(stationID, userID int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subscribers[stationID], userID)
}

// Subscribers lists the user ids currently watching a station.
func (n *Network) Subscribers(stationID int) []int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]int, 0, len(n.subscribers[stationID]))
	for id := range n.subscribers[stationID] {
		out = append(out, id)
	}
	return out
}

// notifySubscribers pushes a station event to every subscribed observer.
// Delivery is synchronous and fire-and-forget: no acknowledgment, no retry.
func (n *Network) notifySubscribers(s *station.Station, event string) {
	n.mu.RLock()
	observers := make([]StationObserver, 0, len(n.subscribers[s.ID()]))
	for _, o := range n.subscribers[s.ID()] {
		observers = append(observers, o)
	}
	n.mu.RUnlock()

	if len(observers) == 0 {
		return
	}
	message := "station " + strconv.Itoa(s.ID()) + ": " + event
	for _, o := range observers {
		o.OnStationEvent(s, message)
		metrics.RecordStationNotification()
	}
	logger.Debugf("notified %d subscriber(s): %s", len(observers), message)
}

func idLabel(id int) string {
	return strconv.Itoa(id)
}

// reasonLabel maps a transaction failure to a stable metric label.
func reasonLabel(err error) string {
	switch err {
	case station.ErrOffline:
		return "station_offline"
	case station.ErrFull:
		return "station_full"
	case station.ErrBikeUnavailable:
		return "bike_unavailable"
	case card.ErrInvalidDates:
		return "invalid_dates"
	case card.ErrInvalidBike:
		return "invalid_bike"
	default:
		return "other"
	}
}

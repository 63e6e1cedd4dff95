package network

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yirenWang/myVelib/internal/bike"
	"github.com/yirenWang/myVelib/internal/card"
	"github.com/yirenWang/myVelib/internal/geo"
	"github.com/yirenWang/myVelib/internal/rideplan"
	"github.com/yirenWang/myVelib/internal/station"
)

// Console renders every network operation as a human-readable message for
// the CLUI and batch layers. It never lets an error escape: callers just
// print the returned string.
type Console struct {
	net *Network
}

func NewConsole(n *Network) *Console {
	return &Console{net: n}
}

func (c *Console) Network() *Network {
	return c.net
}

func (c *Console) AddUser(name, cardKind string) string {
	kind, err := card.ParseKind(cardKind)
	if err != nil {
		return ErrorMessage(err)
	}
	u, err := c.net.AddUser(name, kind)
	if err != nil {
		return ErrorMessage(err)
	}
	return fmt.Sprintf("User %s (id: %d) was added with card of type %s.", u.Name(), u.ID(), kind)
}

func (c *Console) AddStation(stationKind string, capacity int) string {
	kind, err := station.ParseKind(stationKind)
	if err != nil {
		return ErrorMessage(err)
	}
	s, err := c.net.AddStation(kind, capacity)
	if err != nil {
		return ErrorMessage(err)
	}
	return fmt.Sprintf("Station %d was created with %d parking slots at %s.", s.ID(), s.Capacity(), s.Coordinates())
}

func (c *Console) AddStationAt(stationKind string, x, y float64, capacity int, online bool) string {
	kind, err := station.ParseKind(stationKind)
	if err != nil {
		return ErrorMessage(err)
	}
	s, err := c.net.AddStationAt(kind, capacity, geo.Point{X: x, Y: y}, online)
	if err != nil {
		return ErrorMessage(err)
	}
	return fmt.Sprintf("Station %d was created with %d parking slots at %s, online: %t.", s.ID(), s.Capacity(), s.Coordinates(), online)
}

func (c *Console) AddBike(stationID int, bikeType string) string {
	t, err := bike.ParseType(bikeType)
	if err != nil {
		return ErrorMessage(err)
	}
	b, err := c.net.AddBike(stationID, t)
	if err != nil {
		return ErrorMessage(err)
	}
	return fmt.Sprintf("Bike %d (%s) was added to station %d.", b.ID, t, stationID)
}

func (c *Console) PlanRide(sourceX, sourceY, destX, destY float64, userID int, policy, bikeType string) string {
	p, err := rideplan.ParsePolicy(policy)
	if err != nil {
		return ErrorMessage(err)
	}
	t, err := bike.ParseType(bikeType)
	if err != nil {
		return ErrorMessage(err)
	}
	u, err := c.net.User(userID)
	if err != nil {
		return ErrorMessage(err)
	}
	replaced := u.Plan() != nil
	plan, err := c.net.PlanRide(userID, geo.Point{X: sourceX, Y: sourceY}, geo.Point{X: destX, Y: destY}, p, t)
	if err != nil {
		return ErrorMessage(err)
	}
	msg := ""
	if replaced {
		msg = fmt.Sprintf("The previous ride plan of %s was discarded.\n", u.Name())
	}
	return msg + fmt.Sprintf("%s is subscribed to station %d and will be notified when its availability changes. Their %s.",
		u.Name(), plan.DestStation.ID(), plan)
}

func (c *Console) RentBike(userID, stationID int, bikeType string, at time.Time) string {
	t, err := bike.ParseType(bikeType)
	if err != nil {
		return ErrorMessage(err)
	}
	b, err := c.net.RentBike(userID, stationID, t, at)
	if err != nil {
		return ErrorMessage(err)
	}
	return fmt.Sprintf("User %d rented bike %d (%s) at station %d.", userID, b.ID, strings.ToLower(b.Type.String()), stationID)
}

func (c *Console) ReturnBike(userID, stationID int, at time.Time) string {
	r, err := c.net.ReturnBike(userID, stationID, at)
	if err != nil {
		return ErrorMessage(err)
	}
	return fmt.Sprintf("User %d returned bike %d at station %d after %d minutes: %s€ charged, %d minutes of credit used, %d earned.",
		userID, r.Bike.ID, stationID, r.Minutes(), r.Price.StringFixed(2), r.CreditUsed, r.CreditAdded)
}

func (c *Console) SortStations(policy string) string {
	p, err := station.ParseSortPolicy(policy)
	if err != nil {
		return ErrorMessage(err)
	}
	ranked, err := c.net.SortStations(p)
	if err != nil {
		return ErrorMessage(err)
	}
	lines := make([]string, 0, len(ranked)+1)
	lines = append(lines, fmt.Sprintf("Stations ordered by the %s policy:", strings.ToLower(policy)))
	for _, s := range ranked {
		lines = append(lines, s.String())
	}
	return strings.Join(lines, "\n")
}

func (c *Console) SetOnline(stationID int) string {
	changed, err := c.net.SetOnline(stationID)
	if err != nil {
		return ErrorMessage(err)
	}
	if !changed {
		return fmt.Sprintf("Station %d is already online.", stationID)
	}
	return fmt.Sprintf("Station %d is set to online.", stationID)
}

func (c *Console) SetOffline(stationID int) string {
	changed, err := c.net.SetOffline(stationID)
	if err != nil {
		return ErrorMessage(err)
	}
	if !changed {
		return fmt.Sprintf("Station %d is already offline.", stationID)
	}
	return fmt.Sprintf("Station %d is set to offline.", stationID)
}

func (c *Console) DisplayStation(stationID int) string {
	s, err := c.net.Station(stationID)
	if err != nil {
		return ErrorMessage(err)
	}
	return fmt.Sprintf("Station %d:\n%s\ntotal rentals: %d\ntotal returns: %d\noccupancy: %.0f%%",
		s.ID(), s, s.TotalRentals(), s.TotalReturns(), s.Occupancy()*100)
}

func (c *Console) DisplayUser(userID int) string {
	u, err := c.net.User(userID)
	if err != nil {
		return ErrorMessage(err)
	}
	return u.DisplayStats()
}

// Display renders the whole network.
func (c *Console) Display() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Network %s:\n", c.net.Name())
	fmt.Fprintf(&b, "created: %s\n", c.net.CreatedAt().Format(time.RFC3339))
	fmt.Fprintf(&b, "current date: %s\n", c.net.Clock().Format(time.RFC3339))
	fmt.Fprintf(&b, "side: %.1fkm\n", c.net.Side())
	b.WriteString("stations:\n")
	for _, s := range c.net.Stations() {
		fmt.Fprintf(&b, "  %s\n", s)
	}
	b.WriteString("users:\n")
	for _, u := range c.net.Users() {
		fmt.Fprintf(&b, "  %s\n", u)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (c *Console) Reset() string {
	c.net.Reset()
	return "Successfully reset id generators."
}

// ErrorMessage maps every failure of the engine to its user-facing message.
// Both the console and the HTTP handlers render errors through it, so the
// two surfaces stay consistent.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnknownUser):
		return "No user found with this id."
	case errors.Is(err, ErrUnknownStation):
		return "No station found with this id."
	case errors.Is(err, ErrOutOfBounds):
		return "Coordinates are out of bounds."
	case errors.Is(err, ErrOngoingRental):
		return "This user already has a bike rental in progress."
	case errors.Is(err, ErrNoActiveRental):
		return "This user has no ongoing bike rental."
	case errors.Is(err, bike.ErrInvalidType):
		return "This type of bike is not recognized."
	case errors.Is(err, card.ErrInvalidKind):
		return "This type of card is not recognized."
	case errors.Is(err, station.ErrInvalidKind):
		return "This type of station is not recognized."
	case errors.Is(err, rideplan.ErrUnknownPolicy):
		return "This ride planning policy is not recognized."
	case errors.Is(err, station.ErrUnknownSortPolicy):
		return "This sorting policy is not recognized."
	case errors.Is(err, rideplan.ErrNoViableStation):
		return "No station could satisfy this ride plan."
	case errors.Is(err, station.ErrOffline):
		return "This station is offline."
	case errors.Is(err, station.ErrFull):
		return "This station is full."
	case errors.Is(err, station.ErrBikeUnavailable):
		return "No bike of this type is available at this station."
	case errors.Is(err, station.ErrInvalidTimeSpan):
		return "The end of the time span is earlier than its start."
	case errors.Is(err, card.ErrInvalidDates):
		return "The rental dates do not allow the price to be calculated."
	case errors.Is(err, card.ErrInvalidBike):
		return "The rental bike does not allow the price to be calculated."
	case errors.Is(err, card.ErrNegativeCredit):
		return "The card's time credit cannot go negative."
	default:
		return "Unexpected error: " + err.Error()
	}
}

// Package card implements the fare and time-credit policies bound to a
// user's registration card. Three kinds exist:
//
//   - NO_CARD: 1€ per started hour for mechanical bikes, 2€ for electric
//     ones. No time credit ever accrues.
//   - VLIBRE: mechanical rides get the first hour free, then 1€ per started
//     hour; electric rides cost 1€ for the first started hour, then 2€ per
//     started hour.
//   - VMAX: the first hour is free on any bike, then 1€ per started hour.
//
// VLIBRE and VMAX cards hold a balance of time-credit minutes, earned from
// plus-station returns and spent to shave started hours off a ride before it
// is priced.
package card

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yirenWang/myVelib/internal/bike"
	"github.com/yirenWang/myVelib/internal/rental"
)

var (
	ErrInvalidKind    = errors.New("invalid card type")
	ErrNegativeCredit = errors.New("time credit balance cannot go negative")
	ErrInvalidBike    = errors.New("rental bike does not allow price calculation")
	ErrInvalidDates   = errors.New("rental dates do not allow price calculation")
)

type Kind string

const (
	None  Kind = "NO_CARD"
	Libre Kind = "VLIBRE"
	Max   Kind = "VMAX"
)

func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(s) {
	case "NO_CARD", "NONE":
		return None, nil
	case "VLIBRE", "LIBRE":
		return Libre, nil
	case "VMAX", "MAX":
		return Max, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k Kind) String() string {
	return string(k)
}

// Card is owned exclusively by one user; the user's lock guards it, so the
// card itself carries no synchronization.
type Card struct {
	kind   Kind
	credit int // minutes
}

func New(kind Kind) (*Card, error) {
	switch kind {
	case None, Libre, Max:
		return &Card{kind: kind}, nil
	default:
		return nil, ErrInvalidKind
	}
}

func (c *Card) Kind() Kind {
	return c.kind
}

// Credit is the current time-credit balance, in minutes.
func (c *Card) Credit() int {
	return c.credit
}

// AddCredit grants minutes of time credit and returns how many were actually
// added. A NO_CARD balance never accrues, so the grant is silently dropped.
func (c *Card) AddCredit(minutes int) int {
	if c.kind == None || minutes <= 0 {
		return 0
	}
	c.credit += minutes
	return minutes
}

// RemoveCredit takes minutes back off the balance. Used both to spend credit
// on a priced ride and to roll back a tentative bonus grant.
func (c *Card) RemoveCredit(minutes int) error {
	if minutes < 0 || minutes > c.credit {
		return ErrNegativeCredit
	}
	c.credit -= minutes
	return nil
}

// Price computes the fare for a completed rental under this card's policy,
// together with the time-credit minutes that should be spent on it. The
// card's balance is not touched here: the coordinator commits the credit
// spend only once the whole return transaction is known to succeed.
func (c *Card) Price(r *rental.Rental) (decimal.Decimal, int, error) {
	if r == nil || r.Bike == nil {
		return decimal.Zero, 0, ErrInvalidBike
	}
	if r.Bike.Type != bike.Mechanical && r.Bike.Type != bike.Electric {
		return decimal.Zero, 0, ErrInvalidBike
	}
	if r.RentedAt.IsZero() || !r.Returned() || r.ReturnedAt.Before(r.RentedAt) {
		return decimal.Zero, 0, ErrInvalidDates
	}

	minutes := r.Minutes()
	if c.kind == None {
		return decimal.NewFromInt(c.hoursPrice(r.Bike.Type, ceilHours(minutes))), 0, nil
	}

	used := c.creditToSpend(r.Bike.Type, minutes)
	price := c.hoursPrice(r.Bike.Type, ceilHours(minutes-used))
	return decimal.NewFromInt(price), used, nil
}

// creditToSpend picks the smallest number of credit minutes that reaches the
// minimal achievable price for the ride. Credit that cannot lower the price
// is never burned.
func (c *Card) creditToSpend(t bike.Type, minutes int) int {
	available := c.credit
	if available > minutes {
		available = minutes
	}
	minPrice := c.hoursPrice(t, ceilHours(minutes-available))
	if c.hoursPrice(t, ceilHours(minutes)) == minPrice {
		return 0
	}
	// Walk hour boundaries down to the cheapest one still above the floor.
	k := minutes / 60
	for c.hoursPrice(t, k) != minPrice {
		k--
	}
	return minutes - k*60
}

// hoursPrice is the fare in euros for k started hours.
func (c *Card) hoursPrice(t bike.Type, k int) int64 {
	hours := int64(k)
	switch c.kind {
	case Libre:
		if t == bike.Electric {
			if hours == 0 {
				return 0
			}
			return 1 + 2*(hours-1)
		}
		if hours <= 1 {
			return 0
		}
		return hours - 1
	case Max:
		if hours <= 1 {
			return 0
		}
		return hours - 1
	default: // None
		if t == bike.Electric {
			return 2 * hours
		}
		return hours
	}
}

func ceilHours(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return (minutes + 59) / 60
}

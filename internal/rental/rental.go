// Package rental tracks a single bike loan from the moment it leaves a
// station until it is priced on return.
package rental

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yirenWang/myVelib/internal/bike"
)

// Rental is created when a bike is rented and finalized when it is returned.
// Price, CreditUsed and CreditAdded stay zero until the return transaction
// prices the ride.
type Rental struct {
	Bike       *bike.Bike      `json:"bike"`
	RentedAt   time.Time       `json:"rented_at"`
	ReturnedAt time.Time       `json:"returned_at"`
	Price      decimal.Decimal `json:"price"`
	// Time credit minutes consumed to lower the price of this ride.
	CreditUsed int `json:"credit_used"`
	// Bonus time credit minutes granted by the return station.
	CreditAdded int `json:"credit_added"`
}

func New(b *bike.Bike, at time.Time) *Rental {
	return &Rental{Bike: b, RentedAt: at}
}

// Returned reports whether the rental has a return timestamp.
func (r *Rental) Returned() bool {
	return !r.ReturnedAt.IsZero()
}

// Minutes is the ride duration in whole minutes. Zero until returned.
func (r *Rental) Minutes() int {
	if !r.Returned() {
		return 0
	}
	return int(r.ReturnedAt.Sub(r.RentedAt).Minutes())
}

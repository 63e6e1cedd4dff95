// Package bike defines the bikes circulating in the network. A bike is
// immutable once created and is owned either by exactly one station or by
// exactly one in-flight rental.
package bike

import (
	"errors"
	"strings"

	"github.com/yirenWang/myVelib/internal/ident"
)

var ErrInvalidType = errors.New("invalid bike type")

type Type string

const (
	Mechanical Type = "MECH"
	Electric   Type = "ELEC"
)

// ParseType recognizes the textual bike type names used by the CLUI and the
// HTTP surface, case-insensitively.
func ParseType(s string) (Type, error) {
	switch strings.ToUpper(s) {
	case "MECH", "MECHANICAL":
		return Mechanical, nil
	case "ELEC", "ELECTRICAL", "ELECTRIC":
		return Electric, nil
	default:
		return "", ErrInvalidType
	}
}

// Speed is the average riding speed for this bike type, in km/h. Used by the
// fastest-route planning policy.
func (t Type) Speed() float64 {
	if t == Electric {
		return 20
	}
	return 15
}

func (t Type) String() string {
	return string(t)
}

type Bike struct {
	ID   int  `json:"id"`
	Type Type `json:"type"`
}

// Factory creates bikes with ids from the shared sequence.
type Factory struct {
	ids *ident.Sequence
}

func NewFactory(ids *ident.Sequence) *Factory {
	return &Factory{ids: ids}
}

func (f *Factory) New(t Type) (*Bike, error) {
	if t != Mechanical && t != Electric {
		return nil, ErrInvalidType
	}
	return &Bike{ID: f.ids.NextID(), Type: t}, nil
}

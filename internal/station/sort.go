package station

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrUnknownSortPolicy = errors.New("unknown station sorting policy")
	ErrInvalidTimeSpan   = errors.New("end of time span is earlier than its start")
)

// SortPolicy is the closed set of station ranking rules.
type SortPolicy string

const (
	// MostUsed ranks stations by rent and return activity recorded within
	// the time window, descending.
	MostUsed SortPolicy = "MOST_USED"
	// LeastOccupied ranks stations by current bike count, ascending. The
	// occupancy is instantaneous; the window only gets validated.
	LeastOccupied SortPolicy = "LEAST_OCCUPIED"
)

func ParseSortPolicy(s string) (SortPolicy, error) {
	switch strings.ToUpper(s) {
	case "MOST_USED":
		return MostUsed, nil
	case "LEAST_OCCUPIED":
		return LeastOccupied, nil
	default:
		return "", ErrUnknownSortPolicy
	}
}

func (p SortPolicy) String() string {
	return string(p)
}

type sortFunc func(stations []*Station, start, end time.Time) []*Station

var sorters = map[SortPolicy]sortFunc{
	MostUsed:      sortMostUsed,
	LeastOccupied: sortLeastOccupied,
}

// Sort returns a new slice with the stations ranked under the given policy
// over the [start, end] window. Ties are broken by station id, so the order
// is total and stable.
func Sort(stations []*Station, start, end time.Time, policy SortPolicy) ([]*Station, error) {
	sorter, ok := sorters[policy]
	if !ok {
		return nil, ErrUnknownSortPolicy
	}
	if end.Before(start) {
		return nil, ErrInvalidTimeSpan
	}
	return sorter(stations, start, end), nil
}

func sortMostUsed(stations []*Station, start, end time.Time) []*Station {
	ranked := append([]*Station(nil), stations...)
	sort.SliceStable(ranked, func(i, j int) bool {
		ui, uj := ranked[i].ActivityBetween(start, end), ranked[j].ActivityBetween(start, end)
		if ui != uj {
			return ui > uj
		}
		return ranked[i].ID() < ranked[j].ID()
	})
	return ranked
}

func sortLeastOccupied(stations []*Station, _, _ time.Time) []*Station {
	ranked := append([]*Station(nil), stations...)
	sort.SliceStable(ranked, func(i, j int) bool {
		bi, bj := ranked[i].CountBikes(), ranked[j].CountBikes()
		if bi != bj {
			return bi < bj
		}
		return ranked[i].ID() < ranked[j].ID()
	})
	return ranked
}

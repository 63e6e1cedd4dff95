// Package geo holds the flat coordinate model of the network: points in a
// bounded square, with distances in kilometers.
package geo

import (
	"fmt"
	"math"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance is the Euclidean distance between p and q, in km.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Within reports whether p lies inside the [0, side] square.
func (p Point) Within(side float64) bool {
	return p.X >= 0 && p.X <= side && p.Y >= 0 && p.Y <= side
}

func (p Point) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

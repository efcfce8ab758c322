package main

import (
	"math"

	"github.com/google/uuid"
)

// NewPlayerID returns a fresh opaque connection id
func NewPlayerID() string {
	return uuid.NewString()
}

// Distance returns the distance between two points on the ground plane
func Distance(x1, z1, x2, z2 float64) float64 {
	return math.Hypot(x2-x1, z2-z1)
}

// finite reports whether none of vs is NaN or infinite
func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

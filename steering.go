package main

import "math"

const (
	SeekMinDistance  = 1.0 // no seek inside this range, avoids jitter at point-blank
	SeparationRadius = 1.5
	SeparationWeight = 2.0
)

// Vec2 is a planar (x, z) vector
type Vec2 struct {
	X, Z float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Z + o.Z} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Z * s} }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Z) }
func (v Vec2) IsFinite() bool       { return isFinite(v.X) && isFinite(v.Z) }

// Normalize returns the unit vector, or the zero vector for zero length
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 || !isFinite(l) {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Z / l}
}

// NearestPlayer returns the closest joined player to (x, z) on the ground
// plane. Dead players are still targets; unjoined players are not.
func NearestPlayer(reg *Registry, x, z float64) (*Player, float64) {
	var best *Player
	bestDist := math.MaxFloat64
	reg.Each(func(p *Player) {
		if !p.Joined() {
			return
		}
		d := Distance(x, z, p.X, p.Z)
		if d < bestDist {
			best = p
			bestDist = d
		}
	})
	return best, bestDist
}

// Seek returns the unit vector from (x, z) toward the target, or zero when
// the target is within SeekMinDistance
func Seek(x, z, tx, tz float64) Vec2 {
	d := Vec2{tx - x, tz - z}
	if d.Len() <= SeekMinDistance {
		return Vec2{}
	}
	return d.Normalize()
}

// Separation sums inverse-distance repulsion from every other zombie within
// SeparationRadius. Coincident zombies have no defined direction and
// contribute nothing.
func Separation(self *Zombie, all []*Zombie) Vec2 {
	var sep Vec2
	for _, o := range all {
		if o == self {
			continue
		}
		dx := self.X - o.X
		dz := self.Z - o.Z
		dist := math.Hypot(dx, dz)
		if dist == 0 || dist >= SeparationRadius {
			continue
		}
		// unit direction away from o, weighted by 1/dist
		sep = sep.Add(Vec2{dx / dist, dz / dist}.Scale(1 / dist))
	}
	return sep
}

// Steer combines seek and weighted separation into a unit direction
func Steer(seek, sep Vec2) Vec2 {
	return seek.Add(sep.Scale(SeparationWeight)).Normalize()
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Package geom provides the 2D geometry kernel shared by the BSP builder,
// the visibility solver and the collision detector: scalar predicates over
// mgl64.Vec2 and the Segment wall type.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used by side classification and intersection
// routines. Map coordinates are in world units, so this is far below
// anything an authored map can express.
const Epsilon = 1e-9

// Side returns >0 if p lies to the left of the directed line a->b,
// <0 to the right and 0 on the line (ccw positive convention).
func Side(p, a, b mgl64.Vec2) float64 {
	return (b.X()-a.X())*(p.Y()-a.Y()) - (b.Y()-a.Y())*(p.X()-a.X())
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b mgl64.Vec2, t float64) mgl64.Vec2 {
	return mgl64.Vec2{
		a.X() + (b.X()-a.X())*t,
		a.Y() + (b.Y()-a.Y())*t,
	}
}

// LineIntersection intersects the segment p1->p2 with the infinite line
// through q1->q2. It returns the intersection point and the parameter t
// along p1->p2. ok is false for parallel or degenerate input.
func LineIntersection(p1, p2, q1, q2 mgl64.Vec2) (pt mgl64.Vec2, t float64, ok bool) {
	d1 := p2.Sub(p1)
	d2 := q2.Sub(q1)

	denom := d1.X()*d2.Y() - d1.Y()*d2.X()
	if math.Abs(denom) < Epsilon {
		return mgl64.Vec2{}, 0, false
	}

	t = ((q1.X()-p1.X())*d2.Y() - (q1.Y()-p1.Y())*d2.X()) / denom

	return p1.Add(d1.Mul(t)), t, true
}

// SegmentIntersection intersects the finite segments p1->p2 and q1->q2.
// ok is false if they are parallel or the crossing lies outside either
// segment.
func SegmentIntersection(p1, p2, q1, q2 mgl64.Vec2) (mgl64.Vec2, bool) {
	d1 := p2.Sub(p1)
	d2 := q2.Sub(q1)

	denom := d1.X()*d2.Y() - d1.Y()*d2.X()
	if math.Abs(denom) < Epsilon {
		return mgl64.Vec2{}, false
	}

	t := ((q1.X()-p1.X())*d2.Y() - (q1.Y()-p1.Y())*d2.X()) / denom
	u := ((q1.X()-p1.X())*d1.Y() - (q1.Y()-p1.Y())*d1.X()) / denom

	if t < 0 || t > 1 || u < 0 || u > 1 {
		return mgl64.Vec2{}, false
	}

	return p1.Add(d1.Mul(t)), true
}

// DistSqToSegment returns the squared distance from p to the finite
// segment a->b.
func DistSqToSegment(p, a, b mgl64.Vec2) float64 {
	v := b.Sub(a)
	w := p.Sub(a)

	c1 := v.Dot(w)
	if c1 <= 0 {
		return w.Dot(w)
	}

	c2 := v.Dot(v)
	if c2 <= c1 {
		d := p.Sub(b)
		return d.Dot(d)
	}

	d := p.Sub(a.Add(v.Mul(c1 / c2)))

	return d.Dot(d)
}

// AngleDiff wraps a-b into (-pi, pi].
func AngleDiff(a, b float64) float64 {
	d := a - b
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d < -math.Pi {
		d += 2 * math.Pi
	}

	return d
}

// SignedPolygonArea returns the signed area of the polygon (ccw positive).
func SignedPolygonArea(pts []mgl64.Vec2) float64 {
	if len(pts) < 3 {
		return 0
	}

	var area float64

	for i := range pts {
		j := (i + 1) % len(pts)
		area += pts[i].X()*pts[j].Y() - pts[j].X()*pts[i].Y()
	}

	return area / 2
}

// IsClockwise reports whether the polygon winds clockwise
// (negative signed area).
func IsClockwise(pts []mgl64.Vec2) bool {
	return SignedPolygonArea(pts) < 0
}

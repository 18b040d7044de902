// Package collision moves a circular body through the partitioned world:
// a closed-form swept-circle test against static wall segments, walked
// through the BSP so only subspaces the sweep can reach are visited.
package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/xoom-engine/xoom/pkg/bsp"
	"github.com/xoom-engine/xoom/pkg/geom"
)

// Contact is the earliest blocking contact of a sweep. Point is the
// circle center at contact time; Segment is the contacted wall, which the
// caller needs to compute a slide direction.
type Contact struct {
	Point   mgl64.Vec2
	Segment *geom.Segment
	DistSq  float64
}

// Detector runs swept-circle queries against a built BSP tree. The tree
// is read-only, so one Detector may serve concurrent callers.
type Detector struct {
	root *bsp.Node
}

// NewDetector returns a Detector over root. A nil root is legal and
// reports no collisions.
func NewDetector(root *bsp.Node) *Detector {
	return &Detector{root: root}
}

// Sweep moves a circle of the given radius from start to end and returns
// the earliest contact, or nil if the path is clear. A zero-length sweep
// never collides.
func (d *Detector) Sweep(start, end mgl64.Vec2, radius float64) *Contact {
	move := end.Sub(start)
	if move.Dot(move) == 0 {
		return nil
	}

	var best *Contact

	consider := func(center mgl64.Vec2, seg *geom.Segment) {
		delta := center.Sub(start)
		distSq := delta.Dot(delta)

		if best == nil || distSq < best.DistSq {
			best = &Contact{Point: center, Segment: seg, DistSq: distSq}
		}
	}

	d.walk(d.root, start, end, radius, consider)

	return best
}

func (d *Detector) walk(node *bsp.Node, start, end mgl64.Vec2, radius float64, consider func(mgl64.Vec2, *geom.Segment)) {
	if node == nil || node.Partition == nil {
		return
	}

	for _, seg := range node.Coplanar {
		if !seg.BlocksCollision {
			continue
		}

		sweepSegment(start, end, radius, seg, consider)
	}

	sideStart := geom.Side(start, node.Partition.A, node.Partition.B)
	sideEnd := geom.Side(end, node.Partition.A, node.Partition.B)

	switch {
	case sideStart >= 0 && sideEnd >= 0:
		d.walk(node.Front, start, end, radius, consider)
	case sideStart <= 0 && sideEnd <= 0:
		d.walk(node.Back, start, end, radius, consider)
	default:
		// the sweep crosses the partition
		d.walk(node.Front, start, end, radius, consider)
		d.walk(node.Back, start, end, radius, consider)
	}
}

// sweepSegment runs the edge test against both outward normals and the
// endpoint test against both segment tips, reporting every candidate
// contact center.
func sweepSegment(start, end mgl64.Vec2, radius float64, seg *geom.Segment, consider func(mgl64.Vec2, *geom.Segment)) {
	dir := seg.Dir()

	lenSq := dir.Dot(dir)
	if lenSq == 0 {
		return
	}

	normal := mgl64.Vec2{-dir.Y(), dir.X()}.Mul(1 / math.Sqrt(lenSq))

	for _, n := range [2]mgl64.Vec2{normal, normal.Mul(-1)} {
		d0 := start.Sub(seg.A).Dot(n)
		d1 := end.Sub(seg.A).Dot(n)

		// only count approaches from the side this normal faces: the
		// center starts on that side and moves toward the contact plane
		if d1 >= d0 || d1 > radius || d0 < 0 {
			continue
		}

		t := 0.0
		if d0 > radius {
			t = (d0 - radius) / (d0 - d1)
		}

		center := geom.Lerp(start, end, t)

		proj := center.Sub(seg.A).Dot(dir) / lenSq
		if proj >= 0 && proj <= 1 {
			consider(center, seg)
		}
	}

	for _, tip := range [2]mgl64.Vec2{seg.A, seg.B} {
		if t, ok := sweepPoint(start, end, tip, radius); ok {
			consider(geom.Lerp(start, end, t), seg)
		}
	}
}

// sweepPoint solves |start + t*(end-start) - p| = radius for the
// earliest t in [0,1]. A circle already overlapping p contacts at t=0
// only when it is still moving inward.
func sweepPoint(start, end, p mgl64.Vec2, radius float64) (float64, bool) {
	move := end.Sub(start)
	m := start.Sub(p)

	a := move.Dot(move)
	if a == 0 {
		return 0, false
	}

	b := 2 * m.Dot(move)
	c := m.Dot(m) - radius*radius

	if c <= 0 {
		return 0, b < 0
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}

	t := (-b - math.Sqrt(disc)) / (2 * a)
	if t < 0 || t > 1 {
		return 0, false
	}

	return t, true
}

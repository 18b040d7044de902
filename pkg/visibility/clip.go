package visibility

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/xoom-engine/xoom/pkg/geom"
)

// clipToTriangle clips seg against the FOV triangle with a three-edge
// half-plane clip. The triangle is convex, so at most one piece
// survives, running in seg's own A->B direction; fully outside yields
// none.
func clipToTriangle(seg *geom.Segment, tri [3]mgl64.Vec2) []*geom.Segment {
	poly := []mgl64.Vec2{seg.A, seg.B}

	for i := 0; i < 3; i++ {
		poly = clipAgainstEdge(poly, tri[i], tri[(i+1)%3])
		if len(poly) < 2 {
			return nil
		}
	}

	out := make([]*geom.Segment, 0, len(poly)-1)
	for i := 0; i+1 < len(poly); i++ {
		out = append(out, seg.Clipped(poly[i], poly[i+1]))
	}

	return out
}

// clipAgainstEdge keeps the parts of the open polyline on the left
// half-plane of the directed edge a->b, inserting crossings where it
// enters or leaves. The polyline is not closed, so point order is
// preserved and clipping off the tail never wraps a piece around to the
// head.
func clipAgainstEdge(poly []mgl64.Vec2, a, b mgl64.Vec2) []mgl64.Vec2 {
	inside := func(p mgl64.Vec2) bool {
		return geom.Side(p, a, b) >= 0
	}

	var out []mgl64.Vec2

	if inside(poly[0]) {
		out = append(out, poly[0])
	}

	for i := 1; i < len(poly); i++ {
		prev, curr := poly[i-1], poly[i]

		if inside(prev) != inside(curr) {
			out = append(out, edgeCrossing(prev, curr, a, b))
		}
		if inside(curr) {
			out = append(out, curr)
		}
	}

	return out
}

func edgeCrossing(p1, p2, a, b mgl64.Vec2) mgl64.Vec2 {
	pt, _, ok := geom.LineIntersection(p1, p2, a, b)
	if !ok {
		// parallel; either endpoint is as good as the other
		return p1
	}

	return pt
}

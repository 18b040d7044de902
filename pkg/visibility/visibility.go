// Package visibility determines which wall fragments are seen from a
// viewpoint each frame. Nearer geometry is painted first into a set of
// covered angular intervals; farther geometry only contributes whatever
// angular residue is still uncovered. Queries are pure functions of the
// tree and the viewer and can run concurrently.
package visibility

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/xoom-engine/xoom/pkg/bsp"
	"github.com/xoom-engine/xoom/pkg/geom"
)

// angularEpsilon discards residual intervals too narrow to project back
// onto a fragment; they only arise from floating point noise at exactly
// shared occlusion boundaries.
const angularEpsilon = 1e-12

// Viewer is the per-frame observer state.
type Viewer struct {
	Pos      mgl64.Vec2
	AngleDeg float64
	FOVDeg   float64
	Range    float64
}

// AngleRad returns the facing angle in radians.
func (v Viewer) AngleRad() float64 {
	return v.AngleDeg * math.Pi / 180
}

// Forward returns the unit facing vector.
func (v Viewer) Forward() mgl64.Vec2 {
	return mgl64.Vec2{math.Cos(v.AngleRad()), math.Sin(v.AngleRad())}
}

// FOVEdges returns the right and left FOV edge points at the given
// distance, widened by marginDeg on each side. Right is at angle-half,
// so (Pos, right, left) winds counterclockwise.
func (v Viewer) FOVEdges(dist, marginDeg float64) (right, left mgl64.Vec2) {
	half := (v.FOVDeg/2 + marginDeg) * math.Pi / 180
	a1 := v.AngleRad() - half
	a2 := v.AngleRad() + half

	right = v.Pos.Add(mgl64.Vec2{math.Cos(a1), math.Sin(a1)}.Mul(dist))
	left = v.Pos.Add(mgl64.Vec2{math.Cos(a2), math.Sin(a2)}.Mul(dist))

	return right, left
}

// Config carries per-query solver options. The zero value is usable:
// draw distance defaults to the viewer's Range and rays to
// DefaultRayCount.
type Config struct {
	// MaxDistance overrides the viewer's Range when positive.
	MaxDistance float64
	// FOVMarginDeg widens the clip triangle on each side, to avoid
	// popping at the screen edges.
	FOVMarginDeg float64
	// RayCount is used by ComputeRaycast only.
	RayCount int
}

func (c Config) maxDistance(v Viewer) float64 {
	if c.MaxDistance > 0 {
		return c.MaxDistance
	}

	return v.Range
}

// Compute returns the visible segment fragments for one frame: clipped
// to the FOV triangle, occlusion-resolved by angular interval
// subtraction, with texture u-offsets recomputed against each fragment's
// original segment. The result is non-overlapping in angle but not
// globally sorted by distance. An empty tree yields an empty result.
func Compute(root *bsp.Node, v Viewer, cfg Config) []*geom.Segment {
	maxDist := cfg.maxDistance(v)

	right, left := v.FOVEdges(maxDist, cfg.FOVMarginDeg)
	tri := [3]mgl64.Vec2{v.Pos, right, left}

	// the margin widens only the clip triangle; the angular clamp stays
	// at the true FOV so no fragment escapes it
	half := v.FOVDeg / 2 * math.Pi / 180
	facing := v.AngleRad()

	var ordered []*geom.Segment
	collectOrder(root, v.Pos, &ordered)

	var (
		covered intervalSet
		visible []*geom.Segment
	)

	for _, seg := range ordered {
		if !facingVisible(seg, v.Pos) {
			continue
		}

		for _, clipped := range clipToTriangle(seg, tri) {
			a0 := geom.AngleDiff(angleTo(v.Pos, clipped.A), facing)
			a1 := geom.AngleDiff(angleTo(v.Pos, clipped.B), facing)

			lo := math.Max(math.Min(a0, a1), -half)
			hi := math.Min(math.Max(a0, a1), half)
			if hi-lo <= angularEpsilon {
				continue
			}

			for _, iv := range covered.subtract(interval{lo, hi}) {
				if iv.hi-iv.lo <= angularEpsilon {
					continue
				}

				t0, t1 := 0.0, 1.0
				if a1 != a0 {
					t0 = (iv.lo - a0) / (a1 - a0)
					t1 = (iv.hi - a0) / (a1 - a0)
				}

				// keep the parent's direction so facing and texture
				// offsets survive reconstruction
				if t0 > t1 {
					t0, t1 = t1, t0
				}

				p0 := geom.Lerp(clipped.A, clipped.B, t0)
				p1 := geom.Lerp(clipped.A, clipped.B, t1)

				frag := seg.Clipped(p0, p1)
				frag.UOffset = seg.UOffsetAt(p0)

				visible = append(visible, frag)
				covered = append(covered, iv)
			}

			covered = covered.merge()
		}
	}

	return visible
}

// collectOrder walks the tree near-to-far relative to pos: the subtree
// containing pos first, then the node's coplanar segments, then the far
// subtree.
func collectOrder(node *bsp.Node, pos mgl64.Vec2, out *[]*geom.Segment) {
	if node == nil || node.Partition == nil {
		return
	}

	near, far := node.Front, node.Back
	if geom.Side(pos, node.Partition.A, node.Partition.B) < 0 {
		near, far = far, near
	}

	collectOrder(near, pos, out)
	*out = append(*out, node.Coplanar...)
	collectOrder(far, pos, out)
}

// facingVisible applies the single-sided wall rule: the viewer must be
// on the side the segment's facing marks as solid-visible. Unspecified
// facing always passes.
func facingVisible(s *geom.Segment, pos mgl64.Vec2) bool {
	switch s.Facing {
	case geom.FacingInterior:
		return geom.Side(pos, s.A, s.B) >= 0
	case geom.FacingExterior:
		return geom.Side(pos, s.A, s.B) <= 0
	default:
		return true
	}
}

func angleTo(from, to mgl64.Vec2) float64 {
	return math.Atan2(to.Y()-from.Y(), to.X()-from.X())
}

package visibility

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/xoom-engine/xoom/pkg/bsp"
	"github.com/xoom-engine/xoom/pkg/geom"
)

// DefaultRayCount is the fan resolution used by ComputeRaycast when the
// config does not set one.
const DefaultRayCount = 240

// ComputeRaycast is the alternative visibility mode: a fan of rays across
// the FOV, walked against the near-to-far segment order. Portal segments
// are marked visible without stopping the ray, so geometry behind them
// stays reachable; the first solid segment hit is marked and stops the
// ray. Whole segments are returned, in first-hit order, each at most once.
func ComputeRaycast(root *bsp.Node, v Viewer, cfg Config) []*geom.Segment {
	rayCount := cfg.RayCount
	if rayCount <= 0 {
		rayCount = DefaultRayCount
	}

	maxDist := cfg.maxDistance(v)
	half := (v.FOVDeg/2 + cfg.FOVMarginDeg) * math.Pi / 180

	var ordered []*geom.Segment
	collectOrder(root, v.Pos, &ordered)

	seen := make(map[*geom.Segment]bool)

	var visible []*geom.Segment

	for i := 0; i < rayCount; i++ {
		frac := 0.5
		if rayCount > 1 {
			frac = float64(i) / float64(rayCount-1)
		}

		ang := v.AngleRad() - half + 2*half*frac
		end := v.Pos.Add(mgl64.Vec2{math.Cos(ang), math.Sin(ang)}.Mul(maxDist))

		for _, seg := range ordered {
			if !facingVisible(seg, v.Pos) {
				continue
			}

			if _, ok := geom.SegmentIntersection(v.Pos, end, seg.A, seg.B); !ok {
				continue
			}

			if !seen[seg] {
				seen[seg] = true
				visible = append(visible, seg)
			}

			if seg.Kind == geom.WallSolid {
				break
			}
		}
	}

	return visible
}

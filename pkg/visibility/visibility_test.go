package visibility

import (
	"math"
	"sort"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xoom-engine/xoom/pkg/bsp"
	"github.com/xoom-engine/xoom/pkg/geom"
)

func buildTree(t *testing.T, segs ...*geom.Segment) *bsp.Node {
	t.Helper()

	return bsp.NewBuilder().Build(segs)
}

func testViewer() Viewer {
	return Viewer{
		Pos:      mgl64.Vec2{5, -5},
		AngleDeg: 90, // facing +Y
		FOVDeg:   90,
		Range:    20,
	}
}

// fragSpan maps a fragment back to its angular interval relative to the
// viewer's facing direction.
func fragSpan(v Viewer, frag *geom.Segment) (lo, hi float64) {
	a0 := geom.AngleDiff(angleTo(v.Pos, frag.A), v.AngleRad())
	a1 := geom.AngleDiff(angleTo(v.Pos, frag.B), v.AngleRad())

	return math.Min(a0, a1), math.Max(a0, a1)
}

func TestCompute_EmptyTree(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Compute(buildTree(t), testViewer(), Config{}))
}

func TestCompute_SingleSegmentFullyVisible(t *testing.T) {
	t.Parallel()

	seg := geom.NewSegment(mgl64.Vec2{0, 0}, mgl64.Vec2{10, 0})
	got := Compute(buildTree(t, seg), testViewer(), Config{})

	require.Len(t, got, 1)

	frag := got[0]
	assert.InDelta(t, 0, frag.A.X(), 1e-6)
	assert.InDelta(t, 0, frag.A.Y(), 1e-6)
	assert.InDelta(t, 10, frag.B.X(), 1e-6)
	assert.InDelta(t, 0, frag.B.Y(), 1e-6)
	assert.Same(t, seg, frag.Original)

	// the angular span is symmetric about the facing direction
	lo, hi := fragSpan(testViewer(), frag)
	assert.InDelta(t, -math.Pi/4, lo, 1e-6)
	assert.InDelta(t, math.Pi/4, hi, 1e-6)
}

func TestCompute_UOffsetRoundTrip(t *testing.T) {
	t.Parallel()

	seg := geom.NewSegment(mgl64.Vec2{0, 0}, mgl64.Vec2{10, 0})
	seg.UOffset = 42

	got := Compute(buildTree(t, seg), testViewer(), Config{})

	require.Len(t, got, 1)
	// no occluders and no clipping: the offset must come back unchanged
	assert.InDelta(t, 42, got[0].UOffset, 1e-6)
}

func TestCompute_NearOccludesFar(t *testing.T) {
	t.Parallel()

	near := geom.NewSegment(mgl64.Vec2{4, -2}, mgl64.Vec2{6, -2})
	far := geom.NewSegment(mgl64.Vec2{0, 0}, mgl64.Vec2{10, 0})

	v := testViewer()
	got := Compute(buildTree(t, far, near), v, Config{})

	var nearFrags, farFrags []*geom.Segment
	for _, f := range got {
		if f.Original == near {
			nearFrags = append(nearFrags, f)
		} else {
			farFrags = append(farFrags, f)
		}
	}

	// the near wall survives whole, the far wall is eaten in the middle
	require.Len(t, nearFrags, 1)
	require.Len(t, farFrags, 2)

	nearLo, nearHi := fragSpan(v, nearFrags[0])
	for _, f := range farFrags {
		lo, hi := fragSpan(v, f)
		overlap := math.Min(hi, nearHi) - math.Max(lo, nearLo)
		assert.LessOrEqual(t, overlap, 1e-9)
	}

	assertAngularInvariants(t, v, got)
}

func TestCompute_FullOcclusion(t *testing.T) {
	t.Parallel()

	near := geom.NewSegment(mgl64.Vec2{-10, -2}, mgl64.Vec2{20, -2})
	far := geom.NewSegment(mgl64.Vec2{0, 0}, mgl64.Vec2{10, 0})

	got := Compute(buildTree(t, far, near), testViewer(), Config{})

	for _, f := range got {
		assert.Same(t, near, f.Original, "far wall must be fully occluded")
	}
}

func TestCompute_AdjacentCoplanarNoGapNoOverlap(t *testing.T) {
	t.Parallel()

	left := geom.NewSegment(mgl64.Vec2{0, 0}, mgl64.Vec2{5, 0})
	right := geom.NewSegment(mgl64.Vec2{5, 0}, mgl64.Vec2{10, 0})

	v := testViewer()
	got := Compute(buildTree(t, left, right), v, Config{})

	require.Len(t, got, 2)

	spans := make([][2]float64, len(got))
	for i, f := range got {
		spans[i][0], spans[i][1] = fragSpan(v, f)
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })

	// no gap and no overlap at the shared endpoint's angle
	assert.InDelta(t, spans[0][1], spans[1][0], 1e-9)
	assert.InDelta(t, -math.Pi/4, spans[0][0], 1e-6)
	assert.InDelta(t, math.Pi/4, spans[1][1], 1e-6)
}

func TestCompute_FacingFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		facing geom.Facing
		want   int
	}{
		{"unknown always passes", geom.FacingUnknown, 1},
		{"exterior faces the viewer", geom.FacingExterior, 1},
		{"interior back side hidden", geom.FacingInterior, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			seg := geom.NewSegment(mgl64.Vec2{0, 0}, mgl64.Vec2{10, 0})
			seg.Facing = tt.facing

			got := Compute(buildTree(t, seg), testViewer(), Config{})
			assert.Len(t, got, tt.want)
		})
	}
}

func TestCompute_ClippedFragmentKeepsParentDirection(t *testing.T) {
	t.Parallel()

	// B sticks far out of the fov, so the clip cuts off the tail
	seg := geom.NewSegment(mgl64.Vec2{0, 0}, mgl64.Vec2{30, 0})

	got := Compute(buildTree(t, seg), testViewer(), Config{})

	require.Len(t, got, 1)

	frag := got[0]
	assert.Positive(t, frag.Dir().Dot(seg.Dir()))
	assert.InDelta(t, 0, frag.A.X(), 1e-6)
	assert.InDelta(t, 10, frag.B.X(), 1e-6)
}

func TestCompute_FOVMarginClampStaysAtFOV(t *testing.T) {
	t.Parallel()

	v := testViewer()
	half := v.FOVDeg / 2 * math.Pi / 180
	margin := 20.0
	widened := half + margin*math.Pi/180

	t.Run("wall inside the fov is unchanged", func(t *testing.T) {
		t.Parallel()

		root := buildTree(t, geom.NewSegment(mgl64.Vec2{0, 0}, mgl64.Vec2{10, 0}))

		plain := Compute(root, v, Config{})
		margined := Compute(root, v, Config{FOVMarginDeg: margin})

		assert.Equal(t, plain, margined)
	})

	t.Run("wide wall overscans at most the margin", func(t *testing.T) {
		t.Parallel()

		root := buildTree(t, geom.NewSegment(mgl64.Vec2{-30, 0}, mgl64.Vec2{30, 0}))

		got := Compute(root, v, Config{FOVMarginDeg: margin})
		require.Len(t, got, 1)

		lo, hi := fragSpan(v, got[0])

		// the clamped residual still spans the whole fov...
		assert.LessOrEqual(t, lo, -half+1e-9)
		assert.GreaterOrEqual(t, hi, half-1e-9)
		// ...and the interpolated endpoints never leave the widened cone
		assert.GreaterOrEqual(t, lo, -widened-1e-9)
		assert.LessOrEqual(t, hi, widened+1e-9)
	})
}

func TestCompute_MaxDistanceCut(t *testing.T) {
	t.Parallel()

	seg := geom.NewSegment(mgl64.Vec2{0, 0}, mgl64.Vec2{10, 0})

	got := Compute(buildTree(t, seg), testViewer(), Config{MaxDistance: 2})

	assert.Empty(t, got, "wall beyond the draw distance")
}

// assertAngularInvariants checks visibility non-overlap and FOV
// conservation over a result set.
func assertAngularInvariants(t *testing.T, v Viewer, frags []*geom.Segment) {
	t.Helper()

	half := v.FOVDeg / 2 * math.Pi / 180

	spans := make([][2]float64, len(frags))
	for i, f := range frags {
		spans[i][0], spans[i][1] = fragSpan(v, f)

		assert.GreaterOrEqual(t, spans[i][0], -half-1e-9)
		assert.LessOrEqual(t, spans[i][1], half+1e-9)
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })

	for i := 1; i < len(spans); i++ {
		assert.LessOrEqual(t, spans[i-1][1], spans[i][0]+1e-9,
			"fragments %d and %d overlap in angle", i-1, i)
	}
}

type collectSink struct {
	frags []*geom.Segment
}

func (c *collectSink) EmitFragment(s *geom.Segment) {
	c.frags = append(c.frags, s)
}

func TestComputeInto(t *testing.T) {
	t.Parallel()

	seg := geom.NewSegment(mgl64.Vec2{0, 0}, mgl64.Vec2{10, 0})
	root := buildTree(t, seg)
	v := testViewer()

	var sink collectSink
	ComputeInto(root, v, Config{}, &sink)

	assert.Equal(t, Compute(root, v, Config{}), sink.frags)
}

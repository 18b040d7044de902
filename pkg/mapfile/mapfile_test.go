package mapfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xoom-engine/xoom/pkg/bsp"
	"github.com/xoom-engine/xoom/pkg/geom"
	"github.com/xoom-engine/xoom/pkg/visibility"
)

func writeMap(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.xmap")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestFileSource_Load(t *testing.T) {
	t.Parallel()

	path := writeMap(t, `
# demo map
SEG 0 0 10 0

POLY room
0 0
0 10
10 10
10 0
END
`)

	md, err := FileSource{}.Load(path)
	require.NoError(t, err)
	require.Len(t, md.Segments, 5)

	lone := md.Segments[0]
	assert.Equal(t, mgl64.Vec2{0, 0}, lone.A)
	assert.Equal(t, mgl64.Vec2{10, 0}, lone.B)
	assert.Equal(t, geom.FacingUnknown, lone.Facing)
	assert.Empty(t, lone.Polygon)

	// the polygon winds clockwise: playable space is right of each edge
	for i, s := range md.Segments[1:] {
		assert.Equal(t, geom.FacingExterior, s.Facing)
		assert.Equal(t, "room", s.Polygon)
		assert.InDelta(t, float64(i)*10, s.UOffset, 1e-9)
	}

	// the loop closes back on the first vertex
	last := md.Segments[4]
	assert.Equal(t, mgl64.Vec2{10, 0}, last.A)
	assert.Equal(t, mgl64.Vec2{0, 0}, last.B)
}

func TestFileSource_Load_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"unknown token", "WALL 0 0 1 1"},
		{"short SEG line", "SEG 0 0 1"},
		{"bad SEG coordinate", "SEG 0 0 1 x"},
		{"polygon missing END", "POLY room\n0 0\n1 1"},
		{"bad polygon vertex", "POLY room\n0 0 0\nEND"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := FileSource{}.Load(writeMap(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestFileSource_Load_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := FileSource{}.Load(filepath.Join(t.TempDir(), "nope.xmap"))
	assert.Error(t, err)
}

func TestFileSource_Load_RoomVisibleFromInside(t *testing.T) {
	t.Parallel()

	path := writeMap(t, `
POLY room
0 0
0 10
10 10
10 0
END
`)

	md, err := FileSource{}.Load(path)
	require.NoError(t, err)

	root := bsp.NewBuilder().Build(md.Segments)

	// facing east from the middle of the room: only the east wall is in
	// the FOV, and its facing must not hide it from the inside
	got := visibility.Compute(root, visibility.Viewer{
		Pos:      mgl64.Vec2{5, 5},
		AngleDeg: 0,
		FOVDeg:   90,
		Range:    50,
	}, visibility.Config{})

	require.Len(t, got, 1)
	assert.Same(t, md.Segments[2], got[0].Original)
}

func TestMapData_Bounds(t *testing.T) {
	t.Parallel()

	empty := &MapData{}
	min, max := empty.Bounds()
	assert.Equal(t, mgl64.Vec2{}, min)
	assert.Equal(t, mgl64.Vec2{}, max)

	md := &MapData{Segments: []*geom.Segment{
		geom.NewSegment(mgl64.Vec2{-3, 2}, mgl64.Vec2{5, -7}),
		geom.NewSegment(mgl64.Vec2{0, 9}, mgl64.Vec2{1, 1}),
	}}

	min, max = md.Bounds()
	assert.Equal(t, mgl64.Vec2{-3, -7}, min)
	assert.Equal(t, mgl64.Vec2{5, 9}, max)
}

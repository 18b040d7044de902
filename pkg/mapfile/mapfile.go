// Package mapfile loads wall segments from .xmap text files and hands
// them to the BSP builder. The format is line-based: '#' comments,
// "SEG x1 y1 x2 y2" for a lone segment, and "POLY name" followed by one
// "x y" vertex per line and a closing "END" for a sector polygon.
package mapfile

import (
	"bufio"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/xoom-engine/xoom/pkg/geom"
)

// MapData holds the static segment list of a loaded map.
type MapData struct {
	Segments []*geom.Segment
}

// Bounds returns the axis-aligned extent of all segments, or zeros for
// an empty map.
func (m *MapData) Bounds() (min, max mgl64.Vec2) {
	if len(m.Segments) == 0 {
		return mgl64.Vec2{}, mgl64.Vec2{}
	}

	min = m.Segments[0].A
	max = m.Segments[0].A

	grow := func(p mgl64.Vec2) {
		min = mgl64.Vec2{minf(min.X(), p.X()), minf(min.Y(), p.Y())}
		max = mgl64.Vec2{maxf(max.X(), p.X()), maxf(max.Y(), p.Y())}
	}

	for _, s := range m.Segments {
		grow(s.A)
		grow(s.B)
	}

	return min, max
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Source produces map segments; it decouples the spatial core from any
// concrete map format.
type Source interface {
	Load(path string) (*MapData, error)
}

// FileSource loads .xmap files from the local filesystem.
type FileSource struct{}

var _ Source = FileSource{}

// Load reads and parses the map at path.
func (FileSource) Load(path string) (*MapData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening map %s", path)
	}
	defer f.Close()

	var lines []string

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading map %s", path)
	}

	md, err := parse(lines)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing map %s", path)
	}

	slog.Info("map loaded", "path", path, "segments", len(md.Segments))

	return md, nil
}

func parse(lines []string) (*MapData, error) {
	md := &MapData{}

	for i := 0; i < len(lines); i++ {
		parts := strings.Fields(lines[i])

		switch strings.ToUpper(parts[0]) {
		case "SEG":
			if len(parts) != 5 {
				return nil, errors.Errorf("invalid SEG line: %q", lines[i])
			}

			coords, err := parseFloats(parts[1:])
			if err != nil {
				return nil, errors.Wrapf(err, "invalid SEG line: %q", lines[i])
			}

			md.Segments = append(md.Segments, geom.NewSegment(
				mgl64.Vec2{coords[0], coords[1]},
				mgl64.Vec2{coords[2], coords[3]},
			))

		case "POLY":
			name := "poly"
			if len(parts) > 1 {
				name = parts[1]
			}

			var pts []mgl64.Vec2

			i++
			for ; i < len(lines) && !strings.EqualFold(lines[i], "END"); i++ {
				xy, err := parseFloats(strings.Fields(lines[i]))
				if err != nil || len(xy) != 2 {
					return nil, errors.Errorf("invalid vertex in polygon %s: %q", name, lines[i])
				}
				pts = append(pts, mgl64.Vec2{xy[0], xy[1]})
			}
			if i == len(lines) {
				return nil, errors.Errorf("polygon %s missing END", name)
			}

			md.Segments = append(md.Segments, polygonSegments(name, pts)...)

		default:
			return nil, errors.Errorf("unknown token %q", parts[0])
		}
	}

	return md, nil
}

// polygonSegments closes the vertex loop into directed edges. Edges get
// their facing from the polygon winding: a counterclockwise polygon has
// its interior on the left of every edge, so the left normal points into
// playable space; clockwise winds the other way. Each edge also gets a
// cumulative u-offset equal to the perimeter length walked before it, so
// textures stay continuous across edge boundaries after later clipping.
func polygonSegments(name string, pts []mgl64.Vec2) []*geom.Segment {
	if len(pts) < 2 {
		return nil
	}

	facing := geom.FacingInterior
	if geom.IsClockwise(pts) {
		facing = geom.FacingExterior
	}

	segs := make([]*geom.Segment, 0, len(pts))

	var perimeter float64

	for i := range pts {
		s := geom.NewSegment(pts[i], pts[(i+1)%len(pts)])
		s.Facing = facing
		s.Polygon = name
		s.UOffset = perimeter

		perimeter += s.Length()
		segs = append(segs, s)
	}

	return segs
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))

	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

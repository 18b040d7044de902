package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Facing tells which side of a segment borders playable space.
type Facing int

const (
	FacingUnknown Facing = iota
	// FacingInterior means the normal (left of A->B) points into playable space.
	FacingInterior
	// FacingExterior means the normal points out of playable space.
	FacingExterior
)

// WallKind discriminates solid walls from portals.
type WallKind int

const (
	WallSolid WallKind = iota
	WallPortal
)

// SectionTier identifies a vertical slice of a portal wall.
type SectionTier int

const (
	SectionBottom SectionTier = iota
	SectionMiddle
	SectionTop
)

// PortalSection is one vertical slice of a portal wall with its own
// height interval.
type PortalSection struct {
	Tier SectionTier
	Low  float64
	High float64
}

// Portal carries the per-section data of a portal wall. It only exists on
// segments with Kind == WallPortal.
type Portal struct {
	Sections []PortalSection
}

// Segment is a directed wall edge. Segments are treated as immutable
// values; clipping and splitting produce new segments via Clipped, which
// re-links Original to the unclipped source so texture offsets can be
// recomputed after any number of clips. Original never chains more than
// one hop.
type Segment struct {
	A, B mgl64.Vec2

	Facing  Facing
	Texture string
	Height  float64
	UOffset float64
	Polygon string

	BlocksCollision bool

	Kind   WallKind
	Portal *Portal

	Original *Segment
}

// NewSegment returns a solid, collision-blocking segment with Original
// pointing to itself.
func NewSegment(a, b mgl64.Vec2) *Segment {
	s := &Segment{A: a, B: b, BlocksCollision: true, Kind: WallSolid}
	s.Original = s

	return s
}

// NewPortalSegment returns a portal segment. Portals do not block
// collision and do not occlude.
func NewPortalSegment(a, b mgl64.Vec2, sections []PortalSection) *Segment {
	s := &Segment{
		A: a, B: b,
		Kind:   WallPortal,
		Portal: &Portal{Sections: sections},
	}
	s.Original = s

	return s
}

// Length returns the euclidean length of the segment.
func (s *Segment) Length() float64 {
	return s.B.Sub(s.A).Len()
}

// Dir returns the direction vector B-A (not normalized).
func (s *Segment) Dir() mgl64.Vec2 {
	return s.B.Sub(s.A)
}

// Clipped returns a copy of s with the given endpoints. Metadata is
// inherited and Original points at s's own original, never at s itself
// when s is already a clipped fragment.
func (s *Segment) Clipped(a, b mgl64.Vec2) *Segment {
	c := *s
	c.A = a
	c.B = b
	c.Original = s.original()

	return &c
}

func (s *Segment) original() *Segment {
	if s.Original != nil {
		return s.Original
	}

	return s
}

// UOffsetAt projects p onto the original (unclipped) segment and returns
// the original's base u-offset plus the arc length up to the projection.
// A degenerate original yields the base offset.
func (s *Segment) UOffsetAt(p mgl64.Vec2) float64 {
	o := s.original()

	d := o.B.Sub(o.A)

	lenSq := d.Dot(d)
	if lenSq == 0 {
		return o.UOffset
	}

	t := p.Sub(o.A).Dot(d) / lenSq
	t = math.Max(0, math.Min(1, t))

	return o.UOffset + t*math.Sqrt(lenSq)
}

// Package player holds the viewer/player state and the sweep-then-slide
// movement protocol built on top of the collision detector.
package player

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/xoom-engine/xoom/pkg/collision"
	"github.com/xoom-engine/xoom/pkg/visibility"
)

// Player is the observer state mutated by the game loop. The spatial
// queries only ever read it.
type Player struct {
	X, Y      float64
	AngleDeg  float64
	FOVDeg    float64
	FOVLength float64
}

// Pos returns the position as a vector.
func (p *Player) Pos() mgl64.Vec2 {
	return mgl64.Vec2{p.X, p.Y}
}

// AngleRad returns the facing angle in radians.
func (p *Player) AngleRad() float64 {
	return p.AngleDeg * math.Pi / 180
}

// Rotate turns by delta degrees, wrapping into [0,360).
func (p *Player) Rotate(deltaDeg float64) {
	p.AngleDeg = math.Mod(p.AngleDeg+deltaDeg, 360)
	if p.AngleDeg < 0 {
		p.AngleDeg += 360
	}
}

// Forward returns the unit facing vector.
func (p *Player) Forward() mgl64.Vec2 {
	return mgl64.Vec2{math.Cos(p.AngleRad()), math.Sin(p.AngleRad())}
}

// Viewer adapts the player to a visibility query.
func (p *Player) Viewer() visibility.Viewer {
	return visibility.Viewer{
		Pos:      p.Pos(),
		AngleDeg: p.AngleDeg,
		FOVDeg:   p.FOVDeg,
		Range:    p.FOVLength,
	}
}

// Mover applies displacements with the two-phase sweep-then-slide
// response: the full displacement is swept first; on contact the
// displacement is projected onto the contacted wall's tangent and the
// slide is swept again, committing only if that second sweep is clear.
type Mover struct {
	Detector *collision.Detector
	Radius   float64
}

// Move attempts to displace p by (dx, dy) and reports whether the player
// moved.
func (m *Mover) Move(p *Player, dx, dy float64) bool {
	start := p.Pos()
	end := mgl64.Vec2{p.X + dx, p.Y + dy}

	contact := m.Detector.Sweep(start, end, m.Radius)
	if contact == nil {
		p.X, p.Y = end.X(), end.Y()
		return true
	}

	wall := contact.Segment.Dir()

	wallLen := wall.Len()
	if wallLen == 0 {
		return false
	}

	tangent := wall.Mul(1 / wallLen)
	slide := tangent.Mul(mgl64.Vec2{dx, dy}.Dot(tangent))

	slideEnd := start.Add(slide)
	if m.Detector.Sweep(start, slideEnd, m.Radius) != nil {
		return false
	}

	p.X, p.Y = slideEnd.X(), slideEnd.Y()

	return true
}

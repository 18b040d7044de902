// Package bsp builds and walks a 2D binary space partition of wall
// segments. The tree is built once at map load and is read-only
// afterwards, so it can be shared by any number of concurrent readers.
package bsp

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/xoom-engine/xoom/pkg/geom"
)

// Strategy selects the partition segment at each recursion level.
type Strategy int

const (
	// StrategyFirst deterministically takes the head of the list.
	StrategyFirst Strategy = iota
	// StrategyRandom picks uniformly.
	StrategyRandom
)

// DefaultMaxDepth bounds recursion on degenerate maps.
const DefaultMaxDepth = 32

// Node is one node of the partition tree. A node without a partition and
// without children is an empty leaf. Nil children mean empty subspace.
type Node struct {
	Partition *geom.Segment
	Coplanar  []*geom.Segment
	Front     *Node
	Back      *Node
}

// IsLeaf reports whether the node carries no partition and no children.
func (n *Node) IsLeaf() bool {
	return n.Partition == nil && n.Front == nil && n.Back == nil
}

// Walk visits every node's coplanar segments in depth-first order.
func (n *Node) Walk(fn func(*geom.Segment)) {
	if n == nil {
		return
	}

	for _, s := range n.Coplanar {
		fn(s)
	}

	n.Front.Walk(fn)
	n.Back.Walk(fn)
}

// Builder constructs a BSP tree by recursive subdivision.
type Builder struct {
	MaxDepth int
	Strategy Strategy

	rng *rand.Rand
}

// NewBuilder returns a Builder with the default depth bound and the
// deterministic first-segment strategy.
func NewBuilder() *Builder {
	return &Builder{MaxDepth: DefaultMaxDepth, Strategy: StrategyFirst}
}

// Seed fixes the random source used by StrategyRandom.
func (b *Builder) Seed(seed int64) {
	b.rng = rand.New(rand.NewSource(seed))
}

// Build partitions segs into a tree. An empty input is legal and yields
// an empty leaf. Exceeding MaxDepth truncates the subtree into an empty
// leaf, which can leave overflow geometry unpartitioned; that is a map
// authoring concern, not an error.
func (b *Builder) Build(segs []*geom.Segment) *Node {
	slog.Debug("building bsp", "segments", len(segs))

	maxDepth := b.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	return b.build(segs, 0, maxDepth)
}

func (b *Builder) build(segs []*geom.Segment, depth, maxDepth int) *Node {
	if depth > maxDepth || len(segs) == 0 {
		return &Node{}
	}

	partition := b.choosePartition(segs)
	node := &Node{Partition: partition}

	var frontList, backList []*geom.Segment

	for _, s := range segs {
		if s == partition {
			node.Coplanar = append(node.Coplanar, s)
			continue
		}

		front, back, coplanar := splitSegment(s, partition.A, partition.B)
		if coplanar {
			node.Coplanar = append(node.Coplanar, s)
			continue
		}

		frontList = append(frontList, front...)
		backList = append(backList, back...)
	}

	if len(frontList) > 0 {
		node.Front = b.build(frontList, depth+1, maxDepth)
	}
	if len(backList) > 0 {
		node.Back = b.build(backList, depth+1, maxDepth)
	}

	return node
}

func (b *Builder) choosePartition(segs []*geom.Segment) *geom.Segment {
	if len(segs) == 0 {
		// unreachable: build guards empty lists before selection
		panic("bsp: partition selection on empty segment list")
	}

	if b.Strategy == StrategyRandom {
		if b.rng != nil {
			return segs[b.rng.Intn(len(segs))]
		}
		return segs[rand.Intn(len(segs))]
	}

	return segs[0]
}

// splitSegment classifies s against the infinite line a->b. Segments
// entirely on one side come back whole; a straddling segment is split at
// the crossing into a front and a back part, both inheriting s's
// metadata with Original preserved. coplanar is true when both endpoints
// lie on the line.
func splitSegment(s *geom.Segment, a, b mgl64.Vec2) (front, back []*geom.Segment, coplanar bool) {
	da := geom.Side(s.A, a, b)
	db := geom.Side(s.B, a, b)

	onA := math.Abs(da) <= geom.Epsilon
	onB := math.Abs(db) <= geom.Epsilon

	switch {
	case onA && onB:
		return nil, nil, true
	case da >= -geom.Epsilon && db >= -geom.Epsilon:
		return []*geom.Segment{s}, nil, false
	case da <= geom.Epsilon && db <= geom.Epsilon:
		return nil, []*geom.Segment{s}, false
	}

	pt, _, ok := geom.LineIntersection(s.A, s.B, a, b)
	if !ok {
		// parallel lines cannot straddle; keep the segment in front
		return []*geom.Segment{s}, nil, false
	}

	first := s.Clipped(s.A, pt)
	second := s.Clipped(pt, s.B)

	if da > 0 {
		return []*geom.Segment{first}, []*geom.Segment{second}, false
	}

	return []*geom.Segment{second}, []*geom.Segment{first}, false
}

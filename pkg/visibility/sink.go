package visibility

import (
	"github.com/xoom-engine/xoom/pkg/bsp"
	"github.com/xoom-engine/xoom/pkg/geom"
)

// FragmentSink receives visible fragments. It decouples the solver from
// any concrete renderer; implementations must not retain the slice
// backing between calls.
type FragmentSink interface {
	EmitFragment(*geom.Segment)
}

// ComputeInto runs Compute and feeds every fragment to sink in solver
// order.
func ComputeInto(root *bsp.Node, v Viewer, cfg Config, sink FragmentSink) {
	for _, frag := range Compute(root, v, cfg) {
		sink.EmitFragment(frag)
	}
}

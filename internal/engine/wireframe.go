package engine

import (
	"github.com/inamate/pleat/internal/geom"
	"github.com/inamate/pleat/internal/scene"
)

// Wireframe styling. Alphas grow with slice index so later slices are
// drawn more opaquely.
const (
	wireStrokeWidth = 2.0
	wireStrokeBase  = 0.3
	wireStrokeRamp  = 0.5
	wireFillBase    = 0.03
	wireFillRamp    = 0.02
)

// renderWireframe draws every slice as a translucent closed polygon in slice
// index order. Overlap follows insertion order, not depth.
func renderWireframe(st *scene.State, vp geom.Viewport) []DrawCommand {
	center := vp.Center()
	n := st.Slices

	commands := []DrawCommand{{Op: OpClear}}
	for s, verts := range scene.Slices(st.Polygon, n) {
		pts := geom.ProjectAll(verts[:], st.RotationY, st.RotationX, center)
		if !drawable(pts...) {
			continue
		}
		t := float64(s) / float64(n)
		commands = append(commands, DrawCommand{
			Op:          OpPath,
			Path:        closedPath(pts...),
			Fill:        White(wireFillBase + wireFillRamp*t).CSS(),
			Stroke:      White(wireStrokeBase + wireStrokeRamp*t).CSS(),
			StrokeWidth: wireStrokeWidth,
		})
	}
	return commands
}

package engine

import (
	"github.com/inamate/pleat/internal/geom"
	"github.com/inamate/pleat/internal/scene"
)

// stretchDivisor converts an object-space edge delta into a scale offset.
const stretchDivisor = 800.0

// facetScale is the per-edge anisotropic scale used to approximate texture
// mapping. It reads the base polygon, so every slice uses the same factors.
func facetScale(p *scene.Polygon, edge int) (sx, sy float64) {
	dx, dy := p.EdgeStretch(edge)
	return 1 + dx/stretchDivisor, 1 + dy/stretchDivisor
}

// renderTextured maps the video frame onto each slice's facets. Each facet is
// the triangle (centroid, p[i], p[i+1]); the frame is drawn scaled under that
// clip, bracketed by save/restore so neither clip nor scale leaks to the next
// edge. It draws nothing until the feed is ready.
func renderTextured(st *scene.State, vp geom.Viewport) []DrawCommand {
	if !st.VideoReady {
		return nil
	}
	center := vp.Center()

	commands := []DrawCommand{{Op: OpClear}}
	for _, verts := range scene.Slices(st.Polygon, st.Slices) {
		pts := geom.ProjectAll(verts[:], st.RotationY, st.RotationX, center)
		c := geom.Centroid(pts)

		for i := range scene.Sides {
			p1 := pts[i]
			p2 := pts[(i+1)%scene.Sides]
			sx, sy := facetScale(st.Polygon, i)
			w, h := vp.Width/sx, vp.Height/sy
			if !drawable(c, p1, p2, geom.Point{X: w, Y: h}) {
				continue
			}

			commands = append(commands,
				DrawCommand{Op: OpSave},
				DrawCommand{Op: OpClip, Path: closedPath(c, p1, p2)},
				DrawCommand{
					Op:        OpImage,
					Transform: Scale(sx, sy).ToSlice(),
					Source:    VideoSource,
					Width:     w,
					Height:    h,
				},
				DrawCommand{Op: OpRestore},
			)
		}
	}
	return commands
}

package engine

import (
	"math"

	"github.com/inamate/pleat/internal/geom"
	"github.com/inamate/pleat/internal/scene"
)

// syncHandles places one marker per base vertex at the base depth. A vertex
// that does not project to a finite point gets a hidden marker.
func syncHandles(st *scene.State, vp geom.Viewport) []Marker {
	center := vp.Center()
	markers := make([]Marker, scene.Sides)
	for i := range scene.Sides {
		p := geom.Project(st.Polygon.Vertex(i), st.RotationY, st.RotationX, center)
		if !drawable(p) {
			markers[i] = Marker{Index: i, Hidden: true}
			continue
		}
		markers[i] = Marker{Index: i, X: p.X, Y: p.Y}
	}
	return markers
}

// HitTest returns the index of the visible marker within radius of (x, y),
// or -1. Later markers sit on top, so they are tested first.
func HitTest(markers []Marker, x, y, radius float64) int {
	for i := len(markers) - 1; i >= 0; i-- {
		m := markers[i]
		if m.Hidden {
			continue
		}
		if math.Hypot(m.X-x, m.Y-y) <= radius {
			return m.Index
		}
	}
	return -1
}

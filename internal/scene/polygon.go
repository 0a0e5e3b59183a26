package scene

import (
	"math"

	"github.com/inamate/pleat/internal/geom"
)

// Sides is the fixed vertex count of the polygon.
const Sides = 6

// Deformation gains applied per pointer move.
const (
	DeformGain      = 0.5
	DeformDepthFreq = 0.05
	DeformDepthGain = 20.0
)

// Polygon is the vertex store: six ordered vertices, mutated in place.
// Index identity is the user-facing identity of each corner and its handle.
type Polygon struct {
	verts [Sides]geom.Vec3
}

// NewPleatedHexagon samples a regular hexagon of the given radius in the XY
// plane, offsetting each vertex in z by sin(angle)*pleat.
func NewPleatedHexagon(radius, pleat float64) *Polygon {
	p := &Polygon{}
	for i := range Sides {
		angle := float64(i) / Sides * math.Pi * 2
		p.verts[i] = geom.Vec3{
			X: math.Cos(angle) * radius,
			Y: math.Sin(angle) * radius,
			Z: math.Sin(angle) * pleat,
		}
	}
	return p
}

// Vertex returns vertex i. i must be in [0, Sides).
func (p *Polygon) Vertex(i int) geom.Vec3 {
	return p.verts[i]
}

// Vertices returns a copy of all vertices in order.
func (p *Polygon) Vertices() [Sides]geom.Vec3 {
	return p.verts
}

// Deform moves vertex i by a pointer delta. x and y follow the drag at half
// speed; horizontal drag also perturbs depth. Out-of-range indices are ignored.
func (p *Polygon) Deform(i int, dx, dy float64) bool {
	if i < 0 || i >= Sides {
		return false
	}
	v := &p.verts[i]
	v.X += dx * DeformGain
	v.Y += dy * DeformGain
	v.Z += math.Sin(dx*DeformDepthFreq) * DeformDepthGain
	return true
}

// EdgeStretch returns the object-space coordinate difference between
// vertex i and its successor.
func (p *Polygon) EdgeStretch(i int) (dx, dy float64) {
	a := p.verts[i]
	b := p.verts[(i+1)%Sides]
	return a.X - b.X, a.Y - b.Y
}

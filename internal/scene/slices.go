package scene

import "github.com/inamate/pleat/internal/geom"

// SliceSpacing is the depth distance between consecutive slices.
const SliceSpacing = 40.0

// SliceOffset returns the z shift of slice s out of n, centering the stack
// around the base depth.
func SliceOffset(s, n int) float64 {
	return (float64(s) - float64(n-1)/2) * SliceSpacing
}

// Slices returns n depth-shifted copies of p in slice index order.
// n < 1 yields no slices.
func Slices(p *Polygon, n int) [][Sides]geom.Vec3 {
	if n < 1 {
		return nil
	}
	base := p.Vertices()
	out := make([][Sides]geom.Vec3, n)
	for s := range n {
		shift := geom.Vec3{Z: SliceOffset(s, n)}
		for i, v := range base {
			out[s][i] = v.Add(shift)
		}
	}
	return out
}

package geom

import "math"

// Vec3 is a point in object-local 3D space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Yaw rotates the vector about the vertical (Y) axis.
// The (x, z) pair is rotated; y is unchanged.
func (v Vec3) Yaw(angle float64) Vec3 {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Vec3{
		X: v.X*cos - v.Z*sin,
		Y: v.Y,
		Z: v.X*sin + v.Z*cos,
	}
}

// Pitch rotates the vector about the horizontal (X) axis.
// The (y, z) pair is rotated; x is unchanged.
func (v Vec3) Pitch(angle float64) Vec3 {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Vec3{
		X: v.X,
		Y: v.Y*cos - v.Z*sin,
		Z: v.Y*sin + v.Z*cos,
	}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Point is a 2D screen-space position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is the size of the render surface, read fresh every frame.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the middle of the viewport.
func (vp Viewport) Center() Point {
	return Point{X: vp.Width / 2, Y: vp.Height / 2}
}

// Centroid returns the arithmetic mean of pts.
// An empty slice yields the origin.
func Centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(pts))
	return Point{X: c.X / n, Y: c.Y / n}
}

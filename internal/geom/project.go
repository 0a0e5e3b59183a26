package geom

// FocalDistance is the depth at which the perspective scale halves.
const FocalDistance = 300.0

// Rotate applies the view rotation: yaw first, then pitch on the yawed point.
// The two steps are not interchangeable.
func Rotate(p Vec3, rotY, rotX float64) Vec3 {
	return p.Yaw(rotY).Pitch(rotX)
}

// PerspectiveScale returns the screen scale for a point at view depth z.
// z close to -FocalDistance produces huge or inverted scales; callers accept that.
func PerspectiveScale(z float64) float64 {
	return 1 / (1 + z/FocalDistance)
}

// Project maps p to screen space for the given view angles.
func Project(p Vec3, rotY, rotX float64, center Point) Point {
	r := Rotate(p, rotY, rotX)
	s := PerspectiveScale(r.Z)
	return Point{
		X: center.X + r.X*s,
		Y: center.Y + r.Y*s,
	}
}

// ProjectAll projects every point in pts.
func ProjectAll(pts []Vec3, rotY, rotX float64, center Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = Project(p, rotY, rotX, center)
	}
	return out
}

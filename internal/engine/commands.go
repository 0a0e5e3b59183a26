package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/inamate/pleat/internal/geom"
	"github.com/inamate/pleat/internal/scene"
)

// Draw operations understood by hosts.
const (
	OpClear   = "clear"
	OpPath    = "path"
	OpSave    = "save"
	OpClip    = "clip"
	OpImage   = "image"
	OpRestore = "restore"
)

// VideoSource names the live camera frame in image commands.
const VideoSource = "video"

// DrawCommand represents a single drawing operation for the host to execute.
// The host receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // Operation: "clear", "path", "save", "clip", "image", "restore"
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand `json:"path,omitempty"`        // Path data for "path" and "clip" ops
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Source      string        `json:"source,omitempty"`      // Image source for "image" ops
	Width       float64       `json:"width,omitempty"`       // Image destination width (pre-transform)
	Height      float64       `json:"height,omitempty"`      // Image destination height (pre-transform)
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["Z"].
type PathCommand []interface{}

// Marker is the screen position of a vertex handle. Hidden markers have no
// drawable position this frame; X and Y are zero.
type Marker struct {
	Index  int     `json:"index"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Hidden bool    `json:"hidden,omitempty"`
}

// Frame is everything a host needs to present one tick: the draw commands
// and where to place each handle. Empty Commands means leave the surface
// untouched.
type Frame struct {
	Mode     scene.Mode    `json:"mode"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Commands []DrawCommand `json:"commands"`
	Markers  []Marker      `json:"markers"`
}

// JSON serializes the frame.
func (f Frame) JSON() (string, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return "{}", err
	}
	return string(data), nil
}

// drawable reports whether every point is finite. Points on the focal plane
// project to Inf or NaN, which neither JSON nor a canvas can carry, so the
// shapes using them are left out of the frame.
func drawable(pts ...geom.Point) bool {
	for _, p := range pts {
		if !finite(p.X) || !finite(p.Y) {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// closedPath builds a closed path through pts in order.
func closedPath(pts ...geom.Point) []PathCommand {
	path := make([]PathCommand, 0, len(pts)+1)
	for i, p := range pts {
		verb := "L"
		if i == 0 {
			verb = "M"
		}
		path = append(path, PathCommand{verb, p.X, p.Y})
	}
	return append(path, PathCommand{"Z"})
}

// Color is an sRGB color with straight alpha.
type Color struct {
	R, G, B uint8
	A       float64
}

// White returns white at alpha a.
func White(a float64) Color {
	return Color{R: 255, G: 255, B: 255, A: a}
}

// CSS formats the color as a CSS rgba() string.
func (c Color) CSS() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// ParseColor parses the rgba() form produced by CSS.
func ParseColor(s string) (Color, error) {
	var r, g, b int
	var a float64
	if _, err := fmt.Sscanf(s, "rgba(%d,%d,%d,%g)", &r, &g, &b, &a); err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{R: uint8(r), G: uint8(g), B: uint8(b), A: a}, nil
}

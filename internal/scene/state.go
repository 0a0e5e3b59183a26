package scene

import (
	"strconv"
	"strings"
)

// Mode selects the renderer used each frame.
type Mode string

const (
	ModeMesh   Mode = "mesh"
	ModeCamera Mode = "camera"
)

// State is the single owned scene state shared by the renderers and the
// interaction controller.
type State struct {
	Polygon *Polygon

	// View angles, accumulated without wraparound.
	RotationY float64
	RotationX float64

	Slices int

	Mode       Mode
	VideoReady bool
}

// NewState returns a state in mesh mode with the given polygon and slice count.
func NewState(p *Polygon, slices int) *State {
	if slices < 1 {
		slices = 1
	}
	return &State{
		Polygon: p,
		Slices:  slices,
		Mode:    ModeMesh,
	}
}

// ParseSliceCount interprets raw slice-count input. Non-numeric input reports
// ok=false so the caller keeps its current count; numeric input is clamped
// to [1, limit]. A limit below 1 disables the upper bound.
func ParseSliceCount(raw string, limit int) (n int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return ClampSlices(n, limit), true
}

// ClampSlices clamps n to [1, limit].
func ClampSlices(n, limit int) int {
	if n < 1 {
		n = 1
	}
	if limit >= 1 && n > limit {
		n = limit
	}
	return n
}

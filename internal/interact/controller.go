// Package interact implements the pointer state machine that rotates the view
// and deforms polygon vertices.
package interact

import (
	"fmt"

	"github.com/inamate/pleat/internal/scene"
)

// Canvas is the press/move target for the canvas background.
const Canvas = -1

// RotateGain converts pointer pixels to radians.
const RotateGain = 0.01

// Phase is the active interaction.
type Phase int

const (
	Idle Phase = iota
	RotatingCanvas
	DeformingVertex
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case RotatingCanvas:
		return "rotating"
	case DeformingVertex:
		return "deforming"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Status is a read-only view of the controller.
type Status struct {
	Phase   Phase
	Vertex  int
	Pointer int
	LastX   float64
	LastY   float64
}

// Controller owns rotation and drag/deform state. It is the only writer of the
// scene's vertices and view angles.
type Controller struct {
	st *scene.State

	phase   Phase
	vertex  int
	pointer int
	lastX   float64
	lastY   float64
}

// New returns an idle controller bound to st.
func New(st *scene.State) *Controller {
	return &Controller{st: st, vertex: -1, pointer: -1}
}

// Status reports the current interaction.
func (c *Controller) Status() Status {
	return Status{
		Phase:   c.phase,
		Vertex:  c.vertex,
		Pointer: c.pointer,
		LastX:   c.lastX,
		LastY:   c.lastY,
	}
}

// Press starts an interaction. A target in [0, scene.Sides) begins deforming
// that vertex and captures pointerID; any other target starts rotating.
// It reports whether the host should capture the pointer on the handle.
func (c *Controller) Press(target, pointerID int, x, y float64) (capture bool) {
	c.lastX, c.lastY = x, y
	if target >= 0 && target < scene.Sides {
		c.phase = DeformingVertex
		c.vertex = target
		c.pointer = pointerID
		return true
	}
	c.phase = RotatingCanvas
	c.vertex = -1
	c.pointer = -1
	return false
}

// Move applies a pointer move and reports whether scene state changed.
// Deltas are measured from the previous recorded position, not the press.
// While deforming, moves addressed to another handle or from another pointer
// are ignored.
func (c *Controller) Move(target, pointerID int, x, y float64) bool {
	switch c.phase {
	case DeformingVertex:
		if target != c.vertex || pointerID != c.pointer {
			return false
		}
		dx, dy := x-c.lastX, y-c.lastY
		c.lastX, c.lastY = x, y
		return c.st.Polygon.Deform(c.vertex, dx, dy)

	case RotatingCanvas:
		dx, dy := x-c.lastX, y-c.lastY
		c.lastX, c.lastY = x, y
		c.st.RotationY += dx * RotateGain
		c.st.RotationX += dy * RotateGain
		return dx != 0 || dy != 0
	}

	c.lastX, c.lastY = x, y
	return false
}

// Release ends any interaction. When a handle held a capture it returns that
// handle index and true so the host can release it.
func (c *Controller) Release() (handle int, captured bool) {
	handle, captured = c.vertex, c.phase == DeformingVertex
	c.phase = Idle
	c.vertex = -1
	c.pointer = -1
	return handle, captured
}

package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/inamate/pleat/internal/camera"
	"github.com/inamate/pleat/internal/geom"
	"github.com/inamate/pleat/internal/interact"
	"github.com/inamate/pleat/internal/scene"
)

// Options configures a new Engine. Zero values fall back to defaults.
type Options struct {
	Radius       float64 // hexagon radius, default 150
	Pleat        float64 // z amplitude of the initial shape, default 40
	Slices       int     // initial slice count, default 1
	MaxSlices    int     // upper clamp for slice input, default 12
	HandleRadius float64 // hit radius for markers, default 14

	Source camera.Source    // camera feed provider, default camera.Unavailable
	Notify func(msg string) // user-facing notices, e.g. an alert
	Logger *slog.Logger
}

// Engine owns the scene state and is the single entry point for host events.
// Hosts call Tick once per display frame and forward pointer, slice and mode
// input between ticks.
type Engine struct {
	mu sync.Mutex

	log    *slog.Logger
	st     *scene.State
	ctrl   *interact.Controller
	cam    *camera.Manager
	source camera.Source
	notify func(string)

	maxSlices    int
	handleRadius float64

	// Last synced handle positions, used for hit testing.
	markers []Marker

	// Cancels the outstanding acquisition, if any.
	cancelAcquire context.CancelFunc
	acquiring     sync.WaitGroup
}

// NewEngine creates an engine in mesh mode with a freshly pleated hexagon.
func NewEngine(opts Options) *Engine {
	if opts.Radius == 0 {
		opts.Radius = 150
	}
	if opts.Pleat == 0 {
		opts.Pleat = 40
	}
	if opts.MaxSlices <= 0 {
		opts.MaxSlices = 12
	}
	if opts.HandleRadius <= 0 {
		opts.HandleRadius = 14
	}
	if opts.Source == nil {
		opts.Source = camera.Unavailable
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Notify == nil {
		opts.Notify = func(string) {}
	}

	st := scene.NewState(
		scene.NewPleatedHexagon(opts.Radius, opts.Pleat),
		scene.ClampSlices(opts.Slices, opts.MaxSlices),
	)
	return &Engine{
		log:          opts.Logger,
		st:           st,
		ctrl:         interact.New(st),
		cam:          camera.NewManager(opts.Logger),
		source:       opts.Source,
		notify:       opts.Notify,
		maxSlices:    opts.MaxSlices,
		handleRadius: opts.HandleRadius,
	}
}

// Render produces the frame for st: the renderer matching the mode, then
// the handle markers.
func Render(st *scene.State, vp geom.Viewport) Frame {
	var commands []DrawCommand
	switch st.Mode {
	case scene.ModeCamera:
		commands = renderTextured(st, vp)
	default:
		commands = renderWireframe(st, vp)
	}
	return Frame{
		Mode:     st.Mode,
		Width:    vp.Width,
		Height:   vp.Height,
		Commands: commands,
		Markers:  syncHandles(st, vp),
	}
}

// Tick renders one frame for the current viewport size.
func (e *Engine) Tick(vp geom.Viewport) Frame {
	e.mu.Lock()
	defer e.mu.Unlock()

	f := Render(e.st, vp)
	e.markers = f.Markers
	return f
}

// --- Pointer input ---

// PointerDown starts an interaction on a known target: a handle index, or
// interact.Canvas. It reports whether the host should capture the pointer.
func (e *Engine) PointerDown(target, pointerID int, x, y float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctrl.Press(target, pointerID, x, y)
}

// PointerDownAt resolves the target from the last synced markers, for hosts
// without handle elements of their own.
func (e *Engine) PointerDownAt(pointerID int, x, y float64) (target int, capture bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	target = HitTest(e.markers, x, y, e.handleRadius)
	if target < 0 {
		target = interact.Canvas
	}
	return target, e.ctrl.Press(target, pointerID, x, y)
}

// PointerMove forwards a move addressed to target.
func (e *Engine) PointerMove(target, pointerID int, x, y float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctrl.Move(target, pointerID, x, y)
}

// PointerMoveCaptured forwards a move to whatever holds the pointer: the
// deforming handle if there is one, the canvas otherwise.
func (e *Engine) PointerMoveCaptured(pointerID int, x, y float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	target := interact.Canvas
	if s := e.ctrl.Status(); s.Phase == interact.DeformingVertex {
		target = s.Vertex
	}
	return e.ctrl.Move(target, pointerID, x, y)
}

// PointerUp ends the interaction. When a handle held the pointer it returns
// the handle index so the host can release its capture.
func (e *Engine) PointerUp() (handle int, captured bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctrl.Release()
}

// --- Slices ---

// SetSlices applies raw slice-count input and returns the count in effect.
// Non-numeric input leaves the count unchanged.
func (e *Engine) SetSlices(raw string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n, ok := scene.ParseSliceCount(raw, e.maxSlices); ok {
		e.st.Slices = n
	} else {
		e.log.Debug("ignored slice input", "raw", raw)
	}
	return e.st.Slices
}

// SetSliceCount sets the slice count, clamped to [1, MaxSlices].
func (e *Engine) SetSliceCount(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.st.Slices = scene.ClampSlices(n, e.maxSlices)
	return e.st.Slices
}

// --- Mode ---

// ToggleMode flips between mesh and camera and returns the new mode.
// Entering camera mode starts an acquisition in the background; the feed
// becomes ready only once it succeeds, and a failure rolls the mode back to
// mesh with a notice. Leaving camera mode stops the feed and abandons any
// acquisition still in flight.
func (e *Engine) ToggleMode(ctx context.Context) scene.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.st.Mode == scene.ModeCamera {
		e.leaveCamera()
		return e.st.Mode
	}

	e.st.Mode = scene.ModeCamera
	e.st.VideoReady = false
	ticket := e.cam.Begin()

	actx, cancel := context.WithCancel(ctx)
	e.cancelAcquire = cancel
	e.acquiring.Add(1)
	go e.acquire(actx, ticket)

	return e.st.Mode
}

func (e *Engine) leaveCamera() {
	e.st.Mode = scene.ModeMesh
	e.st.VideoReady = false
	if e.cancelAcquire != nil {
		e.cancelAcquire()
		e.cancelAcquire = nil
	}
	e.cam.Cancel()
}

func (e *Engine) acquire(ctx context.Context, ticket string) {
	defer e.acquiring.Done()

	stream, err := e.source.Open(ctx, camera.Environment())
	if err == nil && stream == nil {
		err = camera.ErrNoStream
	}

	e.mu.Lock()
	outcome := e.cam.Resolve(ticket, stream, err)
	switch outcome {
	case camera.Attached:
		e.st.VideoReady = true
	case camera.Failed:
		e.st.Mode = scene.ModeMesh
		e.st.VideoReady = false
	}
	e.mu.Unlock()

	if outcome == camera.Failed {
		e.notify("Camera unavailable: " + err.Error())
	}
}

// Wait blocks until no camera acquisition is in flight.
func (e *Engine) Wait() {
	e.acquiring.Wait()
}

// Close leaves camera mode, if active, and waits for pending acquisitions.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.st.Mode == scene.ModeCamera || e.cam.Pending() {
		e.leaveCamera()
	}
	e.mu.Unlock()
	e.Wait()
}

// --- Queries ---

// Mode returns the current mode.
func (e *Engine) Mode() scene.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.Mode
}

// VideoReady reports whether the camera feed is attached.
func (e *Engine) VideoReady() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.VideoReady
}

// Snapshot is a serializable view of the session state.
type Snapshot struct {
	RotationY   float64     `json:"rotationY"`
	RotationX   float64     `json:"rotationX"`
	Slices      int         `json:"slices"`
	Mode        scene.Mode  `json:"mode"`
	VideoReady  bool        `json:"videoReady"`
	Interaction string      `json:"interaction"`
	Vertex      int         `json:"vertex"`
	Vertices    []geom.Vec3 `json:"vertices"`
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	verts := e.st.Polygon.Vertices()
	status := e.ctrl.Status()
	return Snapshot{
		RotationY:   e.st.RotationY,
		RotationX:   e.st.RotationX,
		Slices:      e.st.Slices,
		Mode:        e.st.Mode,
		VideoReady:  e.st.VideoReady,
		Interaction: status.Phase.String(),
		Vertex:      status.Vertex,
		Vertices:    verts[:],
	}
}

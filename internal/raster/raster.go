// Package raster executes engine frames on a software 2D context so frames
// can be rendered without a browser.
package raster

import (
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/gogpu/gg"

	"github.com/inamate/pleat/internal/engine"
)

// SetLogger routes the rasterizer's diagnostics to l.
func SetLogger(l *slog.Logger) {
	gg.SetLogger(l)
}

// Executor replays draw commands onto a gg context.
//
// Canvas clips are tracked as paths and applied by filling the clip path
// with the image brush; the innermost clip wins, which is all the engine
// ever emits.
type Executor struct {
	dc      *gg.Context
	bg      gg.RGBA
	sources map[string]image.Image

	clip  []engine.PathCommand
	saved [][]engine.PathCommand
}

// NewExecutor draws onto dc, clearing to bg. sources resolves image command
// sources by name.
func NewExecutor(dc *gg.Context, bg gg.RGBA, sources map[string]image.Image) *Executor {
	return &Executor{dc: dc, bg: bg, sources: sources}
}

// Run executes cmds in order.
func (x *Executor) Run(cmds []engine.DrawCommand) error {
	for i, cmd := range cmds {
		if err := x.exec(cmd); err != nil {
			return fmt.Errorf("command %d (%s): %w", i, cmd.Op, err)
		}
	}
	return nil
}

func (x *Executor) exec(cmd engine.DrawCommand) error {
	dc := x.dc
	switch cmd.Op {
	case engine.OpClear:
		dc.ClearWithColor(x.bg)

	case engine.OpSave:
		dc.Push()
		x.saved = append(x.saved, x.clip)

	case engine.OpRestore:
		dc.Pop()
		if n := len(x.saved); n > 0 {
			x.clip = x.saved[n-1]
			x.saved = x.saved[:n-1]
		}

	case engine.OpClip:
		x.clip = cmd.Path

	case engine.OpPath:
		return x.drawPath(cmd)

	case engine.OpImage:
		return x.drawImage(cmd)

	default:
		return fmt.Errorf("unknown op %q", cmd.Op)
	}
	return nil
}

func (x *Executor) drawPath(cmd engine.DrawCommand) error {
	dc := x.dc
	if err := trace(dc, cmd.Path); err != nil {
		return err
	}
	defer dc.ClearPath()

	if cmd.Fill != "" {
		if err := setColor(dc, cmd.Fill); err != nil {
			return err
		}
		fill := dc.Fill
		if cmd.Stroke != "" {
			fill = dc.FillPreserve
		}
		if err := fill(); err != nil {
			return fmt.Errorf("fill: %w", err)
		}
	}
	if cmd.Stroke != "" {
		if err := setColor(dc, cmd.Stroke); err != nil {
			return err
		}
		dc.SetLineWidth(cmd.StrokeWidth)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("stroke: %w", err)
		}
	}
	return nil
}

func (x *Executor) drawImage(cmd engine.DrawCommand) error {
	src, ok := x.sources[cmd.Source]
	if !ok || src == nil {
		// Nothing to show yet; a canvas host would draw an empty video too.
		return nil
	}
	dc := x.dc

	area := x.clip
	if area == nil {
		area = rectPath(0, 0, float64(dc.Width()), float64(dc.Height()))
	}
	if err := trace(dc, area); err != nil {
		return err
	}
	defer dc.ClearPath()

	dc.SetFillBrush(gg.CustomBrush{
		Func: imageSampler(src, toMatrix(cmd.Transform), cmd.Width, cmd.Height),
		Name: cmd.Source,
	})
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("fill image: %w", err)
	}
	return nil
}

// imageSampler maps device coordinates back through the image transform
// into src pixels, stretching src over (0, 0, w, h) in image space.
func imageSampler(src image.Image, m gg.Matrix, w, h float64) gg.ColorFunc {
	inv := m.Invert()
	b := src.Bounds()
	if w == 0 {
		w = float64(b.Dx())
	}
	if h == 0 {
		h = float64(b.Dy())
	}
	kx := float64(b.Dx()) / w
	ky := float64(b.Dy()) / h

	return func(x, y float64) gg.RGBA {
		p := inv.TransformPoint(gg.Pt(x, y))
		px := b.Min.X + int(p.X*kx)
		py := b.Min.Y + int(p.Y*ky)
		if px < b.Min.X || py < b.Min.Y || px >= b.Max.X || py >= b.Max.Y {
			return gg.RGBA{}
		}
		return gg.FromColor(src.At(px, py))
	}
}

// toMatrix converts a canvas [a, b, c, d, e, f] transform.
func toMatrix(t []float64) gg.Matrix {
	if len(t) != 6 {
		return gg.Identity()
	}
	return gg.Matrix{
		A: t[0], B: t[2], C: t[4],
		D: t[1], E: t[3], F: t[5],
	}
}

func setColor(dc *gg.Context, css string) error {
	c, err := engine.ParseColor(css)
	if err != nil {
		return err
	}
	dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, c.A)
	return nil
}

func trace(dc *gg.Context, path []engine.PathCommand) error {
	for _, seg := range path {
		if len(seg) == 0 {
			continue
		}
		verb, _ := seg[0].(string)
		switch verb {
		case "M", "L":
			if len(seg) < 3 {
				return fmt.Errorf("path segment %v: want 2 coordinates", seg)
			}
			x, okx := seg[1].(float64)
			y, oky := seg[2].(float64)
			if !okx || !oky {
				return fmt.Errorf("path segment %v: non-numeric coordinate", seg)
			}
			if verb == "M" {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		case "Z":
			dc.ClosePath()
		default:
			return fmt.Errorf("path segment %v: unknown verb", seg)
		}
	}
	return nil
}

func rectPath(x, y, w, h float64) []engine.PathCommand {
	return []engine.PathCommand{
		{"M", x, y}, {"L", x + w, y}, {"L", x + w, y + h}, {"L", x, y + h}, {"Z"},
	}
}

// RenderPNG rasterizes f and writes it as PNG. video, when non-nil, is used
// for image commands naming engine.VideoSource.
func RenderPNG(w io.Writer, f engine.Frame, bg gg.RGBA, video image.Image) error {
	width, height := int(f.Width), int(f.Height)
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	dc := gg.NewContext(width, height)
	defer dc.Close()

	dc.ClearWithColor(bg)
	x := NewExecutor(dc, bg, map[string]image.Image{engine.VideoSource: video})
	if err := x.Run(f.Commands); err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPleatedHexagon(t *testing.T) {
	p := NewPleatedHexagon(150, 40)
	v0 := p.Vertex(0)
	assert.InDelta(t, 150, v0.X, 1e-9)
	assert.InDelta(t, 0, v0.Y, 1e-9)
	assert.InDelta(t, 0, v0.Z, 1e-9)

	v1 := p.Vertex(1)
	assert.InDelta(t, 75, v1.X, 1e-9)
	assert.InDelta(t, 150*math.Sin(math.Pi/3), v1.Y, 1e-9)
	assert.InDelta(t, 40*math.Sin(math.Pi/3), v1.Z, 1e-9)
}

func TestDeformScenario(t *testing.T) {
	p := NewPleatedHexagon(150, 40)
	before := p.Vertex(0)

	require.True(t, p.Deform(0, 20, 0))

	after := p.Vertex(0)
	assert.InDelta(t, before.X+10, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
	assert.InDelta(t, before.Z+math.Sin(1.0)*20, after.Z, 1e-9)
	assert.InDelta(t, 16.83, after.Z-before.Z, 0.01)
}

func TestDeformLeavesOthersUnchanged(t *testing.T) {
	for i := range Sides {
		p := NewPleatedHexagon(150, 40)
		before := p.Vertices()
		p.Deform(i, -7, 13)
		after := p.Vertices()
		for j := range Sides {
			if j == i {
				assert.NotEqual(t, before[j], after[j])
				continue
			}
			assert.Equal(t, before[j], after[j], "vertex %d changed while deforming %d", j, i)
		}
	}
}

func TestDeformOutOfRange(t *testing.T) {
	p := NewPleatedHexagon(150, 40)
	before := p.Vertices()
	assert.False(t, p.Deform(-1, 5, 5))
	assert.False(t, p.Deform(Sides, 5, 5))
	assert.Equal(t, before, p.Vertices())
}

func TestSliceOffsets(t *testing.T) {
	tests := []struct {
		n    int
		want []float64
	}{
		{1, []float64{0}},
		{2, []float64{-20, 20}},
		{3, []float64{-40, 0, 40}},
		{4, []float64{-60, -20, 20, 60}},
	}
	for _, tt := range tests {
		got := make([]float64, tt.n)
		for s := range tt.n {
			got[s] = SliceOffset(s, tt.n)
		}
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
	}
}

func TestSlicesShiftDepthOnly(t *testing.T) {
	p := NewPleatedHexagon(150, 40)
	base := p.Vertices()

	one := Slices(p, 1)
	require.Len(t, one, 1)
	assert.Equal(t, base, one[0])

	three := Slices(p, 3)
	require.Len(t, three, 3)
	for s, want := range []float64{-40, 0, 40} {
		for i := range Sides {
			assert.Equal(t, base[i].X, three[s][i].X)
			assert.Equal(t, base[i].Y, three[s][i].Y)
			assert.InDelta(t, base[i].Z+want, three[s][i].Z, 1e-9)
		}
	}

	assert.Nil(t, Slices(p, 0))
	assert.Equal(t, base, p.Vertices(), "slicing must not mutate the store")
}

func TestEdgeStretch(t *testing.T) {
	p := NewPleatedHexagon(150, 40)
	dx, dy := p.EdgeStretch(5)
	v5, v0 := p.Vertex(5), p.Vertex(0)
	assert.Equal(t, v5.X-v0.X, dx)
	assert.Equal(t, v5.Y-v0.Y, dy)
}

func TestParseSliceCount(t *testing.T) {
	tests := []struct {
		raw string
		n   int
		ok  bool
	}{
		{"3", 3, true},
		{" 5 ", 5, true},
		{"0", 1, true},
		{"-4", 1, true},
		{"99", 12, true},
		{"abc", 0, false},
		{"", 0, false},
		{"2.5", 0, false},
	}
	for _, tt := range tests {
		n, ok := ParseSliceCount(tt.raw, 12)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		assert.Equal(t, tt.n, n, "raw=%q", tt.raw)
	}

	n, ok := ParseSliceCount("1000", 0)
	assert.True(t, ok)
	assert.Equal(t, 1000, n)
}

func TestNewStateDefaults(t *testing.T) {
	st := NewState(NewPleatedHexagon(150, 40), 0)
	assert.Equal(t, 1, st.Slices)
	assert.Equal(t, ModeMesh, st.Mode)
	assert.False(t, st.VideoReady)
}

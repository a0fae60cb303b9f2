package prismscene_test

import (
	"context"
	"testing"

	math "github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/prismscene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVecInDelta(t *testing.T, want, got ms3.Vec, tol float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, "X")
	assert.InDelta(t, want.Y, got.Y, tol, "Y")
	assert.InDelta(t, want.Z, got.Z, tol, "Z")
}

func TestDragScenario(t *testing.T) {
	s, _ := newTestSession(t)
	s.PointerDown(100, 100)
	assert.True(t, s.Dragging())
	s.PointerMove(110, 130)
	assertVecInDelta(t, ms3.Vec{X: 0.1, Y: -0.3, Z: 5}, s.Camera.Position, 1e-6)
	assert.Equal(t, ms3.Vec{}, s.Camera.Target)

	// Camera is aimed at the origin.
	want := ms3.Unit(ms3.Scale(-1, s.Camera.Position))
	assertVecInDelta(t, want, s.Camera.Forward(), 1e-6)
	view := s.Camera.View()
	origin := view.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, origin.X(), 1e-5)
	assert.InDelta(t, 0, origin.Y(), 1e-5)
	assert.Less(t, origin.Z(), float32(0))
}

func TestMoveWithoutHold(t *testing.T) {
	s, _ := newTestSession(t)
	start := s.Camera.Position
	for i := range 10 {
		s.PointerMove(float64(i*37), float64(i*-11))
	}
	assert.Equal(t, start, s.Camera.Position)

	s.PointerDown(0, 0)
	s.PointerUp()
	assert.False(t, s.Dragging())
	s.PointerMove(500, 500)
	assert.Equal(t, start, s.Camera.Position)
}

func TestDragAccumulates(t *testing.T) {
	s, _ := newTestSession(t)
	s.PointerDown(10, 20)
	moves := [][2]float64{{15, 20}, {15, 10}, {40, 0}, {35, 5}}
	for _, m := range moves {
		s.PointerMove(m[0], m[1])
	}
	// Total delta is (25, -15): camera moves +0.25 in X and +0.15 in Y.
	assertVecInDelta(t, ms3.Vec{X: 0.25, Y: 0.15, Z: 5}, s.Camera.Position, 1e-5)

	s.PointerUp()
	s.PointerMove(1000, 1000)
	assertVecInDelta(t, ms3.Vec{X: 0.25, Y: 0.15, Z: 5}, s.Camera.Position, 1e-5)

	// A new drag starts from the new press position, not the last move.
	s.PointerDown(0, 0)
	s.PointerMove(-10, 0)
	assertVecInDelta(t, ms3.Vec{X: 0.15, Y: 0.15, Z: 5}, s.Camera.Position, 1e-5)
}

func TestResize(t *testing.T) {
	s, target := newTestSession(t)
	s.Resize(1024, 512)
	assert.Equal(t, float32(2), s.Camera.Aspect)
	assert.Equal(t, 1024, target.width)
	assert.Equal(t, 512, target.height)
	want := mgl32.Perspective(mgl32.DegToRad(75), 2, 0.1, 1000)
	assert.True(t, want.ApproxEqual(s.Camera.Projection()))

	s.Resize(0, 0)
	assert.Equal(t, float32(2), s.Camera.Aspect)
	assert.Equal(t, 1024, target.width)
	assert.Equal(t, 512, target.height)
}

func TestCameraInitialView(t *testing.T) {
	s, _ := newTestSession(t)
	assert.InDelta(t, float32(800)/600, s.Camera.Aspect, 1e-6)
	// The origin sits 5 units in front of the camera.
	p := s.Camera.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -5, p.Z(), 1e-5)
	clip := s.Camera.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-6)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-6)
	assert.Greater(t, clip.W(), float32(0))
	assert.False(t, math.IsNaN(clip.Z()))
}

func TestObjectModel(t *testing.T) {
	o := prismscene.Object{
		Position: ms3.Vec{X: 1, Y: 2, Z: 3},
		Rotation: ms3.Vec{Z: math.Pi / 2},
	}
	// Rotating +X a quarter turn about Z yields +Y, then translation applies.
	p := o.Model().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 1, p.X(), 1e-6)
	assert.InDelta(t, 3, p.Y(), 1e-6)
	assert.InDelta(t, 3, p.Z(), 1e-6)
}

func assertFinite(t *testing.T, m mgl32.Mat4) {
	t.Helper()
	for i, v := range m {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "element %d is %v", i, v)
	}
}

func TestDragOntoUpAxis(t *testing.T) {
	cfg := testConfig()
	cfg.Camera = [3]float32{1, 0, 0}
	require.NoError(t, cfg.Validate())
	s, err := prismscene.NewSession(context.Background(), cfg, &recordingTarget{})
	require.NoError(t, err)

	s.PointerDown(0, 0)
	s.PointerMove(-100, -100)
	assertVecInDelta(t, ms3.Vec{Y: 1}, s.Camera.Position, 1e-6)
	vp := s.Camera.ViewProjection()
	assertFinite(t, vp)
	// The origin stays at the center of the view.
	clip := vp.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	require.Greater(t, clip.W(), float32(0))
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-3)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-3)
	p := vp.Mul4x1(mgl32.Vec4{0.5, 0.5, 0.5, 1})
	for i := range p {
		assert.False(t, math.IsNaN(p[i]))
	}

	// Camera sitting on its target.
	s.Camera.Position = ms3.Vec{}
	assertFinite(t, s.Camera.View())
	s.Camera.Up = ms3.Vec{}
	assertFinite(t, s.Camera.View())
}

// Package prismscene implements an animated scene of a rotating, hue cycling
// prism surrounded by jittering satellite prisms, with a camera that is dragged
// around the origin with the pointer.
//
// A [Session] owns all mutable state. Hosts drive it through a [FrameSource]
// that delivers display refreshes and a [RenderTarget] that draws the scene.
// Input is fed by the host with the Pointer* and Resize methods on the same
// goroutine that calls [Session.Run].
package prismscene

import (
	"time"

	math "github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/geometry/ms3"
)

const (
	// SatelliteCount is the fixed number of satellites in a scene.
	SatelliteCount = 50
	// JitterAmount is the width of the uniform per-frame perturbation applied to
	// every satellite position and rotation component, centered on zero.
	JitterAmount = 0.1
	// RotationStep is added to the primary's X and Y rotation every frame.
	RotationStep = 0.01
	// HuePeriod is the wall-clock time it takes the primary to sweep the full hue circle.
	HuePeriod = 10 * time.Second
	// DragSensitivity scales pointer movement in pixels to camera displacement.
	DragSensitivity = 0.01
	// SatelliteSpread is the side length of the cube centered at the origin
	// in which satellites are placed at startup.
	SatelliteSpread = 10

	twoPi = 2 * math.Pi
)

// Object is a renderable mesh instance with flat color.
type Object struct {
	Mesh     *Mesh
	Position ms3.Vec
	// Rotation holds Euler angles in radians applied in X, Y, Z order.
	Rotation ms3.Vec
	Color    Color
}

// Model returns the local to world transform of the object.
func (o *Object) Model() mgl32.Mat4 {
	r := o.Rotation
	m := mgl32.Translate3D(o.Position.X, o.Position.Y, o.Position.Z)
	m = m.Mul4(mgl32.HomogRotate3DX(r.X))
	m = m.Mul4(mgl32.HomogRotate3DY(r.Y))
	return m.Mul4(mgl32.HomogRotate3DZ(r.Z))
}

// Scene is the set of renderable objects. The number of objects is fixed once built.
type Scene struct {
	Primary    Object
	Satellites []Object
	// Label is nil until the label font has loaded.
	Label *Label
}

// Visit calls fn for the primary followed by every satellite.
func (sc *Scene) Visit(fn func(o *Object)) {
	fn(&sc.Primary)
	for i := range sc.Satellites {
		fn(&sc.Satellites[i])
	}
}

func toVec3(v ms3.Vec) mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

// wrapAngle maps an angle to [0, 2π).
func wrapAngle(a float32) float32 {
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	return a
}

package prismscene

import (
	math "github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/geometry/ms3"
)

// Camera is a perspective camera aimed at a target point.
type Camera struct {
	Position ms3.Vec
	Target   ms3.Vec
	Up       ms3.Vec
	// FOV is the vertical field of view in degrees.
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32

	proj mgl32.Mat4
}

// NewPerspectiveCamera returns a camera at the origin looking down -Z.
func NewPerspectiveCamera(fov, aspect, near, far float32) *Camera {
	c := &Camera{
		Target: ms3.Vec{Z: -1},
		Up:     ms3.Vec{Y: 1},
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
	c.UpdateProjection()
	return c
}

// LookAt aims the camera at target from its current position.
func (c *Camera) LookAt(target ms3.Vec) {
	c.Target = target
}

// Forward returns the unit direction the camera is looking in.
func (c *Camera) Forward() ms3.Vec {
	return ms3.Unit(ms3.Sub(c.Target, c.Position))
}

// UpdateProjection must be called after changing FOV, Aspect, Near or Far.
func (c *Camera) UpdateProjection() {
	c.proj = mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// Projection returns the projection matrix computed by the last call to [Camera.UpdateProjection].
func (c *Camera) Projection() mgl32.Mat4 {
	return c.proj
}

// View returns the world to camera transform. When the camera sits on the
// target or looks along Up the view direction is nudged so the transform stays finite.
func (c *Camera) View() mgl32.Mat4 {
	eye, up := toVec3(c.Position), toVec3(c.Up)
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	up = up.Normalize()
	back := eye.Sub(toVec3(c.Target))
	if back.Len() == 0 {
		back[2] = 1
	}
	back = back.Normalize()
	if up.Cross(back).Len() < 1e-6 {
		if math.Abs(up.Z()) > 0.999 {
			back[0] += 1e-4
		} else {
			back[2] += 1e-4
		}
		back = back.Normalize()
	}
	return mgl32.LookAtV(eye, eye.Sub(back), up)
}

// ViewProjection returns Projection()*View().
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.proj.Mul4(c.View())
}

package prismscene

import (
	"errors"

	math "github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// Mesh is a triangle soup in local coordinates. Triangles are wound
// counter-clockwise when seen from outside the solid.
type Mesh struct {
	Triangles []ms3.Triangle
}

// NewCone returns a capped cone centered at the origin with its apex on +Y.
// With radialSegments=3 the result is a triangular pyramid.
// Base vertex i lies at angle 2πi/radialSegments measured from +Z towards +X.
func NewCone(radius, height float32, radialSegments int) (*Mesh, error) {
	if radialSegments < 3 {
		return nil, errors.New("cone requires at least 3 radial segments")
	} else if radius <= 0 || height <= 0 {
		return nil, errors.New("cone requires positive radius and height")
	}
	h2 := height / 2
	apex := ms3.Vec{Y: h2}
	center := ms3.Vec{Y: -h2}
	base := make([]ms3.Vec, radialSegments)
	for i := range base {
		theta := float32(i) / float32(radialSegments) * twoPi
		base[i] = ms3.Vec{X: radius * math.Sin(theta), Y: -h2, Z: radius * math.Cos(theta)}
	}
	m := &Mesh{Triangles: make([]ms3.Triangle, 0, 2*radialSegments)}
	for i := range base {
		b0, b1 := base[i], base[(i+1)%radialSegments]
		m.Triangles = append(m.Triangles,
			ms3.Triangle{apex, b0, b1},
			ms3.Triangle{center, b1, b0},
		)
	}
	return m, nil
}

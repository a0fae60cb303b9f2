package glview

import (
	"github.com/soypat/prismscene"
)

// floatsPerVertex is the interleaved vertex layout: position xyz followed by texture uv.
const floatsPerVertex = 5

// meshVertices flattens a mesh into interleaved vertex data with zero texture coordinates.
func meshVertices(m *prismscene.Mesh) []float32 {
	data := make([]float32, 0, len(m.Triangles)*3*floatsPerVertex)
	for _, tri := range m.Triangles {
		for _, v := range tri {
			data = append(data, v.X, v.Y, v.Z, 0, 0)
		}
	}
	return data
}

// labelVertices returns two counter-clockwise triangles covering the label
// quad in world space. Texture row 0 maps to the top edge.
func labelVertices(l *prismscene.Label) []float32 {
	p := l.Position
	x0, x1 := p.X, p.X+l.Width
	y0, y1 := p.Y-l.Descent, p.Y+l.Ascent
	z := p.Z
	return []float32{
		x0, y0, z, 0, 1,
		x1, y0, z, 1, 1,
		x1, y1, z, 1, 0,

		x0, y0, z, 0, 1,
		x1, y1, z, 1, 0,
		x0, y1, z, 0, 0,
	}
}

package prismscene_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/prismscene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConeOutwardNormals(t *testing.T) {
	for _, segments := range []int{3, 4, 7, 32} {
		m, err := prismscene.NewCone(1, 2, segments)
		require.NoError(t, err)
		require.Len(t, m.Triangles, 2*segments)
		for i, tri := range m.Triangles {
			a := mgl32.Vec3{tri[0].X, tri[0].Y, tri[0].Z}
			b := mgl32.Vec3{tri[1].X, tri[1].Y, tri[1].Z}
			c := mgl32.Vec3{tri[2].X, tri[2].Y, tri[2].Z}
			normal := b.Sub(a).Cross(c.Sub(a))
			centroid := a.Add(b).Add(c).Mul(1. / 3)
			// The cone contains the origin so outward faces point away from it.
			assert.Greater(t, normal.Dot(centroid), float32(0), "segments=%d triangle %d", segments, i)
			for _, v := range tri {
				assert.LessOrEqual(t, v.Y, float32(1))
				assert.GreaterOrEqual(t, v.Y, float32(-1))
			}
		}
	}
}

func TestConeBaseVertices(t *testing.T) {
	m, err := prismscene.NewCone(0.2, 0.4, 3)
	require.NoError(t, err)
	// First side triangle runs apex, base vertex 0, base vertex 1.
	tri := m.Triangles[0]
	assert.InDelta(t, 0.2, tri[0].Y, 1e-6)
	assert.InDelta(t, 0, tri[1].X, 1e-6)
	assert.InDelta(t, 0.2, tri[1].Z, 1e-6)
	assert.InDelta(t, -0.2, tri[1].Y, 1e-6)
	assert.InDelta(t, 0.2*0.8660254, tri[2].X, 1e-6)
	assert.InDelta(t, -0.1, tri[2].Z, 1e-6)
}

func TestConeInvalid(t *testing.T) {
	_, err := prismscene.NewCone(1, 2, 2)
	assert.Error(t, err)
	_, err = prismscene.NewCone(0, 2, 3)
	assert.Error(t, err)
	_, err = prismscene.NewCone(1, -2, 3)
	assert.Error(t, err)
}

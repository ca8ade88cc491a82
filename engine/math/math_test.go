package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampAndSaturate(t *testing.T) {
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 10, Clamp(12, 0, 10))
	assert.Equal(t, 4, Clamp(4, 0, 10))
	assert.Equal(t, float32(1), Saturate(float32(1.5)))
	assert.Equal(t, float32(0), Saturate(float32(-0.5)))
	assert.InDelta(t, 2.5, Lerp(2.0, 3.0, 0.5), 1e-9)
}

func TestMat4InverseRoundTrip(t *testing.T) {
	m := NewMat4Scale(NewVec3(2, 3, 4)).
		Mul(NewQuatFromAxisAngle(NewVec3Up(), DegToRad(30), true).ToMat4()).
		Mul(NewMat4Translation(NewVec3(1, -2, 5)))
	assert.True(t, m.Mul(m.Inverse()).Compare(NewMat4Identity(), 1e-5))

	p := NewVec3(0.5, 1, -2)
	back := p.Transform(m).Transform(m.Inverse())
	assert.True(t, back.Compare(p, 1e-4), "got %v", back)
}

func TestExtentsTransformed(t *testing.T) {
	box := NewExtents3DFromPoints([]Vec3{{-1, -1, -1}, {1, 1, 1}, {0, 0.5, 0}})
	assert.Equal(t, NewVec3(-1, -1, -1), box.Min)
	assert.Equal(t, NewVec3(1, 1, 1), box.Max)

	moved := box.Transformed(NewMat4Translation(NewVec3(10, 0, 0)))
	assert.True(t, moved.Center().Compare(NewVec3(10, 0, 0), 1e-6))
	assert.True(t, moved.HalfSize().Compare(NewVec3One(), 1e-6))
	assert.Equal(t, Extents3D{}, NewExtents3DFromPoints(nil))
}

func TestExtentsIntersectRay(t *testing.T) {
	box := Extents3D{Min: NewVec3(-1, -1, -1), Max: NewVec3(1, 1, 1)}

	d, ok := box.IntersectRay(Ray{Origin: NewVec3(-5, 0, 0), Direction: NewVec3(1, 0, 0)})
	assert.True(t, ok)
	assert.InDelta(t, 4, d, 1e-6)

	_, ok = box.IntersectRay(Ray{Origin: NewVec3(-5, 3, 0), Direction: NewVec3(1, 0, 0)})
	assert.False(t, ok)
	_, ok = box.IntersectRay(Ray{Origin: NewVec3(5, 0, 0), Direction: NewVec3(1, 0, 0)})
	assert.False(t, ok, "box is behind the ray")

	d, ok = box.IntersectRay(Ray{Origin: NewVec3Zero(), Direction: NewVec3(0, 1, 0)})
	assert.True(t, ok)
	assert.Zero(t, d, "origin inside the box")
}

func TestFrustumFromIdentity(t *testing.T) {
	// the identity view-projection makes the frustum the [-1, 1] cube
	f := NewFrustum(NewMat4Identity())

	assert.True(t, f.ContainsPoint(NewVec3Zero()))
	assert.True(t, f.ContainsPoint(NewVec3(0.9, -0.9, 0.5)))
	assert.False(t, f.ContainsPoint(NewVec3(2, 0, 0)))
	assert.False(t, f.ContainsPoint(NewVec3(0, 0, -1.5)))

	assert.False(t, f.IntersectsAABB(Extents3D{Min: NewVec3(1.5, 1.5, 0), Max: NewVec3(3, 3, 1)}))
	assert.True(t, f.IntersectsAABB(Extents3D{Min: NewVec3(0.5, -3, -3), Max: NewVec3(5, 3, 3)}))
}

func TestTransformHierarchy(t *testing.T) {
	parent := TransformFromPosition(NewVec3(0, 5, 0))
	child := TransformFromPosition(NewVec3(1, 0, 0))
	child.Parent = parent
	assert.True(t, child.WorldPosition().Compare(NewVec3(1, 5, 0), 1e-6))

	parent.Translate(NewVec3(0, 1, 0))
	assert.True(t, child.WorldPosition().Compare(NewVec3(1, 6, 0), 1e-6))
}

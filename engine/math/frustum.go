package math

// Plane is a normalized plane equation n·p + D = 0.
type Plane struct {
	Normal Vec3
	D      float32
}

func (p Plane) normalized() Plane {
	l := p.Normal.Length()
	if l == 0 {
		return p
	}
	return Plane{Normal: p.Normal.MulScalar(1 / l), D: p.D / l}
}

// Distance is the signed distance from point to the plane.
func (p Plane) Distance(point Vec3) float32 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the six planes, normals pointing inward:
// left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// NewFrustum extracts the planes from a view-projection matrix
// (Gribb/Hartmann).
func NewFrustum(viewProjection Mat4) Frustum {
	d := &viewProjection.Data
	col := func(i int) Vec4 {
		return Vec4{d[i], d[4+i], d[8+i], d[12+i]}
	}
	c0, c1, c2, c3 := col(0), col(1), col(2), col(3)
	plane := func(v Vec4) Plane {
		return Plane{Normal: Vec3{v.X, v.Y, v.Z}, D: v.W}.normalized()
	}
	return Frustum{Planes: [6]Plane{
		plane(c3.Add(c0)),
		plane(c3.Sub(c0)),
		plane(c3.Add(c1)),
		plane(c3.Sub(c1)),
		plane(c3.Add(c2)),
		plane(c3.Sub(c2)),
	}}
}

// ContainsPoint reports whether p lies inside every plane.
func (f Frustum) ContainsPoint(p Vec3) bool {
	for _, plane := range f.Planes {
		if plane.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsAABB is conservative: boxes straddling a plane count as visible.
func (f Frustum) IntersectsAABB(box Extents3D) bool {
	for _, plane := range f.Planes {
		positive := box.Min
		if plane.Normal.X >= 0 {
			positive.X = box.Max.X
		}
		if plane.Normal.Y >= 0 {
			positive.Y = box.Max.Y
		}
		if plane.Normal.Z >= 0 {
			positive.Z = box.Max.Z
		}
		if plane.Distance(positive) < 0 {
			return false
		}
	}
	return true
}

package math

// GeometryGenerateTangents computes per-triangle tangents with handedness
// folded into their sign.
func GeometryGenerateTangents(vertices []Vertex3D, indices []uint32) []Vertex3D {
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		deltaU1 := vertices[i1].Texcoord.X - vertices[i0].Texcoord.X
		deltaV1 := vertices[i1].Texcoord.Y - vertices[i0].Texcoord.Y

		deltaU2 := vertices[i2].Texcoord.X - vertices[i0].Texcoord.X
		deltaV2 := vertices[i2].Texcoord.Y - vertices[i0].Texcoord.Y

		dividend := deltaU1*deltaV2 - deltaU2*deltaV1
		if dividend == 0 {
			continue
		}
		fc := 1.0 / dividend

		tangent := Vec3{
			fc * (deltaV2*edge1.X - deltaV1*edge2.X),
			fc * (deltaV2*edge1.Y - deltaV1*edge2.Y),
			fc * (deltaV2*edge1.Z - deltaV1*edge2.Z),
		}.Normalized()

		handedness := float32(1.0)
		if (deltaV1*deltaU2 - deltaV2*deltaU1) < 0.0 {
			handedness = -1.0
		}

		t4 := tangent.MulScalar(handedness)
		vertices[i0].Tangent = t4
		vertices[i1].Tangent = t4
		vertices[i2].Tangent = t4
	}
	return vertices
}

// NewExtents3DFromPoints returns the box enclosing every point.
func NewExtents3DFromPoints(points []Vec3) Extents3D {
	if len(points) == 0 {
		return Extents3D{}
	}
	e := Extents3D{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		e.Min = e.Min.Min(p)
		e.Max = e.Max.Max(p)
	}
	return e
}

func (e Extents3D) Center() Vec3 {
	return e.Min.Add(e.Max).MulScalar(0.5)
}

func (e Extents3D) HalfSize() Vec3 {
	return e.Max.Sub(e.Min).MulScalar(0.5)
}

// Corners returns the eight corners of the box.
func (e Extents3D) Corners() [8]Vec3 {
	return [8]Vec3{
		{e.Min.X, e.Min.Y, e.Min.Z},
		{e.Max.X, e.Min.Y, e.Min.Z},
		{e.Max.X, e.Max.Y, e.Min.Z},
		{e.Min.X, e.Max.Y, e.Min.Z},
		{e.Min.X, e.Min.Y, e.Max.Z},
		{e.Max.X, e.Min.Y, e.Max.Z},
		{e.Max.X, e.Max.Y, e.Max.Z},
		{e.Min.X, e.Max.Y, e.Max.Z},
	}
}

// Transformed returns the axis aligned box enclosing e transformed by m.
func (e Extents3D) Transformed(m Mat4) Extents3D {
	corners := e.Corners()
	points := make([]Vec3, 0, len(corners))
	for _, c := range corners {
		points = append(points, c.Transform(m))
	}
	return NewExtents3DFromPoints(points)
}

// IntersectRay returns the entry distance along r, or false on a miss.
func (e Extents3D) IntersectRay(r Ray) (float32, bool) {
	tmin := float32(-K_INFINITY)
	tmax := float32(K_INFINITY)
	origin := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float32{r.Direction.X, r.Direction.Y, r.Direction.Z}
	lo := [3]float32{e.Min.X, e.Min.Y, e.Min.Z}
	hi := [3]float32{e.Max.X, e.Max.Y, e.Max.Z}
	for i := 0; i < 3; i++ {
		if kabs(dir[i]) < K_FLOAT_EPSILON {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - origin[i]) / dir[i]
		t2 := (hi[i] - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	return max(tmin, 0), true
}

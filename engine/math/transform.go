package math

func TransformCreate() *Transform {
	return TransformFromPositionRotationScale(NewVec3Zero(), NewQuatIdentity(), NewVec3One())
}

func TransformFromPosition(position Vec3) *Transform {
	return TransformFromPositionRotationScale(position, NewQuatIdentity(), NewVec3One())
}

func TransformFromPositionRotation(position Vec3, rotation Quaternion) *Transform {
	return TransformFromPositionRotationScale(position, rotation, NewVec3One())
}

func TransformFromPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(position, rotation, scale)
	t.Local = NewMat4Identity()
	t.Parent = nil
	return t
}

func (t *Transform) SetPosition(position Vec3) {
	t.Position = position
	t.IsDirty = true
}

func (t *Transform) Translate(translation Vec3) {
	t.Position = t.Position.Add(translation)
	t.IsDirty = true
}

func (t *Transform) SetRotation(rotation Quaternion) {
	t.Rotation = rotation
	t.IsDirty = true
}

func (t *Transform) Rotate(rotation Quaternion) {
	t.Rotation = t.Rotation.Mul(rotation)
	t.IsDirty = true
}

func (t *Transform) SetScale(scale Vec3) {
	t.Scale = scale
	t.IsDirty = true
}

func (t *Transform) SetPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) {
	t.Position = position
	t.Rotation = rotation
	t.Scale = scale
	t.IsDirty = true
}

// GetLocal rebuilds scale * rotation * translation when dirty.
func (t *Transform) GetLocal() Mat4 {
	if t != nil {
		if t.IsDirty {
			m := t.Rotation.ToMat4()
			tr := m.Mul(NewMat4Translation(t.Position))
			s := NewMat4Scale(t.Scale)
			t.Local = s.Mul(tr)
			t.IsDirty = false
		}
		return t.Local
	}
	return NewMat4Identity()
}

func (t *Transform) GetWorld() Mat4 {
	if t != nil {
		l := t.GetLocal()
		if t.Parent != nil {
			p := t.Parent.GetWorld()
			return l.Mul(p)
		}
		return l
	}
	return NewMat4Identity()
}

// WorldPosition is the translation of the world matrix.
func (t *Transform) WorldPosition() Vec3 {
	return t.GetWorld().Translation()
}

// Forward is the world-space -Z axis of the transform.
func (t *Transform) Forward() Vec3 {
	w := t.GetWorld()
	return Vec3{-w.Data[8], -w.Data[9], -w.Data[10]}.Normalized()
}

// Up is the world-space +Y axis of the transform.
func (t *Transform) Up() Vec3 {
	w := t.GetWorld()
	return Vec3{w.Data[4], w.Data[5], w.Data[6]}.Normalized()
}

// Right is the world-space +X axis of the transform.
func (t *Transform) Right() Vec3 {
	w := t.GetWorld()
	return Vec3{w.Data[0], w.Data[1], w.Data[2]}.Normalized()
}

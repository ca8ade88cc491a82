package scene

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/components"
	"github.com/spaghettifunk/lumen/engine/resources"
)

/**
 * @brief Geometry and material of an entity. The ranges default to the
 * whole model when IndexCount is zero.
 */
type Renderable struct {
	Model          *resources.Model
	Material       *resources.Material
	IndexCount     uint32
	IndexOffset    uint32
	VertexOffset   uint32
	CastShadows    bool
	ReceiveShadows bool
}

func NewRenderable(model *resources.Model, material *resources.Material) *Renderable {
	return &Renderable{
		Model:          model,
		Material:       material,
		CastShadows:    true,
		ReceiveShadows: true,
	}
}

// HasGeometry is false when there is nothing to draw.
func (r *Renderable) HasGeometry() bool {
	return r != nil && r.Model != nil && r.Model.VertexBuffer != nil && r.Model.IndexBuffer != nil && r.Indices() > 0
}

func (r *Renderable) Indices() uint32 {
	if r.IndexCount > 0 {
		return r.IndexCount
	}
	if r.Model == nil {
		return 0
	}
	return r.Model.IndexCount
}

// GeometryID identifies the vertex and index buffers for bind caching.
func (r *Renderable) GeometryID() uint64 {
	if r == nil || r.Model == nil {
		return core.InvalidID
	}
	return r.Model.ID
}

type Entity struct {
	ID         uint64
	Name       string
	Active     bool
	Transform  *math.Transform
	Renderable *Renderable
	Light      *components.Light
}

func NewEntity(name string) *Entity {
	return &Entity{
		ID:        core.IdentifierAcquireNewID(),
		Name:      name,
		Active:    true,
		Transform: math.TransformCreate(),
	}
}

// WorldAABB is the model bounding box in world space.
func (e *Entity) WorldAABB() (math.Extents3D, bool) {
	if e.Renderable == nil || e.Renderable.Model == nil {
		return math.Extents3D{}, false
	}
	return e.Renderable.Model.AABB.Transformed(e.Transform.GetWorld()), true
}

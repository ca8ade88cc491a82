package resources

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

/** @brief GPU geometry plus its local bounding box. */
type Model struct {
	ID           uint64
	Name         string
	VertexBuffer *rhi.Buffer
	IndexBuffer  *rhi.Buffer
	VertexCount  uint32
	IndexCount   uint32
	AABB         math.Extents3D
}

func NewModel(device rhi.Device, name string, vertices []math.Vertex3D, indices []uint32) (*Model, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		err := fmt.Errorf("model %s has no geometry: %w", name, core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	vb, err := device.CreateBuffer(rhi.BufferDesc{
		Name:   name + "_vertices",
		Kind:   rhi.BufferVertex,
		Stride: uint32(vertexStride),
		Count:  uint32(len(vertices)),
	}, vertices)
	if err != nil {
		core.LogError("model %s: %s", name, err.Error())
		return nil, err
	}
	ib, err := device.CreateBuffer(rhi.BufferDesc{
		Name:   name + "_indices",
		Kind:   rhi.BufferIndex,
		Stride: 4,
		Count:  uint32(len(indices)),
	}, indices)
	if err != nil {
		core.LogError("model %s: %s", name, err.Error())
		return nil, err
	}

	points := make([]math.Vec3, len(vertices))
	for i, v := range vertices {
		points[i] = v.Position
	}
	return &Model{
		ID:           core.IdentifierAcquireNewID(),
		Name:         name,
		VertexBuffer: vb,
		IndexBuffer:  ib,
		VertexCount:  uint32(len(vertices)),
		IndexCount:   uint32(len(indices)),
		AABB:         math.NewExtents3DFromPoints(points),
	}, nil
}

// NewModelFromConfig uploads a generated geometry.
func NewModelFromConfig(device rhi.Device, config *GeometryConfig) (*Model, error) {
	return NewModel(device, config.Name, config.Vertices, config.Indices)
}

// position, normal, texcoord, colour, tangent
const vertexStride = (3 + 3 + 2 + 4 + 3) * 4

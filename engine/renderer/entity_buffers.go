package renderer

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
	"github.com/spaghettifunk/lumen/engine/scene"
)

// entries not drawn for this many frames are dropped
const entityBufferRetention = 120

type entityState struct {
	object   *rhi.Buffer
	cascades [metadata.MaxCascades]*rhi.Buffer

	previousWVP math.Mat4
	hasPrevious bool
	lastFrame   uint64
}

/**
 * @brief Per entity constant buffers and the world-view-projection of the
 * previous frame, which the G-buffer needs for velocity.
 */
type entityBuffers struct {
	device  rhi.Device
	entries map[uint64]*entityState
	frame   uint64
}

func newEntityBuffers(device rhi.Device) *entityBuffers {
	return &entityBuffers{device: device, entries: make(map[uint64]*entityState)}
}

func (b *entityBuffers) get(e *scene.Entity) *entityState {
	s, ok := b.entries[e.ID]
	if !ok {
		s = &entityState{}
		b.entries[e.ID] = s
	}
	s.lastFrame = b.frame
	return s
}

func (b *entityBuffers) write(target **rhi.Buffer, name string, data interface{}) (*rhi.Buffer, error) {
	if *target == nil {
		buf, err := b.device.CreateBuffer(rhi.BufferDesc{Name: name, Kind: rhi.BufferConstant, Count: 1, Dynamic: true}, data)
		if err != nil {
			return nil, err
		}
		*target = buf
		return buf, nil
	}
	if err := b.device.UpdateBuffer(*target, data); err != nil {
		return nil, err
	}
	return *target, nil
}

// object fills the object buffer of e. The first frame an entity is seen
// its previous transform equals the current one, so velocity is zero.
func (b *entityBuffers) object(e *scene.Entity, world, viewProjection math.Mat4) (*rhi.Buffer, error) {
	s := b.get(e)
	wvp := world.Mul(viewProjection)
	previous := wvp
	if s.hasPrevious {
		previous = s.previousWVP
	}
	s.previousWVP = wvp
	s.hasPrevious = true
	return b.write(&s.object, fmt.Sprintf("object_%d", e.ID), metadata.ObjectBuffer{
		World:                       world,
		WorldViewProjection:         wvp,
		WorldViewProjectionPrevious: previous,
	})
}

// cascade fills the light-space buffer of e for one shadow cascade.
func (b *entityBuffers) cascade(e *scene.Entity, index int, worldViewProjection math.Mat4) (*rhi.Buffer, error) {
	if index < 0 || index >= metadata.MaxCascades {
		return nil, fmt.Errorf("cascade %d out of range", index)
	}
	s := b.get(e)
	return b.write(&s.cascades[index], fmt.Sprintf("cascade_%d_%d", index, e.ID), metadata.CascadeBuffer{
		WorldViewProjection: worldViewProjection,
	})
}

// endFrame drops entries of entities that stopped being drawn.
func (b *entityBuffers) endFrame(frame uint64) {
	for id, s := range b.entries {
		if frame-s.lastFrame > entityBufferRetention {
			delete(b.entries, id)
		}
	}
	b.frame = frame + 1
}

// reset forgets the previous transforms, after a resize the old ones
// would produce a burst of velocity.
func (b *entityBuffers) reset() {
	for _, s := range b.entries {
		s.hasPrevious = false
	}
}

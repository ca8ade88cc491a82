package resources

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

const DefaultMaterialName string = "default"

/**
 * @brief Surface description used by the G-buffer and transparent passes.
 * Its constant buffer is created on first use and refreshed when dirty.
 */
type Material struct {
	ID   uint64
	Name string
	/** @brief Optional pixel shader variant; nil uses the builtin G-buffer shader. */
	Shader *rhi.Shader

	Textures         [metadata.TEXTURE_TYPE_COUNT]*rhi.Texture
	AlbedoColor      math.Vec4
	Roughness        float32
	Metallic         float32
	NormalMultiplier float32
	HeightMultiplier float32
	TilingUV         math.Vec2
	OffsetUV         math.Vec2
	CullMode         metadata.FaceCullMode

	buffer *rhi.Buffer
	dirty  bool
}

func NewMaterial(name string) *Material {
	if len(name) == 0 {
		name = DefaultMaterialName
	}
	return &Material{
		ID:               core.IdentifierAcquireNewID(),
		Name:             name,
		AlbedoColor:      math.NewVec4One(),
		Roughness:        1,
		NormalMultiplier: 1,
		TilingUV:         math.NewVec2(1, 1),
		CullMode:         metadata.FaceCullModeBack,
		dirty:            true,
	}
}

/**
 * @brief Builds a material from a loaded config. textures resolves map
 * names; maps it cannot resolve are left empty.
 */
func NewMaterialFromConfig(config *MaterialConfig, textures func(name string) *rhi.Texture) *Material {
	m := NewMaterial(config.Name)
	m.AlbedoColor = config.AlbedoColor
	m.Roughness = math.Saturate(config.Roughness)
	m.Metallic = math.Saturate(config.Metallic)
	m.CullMode = config.CullMode
	if textures == nil {
		return m
	}
	for textureType, name := range config.Maps {
		if t := textures(name); t != nil {
			m.SetTexture(textureType, t)
		} else {
			core.LogWarn("material %s: texture %s not found", m.Name, name)
		}
	}
	return m
}

// IsTransparent is true when albedo alpha is below one.
func (m *Material) IsTransparent() bool {
	return m.AlbedoColor.W < 1
}

func (m *Material) SetTexture(textureType metadata.TextureType, texture *rhi.Texture) {
	if textureType < 0 || textureType >= metadata.TEXTURE_TYPE_COUNT {
		core.LogWarn("material %s: texture type %d out of range", m.Name, textureType)
		return
	}
	m.Textures[textureType] = texture
	m.dirty = true
}

func (m *Material) SetAlbedoColor(color math.Vec4) {
	m.AlbedoColor = color
	m.dirty = true
}

func (m *Material) SetRoughness(roughness float32) {
	m.Roughness = math.Saturate(roughness)
	m.dirty = true
}

func (m *Material) SetMetallic(metallic float32) {
	m.Metallic = math.Saturate(metallic)
	m.dirty = true
}

// MarkDirty forces a buffer refresh after fields were edited directly.
func (m *Material) MarkDirty() {
	m.dirty = true
}

func (m *Material) Data() metadata.MaterialBuffer {
	data := metadata.MaterialBuffer{
		AlbedoColor:      m.AlbedoColor,
		TilingUV:         m.TilingUV,
		OffsetUV:         m.OffsetUV,
		Roughness:        m.Roughness,
		Metallic:         m.Metallic,
		NormalMultiplier: m.NormalMultiplier,
		HeightMultiplier: m.HeightMultiplier,
	}
	for i, t := range m.Textures {
		data.HasTexture[i] = t != nil
	}
	return data
}

// Buffer returns the up to date constant buffer of the material.
func (m *Material) Buffer(device rhi.Device) (*rhi.Buffer, error) {
	if m.buffer == nil {
		b, err := device.CreateBuffer(rhi.BufferDesc{
			Name:    fmt.Sprintf("material_%s", m.Name),
			Kind:    rhi.BufferConstant,
			Count:   1,
			Dynamic: true,
		}, m.Data())
		if err != nil {
			err = fmt.Errorf("material %s: %w", m.Name, err)
			core.LogError(err.Error())
			return nil, err
		}
		m.buffer = b
		m.dirty = false
		return m.buffer, nil
	}
	if m.dirty {
		if err := device.UpdateBuffer(m.buffer, m.Data()); err != nil {
			return nil, err
		}
		m.dirty = false
	}
	return m.buffer, nil
}

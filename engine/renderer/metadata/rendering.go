package metadata

import "github.com/spaghettifunk/lumen/engine/renderer/rhi"

type FaceCullMode int

const (
	/** @brief No faces are culled. */
	FaceCullModeNone FaceCullMode = 0x0
	/** @brief Only front faces are culled. */
	FaceCullModeFront FaceCullMode = 0x1
	/** @brief Only back faces are culled. */
	FaceCullModeBack FaceCullMode = 0x2
)

// RasterizerCullMode maps a material cull mode onto the RHI one.
func (m FaceCullMode) RasterizerCullMode() rhi.CullMode {
	switch m {
	case FaceCullModeFront:
		return rhi.CullFront
	case FaceCullModeBack:
		return rhi.CullBack
	}
	return rhi.CullNone
}

/** @brief The material texture slots, in binding order. */
type TextureType int

const (
	TEXTURE_TYPE_ALBEDO TextureType = iota
	TEXTURE_TYPE_ROUGHNESS
	TEXTURE_TYPE_METALLIC
	TEXTURE_TYPE_NORMAL
	TEXTURE_TYPE_HEIGHT
	TEXTURE_TYPE_OCCLUSION
	TEXTURE_TYPE_EMISSION
	TEXTURE_TYPE_MASK
	TEXTURE_TYPE_COUNT
)

var textureTypeNames = [TEXTURE_TYPE_COUNT]string{"albedo", "roughness", "metallic", "normal", "height", "occlusion", "emission", "mask"}

func (t TextureType) String() string {
	if t < 0 || t >= TEXTURE_TYPE_COUNT {
		return "unknown"
	}
	return textureTypeNames[t]
}

type LightType int

const (
	LIGHT_TYPE_DIRECTIONAL LightType = iota
	LIGHT_TYPE_POINT
	LIGHT_TYPE_SPOT
)

func (t LightType) String() string {
	switch t {
	case LIGHT_TYPE_DIRECTIONAL:
		return "directional"
	case LIGHT_TYPE_POINT:
		return "point"
	case LIGHT_TYPE_SPOT:
		return "spot"
	}
	return "unknown"
}

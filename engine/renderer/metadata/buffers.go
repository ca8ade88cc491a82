package metadata

import "github.com/spaghettifunk/lumen/engine/math"

const (
	MaxCascades = 4
	MaxLights   = 16
)

// constant buffer slots shared by every shader
const (
	CB_SLOT_GLOBAL   uint32 = 0
	CB_SLOT_PASS     uint32 = 1
	CB_SLOT_OBJECT   uint32 = 2
	CB_SLOT_MATERIAL uint32 = 3
)

/** @brief Bound at slot 0 by every pass. */
type GlobalBuffer struct {
	View                  math.Mat4
	Projection            math.Mat4
	ViewProjection        math.Mat4
	ViewProjectionInverse math.Mat4
	ViewProjectionOrtho   math.Mat4
	CameraPosition        math.Vec3
	CameraNear            float32
	CameraFar             float32
	Resolution            math.Vec2
	FrameIndex            uint64
	DeltaTime             float32

	ToneMapping         ToneMapping
	Exposure            float32
	Gamma               float32
	BloomIntensity      float32
	SharpenStrength     float32
	MotionBlurStrength  float32
	ChromaticAberration float32
}

/** @brief Per entity transform, slot 2. */
type ObjectBuffer struct {
	World                       math.Mat4
	WorldViewProjection         math.Mat4
	WorldViewProjectionPrevious math.Mat4
}

/** @brief Per cascade per entity light-space transform, slot 1. */
type CascadeBuffer struct {
	WorldViewProjection math.Mat4
}

/** @brief Material scalars, slot 3. */
type MaterialBuffer struct {
	AlbedoColor      math.Vec4
	TilingUV         math.Vec2
	OffsetUV         math.Vec2
	Roughness        float32
	Metallic         float32
	NormalMultiplier float32
	HeightMultiplier float32
	HasTexture       [TEXTURE_TYPE_COUNT]bool
}

type LightData struct {
	Type        LightType
	Position    math.Vec3
	Direction   math.Vec3
	Color       math.Vec4
	Intensity   float32
	Range       float32
	Angle       float32
	CastShadows bool
}

/** @brief Every light of the frame, slot 1 of the light pass. */
type LightBuffer struct {
	Lights           [MaxLights]LightData
	Count            uint32
	AmbientIntensity float32
	SSR              bool
}

/** @brief Shadow mapping inputs, slot 1 of the shadow mapping pass. */
type ShadowBuffer struct {
	LightViewProjection [MaxCascades]math.Mat4
	CascadeCount        uint32
	LightDirection      math.Vec3
	Bias                float32
}

/** @brief Direction of a separable blur pass, slot 1. */
type BlurBuffer struct {
	Direction math.Vec2
	Sigma     float32
}

/** @brief Per object transparent shading inputs, slot 1. */
type TransparencyBuffer struct {
	World          math.Mat4
	View           math.Mat4
	Projection     math.Mat4
	Color          math.Vec4
	CameraPosition math.Vec3
	LightDirection math.Vec3
	Roughness      float32
}

/** @brief Color and transform for gizmos and text, slot 1. */
type ColorBuffer struct {
	Transform math.Mat4
	Color     math.Vec4
}

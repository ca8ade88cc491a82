package components

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

const DefaultShadowMapResolution uint32 = 512

// DefaultCascadeExtents are the half sizes of each cascade in world units.
var DefaultCascadeExtents = []float32{8, 24, 80}

/**
 * @brief A light source. Directional lights that cast shadows own a
 * shadow map with one depth slice per cascade.
 */
type Light struct {
	Type        metadata.LightType
	Color       math.Vec4
	Intensity   float32
	Range       float32
	/** @brief Full cone angle of spot lights, radians. */
	Angle       float32
	CastShadows bool
	Bias        float32

	CascadeExtents      []float32
	ShadowMapResolution uint32
	ShadowMap           *rhi.Texture
}

func NewDirectionalLight(color math.Vec4, intensity float32, castShadows bool) *Light {
	extents := make([]float32, len(DefaultCascadeExtents))
	copy(extents, DefaultCascadeExtents)
	return &Light{
		Type:                metadata.LIGHT_TYPE_DIRECTIONAL,
		Color:               color,
		Intensity:           intensity,
		CastShadows:         castShadows,
		Bias:                0.0005,
		CascadeExtents:      extents,
		ShadowMapResolution: DefaultShadowMapResolution,
	}
}

func NewPointLight(color math.Vec4, intensity, lightRange float32) *Light {
	return &Light{
		Type:      metadata.LIGHT_TYPE_POINT,
		Color:     color,
		Intensity: intensity,
		Range:     lightRange,
	}
}

func NewSpotLight(color math.Vec4, intensity, lightRange, angle float32) *Light {
	return &Light{
		Type:      metadata.LIGHT_TYPE_SPOT,
		Color:     color,
		Intensity: intensity,
		Range:     lightRange,
		Angle:     angle,
	}
}

func (l *Light) CascadeCount() int {
	if l.Type != metadata.LIGHT_TYPE_DIRECTIONAL {
		return 0
	}
	return min(len(l.CascadeExtents), metadata.MaxCascades)
}

// CreateShadowMap allocates the cascade array. Lights without shadows skip it.
func (l *Light) CreateShadowMap(device rhi.Device) error {
	if !l.CastShadows || l.CascadeCount() == 0 {
		return nil
	}
	if l.ShadowMap != nil {
		device.DestroyTexture(l.ShadowMap)
		l.ShadowMap = nil
	}
	resolution := l.ShadowMapResolution
	if resolution == 0 {
		resolution = DefaultShadowMapResolution
	}
	texture, err := device.CreateTexture(rhi.TextureDesc{
		Name:      "shadow_map",
		Width:     resolution,
		Height:    resolution,
		ArraySize: uint32(l.CascadeCount()),
		Format:    rhi.FormatD32Float,
		Usage:     rhi.UsageDepthStencil | rhi.UsageSampled,
	})
	if err != nil {
		err = fmt.Errorf("shadow map: %w", err)
		core.LogError(err.Error())
		return err
	}
	l.ShadowMap = texture
	return nil
}

func (l *Light) Destroy(device rhi.Device) {
	if l.ShadowMap != nil {
		device.DestroyTexture(l.ShadowMap)
		l.ShadowMap = nil
	}
}

// CascadeViewProjection fits cascade i around the camera, looking along direction.
func (l *Light) CascadeViewProjection(i int, direction math.Vec3, camera *Camera) math.Mat4 {
	if i < 0 || i >= l.CascadeCount() {
		return math.NewMat4Identity()
	}
	extent := l.CascadeExtents[i]
	direction = direction.Normalized()
	center := camera.GetPosition().Add(camera.Forward().MulScalar(extent * 0.5))
	eye := center.Sub(direction.MulScalar(extent * 2))
	up := math.NewVec3Up()
	if abs(direction.Dot(up)) > 0.99 {
		up = math.NewVec3Forward()
	}
	view := math.NewMat4LookAt(eye, center, up)
	projection := math.NewMat4Orthographic(-extent, extent, -extent, extent, 0.01, extent*4)
	return view.Mul(projection)
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

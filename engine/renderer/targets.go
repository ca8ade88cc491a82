package renderer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

type targetSpec struct {
	// the target is 1/divisor of the output resolution
	divisor uint32
	format  rhi.Format
	usage   rhi.TextureUsage
}

const colorTarget = rhi.UsageRenderTarget | rhi.UsageSampled

var targetSpecs = [metadata.TARGET_COUNT]targetSpec{
	metadata.TARGET_GBUFFER_ALBEDO:   {1, rhi.FormatR8G8B8A8Unorm, colorTarget},
	metadata.TARGET_GBUFFER_NORMAL:   {1, rhi.FormatR16G16B16A16Float, colorTarget},
	metadata.TARGET_GBUFFER_MATERIAL: {1, rhi.FormatR8G8B8A8Unorm, colorTarget},
	metadata.TARGET_GBUFFER_VELOCITY: {1, rhi.FormatR16G16Float, colorTarget},
	metadata.TARGET_GBUFFER_DEPTH:    {1, rhi.FormatD32Float, rhi.UsageDepthStencil | rhi.UsageSampled},
	metadata.TARGET_HALF_SHADOWS:     {2, rhi.FormatR8G8B8A8Unorm, colorTarget},
	metadata.TARGET_HALF_SSAO:        {2, rhi.FormatR8G8B8A8Unorm, colorTarget},
	metadata.TARGET_HALF_SPARE:       {2, rhi.FormatR8G8B8A8Unorm, colorTarget},
	metadata.TARGET_FULL_HDR_LIGHT:   {1, rhi.FormatR16G16B16A16Float, colorTarget},
	metadata.TARGET_FULL_HDR_LIGHT2:  {1, rhi.FormatR16G16B16A16Float, colorTarget},
	metadata.TARGET_FULL_TAA_CURRENT: {1, rhi.FormatR16G16B16A16Float, colorTarget},
	metadata.TARGET_FULL_TAA_HISTORY: {1, rhi.FormatR16G16B16A16Float, colorTarget},
	metadata.TARGET_QUARTER_BLUR1:    {4, rhi.FormatR16G16B16A16Float, colorTarget},
	metadata.TARGET_QUARTER_BLUR2:    {4, rhi.FormatR16G16B16A16Float, colorTarget},
}

/**
 * @brief TargetPool owns every intermediate texture of the pipeline. A
 * role (metadata.TargetID) names a texture only until the next Swap, so
 * passes must look targets up by role instead of keeping pointers across
 * a swap.
 */
type TargetPool struct {
	device rhi.Device
	width  uint32
	height uint32
	roles  [metadata.TARGET_COUNT]*rhi.Texture
}

func NewTargetPool(device rhi.Device, width, height uint32) (*TargetPool, error) {
	if device == nil || !device.IsInitialized() {
		core.LogError(core.ErrInvalidDevice.Error())
		return nil, core.ErrInvalidDevice
	}
	p := &TargetPool{device: device}
	if err := p.Resize(width, height); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *TargetPool) Width() uint32  { return p.width }
func (p *TargetPool) Height() uint32 { return p.height }

// Get returns the texture currently playing role id, nil for unknown roles.
func (p *TargetPool) Get(id metadata.TargetID) *rhi.Texture {
	if id < 0 || id >= metadata.TARGET_COUNT {
		return nil
	}
	return p.roles[id]
}

// Swap exchanges the textures behind two roles. No texel is copied.
func (p *TargetPool) Swap(a, b metadata.TargetID) {
	if a < 0 || a >= metadata.TARGET_COUNT || b < 0 || b >= metadata.TARGET_COUNT {
		core.LogWarn("swap of unknown targets %d and %d", a, b)
		return
	}
	p.roles[a], p.roles[b] = p.roles[b], p.roles[a]
}

// Matching fails with core.ErrTargetMismatch unless in and out can be swapped.
func (p *TargetPool) Matching(in, out metadata.TargetID) error {
	return matchTargets(p.Get(in), p.Get(out))
}

func matchTargets(in, out *rhi.Texture) error {
	if in == nil || out == nil {
		return fmt.Errorf("missing ping-pong target: %w", core.ErrTargetMismatch)
	}
	if !in.Matches(out) {
		return fmt.Errorf("%s is %dx%d %s, %s is %dx%d %s: %w",
			in.Name, in.Width, in.Height, in.Format,
			out.Name, out.Width, out.Height, out.Format,
			core.ErrTargetMismatch)
	}
	return nil
}

/**
 * @brief Recreates every target for the new output size. The range is
 * checked first and all new textures are created before any old one is
 * destroyed, so a failure leaves the pool as it was.
 */
func (p *TargetPool) Resize(width, height uint32) error {
	if err := rhi.ValidateResolution(width, height); err != nil {
		err = fmt.Errorf("render target pool resize: %w", err)
		core.LogError(err.Error())
		return err
	}
	if width == p.width && height == p.height && p.roles[0] != nil {
		return nil
	}

	var created [metadata.TARGET_COUNT]*rhi.Texture
	for id := metadata.TargetID(0); id < metadata.TARGET_COUNT; id++ {
		spec := targetSpecs[id]
		t, err := p.device.CreateTexture(rhi.TextureDesc{
			Name:   fmt.Sprintf("%s_%s", id, uuid.NewString()),
			Width:  max(width/spec.divisor, 1),
			Height: max(height/spec.divisor, 1),
			Format: spec.format,
			Usage:  spec.usage,
		})
		if err != nil {
			for _, c := range created {
				p.device.DestroyTexture(c)
			}
			err = fmt.Errorf("render target %s: %w", id, err)
			core.LogError(err.Error())
			return err
		}
		created[id] = t
	}

	old := p.roles
	p.roles = created
	p.width = width
	p.height = height
	for _, t := range old {
		p.device.DestroyTexture(t)
	}
	core.LogDebug("render targets resized to %dx%d", width, height)
	return nil
}

// Named maps role names to their current textures.
func (p *TargetPool) Named() map[string]*rhi.Texture {
	out := make(map[string]*rhi.Texture, metadata.TARGET_COUNT)
	for id, t := range p.roles {
		out[metadata.TargetID(id).String()] = t
	}
	return out
}

func (p *TargetPool) Destroy() {
	for i, t := range p.roles {
		p.device.DestroyTexture(t)
		p.roles[i] = nil
	}
	p.width, p.height = 0, 0
}

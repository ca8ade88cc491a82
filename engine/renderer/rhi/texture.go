package rhi

import "github.com/spaghettifunk/lumen/engine/math"

type TextureUsage uint8

const (
	UsageSampled TextureUsage = 1 << iota
	UsageRenderTarget
	UsageDepthStencil
)

type TextureDesc struct {
	Name      string
	Width     uint32
	Height    uint32
	ArraySize uint32
	Format    Format
	Usage     TextureUsage
	// Optional initial contents, four floats per texel, slice after slice.
	Data []float32
}

type ViewKind int

const (
	ViewRenderTarget ViewKind = iota
	ViewDepthStencil
)

// TargetView is one writable slice of a texture.
type TargetView struct {
	Texture *Texture
	Slice   uint32
	Kind    ViewKind
}

type Texture struct {
	ID        ResourceID
	Name      string
	Width     uint32
	Height    uint32
	ArraySize uint32
	Format    Format
	Usage     TextureUsage
	// Backend specific storage.
	Internal interface{}

	renderTargetViews []*TargetView
	depthStencilViews []*TargetView
}

// NewTexture builds the handle and its views. Backends allocate Internal.
func NewTexture(desc TextureDesc) *Texture {
	arraySize := desc.ArraySize
	if arraySize == 0 {
		arraySize = 1
	}
	t := &Texture{
		ID:        NewResourceID(),
		Name:      desc.Name,
		Width:     desc.Width,
		Height:    desc.Height,
		ArraySize: arraySize,
		Format:    desc.Format,
		Usage:     desc.Usage,
	}
	for i := uint32(0); i < arraySize; i++ {
		if desc.Usage&UsageRenderTarget != 0 {
			t.renderTargetViews = append(t.renderTargetViews, &TargetView{Texture: t, Slice: i, Kind: ViewRenderTarget})
		}
		if desc.Usage&UsageDepthStencil != 0 {
			t.depthStencilViews = append(t.depthStencilViews, &TargetView{Texture: t, Slice: i, Kind: ViewDepthStencil})
		}
	}
	return t
}

// RenderTargetView returns nil when the texture is not a render target.
func (t *Texture) RenderTargetView(slice uint32) *TargetView {
	if t == nil || int(slice) >= len(t.renderTargetViews) {
		return nil
	}
	return t.renderTargetViews[slice]
}

// DepthStencilView returns nil when the texture has no depth usage.
func (t *Texture) DepthStencilView(slice uint32) *TargetView {
	if t == nil || int(slice) >= len(t.depthStencilViews) {
		return nil
	}
	return t.depthStencilViews[slice]
}

func (t *Texture) IsRenderTarget() bool {
	return t != nil && t.Usage&UsageRenderTarget != 0
}

func (t *Texture) IsDepthStencil() bool {
	return t != nil && t.Usage&UsageDepthStencil != 0
}

// Viewport covers the whole texture.
func (t *Texture) Viewport() Viewport {
	return NewViewport(0, 0, float32(t.Width), float32(t.Height))
}

// Size returns width and height as a vector.
func (t *Texture) Size() math.Vec2 {
	return math.NewVec2(float32(t.Width), float32(t.Height))
}

// Matches compares width, height and format.
func (t *Texture) Matches(other *Texture) bool {
	if t == nil || other == nil {
		return false
	}
	return t.Width == other.Width && t.Height == other.Height && t.Format == other.Format
}

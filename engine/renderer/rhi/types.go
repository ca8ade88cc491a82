package rhi

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
)

// ResourceID identifies any GPU object. Zero is never assigned.
type ResourceID uint64

func NewResourceID() ResourceID {
	return ResourceID(core.IdentifierAcquireNewID())
}

// bind point limits; every Command carries arrays of exactly these sizes
const (
	MaxRenderTargetSlots   = 8
	MaxTextureSlots        = 16
	MaxSamplerSlots        = 8
	MaxConstantBufferSlots = 8
)

// MaxResolution bounds every texture and swap chain dimension.
const MaxResolution uint32 = 16384

type Format int

const (
	FormatUnknown Format = iota
	FormatR8Unorm
	FormatR16Float
	FormatR32Float
	FormatR16G16Float
	FormatR8G8B8A8Unorm
	FormatR16G16B16A16Float
	FormatR32G32B32A32Float
	FormatD32Float
)

var formatNames = [...]string{
	FormatUnknown:           "Unknown",
	FormatR8Unorm:           "R8_UNORM",
	FormatR16Float:          "R16_FLOAT",
	FormatR32Float:          "R32_FLOAT",
	FormatR16G16Float:       "R16G16_FLOAT",
	FormatR8G8B8A8Unorm:     "R8G8B8A8_UNORM",
	FormatR16G16B16A16Float: "R16G16B16A16_FLOAT",
	FormatR32G32B32A32Float: "R32G32B32A32_FLOAT",
	FormatD32Float:          "D32_FLOAT",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// Channels is the number of meaningful components.
func (f Format) Channels() int {
	switch f {
	case FormatR8Unorm, FormatR16Float, FormatR32Float, FormatD32Float:
		return 1
	case FormatR16G16Float:
		return 2
	case FormatR8G8B8A8Unorm, FormatR16G16B16A16Float, FormatR32G32B32A32Float:
		return 4
	}
	return 0
}

// IsNormalized reports whether stored values saturate to [0, 1].
func (f Format) IsNormalized() bool {
	return f == FormatR8Unorm || f == FormatR8G8B8A8Unorm
}

// ValidateResolution rejects zero or oversized dimensions.
func ValidateResolution(width, height uint32) error {
	if width == 0 || height == 0 || width > MaxResolution || height > MaxResolution {
		return fmt.Errorf("%dx%d not in [1, %d]: %w", width, height, MaxResolution, core.ErrInvalidResolution)
	}
	return nil
}

type PrimitiveTopology int

const (
	PrimitiveTopologyTriangleList PrimitiveTopology = iota
	PrimitiveTopologyLineList
)

type CullMode int

const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

type FillMode int

const (
	FillSolid FillMode = iota
	FillWireframe
)

type ComparisonFunc int

const (
	ComparisonNever ComparisonFunc = iota
	ComparisonLess
	ComparisonLessEqual
	ComparisonGreater
	ComparisonGreaterEqual
	ComparisonAlways
)

// Test evaluates incoming against stored.
func (c ComparisonFunc) Test(incoming, stored float32) bool {
	switch c {
	case ComparisonLess:
		return incoming < stored
	case ComparisonLessEqual:
		return incoming <= stored
	case ComparisonGreater:
		return incoming > stored
	case ComparisonGreaterEqual:
		return incoming >= stored
	case ComparisonAlways:
		return true
	}
	return false
}

// ShaderScope tells the backend which stages see a constant buffer.
type ShaderScope int

const (
	ScopeGlobal ShaderScope = iota
	ScopeVertexShader
	ScopePixelShader
)

type ClearFlags uint8

const (
	ClearDepth ClearFlags = 1 << iota
	ClearStencil
)

type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

func NewViewport(x, y, width, height float32) Viewport {
	return Viewport{X: x, Y: y, Width: width, Height: height, MinDepth: 0, MaxDepth: 1}
}

type RasterizerState struct {
	ID        ResourceID
	CullMode  CullMode
	FillMode  FillMode
	DepthClip bool
	Scissor   bool
}

func NewRasterizerState(cull CullMode, fill FillMode, depthClip, scissor bool) *RasterizerState {
	return &RasterizerState{ID: NewResourceID(), CullMode: cull, FillMode: fill, DepthClip: depthClip, Scissor: scissor}
}

type BlendMode int

const (
	BlendDisabled BlendMode = iota
	// src * alpha + dst * (1 - alpha)
	BlendAlpha
	// src + dst
	BlendAdditive
)

type BlendState struct {
	ID   ResourceID
	Mode BlendMode
}

func NewBlendState(mode BlendMode) *BlendState {
	return &BlendState{ID: NewResourceID(), Mode: mode}
}

type DepthStencilState struct {
	ID         ResourceID
	DepthTest  bool
	DepthWrite bool
	Comparison ComparisonFunc
}

func NewDepthStencilState(test, write bool, comparison ComparisonFunc) *DepthStencilState {
	return &DepthStencilState{ID: NewResourceID(), DepthTest: test, DepthWrite: write, Comparison: comparison}
}

type Filter int

const (
	FilterPoint Filter = iota
	FilterBilinear
	FilterTrilinear
	FilterAnisotropic
)

type AddressMode int

const (
	AddressWrap AddressMode = iota
	AddressClamp
)

type Sampler struct {
	ID         ResourceID
	Filter     Filter
	Address    AddressMode
	Comparison ComparisonFunc
}

func NewSampler(filter Filter, address AddressMode, comparison ComparisonFunc) *Sampler {
	return &Sampler{ID: NewResourceID(), Filter: filter, Address: address, Comparison: comparison}
}

// VertexLayout names the vertex structure a shader expects.
type VertexLayout int

const (
	VertexLayoutNone VertexLayout = iota
	VertexLayoutPosition
	VertexLayoutPositionColour
	VertexLayoutPositionTexcoord
	VertexLayoutPositionTexcoordNormalTangent
)

type InputLayout struct {
	ID     ResourceID
	Layout VertexLayout
}

func NewInputLayout(layout VertexLayout) *InputLayout {
	return &InputLayout{ID: NewResourceID(), Layout: layout}
}

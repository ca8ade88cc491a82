package renderer

import (
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

// pipelineStates holds the immutable state objects every pass picks from.
type pipelineStates struct {
	depthEnabled  *rhi.DepthStencilState
	depthDisabled *rhi.DepthStencilState
	depthTestOnly *rhi.DepthStencilState

	cullBackSolid     *rhi.RasterizerState
	cullFrontSolid    *rhi.RasterizerState
	cullNoneSolid     *rhi.RasterizerState
	cullBackWireframe *rhi.RasterizerState

	blendDisabled *rhi.BlendState
	blendAlpha    *rhi.BlendState
	blendAdditive *rhi.BlendState

	samplerPointClamp      *rhi.Sampler
	samplerBilinearClamp   *rhi.Sampler
	samplerBilinearWrap    *rhi.Sampler
	samplerTrilinear       *rhi.Sampler
	samplerAnisotropicWrap *rhi.Sampler
	samplerCompareDepth    *rhi.Sampler

	inputLayouts map[rhi.VertexLayout]*rhi.InputLayout
}

func newPipelineStates() *pipelineStates {
	s := &pipelineStates{
		depthEnabled:  rhi.NewDepthStencilState(true, true, rhi.ComparisonLess),
		depthDisabled: rhi.NewDepthStencilState(false, false, rhi.ComparisonAlways),
		depthTestOnly: rhi.NewDepthStencilState(true, false, rhi.ComparisonLessEqual),

		cullBackSolid:     rhi.NewRasterizerState(rhi.CullBack, rhi.FillSolid, true, false),
		cullFrontSolid:    rhi.NewRasterizerState(rhi.CullFront, rhi.FillSolid, true, false),
		cullNoneSolid:     rhi.NewRasterizerState(rhi.CullNone, rhi.FillSolid, true, false),
		cullBackWireframe: rhi.NewRasterizerState(rhi.CullBack, rhi.FillWireframe, true, false),

		blendDisabled: rhi.NewBlendState(rhi.BlendDisabled),
		blendAlpha:    rhi.NewBlendState(rhi.BlendAlpha),
		blendAdditive: rhi.NewBlendState(rhi.BlendAdditive),

		samplerPointClamp:      rhi.NewSampler(rhi.FilterPoint, rhi.AddressClamp, rhi.ComparisonAlways),
		samplerBilinearClamp:   rhi.NewSampler(rhi.FilterBilinear, rhi.AddressClamp, rhi.ComparisonAlways),
		samplerBilinearWrap:    rhi.NewSampler(rhi.FilterBilinear, rhi.AddressWrap, rhi.ComparisonAlways),
		samplerTrilinear:       rhi.NewSampler(rhi.FilterTrilinear, rhi.AddressWrap, rhi.ComparisonAlways),
		samplerAnisotropicWrap: rhi.NewSampler(rhi.FilterAnisotropic, rhi.AddressWrap, rhi.ComparisonAlways),
		samplerCompareDepth:    rhi.NewSampler(rhi.FilterBilinear, rhi.AddressClamp, rhi.ComparisonLessEqual),

		inputLayouts: make(map[rhi.VertexLayout]*rhi.InputLayout),
	}
	for _, l := range []rhi.VertexLayout{
		rhi.VertexLayoutNone,
		rhi.VertexLayoutPosition,
		rhi.VertexLayoutPositionColour,
		rhi.VertexLayoutPositionTexcoord,
		rhi.VertexLayoutPositionTexcoordNormalTangent,
	} {
		s.inputLayouts[l] = rhi.NewInputLayout(l)
	}
	return s
}

// rasterizer picks the state object for a cull and fill mode pair.
func (s *pipelineStates) rasterizer(cull rhi.CullMode, fill rhi.FillMode) *rhi.RasterizerState {
	if fill == rhi.FillWireframe {
		return s.cullBackWireframe
	}
	switch cull {
	case rhi.CullFront:
		return s.cullFrontSolid
	case rhi.CullNone:
		return s.cullNoneSolid
	}
	return s.cullBackSolid
}

// samplers is the fixed sampler table bound at the start of every frame.
func (s *pipelineStates) samplers() []*rhi.Sampler {
	return []*rhi.Sampler{
		s.samplerCompareDepth,
		s.samplerPointClamp,
		s.samplerBilinearClamp,
		s.samplerBilinearWrap,
		s.samplerTrilinear,
		s.samplerAnisotropicWrap,
	}
}

package renderer

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

/**
 * @brief ShaderProvider hands out shaders by name and compiles them in the
 * background. systems.ShaderSystem is the engine implementation.
 */
type ShaderProvider interface {
	Acquire(name string, stage rhi.ShaderStage, layout rhi.VertexLayout) (*rhi.Shader, error)
	CompileAsync(shader *rhi.Shader)
}

type builtinShader struct {
	name   string
	stage  rhi.ShaderStage
	layout rhi.VertexLayout
}

var builtinShaders = []builtinShader{
	{metadata.BUILTIN_SHADER_QUAD_VS, rhi.StageVertex, rhi.VertexLayoutPositionTexcoord},
	{metadata.BUILTIN_SHADER_GBUFFER_VS, rhi.StageVertex, rhi.VertexLayoutPositionTexcoordNormalTangent},
	{metadata.BUILTIN_SHADER_DEPTH_VS, rhi.StageVertex, rhi.VertexLayoutPositionTexcoordNormalTangent},
	{metadata.BUILTIN_SHADER_TRANSPARENT_VS, rhi.StageVertex, rhi.VertexLayoutPositionTexcoordNormalTangent},
	{metadata.BUILTIN_SHADER_COLOR_VS, rhi.StageVertex, rhi.VertexLayoutPositionColour},
	{metadata.BUILTIN_SHADER_SCREEN_VS, rhi.StageVertex, rhi.VertexLayoutPositionTexcoord},

	{metadata.BUILTIN_SHADER_TEXTURE_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_GBUFFER_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_LIGHT_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_TRANSPARENT_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_SHADOW_MAPPING_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_SSAO_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_BLUR_GAUSSIAN_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_BLUR_BILATERAL_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_TAA_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_DOWNSAMPLE_BOX_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_BLOOM_BRIGHT_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_BLOOM_BLEND_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_MOTION_BLUR_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_DITHERING_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_TONEMAPPING_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_LUMA_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_FXAA_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_SHARPENING_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_CHROMATIC_ABERRATION_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_GAMMA_CORRECTION_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_COLOR_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_FONT_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_DEBUG_NORMAL_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_DEBUG_VELOCITY_PS, rhi.StagePixel, rhi.VertexLayoutNone},
	{metadata.BUILTIN_SHADER_DEBUG_DEPTH_PS, rhi.StagePixel, rhi.VertexLayoutNone},
}

// loadShaders acquires every builtin and queues those nobody compiled yet.
func loadShaders(provider ShaderProvider) (map[string]*rhi.Shader, error) {
	out := make(map[string]*rhi.Shader, len(builtinShaders))
	for _, b := range builtinShaders {
		s, err := provider.Acquire(b.name, b.stage, b.layout)
		if err != nil {
			core.LogError("failed to acquire shader %s: %s", b.name, err.Error())
			return nil, err
		}
		out[b.name] = s
	}
	for _, b := range builtinShaders {
		if s := out[b.name]; s.State() == rhi.ShaderUninitialized {
			provider.CompileAsync(s)
		}
	}
	return out, nil
}

// shader returns nil for names that were never loaded.
func (r *Renderer) shader(name string) *rhi.Shader {
	return r.shaders[name]
}

// ready reports whether every named shader is built.
func (r *Renderer) ready(names ...string) bool {
	for _, n := range names {
		if !r.shaders[n].IsBuilt() {
			return false
		}
	}
	return true
}

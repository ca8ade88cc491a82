package renderer

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

const (
	postIn  = metadata.TARGET_FULL_HDR_LIGHT
	postOut = metadata.TARGET_FULL_HDR_LIGHT2
)

type postEffect struct {
	enabled bool
	run     func() bool
}

/**
 * @brief Applies the enabled effects in a fixed order. Each effect reads
 * the HDR light role and writes HDR light 2, then the roles are swapped so
 * the next effect reads the latest image. An effect whose shaders are not
 * built is skipped without a swap. Gamma correction always runs last and
 * is not followed by a swap, so the final image is in HDR light 2.
 */
func (r *Renderer) passPostLight() {
	opts := r.options()
	effects := []postEffect{
		{opts.IsSet(metadata.RENDER_POSTPROCESS_TAA), r.passTAA},
		{opts.IsSet(metadata.RENDER_POSTPROCESS_BLOOM), r.passBloom},
		{opts.IsSet(metadata.RENDER_POSTPROCESS_MOTION_BLUR), r.passMotionBlur},
		{opts.IsSet(metadata.RENDER_POSTPROCESS_DITHERING), r.effect("Pass_Dithering", metadata.BUILTIN_SHADER_DITHERING_PS)},
		{opts.ToneMapping != metadata.TONEMAPPING_OFF, r.effect("Pass_ToneMapping", metadata.BUILTIN_SHADER_TONEMAPPING_PS)},
		{opts.IsSet(metadata.RENDER_POSTPROCESS_FXAA), r.passFXAA},
		{opts.IsSet(metadata.RENDER_POSTPROCESS_SHARPENING), r.effect("Pass_Sharpening", metadata.BUILTIN_SHADER_SHARPENING_PS)},
		{opts.IsSet(metadata.RENDER_POSTPROCESS_CHROMATIC_ABERRATION), r.effect("Pass_ChromaticAberration", metadata.BUILTIN_SHADER_CHROMATIC_ABERRATION_PS)},
	}

	r.beginPass("Pass_PostLight")
	for _, e := range effects {
		if e.enabled && e.run() {
			r.targets.Swap(postIn, postOut)
		}
	}
	r.passGammaCorrection()
	r.endPass()
}

// effect builds a single full-screen effect from the HDR light role into HDR light 2.
func (r *Renderer) effect(name, ps string) func() bool {
	return func() bool {
		return r.fullscreen(name, ps, []*rhi.Texture{r.targets.Get(postIn)}, r.targets.Get(postOut), nil)
	}
}

// passGammaCorrection falls back to a plain copy when the gamma shader is
// not built, the chain must still leave its result in HDR light 2.
func (r *Renderer) passGammaCorrection() {
	in := []*rhi.Texture{r.targets.Get(postIn)}
	out := r.targets.Get(postOut)
	if r.fullscreen("Pass_GammaCorrection", metadata.BUILTIN_SHADER_GAMMA_CORRECTION_PS, in, out, nil) {
		return
	}
	if !r.fullscreen("Pass_Copy", metadata.BUILTIN_SHADER_TEXTURE_PS, in, out, nil) {
		core.LogWarn("post chain could not write the final image, shaders are not built")
	}
}

/**
 * @brief Temporal anti-aliasing. The resolve lands in TAA current, which
 * is copied to the chain output and then becomes the history of the next
 * frame.
 */
func (r *Renderer) passTAA() bool {
	if !r.ready(metadata.BUILTIN_SHADER_QUAD_VS, metadata.BUILTIN_SHADER_TAA_PS, metadata.BUILTIN_SHADER_TEXTURE_PS) {
		return false
	}
	current := r.targets.Get(metadata.TARGET_FULL_TAA_CURRENT)
	inputs := []*rhi.Texture{
		r.targets.Get(metadata.TARGET_FULL_TAA_HISTORY),
		r.targets.Get(postIn),
		r.targets.Get(metadata.TARGET_GBUFFER_VELOCITY),
		r.targets.Get(metadata.TARGET_GBUFFER_DEPTH),
	}
	r.cmd.Begin("Pass_TAA")
	r.fullscreen("Pass_TAA_Resolve", metadata.BUILTIN_SHADER_TAA_PS, inputs, current, nil)
	r.fullscreen("Pass_TAA_Output", metadata.BUILTIN_SHADER_TEXTURE_PS, []*rhi.Texture{current}, r.targets.Get(postOut), nil)
	r.cmd.End()
	r.targets.Swap(metadata.TARGET_FULL_TAA_CURRENT, metadata.TARGET_FULL_TAA_HISTORY)
	return true
}

/**
 * @brief Downsamples to quarter resolution, keeps the bright part, blurs
 * it and adds it back onto the frame.
 */
func (r *Renderer) passBloom() bool {
	if !r.ready(
		metadata.BUILTIN_SHADER_QUAD_VS,
		metadata.BUILTIN_SHADER_DOWNSAMPLE_BOX_PS,
		metadata.BUILTIN_SHADER_BLOOM_BRIGHT_PS,
		metadata.BUILTIN_SHADER_BLUR_GAUSSIAN_PS,
		metadata.BUILTIN_SHADER_BLOOM_BLEND_PS,
	) {
		return false
	}
	r.cmd.Begin("Pass_Bloom")
	r.fullscreen("Pass_Bloom_Downsample", metadata.BUILTIN_SHADER_DOWNSAMPLE_BOX_PS,
		[]*rhi.Texture{r.targets.Get(postIn)}, r.targets.Get(metadata.TARGET_QUARTER_BLUR1), nil)
	r.fullscreen("Pass_Bloom_Luminance", metadata.BUILTIN_SHADER_BLOOM_BRIGHT_PS,
		[]*rhi.Texture{r.targets.Get(metadata.TARGET_QUARTER_BLUR1)}, r.targets.Get(metadata.TARGET_QUARTER_BLUR2), nil)
	r.passBlurGaussian("Pass_Bloom_Blur", metadata.TARGET_QUARTER_BLUR2, metadata.TARGET_QUARTER_BLUR1, bloomBlurSigma)
	r.fullscreen("Pass_Bloom_Additive", metadata.BUILTIN_SHADER_BLOOM_BLEND_PS,
		[]*rhi.Texture{r.targets.Get(postIn), r.targets.Get(metadata.TARGET_QUARTER_BLUR1)}, r.targets.Get(postOut), nil)
	r.cmd.End()
	return true
}

func (r *Renderer) passMotionBlur() bool {
	inputs := []*rhi.Texture{
		r.targets.Get(postIn),
		r.targets.Get(metadata.TARGET_GBUFFER_VELOCITY),
	}
	return r.fullscreen("Pass_MotionBlur", metadata.BUILTIN_SHADER_MOTION_BLUR_PS, inputs, r.targets.Get(postOut), nil)
}

/**
 * @brief Luma goes into the alpha of the chain output, FXAA then writes
 * back into the input. The internal swap puts the result in the output
 * role so the chain swap after it behaves like any other effect.
 */
func (r *Renderer) passFXAA() bool {
	if !r.ready(metadata.BUILTIN_SHADER_QUAD_VS, metadata.BUILTIN_SHADER_LUMA_PS, metadata.BUILTIN_SHADER_FXAA_PS) {
		return false
	}
	in := r.targets.Get(postIn)
	out := r.targets.Get(postOut)
	r.cmd.Begin("Pass_FXAA")
	r.fullscreen("Pass_FXAA_Luminance", metadata.BUILTIN_SHADER_LUMA_PS, []*rhi.Texture{in}, out, nil)
	r.fullscreen("Pass_FXAA_Resolve", metadata.BUILTIN_SHADER_FXAA_PS, []*rhi.Texture{out}, in, nil)
	r.cmd.End()
	r.targets.Swap(postIn, postOut)
	return true
}

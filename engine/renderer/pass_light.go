package renderer

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
	"github.com/spaghettifunk/lumen/engine/scene"
)

const (
	shadowBlurSigma float32 = 1
	ssaoBlurSigma   float32 = 2
	bloomBlurSigma  float32 = 2
)

/**
 * @brief Screen-space shadows and ambient occlusion at half resolution.
 * Without a shadow casting light the shadows target is cleared to fully
 * lit right away, outside the command list.
 */
func (r *Renderer) passPreLight() {
	r.beginPass("Pass_PreLight")

	normal := r.targets.Get(metadata.TARGET_GBUFFER_NORMAL)
	depth := r.targets.Get(metadata.TARGET_GBUFFER_DEPTH)

	shadowed := false
	if light := r.frame.Buckets.DirectionalLight(); light != nil && light.Light.CastShadows && light.Light.ShadowMap != nil && r.cascadeCount > 0 {
		shadowed = r.passShadowMapping(light) &&
			r.passBlurBilateral("Pass_BlurShadows", metadata.TARGET_HALF_SPARE, metadata.TARGET_HALF_SHADOWS, shadowBlurSigma)
	}
	if !shadowed {
		if err := r.device.ClearTexture(r.targets.Get(metadata.TARGET_HALF_SHADOWS), math.NewVec4One()); err != nil {
			core.LogError("clearing shadows: %s", err.Error())
		}
	}

	if r.options().IsSet(metadata.RENDER_POSTPROCESS_SSAO) {
		spare := r.targets.Get(metadata.TARGET_HALF_SPARE)
		if r.fullscreen("Pass_SSAO", metadata.BUILTIN_SHADER_SSAO_PS, []*rhi.Texture{normal, depth}, spare, nil) {
			r.passBlurBilateral("Pass_BlurSSAO", metadata.TARGET_HALF_SPARE, metadata.TARGET_HALF_SSAO, ssaoBlurSigma)
		}
	}
	r.endPass()
}

// passShadowMapping resolves the cascades into the half resolution spare target.
func (r *Renderer) passShadowMapping(light *scene.Entity) bool {
	data := metadata.ShadowBuffer{
		CascadeCount:   uint32(r.cascadeCount),
		LightDirection: lightDirection(light),
		Bias:           light.Light.Bias,
	}
	if data.Bias <= 0 {
		data.Bias = r.options().ShadowBias
	}
	copy(data.LightViewProjection[:], r.cascades[:r.cascadeCount])
	if !r.update(r.shadowBuffer, data) {
		return false
	}
	inputs := []*rhi.Texture{
		r.targets.Get(metadata.TARGET_GBUFFER_NORMAL),
		r.targets.Get(metadata.TARGET_GBUFFER_DEPTH),
		light.Light.ShadowMap,
	}
	return r.fullscreen("Pass_ShadowMapping", metadata.BUILTIN_SHADER_SHADOW_MAPPING_PS, inputs,
		r.targets.Get(metadata.TARGET_HALF_SPARE), r.shadowBuffer)
}

/**
 * @brief Separable blur from in to out. The horizontal pass writes out,
 * the vertical pass writes back into in, then the two roles are swapped
 * so out names the result. Mismatched targets are rejected before any
 * command is recorded.
 */
func (r *Renderer) passBlur(name, ps string, in, out metadata.TargetID, sigma float32, guides ...*rhi.Texture) bool {
	if err := r.targets.Matching(in, out); err != nil {
		core.LogError("%s: %s", name, err.Error())
		return false
	}
	if !r.ready(metadata.BUILTIN_SHADER_QUAD_VS, ps) {
		return false
	}
	texIn := r.targets.Get(in)
	texOut := r.targets.Get(out)

	r.cmd.Begin(name)
	if r.update(r.blurBuffer, metadata.BlurBuffer{Direction: math.NewVec2(1, 0), Sigma: sigma}) {
		r.fullscreen(name+"_Horizontal", ps, append([]*rhi.Texture{texIn}, guides...), texOut, r.blurBuffer)
	}
	if r.update(r.blurBuffer, metadata.BlurBuffer{Direction: math.NewVec2(0, 1), Sigma: sigma}) {
		r.fullscreen(name+"_Vertical", ps, append([]*rhi.Texture{texOut}, guides...), texIn, r.blurBuffer)
	}
	r.cmd.End()

	r.targets.Swap(in, out)
	return true
}

func (r *Renderer) passBlurGaussian(name string, in, out metadata.TargetID, sigma float32) bool {
	return r.passBlur(name, metadata.BUILTIN_SHADER_BLUR_GAUSSIAN_PS, in, out, sigma)
}

// passBlurBilateral keeps edges by weighting samples with depth and normal.
func (r *Renderer) passBlurBilateral(name string, in, out metadata.TargetID, sigma float32) bool {
	return r.passBlur(name, metadata.BUILTIN_SHADER_BLUR_BILATERAL_PS, in, out, sigma,
		r.targets.Get(metadata.TARGET_GBUFFER_DEPTH),
		r.targets.Get(metadata.TARGET_GBUFFER_NORMAL))
}

func (r *Renderer) lightData() metadata.LightBuffer {
	data := metadata.LightBuffer{
		AmbientIntensity: r.config.AmbientIntensity,
		SSR:              r.options().IsSet(metadata.RENDER_POSTPROCESS_SSR),
	}
	for _, e := range r.frame.Buckets.Get(scene.BucketLight) {
		if data.Count >= metadata.MaxLights {
			core.LogWarn("more than %d lights, the rest are ignored", metadata.MaxLights)
			break
		}
		l := e.Light
		data.Lights[data.Count] = metadata.LightData{
			Type:        l.Type,
			Position:    lightPosition(e),
			Direction:   lightDirection(e),
			Color:       l.Color,
			Intensity:   l.Intensity,
			Range:       l.Range,
			Angle:       l.Angle,
			CastShadows: l.CastShadows && l.ShadowMap != nil,
		}
		data.Count++
	}
	return data
}

/**
 * @brief Full-screen deferred lighting into the HDR light target. The
 * previous frame, read for reflections, is the final image of the last
 * Render call.
 */
func (r *Renderer) passLight() {
	if !r.ready(metadata.BUILTIN_SHADER_QUAD_VS, metadata.BUILTIN_SHADER_LIGHT_PS) {
		core.LogDebug("light pass skipped, shaders are not built")
		return
	}
	if !r.update(r.lightBuffer, r.lightData()) {
		return
	}

	ssao := r.white
	if r.options().IsSet(metadata.RENDER_POSTPROCESS_SSAO) {
		ssao = r.targets.Get(metadata.TARGET_HALF_SSAO)
	}
	environment := r.config.Environment
	if environment == nil {
		environment = r.black
	}
	inputs := []*rhi.Texture{
		r.targets.Get(metadata.TARGET_GBUFFER_ALBEDO),
		r.targets.Get(metadata.TARGET_GBUFFER_NORMAL),
		r.targets.Get(metadata.TARGET_GBUFFER_DEPTH),
		r.targets.Get(metadata.TARGET_GBUFFER_MATERIAL),
		r.targets.Get(metadata.TARGET_HALF_SHADOWS),
		ssao,
		r.targets.Get(metadata.TARGET_FULL_HDR_LIGHT2),
		environment,
		r.config.IBLLUT,
	}

	r.beginPass("Pass_Light")
	r.fullscreen("Pass_Light_Deferred", metadata.BUILTIN_SHADER_LIGHT_PS, inputs,
		r.targets.Get(metadata.TARGET_FULL_HDR_LIGHT), r.lightBuffer)
	r.endPass()
}

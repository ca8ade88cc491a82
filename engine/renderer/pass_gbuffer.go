package renderer

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
	"github.com/spaghettifunk/lumen/engine/scene"
)

func (r *Renderer) gbufferViews() ([]*rhi.TargetView, *rhi.TargetView) {
	return []*rhi.TargetView{
		r.targets.Get(metadata.TARGET_GBUFFER_ALBEDO).RenderTargetView(0),
		r.targets.Get(metadata.TARGET_GBUFFER_NORMAL).RenderTargetView(0),
		r.targets.Get(metadata.TARGET_GBUFFER_MATERIAL).RenderTargetView(0),
		r.targets.Get(metadata.TARGET_GBUFFER_VELOCITY).RenderTargetView(0),
	}, r.targets.Get(metadata.TARGET_GBUFFER_DEPTH).DepthStencilView(0)
}

/**
 * @brief Fills albedo, normal, material, velocity and depth from the
 * opaque bucket. The targets are cleared even when nothing is drawn, so
 * the light pass sees background everywhere.
 */
func (r *Renderer) passGBuffer() {
	colors, depth := r.gbufferViews()
	albedo := r.targets.Get(metadata.TARGET_GBUFFER_ALBEDO)

	r.beginPass("Pass_GBuffer")
	r.cmd.SetRenderTargets(colors, depth)
	r.cmd.SetViewport(albedo.Viewport())
	for _, c := range colors {
		r.cmd.ClearRenderTarget(c, math.Vec4{})
	}
	r.cmd.ClearDepthStencil(depth, rhi.ClearDepth, 1, 0)

	opaque := r.frame.Buckets.Get(scene.BucketOpaque)
	if len(opaque) == 0 {
		r.endPass()
		return
	}
	if !r.ready(metadata.BUILTIN_SHADER_GBUFFER_VS) {
		core.LogDebug("g-buffer pass skipped, %s is not built", metadata.BUILTIN_SHADER_GBUFFER_VS)
		r.endPass()
		return
	}

	vp := r.viewProjection()
	r.tracker.Reset()
	r.setGlobal(albedo.Width, albedo.Height, vp)
	r.cmd.SetDepthStencilState(r.states.depthEnabled)
	r.cmd.SetBlendState(r.states.blendDisabled)
	r.cmd.SetPrimitiveTopology(rhi.PrimitiveTopologyTriangleList)
	r.cmd.SetInputLayout(r.states.inputLayouts[rhi.VertexLayoutPositionTexcoordNormalTangent])
	r.cmd.SetShaderVertex(r.shader(metadata.BUILTIN_SHADER_GBUFFER_VS))

	defaultPS := r.shader(metadata.BUILTIN_SHADER_GBUFFER_PS)
	for _, e := range opaque {
		renderable := e.Renderable
		if !renderable.HasGeometry() || renderable.Material == nil {
			continue
		}
		material := renderable.Material
		ps := material.Shader
		if ps == nil {
			ps = defaultPS
		}
		if !ps.IsBuilt() {
			continue
		}
		if !r.visible(e) {
			continue
		}

		r.bindRasterizer(r.states.rasterizer(material.CullMode.RasterizerCullMode(), rhi.FillSolid))
		r.bindGeometry(renderable)
		r.tracker.Shader.BindIfDifferent(ps.ID, func() {
			r.cmd.SetShaderPixel(ps)
		})

		var bindErr error
		r.tracker.Material.BindIfDifferent(material.ID, func() {
			buffer, err := material.Buffer(r.device)
			if err != nil {
				bindErr = err
				return
			}
			r.cmd.SetTextures(0, material.Textures[:])
			r.cmd.SetConstantBuffer(metadata.CB_SLOT_MATERIAL, rhi.ScopePixelShader, buffer)
		})
		if bindErr != nil {
			r.tracker.Material.Reset()
			continue
		}

		object, err := r.entities.object(e, e.Transform.GetWorld(), vp)
		if err != nil {
			core.LogError("object buffer of %s: %s", e.Name, err.Error())
			continue
		}
		r.cmd.SetConstantBuffer(metadata.CB_SLOT_OBJECT, rhi.ScopeVertexShader, object)
		r.drawRenderable(renderable)
		if r.frame.Metrics != nil {
			r.frame.Metrics.MeshesRendered++
		}
	}
	r.endPass()
}

package renderer

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
	"github.com/spaghettifunk/lumen/engine/scene"
)

/**
 * @brief Renders opaque shadow casters into every cascade of the shadow
 * map of the directional light. Depth only, no pixel shader is bound.
 */
func (r *Renderer) passDepthDirectionalLight() {
	light := r.frame.Buckets.DirectionalLight()
	if light == nil || !light.Light.CastShadows || light.Light.ShadowMap == nil || r.cascadeCount == 0 {
		return
	}
	opaque := r.frame.Buckets.Get(scene.BucketOpaque)
	if len(opaque) == 0 {
		return
	}
	if !r.ready(metadata.BUILTIN_SHADER_DEPTH_VS) {
		core.LogDebug("depth pass skipped, %s is not built", metadata.BUILTIN_SHADER_DEPTH_VS)
		return
	}
	shadowMap := light.Light.ShadowMap

	r.beginPass("Pass_DepthDirectionalLight")
	r.tracker.Reset()
	r.cmd.SetDepthStencilState(r.states.depthEnabled)
	r.cmd.SetBlendState(r.states.blendDisabled)
	r.cmd.SetPrimitiveTopology(rhi.PrimitiveTopologyTriangleList)
	r.cmd.SetInputLayout(r.states.inputLayouts[rhi.VertexLayoutPositionTexcoordNormalTangent])
	r.cmd.SetShaderVertex(r.shader(metadata.BUILTIN_SHADER_DEPTH_VS))
	r.cmd.SetShaderPixel(nil)
	r.cmd.SetViewport(shadowMap.Viewport())
	r.bindRasterizer(r.states.cullBackSolid)

	for i := 0; i < r.cascadeCount; i++ {
		dsv := shadowMap.DepthStencilView(uint32(i))
		r.cmd.Begin(fmt.Sprintf("Cascade_%d", i))
		r.cmd.SetRenderTarget(nil, dsv)
		r.cmd.ClearDepthStencil(dsv, rhi.ClearDepth, 1, 0)

		for _, e := range opaque {
			renderable := e.Renderable
			if !renderable.HasGeometry() || renderable.Material == nil || !renderable.CastShadows {
				continue
			}
			// see-through casters are left to the transparent pass
			if renderable.Material.AlbedoColor.W < 1 {
				continue
			}
			buffer, err := r.entities.cascade(e, i, e.Transform.GetWorld().Mul(r.cascades[i]))
			if err != nil {
				core.LogError("cascade buffer of %s: %s", e.Name, err.Error())
				continue
			}
			r.bindGeometry(renderable)
			r.cmd.SetConstantBuffer(metadata.CB_SLOT_PASS, rhi.ScopeVertexShader, buffer)
			r.drawRenderable(renderable)
		}
		r.cmd.End()
	}
	r.endPass()
}

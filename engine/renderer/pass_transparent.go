package renderer

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
	"github.com/spaghettifunk/lumen/engine/scene"
)

/**
 * @brief TransparencyWriter makes the per-object transparency constants
 * visible to the next draw recorded into cmd.
 */
type TransparencyWriter interface {
	Write(cmd *rhi.CommandList, entity *scene.Entity, data metadata.TransparencyBuffer) error
}

// PerObjectTransparency keeps one constant buffer per transparent entity.
type PerObjectTransparency struct {
	device  rhi.Device
	buffers map[uint64]*rhi.Buffer
}

func NewPerObjectTransparency(device rhi.Device) *PerObjectTransparency {
	return &PerObjectTransparency{device: device, buffers: make(map[uint64]*rhi.Buffer)}
}

func (w *PerObjectTransparency) Write(cmd *rhi.CommandList, entity *scene.Entity, data metadata.TransparencyBuffer) error {
	buffer, ok := w.buffers[entity.ID]
	if !ok {
		b, err := w.device.CreateBuffer(rhi.BufferDesc{
			Name:    fmt.Sprintf("transparency_%d", entity.ID),
			Kind:    rhi.BufferConstant,
			Count:   1,
			Dynamic: true,
		}, data)
		if err != nil {
			return err
		}
		w.buffers[entity.ID] = b
		buffer = b
	} else if err := w.device.UpdateBuffer(buffer, data); err != nil {
		return err
	}
	cmd.SetConstantBuffer(metadata.CB_SLOT_PASS, rhi.ScopeGlobal, buffer)
	return nil
}

// Forget drops the buffer of a removed entity.
func (w *PerObjectTransparency) Forget(id uint64) {
	delete(w.buffers, id)
}

/**
 * @brief Forward shades see-through geometry over the lit frame, tested
 * against the G-buffer depth. Needs the directional light for shading.
 */
func (r *Renderer) passTransparent() {
	light := r.frame.Buckets.DirectionalLight()
	transparent := r.frame.Buckets.Get(scene.BucketTransparent)
	if light == nil || len(transparent) == 0 {
		return
	}
	if !r.ready(metadata.BUILTIN_SHADER_TRANSPARENT_VS, metadata.BUILTIN_SHADER_TRANSPARENT_PS) {
		core.LogDebug("transparent pass skipped, shaders are not built")
		return
	}

	out := r.targets.Get(metadata.TARGET_FULL_HDR_LIGHT)
	depth := r.targets.Get(metadata.TARGET_GBUFFER_DEPTH)
	cam := r.camera()
	view := cam.GetView()
	projection := cam.GetProjection()
	direction := lightDirection(light)

	r.beginPass("Pass_Transparent")
	r.tracker.Reset()
	r.cmd.SetRenderTarget(out.RenderTargetView(0), depth.DepthStencilView(0))
	r.cmd.SetViewport(out.Viewport())
	r.setGlobal(out.Width, out.Height, r.viewProjection())
	r.cmd.SetDepthStencilState(r.states.depthEnabled)
	r.cmd.SetBlendState(r.states.blendAlpha)
	r.cmd.SetPrimitiveTopology(rhi.PrimitiveTopologyTriangleList)
	r.cmd.SetInputLayout(r.states.inputLayouts[rhi.VertexLayoutPositionTexcoordNormalTangent])
	r.cmd.SetShaderVertex(r.shader(metadata.BUILTIN_SHADER_TRANSPARENT_VS))
	r.cmd.SetShaderPixel(r.shader(metadata.BUILTIN_SHADER_TRANSPARENT_PS))

	for _, e := range transparent {
		renderable := e.Renderable
		if !renderable.HasGeometry() || renderable.Material == nil || !r.visible(e) {
			continue
		}
		material := renderable.Material
		data := metadata.TransparencyBuffer{
			World:          e.Transform.GetWorld(),
			View:           view,
			Projection:     projection,
			Color:          material.AlbedoColor,
			CameraPosition: cam.GetPosition(),
			LightDirection: direction,
			Roughness:      material.Roughness,
		}
		if err := r.transparency.Write(r.cmd, e, data); err != nil {
			core.LogError("transparency buffer of %s: %s", e.Name, err.Error())
			continue
		}
		r.bindRasterizer(r.states.rasterizer(material.CullMode.RasterizerCullMode(), rhi.FillSolid))
		r.bindGeometry(renderable)
		r.drawRenderable(renderable)
		if r.frame.Metrics != nil {
			r.frame.Metrics.MeshesRendered++
		}
	}
	r.endPass()
}

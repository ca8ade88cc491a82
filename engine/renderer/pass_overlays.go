package renderer

import (
	gomath "math"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
	"github.com/spaghettifunk/lumen/engine/scene"
)

const (
	gridHalfExtent = 50
	gridSpacing    = 1
	iconSize       = 32
	gizmoIconSize  = 32
	gizmoAxisScale = 0.15
)

var (
	aabbColour = math.NewVec4(0.41, 0.86, 1, 1)
	gridColour = math.NewVec4(0.5, 0.5, 0.5, 0.4)
	rayColour  = math.NewVec4(0, 1, 0, 1)
	axisColour = [3]math.Vec4{
		math.NewVec4(1, 0, 0, 1),
		math.NewVec4(0, 1, 0, 1),
		math.NewVec4(0, 0, 1, 1),
	}
)

/**
 * @brief GPU resources of the debug overlays: the grid, the line lists,
 * the light icons and the metrics text.
 */
type overlayResources struct {
	grid           *rhi.Buffer
	gridCount      uint32
	linesDepth     *rhi.Buffer
	linesNoDepth   *rhi.Buffer
	transformGizmo *rhi.Buffer

	quadVertices *rhi.Buffer
	quadIndices  *rhi.Buffer
	icons        map[metadata.LightType]*rhi.Texture

	textVertices *rhi.Buffer
	textIndices  *rhi.Buffer
}

func newOverlayResources(device rhi.Device) (*overlayResources, error) {
	o := &overlayResources{icons: make(map[metadata.LightType]*rhi.Texture)}

	var err error
	buffer := func(name string, kind rhi.BufferKind, data interface{}) *rhi.Buffer {
		if err != nil {
			return nil
		}
		var b *rhi.Buffer
		b, err = device.CreateBuffer(rhi.BufferDesc{Name: name, Kind: kind, Dynamic: true}, data)
		return b
	}

	grid := gridVertices()
	o.gridCount = uint32(len(grid))
	o.grid = buffer("grid", rhi.BufferVertex, grid)
	o.linesDepth = buffer("lines_depth", rhi.BufferVertex, []math.VertexPositionColour{})
	o.linesNoDepth = buffer("lines_no_depth", rhi.BufferVertex, []math.VertexPositionColour{})
	o.transformGizmo = buffer("gizmo_transform", rhi.BufferVertex, []math.VertexPositionColour{})
	o.quadVertices = buffer("quad_vertices", rhi.BufferVertex, []math.VertexPositionTexcoord{
		{Position: math.NewVec3(-0.5, -0.5, 0), Texcoord: math.NewVec2(0, 0)},
		{Position: math.NewVec3(0.5, -0.5, 0), Texcoord: math.NewVec2(1, 0)},
		{Position: math.NewVec3(0.5, 0.5, 0), Texcoord: math.NewVec2(1, 1)},
		{Position: math.NewVec3(-0.5, 0.5, 0), Texcoord: math.NewVec2(0, 1)},
	})
	o.quadIndices = buffer("quad_indices", rhi.BufferIndex, []uint32{0, 1, 2, 0, 2, 3})
	o.textVertices = buffer("text_vertices", rhi.BufferVertex, []math.VertexPositionTexcoord{})
	o.textIndices = buffer("text_indices", rhi.BufferIndex, []uint32{})
	if err != nil {
		core.LogError("overlay buffers: %s", err.Error())
		return o, err
	}

	for _, t := range []metadata.LightType{metadata.LIGHT_TYPE_DIRECTIONAL, metadata.LIGHT_TYPE_POINT, metadata.LIGHT_TYPE_SPOT} {
		icon, err := device.CreateTexture(rhi.TextureDesc{
			Name:   "icon_" + t.String(),
			Width:  iconSize,
			Height: iconSize,
			Format: rhi.FormatR8G8B8A8Unorm,
			Usage:  rhi.UsageSampled,
			Data:   lightIcon(t),
		})
		if err != nil {
			core.LogError("light icon %s: %s", t, err.Error())
			return o, err
		}
		o.icons[t] = icon
	}
	return o, nil
}

func (o *overlayResources) destroy(device rhi.Device) {
	for t, icon := range o.icons {
		device.DestroyTexture(icon)
		delete(o.icons, t)
	}
}

func gridVertices() []math.VertexPositionColour {
	vertices := make([]math.VertexPositionColour, 0, (2*gridHalfExtent+1)*4)
	for i := -gridHalfExtent; i <= gridHalfExtent; i += gridSpacing {
		f := float32(i)
		e := float32(gridHalfExtent)
		vertices = append(vertices,
			math.VertexPositionColour{Position: math.NewVec3(f, 0, -e), Colour: gridColour},
			math.VertexPositionColour{Position: math.NewVec3(f, 0, e), Colour: gridColour},
			math.VertexPositionColour{Position: math.NewVec3(-e, 0, f), Colour: gridColour},
			math.VertexPositionColour{Position: math.NewVec3(e, 0, f), Colour: gridColour},
		)
	}
	return vertices
}

// lightIcon draws a white alpha mask: a sun with rays, a ring or a cone.
func lightIcon(t metadata.LightType) []float32 {
	data := make([]float32, iconSize*iconSize*4)
	center := float32(iconSize) / 2
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx := float32(x) + 0.5 - center
			dy := float32(y) + 0.5 - center
			r := float32(gomath.Sqrt(float64(dx*dx + dy*dy)))
			var inside bool
			switch t {
			case metadata.LIGHT_TYPE_DIRECTIONAL:
				inside = r < 7 || (r > 10 && r < 15 && (kabs(dx) < 1.5 || kabs(dy) < 1.5 || kabs(kabs(dx)-kabs(dy)) < 1.5))
			case metadata.LIGHT_TYPE_POINT:
				inside = r < 5 || (r > 9 && r < 13)
			case metadata.LIGHT_TYPE_SPOT:
				inside = dy > -12 && dy < 12 && kabs(dx) < (dy+12)*0.5
			}
			if inside {
				i := (y*iconSize + x) * 4
				data[i], data[i+1], data[i+2], data[i+3] = 1, 1, 1, 1
			}
		}
	}
	return data
}

func kabs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

// boxEdges lists the twelve edges of box as corner pairs.
func boxEdges(box math.Extents3D) [][2]math.Vec3 {
	c := box.Corners()
	return [][2]math.Vec3{
		{c[0], c[1]}, {c[1], c[2]}, {c[2], c[3]}, {c[3], c[0]},
		{c[4], c[5]}, {c[5], c[6]}, {c[6], c[7]}, {c[7], c[4]},
		{c[0], c[4]}, {c[1], c[5]}, {c[2], c[6]}, {c[3], c[7]},
	}
}

// queueDebugLines adds the picking ray and the bounding boxes to the line lists.
func (r *Renderer) queueDebugLines() {
	opts := r.options()
	cam := r.camera()
	if opts.IsSet(metadata.RENDER_GIZMO_PICKING_RAY) {
		ray := cam.PickingRay()
		if ray.Direction.LengthSquared() > 0 {
			end := ray.Origin.Add(ray.Direction.MulScalar(cam.Far))
			r.DrawLine(ray.Origin, end, rayColour, rayColour, true)
		}
	}
	if opts.IsSet(metadata.RENDER_GIZMO_AABB) {
		for _, kind := range []scene.BucketKind{scene.BucketOpaque, scene.BucketTransparent} {
			for _, e := range r.frame.Buckets.Get(kind) {
				if box, ok := e.WorldAABB(); ok {
					r.DrawBox(box, aabbColour, true)
				}
			}
		}
	}
}

/**
 * @brief Draws the grid and the queued lines over the final image. Depth
 * tested lines read the G-buffer depth without writing it.
 */
func (r *Renderer) passLines() {
	r.queueDebugLines()
	drawGrid := r.options().IsSet(metadata.RENDER_GIZMO_GRID)
	if !drawGrid && len(r.linesDepthEnabled) == 0 && len(r.linesDepthDisabled) == 0 {
		return
	}
	if !r.ready(metadata.BUILTIN_SHADER_COLOR_VS, metadata.BUILTIN_SHADER_COLOR_PS) {
		core.LogDebug("lines pass skipped, shaders are not built")
		return
	}

	out := r.targets.Get(metadata.TARGET_FULL_HDR_LIGHT2)
	depth := r.targets.Get(metadata.TARGET_GBUFFER_DEPTH)
	vp := r.viewProjection()

	r.beginPass("Pass_Lines")
	r.cmd.SetRenderTarget(out.RenderTargetView(0), depth.DepthStencilView(0))
	r.cmd.SetViewport(out.Viewport())
	r.cmd.SetRasterizerState(r.states.cullNoneSolid)
	r.cmd.SetBlendState(r.states.blendAlpha)
	r.cmd.SetPrimitiveTopology(rhi.PrimitiveTopologyLineList)
	r.cmd.SetInputLayout(r.states.inputLayouts[rhi.VertexLayoutPositionColour])
	r.cmd.SetShaderVertex(r.shader(metadata.BUILTIN_SHADER_COLOR_VS))
	r.cmd.SetShaderPixel(r.shader(metadata.BUILTIN_SHADER_COLOR_PS))

	if drawGrid {
		// the grid follows the camera in whole cells so it looks infinite
		p := r.camera().GetPosition()
		snap := math.NewVec3(float32(gomath.Floor(float64(p.X))), 0, float32(gomath.Floor(float64(p.Z))))
		r.cmd.Begin("Pass_Lines_Grid")
		r.setGlobal(out.Width, out.Height, math.NewMat4Translation(snap).Mul(vp))
		r.cmd.SetDepthStencilState(r.states.depthTestOnly)
		r.cmd.SetVertexBuffer(r.overlays.grid)
		r.draw(r.overlays.gridCount, 0)
		r.cmd.End()
	}

	r.setGlobal(out.Width, out.Height, vp)
	r.drawLines("Pass_Lines_DepthEnabled", r.overlays.linesDepth, r.linesDepthEnabled, r.states.depthTestOnly)
	r.drawLines("Pass_Lines_DepthDisabled", r.overlays.linesNoDepth, r.linesDepthDisabled, r.states.depthDisabled)
	r.endPass()
}

func (r *Renderer) drawLines(name string, buffer *rhi.Buffer, lines []math.VertexPositionColour, state *rhi.DepthStencilState) {
	if len(lines) == 0 || !r.update(buffer, lines) {
		return
	}
	r.cmd.Begin(name)
	r.cmd.SetDepthStencilState(state)
	r.cmd.SetVertexBuffer(buffer)
	r.draw(uint32(len(lines)), 0)
	r.cmd.End()
}

// passGizmos draws light icons and the transform gizmo of the selected entity.
func (r *Renderer) passGizmos() {
	opts := r.options()
	icons := opts.IsSet(metadata.RENDER_GIZMO_LIGHTS) && r.frame.Buckets.Len(scene.BucketLight) > 0
	transform := opts.IsSet(metadata.RENDER_GIZMO_TRANSFORM) && r.frame.Selected != nil && r.frame.Selected.Transform != nil
	if !icons && !transform {
		return
	}

	out := r.targets.Get(metadata.TARGET_FULL_HDR_LIGHT2)
	r.beginPass("Pass_Gizmos")
	r.cmd.SetRenderTarget(out.RenderTargetView(0), nil)
	r.cmd.SetViewport(out.Viewport())
	r.cmd.SetDepthStencilState(r.states.depthDisabled)
	r.cmd.SetRasterizerState(r.states.cullNoneSolid)
	r.cmd.SetBlendState(r.states.blendAlpha)
	if icons {
		r.passGizmoLights(out)
	}
	if transform {
		r.passGizmoTransform(out)
	}
	r.endPass()
}

/**
 * @brief Screen-space icon for each light in front of the camera, scaled
 * down with distance.
 */
func (r *Renderer) passGizmoLights(out *rhi.Texture) {
	if !r.ready(metadata.BUILTIN_SHADER_SCREEN_VS, metadata.BUILTIN_SHADER_TEXTURE_PS) {
		return
	}
	cam := r.camera()
	position := cam.GetPosition()
	forward := cam.Forward()

	r.cmd.Begin("Pass_Gizmos_Lights")
	r.setGlobal(out.Width, out.Height, r.viewProjection())
	r.cmd.SetPrimitiveTopology(rhi.PrimitiveTopologyTriangleList)
	r.cmd.SetInputLayout(r.states.inputLayouts[rhi.VertexLayoutPositionTexcoord])
	r.cmd.SetShaderVertex(r.shader(metadata.BUILTIN_SHADER_SCREEN_VS))
	r.cmd.SetShaderPixel(r.shader(metadata.BUILTIN_SHADER_TEXTURE_PS))
	r.cmd.SetVertexBuffer(r.overlays.quadVertices)
	r.cmd.SetIndexBuffer(r.overlays.quadIndices)

	for _, e := range r.frame.Buckets.Get(scene.BucketLight) {
		lightPos := lightPosition(e)
		toLight := lightPos.Sub(position)
		distance := toLight.Length()
		if distance <= 0 || forward.Dot(toLight.MulScalar(1/distance)) <= 0.5 {
			continue
		}
		screen, ok := cam.WorldToScreenPoint(lightPos)
		if !ok {
			continue
		}
		icon := r.overlays.icons[e.Light.Type]
		if icon == nil {
			continue
		}
		size := gizmoIconSize * math.Clamp(5/distance, 0.1, 5)
		data := metadata.ColorBuffer{
			Transform: math.NewMat4Scale(math.NewVec3(size, size, 1)).Mul(math.NewMat4Translation(math.NewVec3(screen.X, screen.Y, 0))),
			Color:     math.NewVec4One(),
		}
		if !r.update(r.colorBuffer, data) {
			continue
		}
		r.cmd.SetConstantBuffer(metadata.CB_SLOT_PASS, rhi.ScopeGlobal, r.colorBuffer)
		r.cmd.SetTexture(0, icon)
		r.cmd.DrawIndexed(6, 0, 0)
		r.countDraw()
	}
	r.cmd.End()
}

// passGizmoTransform draws the three world axes at the selected entity.
func (r *Renderer) passGizmoTransform(out *rhi.Texture) {
	if !r.ready(metadata.BUILTIN_SHADER_COLOR_VS, metadata.BUILTIN_SHADER_COLOR_PS) {
		return
	}
	origin := r.frame.Selected.Transform.WorldPosition()
	length := origin.Sub(r.camera().GetPosition()).Length() * gizmoAxisScale
	axes := [3]math.Vec3{math.NewVec3(1, 0, 0), math.NewVec3(0, 1, 0), math.NewVec3(0, 0, 1)}
	vertices := make([]math.VertexPositionColour, 0, 6)
	for i, axis := range axes {
		vertices = append(vertices,
			math.VertexPositionColour{Position: origin, Colour: axisColour[i]},
			math.VertexPositionColour{Position: origin.Add(axis.MulScalar(length)), Colour: axisColour[i]},
		)
	}
	if !r.update(r.overlays.transformGizmo, vertices) {
		return
	}

	r.cmd.Begin("Pass_Gizmos_Transform")
	r.setGlobal(out.Width, out.Height, r.viewProjection())
	r.cmd.SetPrimitiveTopology(rhi.PrimitiveTopologyLineList)
	r.cmd.SetInputLayout(r.states.inputLayouts[rhi.VertexLayoutPositionColour])
	r.cmd.SetShaderVertex(r.shader(metadata.BUILTIN_SHADER_COLOR_VS))
	r.cmd.SetShaderPixel(r.shader(metadata.BUILTIN_SHADER_COLOR_PS))
	r.cmd.SetVertexBuffer(r.overlays.transformGizmo)
	for i := range axes {
		r.draw(2, uint32(2*i))
	}
	r.cmd.End()
}

// debugSource picks the texture and shader that visualize a debug buffer.
func (r *Renderer) debugSource(buffer metadata.RendererDebugBuffer) (*rhi.Texture, string) {
	switch buffer {
	case metadata.RENDERER_DEBUG_ALBEDO:
		return r.targets.Get(metadata.TARGET_GBUFFER_ALBEDO), metadata.BUILTIN_SHADER_TEXTURE_PS
	case metadata.RENDERER_DEBUG_NORMAL:
		return r.targets.Get(metadata.TARGET_GBUFFER_NORMAL), metadata.BUILTIN_SHADER_DEBUG_NORMAL_PS
	case metadata.RENDERER_DEBUG_MATERIAL:
		return r.targets.Get(metadata.TARGET_GBUFFER_MATERIAL), metadata.BUILTIN_SHADER_TEXTURE_PS
	case metadata.RENDERER_DEBUG_VELOCITY:
		return r.targets.Get(metadata.TARGET_GBUFFER_VELOCITY), metadata.BUILTIN_SHADER_DEBUG_VELOCITY_PS
	case metadata.RENDERER_DEBUG_DEPTH:
		return r.targets.Get(metadata.TARGET_GBUFFER_DEPTH), metadata.BUILTIN_SHADER_DEBUG_DEPTH_PS
	case metadata.RENDERER_DEBUG_SSAO:
		if !r.options().IsSet(metadata.RENDER_POSTPROCESS_SSAO) {
			return r.white, metadata.BUILTIN_SHADER_TEXTURE_PS
		}
		return r.targets.Get(metadata.TARGET_HALF_SSAO), metadata.BUILTIN_SHADER_TEXTURE_PS
	case metadata.RENDERER_DEBUG_SHADOWS:
		return r.targets.Get(metadata.TARGET_HALF_SHADOWS), metadata.BUILTIN_SHADER_TEXTURE_PS
	}
	return nil, ""
}

// passDebugBuffer replaces the final image with an intermediate buffer.
func (r *Renderer) passDebugBuffer() {
	source, ps := r.debugSource(r.options().DebugBuffer)
	if source == nil {
		return
	}
	r.beginPass("Pass_DebugBuffer")
	r.fullscreen("Pass_DebugBuffer_"+source.Name, ps, []*rhi.Texture{source}, r.targets.Get(metadata.TARGET_FULL_HDR_LIGHT2), nil)
	r.endPass()
}

// passPerformanceMetrics prints the frame metrics in the top left corner.
func (r *Renderer) passPerformanceMetrics() {
	if !r.options().IsSet(metadata.RENDER_GIZMO_PERFORMANCE_METRICS) || r.frame.Metrics == nil {
		return
	}
	if r.config.Font == nil || r.config.FontAtlas == nil {
		return
	}
	if !r.ready(metadata.BUILTIN_SHADER_SCREEN_VS, metadata.BUILTIN_SHADER_FONT_PS) {
		return
	}
	vertices, indices := r.config.Font.Layout(r.frame.Metrics.String(), math.NewVec2(10, 10), 1)
	if len(indices) == 0 {
		return
	}
	if !r.update(r.overlays.textVertices, vertices) || !r.update(r.overlays.textIndices, indices) {
		return
	}
	if !r.update(r.colorBuffer, metadata.ColorBuffer{Transform: math.NewMat4Identity(), Color: math.NewVec4One()}) {
		return
	}

	out := r.targets.Get(metadata.TARGET_FULL_HDR_LIGHT2)
	r.beginPass("Pass_PerformanceMetrics")
	r.cmd.SetRenderTarget(out.RenderTargetView(0), nil)
	r.cmd.SetViewport(out.Viewport())
	r.setGlobal(out.Width, out.Height, r.viewProjection())
	r.cmd.SetDepthStencilState(r.states.depthDisabled)
	r.cmd.SetRasterizerState(r.states.cullNoneSolid)
	r.cmd.SetBlendState(r.states.blendAlpha)
	r.cmd.SetPrimitiveTopology(rhi.PrimitiveTopologyTriangleList)
	r.cmd.SetInputLayout(r.states.inputLayouts[rhi.VertexLayoutPositionTexcoord])
	r.cmd.SetShaderVertex(r.shader(metadata.BUILTIN_SHADER_SCREEN_VS))
	r.cmd.SetShaderPixel(r.shader(metadata.BUILTIN_SHADER_FONT_PS))
	r.cmd.SetConstantBuffer(metadata.CB_SLOT_PASS, rhi.ScopeGlobal, r.colorBuffer)
	r.cmd.SetTexture(0, r.config.FontAtlas)
	r.cmd.SetVertexBuffer(r.overlays.textVertices)
	r.cmd.SetIndexBuffer(r.overlays.textIndices)
	r.cmd.DrawIndexed(uint32(len(indices)), 0, 0)
	r.countDraw()
	r.endPass()
}

package renderer

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/components"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
	"github.com/spaghettifunk/lumen/engine/resources"
	"github.com/spaghettifunk/lumen/engine/scene"
)

const defaultAmbientIntensity float32 = 0.1

type Config struct {
	Width  uint32
	Height uint32
	/** @brief Options used when a frame carries none. */
	Options metadata.Options

	/** @brief Optional sky texture sampled where the G-buffer is empty. */
	Environment *rhi.Texture
	/** @brief Optional split-sum lookup table for image based lighting. */
	IBLLUT *rhi.Texture

	/** @brief Defaults to one constant buffer per transparent object. */
	Transparency TransparencyWriter

	/** @brief Font used by the performance metrics overlay. */
	Font      *resources.FontData
	FontAtlas *rhi.Texture

	AmbientIntensity float32
	CommandCapacity  int
}

/**
 * @brief Everything one Render call reads. The renderer keeps the pointer
 * only for the duration of the call.
 */
type Frame struct {
	Buckets   *scene.Buckets
	Camera    *components.Camera
	Options   metadata.Options
	DeltaTime float32
	Metrics   *core.Metrics
	/** @brief Entity the transform gizmo is drawn around, may be nil. */
	Selected *scene.Entity
}

/**
 * @brief Renderer records the deferred pipeline into a single command list
 * and submits it pass by pass. It is owned by the render goroutine.
 */
type Renderer struct {
	device  rhi.Device
	cmd     *rhi.CommandList
	targets *TargetPool
	states  *pipelineStates
	tracker StateTracker
	shaders map[string]*rhi.Shader
	config  Config

	global       metadata.GlobalBuffer
	globalBuffer *rhi.Buffer
	lightBuffer  *rhi.Buffer
	shadowBuffer *rhi.Buffer
	blurBuffer   *rhi.Buffer
	colorBuffer  *rhi.Buffer

	entities     *entityBuffers
	transparency TransparencyWriter

	white *rhi.Texture
	black *rhi.Texture

	overlays *overlayResources

	// lines queued with DrawLine and DrawBox, flushed every frame
	linesDepthEnabled  []math.VertexPositionColour
	linesDepthDisabled []math.VertexPositionColour

	frame        *Frame
	frameIndex   uint64
	cascades     [metadata.MaxCascades]math.Mat4
	cascadeCount int
}

func New(device rhi.Device, shaders ShaderProvider, config Config) (*Renderer, error) {
	if device == nil || !device.IsInitialized() {
		core.LogError(core.ErrInvalidDevice.Error())
		return nil, core.ErrInvalidDevice
	}
	if shaders == nil {
		err := fmt.Errorf("renderer needs a shader provider: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	if config.AmbientIntensity == 0 {
		config.AmbientIntensity = defaultAmbientIntensity
	}
	if config.Options == (metadata.Options{}) {
		config.Options = metadata.DefaultOptions()
	}

	targets, err := NewTargetPool(device, config.Width, config.Height)
	if err != nil {
		return nil, err
	}
	loaded, err := loadShaders(shaders)
	if err != nil {
		targets.Destroy()
		return nil, err
	}

	r := &Renderer{
		device:   device,
		cmd:      rhi.NewCommandListWithCapacity(device, config.CommandCapacity),
		targets:  targets,
		states:   newPipelineStates(),
		shaders:  loaded,
		config:   config,
		entities: newEntityBuffers(device),
	}
	r.transparency = config.Transparency
	if r.transparency == nil {
		r.transparency = NewPerObjectTransparency(device)
	}

	if err := r.createResources(); err != nil {
		r.Shutdown()
		return nil, err
	}
	core.LogInfo("renderer initialized at %dx%d", config.Width, config.Height)
	return r, nil
}

func (r *Renderer) createResources() error {
	var err error
	constant := func(name string, data interface{}) *rhi.Buffer {
		if err != nil {
			return nil
		}
		var b *rhi.Buffer
		b, err = r.device.CreateBuffer(rhi.BufferDesc{Name: name, Kind: rhi.BufferConstant, Count: 1, Dynamic: true}, data)
		return b
	}
	r.globalBuffer = constant("global", metadata.GlobalBuffer{})
	r.lightBuffer = constant("lights", metadata.LightBuffer{})
	r.shadowBuffer = constant("shadows", metadata.ShadowBuffer{})
	r.blurBuffer = constant("blur", metadata.BlurBuffer{})
	r.colorBuffer = constant("color", metadata.ColorBuffer{})
	if err != nil {
		core.LogError("renderer constant buffers: %s", err.Error())
		return err
	}

	if r.white, err = r.solidTexture("white", math.NewVec4One()); err != nil {
		return err
	}
	if r.black, err = r.solidTexture("black", math.NewVec4(0, 0, 0, 1)); err != nil {
		return err
	}
	r.overlays, err = newOverlayResources(r.device)
	return err
}

func (r *Renderer) solidTexture(name string, color math.Vec4) (*rhi.Texture, error) {
	t, err := r.device.CreateTexture(rhi.TextureDesc{
		Name:   name,
		Width:  1,
		Height: 1,
		Format: rhi.FormatR8G8B8A8Unorm,
		Usage:  rhi.UsageSampled,
		Data:   []float32{color.X, color.Y, color.Z, color.W},
	})
	if err != nil {
		core.LogError("renderer texture %s: %s", name, err.Error())
	}
	return t, err
}

func (r *Renderer) Shutdown() {
	if r.targets != nil {
		r.targets.Destroy()
	}
	r.device.DestroyTexture(r.white)
	r.device.DestroyTexture(r.black)
	if r.overlays != nil {
		r.overlays.destroy(r.device)
	}
	r.cmd.Clear()
	core.LogInfo("renderer shut down")
}

// Resize recreates the render targets. On failure the old ones stay valid.
func (r *Renderer) Resize(width, height uint32) error {
	if err := r.targets.Resize(width, height); err != nil {
		return err
	}
	r.config.Width = width
	r.config.Height = height
	r.entities.reset()
	return nil
}

func (r *Renderer) Width() uint32  { return r.targets.Width() }
func (r *Renderer) Height() uint32 { return r.targets.Height() }

// Targets exposes the render-target pool, for debug views.
func (r *Renderer) Targets() *TargetPool {
	return r.targets
}

// FinalTarget holds the presented image once Render returns.
func (r *Renderer) FinalTarget() *rhi.Texture {
	return r.targets.Get(metadata.TARGET_FULL_HDR_LIGHT2)
}

// CommandList is the list passes record into.
func (r *Renderer) CommandList() *rhi.CommandList {
	return r.cmd
}

// DrawLine queues a world-space line for the next frame.
func (r *Renderer) DrawLine(from, to math.Vec3, colorFrom, colorTo math.Vec4, depth bool) {
	a := math.VertexPositionColour{Position: from, Colour: colorFrom}
	b := math.VertexPositionColour{Position: to, Colour: colorTo}
	if depth {
		r.linesDepthEnabled = append(r.linesDepthEnabled, a, b)
		return
	}
	r.linesDepthDisabled = append(r.linesDepthDisabled, a, b)
}

// DrawBox queues the twelve edges of a box.
func (r *Renderer) DrawBox(box math.Extents3D, color math.Vec4, depth bool) {
	for _, e := range boxEdges(box) {
		r.DrawLine(e[0], e[1], color, color, depth)
	}
}

/**
 * @brief Records and submits one frame. Pass_Main runs the passes in
 * pipeline order; the final image ends up in FinalTarget.
 */
func (r *Renderer) Render(frame *Frame) error {
	if frame == nil || frame.Camera == nil {
		err := fmt.Errorf("render without a camera: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return err
	}
	if !r.device.IsInitialized() {
		return core.ErrNotInitialized
	}
	if frame.Options == (metadata.Options{}) {
		frame.Options = r.config.Options
	}
	if frame.Metrics != nil {
		frame.Metrics.BeginFrame()
	}
	r.frame = frame
	defer func() { r.frame = nil }()

	r.updateGlobal()
	r.prepareShadows()

	r.cmd.Begin("Pass_Main")
	r.cmd.SetSamplers(0, r.states.samplers())
	r.passDepthDirectionalLight()
	r.passGBuffer()
	r.passPreLight()
	r.passLight()
	r.passTransparent()
	r.passPostLight()
	r.passLines()
	r.passGizmos()
	r.passDebugBuffer()
	r.passPerformanceMetrics()
	r.cmd.End()

	err := r.cmd.Submit()
	r.cmd.Clear()

	r.linesDepthEnabled = r.linesDepthEnabled[:0]
	r.linesDepthDisabled = r.linesDepthDisabled[:0]
	r.entities.endFrame(r.frameIndex)
	r.frameIndex++
	return err
}

func (r *Renderer) camera() *components.Camera {
	return r.frame.Camera
}

func (r *Renderer) options() metadata.Options {
	return r.frame.Options
}

func (r *Renderer) viewProjection() math.Mat4 {
	return r.frame.Camera.GetViewProjection()
}

func (r *Renderer) updateGlobal() {
	cam := r.camera()
	opts := r.options()
	view := cam.GetView()
	projection := cam.GetProjection()
	vp := view.Mul(projection)
	r.global = metadata.GlobalBuffer{
		View:                  view,
		Projection:            projection,
		ViewProjection:        vp,
		ViewProjectionInverse: vp.Inverse(),
		CameraPosition:        cam.GetPosition(),
		CameraNear:            cam.Near,
		CameraFar:             cam.Far,
		FrameIndex:            r.frameIndex,
		DeltaTime:             r.frame.DeltaTime,
		ToneMapping:           opts.ToneMapping,
		Exposure:              opts.Exposure,
		Gamma:                 opts.Gamma,
		BloomIntensity:        opts.BloomIntensity,
		SharpenStrength:       opts.SharpenStrength,
		MotionBlurStrength:    opts.MotionBlurStrength,
		ChromaticAberration:   opts.ChromaticAberration,
	}
}

// setGlobal refreshes the resolution dependent fields and binds the buffer.
func (r *Renderer) setGlobal(width, height uint32, viewProjection math.Mat4) {
	r.global.Resolution = math.NewVec2(float32(width), float32(height))
	r.global.ViewProjection = viewProjection
	r.global.ViewProjectionOrtho = math.NewMat4Orthographic(0, float32(width), float32(height), 0, -1, 1)
	if err := r.device.UpdateBuffer(r.globalBuffer, r.global); err != nil {
		core.LogError("global buffer: %s", err.Error())
		return
	}
	r.cmd.SetConstantBuffer(metadata.CB_SLOT_GLOBAL, rhi.ScopeGlobal, r.globalBuffer)
}

// prepareShadows creates the shadow map lazily and fits the cascades.
func (r *Renderer) prepareShadows() {
	r.cascadeCount = 0
	e := r.frame.Buckets.DirectionalLight()
	if e == nil || !e.Light.CastShadows {
		return
	}
	light := e.Light
	if light.ShadowMap == nil {
		if err := light.CreateShadowMap(r.device); err != nil {
			return
		}
	}
	if light.ShadowMap == nil {
		return
	}
	direction := lightDirection(e)
	count := min(light.CascadeCount(), int(light.ShadowMap.ArraySize))
	for i := 0; i < count; i++ {
		r.cascades[i] = light.CascadeViewProjection(i, direction, r.camera())
	}
	r.cascadeCount = count
}

func lightDirection(e *scene.Entity) math.Vec3 {
	if e.Transform == nil {
		return math.NewVec3(0, -1, 0)
	}
	return e.Transform.Forward()
}

func lightPosition(e *scene.Entity) math.Vec3 {
	if e.Transform == nil {
		return math.Vec3{}
	}
	return e.Transform.WorldPosition()
}

// beginPass opens a top level pass scope and counts it.
func (r *Renderer) beginPass(name string) {
	r.cmd.Begin(name)
	if r.frame != nil && r.frame.Metrics != nil {
		r.frame.Metrics.PassesExecuted++
	}
}

// endPass closes the scope and hands the recorded commands to the device.
func (r *Renderer) endPass() {
	r.cmd.End()
	if err := r.cmd.Submit(); err != nil {
		core.LogError("pass submit: %s", err.Error())
	}
}

func (r *Renderer) countDraw() {
	if r.frame != nil && r.frame.Metrics != nil {
		r.frame.Metrics.DrawCalls++
	}
}

func (r *Renderer) draw(vertexCount, vertexOffset uint32) {
	r.cmd.Draw(vertexCount, vertexOffset)
	r.countDraw()
}

func (r *Renderer) drawRenderable(renderable *scene.Renderable) {
	r.cmd.DrawIndexed(renderable.Indices(), renderable.IndexOffset, renderable.VertexOffset)
	r.countDraw()
}

// bindGeometry binds the vertex and index buffers unless already bound.
func (r *Renderer) bindGeometry(renderable *scene.Renderable) {
	r.tracker.Geometry.BindIfDifferent(renderable.GeometryID(), func() {
		r.cmd.SetVertexBuffer(renderable.Model.VertexBuffer)
		r.cmd.SetIndexBuffer(renderable.Model.IndexBuffer)
	})
}

func (r *Renderer) bindRasterizer(state *rhi.RasterizerState) {
	r.tracker.Rasterizer.BindIfDifferent(state.ID, func() {
		r.cmd.SetRasterizerState(state)
	})
}

// visible tests the world bounds of e against the camera frustum.
func (r *Renderer) visible(e *scene.Entity) bool {
	box, ok := e.WorldAABB()
	if !ok {
		return false
	}
	return r.camera().IsInViewFrustum(box)
}

/**
 * @brief Draws a full-screen triangle with ps into out. Inputs are bound
 * from slot 0 and pass, when set, at the pass constant buffer slot. It
 * returns false without recording anything when a shader is not built.
 */
func (r *Renderer) fullscreen(name, ps string, inputs []*rhi.Texture, out *rhi.Texture, pass *rhi.Buffer) bool {
	if !r.ready(metadata.BUILTIN_SHADER_QUAD_VS, ps) || out == nil {
		return false
	}
	r.cmd.Begin(name)
	r.cmd.SetDepthStencilState(r.states.depthDisabled)
	r.cmd.SetRasterizerState(r.states.cullBackSolid)
	r.cmd.SetBlendState(r.states.blendDisabled)
	r.cmd.SetPrimitiveTopology(rhi.PrimitiveTopologyTriangleList)
	r.cmd.SetInputLayout(r.states.inputLayouts[rhi.VertexLayoutPositionTexcoord])
	r.cmd.SetShaderVertex(r.shader(metadata.BUILTIN_SHADER_QUAD_VS))
	r.cmd.SetShaderPixel(r.shader(ps))
	r.cmd.SetRenderTarget(out.RenderTargetView(0), nil)
	r.cmd.SetViewport(out.Viewport())
	r.setGlobal(out.Width, out.Height, r.viewProjection())
	r.cmd.SetTextures(0, inputs)
	if pass != nil {
		r.cmd.SetConstantBuffer(metadata.CB_SLOT_PASS, rhi.ScopePixelShader, pass)
	}
	r.draw(3, 0)
	r.cmd.End()
	return true
}

// update writes data into b, logging failures.
func (r *Renderer) update(b *rhi.Buffer, data interface{}) bool {
	if err := r.device.UpdateBuffer(b, data); err != nil {
		core.LogError("buffer %s: %s", b.Name, err.Error())
		return false
	}
	return true
}

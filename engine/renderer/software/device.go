package software

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

type DeviceOptions struct {
	// Trace records every executed command. Tests turn it on.
	Trace bool
}

// TraceEntry describes one executed command.
type TraceEntry struct {
	Kind         rhi.CommandKind
	Scope        string
	VertexShader string
	PixelShader  string
	Targets      []string
	DepthTarget  string
	Textures     []string
	Skipped      bool
}

type Stats struct {
	Commands     [rhi.CmdCount]uint32
	Draws        uint32
	SkippedDraws uint32
	Clears       uint32
	// render target and depth target writes keyed by texture name
	TargetWrites map[string]uint32
	Fragments    uint64
}

type pipelineState struct {
	renderTargets     [rhi.MaxRenderTargetSlots]*rhi.TargetView
	renderTargetCount uint32
	depthStencil      *rhi.TargetView
	textures          [rhi.MaxTextureSlots]*rhi.Texture
	samplers          [rhi.MaxSamplerSlots]*rhi.Sampler
	constants         [rhi.MaxConstantBufferSlots]interface{}
	depthState        *rhi.DepthStencilState
	rasterizer        *rhi.RasterizerState
	blend             *rhi.BlendState
	layout            *rhi.InputLayout
	topology          rhi.PrimitiveTopology
	vertexBuffer      *rhi.Buffer
	indexBuffer       *rhi.Buffer
	vertexShader      *rhi.Shader
	pixelShader       *rhi.Shader
	viewport          rhi.Viewport
	scissor           math.Rectangle
}

/**
 * @brief Device executes command lists on the CPU. Pipeline state persists
 * across Execute calls the way it does on a GPU context.
 */
type Device struct {
	initialized bool
	compiler    *Compiler
	state       pipelineState
	scopes      []string

	traceEnabled bool
	trace        []TraceEntry
	stats        Stats
}

func NewDevice(options DeviceOptions) *Device {
	d := &Device{
		initialized:  true,
		traceEnabled: options.Trace,
		stats:        Stats{TargetWrites: map[string]uint32{}},
	}
	d.compiler = NewCompiler()
	return d
}

func (d *Device) IsInitialized() bool {
	return d != nil && d.initialized
}

// Shutdown leaves the device unusable; submissions fail afterwards.
func (d *Device) Shutdown() {
	d.initialized = false
	d.state = pipelineState{}
}

func (d *Device) Compiler() rhi.ShaderCompiler {
	return d.compiler
}

func (d *Device) CreateTexture(desc rhi.TextureDesc) (*rhi.Texture, error) {
	if !d.IsInitialized() {
		return nil, core.ErrInvalidDevice
	}
	if err := rhi.ValidateResolution(desc.Width, desc.Height); err != nil {
		core.LogError("failed to create texture %s: %s", desc.Name, err.Error())
		return nil, err
	}
	if desc.Format == rhi.FormatUnknown {
		err := fmt.Errorf("texture %s has no format: %w", desc.Name, core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	t := rhi.NewTexture(desc)
	t.Internal = newSurface(t, desc.Data)
	return t, nil
}

func (d *Device) DestroyTexture(texture *rhi.Texture) {
	if texture == nil {
		return
	}
	texture.Internal = nil
}

func (d *Device) CreateBuffer(desc rhi.BufferDesc, data interface{}) (*rhi.Buffer, error) {
	if !d.IsInitialized() {
		return nil, core.ErrInvalidDevice
	}
	b := rhi.NewBuffer(desc)
	if data != nil {
		b.SetData(data)
	}
	return b, nil
}

func (d *Device) UpdateBuffer(buffer *rhi.Buffer, data interface{}) error {
	if buffer == nil {
		return fmt.Errorf("update of a nil buffer: %w", core.ErrInvalidHandle)
	}
	buffer.SetData(data)
	return nil
}

func (d *Device) ClearTexture(texture *rhi.Texture, color math.Vec4) error {
	s, err := surfaceOf(texture)
	if err != nil {
		return err
	}
	for slice := 0; slice < int(texture.ArraySize); slice++ {
		s.fill(slice, color)
	}
	d.stats.Clears++
	d.stats.TargetWrites[texture.Name]++
	return nil
}

// ReadPixels returns four floats per texel of the requested slice.
func (d *Device) ReadPixels(texture *rhi.Texture, slice uint32) ([]float32, error) {
	s, err := surfaceOf(texture)
	if err != nil {
		return nil, err
	}
	if slice >= texture.ArraySize {
		return nil, fmt.Errorf("slice %d of %s out of range: %w", slice, texture.Name, core.ErrInvalidHandle)
	}
	out := make([]float32, 0, s.width*s.height*4)
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			v := s.load(int(slice), x, y)
			out = append(out, v.X, v.Y, v.Z, v.W)
		}
	}
	return out, nil
}

func (d *Device) CreateSwapChain(desc rhi.SwapChainDesc) (rhi.SwapChain, error) {
	return NewSwapChain(d, desc)
}

func surfaceOf(texture *rhi.Texture) (*surface, error) {
	if texture == nil {
		return nil, fmt.Errorf("nil texture: %w", core.ErrInvalidHandle)
	}
	s, ok := texture.Internal.(*surface)
	if !ok || s == nil {
		return nil, fmt.Errorf("texture %s has no storage: %w", texture.Name, core.ErrInvalidHandle)
	}
	return s, nil
}

// Trace returns the commands executed since the last ResetTrace.
func (d *Device) Trace() []TraceEntry {
	return d.trace
}

func (d *Device) Stats() Stats {
	return d.stats
}

func (d *Device) ResetTrace() {
	d.trace = d.trace[:0]
	d.stats = Stats{TargetWrites: map[string]uint32{}}
}

func (d *Device) scopePath() string {
	return strings.Join(d.scopes, "/")
}

// Execute runs commands in order.
func (d *Device) Execute(commands []rhi.Command) error {
	if !d.IsInitialized() {
		return core.ErrInvalidDevice
	}
	for i := range commands {
		cmd := &commands[i]
		d.stats.Commands[cmd.Kind]++
		skipped := false

		switch cmd.Kind {
		case rhi.CmdBegin:
			d.scopes = append(d.scopes, cmd.PassName)
		case rhi.CmdEnd:
			if len(d.scopes) > 0 {
				d.scopes = d.scopes[:len(d.scopes)-1]
			}
		case rhi.CmdSetViewport:
			d.state.viewport = cmd.Viewport
		case rhi.CmdSetScissorRectangle:
			d.state.scissor = cmd.Scissor
		case rhi.CmdSetPrimitiveTopology:
			d.state.topology = cmd.PrimitiveTopology
		case rhi.CmdSetInputLayout:
			d.state.layout = cmd.InputLayout
		case rhi.CmdSetDepthStencilState:
			d.state.depthState = cmd.DepthStencilState
		case rhi.CmdSetRasterizerState:
			d.state.rasterizer = cmd.RasterizerState
		case rhi.CmdSetBlendState:
			d.state.blend = cmd.BlendState
		case rhi.CmdSetVertexBuffer:
			d.state.vertexBuffer = cmd.VertexBuffer
		case rhi.CmdSetIndexBuffer:
			d.state.indexBuffer = cmd.IndexBuffer
		case rhi.CmdSetVertexShader:
			d.state.vertexShader = cmd.VertexShader
		case rhi.CmdSetPixelShader:
			d.state.pixelShader = cmd.PixelShader
		case rhi.CmdSetConstantBuffers:
			for j := uint32(0); j < cmd.ConstantBufferCount; j++ {
				d.state.constants[cmd.ConstantBufferStartSlot+j] = cmd.ConstantBufferData[j]
			}
		case rhi.CmdSetSamplers:
			for j := uint32(0); j < cmd.SamplerCount; j++ {
				d.state.samplers[cmd.SamplerStartSlot+j] = cmd.Samplers[j]
			}
		case rhi.CmdSetTextures:
			for j := uint32(0); j < cmd.TextureCount; j++ {
				d.state.textures[cmd.TextureStartSlot+j] = cmd.Textures[j]
			}
		case rhi.CmdSetRenderTargets:
			d.state.renderTargets = cmd.RenderTargets
			d.state.renderTargetCount = cmd.RenderTargetCount
			d.state.depthStencil = cmd.DepthStencil
		case rhi.CmdClearRenderTarget:
			d.clearTarget(cmd.ClearTarget, cmd.ClearColor)
		case rhi.CmdClearDepthStencil:
			if cmd.ClearFlags&rhi.ClearDepth != 0 {
				d.clearDepth(cmd.ClearTarget, cmd.ClearDepth)
			}
		case rhi.CmdDraw, rhi.CmdDrawIndexed:
			skipped = !d.draw(cmd)
		default:
			core.LogWarn("software device: unhandled command %s", cmd.Kind)
		}

		if d.traceEnabled {
			d.record(cmd, skipped)
		}
	}
	return nil
}

func (d *Device) record(cmd *rhi.Command, skipped bool) {
	entry := TraceEntry{Kind: cmd.Kind, Scope: d.scopePath(), Skipped: skipped}
	if cmd.Kind.IsDraw() {
		if d.state.vertexShader != nil {
			entry.VertexShader = d.state.vertexShader.Name
		}
		if d.state.pixelShader != nil {
			entry.PixelShader = d.state.pixelShader.Name
		}
		for j := uint32(0); j < d.state.renderTargetCount; j++ {
			if v := d.state.renderTargets[j]; v != nil {
				entry.Targets = append(entry.Targets, v.Texture.Name)
			}
		}
		if d.state.depthStencil != nil {
			entry.DepthTarget = d.state.depthStencil.Texture.Name
		}
		for _, t := range d.state.textures {
			if t != nil {
				entry.Textures = append(entry.Textures, t.Name)
			}
		}
	}
	if cmd.Kind == rhi.CmdClearRenderTarget || cmd.Kind == rhi.CmdClearDepthStencil {
		if cmd.ClearTarget != nil {
			entry.Targets = []string{cmd.ClearTarget.Texture.Name}
		}
	}
	d.trace = append(d.trace, entry)
}

func (d *Device) clearTarget(view *rhi.TargetView, color math.Vec4) {
	if view == nil {
		return
	}
	s, err := surfaceOf(view.Texture)
	if err != nil {
		core.LogError("clear render target: %s", err.Error())
		return
	}
	s.fill(int(view.Slice), color)
	d.stats.Clears++
	d.stats.TargetWrites[view.Texture.Name]++
}

func (d *Device) clearDepth(view *rhi.TargetView, depth float32) {
	if view == nil {
		return
	}
	s, err := surfaceOf(view.Texture)
	if err != nil {
		core.LogError("clear depth stencil: %s", err.Error())
		return
	}
	s.fillDepth(int(view.Slice), depth)
	d.stats.Clears++
	d.stats.TargetWrites[view.Texture.Name]++
}

// draw returns false when the draw was dropped.
func (d *Device) draw(cmd *rhi.Command) bool {
	vs := d.state.vertexShader
	ps := d.state.pixelShader
	if vs == nil {
		core.LogError("draw in %s without a vertex shader", d.scopePath())
		d.stats.SkippedDraws++
		return false
	}
	if !vs.IsBuilt() {
		core.LogError("draw in %s with vertex shader %s in state %s", d.scopePath(), vs.Name, vs.State())
		d.stats.SkippedDraws++
		return false
	}
	if ps != nil && !ps.IsBuilt() {
		core.LogError("draw in %s with pixel shader %s in state %s", d.scopePath(), ps.Name, ps.State())
		d.stats.SkippedDraws++
		return false
	}
	if ps == nil && d.state.depthStencil == nil {
		core.LogError("draw in %s without a pixel shader or a depth target", d.scopePath())
		d.stats.SkippedDraws++
		return false
	}

	program, ok := vs.Internal().(*compiledShader)
	if !ok || program.vertex == nil {
		core.LogError("vertex shader %s has no program", vs.Name)
		d.stats.SkippedDraws++
		return false
	}
	var kernel Kernel
	if ps != nil {
		compiled, ok := ps.Internal().(*compiledShader)
		if !ok || compiled.kernel == nil {
			core.LogError("pixel shader %s has no kernel", ps.Name)
			d.stats.SkippedDraws++
			return false
		}
		kernel = compiled.kernel
	}

	ctx := d.newDrawContext()
	if ctx.width <= 0 || ctx.height <= 0 {
		core.LogWarn("draw in %s with an empty viewport", d.scopePath())
		d.stats.SkippedDraws++
		return false
	}

	if program.fullscreen {
		d.fullscreen(ctx, kernel)
	} else {
		d.rasterize(ctx, cmd, program.vertex, kernel)
	}

	d.stats.Draws++
	for j := uint32(0); j < d.state.renderTargetCount; j++ {
		if v := d.state.renderTargets[j]; v != nil {
			d.stats.TargetWrites[v.Texture.Name]++
		}
	}
	if d.state.depthStencil != nil && d.state.depthState != nil && d.state.depthState.DepthWrite {
		d.stats.TargetWrites[d.state.depthStencil.Texture.Name]++
	}
	return true
}

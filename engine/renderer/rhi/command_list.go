package rhi

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

// DefaultCommandCapacity avoids growth on typical frames.
const DefaultCommandCapacity = 2500

/**
 * @brief Records state changes and draws in order. Submit hands every command
 * recorded since the previous Submit to the device; Clear rewinds the storage
 * while keeping its capacity. A CommandList is owned by a single goroutine.
 */
type CommandList struct {
	device   Device
	commands []Command
	count    int
	// commands before this index already reached the device
	submitted int
	scopes    []string

	// textures bound as shader inputs, used for aliasing checks
	boundTextures [MaxTextureSlots]*Texture
}

func NewCommandList(device Device) *CommandList {
	return NewCommandListWithCapacity(device, DefaultCommandCapacity)
}

func NewCommandListWithCapacity(device Device, capacity int) *CommandList {
	if capacity <= 0 {
		capacity = DefaultCommandCapacity
	}
	return &CommandList{
		device:   device,
		commands: make([]Command, capacity),
		scopes:   make([]string, 0, 16),
	}
}

func (cl *CommandList) next(kind CommandKind) *Command {
	if cl.count >= len(cl.commands) {
		grown := make([]Command, len(cl.commands)*2)
		copy(grown, cl.commands)
		core.LogWarn("command list capacity of %d exceeded, growing to %d", len(cl.commands), len(grown))
		cl.commands = grown
	}
	cmd := &cl.commands[cl.count]
	cmd.Reset()
	cmd.Kind = kind
	cl.count++
	return cmd
}

// Begin opens a named scope. Scopes only label commands.
func (cl *CommandList) Begin(passName string) {
	cmd := cl.next(CmdBegin)
	cmd.PassName = passName
	cl.scopes = append(cl.scopes, passName)
}

// End closes the most recent scope. It returns false when none is open.
func (cl *CommandList) End() bool {
	if len(cl.scopes) == 0 {
		core.LogError("command list End() called without a matching Begin()")
		return false
	}
	name := cl.scopes[len(cl.scopes)-1]
	cl.scopes = cl.scopes[:len(cl.scopes)-1]
	cmd := cl.next(CmdEnd)
	cmd.PassName = name
	return true
}

// ScopePath joins the open scopes with '/'.
func (cl *CommandList) ScopePath() string {
	return strings.Join(cl.scopes, "/")
}

func (cl *CommandList) Draw(vertexCount, vertexOffset uint32) {
	cmd := cl.next(CmdDraw)
	cmd.VertexCount = vertexCount
	cmd.VertexOffset = vertexOffset
}

func (cl *CommandList) DrawIndexed(indexCount, indexOffset, vertexOffset uint32) {
	cmd := cl.next(CmdDrawIndexed)
	cmd.IndexCount = indexCount
	cmd.IndexOffset = indexOffset
	cmd.VertexOffset = vertexOffset
}

func (cl *CommandList) SetViewport(viewport Viewport) {
	cl.next(CmdSetViewport).Viewport = viewport
}

func (cl *CommandList) SetScissorRectangle(rectangle math.Rectangle) {
	cl.next(CmdSetScissorRectangle).Scissor = rectangle
}

func (cl *CommandList) SetPrimitiveTopology(topology PrimitiveTopology) {
	cl.next(CmdSetPrimitiveTopology).PrimitiveTopology = topology
}

func (cl *CommandList) SetInputLayout(layout *InputLayout) {
	cl.next(CmdSetInputLayout).InputLayout = layout
}

func (cl *CommandList) SetDepthStencilState(state *DepthStencilState) {
	cl.next(CmdSetDepthStencilState).DepthStencilState = state
}

func (cl *CommandList) SetRasterizerState(state *RasterizerState) {
	cl.next(CmdSetRasterizerState).RasterizerState = state
}

func (cl *CommandList) SetBlendState(state *BlendState) {
	cl.next(CmdSetBlendState).BlendState = state
}

func (cl *CommandList) SetVertexBuffer(buffer *Buffer) {
	cl.next(CmdSetVertexBuffer).VertexBuffer = buffer
}

func (cl *CommandList) SetIndexBuffer(buffer *Buffer) {
	cl.next(CmdSetIndexBuffer).IndexBuffer = buffer
}

func (cl *CommandList) SetShaderVertex(shader *Shader) {
	cl.next(CmdSetVertexShader).VertexShader = shader
}

func (cl *CommandList) SetShaderPixel(shader *Shader) {
	cl.next(CmdSetPixelShader).PixelShader = shader
}

func (cl *CommandList) SetConstantBuffer(slot uint32, scope ShaderScope, buffer *Buffer) {
	cl.SetConstantBuffers(slot, scope, []*Buffer{buffer})
}

// SetConstantBuffers binds buffers from startSlot and captures their current contents.
func (cl *CommandList) SetConstantBuffers(startSlot uint32, scope ShaderScope, buffers []*Buffer) {
	if int(startSlot)+len(buffers) > MaxConstantBufferSlots {
		core.LogError("constant buffer slots %d..%d exceed the limit of %d", startSlot, int(startSlot)+len(buffers), MaxConstantBufferSlots)
		return
	}
	cmd := cl.next(CmdSetConstantBuffers)
	cmd.ConstantBufferStartSlot = startSlot
	cmd.ConstantBufferCount = uint32(len(buffers))
	cmd.ConstantBufferScope = scope
	for i, b := range buffers {
		cmd.ConstantBuffers[i] = b
		if b != nil {
			cmd.ConstantBufferData[i] = b.Data()
		}
	}
}

func (cl *CommandList) SetSampler(slot uint32, sampler *Sampler) {
	cl.SetSamplers(slot, []*Sampler{sampler})
}

func (cl *CommandList) SetSamplers(startSlot uint32, samplers []*Sampler) {
	if int(startSlot)+len(samplers) > MaxSamplerSlots {
		core.LogError("sampler slots %d..%d exceed the limit of %d", startSlot, int(startSlot)+len(samplers), MaxSamplerSlots)
		return
	}
	cmd := cl.next(CmdSetSamplers)
	cmd.SamplerStartSlot = startSlot
	cmd.SamplerCount = uint32(len(samplers))
	copy(cmd.Samplers[:], samplers)
}

func (cl *CommandList) SetTexture(slot uint32, texture *Texture) {
	cl.SetTextures(slot, []*Texture{texture})
}

func (cl *CommandList) SetTextures(startSlot uint32, textures []*Texture) {
	if int(startSlot)+len(textures) > MaxTextureSlots {
		core.LogError("texture slots %d..%d exceed the limit of %d", startSlot, int(startSlot)+len(textures), MaxTextureSlots)
		return
	}
	cmd := cl.next(CmdSetTextures)
	cmd.TextureStartSlot = startSlot
	cmd.TextureCount = uint32(len(textures))
	copy(cmd.Textures[:], textures)
	copy(cl.boundTextures[startSlot:], textures)
}

// ClearTextures unbinds every texture slot.
func (cl *CommandList) ClearTextures() {
	cmd := cl.next(CmdSetTextures)
	cmd.TextureStartSlot = 0
	cmd.TextureCount = MaxTextureSlots
	cl.boundTextures = [MaxTextureSlots]*Texture{}
}

// IsBoundAsInput reports whether texture sits in any texture slot.
func (cl *CommandList) IsBoundAsInput(texture *Texture) bool {
	if texture == nil {
		return false
	}
	for _, t := range cl.boundTextures {
		if t == texture {
			return true
		}
	}
	return false
}

func (cl *CommandList) SetRenderTarget(target *TargetView, depthStencil *TargetView) {
	if target == nil {
		cl.SetRenderTargets(nil, depthStencil)
		return
	}
	cl.SetRenderTargets([]*TargetView{target}, depthStencil)
}

/**
 * @brief Binds color targets and an optional depth target. Any of them still
 * bound as a shader input gets every texture slot unbound first.
 */
func (cl *CommandList) SetRenderTargets(targets []*TargetView, depthStencil *TargetView) {
	if len(targets) > MaxRenderTargetSlots {
		core.LogError("%d render targets exceed the limit of %d", len(targets), MaxRenderTargetSlots)
		return
	}

	aliased := depthStencil != nil && cl.IsBoundAsInput(depthStencil.Texture)
	for _, t := range targets {
		if t != nil && cl.IsBoundAsInput(t.Texture) {
			aliased = true
			break
		}
	}
	if aliased {
		cl.ClearTextures()
	}

	cmd := cl.next(CmdSetRenderTargets)
	cmd.RenderTargetCount = uint32(len(targets))
	copy(cmd.RenderTargets[:], targets)
	cmd.DepthStencil = depthStencil
}

func (cl *CommandList) ClearRenderTarget(target *TargetView, color math.Vec4) {
	if target == nil {
		return
	}
	cmd := cl.next(CmdClearRenderTarget)
	cmd.ClearTarget = target
	cmd.ClearColor = color
}

func (cl *CommandList) ClearDepthStencil(target *TargetView, flags ClearFlags, depth float32, stencil uint8) {
	if target == nil {
		return
	}
	cmd := cl.next(CmdClearDepthStencil)
	cmd.ClearTarget = target
	cmd.ClearFlags = flags
	cmd.ClearDepth = depth
	cmd.ClearStencil = stencil
}

// Submit executes the commands recorded since the last Submit, in order.
func (cl *CommandList) Submit() error {
	if cl.device == nil || !cl.device.IsInitialized() {
		return core.ErrNotInitialized
	}
	if cl.submitted >= cl.count {
		return nil
	}
	pending := cl.commands[cl.submitted:cl.count]
	cl.submitted = cl.count
	if err := cl.device.Execute(pending); err != nil {
		err = fmt.Errorf("command list submit: %w", err)
		core.LogError(err.Error())
		return err
	}
	return nil
}

// Clear rewinds the list. Capacity is kept, open scopes are dropped.
func (cl *CommandList) Clear() {
	for i := 0; i < cl.count; i++ {
		cl.commands[i].Reset()
	}
	cl.count = 0
	cl.submitted = 0
	cl.scopes = cl.scopes[:0]
}

// Commands returns the commands recorded since the last Clear.
func (cl *CommandList) Commands() []Command {
	return cl.commands[:cl.count]
}

// Pending is the number of recorded but unsubmitted commands.
func (cl *CommandList) Pending() int {
	return cl.count - cl.submitted
}

func (cl *CommandList) Len() int {
	return cl.count
}

func (cl *CommandList) Capacity() int {
	return len(cl.commands)
}

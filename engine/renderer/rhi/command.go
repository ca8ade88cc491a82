package rhi

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/math"
)

type CommandKind uint8

const (
	CmdUnknown CommandKind = iota
	CmdBegin
	CmdEnd
	CmdDraw
	CmdDrawIndexed
	CmdSetViewport
	CmdSetScissorRectangle
	CmdSetPrimitiveTopology
	CmdSetInputLayout
	CmdSetDepthStencilState
	CmdSetRasterizerState
	CmdSetBlendState
	CmdSetVertexBuffer
	CmdSetIndexBuffer
	CmdSetVertexShader
	CmdSetPixelShader
	CmdSetConstantBuffers
	CmdSetSamplers
	CmdSetTextures
	CmdSetRenderTargets
	CmdClearRenderTarget
	CmdClearDepthStencil
	CmdCount
)

var commandKindNames = [CmdCount]string{
	CmdUnknown:              "Unknown",
	CmdBegin:                "Begin",
	CmdEnd:                  "End",
	CmdDraw:                 "Draw",
	CmdDrawIndexed:          "DrawIndexed",
	CmdSetViewport:          "SetViewport",
	CmdSetScissorRectangle:  "SetScissorRectangle",
	CmdSetPrimitiveTopology: "SetPrimitiveTopology",
	CmdSetInputLayout:       "SetInputLayout",
	CmdSetDepthStencilState: "SetDepthStencilState",
	CmdSetRasterizerState:   "SetRasterizerState",
	CmdSetBlendState:        "SetBlendState",
	CmdSetVertexBuffer:      "SetVertexBuffer",
	CmdSetIndexBuffer:       "SetIndexBuffer",
	CmdSetVertexShader:      "SetVertexShader",
	CmdSetPixelShader:       "SetPixelShader",
	CmdSetConstantBuffers:   "SetConstantBuffers",
	CmdSetSamplers:          "SetSamplers",
	CmdSetTextures:          "SetTextures",
	CmdSetRenderTargets:     "SetRenderTargets",
	CmdClearRenderTarget:    "ClearRenderTarget",
	CmdClearDepthStencil:    "ClearDepthStencil",
}

func (k CommandKind) String() string {
	if k >= CmdCount {
		return fmt.Sprintf("CommandKind(%d)", uint8(k))
	}
	return commandKindNames[k]
}

// IsDraw reports whether the command rasterizes.
func (k CommandKind) IsDraw() bool {
	return k == CmdDraw || k == CmdDrawIndexed
}

/**
 * @brief One recorded GPU operation. The slot arrays are fixed size so a
 * command never allocates when recorded or reset.
 */
type Command struct {
	Kind     CommandKind
	PassName string

	// Render targets
	RenderTargets     [MaxRenderTargetSlots]*TargetView
	RenderTargetCount uint32
	DepthStencil      *TargetView

	// Clears
	ClearTarget  *TargetView
	ClearColor   math.Vec4
	ClearFlags   ClearFlags
	ClearDepth   float32
	ClearStencil uint8

	// Textures
	Textures         [MaxTextureSlots]*Texture
	TextureStartSlot uint32
	TextureCount     uint32

	// Samplers
	Samplers         [MaxSamplerSlots]*Sampler
	SamplerStartSlot uint32
	SamplerCount     uint32

	// Constant buffers with the contents they had when bound
	ConstantBuffers         [MaxConstantBufferSlots]*Buffer
	ConstantBufferData      [MaxConstantBufferSlots]interface{}
	ConstantBufferStartSlot uint32
	ConstantBufferCount     uint32
	ConstantBufferScope     ShaderScope

	// Pipeline state
	DepthStencilState *DepthStencilState
	RasterizerState   *RasterizerState
	BlendState        *BlendState
	InputLayout       *InputLayout
	PrimitiveTopology PrimitiveTopology
	VertexBuffer      *Buffer
	IndexBuffer       *Buffer
	VertexShader      *Shader
	PixelShader       *Shader
	Viewport          Viewport
	Scissor           math.Rectangle

	// Draw
	VertexCount  uint32
	VertexOffset uint32
	IndexCount   uint32
	IndexOffset  uint32
}

// Reset returns every slot to its default.
func (c *Command) Reset() {
	*c = Command{}
}

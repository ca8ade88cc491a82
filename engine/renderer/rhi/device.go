package rhi

import "github.com/spaghettifunk/lumen/engine/math"

// Device creates resources and executes recorded commands in order.
type Device interface {
	IsInitialized() bool
	CreateTexture(desc TextureDesc) (*Texture, error)
	DestroyTexture(texture *Texture)
	CreateBuffer(desc BufferDesc, data interface{}) (*Buffer, error)
	UpdateBuffer(buffer *Buffer, data interface{}) error
	// ClearTexture clears every slice immediately, outside any command list.
	ClearTexture(texture *Texture, color math.Vec4) error
	Execute(commands []Command) error
	Compiler() ShaderCompiler
	CreateSwapChain(desc SwapChainDesc) (SwapChain, error)
}

// Readback is implemented by devices that can copy texels to the CPU.
type Readback interface {
	ReadPixels(texture *Texture, slice uint32) ([]float32, error)
}

type SwapChainDesc struct {
	WindowHandle uintptr
	Width        uint32
	Height       uint32
	Format       Format
	BufferCount  uint32
}

type SwapChain interface {
	IsInitialized() bool
	Width() uint32
	Height() uint32
	Resize(width, height uint32) error
	// Present copies source into the back buffer and flips.
	Present(source *Texture) error
}

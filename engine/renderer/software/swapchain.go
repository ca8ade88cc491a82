package software

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

/**
 * @brief SwapChain keeps a ring of CPU back buffers. Present resamples the
 * source texture into the current buffer and advances the ring.
 */
type SwapChain struct {
	initialized bool
	width       uint32
	height      uint32
	format      rhi.Format
	buffers     [][]math.Vec4
	current     int
	presented   uint64
}

// NewSwapChain logs and returns an uninitialized swap chain on failure.
func NewSwapChain(device *Device, desc rhi.SwapChainDesc) (*SwapChain, error) {
	sc := &SwapChain{}
	if desc.WindowHandle == 0 {
		err := fmt.Errorf("swap chain: invalid window handle: %w", core.ErrInvalidHandle)
		core.LogError(err.Error())
		return sc, err
	}
	if !device.IsInitialized() {
		err := fmt.Errorf("swap chain: %w", core.ErrInvalidDevice)
		core.LogError(err.Error())
		return sc, err
	}
	if err := rhi.ValidateResolution(desc.Width, desc.Height); err != nil {
		err = fmt.Errorf("swap chain: %w", err)
		core.LogError(err.Error())
		return sc, err
	}

	count := desc.BufferCount
	if count == 0 {
		count = 2
	}
	sc.format = desc.Format
	sc.buffers = make([][]math.Vec4, count)
	sc.allocate(desc.Width, desc.Height)
	sc.initialized = true
	return sc, nil
}

func (sc *SwapChain) allocate(width, height uint32) {
	for i := range sc.buffers {
		sc.buffers[i] = make([]math.Vec4, width*height)
	}
	sc.width = width
	sc.height = height
	sc.current = 0
}

func (sc *SwapChain) IsInitialized() bool {
	return sc != nil && sc.initialized
}

func (sc *SwapChain) Width() uint32 {
	return sc.width
}

func (sc *SwapChain) Height() uint32 {
	return sc.height
}

func (sc *SwapChain) Resize(width, height uint32) error {
	if !sc.IsInitialized() {
		return core.ErrNotInitialized
	}
	if err := rhi.ValidateResolution(width, height); err != nil {
		err = fmt.Errorf("swap chain resize: %w", err)
		core.LogError(err.Error())
		return err
	}
	if width == sc.width && height == sc.height {
		return nil
	}
	sc.allocate(width, height)
	return nil
}

func (sc *SwapChain) Present(source *rhi.Texture) error {
	if !sc.IsInitialized() {
		return core.ErrNotInitialized
	}
	s, err := surfaceOf(source)
	if err != nil {
		err = fmt.Errorf("present: %w", err)
		core.LogError(err.Error())
		return err
	}
	buffer := sc.buffers[sc.current]
	for y := 0; y < int(sc.height); y++ {
		sy := y * s.height / int(sc.height)
		for x := 0; x < int(sc.width); x++ {
			sx := x * s.width / int(sc.width)
			c := s.load(0, sx, sy)
			buffer[y*int(sc.width)+x] = math.Vec4{
				X: math.Saturate(c.X),
				Y: math.Saturate(c.Y),
				Z: math.Saturate(c.Z),
				W: 1,
			}
		}
	}
	sc.current = (sc.current + 1) % len(sc.buffers)
	sc.presented++
	return nil
}

// FrontBuffer is the most recently presented image.
func (sc *SwapChain) FrontBuffer() []math.Vec4 {
	if !sc.IsInitialized() {
		return nil
	}
	i := (sc.current - 1 + len(sc.buffers)) % len(sc.buffers)
	return sc.buffers[i]
}

// Presented counts successful presents.
func (sc *SwapChain) Presented() uint64 {
	return sc.presented
}

package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	"golang.org/x/image/tiff"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

// Present copies the final image into the back buffer of swapchain.
func (r *Renderer) Present(swapchain rhi.SwapChain) error {
	if swapchain == nil || !swapchain.IsInitialized() {
		return core.ErrNotInitialized
	}
	return swapchain.Present(r.FinalTarget())
}

/**
 * @brief Reads texture back from the device and returns it as a 16 bit
 * per channel image. Values are clamped to [0, 1]; depth-only surfaces
 * are written as grey.
 */
func (r *Renderer) Snapshot(texture *rhi.Texture) (*image.NRGBA64, error) {
	readback, ok := r.device.(rhi.Readback)
	if !ok {
		return nil, fmt.Errorf("device cannot read textures back: %w", errors.ErrUnsupported)
	}
	if texture == nil {
		return nil, core.ErrInvalidHandle
	}
	texels, err := readback.ReadPixels(texture, 0)
	if err != nil {
		return nil, err
	}
	depthOnly := texture.IsDepthStencil() && !texture.IsRenderTarget()
	img := image.NewNRGBA64(image.Rect(0, 0, int(texture.Width), int(texture.Height)))
	for i := 0; i+3 < len(texels); i += 4 {
		p := i / 4
		x := p % int(texture.Width)
		y := p / int(texture.Width)
		c := math.NewVec4(texels[i], texels[i+1], texels[i+2], texels[i+3])
		if depthOnly {
			c = math.NewVec4(c.X, c.X, c.X, 1)
		}
		img.SetNRGBA64(x, y, color.NRGBA64{R: unorm16(c.X), G: unorm16(c.Y), B: unorm16(c.Z), A: unorm16(c.W)})
	}
	return img, nil
}

// DumpTarget writes texture to a TIFF file.
func (r *Renderer) DumpTarget(texture *rhi.Texture, path string) error {
	img, err := r.Snapshot(texture)
	if err != nil {
		core.LogError("dump of %s: %s", path, err.Error())
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	core.LogInfo("dumped %s (%dx%d) to %s", texture.Name, texture.Width, texture.Height, path)
	return nil
}

// DumpNamedTarget dumps the texture currently holding a role, by role name.
func (r *Renderer) DumpNamedTarget(name, path string) error {
	texture, ok := r.targets.Named()[name]
	if !ok {
		return fmt.Errorf("no render target named %q: %w", name, core.ErrInvalidHandle)
	}
	return r.DumpTarget(texture, path)
}

func unorm16(f float32) uint16 {
	return uint16(math.Saturate(f)*65535 + 0.5)
}

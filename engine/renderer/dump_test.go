package renderer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
	"github.com/spaghettifunk/lumen/engine/renderer/software"
)

func TestDumpNamedTargetWritesTIFF(t *testing.T) {
	r, device := newTestRenderer(t)
	light := r.Targets().Get(metadata.TARGET_FULL_HDR_LIGHT)
	require.NoError(t, device.ClearTexture(light, math.NewVec4(0.25, 0.5, 2, 1)))

	path := filepath.Join(t.TempDir(), "light.tiff")
	require.NoError(t, r.DumpNamedTarget(metadata.TARGET_FULL_HDR_LIGHT.String(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := tiff.Decode(f)
	require.NoError(t, err)
	assert.EqualValues(t, testWidth, img.Bounds().Dx())
	assert.EqualValues(t, testHeight, img.Bounds().Dy())

	red, green, blue, alpha := img.At(3, 2).RGBA()
	assert.EqualValues(t, 16384, red)
	assert.EqualValues(t, 32768, green)
	assert.EqualValues(t, 65535, blue, "HDR values clamp")
	assert.EqualValues(t, 65535, alpha)
}

func TestDumpRejectsUnknownTargets(t *testing.T) {
	r, _ := newTestRenderer(t)
	err := r.DumpNamedTarget("lens_dirt", filepath.Join(t.TempDir(), "x.tiff"))
	assert.ErrorIs(t, err, core.ErrInvalidHandle)

	_, err = r.Snapshot(nil)
	assert.ErrorIs(t, err, core.ErrInvalidHandle)
}

func TestPresentCopiesFinalTarget(t *testing.T) {
	r, device := newTestRenderer(t)
	assert.ErrorIs(t, r.Present(nil), core.ErrNotInitialized)

	swapchain, err := software.NewSwapChain(device, rhi.SwapChainDesc{WindowHandle: 1, Width: 8, Height: 4})
	require.NoError(t, err)
	require.NoError(t, device.ClearTexture(r.FinalTarget(), math.NewVec4(0.1, 0.2, 0.3, 1)))
	require.NoError(t, r.Present(swapchain))

	front := swapchain.FrontBuffer()
	require.Len(t, front, 32)
	assert.True(t, front[0].Compare(math.NewVec4(0.1, 0.2, 0.3, 1), 1e-6))
}

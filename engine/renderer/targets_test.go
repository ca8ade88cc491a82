package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
	"github.com/spaghettifunk/lumen/engine/renderer/software"
)

func newTestPool(t *testing.T) *TargetPool {
	t.Helper()
	pool, err := NewTargetPool(software.NewDevice(software.DeviceOptions{}), testWidth, testHeight)
	require.NoError(t, err)
	t.Cleanup(pool.Destroy)
	return pool
}

func TestTargetPoolSizes(t *testing.T) {
	pool := newTestPool(t)

	tests := []struct {
		id     metadata.TargetID
		width  uint32
		height uint32
	}{
		{metadata.TARGET_GBUFFER_ALBEDO, testWidth, testHeight},
		{metadata.TARGET_FULL_HDR_LIGHT2, testWidth, testHeight},
		{metadata.TARGET_HALF_SSAO, testWidth / 2, testHeight / 2},
		{metadata.TARGET_QUARTER_BLUR1, testWidth / 4, testHeight / 4},
	}
	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			texture := pool.Get(tt.id)
			require.NotNil(t, texture)
			assert.Equal(t, tt.width, texture.Width)
			assert.Equal(t, tt.height, texture.Height)
		})
	}
	assert.True(t, pool.Get(metadata.TARGET_GBUFFER_DEPTH).IsDepthStencil())
	assert.Nil(t, pool.Get(metadata.TARGET_COUNT))
	assert.Nil(t, pool.Get(-1))
}

func TestTargetPoolDoubleSwapRestoresRoles(t *testing.T) {
	pool := newTestPool(t)
	a := pool.Get(metadata.TARGET_FULL_HDR_LIGHT)
	b := pool.Get(metadata.TARGET_FULL_HDR_LIGHT2)

	pool.Swap(metadata.TARGET_FULL_HDR_LIGHT, metadata.TARGET_FULL_HDR_LIGHT2)
	assert.Same(t, b, pool.Get(metadata.TARGET_FULL_HDR_LIGHT))
	assert.Same(t, a, pool.Get(metadata.TARGET_FULL_HDR_LIGHT2))

	pool.Swap(metadata.TARGET_FULL_HDR_LIGHT, metadata.TARGET_FULL_HDR_LIGHT2)
	assert.Same(t, a, pool.Get(metadata.TARGET_FULL_HDR_LIGHT))
	assert.Same(t, b, pool.Get(metadata.TARGET_FULL_HDR_LIGHT2))
}

func TestTargetPoolSwapIgnoresUnknownRoles(t *testing.T) {
	pool := newTestPool(t)
	before := pool.Named()
	pool.Swap(metadata.TARGET_FULL_HDR_LIGHT, metadata.TARGET_COUNT)
	assert.Equal(t, before, pool.Named())
}

func TestTargetPoolResizeRejection(t *testing.T) {
	pool := newTestPool(t)
	before := pool.Named()

	for _, size := range [][2]uint32{{0, 10}, {10, 0}, {rhi.MaxResolution + 1, 10}} {
		err := pool.Resize(size[0], size[1])
		assert.ErrorIs(t, err, core.ErrInvalidResolution)
		assert.Equal(t, testWidth, pool.Width())
		assert.Equal(t, testHeight, pool.Height())
		for name, texture := range pool.Named() {
			assert.Same(t, before[name], texture, "%s changed on a rejected resize", name)
		}
	}
}

func TestTargetPoolResize(t *testing.T) {
	pool := newTestPool(t)
	old := pool.Get(metadata.TARGET_HALF_SHADOWS)

	require.NoError(t, pool.Resize(128, 64))
	assert.EqualValues(t, 128, pool.Width())
	shadows := pool.Get(metadata.TARGET_HALF_SHADOWS)
	assert.NotSame(t, old, shadows)
	assert.EqualValues(t, 64, shadows.Width)
	assert.EqualValues(t, 32, shadows.Height)
	assert.Nil(t, old.Internal, "replaced targets are destroyed")

	// same size is a no-op
	require.NoError(t, pool.Resize(128, 64))
	assert.Same(t, shadows, pool.Get(metadata.TARGET_HALF_SHADOWS))
}

func TestTargetPoolMatching(t *testing.T) {
	pool := newTestPool(t)
	assert.NoError(t, pool.Matching(metadata.TARGET_FULL_HDR_LIGHT, metadata.TARGET_FULL_HDR_LIGHT2))
	assert.NoError(t, pool.Matching(metadata.TARGET_QUARTER_BLUR1, metadata.TARGET_QUARTER_BLUR2))
	assert.ErrorIs(t, pool.Matching(metadata.TARGET_HALF_SPARE, metadata.TARGET_FULL_HDR_LIGHT), core.ErrTargetMismatch)
	// same size, different format
	assert.ErrorIs(t, pool.Matching(metadata.TARGET_GBUFFER_ALBEDO, metadata.TARGET_GBUFFER_NORMAL), core.ErrTargetMismatch)
	assert.ErrorIs(t, pool.Matching(metadata.TARGET_FULL_HDR_LIGHT, metadata.TARGET_COUNT), core.ErrTargetMismatch)
}

func TestNewTargetPoolRejectsUninitializedDevice(t *testing.T) {
	device := software.NewDevice(software.DeviceOptions{})
	device.Shutdown()
	_, err := NewTargetPool(device, testWidth, testHeight)
	assert.ErrorIs(t, err, core.ErrInvalidDevice)
}

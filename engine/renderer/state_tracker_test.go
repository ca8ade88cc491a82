package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindCacheDropsRedundantBinds(t *testing.T) {
	var cache BindCache[uint64]
	var bound []uint64

	for _, id := range []uint64{1, 1, 2, 2, 1} {
		cache.BindIfDifferent(id, func() { bound = append(bound, id) })
	}
	assert.Equal(t, []uint64{1, 2, 1}, bound)
	assert.Equal(t, 3, cache.Binds())
}

func TestBindCacheZeroAlwaysBinds(t *testing.T) {
	var cache BindCache[uint32]
	calls := 0
	assert.True(t, cache.BindIfDifferent(0, func() { calls++ }))
	assert.True(t, cache.BindIfDifferent(0, func() { calls++ }))
	assert.Equal(t, 2, calls)
}

func TestBindCacheReset(t *testing.T) {
	var cache BindCache[uint64]
	calls := 0
	cache.BindIfDifferent(7, func() { calls++ })
	assert.False(t, cache.BindIfDifferent(7, func() { calls++ }))

	cache.Reset()
	assert.True(t, cache.BindIfDifferent(7, func() { calls++ }))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, cache.Binds())
}

func TestStateTrackerResetForgetsEveryKind(t *testing.T) {
	var tracker StateTracker
	tracker.Geometry.BindIfDifferent(1, func() {})
	tracker.Material.BindIfDifferent(1, func() {})
	tracker.Shader.BindIfDifferent(1, func() {})
	tracker.Rasterizer.BindIfDifferent(1, func() {})

	tracker.Reset()
	assert.True(t, tracker.Geometry.BindIfDifferent(1, func() {}))
	assert.True(t, tracker.Material.BindIfDifferent(1, func() {}))
	assert.True(t, tracker.Shader.BindIfDifferent(1, func() {}))
	assert.True(t, tracker.Rasterizer.BindIfDifferent(1, func() {}))
}

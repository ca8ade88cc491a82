package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRenderFlags(t *testing.T) {
	flags, err := ParseRenderFlags([]string{"Bloom", " fxaa ", "gizmo_grid"})
	require.NoError(t, err)
	assert.Equal(t, RENDER_POSTPROCESS_BLOOM|RENDER_POSTPROCESS_FXAA|RENDER_GIZMO_GRID, flags)

	_, err = ParseRenderFlags([]string{"bloom", "lens_flare"})
	assert.ErrorContains(t, err, "lens_flare")

	flags, err = ParseRenderFlags(nil)
	require.NoError(t, err)
	assert.Zero(t, flags)
}

func TestRenderFlagNamesAreInBitOrder(t *testing.T) {
	names := RenderFlagNames()
	require.Len(t, names, 15)
	assert.Equal(t, "ssao", names[0])
	assert.Equal(t, "performance_metrics", names[len(names)-1])

	all, err := ParseRenderFlags(names)
	require.NoError(t, err)
	assert.Equal(t, RENDER_GIZMO_PERFORMANCE_METRICS<<1-1, all)
}

func TestParseToneMappingAndDebugBuffer(t *testing.T) {
	tm, err := ParseToneMapping("Reinhard")
	require.NoError(t, err)
	assert.Equal(t, TONEMAPPING_REINHARD, tm)
	tm, err = ParseToneMapping("")
	require.NoError(t, err)
	assert.Equal(t, TONEMAPPING_OFF, tm)
	_, err = ParseToneMapping("filmic")
	assert.Error(t, err)

	db, err := ParseDebugBuffer("shadows")
	require.NoError(t, err)
	assert.Equal(t, RENDERER_DEBUG_SHADOWS, db)
	_, err = ParseDebugBuffer("stencil")
	assert.Error(t, err)
}

func TestOptionsWithWithoutDoNotMutate(t *testing.T) {
	base := DefaultOptions()
	require.True(t, base.IsSet(RENDER_POSTPROCESS_BLOOM))

	off := base.Without(RENDER_POSTPROCESS_BLOOM)
	assert.False(t, off.IsSet(RENDER_POSTPROCESS_BLOOM))
	assert.True(t, base.IsSet(RENDER_POSTPROCESS_BLOOM))

	on := off.With(RENDER_POSTPROCESS_SSR)
	assert.True(t, on.IsSet(RENDER_POSTPROCESS_SSR))
	assert.False(t, off.IsSet(RENDER_POSTPROCESS_SSR))
	assert.Equal(t, base.Gamma, on.Gamma)
}

package renderer

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/software"
)

var hdrInput = math.NewVec4(0.5, 1, 2, 1)

// renderPost runs a frame without the light pass so the HDR light target
// still holds hdrInput when the post chain starts.
func renderPost(t *testing.T, options metadata.Options, unbuilt ...string) (*Renderer, *software.Device) {
	t.Helper()
	r, device := newTestRenderer(t, append(unbuilt, metadata.BUILTIN_SHADER_LIGHT_PS)...)
	require.NoError(t, device.ClearTexture(r.Targets().Get(metadata.TARGET_FULL_HDR_LIGHT), hdrInput))
	require.NoError(t, r.Render(&Frame{Buckets: classify(), Camera: testCamera(), Options: options}))
	return r, device
}

func finalPixel(t *testing.T, r *Renderer, device *software.Device) math.Vec4 {
	t.Helper()
	texels, err := device.ReadPixels(r.FinalTarget(), 0)
	require.NoError(t, err)
	center := (int(testHeight/2)*int(testWidth) + int(testWidth/2)) * 4
	return math.NewVec4(texels[center], texels[center+1], texels[center+2], texels[center+3])
}

func gammaEncode(x float32) float32 {
	return float32(gomath.Pow(float64(x), 1/2.2))
}

func TestPostToneMappingThenGamma(t *testing.T) {
	r, device := renderPost(t, metadata.Options{ToneMapping: metadata.TONEMAPPING_ACES, Exposure: 1, Gamma: 2.2})

	assert.Equal(t, []string{"Pass_ToneMapping", "Pass_GammaCorrection"}, scopes(device.Trace(), "Pass_Main/Pass_PostLight"))
	got := finalPixel(t, r, device)
	assert.InDelta(t, gammaEncode(software.ToneMap(metadata.TONEMAPPING_ACES, hdrInput.X)), got.X, 1e-4)
	assert.InDelta(t, gammaEncode(software.ToneMap(metadata.TONEMAPPING_ACES, hdrInput.Y)), got.Y, 1e-4)
	assert.InDelta(t, gammaEncode(software.ToneMap(metadata.TONEMAPPING_ACES, hdrInput.Z)), got.Z, 1e-4)
	assert.InDelta(t, 1, got.W, 1e-6)
}

func TestPostUnbuiltEffectIsIdentity(t *testing.T) {
	r, device := renderPost(t,
		metadata.Options{ToneMapping: metadata.TONEMAPPING_ACES, Exposure: 1, Gamma: 2.2},
		metadata.BUILTIN_SHADER_TONEMAPPING_PS)

	assert.Equal(t, []string{"Pass_GammaCorrection"}, scopes(device.Trace(), "Pass_Main/Pass_PostLight"))
	got := finalPixel(t, r, device)
	assert.InDelta(t, gammaEncode(hdrInput.X), got.X, 1e-4)
	assert.InDelta(t, gammaEncode(hdrInput.Z), got.Z, 1e-4)
}

func TestPostGammaFallsBackToCopy(t *testing.T) {
	r, device := renderPost(t, metadata.Options{Gamma: 2.2}, metadata.BUILTIN_SHADER_GAMMA_CORRECTION_PS)

	assert.Equal(t, []string{"Pass_Copy"}, scopes(device.Trace(), "Pass_Main/Pass_PostLight"))
	assert.True(t, finalPixel(t, r, device).Compare(hdrInput, 1e-5))
}

func TestPostEffectOrder(t *testing.T) {
	options := metadata.Options{
		Flags: metadata.RENDER_POSTPROCESS_TAA |
			metadata.RENDER_POSTPROCESS_BLOOM |
			metadata.RENDER_POSTPROCESS_MOTION_BLUR |
			metadata.RENDER_POSTPROCESS_DITHERING |
			metadata.RENDER_POSTPROCESS_FXAA |
			metadata.RENDER_POSTPROCESS_SHARPENING |
			metadata.RENDER_POSTPROCESS_CHROMATIC_ABERRATION,
		ToneMapping: metadata.TONEMAPPING_REINHARD,
		Exposure:    1,
		Gamma:       2.2,
	}
	_, device := renderPost(t, options)

	assert.Equal(t, []string{
		"Pass_TAA",
		"Pass_Bloom",
		"Pass_MotionBlur",
		"Pass_Dithering",
		"Pass_ToneMapping",
		"Pass_FXAA",
		"Pass_Sharpening",
		"Pass_ChromaticAberration",
		"Pass_GammaCorrection",
	}, scopes(device.Trace(), "Pass_Main/Pass_PostLight"))
	assert.Equal(t, []string{"Pass_Bloom_Downsample", "Pass_Bloom_Luminance", "Pass_Bloom_Blur", "Pass_Bloom_Additive"},
		scopes(device.Trace(), "Pass_Main/Pass_PostLight/Pass_Bloom"))
	assert.Zero(t, device.Stats().SkippedDraws)
}

func TestPostTAAKeepsHistory(t *testing.T) {
	options := metadata.Options{Flags: metadata.RENDER_POSTPROCESS_TAA, Gamma: 2.2}
	r, device := newTestRenderer(t)
	current := r.Targets().Get(metadata.TARGET_FULL_TAA_CURRENT)

	require.NoError(t, r.Render(&Frame{Buckets: classify(), Camera: testCamera(), Options: options}))
	assert.Same(t, current, r.Targets().Get(metadata.TARGET_FULL_TAA_HISTORY))

	resolve := draws(device.Trace(), "Pass_Main/Pass_PostLight/Pass_TAA/Pass_TAA_Resolve")
	require.Len(t, resolve, 1)
	assert.Equal(t, []string{current.Name}, resolve[0].Targets)
}

func TestBlurRejectsMismatchedTargets(t *testing.T) {
	r, device := newTestRenderer(t)
	logs := captureLogs(t)
	spare := r.Targets().Get(metadata.TARGET_HALF_SPARE)
	light := r.Targets().Get(metadata.TARGET_FULL_HDR_LIGHT)
	device.ResetTrace()

	ok := r.passBlurGaussian("Pass_Blur_Test", metadata.TARGET_HALF_SPARE, metadata.TARGET_FULL_HDR_LIGHT, 1)

	assert.False(t, ok)
	assert.Zero(t, r.CommandList().Len())
	assert.Same(t, spare, r.Targets().Get(metadata.TARGET_HALF_SPARE))
	assert.Same(t, light, r.Targets().Get(metadata.TARGET_FULL_HDR_LIGHT))
	assert.Empty(t, device.Stats().TargetWrites)
	assert.Contains(t, logs.String(), "Pass_Blur_Test")
	assert.Contains(t, logs.String(), core.ErrTargetMismatch.Error())
}

func TestBlurSwapsRoles(t *testing.T) {
	r, device := newTestRenderer(t)
	r.frame = &Frame{Buckets: classify(), Camera: testCamera(), Options: metadata.DefaultOptions()}
	r.updateGlobal()
	t.Cleanup(func() { r.frame = nil })
	blur1 := r.Targets().Get(metadata.TARGET_QUARTER_BLUR1)
	blur2 := r.Targets().Get(metadata.TARGET_QUARTER_BLUR2)

	require.True(t, r.passBlurGaussian("Pass_Blur_Test", metadata.TARGET_QUARTER_BLUR1, metadata.TARGET_QUARTER_BLUR2, 1))
	require.NoError(t, r.CommandList().Submit())

	assert.Same(t, blur2, r.Targets().Get(metadata.TARGET_QUARTER_BLUR1))
	assert.Same(t, blur1, r.Targets().Get(metadata.TARGET_QUARTER_BLUR2))
	assert.Equal(t, []string{"Pass_Blur_Test_Horizontal", "Pass_Blur_Test_Vertical"}, scopes(device.Trace(), "Pass_Blur_Test"))
	horizontal := draws(device.Trace(), "Pass_Blur_Test/Pass_Blur_Test_Horizontal")
	require.Len(t, horizontal, 1)
	assert.Equal(t, []string{blur2.Name}, horizontal[0].Targets)
	vertical := draws(device.Trace(), "Pass_Blur_Test/Pass_Blur_Test_Vertical")
	require.Len(t, vertical, 1)
	assert.Equal(t, []string{blur1.Name}, vertical[0].Targets)
}

package software

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

const (
	vertexSource = "float4 mainVS(uint id : SV_VertexID) : SV_POSITION { return 0; }"
	pixelSource  = "float4 mainPS(float4 p : SV_POSITION) : SV_TARGET { return 1; }"
)

func builtShader(t *testing.T, name string, stage rhi.ShaderStage) *rhi.Shader {
	t.Helper()
	shader := rhi.NewShader(name, name, stage, rhi.VertexLayoutNone)
	source := pixelSource
	if stage == rhi.StageVertex {
		source = vertexSource
	}
	compiled, err := NewCompiler().Compile(shader, []byte(source))
	require.NoError(t, err)
	shader.SetInternal(compiled)
	shader.SetState(rhi.ShaderBuilt)
	return shader
}

func newTexture(t *testing.T, device *Device, name string, format rhi.Format) *rhi.Texture {
	t.Helper()
	texture, err := device.CreateTexture(rhi.TextureDesc{
		Name:   name,
		Width:  4,
		Height: 4,
		Format: format,
		Usage:  rhi.UsageSampled | rhi.UsageRenderTarget,
	})
	require.NoError(t, err)
	return texture
}

func TestCompiler(t *testing.T) {
	compiler := NewCompiler()
	tests := []struct {
		name    string
		stage   rhi.ShaderStage
		source  string
		wantErr bool
	}{
		{"Quad_VS", rhi.StageVertex, vertexSource, false},
		{"Texture_PS", rhi.StagePixel, pixelSource, false},
		{"Texture_PS#tinted", rhi.StagePixel, pixelSource, false},
		{"Texture_PS", rhi.StagePixel, vertexSource, true},
		{"Texture_PS", rhi.StagePixel, "   ", true},
		{"Unknown_PS", rhi.StagePixel, pixelSource, true},
		{"Unknown_VS", rhi.StageVertex, vertexSource, true},
	}
	for _, tt := range tests {
		shader := rhi.NewShader(tt.name, tt.name, tt.stage, rhi.VertexLayoutNone)
		compiled, err := compiler.Compile(shader, []byte(tt.source))
		if tt.wantErr {
			assert.Error(t, err, tt.name)
			assert.Nil(t, compiled, tt.name)
			continue
		}
		assert.NoError(t, err, tt.name)
		assert.NotNil(t, compiled, tt.name)
	}

	_, err := compiler.Compile(nil, []byte(pixelSource))
	assert.ErrorIs(t, err, core.ErrInvalidHandle)
}

func TestCreateTextureValidation(t *testing.T) {
	device := NewDevice(DeviceOptions{})

	_, err := device.CreateTexture(rhi.TextureDesc{Name: "empty", Format: rhi.FormatR8Unorm})
	assert.ErrorIs(t, err, core.ErrInvalidResolution)
	_, err = device.CreateTexture(rhi.TextureDesc{Name: "formatless", Width: 1, Height: 1})
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	device.Shutdown()
	_, err = device.CreateTexture(rhi.TextureDesc{Name: "late", Width: 1, Height: 1, Format: rhi.FormatR8Unorm})
	assert.ErrorIs(t, err, core.ErrInvalidDevice)
	assert.ErrorIs(t, device.Execute(nil), core.ErrInvalidDevice)
}

func TestClearQuantizesToFormat(t *testing.T) {
	device := NewDevice(DeviceOptions{})
	colour := math.NewVec4(2, -1, 0.5, 1)

	unorm := newTexture(t, device, "unorm", rhi.FormatR8G8B8A8Unorm)
	require.NoError(t, device.ClearTexture(unorm, colour))
	texels, err := device.ReadPixels(unorm, 0)
	require.NoError(t, err)
	require.Len(t, texels, 4*4*4)
	assert.Equal(t, []float32{1, 0, 0.5, 1}, texels[:4])

	single := newTexture(t, device, "single", rhi.FormatR16Float)
	require.NoError(t, device.ClearTexture(single, colour))
	texels, err = device.ReadPixels(single, 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 0, 0, 1}, texels[:4])

	_, err = device.ReadPixels(single, 1)
	assert.ErrorIs(t, err, core.ErrInvalidHandle)

	device.DestroyTexture(single)
	assert.Error(t, device.ClearTexture(single, colour))
	assert.EqualValues(t, 2, device.Stats().Clears)
}

func TestFullscreenCopy(t *testing.T) {
	device := NewDevice(DeviceOptions{Trace: true})
	src := newTexture(t, device, "src", rhi.FormatR32G32B32A32Float)
	dst := newTexture(t, device, "dst", rhi.FormatR8G8B8A8Unorm)
	colour := math.NewVec4(0.25, 0.5, 0.75, 1)
	require.NoError(t, device.ClearTexture(src, colour))

	cl := rhi.NewCommandList(device)
	cl.Begin("Pass_Copy")
	cl.SetRenderTarget(dst.RenderTargetView(0), nil)
	cl.SetTexture(0, src)
	cl.SetShaderVertex(builtShader(t, metadata.BUILTIN_SHADER_QUAD_VS, rhi.StageVertex))
	cl.SetShaderPixel(builtShader(t, metadata.BUILTIN_SHADER_TEXTURE_PS, rhi.StagePixel))
	cl.Draw(3, 0)
	cl.End()
	require.NoError(t, cl.Submit())

	texels, err := device.ReadPixels(dst, 0)
	require.NoError(t, err)
	for i := 0; i < len(texels); i += 4 {
		got := math.NewVec4(texels[i], texels[i+1], texels[i+2], texels[i+3])
		require.True(t, got.Compare(colour, 1e-5), "texel %d is %v", i/4, got)
	}

	stats := device.Stats()
	assert.EqualValues(t, 1, stats.Draws)
	assert.EqualValues(t, 16, stats.Fragments)
	assert.EqualValues(t, 1, stats.TargetWrites["dst"])

	var draw *TraceEntry
	for i, e := range device.Trace() {
		if e.Kind.IsDraw() {
			draw = &device.Trace()[i]
		}
	}
	require.NotNil(t, draw)
	assert.Equal(t, "Pass_Copy", draw.Scope)
	assert.Equal(t, []string{"dst"}, draw.Targets)
	assert.Equal(t, []string{"src"}, draw.Textures)
	assert.False(t, draw.Skipped)
}

func TestDrawWithUnbuiltShaderIsSkipped(t *testing.T) {
	device := NewDevice(DeviceOptions{Trace: true})
	dst := newTexture(t, device, "dst", rhi.FormatR8G8B8A8Unorm)
	pending := rhi.NewShader(metadata.BUILTIN_SHADER_TEXTURE_PS, metadata.BUILTIN_SHADER_TEXTURE_PS, rhi.StagePixel, rhi.VertexLayoutNone)
	pending.SetState(rhi.ShaderCompiling)

	cl := rhi.NewCommandList(device)
	cl.SetRenderTarget(dst.RenderTargetView(0), nil)
	cl.SetShaderVertex(builtShader(t, metadata.BUILTIN_SHADER_QUAD_VS, rhi.StageVertex))
	cl.SetShaderPixel(pending)
	cl.Draw(3, 0)
	require.NoError(t, cl.Submit())

	stats := device.Stats()
	assert.Zero(t, stats.Draws)
	assert.EqualValues(t, 1, stats.SkippedDraws)
	assert.Empty(t, stats.TargetWrites)
	trace := device.Trace()
	assert.True(t, trace[len(trace)-1].Skipped)
}

func TestToneMap(t *testing.T) {
	assert.InDelta(t, 0.5, ToneMap(metadata.TONEMAPPING_REINHARD, 1), 1e-6)
	assert.InDelta(t, 0, ToneMap(metadata.TONEMAPPING_ACES, 0), 1e-6)
	assert.InDelta(t, 1, ToneMap(metadata.TONEMAPPING_ACES, 1000), 1e-6)
	assert.InDelta(t, 3, ToneMap(metadata.TONEMAPPING_OFF, 3), 1e-6)
	assert.Zero(t, ToneMap(metadata.TONEMAPPING_REINHARD, -4))

	// every operator is monotonic over the visible range
	for _, op := range []metadata.ToneMapping{metadata.TONEMAPPING_ACES, metadata.TONEMAPPING_REINHARD, metadata.TONEMAPPING_UNCHARTED2} {
		prev := ToneMap(op, 0)
		for x := float32(0.1); x < 8; x += 0.1 {
			v := ToneMap(op, x)
			assert.GreaterOrEqual(t, v, prev, "operator %d at %f", op, x)
			prev = v
		}
	}
}

func TestSwapChain(t *testing.T) {
	device := NewDevice(DeviceOptions{})

	invalid, err := NewSwapChain(device, rhi.SwapChainDesc{Width: 4, Height: 4})
	assert.ErrorIs(t, err, core.ErrInvalidHandle)
	assert.False(t, invalid.IsInitialized())
	assert.ErrorIs(t, invalid.Present(nil), core.ErrNotInitialized)

	sc, err := NewSwapChain(device, rhi.SwapChainDesc{WindowHandle: 1, Width: 2, Height: 2, Format: rhi.FormatR8G8B8A8Unorm})
	require.NoError(t, err)
	require.True(t, sc.IsInitialized())

	src := newTexture(t, device, "final", rhi.FormatR32G32B32A32Float)
	require.NoError(t, device.ClearTexture(src, math.NewVec4(4, 0.5, -1, 0.2)))
	require.NoError(t, sc.Present(src))
	assert.EqualValues(t, 1, sc.Presented())
	front := sc.FrontBuffer()
	require.Len(t, front, 4)
	assert.Equal(t, math.NewVec4(1, 0.5, 0, 1), front[0])

	assert.Error(t, sc.Present(nil))
	assert.EqualValues(t, 1, sc.Presented())

	assert.ErrorIs(t, sc.Resize(0, 2), core.ErrInvalidResolution)
	assert.EqualValues(t, 2, sc.Width())
	require.NoError(t, sc.Resize(8, 6))
	assert.EqualValues(t, 8, sc.Width())
	assert.EqualValues(t, 6, sc.Height())
	require.NoError(t, sc.Present(src))
	assert.Len(t, sc.FrontBuffer(), 48)
}

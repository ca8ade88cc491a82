package renderer

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/components"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
	"github.com/spaghettifunk/lumen/engine/renderer/software"
	"github.com/spaghettifunk/lumen/engine/resources"
	"github.com/spaghettifunk/lumen/engine/scene"
)

const (
	testWidth  uint32 = 64
	testHeight uint32 = 32
)

// syncShaders compiles on the calling goroutine. Names in unbuilt stay
// uninitialized forever.
type syncShaders struct {
	device  rhi.Device
	unbuilt map[string]bool
}

func (p *syncShaders) Acquire(name string, stage rhi.ShaderStage, layout rhi.VertexLayout) (*rhi.Shader, error) {
	return rhi.NewShader(name, "shaders/"+name+".hlsl", stage, layout), nil
}

func (p *syncShaders) CompileAsync(shader *rhi.Shader) {
	if p.unbuilt[shader.Name] {
		return
	}
	source := []byte("float4 " + shader.EntryPoint() + "() { return 0; }")
	compiled, err := p.device.Compiler().Compile(shader, source)
	if err != nil {
		shader.SetErr(err)
		shader.SetState(rhi.ShaderFailed)
		return
	}
	shader.SetInternal(compiled)
	shader.SetState(rhi.ShaderBuilt)
}

func newTestRenderer(t *testing.T, unbuilt ...string) (*Renderer, *software.Device) {
	t.Helper()
	device := software.NewDevice(software.DeviceOptions{Trace: true})
	provider := &syncShaders{device: device, unbuilt: map[string]bool{}}
	for _, name := range unbuilt {
		provider.unbuilt[name] = true
	}
	r, err := New(device, provider, Config{Width: testWidth, Height: testHeight})
	require.NoError(t, err)
	t.Cleanup(r.Shutdown)
	return r, device
}

func testCamera() *components.Camera {
	camera := components.NewCamera(float32(testWidth), float32(testHeight))
	camera.SetPosition(math.NewVec3(0, 1, 6))
	return camera
}

func testCube(t *testing.T, device rhi.Device, name string, albedo math.Vec4) *scene.Entity {
	t.Helper()
	model, err := resources.NewModelFromConfig(device, resources.GenerateCubeConfig(2, 2, 2, 1, 1, name))
	require.NoError(t, err)
	material := resources.NewMaterial(name)
	material.SetAlbedoColor(albedo)
	e := scene.NewEntity(name)
	e.Renderable = scene.NewRenderable(model, material)
	return e
}

func testSun(castShadows bool) *scene.Entity {
	sun := scene.NewEntity("sun")
	sun.Light = components.NewDirectionalLight(math.NewVec4One(), 3, castShadows)
	sun.Light.ShadowMapResolution = 64
	sun.Transform.SetRotation(math.NewQuatFromAxisAngle(math.NewVec3(1, 0, 0), math.DegToRad(-60), true))
	return sun
}

func classify(entities ...*scene.Entity) *scene.Buckets {
	world := scene.NewWorld()
	for _, e := range entities {
		world.Add(e)
	}
	return scene.NewClassifier().Classify(world)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	core.SetLogOutput(&buf)
	t.Cleanup(func() { core.SetLogOutput(os.Stderr) })
	return &buf
}

// draws returns the executed draw entries whose scope starts with prefix.
func draws(trace []software.TraceEntry, prefix string) []software.TraceEntry {
	var out []software.TraceEntry
	for _, e := range trace {
		if e.Kind.IsDraw() && strings.HasPrefix(e.Scope, prefix) {
			out = append(out, e)
		}
	}
	return out
}

// scopes lists the scopes opened directly below parent, in order.
func scopes(trace []software.TraceEntry, parent string) []string {
	var out []string
	depth := strings.Count(parent, "/") + 1
	for _, e := range trace {
		if e.Kind != rhi.CmdBegin || !strings.HasPrefix(e.Scope, parent+"/") {
			continue
		}
		if strings.Count(e.Scope, "/") == depth {
			out = append(out, e.Scope[len(parent)+1:])
		}
	}
	return out
}

func TestNewRejectsInvalidDevice(t *testing.T) {
	_, err := New(nil, &syncShaders{}, Config{Width: testWidth, Height: testHeight})
	assert.ErrorIs(t, err, core.ErrInvalidDevice)

	device := software.NewDevice(software.DeviceOptions{})
	_, err = New(device, nil, Config{Width: testWidth, Height: testHeight})
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	_, err = New(device, &syncShaders{device: device}, Config{Width: 0, Height: testHeight})
	assert.ErrorIs(t, err, core.ErrInvalidResolution)
}

func TestRenderRequiresCamera(t *testing.T) {
	r, _ := newTestRenderer(t)
	assert.ErrorIs(t, r.Render(nil), core.ErrInvalidConfig)
	assert.ErrorIs(t, r.Render(&Frame{Buckets: classify()}), core.ErrInvalidConfig)
}

func TestRenderPassOrder(t *testing.T) {
	r, device := newTestRenderer(t)
	cube := testCube(t, device, "cube", math.NewVec4One())
	glass := testCube(t, device, "glass", math.NewVec4(0.5, 0.7, 1, 0.4))
	glass.Transform.SetPosition(math.NewVec3(0, 0, 2))
	metrics := core.NewMetrics()

	err := r.Render(&Frame{
		Buckets: classify(cube, glass, testSun(true)),
		Camera:  testCamera(),
		Metrics: metrics,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Pass_DepthDirectionalLight",
		"Pass_GBuffer",
		"Pass_PreLight",
		"Pass_Light",
		"Pass_Transparent",
		"Pass_PostLight",
		"Pass_Lines",
		"Pass_Gizmos",
	}, scopes(device.Trace(), "Pass_Main"))
	assert.EqualValues(t, 8, metrics.PassesExecuted)
	assert.NotZero(t, metrics.DrawCalls)
	assert.EqualValues(t, 2, metrics.MeshesRendered)
	assert.Zero(t, device.Stats().SkippedDraws)
	assert.Zero(t, r.CommandList().Len(), "the list is cleared after submission")
}

func TestGBufferEmptySceneClearsTargets(t *testing.T) {
	r, device := newTestRenderer(t)
	gbuffer := []metadata.TargetID{
		metadata.TARGET_GBUFFER_ALBEDO,
		metadata.TARGET_GBUFFER_NORMAL,
		metadata.TARGET_GBUFFER_MATERIAL,
		metadata.TARGET_GBUFFER_VELOCITY,
	}
	for _, id := range gbuffer {
		require.NoError(t, device.ClearTexture(r.Targets().Get(id), math.NewVec4(0.3, 0.6, 0.9, 1)))
	}

	require.NoError(t, r.Render(&Frame{Buckets: classify(), Camera: testCamera()}))

	assert.Empty(t, draws(device.Trace(), "Pass_Main/Pass_GBuffer"))
	for _, id := range gbuffer {
		texels, err := device.ReadPixels(r.Targets().Get(id), 0)
		require.NoError(t, err)
		for _, v := range texels[:3] {
			assert.Zero(t, v, "%s was not cleared", id)
		}
	}
	depth, err := device.ReadPixels(r.Targets().Get(metadata.TARGET_GBUFFER_DEPTH), 0)
	require.NoError(t, err)
	assert.Equal(t, float32(1), depth[0])
}

func TestGBufferDrawsOpaqueOnly(t *testing.T) {
	r, device := newTestRenderer(t)
	cube := testCube(t, device, "cube", math.NewVec4One())
	glass := testCube(t, device, "glass", math.NewVec4(1, 1, 1, 0.5))

	require.NoError(t, r.Render(&Frame{Buckets: classify(cube, glass), Camera: testCamera()}))

	gbuffer := draws(device.Trace(), "Pass_Main/Pass_GBuffer")
	require.Len(t, gbuffer, 1)
	assert.Equal(t, metadata.BUILTIN_SHADER_GBUFFER_PS, gbuffer[0].PixelShader)
	assert.Len(t, gbuffer[0].Targets, 4)
	assert.NotEmpty(t, gbuffer[0].DepthTarget)
	// without a directional light the transparent pass has nothing to shade with
	assert.Empty(t, draws(device.Trace(), "Pass_Main/Pass_Transparent"))
}

func TestGBufferSkipsInvisibleEntities(t *testing.T) {
	r, device := newTestRenderer(t)
	behind := testCube(t, device, "behind", math.NewVec4One())
	behind.Transform.SetPosition(math.NewVec3(0, 0, 50))

	require.NoError(t, r.Render(&Frame{Buckets: classify(behind), Camera: testCamera()}))
	assert.Empty(t, draws(device.Trace(), "Pass_Main/Pass_GBuffer"))
}

func TestGBufferBindsSharedGeometryOnce(t *testing.T) {
	r, device := newTestRenderer(t)
	first := testCube(t, device, "first", math.NewVec4One())
	second := scene.NewEntity("second")
	second.Renderable = scene.NewRenderable(first.Renderable.Model, first.Renderable.Material)
	second.Transform.SetPosition(math.NewVec3(0.5, 0, 0))

	require.NoError(t, r.Render(&Frame{Buckets: classify(first, second), Camera: testCamera()}))

	var vertexBinds, shaderBinds, textureBinds int
	for _, cmd := range device.Trace() {
		if !strings.HasPrefix(cmd.Scope, "Pass_Main/Pass_GBuffer") {
			continue
		}
		switch cmd.Kind {
		case rhi.CmdSetVertexBuffer:
			vertexBinds++
		case rhi.CmdSetPixelShader:
			shaderBinds++
		case rhi.CmdSetTextures:
			textureBinds++
		}
	}
	assert.Len(t, draws(device.Trace(), "Pass_Main/Pass_GBuffer"), 2)
	assert.Equal(t, 1, vertexBinds)
	assert.Equal(t, 1, shaderBinds)
	assert.Equal(t, 1, textureBinds)
}

func TestDepthPassOpensOneScopePerCascade(t *testing.T) {
	r, device := newTestRenderer(t)
	cube := testCube(t, device, "cube", math.NewVec4One())
	sun := testSun(true)

	require.NoError(t, r.Render(&Frame{Buckets: classify(cube, sun), Camera: testCamera()}))

	cascades := scopes(device.Trace(), "Pass_Main/Pass_DepthDirectionalLight")
	require.Len(t, cascades, sun.Light.CascadeCount())
	for i, name := range cascades {
		assert.Equal(t, fmt.Sprintf("Cascade_%d", i), name)
	}
	depth := draws(device.Trace(), "Pass_Main/Pass_DepthDirectionalLight")
	assert.Len(t, depth, sun.Light.CascadeCount())
	for _, d := range depth {
		assert.Empty(t, d.PixelShader)
		assert.Equal(t, "shadow_map", d.DepthTarget)
	}
	require.NotNil(t, sun.Light.ShadowMap)
	assert.EqualValues(t, sun.Light.CascadeCount(), sun.Light.ShadowMap.ArraySize)
}

func TestDepthPassSkipsNonCasters(t *testing.T) {
	r, device := newTestRenderer(t)
	cube := testCube(t, device, "cube", math.NewVec4One())
	cube.Renderable.CastShadows = false

	require.NoError(t, r.Render(&Frame{Buckets: classify(cube, testSun(true)), Camera: testCamera()}))
	assert.Empty(t, draws(device.Trace(), "Pass_Main/Pass_DepthDirectionalLight"))
}

func TestDepthPassNeedsShadowCastingLight(t *testing.T) {
	r, device := newTestRenderer(t)
	cube := testCube(t, device, "cube", math.NewVec4One())
	sun := testSun(false)

	require.NoError(t, r.Render(&Frame{Buckets: classify(cube, sun), Camera: testCamera()}))
	assert.Empty(t, scopes(device.Trace(), "Pass_Main/Pass_DepthDirectionalLight"))
	assert.Nil(t, sun.Light.ShadowMap)

	// fully lit when nothing casts shadows
	shadows, err := device.ReadPixels(r.Targets().Get(metadata.TARGET_HALF_SHADOWS), 0)
	require.NoError(t, err)
	assert.Equal(t, float32(1), shadows[0])
}

func TestUnbuiltShadersSkipTheirDraws(t *testing.T) {
	r, device := newTestRenderer(t, metadata.BUILTIN_SHADER_GBUFFER_PS, metadata.BUILTIN_SHADER_LIGHT_PS)
	cube := testCube(t, device, "cube", math.NewVec4One())

	require.NoError(t, r.Render(&Frame{Buckets: classify(cube), Camera: testCamera()}))

	assert.Empty(t, draws(device.Trace(), "Pass_Main/Pass_GBuffer"))
	assert.NotContains(t, scopes(device.Trace(), "Pass_Main"), "Pass_Light")
	for _, d := range device.Trace() {
		assert.NotEqual(t, metadata.BUILTIN_SHADER_GBUFFER_PS, d.PixelShader)
	}
	assert.Zero(t, device.Stats().SkippedDraws)
}

func TestLineQueuesAreFlushedEveryFrame(t *testing.T) {
	r, device := newTestRenderer(t)
	options := metadata.Options{Gamma: 2.2}

	r.DrawBox(math.Extents3D{Min: math.NewVec3(-1, -1, -1), Max: math.NewVec3One()}, math.NewVec4One(), false)
	r.DrawLine(math.NewVec3Zero(), math.NewVec3One(), math.NewVec4One(), math.NewVec4One(), true)
	require.NoError(t, r.Render(&Frame{Buckets: classify(), Camera: testCamera(), Options: options}))

	assert.Equal(t, []string{"Pass_Lines_DepthEnabled", "Pass_Lines_DepthDisabled"},
		scopes(device.Trace(), "Pass_Main/Pass_Lines"))
	assert.Len(t, draws(device.Trace(), "Pass_Main/Pass_Lines"), 2)

	device.ResetTrace()
	require.NoError(t, r.Render(&Frame{Buckets: classify(), Camera: testCamera(), Options: options}))
	assert.NotContains(t, scopes(device.Trace(), "Pass_Main"), "Pass_Lines")
}

func TestResizeFailureKeepsRenderer(t *testing.T) {
	r, _ := newTestRenderer(t)
	final := r.FinalTarget()

	assert.ErrorIs(t, r.Resize(0, 10), core.ErrInvalidResolution)
	assert.Equal(t, testWidth, r.Width())
	assert.Equal(t, testHeight, r.Height())
	assert.Same(t, final, r.FinalTarget())

	require.NoError(t, r.Resize(32, 16))
	assert.EqualValues(t, 32, r.FinalTarget().Width)
	assert.EqualValues(t, 16, r.FinalTarget().Height)
}

func TestBoxEdges(t *testing.T) {
	box := math.Extents3D{Min: math.NewVec3Zero(), Max: math.NewVec3One()}
	edges := boxEdges(box)
	require.Len(t, edges, 12)
	for _, e := range edges {
		// every edge of a unit box has length one
		assert.InDelta(t, 1, e[0].Distance(e[1]), 1e-6)
	}
}

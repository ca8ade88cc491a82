package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
	"github.com/spaghettifunk/lumen/engine/renderer/software"
	"github.com/spaghettifunk/lumen/engine/resources"
)

func newTestManager(t *testing.T, dir string, watch bool) *AssetManager {
	t.Helper()
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir, watch))
	t.Cleanup(func() { _ = am.Shutdown() })
	return am
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestBuiltinShadersCompile(t *testing.T) {
	am := newTestManager(t, "", false)
	compiler := software.NewCompiler()

	entries, err := fs.ReadDir(BuiltinShaders(), "shaders")
	require.NoError(t, err)
	count := 0
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != ".hlsl" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".hlsl")
		stage := rhi.StagePixel
		if strings.HasSuffix(name, "_VS") {
			stage = rhi.StageVertex
		}
		t.Run(name, func(t *testing.T) {
			source, err := am.ShaderSource(name)
			require.NoError(t, err)
			_, err = compiler.Compile(rhi.NewShader(name, name, stage, rhi.VertexLayoutNone), source)
			assert.NoError(t, err)
		})
		count++
	}
	assert.Equal(t, 31, count)
}

func TestShaderSourceFromDiskOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	custom := []byte("float4 mainPS() : SV_TARGET { return float4(1, 0, 1, 1); }")
	writeFile(t, filepath.Join(dir, "shaders", metadata.BUILTIN_SHADER_TEXTURE_PS+".hlsl"), custom)
	am := newTestManager(t, dir, false)

	source, err := am.ShaderSource(metadata.BUILTIN_SHADER_TEXTURE_PS)
	require.NoError(t, err)
	assert.Equal(t, custom, source)

	// everything else still comes from the embedded set
	source, err = am.ShaderSource(metadata.BUILTIN_SHADER_QUAD_VS)
	require.NoError(t, err)
	assert.Contains(t, string(source), "mainVS(")

	_, err = am.ShaderSource("Missing_PS")
	assert.Error(t, err)
}

func TestInitializeIndexesDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shaders", "Extra_PS.hlsl"), []byte("float4 mainPS() { return 0; }"))
	writeFile(t, filepath.Join(dir, "materials", "stone.amt"), []byte("name = stone\n"))
	writeFile(t, filepath.Join(dir, "notes.md"), []byte("ignored"))
	am := newTestManager(t, dir, false)

	types := map[string]resources.ResourceType{}
	for _, a := range am.Assets() {
		types[filepath.Base(a.Path)] = a.Type
	}
	assert.Equal(t, map[string]resources.ResourceType{
		"Extra_PS.hlsl": resources.ResourceTypeShader,
		"stone.amt":     resources.ResourceTypeMaterial,
	}, types)
}

func TestMissingDirectoryFallsBackToBuiltins(t *testing.T) {
	am := newTestManager(t, filepath.Join(t.TempDir(), "missing"), true)
	source, err := am.ShaderSource(metadata.BUILTIN_SHADER_GAMMA_CORRECTION_PS)
	require.NoError(t, err)
	assert.Contains(t, string(source), "mainPS(")
}

func TestLoadMaterial(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "materials", "brick.amt"), []byte(strings.Join([]string{
		"# a comment",
		"name = brick",
		"albedo_colour = 0.8 0.3 0.2 1.0",
		"roughness = 0.7",
		"metallic = 0.1",
		"cull_mode = none",
		"albedo_map = brick_albedo.png",
	}, "\n")))
	am := newTestManager(t, dir, false)

	res, err := am.LoadAsset("brick", resources.ResourceTypeMaterial, nil)
	require.NoError(t, err)
	config := res.Data.(*resources.MaterialConfig)
	assert.Equal(t, "brick", config.Name)
	assert.InDelta(t, 0.3, config.AlbedoColor.Y, 1e-6)
	assert.InDelta(t, 0.7, config.Roughness, 1e-6)
	assert.Equal(t, metadata.FaceCullModeNone, config.CullMode)
	assert.Equal(t, "brick_albedo.png", config.Maps[metadata.TEXTURE_TYPE_ALBEDO])
	require.NoError(t, am.UnloadAsset(res))
	assert.Nil(t, res.Data)
}

func TestLoadMaterialRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "materials", "bad.amt"), []byte("name = bad\nroughness = 2\n"))
	writeFile(t, filepath.Join(dir, "materials", "nameless.amt"), []byte("roughness = 0.5\n"))
	am := newTestManager(t, dir, false)

	_, err := am.LoadAsset("bad", resources.ResourceTypeMaterial, nil)
	assert.Error(t, err)
	_, err = am.LoadAsset("nameless", resources.ResourceTypeMaterial, nil)
	assert.Error(t, err)
}

func TestLoadImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 1, color.NRGBA{B: 255, A: 128})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "textures", "tiny.png"), buf.Bytes())
	am := newTestManager(t, dir, false)

	res, err := am.LoadAsset("textures/tiny.png", resources.ResourceTypeImage, nil)
	require.NoError(t, err)
	data := res.Data.(*resources.ImageResourceData)
	assert.EqualValues(t, 2, data.Width)
	assert.EqualValues(t, 2, data.Height)
	require.Len(t, data.Pixels, 16)
	assert.Equal(t, []float32{1, 0, 0, 1}, data.Pixels[:4])
	assert.InDelta(t, 128.0/255, data.Pixels[15], 1e-3)

	flipped, err := am.LoadAsset("textures/tiny.png", resources.ResourceTypeImage, &resources.ImageResourceParams{FlipY: true})
	require.NoError(t, err)
	// the red texel moves to the bottom row
	assert.Equal(t, []float32{1, 0, 0, 1}, flipped.Data.(*resources.ImageResourceData).Pixels[8:12])
}

func TestLoadAssetUnknownType(t *testing.T) {
	am := newTestManager(t, "", false)
	_, err := am.LoadAsset("anything", resources.ResourceTypeNone, nil)
	assert.Error(t, err)
}

func TestDetermineAssetType(t *testing.T) {
	tests := map[string]resources.ResourceType{
		"a/b/Light_PS.hlsl": resources.ResourceTypeShader,
		"albedo.PNG":        resources.ResourceTypeImage,
		"scan.tiff":         resources.ResourceTypeImage,
		"ui.fnt":            resources.ResourceTypeBitmapFont,
		"wood.amt":          resources.ResourceTypeMaterial,
		"lumen.toml":        resources.ResourceTypeText,
		"mesh.bin":          resources.ResourceTypeBinary,
		"readme":            resources.ResourceTypeNone,
	}
	for path, want := range tests {
		assert.Equal(t, want, determineAssetType(path), path)
	}
}

func TestWatcherFiresShaderChanged(t *testing.T) {
	require.True(t, core.EventSystemInitialize())
	t.Cleanup(func() { _ = core.EventSystemShutdown() })

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "shaders"), 0o755))
	am := newTestManager(t, dir, true)

	changed := make(chan string, 4)
	listener := new(int)
	require.True(t, core.EventRegister(core.EVENT_CODE_SHADER_SOURCE_CHANGED, listener, func(ctx core.EventContext) bool {
		select {
		case changed <- ctx.Data.(string):
		default:
		}
		return true
	}))

	writeFile(t, filepath.Join(dir, "shaders", "Quad_VS.hlsl"), []byte("float4 mainVS() { return 0; }"))

	select {
	case name := <-changed:
		assert.Equal(t, "Quad_VS", name)
	case <-time.After(5 * time.Second):
		t.Fatal("no shader change event")
	}
	require.NoError(t, am.Shutdown())
	require.NoError(t, am.Shutdown())
}

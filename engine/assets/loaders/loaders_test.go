package loaders

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/spaghettifunk/lumen/engine/resources"
)

func sampleImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{G: 255, A: 255})
	img.Set(0, 1, color.NRGBA{B: 255, A: 255})
	img.Set(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return img
}

func writeEncoded(t *testing.T, path string, encode func(io.Writer) error) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, encode(&buf))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestTextureLoaderFormats(t *testing.T) {
	dir := t.TempDir()
	img := sampleImage()
	files := map[string]func(io.Writer) error{
		"a.png":  func(w io.Writer) error { return png.Encode(w, img) },
		"a.bmp":  func(w io.Writer) error { return bmp.Encode(w, img) },
		"a.tiff": func(w io.Writer) error { return tiff.Encode(w, img, nil) },
	}
	loader := &TextureLoader{}
	for name, encode := range files {
		path := filepath.Join(dir, name)
		writeEncoded(t, path, encode)

		res, err := loader.Load(path, resources.ResourceTypeImage, nil)
		require.NoError(t, err, name)
		data := res.Data.(*resources.ImageResourceData)
		assert.EqualValues(t, 2, data.Width, name)
		assert.Equal(t, []float32{1, 0, 0, 1}, data.Pixels[0:4], name)
		assert.Equal(t, []float32{0, 0, 1, 1}, data.Pixels[8:12], name)

		require.NoError(t, loader.Unload(res))
		assert.Nil(t, res.Data)
	}

	_, err := loader.Load(filepath.Join(dir, "missing.png"), resources.ResourceTypeImage, nil)
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))
	_, err = loader.Load(garbage, resources.ResourceTypeImage, nil)
	assert.Error(t, err)
}

func TestImageDataFlip(t *testing.T) {
	data := ImageData(sampleImage(), true)
	// the blue texel from the bottom row comes first
	assert.Equal(t, []float32{0, 0, 1, 1}, data.Pixels[0:4])
	assert.EqualValues(t, 4, data.ChannelCount)

	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.SetGray(0, 0, color.Gray{Y: 255})
	data = ImageData(gray, false)
	assert.EqualValues(t, 1, data.ChannelCount)
	assert.Equal(t, []float32{1, 1, 1, 1}, data.Pixels)
}

func TestShaderLoaderFallsBackToEmbedded(t *testing.T) {
	dir := t.TempDir()
	onDisk := filepath.Join(dir, "Light_PS.hlsl")
	require.NoError(t, os.WriteFile(onDisk, []byte("disk"), 0o644))
	loader := &ShaderLoader{Fallback: fstest.MapFS{
		"shaders/Light_PS.hlsl": {Data: []byte("embedded light")},
		"shaders/Quad_VS.hlsl":  {Data: []byte("embedded quad")},
	}}

	res, err := loader.Load(onDisk, resources.ResourceTypeShader, nil)
	require.NoError(t, err)
	assert.Equal(t, "Light_PS", res.Name)
	assert.Equal(t, "disk", string(res.Data.(*resources.ShaderResourceData).Source))

	res, err = loader.Load(filepath.Join(dir, "Quad_VS.hlsl"), resources.ResourceTypeShader, nil)
	require.NoError(t, err)
	assert.Equal(t, "embedded quad", string(res.Data.(*resources.ShaderResourceData).Source))

	_, err = loader.Load(filepath.Join(dir, "Nope_PS.hlsl"), resources.ResourceTypeShader, nil)
	assert.Error(t, err)
}

func TestBitmapFontLoader(t *testing.T) {
	dir := t.TempDir()
	atlas := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	writeEncoded(t, filepath.Join(dir, "test_0.png"), func(w io.Writer) error { return png.Encode(w, atlas) })
	fnt := strings.Join([]string{
		`info face="Test" size=16 bold=0 italic=0 charset="" unicode=1 stretchH=100 smooth=1 aa=1 padding=0,0,0,0 spacing=1,1 outline=0`,
		`common lineHeight=18 base=14 scaleW=4 scaleH=4 pages=1 packed=0 alphaChnl=0 redChnl=4 greenChnl=4 blueChnl=4`,
		`page id=0 file="test_0.png"`,
		`chars count=2`,
		`char id=65 x=0 y=0 width=2 height=3 xoffset=0 yoffset=1 xadvance=3 page=0 chnl=15`,
		`char id=66 x=2 y=0 width=2 height=3 xoffset=0 yoffset=1 xadvance=3 page=0 chnl=15`,
		`kernings count=1`,
		`kerning first=65 second=66 amount=-1`,
		``,
	}, "\n")
	path := filepath.Join(dir, "test.fnt")
	require.NoError(t, os.WriteFile(path, []byte(fnt), 0o644))

	loader := &BitmapFontLoader{}
	res, err := loader.Load(path, resources.ResourceTypeBitmapFont, nil)
	require.NoError(t, err)
	data := res.Data.(*resources.BitmapFontResourceData)
	assert.Equal(t, "Test", data.Data.Face)
	assert.EqualValues(t, 18, data.Data.LineHeight)
	assert.Len(t, data.Data.Glyphs, 2)
	require.Len(t, data.Data.Kernings, 1)
	assert.EqualValues(t, -1, data.Data.Kernings[0].Amount)
	require.Len(t, data.Pages, 1)
	assert.Len(t, data.Data.AtlasPixels, 4*4*4)

	require.NoError(t, loader.Unload(res))
	assert.Nil(t, res.Data)

	_, err = loader.Load(filepath.Join(dir, "test.ttf"), resources.ResourceTypeBitmapFont, nil)
	assert.Error(t, err)
	_, err = loader.Load(filepath.Join(dir, "missing.fnt"), resources.ResourceTypeBitmapFont, nil)
	assert.Error(t, err)
}

func TestBinaryLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))
	loader := &BinaryLoader{}
	res, err := loader.Load(path, resources.ResourceTypeBinary, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.DataSize)
	assert.Equal(t, []byte{1, 2, 3}, res.Data)
	require.NoError(t, loader.Unload(res))
}

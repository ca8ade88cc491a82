package systems

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/software"
	"github.com/spaghettifunk/lumen/engine/resources"
)

// memoryLoader serves images and materials from maps and counts loads.
type memoryLoader struct {
	images    map[string]*resources.ImageResourceData
	materials map[string]*resources.MaterialConfig
	loads     int
	unloads   int
}

func (l *memoryLoader) LoadAsset(name string, resourceType resources.ResourceType, params interface{}) (*resources.Resource, error) {
	l.loads++
	var data interface{}
	switch resourceType {
	case resources.ResourceTypeImage:
		if img, ok := l.images[name]; ok {
			data = img
		}
	case resources.ResourceTypeMaterial:
		if m, ok := l.materials[name]; ok {
			data = m
		}
	}
	if data == nil {
		return nil, fmt.Errorf("%s %s not found", resourceType, name)
	}
	return &resources.Resource{Name: name, Type: resourceType, Data: data}, nil
}

func (l *memoryLoader) UnloadAsset(resource *resources.Resource) error {
	l.unloads++
	resource.Data = nil
	return nil
}

func checker() *resources.ImageResourceData {
	return &resources.ImageResourceData{
		ChannelCount: 4,
		Width:        2,
		Height:       1,
		Pixels:       []float32{1, 1, 1, 1, 0, 0, 0, 1},
	}
}

func newTextureSystem(t *testing.T, loader ResourceLoader, capacity uint32) (*TextureSystem, *software.Device) {
	t.Helper()
	device := software.NewDevice(software.DeviceOptions{})
	ts, err := NewTextureSystem(&TextureSystemConfig{MaxTextureCount: capacity}, device, loader)
	require.NoError(t, err)
	require.NoError(t, ts.Initialize())
	t.Cleanup(func() { _ = ts.Shutdown() })
	return ts, device
}

func TestTextureSystemValidation(t *testing.T) {
	device := software.NewDevice(software.DeviceOptions{})
	_, err := NewTextureSystem(&TextureSystemConfig{}, device, nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	device.Shutdown()
	_, err = NewTextureSystem(&TextureSystemConfig{MaxTextureCount: 1}, device, nil)
	assert.ErrorIs(t, err, core.ErrInvalidDevice)
}

func TestTextureSystemReferenceCounting(t *testing.T) {
	loader := &memoryLoader{images: map[string]*resources.ImageResourceData{"checker.png": checker()}}
	ts, device := newTextureSystem(t, loader, 4)

	a, err := ts.Acquire("checker.png", true)
	require.NoError(t, err)
	b, err := ts.Acquire("checker.png", true)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, loader.loads, "the image is decoded once")
	assert.Equal(t, 1, loader.unloads)

	texels, err := device.ReadPixels(a, 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 1, 1, 0, 0, 0, 1}, texels)

	ts.Release("checker.png")
	assert.Same(t, a, ts.Lookup("checker.png"))
	ts.Release("checker.png")
	assert.Nil(t, ts.Lookup("checker.png"))
	assert.Nil(t, a.Internal, "auto released textures are destroyed")
}

func TestTextureSystemDefaultsAndFailures(t *testing.T) {
	loader := &memoryLoader{images: map[string]*resources.ImageResourceData{"a.png": checker(), "b.png": checker()}}
	ts, _ := newTextureSystem(t, loader, 1)

	def := ts.GetDefault(DEFAULT_NORMAL_TEXTURE_NAME)
	require.NotNil(t, def)
	got, err := ts.Acquire(DEFAULT_NORMAL_TEXTURE_NAME, false)
	require.NoError(t, err)
	assert.Same(t, def, got)

	_, err = ts.Acquire("missing.png", false)
	assert.Error(t, err)

	_, err = ts.Acquire("a.png", false)
	require.NoError(t, err)
	_, err = ts.Acquire("b.png", false)
	assert.Error(t, err, "capacity reached")

	// without auto release the texture stays registered
	ts.Release("a.png")
	assert.NotNil(t, ts.Lookup("a.png"))
}

func TestMaterialSystemResolvesTextures(t *testing.T) {
	loader := &memoryLoader{
		images: map[string]*resources.ImageResourceData{"brick.png": checker()},
		materials: map[string]*resources.MaterialConfig{
			"brick": {
				Name:        "brick",
				AlbedoColor: math.NewVec4(1, 0.5, 0.5, 1),
				Roughness:   3,
				Maps: map[metadata.TextureType]string{
					metadata.TEXTURE_TYPE_ALBEDO: "brick.png",
					metadata.TEXTURE_TYPE_NORMAL: "missing.png",
				},
			},
		},
	}
	ts, _ := newTextureSystem(t, loader, 4)
	ms, err := NewMaterialSystem(&MaterialSystemConfig{MaxMaterialCount: 2}, loader, ts)
	require.NoError(t, err)

	m, err := ms.Acquire("brick")
	require.NoError(t, err)
	assert.Equal(t, float32(1), m.Roughness, "roughness saturates")
	assert.Same(t, ts.Lookup("brick.png"), m.Textures[metadata.TEXTURE_TYPE_ALBEDO])
	assert.Nil(t, m.Textures[metadata.TEXTURE_TYPE_NORMAL])

	again, err := ms.Acquire("brick")
	require.NoError(t, err)
	assert.Same(t, m, again)

	def, err := ms.Acquire(resources.DefaultMaterialName)
	require.NoError(t, err)
	assert.Same(t, ms.GetDefault(), def)

	_, err = ms.Acquire("marble")
	assert.Error(t, err)

	_, err = NewMaterialSystem(&MaterialSystemConfig{}, loader, ts)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestGeometrySystem(t *testing.T) {
	device := software.NewDevice(software.DeviceOptions{})
	gs, err := NewGeometrySystem(&GeometrySystemConfig{MaxGeometryCount: 1}, device)
	require.NoError(t, err)
	defer gs.Shutdown()

	require.NotNil(t, gs.GetDefault())
	assert.EqualValues(t, 36, gs.GetDefault().IndexCount)

	config := resources.GeneratePlaneConfig(10, 10, 2, 2, 1, 1, "floor")
	floor, err := gs.AcquireFromConfig(config, true)
	require.NoError(t, err)
	again, err := gs.AcquireFromConfig(config, true)
	require.NoError(t, err)
	assert.Same(t, floor, again)
	assert.Same(t, floor, gs.Acquire("floor"))

	_, err = gs.AcquireFromConfig(resources.GenerateCubeConfig(1, 1, 1, 1, 1, "crate"), false)
	assert.Error(t, err, "capacity reached")
	_, err = gs.AcquireFromConfig(nil, false)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	for i := 0; i < 3; i++ {
		gs.Release(floor)
	}
	assert.Nil(t, gs.Acquire("floor"))
}

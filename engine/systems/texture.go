package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
	"github.com/spaghettifunk/lumen/engine/resources"
)

const (
	DEFAULT_TEXTURE_NAME        = "default"
	DEFAULT_NORMAL_TEXTURE_NAME = "default_normal"
	DEFAULT_BLACK_TEXTURE_NAME  = "default_black"
)

// ResourceLoader is implemented by the asset manager.
type ResourceLoader interface {
	LoadAsset(name string, resourceType resources.ResourceType, params interface{}) (*resources.Resource, error)
	UnloadAsset(resource *resources.Resource) error
}

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
}

type textureReference struct {
	texture        *rhi.Texture
	referenceCount uint64
	autoRelease    bool
}

/**
 * @brief Reference counted sampled textures, created from images in the
 * asset directory.
 */
type TextureSystem struct {
	Config *TextureSystemConfig

	mu sync.Mutex
	// Hashtable for texture lookups.
	registered map[string]*textureReference
	defaults   map[string]*rhi.Texture

	device rhi.Device
	assets ResourceLoader
}

func NewTextureSystem(config *TextureSystemConfig, device rhi.Device, assets ResourceLoader) (*TextureSystem, error) {
	if config == nil || config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	if device == nil || !device.IsInitialized() {
		core.LogError(core.ErrInvalidDevice.Error())
		return nil, core.ErrInvalidDevice
	}
	return &TextureSystem{
		Config:     config,
		registered: make(map[string]*textureReference),
		defaults:   make(map[string]*rhi.Texture),
		device:     device,
		assets:     assets,
	}, nil
}

// Initialize creates the 1x1 default textures.
func (ts *TextureSystem) Initialize() error {
	defaults := map[string][]float32{
		DEFAULT_TEXTURE_NAME:        {1, 1, 1, 1},
		DEFAULT_NORMAL_TEXTURE_NAME: {0.5, 0.5, 1, 1},
		DEFAULT_BLACK_TEXTURE_NAME:  {0, 0, 0, 1},
	}
	for name, texel := range defaults {
		t, err := ts.device.CreateTexture(rhi.TextureDesc{
			Name:   name,
			Width:  1,
			Height: 1,
			Format: rhi.FormatR8G8B8A8Unorm,
			Usage:  rhi.UsageSampled,
			Data:   texel,
		})
		if err != nil {
			core.LogError("failed to create default texture %s: %s", name, err.Error())
			return err
		}
		ts.defaults[name] = t
	}
	return nil
}

func (ts *TextureSystem) Shutdown() error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for name, ref := range ts.registered {
		ts.device.DestroyTexture(ref.texture)
		delete(ts.registered, name)
	}
	for name, t := range ts.defaults {
		ts.device.DestroyTexture(t)
		delete(ts.defaults, name)
	}
	return nil
}

/**
 * @brief Loads the named image on first use and increments its reference
 * count. Auto-release textures are destroyed when the count reaches zero.
 */
func (ts *TextureSystem) Acquire(name string, autoRelease bool) (*rhi.Texture, error) {
	if t, ok := ts.defaults[name]; ok {
		core.LogWarn("texture system Acquire called for default texture %s. Use GetDefault instead", name)
		return t, nil
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ref, ok := ts.registered[name]; ok {
		ref.referenceCount++
		return ref.texture, nil
	}
	if uint32(len(ts.registered)) >= ts.Config.MaxTextureCount {
		err := fmt.Errorf("func texture system Acquire - no room for texture %s", name)
		core.LogError(err.Error())
		return nil, err
	}

	t, err := ts.load(name)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	ts.registered[name] = &textureReference{texture: t, referenceCount: 1, autoRelease: autoRelease}
	return t, nil
}

// Lookup returns the already acquired texture without touching its count.
func (ts *TextureSystem) Lookup(name string) *rhi.Texture {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ref, ok := ts.registered[name]; ok {
		return ref.texture
	}
	return ts.defaults[name]
}

func (ts *TextureSystem) Release(name string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ref, ok := ts.registered[name]
	if !ok {
		core.LogWarn("texture system Release called for unknown texture %s", name)
		return
	}
	if ref.referenceCount > 0 {
		ref.referenceCount--
	}
	if ref.referenceCount == 0 && ref.autoRelease {
		ts.device.DestroyTexture(ref.texture)
		delete(ts.registered, name)
	}
}

// GetDefault returns nil for unknown default names.
func (ts *TextureSystem) GetDefault(name string) *rhi.Texture {
	return ts.defaults[name]
}

func (ts *TextureSystem) load(name string) (*rhi.Texture, error) {
	if ts.assets == nil {
		return nil, fmt.Errorf("texture %s: no asset loader", name)
	}
	res, err := ts.assets.LoadAsset(name, resources.ResourceTypeImage, &resources.ImageResourceParams{FlipY: false})
	if err != nil {
		return nil, fmt.Errorf("func LoadTexture - failed to load image resource for texture '%s': %w", name, err)
	}
	defer ts.assets.UnloadAsset(res)

	img, ok := res.Data.(*resources.ImageResourceData)
	if !ok {
		return nil, fmt.Errorf("texture %s: unexpected resource data %T", name, res.Data)
	}
	return ts.device.CreateTexture(rhi.TextureDesc{
		Name:   name,
		Width:  img.Width,
		Height: img.Height,
		Format: rhi.FormatR8G8B8A8Unorm,
		Usage:  rhi.UsageSampled,
		Data:   img.Pixels,
	})
}

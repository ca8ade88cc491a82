package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
	"github.com/spaghettifunk/lumen/engine/resources"
)

// BUILTIN_FONT_NAME is always available; it is rasterized in memory.
const BUILTIN_FONT_NAME = "builtin"

/** @brief A font ready for drawing: glyph metrics plus the atlas texture. */
type Font struct {
	Name  string
	Data  *resources.FontData
	Atlas *rhi.Texture
}

type BitmapFontConfig struct {
	/** @brief Name the font is acquired by. */
	Name string
	/** @brief Asset name under fonts/, without extension. */
	ResourceName string
}

type FontSystemConfig struct {
	BitmapFontConfigs  []*BitmapFontConfig
	MaxBitmapFontCount uint8
}

type FontSystem struct {
	Config *FontSystemConfig

	mu    sync.Mutex
	fonts map[string]*Font

	device rhi.Device
	assets ResourceLoader
}

func NewFontSystem(config *FontSystemConfig, device rhi.Device, assets ResourceLoader) (*FontSystem, error) {
	if config == nil || config.MaxBitmapFontCount == 0 {
		err := fmt.Errorf("font system - config.MaxBitmapFontCount must be > 0: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	return &FontSystem{
		Config: config,
		fonts:  make(map[string]*Font),
		device: device,
		assets: assets,
	}, nil
}

// Initialize uploads the builtin font and every configured bitmap font.
func (fs *FontSystem) Initialize() error {
	if _, err := fs.register(BUILTIN_FONT_NAME, resources.NewBuiltinFont()); err != nil {
		return err
	}
	for _, cfg := range fs.Config.BitmapFontConfigs {
		if err := fs.LoadBitmapFont(cfg); err != nil {
			core.LogError("failed to load bitmap font: %s", cfg.Name)
			return err
		}
	}
	return nil
}

func (fs *FontSystem) Shutdown() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for name, f := range fs.fonts {
		fs.device.DestroyTexture(f.Atlas)
		delete(fs.fonts, name)
	}
	return nil
}

func (fs *FontSystem) LoadBitmapFont(config *BitmapFontConfig) error {
	fs.mu.Lock()
	_, exists := fs.fonts[config.Name]
	count := len(fs.fonts)
	fs.mu.Unlock()
	if exists {
		core.LogWarn("a font named '%s' already exists and will not be loaded again", config.Name)
		return nil
	}
	if count >= int(fs.Config.MaxBitmapFontCount) {
		return fmt.Errorf("no space left to allocate a new bitmap font. Increase maximum number allowed in font system config")
	}

	res, err := fs.assets.LoadAsset(config.ResourceName, resources.ResourceTypeBitmapFont, nil)
	if err != nil {
		return err
	}
	data := res.Data.(*resources.BitmapFontResourceData)
	if len(data.Data.AtlasPixels) == 0 {
		return fmt.Errorf("bitmap font %s: only single page fonts with a readable atlas are supported", config.Name)
	}
	_, err = fs.register(config.Name, data.Data)
	return err
}

// Acquire falls back to the builtin font for unknown names.
func (fs *FontSystem) Acquire(name string) *Font {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if f, ok := fs.fonts[name]; ok {
		return f
	}
	return fs.fonts[BUILTIN_FONT_NAME]
}

func (fs *FontSystem) register(name string, data *resources.FontData) (*Font, error) {
	setupFontData(data)
	atlas, err := fs.device.CreateTexture(rhi.TextureDesc{
		Name:   "font_atlas_" + name,
		Width:  uint32(data.AtlasSizeX),
		Height: uint32(data.AtlasSizeY),
		Format: rhi.FormatR8G8B8A8Unorm,
		Usage:  rhi.UsageSampled,
		Data:   data.AtlasPixels,
	})
	if err != nil {
		core.LogError("unable to acquire resources for font atlas %s", name)
		return nil, err
	}
	f := &Font{Name: name, Data: data, Atlas: atlas}
	fs.mu.Lock()
	fs.fonts[name] = f
	fs.mu.Unlock()
	return f, nil
}

// setupFontData derives the tab advance: a tab glyph, else four spaces, else four times the size.
func setupFontData(font *resources.FontData) {
	if font.TabXAdvance != 0 {
		return
	}
	if g := font.Glyph('\t'); g != nil {
		font.TabXAdvance = float32(g.XAdvance)
		return
	}
	if g := font.Glyph(' '); g != nil {
		font.TabXAdvance = float32(g.XAdvance) * 4
		return
	}
	font.TabXAdvance = float32(font.Size * 4)
}

package systems

import (
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

// AssetProvider is everything the systems read from the asset manager.
type AssetProvider interface {
	ResourceLoader
	ShaderSourceProvider
}

type SystemManagerConfig struct {
	Workers         int
	QueueSize       int
	HotReload       bool
	MaxShaderCount  uint16
	MaxTextureCount uint32
	BitmapFonts     []*BitmapFontConfig
}

type SystemManager struct {
	jobSystem      *JobSystem
	shaderSystem   *ShaderSystem
	textureSystem  *TextureSystem
	geometrySystem *GeometrySystem
	materialSystem *MaterialSystem
	fontSystem     *FontSystem
}

func NewSystemManager(config SystemManagerConfig, device rhi.Device, assets AssetProvider) (*SystemManager, error) {
	if config.MaxShaderCount == 0 {
		config.MaxShaderCount = 512
	}
	if config.MaxTextureCount == 0 {
		config.MaxTextureCount = 1000
	}

	js, err := NewJobSystem(config.Workers, config.QueueSize)
	if err != nil {
		return nil, err
	}
	ssys, err := NewShaderSystem(&ShaderSystemConfig{
		MaxShaderCount: config.MaxShaderCount,
		HotReload:      config.HotReload,
	}, device.Compiler(), assets, js)
	if err != nil {
		return nil, err
	}
	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: config.MaxTextureCount,
	}, device, assets)
	if err != nil {
		return nil, err
	}
	if err := ts.Initialize(); err != nil {
		return nil, err
	}
	gs, err := NewGeometrySystem(&GeometrySystemConfig{
		MaxGeometryCount: 1000,
	}, device)
	if err != nil {
		return nil, err
	}
	ms, err := NewMaterialSystem(&MaterialSystemConfig{
		MaxMaterialCount: 1000,
	}, assets, ts)
	if err != nil {
		return nil, err
	}
	fs, err := NewFontSystem(&FontSystemConfig{
		BitmapFontConfigs:  config.BitmapFonts,
		MaxBitmapFontCount: uint8(len(config.BitmapFonts) + 1),
	}, device, assets)
	if err != nil {
		return nil, err
	}
	if err := fs.Initialize(); err != nil {
		return nil, err
	}
	return &SystemManager{
		jobSystem:      js,
		shaderSystem:   ssys,
		textureSystem:  ts,
		geometrySystem: gs,
		materialSystem: ms,
		fontSystem:     fs,
	}, nil
}

func (sm *SystemManager) Jobs() *JobSystem           { return sm.jobSystem }
func (sm *SystemManager) Shaders() *ShaderSystem     { return sm.shaderSystem }
func (sm *SystemManager) Textures() *TextureSystem   { return sm.textureSystem }
func (sm *SystemManager) Geometry() *GeometrySystem  { return sm.geometrySystem }
func (sm *SystemManager) Materials() *MaterialSystem { return sm.materialSystem }
func (sm *SystemManager) Fonts() *FontSystem         { return sm.fontSystem }

func (sm *SystemManager) Shutdown() error {
	if err := sm.fontSystem.Shutdown(); err != nil {
		return err
	}
	sm.geometrySystem.Shutdown()
	if err := sm.shaderSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.textureSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.jobSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}

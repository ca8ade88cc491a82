package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
	"github.com/spaghettifunk/lumen/engine/resources"
)

type MaterialSystemConfig struct {
	MaxMaterialCount uint32
}

/**
 * @brief Loads .amt materials by name and resolves their texture maps
 * through the texture system.
 */
type MaterialSystem struct {
	Config *MaterialSystemConfig

	mu              sync.Mutex
	registered      map[string]*resources.Material
	defaultMaterial *resources.Material

	assets   ResourceLoader
	textures *TextureSystem
}

func NewMaterialSystem(config *MaterialSystemConfig, assets ResourceLoader, textures *TextureSystem) (*MaterialSystem, error) {
	if config == nil || config.MaxMaterialCount == 0 {
		err := fmt.Errorf("func NewMaterialSystem - config.MaxMaterialCount must be > 0: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	return &MaterialSystem{
		Config:          config,
		registered:      make(map[string]*resources.Material),
		defaultMaterial: resources.NewMaterial(resources.DefaultMaterialName),
		assets:          assets,
		textures:        textures,
	}, nil
}

// Acquire loads materials/<name>.amt on first use.
func (ms *MaterialSystem) Acquire(name string) (*resources.Material, error) {
	if name == resources.DefaultMaterialName {
		return ms.defaultMaterial, nil
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if m, ok := ms.registered[name]; ok {
		return m, nil
	}
	if uint32(len(ms.registered)) >= ms.Config.MaxMaterialCount {
		err := fmt.Errorf("material system is full, cannot load %s", name)
		core.LogError(err.Error())
		return nil, err
	}
	res, err := ms.assets.LoadAsset(name, resources.ResourceTypeMaterial, nil)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	defer ms.assets.UnloadAsset(res)

	m := resources.NewMaterialFromConfig(res.Data.(*resources.MaterialConfig), ms.resolveTexture)
	ms.registered[name] = m
	return m, nil
}

// Register adds a material built in code.
func (ms *MaterialSystem) Register(m *resources.Material) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.registered[m.Name] = m
}

func (ms *MaterialSystem) GetDefault() *resources.Material {
	return ms.defaultMaterial
}

func (ms *MaterialSystem) resolveTexture(name string) *rhi.Texture {
	if ms.textures == nil {
		return nil
	}
	t, err := ms.textures.Acquire(name, true)
	if err != nil {
		return nil
	}
	return t
}

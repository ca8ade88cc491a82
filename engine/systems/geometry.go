package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
	"github.com/spaghettifunk/lumen/engine/resources"
)

type GeometrySystemConfig struct {
	/** @brief The maximum number of models registered at once. */
	MaxGeometryCount uint32
}

type geometryReference struct {
	model          *resources.Model
	referenceCount uint64
	autoRelease    bool
}

/**
 * @brief Uploads generated geometry once per name and hands out the
 * shared model. The default geometry is a unit cube.
 */
type GeometrySystem struct {
	Config *GeometrySystemConfig

	mu           sync.Mutex
	registered   map[string]*geometryReference
	defaultModel *resources.Model
	device       rhi.Device
}

func NewGeometrySystem(config *GeometrySystemConfig, device rhi.Device) (*GeometrySystem, error) {
	if config == nil || config.MaxGeometryCount == 0 {
		err := fmt.Errorf("func NewGeometrySystem - config.MaxGeometryCount must be > 0: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	gs := &GeometrySystem{
		Config:     config,
		registered: make(map[string]*geometryReference),
		device:     device,
	}
	if err := gs.createDefaultGeometries(); err != nil {
		err = fmt.Errorf("failed to create default geometries: %w", err)
		core.LogError(err.Error())
		return nil, err
	}
	return gs, nil
}

func (gs *GeometrySystem) Shutdown() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	for name := range gs.registered {
		delete(gs.registered, name)
	}
}

/**
 * @brief Registers and acquires a model built from config. A second
 * acquire of the same name returns the existing model.
 */
func (gs *GeometrySystem) AcquireFromConfig(config *resources.GeometryConfig, autoRelease bool) (*resources.Model, error) {
	if config == nil {
		return nil, fmt.Errorf("nil geometry config: %w", core.ErrInvalidConfig)
	}
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if ref, ok := gs.registered[config.Name]; ok {
		ref.referenceCount++
		return ref.model, nil
	}
	if uint32(len(gs.registered)) >= gs.Config.MaxGeometryCount {
		err := fmt.Errorf("unable to obtain free slot for geometry %s. Adjust configuration to allow more space", config.Name)
		core.LogError(err.Error())
		return nil, err
	}
	model, err := resources.NewModelFromConfig(gs.device, config)
	if err != nil {
		return nil, err
	}
	gs.registered[config.Name] = &geometryReference{model: model, referenceCount: 1, autoRelease: autoRelease}
	return model, nil
}

// Acquire returns nil when no model of that name is registered.
func (gs *GeometrySystem) Acquire(name string) *resources.Model {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	ref, ok := gs.registered[name]
	if !ok {
		return nil
	}
	ref.referenceCount++
	return ref.model
}

func (gs *GeometrySystem) Release(model *resources.Model) {
	if model == nil {
		return
	}
	gs.mu.Lock()
	defer gs.mu.Unlock()
	ref, ok := gs.registered[model.Name]
	if !ok || ref.model != model {
		core.LogWarn("geometry system Release called for unknown model %s", model.Name)
		return
	}
	if ref.referenceCount > 0 {
		ref.referenceCount--
	}
	if ref.referenceCount == 0 && ref.autoRelease {
		delete(gs.registered, model.Name)
	}
}

func (gs *GeometrySystem) GetDefault() *resources.Model {
	return gs.defaultModel
}

func (gs *GeometrySystem) createDefaultGeometries() error {
	model, err := resources.NewModelFromConfig(gs.device, resources.GenerateCubeConfig(1, 1, 1, 1, 1, resources.DefaultGeometryName))
	if err != nil {
		return err
	}
	gs.defaultModel = model
	return nil
}

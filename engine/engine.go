package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/components"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
	"github.com/spaghettifunk/lumen/engine/renderer/software"
	"github.com/spaghettifunk/lumen/engine/scene"
	"github.com/spaghettifunk/lumen/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// the software device has no window, the swap chain only needs a non zero handle
const headlessWindowHandle uintptr = 1

const suspendedPoll = 10 * time.Millisecond

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *ApplicationConfig
	isRunning    atomic.Bool
	isSuspended  bool

	device        *software.Device
	swapchain     rhi.SwapChain
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	renderer      *renderer.Renderer
	classifier    *scene.Classifier
	world         *scene.World
	camera        *components.Camera
	metrics       *core.Metrics
	// metadata.Options, replaced as a whole by SetRenderOptions
	options atomic.Value

	width         uint32
	height        uint32
	clock         *core.Clock
	lastTime      float64
	frameCount    uint64
	selected      *scene.Entity
	shutdownState atomic.Bool
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("engine needs a game with a configuration: %w", core.ErrInvalidConfig)
	}
	config := g.ApplicationConfig
	if err := config.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	options, err := config.RenderOptions()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       config,
		assetManager: am,
		classifier:   scene.NewClassifier(),
		world:        scene.NewWorld(),
		metrics:      core.NewMetrics(),
		clock:        core.NewClock(),
		width:        config.Application.Width,
		height:       config.Application.Height,
	}
	e.options.Store(options)
	g.Engine = e
	return e, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	if e.config.LogLevel != "" {
		if err := core.SetLogLevel(e.config.LogLevel); err != nil {
			core.LogWarn("unknown log level %q, keeping the default", e.config.LogLevel)
		}
	}

	// initialize events
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	core.EventRegister(core.EVENT_CODE_RESIZED, e, e.onResized)

	// initialize subsystems
	if err := e.assetManager.Initialize(e.config.Assets.Directory, e.config.Assets.HotReload); err != nil {
		return err
	}

	e.device = software.NewDevice(software.DeviceOptions{})
	swapchain, err := e.device.CreateSwapChain(rhi.SwapChainDesc{
		WindowHandle: headlessWindowHandle,
		Width:        e.width,
		Height:       e.height,
		Format:       rhi.FormatR8G8B8A8Unorm,
		BufferCount:  2,
	})
	if err != nil {
		return err
	}
	e.swapchain = swapchain

	var fonts []*systems.BitmapFontConfig
	if e.config.Assets.Font != "" {
		fonts = append(fonts, &systems.BitmapFontConfig{Name: e.config.Assets.Font, ResourceName: e.config.Assets.Font})
	}
	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{
		Workers:     e.config.Jobs.Workers,
		QueueSize:   e.config.Jobs.QueueSize,
		HotReload:   e.config.Assets.HotReload,
		BitmapFonts: fonts,
	}, e.device, e.assetManager)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	e.systemManager = sm

	fontName := e.config.Assets.Font
	if fontName == "" {
		fontName = systems.BUILTIN_FONT_NAME
	}
	font := sm.Fonts().Acquire(fontName)
	rendererConfig := renderer.Config{
		Width:            e.width,
		Height:           e.height,
		Options:          e.RenderOptions(),
		AmbientIntensity: e.config.Renderer.AmbientIntensity,
		CommandCapacity:  e.config.Renderer.CommandCapacity,
	}
	if font != nil {
		rendererConfig.Font = font.Data
		rendererConfig.FontAtlas = font.Atlas
	}
	r, err := renderer.New(e.device, sm.Shaders(), rendererConfig)
	if err != nil {
		return err
	}
	e.renderer = r

	e.camera = components.NewCamera(float32(e.width), float32(e.height))

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	// the first frames would otherwise skip every pass
	sm.Shaders().Wait()
	counts := sm.Shaders().Counts()
	core.LogInfo("shaders built: %d, failed: %d", counts[rhi.ShaderBuilt], counts[rhi.ShaderFailed])

	e.currentStage = EngineStageInitialized
	return nil
}

/**
 * @brief Runs the frame loop until quit, or until the configured number
 * of frames is rendered. The final frame is dumped when an output file is
 * configured.
 */
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return core.ErrNotInitialized
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	maxFrames := uint64(e.config.Application.Frames)
	for e.isRunning.Load() {
		if maxFrames > 0 && e.frameCount >= maxFrames {
			break
		}
		if e.isSuspended {
			time.Sleep(suspendedPoll)
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if err := e.frame(delta); err != nil {
			core.LogError("frame %d failed, shutting down: %s", e.frameCount, err.Error())
			e.isRunning.Store(false)
			return err
		}

		e.clock.Update()
		e.metrics.Update(e.clock.Elapsed() - currentTime)
		e.lastTime = currentTime
		e.frameCount++
	}
	e.isRunning.Store(false)

	if out := e.config.Application.Output; out != "" {
		if err := e.renderer.DumpTarget(e.renderer.FinalTarget(), out); err != nil {
			return err
		}
	}
	core.LogInfo("rendered %d frames, %s", e.frameCount, e.metrics.String())
	return nil
}

func (e *Engine) frame(delta float64) error {
	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			return err
		}
	}

	frame := &renderer.Frame{
		Buckets:   e.classifier.Classify(e.world),
		Camera:    e.camera,
		Options:   e.RenderOptions(),
		DeltaTime: float32(delta),
		Metrics:   e.metrics,
		Selected:  e.selected,
	}
	// Call the game's render routine.
	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(frame, delta); err != nil {
			return err
		}
	}
	if err := e.renderer.Render(frame); err != nil {
		return err
	}
	if err := e.renderer.Present(e.swapchain); err != nil {
		core.LogError("present: %s", err.Error())
	}
	return nil
}

func (e *Engine) Shutdown() error {
	if !e.shutdownState.CompareAndSwap(false, true) {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError(err.Error())
		}
	}
	if e.renderer != nil {
		e.renderer.Shutdown()
	}
	if e.systemManager != nil {
		if err := e.systemManager.Shutdown(); err != nil {
			return err
		}
	}
	if err := e.assetManager.Shutdown(); err != nil {
		return err
	}
	core.EventUnregister(core.EVENT_CODE_APPLICATION_QUIT, e)
	core.EventUnregister(core.EVENT_CODE_RESIZED, e)
	if err := core.EventSystemShutdown(); err != nil {
		return err
	}
	e.currentStage = EngineStageUninitialized
	return nil
}

// Quit asks the frame loop to stop after the current frame.
func (e *Engine) Quit() {
	core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT, Sender: e})
}

// GetFramebufferSize returns the width and height (in this order)
// of the application framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

// Resize fires the resize event the engine itself listens to.
func (e *Engine) Resize(width, height uint32) {
	core.EventFire(core.EventContext{
		Type:   core.EVENT_CODE_RESIZED,
		Sender: e,
		Data:   &core.ResizeEvent{Width: width, Height: height},
	})
}

// RenderOptions is the snapshot the next frame is rendered with.
func (e *Engine) RenderOptions() metadata.Options {
	return e.options.Load().(metadata.Options)
}

// SetRenderOptions replaces the options as a whole, frames in flight keep theirs.
func (e *Engine) SetRenderOptions(options metadata.Options) {
	e.options.Store(options)
	core.EventFire(core.EventContext{
		Type:   core.EVENT_CODE_RENDER_OPTIONS_CHANGED,
		Sender: e,
		Data:   options,
	})
}

func (e *Engine) World() *scene.World { return e.world }
func (e *Engine) Camera() *components.Camera { return e.camera }
func (e *Engine) Renderer() *renderer.Renderer { return e.renderer }
func (e *Engine) Systems() *systems.SystemManager { return e.systemManager }
func (e *Engine) Device() rhi.Device { return e.device }
func (e *Engine) Metrics() *core.Metrics { return e.metrics }
func (e *Engine) FrameCount() uint64 { return e.frameCount }
func (e *Engine) SwapChain() rhi.SwapChain { return e.swapchain }
func (e *Engine) Select(entity *scene.Entity) { e.selected = entity }
func (e *Engine) Selected() *scene.Entity { return e.selected }
func (e *Engine) Stage() Stage { return e.currentStage }

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	re, ok := context.Data.(*core.ResizeEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	width, height := re.Width, re.Height
	if width == e.width && height == e.height {
		return false
	}

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return false
	}
	if err := e.renderer.Resize(width, height); err != nil {
		core.LogError(err.Error())
		return false
	}
	if err := e.swapchain.Resize(width, height); err != nil {
		core.LogError(err.Error())
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	e.width, e.height = width, height
	e.camera.SetResolution(float32(width), float32(height))
	core.LogDebug("Window resize: %d, %d", width, height)
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	return false
}

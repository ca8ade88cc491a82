package engine

import (
	"github.com/spaghettifunk/lumen/engine/renderer"
)

/**
 * @brief A game plugs its callbacks into the engine. The engine fills
 * Engine before FnInitialize runs.
 */
type Game struct {
	ApplicationConfig *ApplicationConfig
	Engine            *Engine
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error

// Render may adjust the frame, e.g. pick the selected entity, before it is drawn.
type Render func(frame *renderer.Frame, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error

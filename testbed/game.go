package testbed

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/components"
	"github.com/spaghettifunk/lumen/engine/resources"
	"github.com/spaghettifunk/lumen/engine/scene"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	width  uint32
	height uint32

	elapsed  float64
	spinning []*scene.Entity
	glass    *scene.Entity
}

// NewTestGame builds the demo: a floor, a few cubes, a see-through cube, the sun and two local lights.
func NewTestGame(config *engine.ApplicationConfig) (*TestGame, error) {
	if config == nil {
		config = engine.DefaultApplicationConfig()
	}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize() error {
	core.LogInfo("initializing testbed...")
	e := g.Engine
	world := e.World()
	geometry := e.Systems().Geometry()

	floorModel, err := geometry.AcquireFromConfig(resources.GeneratePlaneConfig(40, 40, 4, 4, 8, 8, "floor"), true)
	if err != nil {
		return err
	}
	cubeModel, err := geometry.AcquireFromConfig(resources.GenerateCubeConfig(2, 2, 2, 1, 1, "cube"), true)
	if err != nil {
		return err
	}

	floorMaterial := resources.NewMaterial("floor")
	floorMaterial.SetAlbedoColor(math.NewVec4(0.55, 0.55, 0.58, 1))
	floorMaterial.SetRoughness(0.9)
	floor := scene.NewEntity("floor")
	floor.Renderable = scene.NewRenderable(floorModel, floorMaterial)
	world.Add(floor)

	colours := []math.Vec4{
		math.NewVec4(0.8, 0.2, 0.2, 1),
		math.NewVec4(0.2, 0.7, 0.3, 1),
		math.NewVec4(0.2, 0.3, 0.8, 1),
	}
	s := g.state()
	for i, c := range colours {
		m := resources.NewMaterial(fmt.Sprintf("cube_%d", i))
		m.SetAlbedoColor(c)
		m.SetRoughness(0.4)
		m.SetMetallic(float32(i) * 0.4)
		cube := scene.NewEntity(fmt.Sprintf("cube_%d", i))
		cube.Renderable = scene.NewRenderable(cubeModel, m)
		cube.Transform.SetPosition(math.NewVec3(float32(i-1)*4, 1, 0))
		world.Add(cube)
		s.spinning = append(s.spinning, cube)
	}

	glassMaterial := resources.NewMaterial("glass")
	glassMaterial.SetAlbedoColor(math.NewVec4(0.6, 0.8, 1, 0.4))
	glassMaterial.SetRoughness(0.1)
	glass := scene.NewEntity("glass")
	glass.Renderable = scene.NewRenderable(cubeModel, glassMaterial)
	glass.Transform.SetPosition(math.NewVec3(0, 1.5, 4))
	world.Add(glass)
	s.glass = glass

	sun := scene.NewEntity("sun")
	sun.Light = components.NewDirectionalLight(math.NewVec4(1, 0.96, 0.9, 1), 3, true)
	sun.Transform.SetRotation(math.NewQuatFromAxisAngle(math.NewVec3(1, 0, 0), math.DegToRad(-60), true).
		Mul(math.NewQuatFromAxisAngle(math.NewVec3(0, 1, 0), math.DegToRad(30), true)))
	world.Add(sun)

	red := scene.NewEntity("point_red")
	red.Light = components.NewPointLight(math.NewVec4(1, 0.3, 0.2, 1), 8, 10)
	red.Transform.SetPosition(math.NewVec3(-5, 3, 3))
	world.Add(red)

	spot := scene.NewEntity("spot")
	spot.Light = components.NewSpotLight(math.NewVec4(0.4, 0.6, 1, 1), 12, 15, math.DegToRad(40))
	spot.Transform.SetPosition(math.NewVec3(5, 6, 2))
	spot.Transform.SetRotation(math.NewQuatFromAxisAngle(math.NewVec3(1, 0, 0), math.DegToRad(-80), true))
	world.Add(spot)

	camera := e.Camera()
	camera.SetPosition(math.NewVec3(0, 5, 14))
	camera.SetEulerRotation(math.NewVec3(math.DegToRad(-15), 0, 0))

	e.Select(s.spinning[1])
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	s := g.state()
	s.elapsed += deltaTime
	rotation := math.NewQuatFromAxisAngle(math.NewVec3(0, 1, 0), float32(0.5*deltaTime), false)
	for _, e := range s.spinning {
		e.Transform.Rotate(rotation)
	}
	return nil
}

func (g *TestGame) Render(frame *renderer.Frame, deltaTime float64) error {
	s := g.state()
	if s.glass == nil {
		return nil
	}
	// outline the see-through cube on top of everything
	if box, ok := s.glass.WorldAABB(); ok {
		g.Engine.Renderer().DrawBox(box, math.NewVec4(1, 1, 0, 1), false)
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	s := g.state()
	s.width = width
	s.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("testbed shut down after %.2fs", g.state().elapsed)
	return nil
}

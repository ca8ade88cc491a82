package rhi

import (
	"sync"
	"sync/atomic"
)

const (
	EntryPointVertex = "mainVS"
	EntryPointPixel  = "mainPS"
)

type ShaderStage uint8

const (
	StageVertex ShaderStage = 1 << iota
	StagePixel
)

func (s ShaderStage) EntryPoint() string {
	if s == StagePixel {
		return EntryPointPixel
	}
	return EntryPointVertex
}

type ShaderState int32

const (
	ShaderUninitialized ShaderState = iota
	ShaderCompiling
	ShaderBuilt
	ShaderFailed
)

var shaderStateNames = [...]string{"Uninitialized", "Compiling", "Built", "Failed"}

func (s ShaderState) String() string {
	if s < 0 || int(s) >= len(shaderStateNames) {
		return "Unknown"
	}
	return shaderStateNames[s]
}

/**
 * @brief A single shader stage. Compilation happens on a worker
 * goroutine; the render thread only reads State and Internal.
 */
type Shader struct {
	ID     ResourceID
	Name   string
	Path   string
	Stage  ShaderStage
	Layout VertexLayout

	state    atomic.Int32
	internal atomic.Value

	mu      sync.Mutex
	lastErr error
}

func NewShader(name, path string, stage ShaderStage, layout VertexLayout) *Shader {
	return &Shader{
		ID:     NewResourceID(),
		Name:   name,
		Path:   path,
		Stage:  stage,
		Layout: layout,
	}
}

func (s *Shader) State() ShaderState {
	if s == nil {
		return ShaderUninitialized
	}
	return ShaderState(s.state.Load())
}

func (s *Shader) SetState(state ShaderState) {
	s.state.Store(int32(state))
}

// IsBuilt is false for nil shaders.
func (s *Shader) IsBuilt() bool {
	return s.State() == ShaderBuilt
}

// EntryPoint is mainVS or mainPS depending on the stage.
func (s *Shader) EntryPoint() string {
	return s.Stage.EntryPoint()
}

type compiledHolder struct {
	value interface{}
}

// Internal is the backend object produced by the last successful compile.
func (s *Shader) Internal() interface{} {
	h, _ := s.internal.Load().(compiledHolder)
	return h.value
}

func (s *Shader) SetInternal(v interface{}) {
	s.internal.Store(compiledHolder{value: v})
}

func (s *Shader) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Shader) SetErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// ShaderCompiler turns source into a backend object.
type ShaderCompiler interface {
	Compile(shader *Shader, source []byte) (interface{}, error)
}

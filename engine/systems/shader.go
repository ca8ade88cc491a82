package systems

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

// ShaderSourceProvider returns the source text of a shader by base name.
type ShaderSourceProvider interface {
	ShaderSource(name string) ([]byte, error)
}

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of shaders held in the system. */
	MaxShaderCount uint16
	/** @brief Recompile shaders whose source changed on disk. */
	HotReload bool
}

/**
 * @brief Owns every rhi.Shader by name and compiles them on the job
 * system. The render thread only ever observes the shader state.
 */
type ShaderSystem struct {
	// This system's configuration.
	Config *ShaderSystemConfig

	compiler rhi.ShaderCompiler
	sources  ShaderSourceProvider
	jobs     *JobSystem

	mu sync.RWMutex
	// A lookup table for shader name->shader
	lookup map[string]*rhi.Shader
	// the last compile request per shader, older results are dropped
	generation map[*rhi.Shader]uint64
}

func NewShaderSystem(config *ShaderSystemConfig, compiler rhi.ShaderCompiler, sources ShaderSourceProvider, jobs *JobSystem) (*ShaderSystem, error) {
	if config == nil || config.MaxShaderCount == 0 {
		err := fmt.Errorf("NewShaderSystem - config.MaxShaderCount must be greater than 0: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	if compiler == nil || sources == nil {
		err := fmt.Errorf("NewShaderSystem - a compiler and a source provider are required: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}

	ss := &ShaderSystem{
		Config:     config,
		compiler:   compiler,
		sources:    sources,
		jobs:       jobs,
		lookup:     make(map[string]*rhi.Shader),
		generation: make(map[*rhi.Shader]uint64),
	}

	if config.HotReload {
		core.EventRegister(core.EVENT_CODE_SHADER_SOURCE_CHANGED, ss, ss.onSourceChanged)
	}
	return ss, nil
}

func (ss *ShaderSystem) Shutdown() error {
	if ss.Config.HotReload {
		core.EventUnregister(core.EVENT_CODE_SHADER_SOURCE_CHANGED, ss)
	}
	if ss.jobs != nil {
		ss.jobs.Wait()
	}
	return nil
}

/**
 * @brief Returns the shader registered under name, creating it in the
 * Uninitialized state if needed. Variants are written "Name#variant" and
 * share the source of "Name".
 */
func (ss *ShaderSystem) Acquire(name string, stage rhi.ShaderStage, layout rhi.VertexLayout) (*rhi.Shader, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if s, ok := ss.lookup[name]; ok {
		if s.Stage != stage {
			err := fmt.Errorf("shader %s already acquired for another stage: %w", name, core.ErrInvalidConfig)
			core.LogError(err.Error())
			return nil, err
		}
		return s, nil
	}
	if len(ss.lookup) >= int(ss.Config.MaxShaderCount) {
		err := fmt.Errorf("shader system is full (%d shaders)", ss.Config.MaxShaderCount)
		core.LogError(err.Error())
		return nil, err
	}
	s := rhi.NewShader(name, sourceName(name), stage, layout)
	ss.lookup[name] = s
	return s, nil
}

// Get returns nil for unknown names.
func (ss *ShaderSystem) Get(name string) *rhi.Shader {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.lookup[name]
}

/**
 * @brief Marks the shader Compiling and compiles it on a worker. Without a
 * job system the compile runs inline.
 */
func (ss *ShaderSystem) CompileAsync(shader *rhi.Shader) {
	if shader == nil {
		return
	}
	gen := ss.beginCompile(shader)
	if ss.jobs == nil {
		ss.compile(shader, gen)
		return
	}
	err := ss.jobs.Submit(JobTask{
		Name: "compile " + shader.Name,
		OnStart: func(params interface{}) (interface{}, error) {
			ss.compile(params.(*rhi.Shader), gen)
			return nil, nil
		},
		InputParams: shader,
	})
	if err != nil {
		ss.finishCompile(shader, gen, nil, err)
	}
}

// Compile blocks until the shader is Built or Failed.
func (ss *ShaderSystem) Compile(shader *rhi.Shader) error {
	if shader == nil {
		return core.ErrInvalidHandle
	}
	ss.compile(shader, ss.beginCompile(shader))
	return shader.Err()
}

// CompileAll queues every registered shader.
func (ss *ShaderSystem) CompileAll() {
	for _, s := range ss.Shaders() {
		ss.CompileAsync(s)
	}
}

// Wait blocks until all queued compiles are finished.
func (ss *ShaderSystem) Wait() {
	if ss.jobs != nil {
		ss.jobs.Wait()
	}
}

// Shaders returns a snapshot of every registered shader.
func (ss *ShaderSystem) Shaders() []*rhi.Shader {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	out := make([]*rhi.Shader, 0, len(ss.lookup))
	for _, s := range ss.lookup {
		out = append(out, s)
	}
	return out
}

// Counts returns how many shaders are in each state.
func (ss *ShaderSystem) Counts() map[rhi.ShaderState]int {
	counts := make(map[rhi.ShaderState]int, 4)
	for _, s := range ss.Shaders() {
		counts[s.State()]++
	}
	return counts
}

func (ss *ShaderSystem) beginCompile(shader *rhi.Shader) uint64 {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.generation[shader]++
	shader.SetState(rhi.ShaderCompiling)
	return ss.generation[shader]
}

func (ss *ShaderSystem) compile(shader *rhi.Shader, gen uint64) {
	source, err := ss.sources.ShaderSource(shader.Path)
	if err != nil {
		ss.finishCompile(shader, gen, nil, err)
		return
	}
	compiled, err := ss.compiler.Compile(shader, source)
	ss.finishCompile(shader, gen, compiled, err)
}

func (ss *ShaderSystem) finishCompile(shader *rhi.Shader, gen uint64, compiled interface{}, err error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.generation[shader] != gen {
		// a newer compile owns the shader state
		return
	}
	if err != nil {
		core.LogError("shader %s failed to compile: %s", shader.Name, err.Error())
		shader.SetErr(err)
		shader.SetState(rhi.ShaderFailed)
		return
	}
	shader.SetInternal(compiled)
	shader.SetErr(nil)
	shader.SetState(rhi.ShaderBuilt)
	core.LogDebug("shader %s built", shader.Name)
}

func (ss *ShaderSystem) onSourceChanged(context core.EventContext) bool {
	name, ok := context.Data.(string)
	if !ok {
		return false
	}
	for _, s := range ss.Shaders() {
		if s.Path == name {
			core.LogInfo("reloading shader %s", s.Name)
			ss.CompileAsync(s)
		}
	}
	return false
}

func sourceName(name string) string {
	base, _, _ := strings.Cut(name, "#")
	return base
}

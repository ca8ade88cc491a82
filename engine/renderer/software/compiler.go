package software

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

// compiledShader is what Compile stores in rhi.Shader.Internal.
type compiledShader struct {
	name       string
	vertex     VertexProgram
	kernel     Kernel
	fullscreen bool
}

/**
 * @brief Compiler checks the HLSL source for the stage entry point and
 * binds the shader to the CPU program of the same name. Variants are
 * written as "Name#variant" and resolve to "Name".
 */
type Compiler struct{}

func NewCompiler() *Compiler {
	return &Compiler{}
}

func (c *Compiler) Compile(shader *rhi.Shader, source []byte) (interface{}, error) {
	if shader == nil {
		return nil, fmt.Errorf("compile of a nil shader: %w", core.ErrInvalidHandle)
	}
	if len(bytes.TrimSpace(source)) == 0 {
		return nil, fmt.Errorf("shader %s has an empty source", shader.Name)
	}
	entry := shader.EntryPoint()
	if !bytes.Contains(source, []byte(entry+"(")) {
		return nil, fmt.Errorf("shader %s: entry point %s not found", shader.Name, entry)
	}

	base, _, _ := strings.Cut(shader.Name, "#")
	compiled := &compiledShader{name: base}
	switch shader.Stage {
	case rhi.StageVertex:
		program, ok := vertexPrograms[base]
		if !ok {
			return nil, fmt.Errorf("shader %s: no vertex program named %s", shader.Name, base)
		}
		compiled.vertex = program
		compiled.fullscreen = base == metadata.BUILTIN_SHADER_QUAD_VS
	case rhi.StagePixel:
		kernel, ok := lookupKernel(base)
		if !ok {
			return nil, fmt.Errorf("shader %s: no pixel kernel named %s", shader.Name, base)
		}
		compiled.kernel = kernel
	default:
		return nil, fmt.Errorf("shader %s: unsupported stage %d", shader.Name, shader.Stage)
	}
	return compiled, nil
}

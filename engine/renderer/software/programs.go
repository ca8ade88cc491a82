package software

import (
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

var vertexPrograms = map[string]VertexProgram{
	metadata.BUILTIN_SHADER_QUAD_VS:        quadProgram,
	metadata.BUILTIN_SHADER_GBUFFER_VS:     gbufferProgram,
	metadata.BUILTIN_SHADER_DEPTH_VS:       depthProgram,
	metadata.BUILTIN_SHADER_TRANSPARENT_VS: transparentProgram,
	metadata.BUILTIN_SHADER_COLOR_VS:       colorProgram,
	metadata.BUILTIN_SHADER_SCREEN_VS:      screenProgram,
}

// quadProgram is never run per vertex, quad draws cover the viewport.
func quadProgram(ctx *DrawContext, in VertexInput) Varyings {
	return Varyings{Clip: in.Position.ToVec4(1), UV: in.UV, Colour: in.Colour}
}

func gbufferProgram(ctx *DrawContext, in VertexInput) Varyings {
	object, _ := ctx.Constant(metadata.CB_SLOT_OBJECT).(metadata.ObjectBuffer)
	p := in.Position.ToVec4(1)
	return Varyings{
		Clip:         p.Transform(object.WorldViewProjection),
		PreviousClip: p.Transform(object.WorldViewProjectionPrevious),
		Position:     in.Position.Transform(object.World),
		Normal:       in.Normal.TransformDirection(object.World).Normalized(),
		UV:           in.UV,
		Colour:       in.Colour,
	}
}

func depthProgram(ctx *DrawContext, in VertexInput) Varyings {
	cascade, _ := ctx.Constant(metadata.CB_SLOT_PASS).(metadata.CascadeBuffer)
	return Varyings{Clip: in.Position.ToVec4(1).Transform(cascade.WorldViewProjection), UV: in.UV}
}

func transparentProgram(ctx *DrawContext, in VertexInput) Varyings {
	tb, _ := ctx.Constant(metadata.CB_SLOT_PASS).(metadata.TransparencyBuffer)
	world := in.Position.ToVec4(1).Transform(tb.World)
	return Varyings{
		Clip:     world.Transform(tb.View).Transform(tb.Projection),
		Position: world.ToVec3(),
		Normal:   in.Normal.TransformDirection(tb.World).Normalized(),
		UV:       in.UV,
		Colour:   tb.Color,
	}
}

func colorProgram(ctx *DrawContext, in VertexInput) Varyings {
	g := ctx.Global()
	return Varyings{
		Clip:     in.Position.ToVec4(1).Transform(g.ViewProjection),
		Position: in.Position,
		Colour:   in.Colour,
	}
}

// screenProgram places pixel-space geometry, origin top left.
func screenProgram(ctx *DrawContext, in VertexInput) Varyings {
	g := ctx.Global()
	cb, ok := ctx.Constant(metadata.CB_SLOT_PASS).(metadata.ColorBuffer)
	transform := math.NewMat4Identity()
	colour := in.Colour
	if ok && cb.Transform.Data[15] != 0 {
		transform = cb.Transform
		colour = cb.Color
	}
	return Varyings{
		Clip:   in.Position.ToVec4(1).Transform(transform).Transform(g.ViewProjectionOrtho),
		UV:     in.UV,
		Colour: colour,
	}
}

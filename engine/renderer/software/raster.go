package software

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

const minClipW float32 = 1e-5

// VertexInput is one fetched vertex, whatever the buffer layout.
type VertexInput struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
	Colour   math.Vec4
}

// Varyings are the vertex program outputs interpolated across a primitive.
type Varyings struct {
	Clip         math.Vec4
	PreviousClip math.Vec4
	Position     math.Vec3
	Normal       math.Vec3
	UV           math.Vec2
	Colour       math.Vec4
}

type VertexProgram func(ctx *DrawContext, in VertexInput) Varyings

// Fragment is the input of a pixel kernel.
type Fragment struct {
	X, Y     int
	UV       math.Vec2
	Position math.Vec3
	Normal   math.Vec3
	Colour   math.Vec4
	Depth    float32
	// screen-space motion since the previous frame, in uv units
	Velocity math.Vec2
}

// Kernel shades one fragment. Returning false discards it.
type Kernel func(ctx *DrawContext, f *Fragment, out *[rhi.MaxRenderTargetSlots]math.Vec4) bool

type boundTarget struct {
	surface *surface
	slice   int
}

// DrawContext exposes the bound resources to programs and kernels.
type DrawContext struct {
	state    *pipelineState
	viewport rhi.Viewport
	width    int
	height   int
	targets  [rhi.MaxRenderTargetSlots]boundTarget
	depth    boundTarget
}

func (d *Device) newDrawContext() *DrawContext {
	ctx := &DrawContext{state: &d.state, viewport: d.state.viewport}
	for i := uint32(0); i < d.state.renderTargetCount; i++ {
		v := d.state.renderTargets[i]
		if v == nil {
			continue
		}
		if s, err := surfaceOf(v.Texture); err == nil {
			ctx.targets[i] = boundTarget{surface: s, slice: int(v.Slice)}
		}
	}
	if v := d.state.depthStencil; v != nil {
		if s, err := surfaceOf(v.Texture); err == nil {
			ctx.depth = boundTarget{surface: s, slice: int(v.Slice)}
		}
	}
	if ctx.viewport.Width <= 0 || ctx.viewport.Height <= 0 {
		if ctx.targets[0].surface != nil {
			ctx.viewport = rhi.NewViewport(0, 0, float32(ctx.targets[0].surface.width), float32(ctx.targets[0].surface.height))
		} else if ctx.depth.surface != nil {
			ctx.viewport = rhi.NewViewport(0, 0, float32(ctx.depth.surface.width), float32(ctx.depth.surface.height))
		}
	}
	ctx.width = int(ctx.viewport.Width)
	ctx.height = int(ctx.viewport.Height)
	return ctx
}

// Constant returns the snapshot bound at slot, or nil.
func (c *DrawContext) Constant(slot uint32) interface{} {
	if slot >= rhi.MaxConstantBufferSlots {
		return nil
	}
	return c.state.constants[slot]
}

func (c *DrawContext) Global() metadata.GlobalBuffer {
	g, _ := c.Constant(metadata.CB_SLOT_GLOBAL).(metadata.GlobalBuffer)
	return g
}

func (c *DrawContext) Texture(slot int) *rhi.Texture {
	if slot < 0 || slot >= rhi.MaxTextureSlots {
		return nil
	}
	return c.state.textures[slot]
}

func (c *DrawContext) surface(slot int) *surface {
	t := c.Texture(slot)
	if t == nil {
		return nil
	}
	s, _ := t.Internal.(*surface)
	return s
}

func (c *DrawContext) HasTexture(slot int) bool {
	return c.surface(slot) != nil
}

// Sample filters slice 0 of the texture at slot. Unbound slots read zero.
func (c *DrawContext) Sample(slot int, uv math.Vec2) math.Vec4 {
	return c.SampleSlice(slot, 0, uv)
}

func (c *DrawContext) SampleSlice(slot, slice int, uv math.Vec2) math.Vec4 {
	s := c.surface(slot)
	if s == nil {
		return math.Vec4{}
	}
	return s.sample(slice, uv, c.state.samplers[0])
}

// Load reads an exact texel, clamped to the edges.
func (c *DrawContext) Load(slot, x, y int) math.Vec4 {
	s := c.surface(slot)
	if s == nil {
		return math.Vec4{}
	}
	return s.load(0, x, y)
}

func (c *DrawContext) TextureSize(slot int) (int, int) {
	s := c.surface(slot)
	if s == nil {
		return 0, 0
	}
	return s.width, s.height
}

// TexelSize is one texel in uv units.
func (c *DrawContext) TexelSize(slot int) math.Vec2 {
	w, h := c.TextureSize(slot)
	if w == 0 || h == 0 {
		return math.Vec2{}
	}
	return math.NewVec2(1/float32(w), 1/float32(h))
}

// Resolution is the viewport size in pixels.
func (c *DrawContext) Resolution() math.Vec2 {
	return math.NewVec2(c.viewport.Width, c.viewport.Height)
}

func (c *DrawContext) bounds() (int, int, int, int) {
	x0 := int(c.viewport.X)
	y0 := int(c.viewport.Y)
	x1 := x0 + c.width
	y1 := y0 + c.height
	limit := func(s *surface) {
		if s == nil {
			return
		}
		x1 = math.Clamp(x1, 0, s.width)
		y1 = math.Clamp(y1, 0, s.height)
	}
	for _, t := range c.targets {
		limit(t.surface)
	}
	limit(c.depth.surface)
	return math.Clamp(x0, 0, x1), math.Clamp(y0, 0, y1), x1, y1
}

type screenVertex struct {
	x, y, z float32
	invW    float32
	v       Varyings
}

func (c *DrawContext) project(v Varyings) (screenVertex, bool) {
	w := v.Clip.W
	if w <= minClipW {
		return screenVertex{}, false
	}
	nx := v.Clip.X / w
	ny := v.Clip.Y / w
	nz := v.Clip.Z / w
	return screenVertex{
		x:    c.viewport.X + (nx*0.5+0.5)*c.viewport.Width,
		y:    c.viewport.Y + (0.5-ny*0.5)*c.viewport.Height,
		z:    nz*0.5 + 0.5,
		invW: 1 / w,
		v:    v,
	}, true
}

func fetchVertex(data interface{}, index uint32) (VertexInput, bool) {
	switch vertices := data.(type) {
	case []math.Vertex3D:
		if int(index) >= len(vertices) {
			return VertexInput{}, false
		}
		v := vertices[index]
		return VertexInput{Position: v.Position, Normal: v.Normal, UV: v.Texcoord, Colour: v.Colour}, true
	case []math.VertexPositionColour:
		if int(index) >= len(vertices) {
			return VertexInput{}, false
		}
		v := vertices[index]
		return VertexInput{Position: v.Position, Colour: v.Colour}, true
	case []math.VertexPositionTexcoord:
		if int(index) >= len(vertices) {
			return VertexInput{}, false
		}
		v := vertices[index]
		return VertexInput{Position: v.Position, UV: v.Texcoord, Colour: math.NewVec4One()}, true
	case []math.Vec3:
		if int(index) >= len(vertices) {
			return VertexInput{}, false
		}
		return VertexInput{Position: vertices[index], Colour: math.NewVec4One()}, true
	}
	return VertexInput{}, false
}

func (d *Device) indices(cmd *rhi.Command) []uint32 {
	if cmd.Kind == rhi.CmdDraw {
		out := make([]uint32, cmd.VertexCount)
		for i := range out {
			out[i] = cmd.VertexOffset + uint32(i)
		}
		return out
	}
	if d.state.indexBuffer == nil {
		core.LogError("indexed draw in %s without an index buffer", d.scopePath())
		return nil
	}
	source, ok := d.state.indexBuffer.Data().([]uint32)
	if !ok {
		core.LogError("index buffer %s does not hold uint32 indices", d.state.indexBuffer.Name)
		return nil
	}
	end := int(cmd.IndexOffset + cmd.IndexCount)
	if end > len(source) {
		core.LogError("indexed draw reads %d indices from %s which holds %d", end, d.state.indexBuffer.Name, len(source))
		return nil
	}
	out := make([]uint32, cmd.IndexCount)
	for i := range out {
		out[i] = source[int(cmd.IndexOffset)+i] + cmd.VertexOffset
	}
	return out
}

func (d *Device) rasterize(ctx *DrawContext, cmd *rhi.Command, program VertexProgram, kernel Kernel) {
	if d.state.vertexBuffer == nil {
		core.LogError("draw in %s without a vertex buffer", d.scopePath())
		return
	}
	data := d.state.vertexBuffer.Data()
	indices := d.indices(cmd)

	cache := make(map[uint32]Varyings, len(indices))
	shadeVertex := func(index uint32) (Varyings, bool) {
		if v, ok := cache[index]; ok {
			return v, true
		}
		in, ok := fetchVertex(data, index)
		if !ok {
			return Varyings{}, false
		}
		v := program(ctx, in)
		cache[index] = v
		return v, true
	}

	if d.state.topology == rhi.PrimitiveTopologyLineList {
		for i := 0; i+1 < len(indices); i += 2 {
			a, okA := shadeVertex(indices[i])
			b, okB := shadeVertex(indices[i+1])
			if okA && okB {
				d.line(ctx, a, b, kernel)
			}
		}
		return
	}

	wireframe := d.state.rasterizer != nil && d.state.rasterizer.FillMode == rhi.FillWireframe
	for i := 0; i+2 < len(indices); i += 3 {
		a, okA := shadeVertex(indices[i])
		b, okB := shadeVertex(indices[i+1])
		c, okC := shadeVertex(indices[i+2])
		if !okA || !okB || !okC {
			continue
		}
		if wireframe {
			d.line(ctx, a, b, kernel)
			d.line(ctx, b, c, kernel)
			d.line(ctx, c, a, kernel)
			continue
		}
		d.triangle(ctx, a, b, c, kernel)
	}
}

func edge(a, b screenVertex, x, y float32) float32 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

func (d *Device) triangle(ctx *DrawContext, a, b, c Varyings, kernel Kernel) {
	s0, ok0 := ctx.project(a)
	s1, ok1 := ctx.project(b)
	s2, ok2 := ctx.project(c)
	if !ok0 || !ok1 || !ok2 {
		return
	}

	area := edge(s0, s1, s2.x, s2.y)
	if area == 0 {
		return
	}
	// screen y points down, so counter-clockwise in NDC is negative here
	front := area < 0
	if r := d.state.rasterizer; r != nil {
		if (r.CullMode == rhi.CullBack && !front) || (r.CullMode == rhi.CullFront && front) {
			return
		}
	}

	bx0, by0, bx1, by1 := ctx.bounds()
	minX := math.Clamp(floor(min3(s0.x, s1.x, s2.x)), bx0, bx1)
	minY := math.Clamp(floor(min3(s0.y, s1.y, s2.y)), by0, by1)
	maxX := math.Clamp(floor(max3(s0.x, s1.x, s2.x))+1, bx0, bx1)
	maxY := math.Clamp(floor(max3(s0.y, s1.y, s2.y))+1, by0, by1)

	for py := minY; py < maxY; py++ {
		for px := minX; px < maxX; px++ {
			cx := float32(px) + 0.5
			cy := float32(py) + 0.5
			w0 := edge(s1, s2, cx, cy) / area
			w1 := edge(s2, s0, cx, cy) / area
			w2 := edge(s0, s1, cx, cy) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*s0.z + w1*s1.z + w2*s2.z
			if z < 0 || z > 1 {
				continue
			}
			p0 := w0 * s0.invW
			p1 := w1 * s1.invW
			p2 := w2 * s2.invW
			sum := p0 + p1 + p2
			v := blend3(s0.v, s1.v, s2.v, p0/sum, p1/sum, p2/sum)
			f := fragmentFrom(ctx, v, px, py, z)
			d.shade(ctx, kernel, &f)
		}
	}
}

func (d *Device) line(ctx *DrawContext, a, b Varyings, kernel Kernel) {
	sa, okA := ctx.project(a)
	sb, okB := ctx.project(b)
	if !okA || !okB {
		return
	}
	bx0, by0, bx1, by1 := ctx.bounds()
	dx := sb.x - sa.x
	dy := sb.y - sa.y
	steps := int(max(abs(dx), abs(dy)))
	if steps == 0 {
		steps = 1
	}
	lastX, lastY := -1, -1
	for i := 0; i <= steps; i++ {
		t := float32(i) / float32(steps)
		px := floor(sa.x + dx*t)
		py := floor(sa.y + dy*t)
		if px == lastX && py == lastY {
			continue
		}
		lastX, lastY = px, py
		if px < bx0 || py < by0 || px >= bx1 || py >= by1 {
			continue
		}
		z := sa.z + (sb.z-sa.z)*t
		if z < 0 || z > 1 {
			continue
		}
		pa := (1 - t) * sa.invW
		pb := t * sb.invW
		sum := pa + pb
		v := blend3(sa.v, sb.v, sb.v, pa/sum, pb/sum, 0)
		f := fragmentFrom(ctx, v, px, py, z)
		d.shade(ctx, kernel, &f)
	}
}

func (d *Device) fullscreen(ctx *DrawContext, kernel Kernel) {
	if kernel == nil {
		return
	}
	x0, y0, x1, y1 := ctx.bounds()
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			f := Fragment{
				X: px,
				Y: py,
				UV: math.NewVec2(
					(float32(px)+0.5-ctx.viewport.X)/ctx.viewport.Width,
					(float32(py)+0.5-ctx.viewport.Y)/ctx.viewport.Height,
				),
				Colour: math.NewVec4One(),
			}
			var out [rhi.MaxRenderTargetSlots]math.Vec4
			if !kernel(ctx, &f, &out) {
				continue
			}
			d.writeTargets(ctx, px, py, &out)
			d.stats.Fragments++
		}
	}
}

func fragmentFrom(ctx *DrawContext, v Varyings, x, y int, z float32) Fragment {
	f := Fragment{
		X:        x,
		Y:        y,
		UV:       v.UV,
		Position: v.Position,
		Normal:   v.Normal.Normalized(),
		Colour:   v.Colour,
		Depth:    z,
	}
	if v.Clip.W > minClipW && v.PreviousClip.W > minClipW {
		current := math.NewVec2(v.Clip.X/v.Clip.W, v.Clip.Y/v.Clip.W)
		previous := math.NewVec2(v.PreviousClip.X/v.PreviousClip.W, v.PreviousClip.Y/v.PreviousClip.W)
		delta := current.Sub(previous)
		f.Velocity = math.NewVec2(delta.X*0.5, -delta.Y*0.5)
	}
	return f
}

func (d *Device) shade(ctx *DrawContext, kernel Kernel, f *Fragment) {
	dss := d.state.depthState
	depth := ctx.depth
	if depth.surface != nil && dss != nil && dss.DepthTest {
		if !dss.Comparison.Test(f.Depth, depth.surface.loadDepth(depth.slice, f.X, f.Y)) {
			return
		}
	}
	if kernel != nil {
		var out [rhi.MaxRenderTargetSlots]math.Vec4
		if !kernel(ctx, f, &out) {
			return
		}
		d.writeTargets(ctx, f.X, f.Y, &out)
	}
	if depth.surface != nil && dss != nil && dss.DepthWrite {
		depth.surface.storeDepth(depth.slice, f.X, f.Y, f.Depth)
	}
	d.stats.Fragments++
}

func (d *Device) writeTargets(ctx *DrawContext, x, y int, out *[rhi.MaxRenderTargetSlots]math.Vec4) {
	mode := rhi.BlendDisabled
	if d.state.blend != nil {
		mode = d.state.blend.Mode
	}
	for i, t := range ctx.targets {
		if t.surface == nil {
			continue
		}
		src := out[i]
		switch mode {
		case rhi.BlendAlpha:
			dst := t.surface.load(t.slice, x, y)
			a := src.W
			src = math.Vec4{
				X: src.X*a + dst.X*(1-a),
				Y: src.Y*a + dst.Y*(1-a),
				Z: src.Z*a + dst.Z*(1-a),
				W: a + dst.W*(1-a),
			}
		case rhi.BlendAdditive:
			src = src.Add(t.surface.load(t.slice, x, y))
		}
		t.surface.store(t.slice, x, y, src)
	}
}

func blend3(a, b, c Varyings, wa, wb, wc float32) Varyings {
	mix3 := func(x, y, z math.Vec3) math.Vec3 {
		return x.MulScalar(wa).Add(y.MulScalar(wb)).Add(z.MulScalar(wc))
	}
	mix4 := func(x, y, z math.Vec4) math.Vec4 {
		return x.MulScalar(wa).Add(y.MulScalar(wb)).Add(z.MulScalar(wc))
	}
	return Varyings{
		Clip:         mix4(a.Clip, b.Clip, c.Clip),
		PreviousClip: mix4(a.PreviousClip, b.PreviousClip, c.PreviousClip),
		Position:     mix3(a.Position, b.Position, c.Position),
		Normal:       mix3(a.Normal, b.Normal, c.Normal),
		UV:           a.UV.MulScalar(wa).Add(b.UV.MulScalar(wb)).Add(c.UV.MulScalar(wc)),
		Colour:       mix4(a.Colour, b.Colour, c.Colour),
	}
}

func min3(a, b, c float32) float32 {
	return min(a, min(b, c))
}

func max3(a, b, c float32) float32 {
	return max(a, max(b, c))
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

// Fetch is a point sample of slice 0 at uv.
func (c *DrawContext) Fetch(slot int, uv math.Vec2) math.Vec4 {
	s := c.surface(slot)
	if s == nil {
		return math.Vec4{}
	}
	return s.load(0, int(uv.X*float32(s.width)), int(uv.Y*float32(s.height)))
}

// LoadSlice reads an exact texel of an array slice.
func (c *DrawContext) LoadSlice(slot, slice, x, y int) math.Vec4 {
	s := c.surface(slot)
	if s == nil {
		return math.Vec4{}
	}
	return s.load(slice, x, y)
}

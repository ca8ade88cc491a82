package software

import (
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

// surface is the CPU storage behind a texture. Color and depth planes are
// kept per array slice.
type surface struct {
	width  int
	height int
	format rhi.Format
	color  [][]math.Vec4
	depth  [][]float32
}

func newSurface(t *rhi.Texture, data []float32) *surface {
	s := &surface{
		width:  int(t.Width),
		height: int(t.Height),
		format: t.Format,
	}
	texels := s.width * s.height
	hasColor := t.Usage&rhi.UsageRenderTarget != 0 || t.Usage&rhi.UsageDepthStencil == 0
	for i := uint32(0); i < t.ArraySize; i++ {
		if hasColor {
			s.color = append(s.color, make([]math.Vec4, texels))
		}
		if t.IsDepthStencil() {
			plane := make([]float32, texels)
			for j := range plane {
				plane[j] = 1
			}
			s.depth = append(s.depth, plane)
		}
	}
	if hasColor && len(data) > 0 {
		for slice := range s.color {
			for j := 0; j < texels; j++ {
				k := (slice*texels + j) * 4
				if k+3 >= len(data) {
					return s
				}
				s.color[slice][j] = s.quantize(math.Vec4{X: data[k], Y: data[k+1], Z: data[k+2], W: data[k+3]})
			}
		}
	}
	return s
}

func (s *surface) index(x, y int) int {
	return y*s.width + x
}

func (s *surface) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.width && y < s.height
}

func (s *surface) quantize(v math.Vec4) math.Vec4 {
	switch s.format.Channels() {
	case 1:
		v = math.Vec4{X: v.X, Y: 0, Z: 0, W: 1}
	case 2:
		v = math.Vec4{X: v.X, Y: v.Y, Z: 0, W: 1}
	}
	if s.format.IsNormalized() {
		v = math.Vec4{X: math.Saturate(v.X), Y: math.Saturate(v.Y), Z: math.Saturate(v.Z), W: math.Saturate(v.W)}
	}
	return v
}

func (s *surface) store(slice, x, y int, v math.Vec4) {
	if slice >= len(s.color) || !s.inBounds(x, y) {
		return
	}
	s.color[slice][s.index(x, y)] = s.quantize(v)
}

func (s *surface) storeDepth(slice, x, y int, d float32) {
	if slice >= len(s.depth) || !s.inBounds(x, y) {
		return
	}
	s.depth[slice][s.index(x, y)] = d
}

func (s *surface) loadDepth(slice, x, y int) float32 {
	if slice >= len(s.depth) || !s.inBounds(x, y) {
		return 1
	}
	return s.depth[slice][s.index(x, y)]
}

// load reads a texel with clamped coordinates. Depth-only surfaces
// return the depth in X.
func (s *surface) load(slice, x, y int) math.Vec4 {
	x = math.Clamp(x, 0, s.width-1)
	y = math.Clamp(y, 0, s.height-1)
	if slice < len(s.color) {
		return s.color[slice][s.index(x, y)]
	}
	if slice < len(s.depth) {
		return math.Vec4{X: s.depth[slice][s.index(x, y)], W: 1}
	}
	return math.Vec4{}
}

func (s *surface) sample(slice int, uv math.Vec2, sampler *rhi.Sampler) math.Vec4 {
	filter := rhi.FilterBilinear
	address := rhi.AddressClamp
	if sampler != nil {
		filter = sampler.Filter
		address = sampler.Address
	}
	if address == rhi.AddressWrap {
		uv.X = uv.X - float32(int(uv.X))
		uv.Y = uv.Y - float32(int(uv.Y))
		if uv.X < 0 {
			uv.X += 1
		}
		if uv.Y < 0 {
			uv.Y += 1
		}
	}

	fx := uv.X*float32(s.width) - 0.5
	fy := uv.Y*float32(s.height) - 0.5
	if filter == rhi.FilterPoint {
		return s.load(slice, int(fx+0.5), int(fy+0.5))
	}

	x0 := floor(fx)
	y0 := floor(fy)
	tx := fx - float32(x0)
	ty := fy - float32(y0)
	a := s.load(slice, x0, y0).Lerp(s.load(slice, x0+1, y0), tx)
	b := s.load(slice, x0, y0+1).Lerp(s.load(slice, x0+1, y0+1), tx)
	return a.Lerp(b, ty)
}

func (s *surface) fill(slice int, v math.Vec4) {
	if slice >= len(s.color) {
		return
	}
	v = s.quantize(v)
	plane := s.color[slice]
	for i := range plane {
		plane[i] = v
	}
}

func (s *surface) fillDepth(slice int, d float32) {
	if slice >= len(s.depth) {
		return
	}
	plane := s.depth[slice]
	for i := range plane {
		plane[i] = d
	}
}

func floor(f float32) int {
	i := int(f)
	if f < 0 && float32(i) != f {
		i--
	}
	return i
}

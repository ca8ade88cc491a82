package software

import (
	gomath "math"
	"sync"

	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

type outputs = *[rhi.MaxRenderTargetSlots]math.Vec4

var kernelsMu sync.RWMutex

// kernels maps a pixel shader name to its CPU implementation.
var kernels = map[string]Kernel{
	metadata.BUILTIN_SHADER_TEXTURE_PS:              textureKernel,
	metadata.BUILTIN_SHADER_GBUFFER_PS:              gbufferKernel,
	metadata.BUILTIN_SHADER_LIGHT_PS:                lightKernel,
	metadata.BUILTIN_SHADER_TRANSPARENT_PS:          transparentKernel,
	metadata.BUILTIN_SHADER_SHADOW_MAPPING_PS:       shadowMappingKernel,
	metadata.BUILTIN_SHADER_SSAO_PS:                 ssaoKernel,
	metadata.BUILTIN_SHADER_BLUR_GAUSSIAN_PS:        blurGaussianKernel,
	metadata.BUILTIN_SHADER_BLUR_BILATERAL_PS:       blurBilateralKernel,
	metadata.BUILTIN_SHADER_TAA_PS:                  taaKernel,
	metadata.BUILTIN_SHADER_DOWNSAMPLE_BOX_PS:       downsampleKernel,
	metadata.BUILTIN_SHADER_BLOOM_BRIGHT_PS:         bloomBrightKernel,
	metadata.BUILTIN_SHADER_BLOOM_BLEND_PS:          bloomBlendKernel,
	metadata.BUILTIN_SHADER_MOTION_BLUR_PS:          motionBlurKernel,
	metadata.BUILTIN_SHADER_DITHERING_PS:            ditheringKernel,
	metadata.BUILTIN_SHADER_TONEMAPPING_PS:          toneMappingKernel,
	metadata.BUILTIN_SHADER_LUMA_PS:                 lumaKernel,
	metadata.BUILTIN_SHADER_FXAA_PS:                 fxaaKernel,
	metadata.BUILTIN_SHADER_SHARPENING_PS:           sharpeningKernel,
	metadata.BUILTIN_SHADER_CHROMATIC_ABERRATION_PS: chromaticAberrationKernel,
	metadata.BUILTIN_SHADER_GAMMA_CORRECTION_PS:     gammaKernel,
	metadata.BUILTIN_SHADER_COLOR_PS:                colorKernel,
	metadata.BUILTIN_SHADER_FONT_PS:                 fontKernel,
	metadata.BUILTIN_SHADER_DEBUG_NORMAL_PS:         debugNormalKernel,
	metadata.BUILTIN_SHADER_DEBUG_VELOCITY_PS:       debugVelocityKernel,
	metadata.BUILTIN_SHADER_DEBUG_DEPTH_PS:          debugDepthKernel,
}

// RegisterKernel adds or replaces a pixel kernel. Shaders compiled
// afterwards with that name pick it up.
func RegisterKernel(name string, kernel Kernel) {
	kernelsMu.Lock()
	kernels[name] = kernel
	kernelsMu.Unlock()
}

func lookupKernel(name string) (Kernel, bool) {
	kernelsMu.RLock()
	defer kernelsMu.RUnlock()
	k, ok := kernels[name]
	return k, ok
}

func luminance(c math.Vec3) float32 {
	return c.X*0.2126 + c.Y*0.7152 + c.Z*0.0722
}

func sqrt(f float32) float32 {
	return float32(gomath.Sqrt(float64(f)))
}

func cos(f float32) float32 {
	return float32(gomath.Cos(float64(f)))
}

func sin(f float32) float32 {
	return float32(gomath.Sin(float64(f)))
}

func rgb(c math.Vec4) math.Vec3 {
	return c.ToVec3()
}

func opaque(c math.Vec3) math.Vec4 {
	return c.ToVec4(1)
}

// worldFromDepth rebuilds the world position of a pixel from the depth buffer.
func worldFromDepth(g metadata.GlobalBuffer, uv math.Vec2, depth float32) math.Vec3 {
	ndc := math.NewVec4(uv.X*2-1, 1-uv.Y*2, depth*2-1, 1)
	p := ndc.Transform(g.ViewProjectionInverse)
	if p.W == 0 {
		return math.Vec3{}
	}
	return math.NewVec3(p.X/p.W, p.Y/p.W, p.Z/p.W)
}

func textureKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	out[0] = ctx.Sample(0, f.UV).Mul(f.Colour)
	return true
}

func gbufferKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	m, _ := ctx.Constant(metadata.CB_SLOT_MATERIAL).(metadata.MaterialBuffer)
	tiling := m.TilingUV
	if tiling.X == 0 && tiling.Y == 0 {
		tiling = math.NewVec2(1, 1)
	}
	uv := math.NewVec2(f.UV.X*tiling.X+m.OffsetUV.X, f.UV.Y*tiling.Y+m.OffsetUV.Y)
	sample := func(t metadata.TextureType) (math.Vec4, bool) {
		if !m.HasTexture[t] {
			return math.Vec4{}, false
		}
		return ctx.Sample(int(t), uv), true
	}

	if mask, ok := sample(metadata.TEXTURE_TYPE_MASK); ok && mask.X < 0.5 {
		return false
	}

	albedo := m.AlbedoColor
	if s, ok := sample(metadata.TEXTURE_TYPE_ALBEDO); ok {
		albedo = albedo.Mul(s)
	}
	roughness := m.Roughness
	if s, ok := sample(metadata.TEXTURE_TYPE_ROUGHNESS); ok {
		roughness *= s.X
	}
	metallic := m.Metallic
	if s, ok := sample(metadata.TEXTURE_TYPE_METALLIC); ok {
		metallic *= s.X
	}
	occlusion := float32(1)
	if s, ok := sample(metadata.TEXTURE_TYPE_OCCLUSION); ok {
		occlusion = s.X
	}
	var emission float32
	if s, ok := sample(metadata.TEXTURE_TYPE_EMISSION); ok {
		emission = luminance(rgb(s))
	}
	normal := f.Normal
	if s, ok := sample(metadata.TEXTURE_TYPE_NORMAL); ok && m.NormalMultiplier > 0 {
		// tangent-space detail folded into the interpolated normal
		detail := math.NewVec3(s.X*2-1, s.Y*2-1, 0).MulScalar(m.NormalMultiplier)
		normal = normal.Add(detail).Normalized()
	}

	// alpha marks covered pixels for the light pass
	out[0] = math.NewVec4(albedo.X, albedo.Y, albedo.Z, 1)
	out[1] = normal.ToVec4(occlusion)
	out[2] = math.NewVec4(math.Saturate(roughness), math.Saturate(metallic), emission, 1)
	out[3] = math.NewVec4(f.Velocity.X, f.Velocity.Y, 0, 1)
	return true
}

func lightKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	g := ctx.Global()
	lights, _ := ctx.Constant(metadata.CB_SLOT_PASS).(metadata.LightBuffer)

	albedo := ctx.Fetch(0, f.UV)
	if albedo.W == 0 {
		out[0] = opaque(rgb(ctx.Sample(7, f.UV)))
		return true
	}
	normal := rgb(ctx.Fetch(1, f.UV)).Normalized()
	depth := ctx.Fetch(2, f.UV).X
	material := ctx.Fetch(3, f.UV)
	shadow := float32(1)
	if ctx.HasTexture(4) {
		shadow = ctx.Sample(4, f.UV).X
	}
	ao := float32(1)
	if ctx.HasTexture(5) {
		ao = ctx.Sample(5, f.UV).X
	}

	world := worldFromDepth(g, f.UV, depth)
	view := g.CameraPosition.Sub(world).Normalized()
	base := rgb(albedo)
	roughness := material.X
	metallic := material.Y
	nv := math.Saturate(normal.Dot(view))

	ambient := base.MulScalar(lights.AmbientIntensity * ao)
	if ctx.HasTexture(8) {
		brdf := ctx.Sample(8, math.NewVec2(nv, roughness))
		ambient = ambient.MulScalar(brdf.X + brdf.Y)
	}
	color := ambient

	specularColor := math.NewVec3(0.04, 0.04, 0.04).MulScalar(1 - metallic).Add(base.MulScalar(metallic))
	shininess := (1-roughness)*(1-roughness)*128 + 2
	for i := uint32(0); i < lights.Count && i < metadata.MaxLights; i++ {
		l := lights.Lights[i]
		var direction math.Vec3
		attenuation := float32(1)
		switch l.Type {
		case metadata.LIGHT_TYPE_DIRECTIONAL:
			direction = l.Direction.MulScalar(-1).Normalized()
			if l.CastShadows {
				attenuation *= shadow
			}
		case metadata.LIGHT_TYPE_POINT, metadata.LIGHT_TYPE_SPOT:
			toLight := l.Position.Sub(world)
			distance := toLight.Length()
			if distance == 0 || l.Range <= 0 {
				continue
			}
			direction = toLight.MulScalar(1 / distance)
			falloff := math.Saturate(1 - distance/l.Range)
			attenuation = falloff * falloff
			if l.Type == metadata.LIGHT_TYPE_SPOT {
				cutoff := cos(l.Angle * 0.5)
				theta := direction.MulScalar(-1).Dot(l.Direction.Normalized())
				if theta < cutoff {
					continue
				}
				attenuation *= math.Saturate((theta - cutoff) / max(1-cutoff, 1e-4))
			}
		}
		nl := normal.Dot(direction)
		if nl <= 0 || attenuation <= 0 {
			continue
		}
		radiance := rgb(l.Color).MulScalar(l.Intensity * attenuation * nl)
		half := direction.Add(view).Normalized()
		specular := specularColor.MulScalar(math.Pow(max(normal.Dot(half), 0), shininess) * (1 - roughness))
		diffuse := base.MulScalar(1 - metallic)
		color = color.Add(diffuse.Add(specular).Mul(radiance))
	}

	color = color.Add(base.MulScalar(material.Z))
	if lights.SSR {
		reflection := rgb(ctx.Sample(6, f.UV))
		color = color.Add(reflection.MulScalar((1 - roughness) * metallic * 0.25))
	}
	out[0] = opaque(color)
	return true
}

func transparentKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	tb, _ := ctx.Constant(metadata.CB_SLOT_PASS).(metadata.TransparencyBuffer)
	l := tb.LightDirection.MulScalar(-1).Normalized()
	v := tb.CameraPosition.Sub(f.Position).Normalized()
	nl := max(f.Normal.Dot(l), 0)
	half := l.Add(v).Normalized()
	shininess := (1-tb.Roughness)*(1-tb.Roughness)*128 + 2
	specular := math.Pow(max(f.Normal.Dot(half), 0), shininess) * (1 - tb.Roughness)
	c := rgb(tb.Color).MulScalar(0.2 + nl).Add(math.NewVec3One().MulScalar(specular))
	out[0] = c.ToVec4(tb.Color.W)
	return true
}

func shadowMappingKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	g := ctx.Global()
	sb, _ := ctx.Constant(metadata.CB_SLOT_PASS).(metadata.ShadowBuffer)
	depth := ctx.Fetch(1, f.UV).X
	out[0] = math.NewVec4One()
	if depth >= 1 {
		return true
	}
	normal := rgb(ctx.Fetch(0, f.UV))
	world := worldFromDepth(g, f.UV, depth).Add(normal.MulScalar(0.02))
	w, h := ctx.TextureSize(2)
	if w == 0 {
		return true
	}

	for i := 0; i < int(sb.CascadeCount) && i < metadata.MaxCascades; i++ {
		p := world.ToVec4(1).Transform(sb.LightViewProjection[i])
		if p.W <= 0 {
			continue
		}
		nx, ny, nz := p.X/p.W, p.Y/p.W, p.Z/p.W
		if nx < -1 || nx > 1 || ny < -1 || ny > 1 || nz < -1 || nz > 1 {
			continue
		}
		x := int((nx*0.5 + 0.5) * float32(w))
		y := int((0.5 - ny*0.5) * float32(h))
		z := nz*0.5 + 0.5
		var lit float32
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if z-sb.Bias <= ctx.LoadSlice(2, i, x+dx, y+dy).X {
					lit++
				}
			}
		}
		lit /= 9
		out[0] = math.NewVec4(lit, lit, lit, 1)
		return true
	}
	return true
}

func ssaoKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	g := ctx.Global()
	out[0] = math.NewVec4One()
	depth := ctx.Fetch(1, f.UV).X
	if depth >= 1 {
		return true
	}
	p := worldFromDepth(g, f.UV, depth)
	n := rgb(ctx.Fetch(0, f.UV)).Normalized()
	texel := ctx.TexelSize(1)

	var occlusion float32
	samples := 0
	for k := 0; k < 8; k++ {
		angle := float32(k) * math.K_PI / 4
		for _, radius := range [2]float32{3, 7} {
			uv := math.NewVec2(f.UV.X+cos(angle)*radius*texel.X, f.UV.Y+sin(angle)*radius*texel.Y)
			d := ctx.Fetch(1, uv).X
			samples++
			if d >= 1 {
				continue
			}
			v := worldFromDepth(g, uv, d).Sub(p)
			distance := v.Length()
			if distance < 1e-4 {
				continue
			}
			occlusion += max(n.Dot(v.MulScalar(1/distance))-0.1, 0) / (1 + distance*distance)
		}
	}
	ao := 1 - math.Saturate(occlusion/float32(samples)*2)
	out[0] = math.NewVec4(ao, ao, ao, 1)
	return true
}

func gaussianWeight(offset int, sigma float32) float32 {
	x := float32(offset)
	return math.Exp(-(x * x) / (2 * sigma * sigma))
}

func blurSetup(ctx *DrawContext) (metadata.BlurBuffer, int, int, int) {
	bb, _ := ctx.Constant(metadata.CB_SLOT_PASS).(metadata.BlurBuffer)
	if bb.Sigma <= 0 {
		bb.Sigma = 2
	}
	radius := math.Clamp(int(bb.Sigma*2+0.5), 1, 6)
	return bb, int(bb.Direction.X), int(bb.Direction.Y), radius
}

func blurGaussianKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	bb, dx, dy, radius := blurSetup(ctx)
	var sum math.Vec4
	var total float32
	for i := -radius; i <= radius; i++ {
		w := gaussianWeight(i, bb.Sigma)
		sum = sum.Add(ctx.Load(0, f.X+i*dx, f.Y+i*dy).MulScalar(w))
		total += w
	}
	out[0] = sum.MulScalar(1 / total)
	return true
}

func blurBilateralKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	bb, dx, dy, radius := blurSetup(ctx)
	res := ctx.Resolution()
	centerDepth := ctx.Fetch(1, f.UV).X
	centerNormal := rgb(ctx.Fetch(2, f.UV))
	var sum math.Vec4
	var total float32
	for i := -radius; i <= radius; i++ {
		x := f.X + i*dx
		y := f.Y + i*dy
		uv := math.NewVec2((float32(x)+0.5)/res.X, (float32(y)+0.5)/res.Y)
		d := ctx.Fetch(1, uv).X
		n := rgb(ctx.Fetch(2, uv))
		w := gaussianWeight(i, bb.Sigma)
		w *= math.Exp(-abs(d-centerDepth) * 500)
		w *= math.Pow(math.Saturate(n.Dot(centerNormal)), 8)
		if i == 0 {
			w = 1
		}
		sum = sum.Add(ctx.Load(0, x, y).MulScalar(w))
		total += w
	}
	out[0] = sum.MulScalar(1 / total)
	return true
}

func taaKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	current := ctx.Load(1, f.X, f.Y)
	velocity := ctx.Fetch(2, f.UV)
	uv := math.NewVec2(f.UV.X-velocity.X, f.UV.Y-velocity.Y)
	if uv.X < 0 || uv.X > 1 || uv.Y < 0 || uv.Y > 1 {
		out[0] = current
		return true
	}
	history := ctx.Sample(0, uv)
	if history.W == 0 {
		out[0] = current
		return true
	}

	low := current
	high := current
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			c := ctx.Load(1, f.X+dx, f.Y+dy)
			low = math.Vec4{X: min(low.X, c.X), Y: min(low.Y, c.Y), Z: min(low.Z, c.Z), W: min(low.W, c.W)}
			high = math.Vec4{X: max(high.X, c.X), Y: max(high.Y, c.Y), Z: max(high.Z, c.Z), W: max(high.W, c.W)}
		}
	}
	history = math.Vec4{
		X: math.Clamp(history.X, low.X, high.X),
		Y: math.Clamp(history.Y, low.Y, high.Y),
		Z: math.Clamp(history.Z, low.Z, high.Z),
		W: 1,
	}
	out[0] = history.Lerp(current, 0.1)
	out[0].W = 1
	return true
}

func downsampleKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	t := ctx.TexelSize(0)
	sum := ctx.Sample(0, math.NewVec2(f.UV.X-t.X, f.UV.Y-t.Y)).
		Add(ctx.Sample(0, math.NewVec2(f.UV.X+t.X, f.UV.Y-t.Y))).
		Add(ctx.Sample(0, math.NewVec2(f.UV.X-t.X, f.UV.Y+t.Y))).
		Add(ctx.Sample(0, math.NewVec2(f.UV.X+t.X, f.UV.Y+t.Y)))
	out[0] = sum.MulScalar(0.25)
	return true
}

func bloomBrightKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	c := rgb(ctx.Sample(0, f.UV))
	l := luminance(c)
	out[0] = opaque(c.MulScalar(max(l-1, 0) / max(l, 1e-4)))
	return true
}

func bloomBlendKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	g := ctx.Global()
	frame := ctx.Load(0, f.X, f.Y)
	bloom := rgb(ctx.Sample(1, f.UV)).MulScalar(g.BloomIntensity)
	out[0] = rgb(frame).Add(bloom).ToVec4(frame.W)
	return true
}

func motionBlurKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	g := ctx.Global()
	v := ctx.Fetch(1, f.UV)
	velocity := math.NewVec2(v.X, v.Y).MulScalar(g.MotionBlurStrength)
	if velocity.Length() < 1e-6 {
		out[0] = ctx.Load(0, f.X, f.Y)
		return true
	}
	const taps = 8
	var sum math.Vec4
	for i := 0; i < taps; i++ {
		t := float32(i)/float32(taps-1) - 0.5
		sum = sum.Add(ctx.Sample(0, f.UV.Sub(velocity.MulScalar(t))))
	}
	out[0] = sum.MulScalar(1.0 / taps)
	return true
}

var bayer4x4 = [16]float32{0, 8, 2, 10, 12, 4, 14, 6, 3, 11, 1, 9, 15, 7, 13, 5}

func ditheringKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	c := ctx.Load(0, f.X, f.Y)
	noise := (bayer4x4[(f.Y%4)*4+f.X%4]/16 - 0.5) / 255
	out[0] = math.Vec4{X: c.X + noise, Y: c.Y + noise, Z: c.Z + noise, W: c.W}
	return true
}

func uncharted2(x float32) float32 {
	const a, b, c, d, e, f = 0.15, 0.50, 0.10, 0.20, 0.02, 0.30
	return ((x*(a*x+c*b) + d*e) / (x*(a*x+b) + d*f)) - e/f
}

// ToneMap applies a tone mapping operator to a linear HDR value.
func ToneMap(operator metadata.ToneMapping, x float32) float32 {
	x = max(x, 0)
	switch operator {
	case metadata.TONEMAPPING_ACES:
		return math.Saturate((x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14))
	case metadata.TONEMAPPING_REINHARD:
		return x / (1 + x)
	case metadata.TONEMAPPING_UNCHARTED2:
		const white = 11.2
		return uncharted2(x*2) / uncharted2(white)
	}
	return x
}

func toneMappingKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	g := ctx.Global()
	exposure := g.Exposure
	if exposure <= 0 {
		exposure = 1
	}
	c := ctx.Load(0, f.X, f.Y)
	out[0] = math.Vec4{
		X: ToneMap(g.ToneMapping, c.X*exposure),
		Y: ToneMap(g.ToneMapping, c.Y*exposure),
		Z: ToneMap(g.ToneMapping, c.Z*exposure),
		W: c.W,
	}
	return true
}

func lumaKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	c := rgb(ctx.Load(0, f.X, f.Y))
	clamped := math.NewVec3(math.Saturate(c.X), math.Saturate(c.Y), math.Saturate(c.Z))
	out[0] = c.ToVec4(luminance(clamped))
	return true
}

func fxaaKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	center := ctx.Load(0, f.X, f.Y)
	north := ctx.Load(0, f.X, f.Y-1)
	south := ctx.Load(0, f.X, f.Y+1)
	east := ctx.Load(0, f.X+1, f.Y)
	west := ctx.Load(0, f.X-1, f.Y)
	lumaMin := min(center.W, min(min(north.W, south.W), min(east.W, west.W)))
	lumaMax := max(center.W, max(max(north.W, south.W), max(east.W, west.W)))
	if lumaMax-lumaMin < max(0.0312, lumaMax*0.125) {
		out[0] = opaque(rgb(center))
		return true
	}
	blend := rgb(center).MulScalar(0.5).
		Add(rgb(north).Add(rgb(south)).Add(rgb(east)).Add(rgb(west)).MulScalar(0.125))
	out[0] = opaque(blend)
	return true
}

func sharpeningKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	g := ctx.Global()
	c := ctx.Load(0, f.X, f.Y)
	neighbours := ctx.Load(0, f.X, f.Y-1).
		Add(ctx.Load(0, f.X, f.Y+1)).
		Add(ctx.Load(0, f.X-1, f.Y)).
		Add(ctx.Load(0, f.X+1, f.Y))
	detail := rgb(c).MulScalar(4).Sub(rgb(neighbours))
	s := rgb(c).Add(detail.MulScalar(g.SharpenStrength * 0.25))
	out[0] = math.Vec4{X: max(s.X, 0), Y: max(s.Y, 0), Z: max(s.Z, 0), W: c.W}
	return true
}

func chromaticAberrationKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	g := ctx.Global()
	shift := math.NewVec2(f.UV.X-0.5, f.UV.Y-0.5).MulScalar(0.004 * g.ChromaticAberration)
	c := ctx.Load(0, f.X, f.Y)
	out[0] = math.Vec4{
		X: ctx.Sample(0, f.UV.Add(shift)).X,
		Y: c.Y,
		Z: ctx.Sample(0, f.UV.Sub(shift)).Z,
		W: c.W,
	}
	return true
}

func gammaKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	g := ctx.Global()
	gamma := g.Gamma
	if gamma <= 0 {
		gamma = 2.2
	}
	c := ctx.Load(0, f.X, f.Y)
	inv := 1 / gamma
	out[0] = math.Vec4{
		X: math.Pow(max(c.X, 0), inv),
		Y: math.Pow(max(c.Y, 0), inv),
		Z: math.Pow(max(c.Z, 0), inv),
		W: c.W,
	}
	return true
}

func colorKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	out[0] = f.Colour
	return true
}

func fontKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	coverage := ctx.Sample(0, f.UV).W
	if coverage <= 0 {
		return false
	}
	out[0] = rgb(f.Colour).ToVec4(f.Colour.W * coverage)
	return true
}

func debugNormalKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	n := rgb(ctx.Fetch(0, f.UV))
	out[0] = opaque(n.MulScalar(0.5).Add(math.NewVec3(0.5, 0.5, 0.5)))
	return true
}

func debugVelocityKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	v := ctx.Fetch(0, f.UV)
	out[0] = math.NewVec4(math.Saturate(abs(v.X)*100), math.Saturate(abs(v.Y)*100), 0, 1)
	return true
}

func debugDepthKernel(ctx *DrawContext, f *Fragment, out outputs) bool {
	g := ctx.Global()
	d := ctx.Fetch(0, f.UV).X
	near, far := g.CameraNear, g.CameraFar
	if far <= near {
		out[0] = math.NewVec4(d, d, d, 1)
		return true
	}
	z := d*2 - 1
	linear := (2 * near * far) / (far + near - z*(far-near))
	v := math.Saturate(linear / far)
	out[0] = math.NewVec4(v, v, v, 1)
	return true
}

package metadata

import (
	"fmt"
	"sort"
	"strings"
)

/** @brief Bit set of post-process and gizmo toggles. */
type RenderFlags uint32

const (
	RENDER_POSTPROCESS_SSAO RenderFlags = 1 << iota
	RENDER_POSTPROCESS_TAA
	RENDER_POSTPROCESS_BLOOM
	RENDER_POSTPROCESS_MOTION_BLUR
	RENDER_POSTPROCESS_DITHERING
	RENDER_POSTPROCESS_FXAA
	RENDER_POSTPROCESS_SHARPENING
	RENDER_POSTPROCESS_CHROMATIC_ABERRATION
	RENDER_POSTPROCESS_SSR
	RENDER_GIZMO_LIGHTS
	RENDER_GIZMO_TRANSFORM
	RENDER_GIZMO_AABB
	RENDER_GIZMO_GRID
	RENDER_GIZMO_PICKING_RAY
	RENDER_GIZMO_PERFORMANCE_METRICS
)

var renderFlagNames = map[string]RenderFlags{
	"ssao":                 RENDER_POSTPROCESS_SSAO,
	"taa":                  RENDER_POSTPROCESS_TAA,
	"bloom":                RENDER_POSTPROCESS_BLOOM,
	"motion_blur":          RENDER_POSTPROCESS_MOTION_BLUR,
	"dithering":            RENDER_POSTPROCESS_DITHERING,
	"fxaa":                 RENDER_POSTPROCESS_FXAA,
	"sharpening":           RENDER_POSTPROCESS_SHARPENING,
	"chromatic_aberration": RENDER_POSTPROCESS_CHROMATIC_ABERRATION,
	"ssr":                  RENDER_POSTPROCESS_SSR,
	"gizmo_lights":         RENDER_GIZMO_LIGHTS,
	"gizmo_transform":      RENDER_GIZMO_TRANSFORM,
	"gizmo_aabb":           RENDER_GIZMO_AABB,
	"gizmo_grid":           RENDER_GIZMO_GRID,
	"gizmo_picking_ray":    RENDER_GIZMO_PICKING_RAY,
	"performance_metrics":  RENDER_GIZMO_PERFORMANCE_METRICS,
}

// RenderFlagNames lists every flag name in bit order.
func RenderFlagNames() []string {
	names := make([]string, 0, len(renderFlagNames))
	for n := range renderFlagNames {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		return renderFlagNames[names[i]] < renderFlagNames[names[j]]
	})
	return names
}

// ParseRenderFlags ORs together the named flags.
func ParseRenderFlags(names []string) (RenderFlags, error) {
	var flags RenderFlags
	for _, n := range names {
		f, ok := renderFlagNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, fmt.Errorf("unknown render flag %q", n)
		}
		flags |= f
	}
	return flags, nil
}

type ToneMapping int

const (
	TONEMAPPING_OFF ToneMapping = iota
	TONEMAPPING_ACES
	TONEMAPPING_REINHARD
	TONEMAPPING_UNCHARTED2
)

func ParseToneMapping(name string) (ToneMapping, error) {
	switch strings.ToLower(name) {
	case "", "off":
		return TONEMAPPING_OFF, nil
	case "aces":
		return TONEMAPPING_ACES, nil
	case "reinhard":
		return TONEMAPPING_REINHARD, nil
	case "uncharted2":
		return TONEMAPPING_UNCHARTED2, nil
	}
	return TONEMAPPING_OFF, fmt.Errorf("unknown tone mapping operator %q", name)
}

/** @brief Selects which intermediate buffer the debug pass blits. */
type RendererDebugBuffer int

const (
	RENDERER_DEBUG_NONE RendererDebugBuffer = iota
	RENDERER_DEBUG_ALBEDO
	RENDERER_DEBUG_NORMAL
	RENDERER_DEBUG_MATERIAL
	RENDERER_DEBUG_VELOCITY
	RENDERER_DEBUG_DEPTH
	RENDERER_DEBUG_SSAO
	RENDERER_DEBUG_SHADOWS
)

func ParseDebugBuffer(name string) (RendererDebugBuffer, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return RENDERER_DEBUG_NONE, nil
	case "albedo":
		return RENDERER_DEBUG_ALBEDO, nil
	case "normal":
		return RENDERER_DEBUG_NORMAL, nil
	case "material":
		return RENDERER_DEBUG_MATERIAL, nil
	case "velocity":
		return RENDERER_DEBUG_VELOCITY, nil
	case "depth":
		return RENDERER_DEBUG_DEPTH, nil
	case "ssao":
		return RENDERER_DEBUG_SSAO, nil
	case "shadows":
		return RENDERER_DEBUG_SHADOWS, nil
	}
	return RENDERER_DEBUG_NONE, fmt.Errorf("unknown debug buffer %q", name)
}

/**
 * @brief Per-frame renderer configuration. Options is a value type: the
 * renderer reads one snapshot per frame and never mutates it.
 */
type Options struct {
	Flags       RenderFlags
	ToneMapping ToneMapping
	DebugBuffer RendererDebugBuffer

	Exposure            float32
	Gamma               float32
	BloomIntensity      float32
	SharpenStrength     float32
	MotionBlurStrength  float32
	ChromaticAberration float32
	ShadowBias          float32
}

func DefaultOptions() Options {
	return Options{
		Flags: RENDER_POSTPROCESS_BLOOM |
			RENDER_POSTPROCESS_FXAA |
			RENDER_POSTPROCESS_SSAO |
			RENDER_POSTPROCESS_TAA |
			RENDER_POSTPROCESS_SHARPENING |
			RENDER_POSTPROCESS_DITHERING |
			RENDER_GIZMO_LIGHTS |
			RENDER_GIZMO_TRANSFORM |
			RENDER_GIZMO_GRID,
		ToneMapping:         TONEMAPPING_ACES,
		DebugBuffer:         RENDERER_DEBUG_NONE,
		Exposure:            1.0,
		Gamma:               2.2,
		BloomIntensity:      0.2,
		SharpenStrength:     1.0,
		MotionBlurStrength:  1.0,
		ChromaticAberration: 1.0,
		ShadowBias:          0.0005,
	}
}

func (o Options) IsSet(flag RenderFlags) bool {
	return o.Flags&flag != 0
}

// With returns a copy with flag enabled.
func (o Options) With(flag RenderFlags) Options {
	o.Flags |= flag
	return o
}

// Without returns a copy with flag disabled.
func (o Options) Without(flag RenderFlags) Options {
	o.Flags &^= flag
	return o
}

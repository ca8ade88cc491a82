package engine

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/rhi"
)

type WindowConfig struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Starting width of the back buffer.
	Width uint32 `toml:"width"`
	// Starting height of the back buffer.
	Height uint32 `toml:"height"`
	// Frames rendered by Run before it returns, 0 runs until quit.
	Frames uint32 `toml:"frames"`
	// TIFF file the final frame is written to when Run returns, if set.
	Output string `toml:"output"`
}

type RendererConfig struct {
	Flags               []string `toml:"flags"`
	ToneMapping         string   `toml:"tone_mapping"`
	DebugBuffer         string   `toml:"debug_buffer"`
	Exposure            float32  `toml:"exposure"`
	Gamma               float32  `toml:"gamma"`
	BloomIntensity      float32  `toml:"bloom_intensity"`
	SharpenStrength     float32  `toml:"sharpen_strength"`
	MotionBlurStrength  float32  `toml:"motion_blur_strength"`
	ChromaticAberration float32  `toml:"chromatic_aberration"`
	ShadowBias          float32  `toml:"shadow_bias"`
	AmbientIntensity    float32  `toml:"ambient_intensity"`
	CommandCapacity     int      `toml:"command_capacity"`
}

type JobsConfig struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

type AssetsConfig struct {
	Directory string `toml:"directory"`
	HotReload bool   `toml:"hot_reload"`
	// Bitmap font under fonts/ used by the metrics overlay, the builtin font when empty.
	Font string `toml:"font"`
}

/**
 * @brief Everything the engine needs before the first frame, usually read
 * from a TOML file.
 */
type ApplicationConfig struct {
	LogLevel    string         `toml:"log_level"`
	Application WindowConfig   `toml:"application"`
	Renderer    RendererConfig `toml:"renderer"`
	Jobs        JobsConfig     `toml:"jobs"`
	Assets      AssetsConfig   `toml:"assets"`
}

// DefaultApplicationConfig mirrors the renderer defaults.
func DefaultApplicationConfig() *ApplicationConfig {
	o := metadata.DefaultOptions()
	return &ApplicationConfig{
		LogLevel: "info",
		Application: WindowConfig{
			Name:   "Lumen",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			Flags:               flagNames(o.Flags),
			ToneMapping:         "aces",
			DebugBuffer:         "none",
			Exposure:            o.Exposure,
			Gamma:               o.Gamma,
			BloomIntensity:      o.BloomIntensity,
			SharpenStrength:     o.SharpenStrength,
			MotionBlurStrength:  o.MotionBlurStrength,
			ChromaticAberration: o.ChromaticAberration,
			ShadowBias:          o.ShadowBias,
		},
		Jobs: JobsConfig{
			Workers:   4,
			QueueSize: 256,
		},
		Assets: AssetsConfig{
			Directory: "assets",
		},
	}
}

func flagNames(flags metadata.RenderFlags) []string {
	names := []string{}
	for _, n := range metadata.RenderFlagNames() {
		f, _ := metadata.ParseRenderFlags([]string{n})
		if flags&f != 0 {
			names = append(names, n)
		}
	}
	return names
}

// LoadApplicationConfig reads path over the defaults.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config, err := ParseApplicationConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// ParseApplicationConfig decodes TOML over the defaults and validates it.
func ParseApplicationConfig(data []byte) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(config); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%s: %w", strict.String(), core.ErrInvalidConfig)
		}
		var decode *toml.DecodeError
		if errors.As(err, &decode) {
			row, col := decode.Position()
			return nil, fmt.Errorf("line %d column %d: %s: %w", row, col, decode.Error(), core.ErrInvalidConfig)
		}
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	if err := rhi.ValidateResolution(c.Application.Width, c.Application.Height); err != nil {
		return err
	}
	if c.Jobs.Workers < 1 {
		return fmt.Errorf("jobs.workers must be at least 1: %w", core.ErrInvalidConfig)
	}
	if _, err := c.RenderOptions(); err != nil {
		return err
	}
	return nil
}

// RenderOptions converts the [renderer] table into the per-frame options.
func (c *ApplicationConfig) RenderOptions() (metadata.Options, error) {
	flags, err := metadata.ParseRenderFlags(c.Renderer.Flags)
	if err != nil {
		return metadata.Options{}, fmt.Errorf("renderer.flags: %s: %w", err.Error(), core.ErrInvalidConfig)
	}
	tonemapping, err := metadata.ParseToneMapping(c.Renderer.ToneMapping)
	if err != nil {
		return metadata.Options{}, fmt.Errorf("renderer.tone_mapping: %s: %w", err.Error(), core.ErrInvalidConfig)
	}
	debug, err := metadata.ParseDebugBuffer(c.Renderer.DebugBuffer)
	if err != nil {
		return metadata.Options{}, fmt.Errorf("renderer.debug_buffer: %s: %w", err.Error(), core.ErrInvalidConfig)
	}
	if c.Renderer.Gamma <= 0 {
		return metadata.Options{}, fmt.Errorf("renderer.gamma must be positive: %w", core.ErrInvalidConfig)
	}
	return metadata.Options{
		Flags:               flags,
		ToneMapping:         tonemapping,
		DebugBuffer:         debug,
		Exposure:            c.Renderer.Exposure,
		Gamma:               c.Renderer.Gamma,
		BloomIntensity:      c.Renderer.BloomIntensity,
		SharpenStrength:     c.Renderer.SharpenStrength,
		MotionBlurStrength:  c.Renderer.MotionBlurStrength,
		ChromaticAberration: c.Renderer.ChromaticAberration,
		ShadowBias:          c.Renderer.ShadowBias,
	}, nil
}

// Marshal writes the config back as TOML.
func (c *ApplicationConfig) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

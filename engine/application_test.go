package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

func TestParseApplicationConfigOverridesDefaults(t *testing.T) {
	config, err := ParseApplicationConfig([]byte(`
log_level = "warn"

[application]
name = "Sponza"
width = 640
height = 360
frames = 3

[renderer]
flags = ["bloom", "fxaa"]
tone_mapping = "reinhard"
exposure = 1.5
`))
	require.NoError(t, err)
	assert.Equal(t, "warn", config.LogLevel)
	assert.Equal(t, "Sponza", config.Application.Name)
	assert.EqualValues(t, 640, config.Application.Width)
	assert.EqualValues(t, 3, config.Application.Frames)
	// untouched tables keep their defaults
	assert.Equal(t, 4, config.Jobs.Workers)
	assert.Equal(t, "assets", config.Assets.Directory)

	options, err := config.RenderOptions()
	require.NoError(t, err)
	assert.Equal(t, metadata.RENDER_POSTPROCESS_BLOOM|metadata.RENDER_POSTPROCESS_FXAA, options.Flags)
	assert.Equal(t, metadata.TONEMAPPING_REINHARD, options.ToneMapping)
	assert.InDelta(t, 1.5, options.Exposure, 1e-6)
	assert.InDelta(t, 2.2, options.Gamma, 1e-6)
}

func TestParseApplicationConfigRejects(t *testing.T) {
	tests := map[string]string{
		"unknown field":    "[renderer]\nlens_flare = true\n",
		"unknown flag":     "[renderer]\nflags = [\"lens_flare\"]\n",
		"unknown operator": "[renderer]\ntone_mapping = \"filmic\"\n",
		"unknown debug":    "[renderer]\ndebug_buffer = \"stencil\"\n",
		"zero gamma":       "[renderer]\ngamma = 0.0\n",
		"no workers":       "[jobs]\nworkers = 0\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseApplicationConfig([]byte(data))
			assert.ErrorIs(t, err, core.ErrInvalidConfig)
		})
	}

	_, err := ParseApplicationConfig([]byte("[application]\nwidth = 0\n"))
	assert.ErrorIs(t, err, core.ErrInvalidResolution)
	_, err = ParseApplicationConfig([]byte("[application]\nwidth = \"wide\"\n"))
	assert.Error(t, err)
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	defaults := DefaultApplicationConfig()
	require.NoError(t, defaults.Validate())
	options, err := defaults.RenderOptions()
	require.NoError(t, err)
	assert.Equal(t, metadata.DefaultOptions().Flags, options.Flags)

	data, err := defaults.Marshal()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "lumen.toml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := LoadApplicationConfig(path)
	require.NoError(t, err)
	assert.Equal(t, defaults, loaded)

	_, err = LoadApplicationConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

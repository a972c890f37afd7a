package vkrs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.FramesInFlight)
	assert.Equal(t, vk.FrontFaceCounterClockwise, cfg.frontFace())
}

func TestParseConfigOverlaysDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
width = 640
front_face = "cw"
fov = 60.0

[[model]]
mesh = "cube.obj"
texture = "cube.png"
position = [1.0, 2.0, 3.0]
yaw = 45.0
`))
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 720, cfg.Height)
	assert.Equal(t, float32(60), cfg.Fov)
	assert.Equal(t, vk.FrontFaceClockwise, cfg.frontFace())
	require.Len(t, cfg.Models, 1)
	assert.Equal(t, [3]float32{1, 2, 3}, cfg.Models[0].Position)
	assert.Equal(t, float32(45), cfg.Models[0].Yaw)
}

func TestParseConfigRejectsUnknownKeys(t *testing.T) {
	_, err := ParseConfig([]byte("widht = 10\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFatalConfig))
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"zero width":      func(c *Config) { c.Width = 0 },
		"no frames":       func(c *Config) { c.FramesInFlight = 0 },
		"no models":       func(c *Config) { c.MaxModels = 0 },
		"no shader":       func(c *Config) { c.FragmentShader = "" },
		"fov too wide":    func(c *Config) { c.Fov = 180 },
		"near after far":  func(c *Config) { c.Near = 2000 },
		"negative near":   func(c *Config) { c.Near = -1 },
		"bad front face":  func(c *Config) { c.FrontFace = "left" },
		"model no mesh":   func(c *Config) { c.Models = []ModelConfig{{Texture: "a.png"}} },
		"too many models": func(c *Config) { c.MaxModels = 1; c.Models = make([]ModelConfig, 2) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFatalConfig))
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vkrs.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_models = 4\n"), 0644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxModels)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, ErrFatalConfig))
}

func TestSampleConfigParses(t *testing.T) {
	cfg, err := LoadConfig("vkrs.toml")
	require.NoError(t, err)
	assert.Len(t, cfg.Models, 2)
	assert.True(t, cfg.Validation)
}

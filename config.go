package vkrs

import (
	"bytes"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	vk "github.com/vulkan-go/vulkan"
)

//Config carries every tunable of the renderer. The zero value is not usable, start from DefaultConfig
//and overlay a file with LoadConfig.
type Config struct {
	AppName        string `toml:"app_name"`
	Width          int    `toml:"width"`
	Height         int    `toml:"height"`
	FramesInFlight int    `toml:"frames_in_flight"`
	//Descriptor pool capacity for per model sets
	MaxModels int `toml:"max_models"`

	ShaderDir      string `toml:"shader_dir"`
	VertexShader   string `toml:"vertex_shader"`
	FragmentShader string `toml:"fragment_shader"`

	Validation       bool     `toml:"validation"`
	Layers           []string `toml:"layers"`
	DeviceExtensions []string `toml:"device_extensions"`
	PreferMailbox    bool     `toml:"prefer_mailbox"`
	PreferDiscrete   bool     `toml:"prefer_discrete"`

	//ccw or cw, has to agree with the winding the mesh loader produces
	FrontFace string  `toml:"front_face"`
	Fov       float32 `toml:"fov"`
	Near      float32 `toml:"near"`
	Far       float32 `toml:"far"`

	LogDir string        `toml:"log_dir"`
	Models []ModelConfig `toml:"model"`
}

//ModelConfig names the assets of one model and where it starts in the world
type ModelConfig struct {
	Mesh     string     `toml:"mesh"`
	Texture  string     `toml:"texture"`
	Position [3]float32 `toml:"position"`
	Yaw      float32    `toml:"yaw"`
	Pitch    float32    `toml:"pitch"`
	Roll     float32    `toml:"roll"`
}

const (
	FrontFaceCCW = "ccw"
	FrontFaceCW  = "cw"
)

func DefaultConfig() *Config {
	return &Config{
		AppName:          "vkrs",
		Width:            1280,
		Height:           720,
		FramesInFlight:   2,
		MaxModels:        16,
		ShaderDir:        "shaders",
		VertexShader:     "vert.spv",
		FragmentShader:   "frag.spv",
		Validation:       false,
		Layers:           []string{"VK_LAYER_KHRONOS_validation"},
		DeviceExtensions: []string{},
		PreferMailbox:    true,
		PreferDiscrete:   true,
		FrontFace:        FrontFaceCCW,
		Fov:              90.0,
		Near:             0.1,
		Far:              1000.0,
		LogDir:           ".",
	}
}

//LoadConfig overlays the toml file at path onto the defaults. Unknown keys are rejected so typos
//do not silently fall back to a default.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read config %s", path), ErrFatalConfig)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode config"), ErrFatalConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return configError("window size %dx%d must be positive", c.Width, c.Height)
	case c.FramesInFlight < 1:
		return configError("frames_in_flight must be at least 1, got %d", c.FramesInFlight)
	case c.MaxModels < 1:
		return configError("max_models must be at least 1, got %d", c.MaxModels)
	case c.VertexShader == "" || c.FragmentShader == "":
		return configError("vertex_shader and fragment_shader must be set")
	case c.Fov <= 0 || c.Fov >= 180:
		return configError("fov %v outside (0, 180)", c.Fov)
	case c.Near <= 0 || c.Near >= c.Far:
		return configError("near %v must be positive and below far %v", c.Near, c.Far)
	case c.FrontFace != FrontFaceCCW && c.FrontFace != FrontFaceCW:
		return configError("front_face must be %q or %q, got %q", FrontFaceCCW, FrontFaceCW, c.FrontFace)
	}
	for i, m := range c.Models {
		if m.Mesh == "" || m.Texture == "" {
			return configError("model %d needs both mesh and texture", i)
		}
	}
	if len(c.Models) > c.MaxModels {
		return configError("%d models configured but max_models is %d", len(c.Models), c.MaxModels)
	}
	return nil
}

func (c *Config) frontFace() vk.FrontFace {
	if c.FrontFace == FrontFaceCW {
		return vk.FrontFaceClockwise
	}
	return vk.FrontFaceCounterClockwise
}

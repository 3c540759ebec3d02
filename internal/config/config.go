package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth  = 640
	DefaultHeight = 480
	DefaultTitle  = "HiddenContext"
	DefaultMajor  = 4
	DefaultMinor  = 3

	BackendOpenGL = "opengl"
	BackendCPU    = "cpu"

	FormatText = "text"
	FormatJSON = "json"
)

// Config selects the device and how results are printed. The kernel itself
// is compiled in and never configurable.
type Config struct {
	Backend string        `yaml:"backend"`
	Context ContextConfig `yaml:"context"`
	Output  OutputConfig  `yaml:"output"`
}

// ContextConfig holds the hidden window and context version hints.
type ContextConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	Major  int    `yaml:"major"`
	Minor  int    `yaml:"minor"`
}

type OutputConfig struct {
	Format string `yaml:"format"`
	Plot   bool   `yaml:"plot"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend: BackendOpenGL,
		Context: ContextConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Title:  DefaultTitle,
			Major:  DefaultMajor,
			Minor:  DefaultMinor,
		},
		Output: OutputConfig{
			Format: FormatText,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto overlays the YAML file at path onto a copy of base. Keys missing
// from the file keep base's values.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings that cannot produce a compute-capable context.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOpenGL, BackendCPU:
	default:
		return fmt.Errorf("unknown backend: %q", c.Backend)
	}
	switch c.Output.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown output format: %q", c.Output.Format)
	}
	if c.Context.Width <= 0 || c.Context.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Context.Width, c.Context.Height)
	}
	if !c.Context.SupportsCompute() {
		return fmt.Errorf("OpenGL %s has no compute shaders (need 4.3+)", c.Context.Version())
	}
	return nil
}

// Version formats the requested context version as "major.minor".
func (c ContextConfig) Version() string {
	return fmt.Sprintf("%d.%d", c.Major, c.Minor)
}

// SupportsCompute reports whether the requested version is at least 4.3.
func (c ContextConfig) SupportsCompute() bool {
	return c.Major > 4 || (c.Major == 4 && c.Minor >= 3)
}

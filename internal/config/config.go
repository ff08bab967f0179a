package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/santhosh11wnl/Sai/internal/imaging"
)

// EnvPrefix is the prefix of every environment variable read by ApplyEnv.
const EnvPrefix = "INHIBIT_SIM_"

// Config holds the application configuration
type Config struct {
	Paths      PathsConfig              `yaml:"paths"`
	Simulation SimulationConfig         `yaml:"simulation"`
	Threshold  imaging.ThresholdOptions `yaml:"threshold"`
	Inpaint    InpaintConfig            `yaml:"inpaint"`
	Marker     MarkerConfig             `yaml:"marker"`
	Log        LogConfig                `yaml:"log"`
}

// PathsConfig holds the input and output directories
type PathsConfig struct {
	ImageDir            string `yaml:"image_dir"`
	AnnotationDir       string `yaml:"annotation_dir"`
	OutputImageDir      string `yaml:"output_image_dir"`
	OutputAnnotationDir string `yaml:"output_annotation_dir"`

	// DebugDir receives overlay images of the matches when set.
	DebugDir string `yaml:"debug_dir"`
}

// SimulationConfig holds the matching and batch settings
type SimulationConfig struct {
	CeilingRatio   float64  `yaml:"ceiling_ratio"`
	Engine         string   `yaml:"engine"`
	Seed           int64    `yaml:"seed"`
	Workers        int      `yaml:"workers"`
	TextCategories []string `yaml:"text_categories"`
	OutputPrefix   string   `yaml:"output_prefix"`
}

// InpaintConfig holds the inpainting settings
type InpaintConfig struct {
	Radius float64 `yaml:"radius"`
}

// MarkerConfig holds the appearance of drawn inhibit markers
type MarkerConfig struct {
	Color        string `yaml:"color"`
	MinThickness int    `yaml:"min_thickness"`
	MaxThickness int    `yaml:"max_thickness"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
	Human bool   `yaml:"human"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			ImageDir:            "./images",
			AnnotationDir:       "./annotations",
			OutputImageDir:      "./sim_images",
			OutputAnnotationDir: "./sim_annotations",
		},
		Simulation: SimulationConfig{
			CeilingRatio:   0.8,
			Engine:         "native",
			Seed:           1,
			Workers:        1,
			TextCategories: []string{"gene", "text"},
			OutputPrefix:   "sim_inhibit_",
		},
		Threshold: imaging.DefaultThresholdOptions(),
		Inpaint: InpaintConfig{
			Radius: 3,
		},
		Marker: MarkerConfig{
			Color:        imaging.ColorRandom,
			MinThickness: 2,
			MaxThickness: 4,
		},
		Log: LogConfig{
			Level: "info",
			Human: true,
		},
	}
}

// LoadFromFile loads configuration from a YAML file. Keys missing from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load builds the configuration from defaults, the optional YAML file and the
// environment. A .env file in the working directory is loaded first when
// present; variables already set in the environment win over it.
func Load(filename string) (*Config, error) {
	_ = godotenv.Load()

	config := Default()
	if filename != "" {
		var err error
		if config, err = LoadFromFile(filename); err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides settings from INHIBIT_SIM_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	var errs []error
	parse := func(name string, set func(string) error) {
		if v, ok := lookup(EnvPrefix + name); ok {
			if err := set(strings.TrimSpace(v)); err != nil {
				errs = append(errs, fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err))
			}
		}
	}

	str("IMAGE_DIR", &c.Paths.ImageDir)
	str("ANNOTATION_DIR", &c.Paths.AnnotationDir)
	str("OUTPUT_IMAGE_DIR", &c.Paths.OutputImageDir)
	str("OUTPUT_ANNOTATION_DIR", &c.Paths.OutputAnnotationDir)
	str("DEBUG_DIR", &c.Paths.DebugDir)
	str("ENGINE", &c.Simulation.Engine)
	str("OUTPUT_PREFIX", &c.Simulation.OutputPrefix)
	str("MARKER_COLOR", &c.Marker.Color)
	str("LOG_LEVEL", &c.Log.Level)

	parse("TEXT_CATEGORIES", func(v string) error {
		c.Simulation.TextCategories = splitList(v)
		return nil
	})
	parse("CEILING_RATIO", func(v string) (err error) {
		c.Simulation.CeilingRatio, err = strconv.ParseFloat(v, 64)
		return err
	})
	parse("SEED", func(v string) (err error) {
		c.Simulation.Seed, err = strconv.ParseInt(v, 10, 64)
		return err
	})
	parse("WORKERS", func(v string) (err error) {
		c.Simulation.Workers, err = strconv.Atoi(v)
		return err
	})
	parse("BLOCK_SIZE", func(v string) (err error) {
		c.Threshold.BlockSize, err = strconv.Atoi(v)
		return err
	})
	parse("OFFSET", func(v string) (err error) {
		c.Threshold.Offset, err = strconv.ParseFloat(v, 64)
		return err
	})
	parse("INPAINT_RADIUS", func(v string) (err error) {
		c.Inpaint.Radius, err = strconv.ParseFloat(v, 64)
		return err
	})
	parse("MIN_THICKNESS", func(v string) (err error) {
		c.Marker.MinThickness, err = strconv.Atoi(v)
		return err
	})
	parse("MAX_THICKNESS", func(v string) (err error) {
		c.Marker.MaxThickness, err = strconv.Atoi(v)
		return err
	})
	parse("LOG_HUMAN", func(v string) (err error) {
		c.Log.Human, err = strconv.ParseBool(v)
		return err
	})

	return errors.Join(errs...)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Simulation.CeilingRatio <= 0 || c.Simulation.CeilingRatio > 1 {
		return fmt.Errorf("simulation.ceiling_ratio must be in (0, 1], got %v", c.Simulation.CeilingRatio)
	}

	if c.Simulation.Workers < 1 {
		return fmt.Errorf("simulation.workers must be positive")
	}

	if c.Simulation.OutputPrefix == "" {
		return fmt.Errorf("simulation.output_prefix cannot be empty")
	}

	if err := c.Threshold.Validate(); err != nil {
		return fmt.Errorf("threshold: %w", err)
	}

	if c.Inpaint.Radius <= 0 {
		return fmt.Errorf("inpaint.radius must be positive")
	}

	if c.Marker.MinThickness < 1 || c.Marker.MaxThickness < c.Marker.MinThickness {
		return fmt.Errorf("marker thickness range %d-%d is invalid", c.Marker.MinThickness, c.Marker.MaxThickness)
	}

	if _, err := imaging.NewMarkerPalette(c.Marker.Color); err != nil {
		return fmt.Errorf("marker.color: %w", err)
	}

	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("log.level %q is not supported", c.Log.Level)
	}

	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

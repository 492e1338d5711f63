package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config represents the main configuration
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	World    WorldConfig    `yaml:"world"`
	Noise    NoiseConfig    `yaml:"noise"`
	Water    WaterConfig    `yaml:"water"`
	Assets   AssetsConfig   `yaml:"assets"`
	Log      LogConfig      `yaml:"log"`
}

// GraphicsConfig contains window and frame pacing configuration
type GraphicsConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FrameRate  int    `yaml:"framerate"` // 0 disables the tick limiter
}

// CameraConfig contains the observer camera configuration
type CameraConfig struct {
	FOV              float32    `yaml:"fov"`
	Near             float32    `yaml:"near"`
	Far              float32    `yaml:"far"`
	Start            [3]float32 `yaml:"start"`
	MoveSpeed        float32    `yaml:"move_speed"` // world units per second
	MouseSensitivity float32    `yaml:"mouse_sensitivity"`
	MinClearance     float32    `yaml:"min_clearance"` // height kept above the terrain
}

// WorldConfig contains tile streaming and terrain shading configuration
type WorldConfig struct {
	ViewDistance   int        `yaml:"view_distance"`
	SmoothNormals  bool       `yaml:"smooth_normals"`
	LightDirection [3]float32 `yaml:"light_direction"`
	LightAmbient   [3]float32 `yaml:"light_ambient"`
	LightDiffuse   [3]float32 `yaml:"light_diffuse"`
}

// NoiseConfig contains terrain noise configuration
type NoiseConfig struct {
	LargestFeature float64 `yaml:"largest_feature"`
	Persistence    float64 `yaml:"persistence"`
	Seed           int64   `yaml:"seed"`
	Amplitude      string  `yaml:"amplitude"` // reference, geometric
	Basis          string  `yaml:"basis"`     // simplex, opensimplex
}

// WaterConfig contains water reflection configuration
type WaterConfig struct {
	Height           float32 `yaml:"height"`
	ReflectionWidth  int     `yaml:"reflection_width"`
	ReflectionHeight int     `yaml:"reflection_height"`
	WaveSpeed        float64 `yaml:"wave_speed"`
}

// AssetsConfig names the shader and texture files loaded at start-up
type AssetsConfig struct {
	ShaderDir           string `yaml:"shader_dir"`
	VertexExtension     string `yaml:"vertex_extension"`
	FragmentExtension   string `yaml:"fragment_extension"`
	TextureDir          string `yaml:"texture_dir"`
	TerrainShader       string `yaml:"terrain_shader"`
	WaterShader         string `yaml:"water_shader"`
	GroundTexture       string `yaml:"ground_texture"`
	DisplacementTexture string `yaml:"displacement_texture"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // empty logs to stdout only
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:     1280,
			Height:    720,
			Title:     "OpenWorld - Demo",
			VSync:     true,
			FrameRate: 60,
		},
		Camera: CameraConfig{
			FOV:              70,
			Near:             0.1,
			Far:              1000,
			Start:            [3]float32{16, 20, -16},
			MoveSpeed:        20,
			MouseSensitivity: 0.1,
			MinClearance:     2,
		},
		World: WorldConfig{
			ViewDistance:   4,
			SmoothNormals:  false,
			LightDirection: [3]float32{-0.3, -1, -0.2},
			LightAmbient:   [3]float32{0.1, 0.1, 0.1},
			LightDiffuse:   [3]float32{0.5, 0.5, 0.5},
		},
		Noise: NoiseConfig{
			LargestFeature: 64,
			Persistence:    0.75,
			Seed:           42,
			Amplitude:      "reference",
			Basis:          "simplex",
		},
		Water: WaterConfig{
			Height:           0,
			ReflectionWidth:  1280,
			ReflectionHeight: 720,
			WaveSpeed:        0.01,
		},
		Assets: AssetsConfig{
			ShaderDir:           "assets/shaders",
			VertexExtension:     "vs",
			FragmentExtension:   "fs",
			TextureDir:          "assets/textures",
			TerrainShader:       "terrain",
			WaterShader:         "water",
			GroundTexture:       "grass.png",
			DisplacementTexture: "waterdudv.png",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads the configuration from a file on top of the defaults
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return config, fmt.Errorf("config file not found, using defaults: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return config, fmt.Errorf("error parsing config: %v", err)
	}

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid config %s: %v", filePath, err)
	}

	return config, nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error serializing config: %v", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %v", err)
	}

	return nil
}

// Validate reports the first setting that cannot produce a working world
func (c *Config) Validate() error {
	switch {
	case c.Graphics.Width <= 0 || c.Graphics.Height <= 0:
		return fmt.Errorf("graphics size must be positive, got %dx%d", c.Graphics.Width, c.Graphics.Height)
	case c.Graphics.FrameRate < 0:
		return fmt.Errorf("framerate cannot be negative, got %d", c.Graphics.FrameRate)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("camera planes must satisfy 0 < near < far, got %v/%v", c.Camera.Near, c.Camera.Far)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return fmt.Errorf("camera fov must be in (0, 180), got %v", c.Camera.FOV)
	case c.Camera.MinClearance < 0:
		return fmt.Errorf("camera min_clearance cannot be negative, got %v", c.Camera.MinClearance)
	case c.World.ViewDistance < 1:
		return fmt.Errorf("view distance must be at least 1, got %d", c.World.ViewDistance)
	case c.Noise.LargestFeature <= 1:
		return fmt.Errorf("noise largest_feature must be above 1, got %v", c.Noise.LargestFeature)
	case c.Noise.Persistence <= 0:
		return fmt.Errorf("noise persistence must be positive, got %v", c.Noise.Persistence)
	case c.Water.ReflectionWidth <= 0 || c.Water.ReflectionHeight <= 0:
		return fmt.Errorf("reflection target size must be positive, got %dx%d", c.Water.ReflectionWidth, c.Water.ReflectionHeight)
	}

	assets := map[string]string{
		"shader_dir":           c.Assets.ShaderDir,
		"terrain_shader":       c.Assets.TerrainShader,
		"water_shader":         c.Assets.WaterShader,
		"ground_texture":       c.Assets.GroundTexture,
		"displacement_texture": c.Assets.DisplacementTexture,
	}
	for key, value := range assets {
		if value == "" {
			return fmt.Errorf("assets.%s must be set", key)
		}
	}

	return nil
}

package engine

import (
	"github.com/go-gl/mathgl/mgl32"

	"openworld/internal/noise"
	"openworld/pkg/config"
	"openworld/pkg/graphics"
	"openworld/pkg/terrain"
)

// NoiseParams maps the noise section of cfg onto field parameters
func NoiseParams(cfg *config.Config) noise.Params {
	return noise.Params{
		LargestFeature: cfg.Noise.LargestFeature,
		Persistence:    cfg.Noise.Persistence,
		Seed:           cfg.Noise.Seed,
		Amplitude:      noise.AmplitudePolicy(cfg.Noise.Amplitude),
		Basis:          noise.Basis(cfg.Noise.Basis),
	}
}

// AssetOptions maps the asset, water and light settings of cfg
func AssetOptions(cfg *config.Config) terrain.AssetOptions {
	return terrain.AssetOptions{
		TerrainShader:       cfg.Assets.TerrainShader,
		WaterShader:         cfg.Assets.WaterShader,
		GroundTexture:       cfg.Assets.GroundTexture,
		DisplacementTexture: cfg.Assets.DisplacementTexture,
		WaterHeight:         cfg.Water.Height,
		ReflectionWidth:     cfg.Water.ReflectionWidth,
		ReflectionHeight:    cfg.Water.ReflectionHeight,
		WaveSpeed:           cfg.Water.WaveSpeed,
		Light: terrain.Light{
			Direction: mgl32.Vec3(cfg.World.LightDirection),
			Ambient:   mgl32.Vec3(cfg.World.LightAmbient),
			Diffuse:   mgl32.Vec3(cfg.World.LightDiffuse),
		},
	}
}

// WorldOptions maps the streaming settings of cfg
func WorldOptions(cfg *config.Config) terrain.Options {
	return terrain.Options{
		ViewDistance: cfg.World.ViewDistance,
		Geometry:     terrain.GeometryOptions{SmoothNormals: cfg.World.SmoothNormals},
	}
}

// NewCamera creates the observer camera at the configured start position
func NewCamera(cfg *config.Config, width, height int) *graphics.PerspectiveCamera {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	camera := graphics.NewPerspectiveCamera(cfg.Camera.FOV, aspect, cfg.Camera.Near, cfg.Camera.Far)
	camera.SetPosition(mgl32.Vec3(cfg.Camera.Start))
	camera.Update()
	return camera
}

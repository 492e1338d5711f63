// Command texgen writes the ground and water displacement textures used by
// the demo world.
package main

import (
	"flag"
	"image"
	"path/filepath"

	"openworld/internal/logger"
	"openworld/pkg/config"
)

func main() {
	defaults := config.DefaultConfig()

	out := flag.String("out", defaults.Assets.TextureDir, "Directory to write textures to")
	size := flag.Int("size", 256, "Texture side length in pixels")
	seed := flag.Int64("seed", defaults.Noise.Seed, "Noise seed")
	level := flag.String("log", "info", "Log level")
	flag.Parse()

	log := logger.NewLogger(*level).With("texgen")

	if *size <= 0 {
		log.Fatalf("Texture size must be positive, got %d", *size)
	}

	textures := []struct {
		name  string
		paint func(size int, seed int64) (*image.RGBA, error)
	}{
		{defaults.Assets.GroundTexture, grassTexture},
		{defaults.Assets.DisplacementTexture, dudvTexture},
	}

	for _, tex := range textures {
		img, err := tex.paint(*size, *seed)
		if err != nil {
			log.Fatalf("Failed to generate %s: %v", tex.name, err)
		}

		path := filepath.Join(*out, tex.name)
		if err := writePNG(path, img); err != nil {
			log.Fatalf("Failed to write %s: %v", tex.name, err)
		}
		log.Infof("Wrote %s (%dx%d)", path, *size, *size)
	}
}

package terrain

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"openworld/internal/util"
	"openworld/pkg/graphics"
)

// Light is the directional sun used by the terrain shader
type Light struct {
	Direction mgl32.Vec3
	Ambient   mgl32.Vec3
	Diffuse   mgl32.Vec3
}

// DefaultLight matches the light colours of the demo scene
func DefaultLight() Light {
	return Light{
		Direction: mgl32.Vec3{-0.3, -1, -0.2},
		Ambient:   mgl32.Vec3{0.1, 0.1, 0.1},
		Diffuse:   mgl32.Vec3{0.5, 0.5, 0.5},
	}
}

// AssetOptions names the shared GPU assets and water parameters
type AssetOptions struct {
	TerrainShader       string
	WaterShader         string
	GroundTexture       string
	DisplacementTexture string

	WaterHeight      float32
	ReflectionWidth  int
	ReflectionHeight int
	WaveSpeed        float64

	Light Light
}

// DefaultAssetOptions returns the names and sizes used by the demo
func DefaultAssetOptions() AssetOptions {
	return AssetOptions{
		TerrainShader:       "terrain",
		WaterShader:         "water",
		GroundTexture:       "grass.png",
		DisplacementTexture: "waterdudv.png",
		ReflectionWidth:     1280,
		ReflectionHeight:    720,
		WaveSpeed:           DefaultWaveSpeed,
		Light:               DefaultLight(),
	}
}

// Texture units shared by the shaders
const (
	groundUnit       = 0
	reflectionUnit   = 0
	displacementUnit = 1
)

// Assets owns the GPU resources every region shares. It is created once per
// world and passed by reference to each region.
type Assets struct {
	backend graphics.Backend

	TerrainShader graphics.Shader
	WaterShader   graphics.Shader
	Ground        graphics.Texture
	Displacement  graphics.Texture
	WaterQuad     graphics.Mesh

	Wave  *Wave
	Light Light

	WaterHeight      float32
	ReflectionWidth  int
	ReflectionHeight int
}

// NewAssets compiles the shaders, loads the textures and uploads the water
// quad. Any failure releases what was already created and is returned; it
// indicates broken assets and is not retried.
func NewAssets(backend graphics.Backend, opts AssetOptions) (_ *Assets, err error) {
	if backend == nil {
		return nil, fmt.Errorf("assets need a graphics backend")
	}
	if opts.ReflectionWidth <= 0 || opts.ReflectionHeight <= 0 {
		return nil, fmt.Errorf("reflection size must be positive, got %dx%d", opts.ReflectionWidth, opts.ReflectionHeight)
	}

	a := &Assets{
		backend:          backend,
		Wave:             NewWave(opts.WaveSpeed),
		Light:            opts.Light,
		WaterHeight:      opts.WaterHeight,
		ReflectionWidth:  opts.ReflectionWidth,
		ReflectionHeight: opts.ReflectionHeight,
	}
	defer func() {
		if err != nil {
			a.Dispose()
		}
	}()

	if a.TerrainShader, err = backend.CompileShader(opts.TerrainShader); err != nil {
		return nil, fmt.Errorf("terrain shader: %w", err)
	}
	if a.WaterShader, err = backend.CompileShader(opts.WaterShader); err != nil {
		return nil, fmt.Errorf("water shader: %w", err)
	}
	if a.Ground, err = backend.LoadTexture(opts.GroundTexture); err != nil {
		return nil, fmt.Errorf("ground texture: %w", err)
	}
	if a.Displacement, err = backend.LoadTexture(opts.DisplacementTexture); err != nil {
		return nil, fmt.Errorf("displacement texture: %w", err)
	}
	if a.WaterQuad, err = uploadWaterQuad(backend); err != nil {
		return nil, fmt.Errorf("water quad: %w", err)
	}

	a.TerrainShader.Bind()
	if err = a.TerrainShader.SetUniform("ground_texture", groundUnit); err != nil {
		return nil, err
	}
	a.WaterShader.Bind()
	if err = a.WaterShader.SetUniform("reflection_texture", reflectionUnit); err != nil {
		return nil, err
	}
	if err = a.WaterShader.SetUniform("dudv_texture", displacementUnit); err != nil {
		return nil, err
	}

	return a, nil
}

// uploadWaterQuad uploads a flat tile-sized square at y=0 spanning the same
// local area as a region
func uploadWaterQuad(backend graphics.Backend) (graphics.Mesh, error) {
	const s = TileSize
	positions := []float32{
		0, 0, 0,
		s, 0, 0,
		s, 0, -s,
		0, 0, -s,
	}
	uvs := []float32{
		0, 0,
		1, 0,
		1, 1,
		0, 1,
	}
	vertices, err := graphics.PositionUV.Interleave(4, positions, uvs)
	if err != nil {
		return nil, err
	}
	return backend.UploadMesh(vertices, cellIndices[:], graphics.PositionUV)
}

// ClipPlane keeps geometry above the water surface during reflection passes
func (a *Assets) ClipPlane() mgl32.Vec4 {
	return mgl32.Vec4{0, 1, 0, -a.WaterHeight}
}

// Dispose releases every shared resource. Safe to call more than once.
func (a *Assets) Dispose() {
	if a.WaterQuad != nil {
		a.WaterQuad.Dispose()
		a.WaterQuad = nil
	}
	if a.Displacement != nil {
		a.Displacement.Dispose()
		a.Displacement = nil
	}
	if a.Ground != nil {
		a.Ground.Dispose()
		a.Ground = nil
	}
	if a.WaterShader != nil {
		a.WaterShader.Dispose()
		a.WaterShader = nil
	}
	if a.TerrainShader != nil {
		a.TerrainShader.Dispose()
		a.TerrainShader = nil
	}
}

// DefaultWaveSpeed is the scroll speed of the water displacement per second
const DefaultWaveSpeed = 0.01

// Wave is the scroll phase of the water displacement, shared by every water region
type Wave struct {
	speed float64
	phase float64
}

// NewWave creates a wave at phase 0
func NewWave(speed float64) *Wave {
	return &Wave{speed: speed}
}

// Advance moves the phase by speed*delta, wrapped into [0, 1)
func (w *Wave) Advance(delta float64) {
	w.phase = util.Wrap01(w.phase + w.speed*delta)
}

// Phase returns the current scroll phase in [0, 1)
func (w *Wave) Phase() float64 {
	return w.phase
}

// Speed returns the phase advance per unit of time
func (w *Wave) Speed() float64 {
	return w.speed
}

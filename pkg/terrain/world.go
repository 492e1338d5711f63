package terrain

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"openworld/internal/logger"
	"openworld/internal/util"
	"openworld/pkg/graphics"
)

// Options configures streaming and mesh generation
type Options struct {
	// ViewDistance is the load radius in tiles
	ViewDistance int
	Geometry     GeometryOptions
}

// Stats describes the outcome of the last Update
type Stats struct {
	Loaded  int
	Evicted int
	Live    int
}

// World streams regions around a camera. Tiles inside the view distance are
// loaded; tiles are only evicted once they leave a radius one tile larger, so
// an observer moving back and forth over a boundary does not thrash tiles.
//
// A World is not safe for concurrent use and must stay on the thread that
// owns the graphics context.
type World struct {
	camera  graphics.Camera
	field   Heightfield
	assets  *Assets
	opts    Options
	log     *logger.Logger
	regions map[GridKey]*Region
	stats   Stats
}

// NewWorld creates an empty world. The first Update loads the tiles around camera.
func NewWorld(camera graphics.Camera, field Heightfield, assets *Assets, opts Options, log *logger.Logger) (*World, error) {
	switch {
	case camera == nil:
		return nil, fmt.Errorf("world needs a camera")
	case field == nil:
		return nil, fmt.Errorf("world needs a heightfield")
	case assets == nil:
		return nil, fmt.Errorf("world needs shared assets")
	case opts.ViewDistance < 1:
		return nil, fmt.Errorf("view distance must be at least 1, got %d", opts.ViewDistance)
	}
	if log == nil {
		log = logger.NewLogger("info")
	}

	return &World{
		camera:  camera,
		field:   field,
		assets:  assets,
		opts:    opts,
		log:     log.With("world"),
		regions: make(map[GridKey]*Region),
	}, nil
}

// Update evicts tiles outside the retain radius, then loads every missing
// tile inside the view distance. A construction failure is returned at once;
// the failing tile is never inserted.
func (w *World) Update() error {
	pos := w.camera.Position()
	vd := w.opts.ViewDistance

	stats := Stats{}
	defer func() {
		stats.Live = len(w.regions)
		w.stats = stats
		if stats.Loaded > 0 || stats.Evicted > 0 {
			w.log.Debugf("loaded %d, evicted %d, live %d", stats.Loaded, stats.Evicted, stats.Live)
		}
	}()

	// Evict. Distances are measured from the observer's position in tile
	// units, shifted half a tile so tile centres rather than corners count.
	cx := float64(pos.X())/TileSize - 0.5
	cz := float64(pos.Z())/TileSize - 0.5
	retain := float64((vd + 1) * (vd + 1))

	var evict []GridKey
	for key := range w.regions {
		dx := float64(key.X) - cx
		dz := float64(key.Z) - cz
		if dx*dx+dz*dz > retain {
			evict = append(evict, key)
		}
	}
	sortKeys(evict)
	for _, key := range evict {
		w.regions[key].Dispose()
		delete(w.regions, key)
		stats.Evicted++
	}

	// Load
	baseX := util.FloorToInt(float64(pos.X()) / TileSize)
	baseZ := util.FloorToInt(float64(pos.Z()) / TileSize)
	for j := -vd; j <= vd; j++ {
		for i := -vd; i <= vd; i++ {
			if i*i+j*j >= vd*vd {
				continue
			}
			key := GridKey{X: i + baseX, Z: j + baseZ}
			if _, ok := w.regions[key]; ok {
				continue
			}

			region, err := NewRegion(key, w.field, w.assets, w.opts.Geometry)
			if err != nil {
				return fmt.Errorf("load tile: %w", err)
			}
			w.regions[key] = region
			stats.Loaded++
		}
	}

	return nil
}

// LastStats returns the counts of the most recent Update
func (w *World) LastStats() Stats {
	return w.stats
}

// Render draws one frame: a reflection pass per tile, the main terrain pass,
// then every water surface. Each reflection pass redraws every tile, so the
// cost grows with the square of the live tile count.
func (w *World) Render() error {
	keys := w.Keys()

	for _, key := range keys {
		if err := w.regions[key].Water().PreRender(w.camera, w.RenderTerrain); err != nil {
			return fmt.Errorf("reflection pass %v: %w", key, err)
		}
	}

	if err := w.RenderTerrain(w.camera, false); err != nil {
		return err
	}

	for _, key := range keys {
		if err := w.regions[key].Water().Render(w.camera); err != nil {
			return fmt.Errorf("water %v: %w", key, err)
		}
	}

	return nil
}

// RenderTerrain draws every live tile without water from camera. During a
// reflection pass the clip plane discards geometry below the water.
func (w *World) RenderTerrain(camera graphics.Camera, reflected bool) error {
	shader := w.assets.TerrainShader
	if shader == nil {
		return fmt.Errorf("terrain pass: %w", ErrNilShader)
	}
	shader.Bind()

	// a zero plane never clips
	clip := mgl32.Vec4{}
	if reflected {
		clip = w.assets.ClipPlane()
	}

	light := w.assets.Light
	direction := light.Direction
	if direction.Len() > 0 {
		direction = direction.Normalize()
	}

	u := uniforms{shader: shader}
	u.set("m_view", camera.View())
	u.set("m_proj", camera.Projection())
	u.set("clip_plane", clip)
	u.set("light_direction", direction)
	u.set("light_ambient", light.Ambient)
	u.set("light_diffuse", light.Diffuse)
	if u.err != nil {
		return fmt.Errorf("terrain pass: %w", u.err)
	}

	for _, key := range w.Keys() {
		if err := w.regions[key].Render(shader); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of live tiles
func (w *World) Len() int {
	return len(w.regions)
}

// Has reports whether the tile at key is live
func (w *World) Has(key GridKey) bool {
	_, ok := w.regions[key]
	return ok
}

// Region returns the live tile at key, or nil
func (w *World) Region(key GridKey) *Region {
	return w.regions[key]
}

// Keys returns the live keys sorted by Z, then X
func (w *World) Keys() []GridKey {
	keys := make([]GridKey, 0, len(w.regions))
	for key := range w.regions {
		keys = append(keys, key)
	}
	sortKeys(keys)
	return keys
}

// Dispose releases every live tile
func (w *World) Dispose() {
	for key, region := range w.regions {
		region.Dispose()
		delete(w.regions, key)
	}
	w.stats = Stats{}
}

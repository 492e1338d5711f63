package terrain

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"openworld/pkg/graphics"
)

// Region is one streamed terrain tile: its uploaded mesh and its water surface
type Region struct {
	key    GridKey
	model  mgl32.Mat4
	assets *Assets
	mesh   graphics.Mesh
	water  *WaterRegion
}

// NewRegion generates and uploads the terrain of key and creates its water
// surface. Nothing is left allocated on failure.
func NewRegion(key GridKey, field Heightfield, assets *Assets, opts GeometryOptions) (*Region, error) {
	if field == nil || assets == nil {
		return nil, fmt.Errorf("region %v: needs a heightfield and assets", key)
	}

	geometry := BuildGeometry(key, field, opts)
	vertices, err := geometry.Interleave()
	if err != nil {
		return nil, fmt.Errorf("region %v: %w", key, err)
	}

	mesh, err := assets.backend.UploadMesh(vertices, geometry.Indices, graphics.PositionUVNormal)
	if err != nil {
		return nil, fmt.Errorf("region %v: upload mesh: %w", key, err)
	}

	offset := key.WorldOffset()
	water, err := newWaterRegion(offset, assets)
	if err != nil {
		mesh.Dispose()
		return nil, fmt.Errorf("region %v: %w", key, err)
	}

	return &Region{
		key:    key,
		model:  mgl32.Translate3D(offset.X(), offset.Y(), offset.Z()),
		assets: assets,
		mesh:   mesh,
		water:  water,
	}, nil
}

// Key returns the grid key of the region
func (r *Region) Key() GridKey {
	return r.key
}

// WorldOffset returns the world translation of the region
func (r *Region) WorldOffset() mgl32.Vec3 {
	return r.key.WorldOffset()
}

// Model returns the model matrix of the region
func (r *Region) Model() mgl32.Mat4 {
	return r.model
}

// Water returns the water surface of the region
func (r *Region) Water() *WaterRegion {
	return r.water
}

// Disposed reports whether Dispose has been called
func (r *Region) Disposed() bool {
	return r.mesh == nil
}

// Render draws the terrain with shader, which must already be bound with the
// camera uniforms set
func (r *Region) Render(shader graphics.Shader) error {
	if shader == nil {
		return fmt.Errorf("region %v: %w", r.key, ErrNilShader)
	}
	if r.mesh == nil {
		return fmt.Errorf("region %v: %w", r.key, ErrDisposed)
	}

	if err := shader.SetUniform("m_model", r.model); err != nil {
		return fmt.Errorf("region %v: %w", r.key, err)
	}
	r.assets.Ground.Bind(groundUnit)
	r.mesh.Draw()
	return nil
}

// Dispose releases the water target and the mesh. Safe to call more than once.
func (r *Region) Dispose() {
	if r.water != nil {
		r.water.Dispose()
		r.water = nil
	}
	if r.mesh != nil {
		r.mesh.Dispose()
		r.mesh = nil
	}
}

package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"openworld/internal/util"
	"openworld/pkg/graphics"
)

// Heightfield supplies terrain heights; *noise.Field satisfies it
type Heightfield interface {
	SampleScaled(x, z float64) float64
}

// GeometryOptions tunes mesh generation
type GeometryOptions struct {
	// SmoothNormals replaces face-local normals with the average of the
	// four cells sharing each grid point
	SmoothNormals bool
}

// Vertex is one corner of a terrain cell
type Vertex struct {
	Position mgl32.Vec3
	UV       mgl32.Vec2
	Normal   mgl32.Vec3
}

// Geometry is the CPU-side mesh of one region
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
}

const (
	verticesPerCell = 4
	indicesPerCell  = 6
)

// cellIndices are the two counter-clockwise triangles of a cell seen from +y
var cellIndices = [indicesPerCell]uint32{0, 1, 2, 2, 3, 0}

// cellCorners are the grid offsets of the four corners of a cell:
//
//	3 *-* 2    y(+) *-> x(+)
//	  |/|           |
//	0 *-* 1    z(+) v
var cellCorners = [verticesPerCell][2]int{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

var cellUVs = [verticesPerCell]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// heightmap holds samples for grid points -1..TileSize+1 on both axes, the
// tile's own points plus a one-cell halo on every side
type heightmap [TileSize + 3][TileSize + 3]float32

func (h *heightmap) at(i, j int) float32 {
	return h[i+1][j+1]
}

func sampleHeightmap(key GridKey, field Heightfield) *heightmap {
	h := new(heightmap)
	for j := -1; j <= TileSize+1; j++ {
		for i := -1; i <= TileSize+1; i++ {
			x := float64(key.X*TileSize+i) / TileSize
			z := float64(key.Z*TileSize-j) / TileSize
			h[i+1][j+1] = float32(field.SampleScaled(x, z))
		}
	}
	return h
}

// cellPositions returns the local corner positions of cell (i, j)
func (h *heightmap) cellPositions(i, j int) [verticesPerCell]mgl32.Vec3 {
	var p [verticesPerCell]mgl32.Vec3
	for k, c := range cellCorners {
		gi, gj := i+c[0], j+c[1]
		p[k] = mgl32.Vec3{float32(gi), h.at(gi, gj), -float32(gj)}
	}
	return p
}

// cornerNormals computes each corner's normal from its two neighbours around the cell
func cornerNormals(p [verticesPerCell]mgl32.Vec3) [verticesPerCell]mgl32.Vec3 {
	var n [verticesPerCell]mgl32.Vec3
	for k := range p {
		next := p[(k+1)%verticesPerCell].Sub(p[k])
		prev := p[(k+verticesPerCell-1)%verticesPerCell].Sub(p[k])
		n[k] = next.Cross(prev).Normalize()
	}
	return n
}

// BuildGeometry generates the mesh of the region at key. It is a pure
// function of key, field and opts.
func BuildGeometry(key GridKey, field Heightfield, opts GeometryOptions) Geometry {
	h := sampleHeightmap(key, field)

	g := Geometry{
		Vertices: make([]Vertex, 0, TileSize*TileSize*verticesPerCell),
		Indices:  make([]uint32, 0, TileSize*TileSize*indicesPerCell),
	}

	var smooth *[TileSize + 1][TileSize + 1]mgl32.Vec3
	if opts.SmoothNormals {
		smooth = smoothNormals(h)
	}

	for j := 0; j < TileSize; j++ {
		for i := 0; i < TileSize; i++ {
			positions := h.cellPositions(i, j)
			normals := cornerNormals(positions)
			if smooth != nil {
				for k, c := range cellCorners {
					normals[k] = smooth[i+c[0]][j+c[1]]
				}
			}

			base := uint32(len(g.Vertices))
			for k := range positions {
				g.Vertices = append(g.Vertices, Vertex{
					Position: positions[k],
					UV:       cellUVs[k],
					Normal:   normals[k],
				})
			}
			for _, idx := range cellIndices {
				g.Indices = append(g.Indices, base+idx)
			}
		}
	}

	return g
}

// smoothNormals averages, for every grid point of the tile, the corner
// normals of the four cells touching it. Cells -1 and TileSize come from the
// halo so edge points agree with the neighbouring tile.
func smoothNormals(h *heightmap) *[TileSize + 1][TileSize + 1]mgl32.Vec3 {
	var corners [TileSize + 2][TileSize + 2][verticesPerCell]mgl32.Vec3
	for j := -1; j <= TileSize; j++ {
		for i := -1; i <= TileSize; i++ {
			corners[i+1][j+1] = cornerNormals(h.cellPositions(i, j))
		}
	}

	out := new([TileSize + 1][TileSize + 1]mgl32.Vec3)
	for gj := 0; gj <= TileSize; gj++ {
		for gi := 0; gi <= TileSize; gi++ {
			// the cell whose corner k sits on (gi, gj) starts at (gi, gj) - cellCorners[k]
			var sum mgl32.Vec3
			for k, c := range cellCorners {
				ci, cj := gi-c[0], gj-c[1]
				sum = sum.Add(corners[ci+1][cj+1][k])
			}
			out[gi][gj] = sum.Normalize()
		}
	}
	return out
}

// Interleave packs the vertices in graphics.PositionUVNormal layout
func (g Geometry) Interleave() ([]float32, error) {
	n := len(g.Vertices)
	positions := make([]float32, 0, n*3)
	uvs := make([]float32, 0, n*2)
	normals := make([]float32, 0, n*3)
	for _, v := range g.Vertices {
		positions = append(positions, v.Position[:]...)
		uvs = append(uvs, v.UV[:]...)
		normals = append(normals, v.Normal[:]...)
	}
	return graphics.PositionUVNormal.Interleave(n, positions, uvs, normals)
}

// HeightAt returns the terrain height under world position (x, z),
// interpolated bilinearly between the four surrounding grid samples
func HeightAt(field Heightfield, x, z float32) float32 {
	gx := math.Floor(float64(x))
	gz := math.Floor(float64(z))
	fx := float64(x) - gx
	fz := float64(z) - gz

	sample := func(wx, wz float64) float64 {
		return field.SampleScaled(wx/TileSize, wz/TileSize)
	}
	near := util.Lerp(sample(gx, gz), sample(gx+1, gz), fx)
	far := util.Lerp(sample(gx, gz+1), sample(gx+1, gz+1), fx)
	return float32(util.Lerp(near, far, fz))
}

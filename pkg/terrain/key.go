package terrain

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"openworld/internal/util"
)

// TileSize is the side length of a region in unit cells
const TileSize = 32

// GridKey identifies a region on the infinite tile grid
type GridKey struct {
	X int
	Z int
}

// KeyAt returns the key of the tile whose grid cell contains world position (x, z)
func KeyAt(x, z float32) GridKey {
	return GridKey{
		X: util.FloorToInt(float64(x) / TileSize),
		Z: util.FloorToInt(float64(z) / TileSize),
	}
}

// WorldOffset is the world-space translation of the region's local origin
func (k GridKey) WorldOffset() mgl32.Vec3 {
	return mgl32.Vec3{float32(k.X * TileSize), 0, float32(k.Z * TileSize)}
}

// Less orders keys by Z, then X
func (k GridKey) Less(o GridKey) bool {
	if k.Z != o.Z {
		return k.Z < o.Z
	}
	return k.X < o.X
}

func (k GridKey) String() string {
	return fmt.Sprintf("(%d,%d)", k.X, k.Z)
}

func sortKeys(keys []GridKey) {
	sort.Slice(keys, func(a, b int) bool { return keys[a].Less(keys[b]) })
}

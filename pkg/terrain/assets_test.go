package terrain

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAssetsBindsSamplers(t *testing.T) {
	b := newFakeBackend()
	a := newTestAssets(t, b)

	assert.Equal(t, 0, b.shaders["terrain"].values["ground_texture"])
	assert.Equal(t, 0, b.shaders["water"].values["reflection_texture"])
	assert.Equal(t, 1, b.shaders["water"].values["dudv_texture"])

	quad := a.WaterQuad.(*fakeMesh)
	assert.Equal(t, "water", quad.label)
	assert.Equal(t, []uint32{0, 1, 2, 2, 3, 0}, quad.indices)
	assert.Equal(t, []float32{
		0, 0, 0, 0, 0,
		32, 0, 0, 1, 0,
		32, 0, -32, 1, 1,
		0, 0, -32, 0, 1,
	}, quad.vertices)

	assert.Equal(t, mgl32.Vec4{0, 1, 0, 0}, a.ClipPlane())
}

func TestNewAssetsFailureReleasesEverything(t *testing.T) {
	broken := errors.New("missing file")

	cases := map[string]func(b *fakeBackend){
		"terrain shader": func(b *fakeBackend) { b.failShader["terrain"] = broken },
		"water shader":   func(b *fakeBackend) { b.failShader["water"] = broken },
		"ground":         func(b *fakeBackend) { b.failTexture["grass.png"] = broken },
		"displacement":   func(b *fakeBackend) { b.failTexture["waterdudv.png"] = broken },
		"quad":           func(b *fakeBackend) { b.failUpload = broken },
	}

	for name, breakIt := range cases {
		t.Run(name, func(t *testing.T) {
			b := newFakeBackend()
			breakIt(b)

			a, err := NewAssets(b, DefaultAssetOptions())
			assert.ErrorIs(t, err, broken)
			assert.Nil(t, a)

			for _, s := range b.shaders {
				assert.True(t, s.disposed, "shader %s leaked", s.name)
			}
			assert.Zero(t, b.liveMeshes())
		})
	}
}

func TestNewAssetsRejectsBadOptions(t *testing.T) {
	_, err := NewAssets(nil, DefaultAssetOptions())
	assert.Error(t, err)

	opts := DefaultAssetOptions()
	opts.ReflectionWidth = 0
	_, err = NewAssets(newFakeBackend(), opts)
	assert.Error(t, err)
}

func TestAssetsDisposeIsIdempotent(t *testing.T) {
	b := newFakeBackend()
	a := newTestAssets(t, b)

	a.Dispose()
	a.Dispose()

	assert.True(t, b.shaders["terrain"].disposed)
	assert.True(t, b.shaders["water"].disposed)
	assert.Zero(t, b.liveMeshes())
}

func TestWaveAdvance(t *testing.T) {
	cases := []struct {
		name   string
		speed  float64
		deltas []float64
		want   float64
	}{
		{"default speed", DefaultWaveSpeed, []float64{10}, 0.1},
		{"accumulates", 0.25, []float64{1, 1}, 0.5},
		{"wraps", 0.25, []float64{3, 2}, 0.25},
		{"exact wrap", 0.5, []float64{2}, 0},
		{"negative delta", 0.25, []float64{-1}, 0.75},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWave(c.speed)
			for _, d := range c.deltas {
				w.Advance(d)
				require.GreaterOrEqual(t, w.Phase(), 0.0)
				require.Less(t, w.Phase(), 1.0)
			}
			assert.InDelta(t, c.want, w.Phase(), 1e-9)
		})
	}
}

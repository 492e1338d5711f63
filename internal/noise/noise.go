package noise

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"
)

// AmplitudePolicy selects how per-octave amplitudes are derived from persistence
type AmplitudePolicy string

const (
	// AmplitudeReference gives every octave persistence^(octaves-1). This is
	// what the reference terrain was generated with and is kept for golden output.
	AmplitudeReference AmplitudePolicy = "reference"
	// AmplitudeGeometric gives octave i persistence^i
	AmplitudeGeometric AmplitudePolicy = "geometric"
)

// Basis selects the coherent noise function used for each octave
type Basis string

const (
	// BasisSimplex is 2D simplex noise over a per-octave shuffled permutation table
	BasisSimplex Basis = "simplex"
	// BasisOpenSimplex is OpenSimplex noise seeded per octave
	BasisOpenSimplex Basis = "opensimplex"
)

// Params describes a noise field
type Params struct {
	LargestFeature float64
	Persistence    float64
	Seed           int64
	Amplitude      AmplitudePolicy
	Basis          Basis
}

// DefaultParams returns the parameters the demo world is generated with
func DefaultParams() Params {
	return Params{
		LargestFeature: 64,
		Persistence:    0.75,
		Seed:           42,
		Amplitude:      AmplitudeReference,
		Basis:          BasisSimplex,
	}
}

// octave is one layer of coherent noise. Implementations must be read-only
// after construction.
type octave interface {
	Eval(x, y float64) float64
}

// Field is a deterministic multi-octave 2D noise field. It is immutable
// once built and safe for concurrent sampling.
type Field struct {
	params      Params
	octaves     []octave
	frequencies []float64
	amplitudes  []float64
	scale       float64
}

// New builds a noise field. Every octave is seeded from its own draw of a
// single stream seeded with p.Seed, so a fixed seed always yields the same field.
func New(p Params) (*Field, error) {
	if p.Amplitude == "" {
		p.Amplitude = AmplitudeReference
	}
	if p.Basis == "" {
		p.Basis = BasisSimplex
	}

	if p.LargestFeature <= 1 || math.IsNaN(p.LargestFeature) || math.IsInf(p.LargestFeature, 0) {
		return nil, fmt.Errorf("largest feature size must be a finite value above 1, got %v", p.LargestFeature)
	}
	if p.Persistence <= 0 || math.IsNaN(p.Persistence) {
		return nil, fmt.Errorf("persistence must be positive, got %v", p.Persistence)
	}

	count := OctaveCount(p.LargestFeature)

	f := &Field{
		params:      p,
		octaves:     make([]octave, count),
		frequencies: make([]float64, count),
		amplitudes:  make([]float64, count),
		scale:       p.LargestFeature * math.Ln10,
	}

	rng := rand.New(rand.NewSource(p.Seed))
	for i := 0; i < count; i++ {
		seed := rng.Int63()

		switch p.Basis {
		case BasisSimplex:
			f.octaves[i] = newSimplexOctave(seed)
		case BasisOpenSimplex:
			f.octaves[i] = openSimplexOctave{opensimplex.New(seed)}
		default:
			return nil, fmt.Errorf("unknown noise basis %q", p.Basis)
		}

		f.frequencies[i] = math.Pow(2, float64(i))

		switch p.Amplitude {
		case AmplitudeReference:
			f.amplitudes[i] = math.Pow(p.Persistence, float64(count-1))
		case AmplitudeGeometric:
			f.amplitudes[i] = math.Pow(p.Persistence, float64(i))
		default:
			return nil, fmt.Errorf("unknown amplitude policy %q", p.Amplitude)
		}
	}

	return f, nil
}

// OctaveCount returns 2*ceil(log2(largestFeature))
func OctaveCount(largestFeature float64) int {
	if largestFeature <= 1 {
		return 0
	}
	return 2 * int(math.Ceil(math.Log2(largestFeature)))
}

// Sample returns the summed octave noise at (x, z)
func (f *Field) Sample(x, z float64) float64 {
	result := 0.0
	for i, o := range f.octaves {
		result += o.Eval(x/f.frequencies[i], z/f.frequencies[i]) * f.amplitudes[i]
	}
	return result
}

// SampleScaled widens Sample by log(10^largestFeature) for use as a height
func (f *Field) SampleScaled(x, z float64) float64 {
	return f.scale * f.Sample(x, z)
}

// Octaves returns the number of octaves in the field
func (f *Field) Octaves() int {
	return len(f.octaves)
}

// Amplitudes returns a copy of the per-octave amplitudes
func (f *Field) Amplitudes() []float64 {
	out := make([]float64, len(f.amplitudes))
	copy(out, f.amplitudes)
	return out
}

// Bound is the largest magnitude Sample can return
func (f *Field) Bound() float64 {
	sum := 0.0
	for _, a := range f.amplitudes {
		sum += a
	}
	return sum
}

// ScaledBound is the largest magnitude SampleScaled can return
func (f *Field) ScaledBound() float64 {
	return f.scale * f.Bound()
}

// Params returns the parameters the field was built with
func (f *Field) Params() Params {
	return f.params
}

// openSimplexOctave adapts an OpenSimplex generator to the octave interface
type openSimplexOctave struct {
	n opensimplex.Noise
}

func (o openSimplexOctave) Eval(x, y float64) float64 {
	return o.n.Eval2(x, y)
}

// Skew factors for 2D simplex noise
var (
	f2 = 0.5 * (math.Sqrt(3) - 1)
	g2 = (3 - math.Sqrt(3)) / 6
)

// grad3 holds the gradient directions; 2D noise only reads x and y
var grad3 = [12][2]float64{
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{1, 0}, {-1, 0}, {1, 0}, {-1, 0},
	{0, 1}, {0, -1}, {0, 1}, {0, -1},
}

// simplexOctave is 2D simplex noise with its own permutation table
type simplexOctave struct {
	perm      [512]uint8
	permMod12 [512]uint8
}

func newSimplexOctave(seed int64) *simplexOctave {
	o := &simplexOctave{}
	p := rand.New(rand.NewSource(seed)).Perm(256)
	for i := 0; i < 512; i++ {
		o.perm[i] = uint8(p[i&255])
		o.permMod12[i] = o.perm[i] % 12
	}
	return o
}

// Eval returns simplex noise in [-1, 1]
func (o *simplexOctave) Eval(x, y float64) float64 {
	// Skew input space to determine simplex cell
	s := (x + y) * f2
	i := math.Floor(x + s)
	j := math.Floor(y + s)

	t := (i + j) * g2
	x0 := x - (i - t)
	y0 := y - (j - t)

	// Determine which simplex we're in
	var i1, j1 int
	if x0 > y0 {
		i1, j1 = 1, 0
	} else {
		i1, j1 = 0, 1
	}

	x1 := x0 - float64(i1) + g2
	y1 := y0 - float64(j1) + g2
	x2 := x0 - 1.0 + 2.0*g2
	y2 := y0 - 1.0 + 2.0*g2

	ii := int(i) & 255
	jj := int(j) & 255
	gi0 := o.permMod12[ii+int(o.perm[jj])]
	gi1 := o.permMod12[ii+i1+int(o.perm[jj+j1])]
	gi2 := o.permMod12[ii+1+int(o.perm[jj+1])]

	return 70.0 * (corner(gi0, x0, y0) + corner(gi1, x1, y1) + corner(gi2, x2, y2))
}

// corner is the contribution of one simplex corner
func corner(gi uint8, x, y float64) float64 {
	t := 0.5 - x*x - y*y
	if t < 0 {
		return 0
	}
	t *= t
	return t * t * dot2D(grad3[gi][0], grad3[gi][1], x, y)
}

// dot2D calculates 2D dot product
func dot2D(x1, y1, x2, y2 float64) float64 {
	return x1*x2 + y1*y2
}

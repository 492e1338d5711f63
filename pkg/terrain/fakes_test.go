package terrain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"openworld/internal/logger"
	"openworld/pkg/graphics"
)

// fakeBackend records GPU calls so tests can check ordering and ownership
// without a context
type fakeBackend struct {
	events []string
	draws  []fakeDraw

	failShader  map[string]error
	failTexture map[string]error
	failUpload  error
	failVerify  error
	// targetBudget is the number of targets that can still be created; negative is unlimited
	targetBudget int

	shaders map[string]*fakeShader
	bound   *fakeTarget
	clip    bool

	targetsCreated  int
	targetsDisposed int
	meshesUploaded  int
	meshesDisposed  int
}

type fakeDraw struct {
	mesh      string
	offscreen bool
}

var declaredUniforms = map[string][]string{
	"terrain": {"m_model", "m_view", "m_proj", "clip_plane", "ground_texture", "light_direction", "light_ambient", "light_diffuse"},
	"water":   {"m_model", "m_view", "m_proj", "move_factor", "reflection_texture", "dudv_texture"},
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		failShader:   make(map[string]error),
		failTexture:  make(map[string]error),
		targetBudget: -1,
		shaders:      make(map[string]*fakeShader),
	}
}

func (b *fakeBackend) record(event string) {
	b.events = append(b.events, event)
}

func (b *fakeBackend) liveTargets() int {
	return b.targetsCreated - b.targetsDisposed
}

func (b *fakeBackend) liveMeshes() int {
	return b.meshesUploaded - b.meshesDisposed
}

func (b *fakeBackend) CompileShader(name string) (graphics.Shader, error) {
	if err := b.failShader[name]; err != nil {
		return nil, err
	}
	s := &fakeShader{name: name, b: b, values: make(map[string]interface{})}
	if names, ok := declaredUniforms[name]; ok {
		s.declared = make(map[string]bool)
		for _, n := range names {
			s.declared[n] = true
		}
	}
	b.shaders[name] = s
	return s, nil
}

func (b *fakeBackend) LoadTexture(name string) (graphics.Texture, error) {
	if err := b.failTexture[name]; err != nil {
		return nil, err
	}
	return &fakeTexture{name: name, b: b}, nil
}

func (b *fakeBackend) CreateRenderTarget(width, height int) (graphics.RenderTarget, error) {
	if b.targetBudget == 0 {
		return nil, fmt.Errorf("out of video memory")
	}
	if b.targetBudget > 0 {
		b.targetBudget--
	}
	b.targetsCreated++
	return &fakeTarget{b: b, width: width, height: height}, nil
}

func (b *fakeBackend) UploadMesh(vertices []float32, indices []uint32, layout graphics.VertexLayout) (graphics.Mesh, error) {
	if b.failUpload != nil {
		return nil, b.failUpload
	}
	label := "terrain"
	if layout.Stride() == graphics.PositionUV.Stride() {
		label = "water"
	}
	b.meshesUploaded++
	return &fakeMesh{
		label:    label,
		b:        b,
		vertices: vertices,
		indices:  indices,
	}, nil
}

func (b *fakeBackend) EnableClipPlane() {
	b.clip = true
	b.record("clip:on")
}

func (b *fakeBackend) DisableClipPlane() {
	b.clip = false
	b.record("clip:off")
}

type uniformSet struct {
	name  string
	value interface{}
}

type fakeShader struct {
	name     string
	b        *fakeBackend
	declared map[string]bool
	values   map[string]interface{}
	history  []uniformSet
	binds    int
	disposed bool
}

func (s *fakeShader) Bind() {
	s.binds++
	s.b.record("shader:" + s.name)
}

func (s *fakeShader) SetUniform(name string, value interface{}) error {
	if s.declared != nil && !s.declared[name] {
		return fmt.Errorf("shader %q: %w %q", s.name, graphics.ErrUnknownUniform, name)
	}
	s.values[name] = value
	s.history = append(s.history, uniformSet{name: name, value: value})
	return nil
}

func (s *fakeShader) Dispose() {
	s.disposed = true
}

// valuesOf returns every value assigned to name, in order
func (s *fakeShader) valuesOf(name string) []interface{} {
	var out []interface{}
	for _, u := range s.history {
		if u.name == name {
			out = append(out, u.value)
		}
	}
	return out
}

type fakeTexture struct {
	name     string
	b        *fakeBackend
	disposed bool
}

func (t *fakeTexture) Bind(unit int) {
	t.b.record(fmt.Sprintf("texture:%s@%d", t.name, unit))
}

func (t *fakeTexture) Dispose() {
	t.disposed = true
}

type fakeTarget struct {
	b        *fakeBackend
	width    int
	height   int
	color    bool
	depth    bool
	disposed bool
}

func (t *fakeTarget) AttachColor() error {
	t.color = true
	return nil
}

func (t *fakeTarget) AttachDepth() error {
	t.depth = true
	return nil
}

func (t *fakeTarget) Verify() error {
	if t.b.failVerify != nil {
		return t.b.failVerify
	}
	if !t.color || !t.depth {
		return graphics.ErrIncompleteTarget
	}
	return nil
}

func (t *fakeTarget) Bind() {
	t.b.bound = t
	t.b.record("target:bind")
}

func (t *fakeTarget) Unbind() {
	t.b.bound = nil
	t.b.record("target:unbind")
}

func (t *fakeTarget) Clear() {
	t.b.record("target:clear")
}

func (t *fakeTarget) BindColor(unit int) {
	t.b.record(fmt.Sprintf("target:color@%d", unit))
}

func (t *fakeTarget) Size() (int, int) {
	return t.width, t.height
}

func (t *fakeTarget) Dispose() {
	if !t.disposed {
		t.disposed = true
		t.b.targetsDisposed++
	}
}

type fakeMesh struct {
	label    string
	b        *fakeBackend
	vertices []float32
	indices  []uint32
	disposed bool
}

func (m *fakeMesh) Draw() {
	m.b.draws = append(m.b.draws, fakeDraw{mesh: m.label, offscreen: m.b.bound != nil})
	m.b.record("draw:" + m.label)
}

func (m *fakeMesh) IndexCount() int {
	return len(m.indices)
}

func (m *fakeMesh) Dispose() {
	if !m.disposed {
		m.disposed = true
		m.b.meshesDisposed++
	}
}

// flatField is a heightfield of constant height
type flatField struct {
	height float64
}

func (f flatField) SampleScaled(x, z float64) float64 {
	return f.height
}

// slopeField rises along +x and falls along +z
type slopeField struct{}

func (slopeField) SampleScaled(x, z float64) float64 {
	return 2*x - z
}

func newTestAssets(t *testing.T, b *fakeBackend) *Assets {
	t.Helper()
	opts := DefaultAssetOptions()
	opts.ReflectionWidth = 64
	opts.ReflectionHeight = 32
	a, err := NewAssets(b, opts)
	require.NoError(t, err)
	return a
}

func newTestCamera() *graphics.PerspectiveCamera {
	return graphics.NewPerspectiveCamera(70, 16.0/9.0, 0.1, 1000)
}

func quietLogger() *logger.Logger {
	l := logger.NewLogger("error")
	l.EnableColors(false)
	return l
}

func indexOf(events []string, event string) int {
	for i, e := range events {
		if e == event {
			return i
		}
	}
	return -1
}

func lastIndexOf(events []string, event string) int {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i] == event {
			return i
		}
	}
	return -1
}

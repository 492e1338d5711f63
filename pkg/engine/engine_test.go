package engine

import (
	"testing"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openworld/internal/noise"
	"openworld/pkg/config"
	"openworld/pkg/graphics"
)

type fakeInput struct {
	keys  map[glfw.Key]bool
	mouse [2]float64
	wheel float64
}

func (f *fakeInput) IsKeyDown(key glfw.Key) bool { return f.keys[key] }
func (f *fakeInput) GetMouseDelta() [2]float64  { return f.mouse }

func (f *fakeInput) GetMouseWheelDelta() float64 {
	w := f.wheel
	f.wheel = 0
	return w
}

type move struct {
	direction graphics.Direction
	distance  float32
}

type rotation struct {
	axis    graphics.Axis
	degrees float32
}

// recordingCamera embeds a real camera and records controller calls
type recordingCamera struct {
	*graphics.PerspectiveCamera
	moves     []move
	rotations []rotation
}

func (c *recordingCamera) Move(d graphics.Direction, distance float32) {
	c.moves = append(c.moves, move{d, distance})
	c.PerspectiveCamera.Move(d, distance)
}

func (c *recordingCamera) Rotate(axis graphics.Axis, degrees float32) {
	c.rotations = append(c.rotations, rotation{axis, degrees})
	c.PerspectiveCamera.Rotate(axis, degrees)
}

func newRecordingCamera() *recordingCamera {
	return &recordingCamera{PerspectiveCamera: graphics.NewPerspectiveCamera(70, 1, 0.1, 100)}
}

func TestCameraControllerMoves(t *testing.T) {
	c := &CameraController{MoveSpeed: 10, Sensitivity: 0.5}
	camera := newRecordingCamera()
	in := &fakeInput{keys: map[glfw.Key]bool{glfw.KeyW: true, glfw.KeyD: true}}

	c.Apply(camera, in, 0.5)

	assert.Equal(t, []move{{graphics.Forward, 5}, {graphics.Right, 5}}, camera.moves)
	assert.Empty(t, camera.rotations)
}

func TestCameraControllerSprint(t *testing.T) {
	c := &CameraController{MoveSpeed: 10}
	camera := newRecordingCamera()
	in := &fakeInput{keys: map[glfw.Key]bool{glfw.KeySpace: true, glfw.KeyLeftControl: true}}

	c.Apply(camera, in, 0.25)

	assert.Equal(t, []move{{graphics.Up, 10}}, camera.moves)
}

func TestCameraControllerMouseLook(t *testing.T) {
	c := &CameraController{MoveSpeed: 10, Sensitivity: 0.5}
	camera := newRecordingCamera()
	in := &fakeInput{mouse: [2]float64{4, -6}}

	c.Apply(camera, in, 0.016)

	assert.Equal(t, []rotation{
		{graphics.AxisYaw, -2},
		{graphics.AxisPitch, 3},
	}, camera.rotations)
	assert.Equal(t, float32(3), camera.Pitch())
}

func TestCameraControllerScrollSpeed(t *testing.T) {
	c := &CameraController{MoveSpeed: 16}
	camera := newRecordingCamera()

	c.Apply(camera, &fakeInput{wheel: 2}, 0)
	assert.InDelta(t, 25, c.MoveSpeed, 1e-4)

	c.Apply(camera, &fakeInput{wheel: -100}, 0)
	assert.Equal(t, float32(minSpeed), c.MoveSpeed)

	c.Apply(camera, &fakeInput{wheel: 100}, 0)
	assert.Equal(t, float32(maxSpeed), c.MoveSpeed)
}

func TestFrameLimiter(t *testing.T) {
	start := time.Unix(100, 0)
	var slept []time.Duration

	l := NewFrameLimiter(50)
	l.sleep = func(d time.Duration) { slept = append(slept, d) }

	l.now = func() time.Time { return start.Add(5 * time.Millisecond) }
	l.Wait(start)
	l.now = func() time.Time { return start.Add(30 * time.Millisecond) }
	l.Wait(start)

	assert.Equal(t, 20*time.Millisecond, l.FrameTime())
	assert.Equal(t, []time.Duration{15 * time.Millisecond}, slept)
}

func TestFrameLimiterDisabled(t *testing.T) {
	l := NewFrameLimiter(0)
	l.sleep = func(time.Duration) { t.Fatal("unlimited limiter slept") }
	l.Wait(time.Now().Add(-time.Hour))
	assert.Zero(t, l.FrameTime())
}

func TestSetupFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Noise.Basis = "opensimplex"
	cfg.World.SmoothNormals = true
	cfg.Water.Height = -1.5

	params := NoiseParams(cfg)
	assert.Equal(t, noise.BasisOpenSimplex, params.Basis)
	assert.Equal(t, noise.AmplitudeReference, params.Amplitude)
	_, err := noise.New(params)
	require.NoError(t, err)

	assets := AssetOptions(cfg)
	assert.Equal(t, "terrain", assets.TerrainShader)
	assert.Equal(t, "waterdudv.png", assets.DisplacementTexture)
	assert.Equal(t, float32(-1.5), assets.WaterHeight)
	assert.Equal(t, mgl32.Vec3(cfg.World.LightDiffuse), assets.Light.Diffuse)

	world := WorldOptions(cfg)
	assert.Equal(t, cfg.World.ViewDistance, world.ViewDistance)
	assert.True(t, world.Geometry.SmoothNormals)

	camera := NewCamera(cfg, 1280, 720)
	assert.Equal(t, mgl32.Vec3(cfg.Camera.Start), camera.Position())
}

type flatGround float64

func (g flatGround) SampleScaled(x, z float64) float64 { return float64(g) }

func TestCameraControllerKeepsAboveGround(t *testing.T) {
	c := &CameraController{MoveSpeed: 10, Ground: flatGround(5), Clearance: 2}
	camera := newRecordingCamera()
	camera.SetPosition(mgl32.Vec3{3, 20, 3})
	in := &fakeInput{keys: map[glfw.Key]bool{glfw.KeyLeftShift: true}}

	c.Apply(camera, in, 1)
	assert.InDelta(t, 10, camera.Position().Y(), 1e-5)

	c.Apply(camera, in, 1)
	assert.InDelta(t, 7, camera.Position().Y(), 1e-5)
}

func TestCameraControllerWithoutGround(t *testing.T) {
	c := &CameraController{MoveSpeed: 10}
	camera := newRecordingCamera()
	in := &fakeInput{keys: map[glfw.Key]bool{glfw.KeyLeftShift: true}}

	c.Apply(camera, in, 3)
	assert.InDelta(t, -30, camera.Position().Y(), 1e-4)
}

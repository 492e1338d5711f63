package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"openworld/internal/util"
)

// Direction is a movement direction relative to the camera's orientation
type Direction int

const (
	Forward Direction = iota
	Backward
	Left
	Right
	Up
	Down
)

// Axis is a rotation axis of a first-person camera
type Axis int

const (
	// AxisPitch rotates around the camera's right axis; positive looks up
	AxisPitch Axis = iota
	// AxisYaw rotates around the world up axis; positive turns counter-clockwise seen from above
	AxisYaw
)

// maxPitch keeps the camera from flipping over the vertical
const maxPitch = 89

// Camera is the observer the world streams and renders around
type Camera interface {
	Position() mgl32.Vec3
	SetPosition(p mgl32.Vec3)

	// Move translates the camera along a direction relative to its orientation
	Move(direction Direction, distance float32)

	// Rotate turns the camera counter-clockwise around axis by degrees
	Rotate(axis Axis, degrees float32)

	// Update recomputes the view matrix from position and orientation
	Update()

	// InvertPitch mirrors the pitch; calling it twice restores the original
	InvertPitch()

	Pitch() float32
	View() mgl32.Mat4
	Projection() mgl32.Mat4
}

// PerspectiveCamera is a yaw/pitch first-person camera with a perspective projection
type PerspectiveCamera struct {
	position mgl32.Vec3
	yaw      float32 // degrees
	pitch    float32 // degrees

	fov    float32
	aspect float32
	near   float32
	far    float32

	view       mgl32.Mat4
	projection mgl32.Mat4
}

var _ Camera = (*PerspectiveCamera)(nil)

// NewPerspectiveCamera creates a camera at the origin looking down -z.
// fov is the vertical field of view in degrees.
func NewPerspectiveCamera(fov, aspect, near, far float32) *PerspectiveCamera {
	c := &PerspectiveCamera{
		fov:    fov,
		aspect: aspect,
		near:   near,
		far:    far,
	}
	c.projection = mgl32.Perspective(mgl32.DegToRad(fov), aspect, near, far)
	c.Update()
	return c
}

// SetAspect rebuilds the projection for a new window aspect ratio
func (c *PerspectiveCamera) SetAspect(aspect float32) {
	c.aspect = aspect
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.fov), aspect, c.near, c.far)
}

func (c *PerspectiveCamera) orientation() mgl32.Quat {
	yaw := mgl32.QuatRotate(mgl32.DegToRad(c.yaw), mgl32.Vec3{0, 1, 0})
	pitch := mgl32.QuatRotate(mgl32.DegToRad(c.pitch), mgl32.Vec3{1, 0, 0})
	return yaw.Mul(pitch)
}

// Forward returns the world-space view direction
func (c *PerspectiveCamera) Forward() mgl32.Vec3 {
	return c.orientation().Rotate(mgl32.Vec3{0, 0, -1}).Normalize()
}

// Right returns the world-space right axis
func (c *PerspectiveCamera) Right() mgl32.Vec3 {
	return c.orientation().Rotate(mgl32.Vec3{1, 0, 0}).Normalize()
}

// Up returns the world-space up axis of the camera
func (c *PerspectiveCamera) Up() mgl32.Vec3 {
	return c.orientation().Rotate(mgl32.Vec3{0, 1, 0}).Normalize()
}

func (c *PerspectiveCamera) Position() mgl32.Vec3 {
	return c.position
}

func (c *PerspectiveCamera) SetPosition(p mgl32.Vec3) {
	c.position = p
}

func (c *PerspectiveCamera) Move(direction Direction, distance float32) {
	var dir mgl32.Vec3
	switch direction {
	case Forward:
		dir = c.Forward()
	case Backward:
		dir = c.Forward().Mul(-1)
	case Right:
		dir = c.Right()
	case Left:
		dir = c.Right().Mul(-1)
	case Up:
		dir = c.Up()
	case Down:
		dir = c.Up().Mul(-1)
	default:
		return
	}
	c.position = c.position.Add(dir.Mul(distance))
}

func (c *PerspectiveCamera) Rotate(axis Axis, degrees float32) {
	switch axis {
	case AxisPitch:
		c.pitch = float32(util.Clamp(float64(c.pitch+degrees), -maxPitch, maxPitch))
	case AxisYaw:
		c.yaw = float32(math.Mod(float64(c.yaw+degrees), 360))
	}
}

func (c *PerspectiveCamera) Update() {
	rotation := c.orientation().Conjugate().Mat4()
	translation := mgl32.Translate3D(-c.position[0], -c.position[1], -c.position[2])
	c.view = rotation.Mul4(translation)
}

func (c *PerspectiveCamera) InvertPitch() {
	c.pitch = -c.pitch
}

func (c *PerspectiveCamera) Pitch() float32 {
	return c.pitch
}

// Yaw returns the heading in degrees
func (c *PerspectiveCamera) Yaw() float32 {
	return c.yaw
}

func (c *PerspectiveCamera) View() mgl32.Mat4 {
	return c.view
}

func (c *PerspectiveCamera) Projection() mgl32.Mat4 {
	return c.projection
}

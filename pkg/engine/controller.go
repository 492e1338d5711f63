package engine

import (
	"math"

	"github.com/go-gl/glfw/v3.3/glfw"

	"openworld/pkg/graphics"
	"openworld/pkg/terrain"
)

// Input is the polled input state the camera controller reads
type Input interface {
	IsKeyDown(key glfw.Key) bool
	GetMouseDelta() [2]float64
	GetMouseWheelDelta() float64
}

// CameraController flies a camera with WASD, space/shift and the mouse
type CameraController struct {
	MoveSpeed   float32 // units per second
	Sensitivity float32 // degrees per pixel

	// Ground, when set, keeps the camera Clearance units above the terrain
	Ground    terrain.Heightfield
	Clearance float32
}

var movementKeys = []struct {
	key       glfw.Key
	direction graphics.Direction
}{
	{glfw.KeyW, graphics.Forward},
	{glfw.KeyS, graphics.Backward},
	{glfw.KeyA, graphics.Left},
	{glfw.KeyD, graphics.Right},
	{glfw.KeySpace, graphics.Up},
	{glfw.KeyLeftShift, graphics.Down},
}

const (
	// sprintFactor multiplies the move speed while left control is held
	sprintFactor = 4
	// speedStep scales the move speed per scroll notch
	speedStep = 1.25
	minSpeed  = 1
	maxSpeed  = 500
)

// Apply moves and turns camera for one frame of delta seconds
func (c *CameraController) Apply(camera graphics.Camera, in Input, delta float64) {
	if wheel := in.GetMouseWheelDelta(); wheel != 0 {
		speed := c.MoveSpeed * float32(math.Pow(speedStep, wheel))
		switch {
		case speed < minSpeed:
			speed = minSpeed
		case speed > maxSpeed:
			speed = maxSpeed
		}
		c.MoveSpeed = speed
	}

	distance := c.MoveSpeed * float32(delta)
	if in.IsKeyDown(glfw.KeyLeftControl) {
		distance *= sprintFactor
	}
	for _, m := range movementKeys {
		if in.IsKeyDown(m.key) {
			camera.Move(m.direction, distance)
		}
	}

	mouse := in.GetMouseDelta()
	if mouse[0] != 0 {
		camera.Rotate(graphics.AxisYaw, -float32(mouse[0])*c.Sensitivity)
	}
	if mouse[1] != 0 {
		camera.Rotate(graphics.AxisPitch, -float32(mouse[1])*c.Sensitivity)
	}

	c.keepAboveGround(camera)
}

func (c *CameraController) keepAboveGround(camera graphics.Camera) {
	if c.Ground == nil {
		return
	}
	pos := camera.Position()
	floor := terrain.HeightAt(c.Ground, pos.X(), pos.Z()) + c.Clearance
	if pos.Y() < floor {
		pos[1] = floor
		camera.SetPosition(pos)
	}
}

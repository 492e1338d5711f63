package engine

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// watchedKeys are the keys polled every frame
var watchedKeys = []glfw.Key{
	glfw.KeyW, glfw.KeyA, glfw.KeyS, glfw.KeyD,
	glfw.KeySpace, glfw.KeyLeftShift, glfw.KeyLeftControl,
	glfw.KeyEscape, glfw.KeyF1,
}

// InputHandler polls keyboard and mouse state once per frame
type InputHandler struct {
	window           *glfw.Window
	currentKeys      map[glfw.Key]bool
	previousKeys     map[glfw.Key]bool
	currentMousePos  [2]float64
	previousMousePos [2]float64
	mouseDelta       [2]float64
	mouseWheelDelta  float64
	primed           bool
}

// NewInputHandler creates an input handler for window
func NewInputHandler(window *glfw.Window) *InputHandler {
	handler := &InputHandler{
		window:       window,
		currentKeys:  make(map[glfw.Key]bool),
		previousKeys: make(map[glfw.Key]bool),
	}

	window.SetScrollCallback(func(_ *glfw.Window, _, yoffset float64) {
		handler.mouseWheelDelta += yoffset
	})

	return handler
}

// Update snapshots the previous frame and polls the current one
func (ih *InputHandler) Update() {
	for k, v := range ih.currentKeys {
		ih.previousKeys[k] = v
	}
	for _, key := range watchedKeys {
		ih.currentKeys[key] = ih.window.GetKey(key) == glfw.Press
	}

	ih.previousMousePos = ih.currentMousePos
	x, y := ih.window.GetCursorPos()
	ih.currentMousePos = [2]float64{x, y}

	// the first poll has no previous position to measure against
	if !ih.primed {
		ih.previousMousePos = ih.currentMousePos
		ih.primed = true
	}

	ih.mouseDelta[0] = ih.currentMousePos[0] - ih.previousMousePos[0]
	ih.mouseDelta[1] = ih.currentMousePos[1] - ih.previousMousePos[1]
}

// IsKeyDown reports whether key is held this frame
func (ih *InputHandler) IsKeyDown(key glfw.Key) bool {
	return ih.currentKeys[key]
}

// IsKeyPressed reports whether key went down this frame
func (ih *InputHandler) IsKeyPressed(key glfw.Key) bool {
	return ih.currentKeys[key] && !ih.previousKeys[key]
}

// GetMouseDelta returns the cursor movement since the last frame
func (ih *InputHandler) GetMouseDelta() [2]float64 {
	return ih.mouseDelta
}

// GetMouseWheelDelta returns the scroll since the last call and resets it
func (ih *InputHandler) GetMouseWheelDelta() float64 {
	delta := ih.mouseWheelDelta
	ih.mouseWheelDelta = 0
	return delta
}

package engine

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"openworld/internal/logger"
	"openworld/internal/noise"
	"openworld/pkg/config"
	"openworld/pkg/graphics"
	"openworld/pkg/terrain"
)

// skyColor is the clear colour of the window and the reflection targets
var skyColor = mgl32.Vec4{0.53, 0.75, 0.92, 1}

// Engine owns the window and runs the frame loop around the streamed world
type Engine struct {
	window     *glfw.Window
	config     *config.Config
	logger     *logger.Logger
	input      *InputHandler
	controller *CameraController
	limiter    *FrameLimiter
	backend    *graphics.GLBackend
	camera     *graphics.PerspectiveCamera
	assets     *terrain.Assets
	world      *terrain.World
	isRunning  bool
	lastUpdate time.Time
	captured   bool
}

// NewEngine opens the window, creates the GL context and builds the world.
// Asset errors are returned as they are; the caller is expected to exit.
func NewEngine(cfg *config.Config, log *logger.Logger) (*Engine, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %v", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	var monitor *glfw.Monitor
	if cfg.Graphics.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	window, err := glfw.CreateWindow(cfg.Graphics.Width, cfg.Graphics.Height, cfg.Graphics.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %v", err)
	}

	window.MakeContextCurrent()
	if cfg.Graphics.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	e := &Engine{
		window: window,
		config: cfg,
		logger: log,
		controller: &CameraController{
			MoveSpeed:   cfg.Camera.MoveSpeed,
			Sensitivity: cfg.Camera.MouseSensitivity,
		},
		limiter: NewFrameLimiter(cfg.Graphics.FrameRate),
	}

	if err := e.init(); err != nil {
		e.cleanup()
		return nil, err
	}
	return e, nil
}

func (e *Engine) init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %v", err)
	}
	e.logger.Infof("OpenGL %s on %s", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))

	cfg := e.config
	backend, err := graphics.NewGLBackend(graphics.GLOptions{
		ShaderDir:         cfg.Assets.ShaderDir,
		VertexExtension:   cfg.Assets.VertexExtension,
		FragmentExtension: cfg.Assets.FragmentExtension,
		TextureDir:        cfg.Assets.TextureDir,
		ClearColor:        skyColor,
		Viewport:          e.window.GetFramebufferSize,
	})
	if err != nil {
		return err
	}
	e.backend = backend

	field, err := noise.New(NoiseParams(cfg))
	if err != nil {
		return fmt.Errorf("failed to create noise field: %v", err)
	}
	e.logger.Debugf("noise field: %d octaves, height bound %.2f", field.Octaves(), field.ScaledBound())

	width, height := e.window.GetFramebufferSize()
	e.camera = NewCamera(cfg, width, height)

	e.assets, err = terrain.NewAssets(backend, AssetOptions(cfg))
	if err != nil {
		return fmt.Errorf("failed to load shared assets: %w", err)
	}

	e.controller.Ground = field
	e.controller.Clearance = cfg.Camera.MinClearance

	e.world, err = terrain.NewWorld(e.camera, field, e.assets, WorldOptions(cfg), e.logger)
	if err != nil {
		return err
	}

	e.input = NewInputHandler(e.window)
	e.setCursorCaptured(true)
	e.window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		if w > 0 && h > 0 {
			e.camera.SetAspect(float32(w) / float32(h))
		}
	})

	return nil
}

// Run starts the frame loop. It returns when the window closes or a frame fails.
func (e *Engine) Run() error {
	defer e.cleanup()

	e.isRunning = true
	e.lastUpdate = time.Now()

	for e.isRunning && !e.window.ShouldClose() {
		currentTime := time.Now()
		deltaTime := currentTime.Sub(e.lastUpdate).Seconds()
		e.lastUpdate = currentTime

		e.input.Update()
		e.processInput()

		if err := e.update(deltaTime); err != nil {
			return err
		}
		if err := e.render(); err != nil {
			return err
		}

		e.window.SwapBuffers()
		glfw.PollEvents()

		e.limiter.Wait(currentTime)
	}

	return nil
}

// processInput handles the keys that control the engine rather than the camera
func (e *Engine) processInput() {
	if e.input.IsKeyPressed(glfw.KeyEscape) {
		e.isRunning = false
	}
	if e.input.IsKeyPressed(glfw.KeyF1) {
		e.setCursorCaptured(!e.captured)
	}
}

func (e *Engine) setCursorCaptured(captured bool) {
	e.captured = captured
	if captured {
		e.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		e.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}

// update moves the camera, streams tiles and advances the water
func (e *Engine) update(deltaTime float64) error {
	if e.captured {
		e.controller.Apply(e.camera, e.input, deltaTime)
	}
	e.camera.Update()

	if err := e.world.Update(); err != nil {
		return fmt.Errorf("world update: %w", err)
	}

	e.assets.Wave.Advance(deltaTime)
	return nil
}

// render draws the reflection passes, terrain and water
func (e *Engine) render() error {
	e.backend.BeginFrame()
	if err := e.world.Render(); err != nil {
		return fmt.Errorf("world render: %w", err)
	}
	return nil
}

// cleanup releases GPU resources and closes the window
func (e *Engine) cleanup() {
	e.logger.Info("Shutting down engine...")
	if e.world != nil {
		e.world.Dispose()
		e.world = nil
	}
	if e.assets != nil {
		e.assets.Dispose()
		e.assets = nil
	}
	if e.window != nil {
		e.window.Destroy()
		e.window = nil
	}
	glfw.Terminate()
}

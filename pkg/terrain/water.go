package terrain

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"openworld/pkg/graphics"
)

var (
	// ErrNilShader is returned when a region is rendered without a bound shader
	ErrNilShader = errors.New("nil shader")
	// ErrDisposed is returned when a disposed region or water surface is used
	ErrDisposed = errors.New("already disposed")
)

// WorldRenderer draws the world from camera; reflected is true during
// reflection passes
type WorldRenderer func(camera graphics.Camera, reflected bool) error

// WaterRegion is the water surface of one region together with the
// off-screen target its reflection is rendered into
type WaterRegion struct {
	assets *Assets
	model  mgl32.Mat4
	height float32
	target graphics.RenderTarget
}

// newWaterRegion creates the reflection target for the region at offset.
// Failures mean the driver cannot provide the target and are fatal to the caller.
func newWaterRegion(offset mgl32.Vec3, assets *Assets) (*WaterRegion, error) {
	target, err := assets.backend.CreateRenderTarget(assets.ReflectionWidth, assets.ReflectionHeight)
	if err != nil {
		return nil, fmt.Errorf("reflection target: %w", err)
	}

	steps := []func() error{target.AttachColor, target.AttachDepth, target.Verify}
	for _, step := range steps {
		if err := step(); err != nil {
			target.Dispose()
			return nil, fmt.Errorf("reflection target: %w", err)
		}
	}

	return &WaterRegion{
		assets: assets,
		model:  mgl32.Translate3D(offset.X(), assets.WaterHeight, offset.Z()),
		height: assets.WaterHeight,
		target: target,
	}, nil
}

// ReflectHeight mirrors a camera height across the water plane
func ReflectHeight(water, camera float32) float32 {
	return water - (camera - water)
}

// Height returns the height of the water plane
func (w *WaterRegion) Height() float32 {
	return w.height
}

// ClipPlane is the plane equation that keeps geometry above the water
func (w *WaterRegion) ClipPlane() mgl32.Vec4 {
	return mgl32.Vec4{0, 1, 0, -w.height}
}

// Target returns the reflection render target, nil once disposed
func (w *WaterRegion) Target() graphics.RenderTarget {
	return w.target
}

// PreRender draws the reflected world into the reflection target. The camera
// is mirrored below the water plane for the duration of renderWorld and is
// always restored, even if renderWorld fails or panics.
func (w *WaterRegion) PreRender(camera graphics.Camera, renderWorld WorldRenderer) error {
	if w.target == nil {
		return fmt.Errorf("water region: %w", ErrDisposed)
	}
	if camera == nil || renderWorld == nil {
		return fmt.Errorf("water region: reflection pass needs a camera and a world renderer")
	}

	backend := w.assets.backend
	backend.EnableClipPlane()
	defer backend.DisableClipPlane()

	w.target.Bind()
	defer w.target.Unbind()
	w.target.Clear()

	position := camera.Position()
	mirrored := position
	mirrored[1] = ReflectHeight(w.height, position.Y())

	camera.SetPosition(mirrored)
	camera.InvertPitch()
	defer func() {
		camera.InvertPitch()
		camera.SetPosition(position)
		camera.Update()
	}()
	camera.Update()

	return renderWorld(camera, true)
}

// Render draws the water surface, sampling the reflection target and the
// shared displacement texture
func (w *WaterRegion) Render(camera graphics.Camera) error {
	if w.target == nil {
		return fmt.Errorf("water region: %w", ErrDisposed)
	}

	shader := w.assets.WaterShader
	if shader == nil {
		return fmt.Errorf("water region: %w", ErrNilShader)
	}
	shader.Bind()

	u := uniforms{shader: shader}
	u.set("m_model", w.model)
	u.set("m_view", camera.View())
	u.set("m_proj", camera.Projection())
	u.set("move_factor", float32(w.assets.Wave.Phase()))
	if u.err != nil {
		return fmt.Errorf("water region: %w", u.err)
	}

	w.target.BindColor(reflectionUnit)
	w.assets.Displacement.Bind(displacementUnit)
	w.assets.WaterQuad.Draw()
	return nil
}

// Dispose releases the reflection target. Safe to call more than once.
func (w *WaterRegion) Dispose() {
	if w.target != nil {
		w.target.Dispose()
		w.target = nil
	}
}

// uniforms sets a run of uniforms and keeps the first failure
type uniforms struct {
	shader graphics.Shader
	err    error
}

func (u *uniforms) set(name string, value interface{}) {
	if u.err == nil {
		u.err = u.shader.SetUniform(name, value)
	}
}

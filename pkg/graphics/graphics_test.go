package graphics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUniforms(t *testing.T) {
	vertex := `#version 410 core
layout(location = 0) in vec3 position;
uniform mat4 m_model;
uniform mat4 m_view;
  uniform highp mat4 m_proj;
uniform vec4 clip_plane;
// uniform float commented_out;
void main() {}
`
	fragment := `#version 410 core
uniform sampler2D ground_texture;
uniform mat4 m_view;
uniform vec3 lights[4];
`

	assert.Equal(t, []string{
		"m_model",
		"m_view",
		"m_proj",
		"clip_plane",
		"ground_texture",
		"lights",
	}, parseUniforms(vertex, fragment))

	assert.Empty(t, parseUniforms("void main() {}"))
}

func TestVertexLayout(t *testing.T) {
	assert.Equal(t, 8, PositionUVNormal.Stride())
	assert.Equal(t, 5, PositionUV.Stride())

	assert.Equal(t, 0, PositionUVNormal.Offset(0))
	assert.Equal(t, 3, PositionUVNormal.Offset(1))
	assert.Equal(t, 5, PositionUVNormal.Offset(2))
}

func TestInterleave(t *testing.T) {
	out, err := PositionUV.Interleave(2,
		[]float32{1, 2, 3, 4, 5, 6},
		[]float32{0.5, 0.25, 0.75, 1},
	)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 0.5, 0.25, 4, 5, 6, 0.75, 1}, out)

	_, err = PositionUV.Interleave(2, []float32{1, 2, 3})
	assert.Error(t, err, "attribute count mismatch")

	_, err = PositionUV.Interleave(2, []float32{1, 2, 3}, []float32{0, 0, 0, 0})
	assert.Error(t, err, "short attribute")
}

func TestCheckUniformValue(t *testing.T) {
	for _, v := range []interface{}{1, int32(1), float32(1), 1.0, mgl32.Vec3{}, mgl32.Vec4{}, mgl32.Ident4()} {
		assert.NoError(t, checkUniformValue("u", v), "%T", v)
	}
	for _, v := range []interface{}{"x", mgl32.Vec2{}, []float32{1}, nil} {
		assert.ErrorIs(t, checkUniformValue("u", v), ErrUnsupportedUniform, "%T", v)
	}
}

func vecInDelta(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-5)
}

func TestCameraMove(t *testing.T) {
	c := NewPerspectiveCamera(70, 1, 0.1, 100)

	c.Move(Forward, 2)
	vecInDelta(t, mgl32.Vec3{0, 0, -2}, c.Position())

	c.Move(Right, 3)
	vecInDelta(t, mgl32.Vec3{3, 0, -2}, c.Position())

	c.Move(Up, 1)
	c.Move(Backward, 2)
	c.Move(Left, 3)
	c.Move(Down, 1)
	vecInDelta(t, mgl32.Vec3{}, c.Position())
}

func TestCameraRotate(t *testing.T) {
	c := NewPerspectiveCamera(70, 1, 0.1, 100)

	// counter-clockwise seen from above turns -z towards -x
	c.Rotate(AxisYaw, 90)
	vecInDelta(t, mgl32.Vec3{-1, 0, 0}, c.Forward())

	c.Rotate(AxisYaw, -90)
	c.Rotate(AxisPitch, 90)
	assert.Equal(t, float32(89), c.Pitch(), "pitch is clamped short of vertical")
	assert.Greater(t, c.Forward().Y(), float32(0.99))

	c.Rotate(AxisPitch, -200)
	assert.Equal(t, float32(-89), c.Pitch())
}

func TestCameraInvertPitch(t *testing.T) {
	c := NewPerspectiveCamera(70, 1, 0.1, 100)
	c.Rotate(AxisPitch, 25)
	c.Rotate(AxisYaw, 40)
	c.Update()
	view := c.View()

	c.InvertPitch()
	assert.Equal(t, float32(-25), c.Pitch())
	assert.Less(t, c.Forward().Y(), float32(0))

	c.InvertPitch()
	c.Update()
	assert.Equal(t, float32(25), c.Pitch())
	assert.Equal(t, view, c.View())
}

func TestCameraView(t *testing.T) {
	c := NewPerspectiveCamera(70, 1, 0.1, 100)
	c.SetPosition(mgl32.Vec3{0, 5, 0})
	c.Update()

	// a point straight ahead lands on the view axis
	p := c.View().Mul4x1(mgl32.Vec4{0, 5, -10, 1})
	assert.InDeltaSlice(t, []float32{0, 0, -10, 1}, p[:], 1e-5)

	c.Rotate(AxisYaw, 90)
	c.Update()
	p = c.View().Mul4x1(mgl32.Vec4{-10, 5, 0, 1})
	assert.InDeltaSlice(t, []float32{0, 0, -10, 1}, p[:], 1e-4)
}

func TestCameraProjection(t *testing.T) {
	c := NewPerspectiveCamera(90, 2, 1, 100)
	assert.Equal(t, mgl32.Perspective(mgl32.DegToRad(90), 2, 1, 100), c.Projection())

	c.SetAspect(1)
	assert.Equal(t, mgl32.Perspective(mgl32.DegToRad(90), 1, 1, 100), c.Projection())
}

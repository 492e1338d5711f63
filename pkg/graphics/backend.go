package graphics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrUnknownUniform is returned when a shader has no uniform of the given name
	ErrUnknownUniform = errors.New("unknown uniform")
	// ErrUnsupportedUniform is returned for uniform values of an unsupported type
	ErrUnsupportedUniform = errors.New("unsupported uniform value")
	// ErrIncompleteTarget is returned when a render target fails its completeness check
	ErrIncompleteTarget = errors.New("render target incomplete")
)

// Backend is the set of GPU operations the world core relies on. Every
// constructor failure is an asset or driver defect and is treated as fatal
// by callers.
type Backend interface {
	// CompileShader compiles, links and validates the named shader program
	CompileShader(name string) (Shader, error)

	// LoadTexture uploads the named image file as a 2D texture
	LoadTexture(name string) (Texture, error)

	// CreateRenderTarget creates an empty off-screen target
	CreateRenderTarget(width, height int) (RenderTarget, error)

	// UploadMesh uploads interleaved vertex data and triangle indices
	UploadMesh(vertices []float32, indices []uint32, layout VertexLayout) (Mesh, error)

	// EnableClipPlane turns on user clip distance 0
	EnableClipPlane()

	// DisableClipPlane turns off user clip distance 0
	DisableClipPlane()
}

// Shader is a linked shader program
type Shader interface {
	Bind()

	// SetUniform accepts int, int32, float32, float64, mgl32.Vec3, mgl32.Vec4 and mgl32.Mat4
	SetUniform(name string, value interface{}) error

	Dispose()
}

// Texture is a 2D texture on the GPU
type Texture interface {
	Bind(unit int)
	Dispose()
}

// RenderTarget is an off-screen colour and depth target
type RenderTarget interface {
	AttachColor() error
	AttachDepth() error

	// Verify fails with ErrIncompleteTarget if the target cannot be drawn to
	Verify() error

	// Bind redirects drawing into the target and sets the viewport to its size
	Bind()

	// Unbind restores the default framebuffer and window viewport
	Unbind()

	Clear()

	// BindColor binds the colour attachment as a texture on the given unit
	BindColor(unit int)

	Size() (int, int)
	Dispose()
}

// Mesh is an uploaded indexed triangle mesh
type Mesh interface {
	Draw()
	IndexCount() int
	Dispose()
}

// VertexLayout lists the float component count of each vertex attribute in order
type VertexLayout []int

// PositionUVNormal is the layout used by terrain meshes
var PositionUVNormal = VertexLayout{3, 2, 3}

// PositionUV is the layout used by the water quad
var PositionUV = VertexLayout{3, 2}

// Stride returns the number of floats per vertex
func (l VertexLayout) Stride() int {
	stride := 0
	for _, size := range l {
		stride += size
	}
	return stride
}

// Offset returns the float offset of attribute i within a vertex
func (l VertexLayout) Offset(i int) int {
	offset := 0
	for _, size := range l[:i] {
		offset += size
	}
	return offset
}

// Interleave packs per-attribute float slices into one vertex buffer. Each
// attribute slice must hold exactly count*size floats.
func (l VertexLayout) Interleave(count int, attributes ...[]float32) ([]float32, error) {
	if len(attributes) != len(l) {
		return nil, fmt.Errorf("layout has %d attributes, got %d", len(l), len(attributes))
	}
	for i, attr := range attributes {
		if len(attr) != count*l[i] {
			return nil, fmt.Errorf("attribute %d has %d floats, want %d", i, len(attr), count*l[i])
		}
	}

	stride := l.Stride()
	out := make([]float32, 0, count*stride)
	for v := 0; v < count; v++ {
		for i, size := range l {
			out = append(out, attributes[i][v*size:(v+1)*size]...)
		}
	}
	return out, nil
}

// checkUniformValue reports whether value has a type SetUniform supports
func checkUniformValue(name string, value interface{}) error {
	switch value.(type) {
	case int, int32, float32, float64, mgl32.Vec3, mgl32.Vec4, mgl32.Mat4:
		return nil
	default:
		return fmt.Errorf("%w %T for %q", ErrUnsupportedUniform, value, name)
	}
}

package graphics

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/png" // texture files are PNG
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"openworld/internal/util"
)

// GLOptions locates shader and texture files on disk
type GLOptions struct {
	ShaderDir         string
	VertexExtension   string
	FragmentExtension string
	TextureDir        string
	ClearColor        mgl32.Vec4

	// Viewport returns the window framebuffer size restored after off-screen passes
	Viewport func() (int, int)
}

// GLBackend implements Backend on an OpenGL 4.1 core context. It must only
// be used from the thread that owns the context.
type GLBackend struct {
	opts GLOptions
}

var _ Backend = (*GLBackend)(nil)

// NewGLBackend configures global GL state. gl.Init must already have been
// called on the current context.
func NewGLBackend(opts GLOptions) (*GLBackend, error) {
	if opts.Viewport == nil {
		return nil, fmt.Errorf("gl backend needs a viewport provider")
	}
	for _, dir := range []string{opts.ShaderDir, opts.TextureDir} {
		if !util.DirExists(dir) {
			return nil, fmt.Errorf("asset directory %s not found", dir)
		}
	}
	if opts.VertexExtension == "" {
		opts.VertexExtension = "vs"
	}
	if opts.FragmentExtension == "" {
		opts.FragmentExtension = "fs"
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(opts.ClearColor[0], opts.ClearColor[1], opts.ClearColor[2], opts.ClearColor[3])

	return &GLBackend{opts: opts}, nil
}

// BeginFrame clears the default framebuffer and resets the viewport
func (b *GLBackend) BeginFrame() {
	w, h := b.opts.Viewport()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// EnableClipPlane turns on user clip distance 0
func (b *GLBackend) EnableClipPlane() {
	gl.Enable(gl.CLIP_DISTANCE0)
}

// DisableClipPlane turns off user clip distance 0
func (b *GLBackend) DisableClipPlane() {
	gl.Disable(gl.CLIP_DISTANCE0)
}

// CompileShader loads <dir>/<name>.<vs> and <dir>/<name>.<fs>, links them
// and registers every declared uniform
func (b *GLBackend) CompileShader(name string) (Shader, error) {
	vertPath := filepath.Join(b.opts.ShaderDir, name+"."+b.opts.VertexExtension)
	fragPath := filepath.Join(b.opts.ShaderDir, name+"."+b.opts.FragmentExtension)

	vertSource, err := readSource(vertPath)
	if err != nil {
		return nil, err
	}
	fragSource, err := readSource(fragPath)
	if err != nil {
		return nil, err
	}

	program, err := createShaderProgram(vertSource, fragSource)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %v", name, err)
	}

	s := &glShader{
		name:     name,
		program:  program,
		uniforms: make(map[string]int32),
	}

	gl.UseProgram(program)
	for _, uniform := range parseUniforms(vertSource, fragSource) {
		location := gl.GetUniformLocation(program, gl.Str(uniform+"\x00"))
		if location == -1 {
			gl.DeleteProgram(program)
			return nil, fmt.Errorf("shader %q: uniform %q is declared but has no location", name, uniform)
		}
		s.uniforms[uniform] = location
	}

	return s, nil
}

func readSource(path string) (string, error) {
	if !util.FileExists(path) {
		return "", fmt.Errorf("shader source %s not found", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read shader source %s: %v", path, err)
	}
	return string(data), nil
}

// createShaderProgram compiles, links and validates a shader program from source
func createShaderProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}

	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	// Shaders are owned by the program from here on
	gl.DetachShader(program, vertexShader)
	gl.DetachShader(program, fragmentShader)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	if err := programStatus(program, gl.LINK_STATUS, "linking"); err != nil {
		return 0, err
	}

	gl.ValidateProgram(program)
	if err := programStatus(program, gl.VALIDATE_STATUS, "validation"); err != nil {
		return 0, err
	}

	return program, nil
}

// programStatus deletes the program and returns its info log if the status check failed
func programStatus(program, status uint32, stage string) error {
	var ok int32
	gl.GetProgramiv(program, status, &ok)
	if ok != gl.FALSE {
		return nil
	}

	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))

	gl.DeleteProgram(program)
	return fmt.Errorf("shader program %s failed: %v", stage, strings.TrimRight(log, "\x00"))
}

// compileShader compiles a shader from source
func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))

		gl.DeleteShader(shader)

		return 0, fmt.Errorf("shader compilation failed: %v", strings.TrimRight(log, "\x00"))
	}

	return shader, nil
}

type glShader struct {
	name     string
	program  uint32
	uniforms map[string]int32
}

func (s *glShader) Bind() {
	gl.UseProgram(s.program)
}

func (s *glShader) SetUniform(name string, value interface{}) error {
	location, ok := s.uniforms[name]
	if !ok {
		return fmt.Errorf("shader %q: %w %q", s.name, ErrUnknownUniform, name)
	}
	if err := checkUniformValue(name, value); err != nil {
		return err
	}

	switch v := value.(type) {
	case int:
		gl.Uniform1i(location, int32(v))
	case int32:
		gl.Uniform1i(location, v)
	case float32:
		gl.Uniform1f(location, v)
	case float64:
		gl.Uniform1f(location, float32(v))
	case mgl32.Vec3:
		gl.Uniform3f(location, v[0], v[1], v[2])
	case mgl32.Vec4:
		gl.Uniform4f(location, v[0], v[1], v[2], v[3])
	case mgl32.Mat4:
		gl.UniformMatrix4fv(location, 1, false, &v[0])
	}
	return nil
}

func (s *glShader) Dispose() {
	if s.program != 0 {
		gl.DeleteProgram(s.program)
		s.program = 0
	}
}

// LoadTexture decodes <textureDir>/<name> and uploads it with mipmaps and repeat wrapping
func (b *GLBackend) LoadTexture(name string) (Texture, error) {
	path := filepath.Join(b.opts.TextureDir, name)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %v", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %v", path, err)
	}

	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(rgba.Rect.Dx()),
		int32(rgba.Rect.Dy()),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(rgba.Pix),
	)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return &glTexture{id: id}, nil
}

type glTexture struct {
	id uint32
}

func (t *glTexture) Bind(unit int) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, t.id)
}

func (t *glTexture) Dispose() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

// CreateRenderTarget generates an empty framebuffer; attachments are added separately
func (b *GLBackend) CreateRenderTarget(width, height int) (RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render target size must be positive, got %dx%d", width, height)
	}

	t := &glRenderTarget{
		width:    width,
		height:   height,
		viewport: b.opts.Viewport,
	}
	gl.GenFramebuffers(1, &t.fbo)
	return t, nil
}

type glRenderTarget struct {
	fbo          uint32
	colorTexture uint32
	depthBuffer  uint32
	width        int
	height       int
	viewport     func() (int, int)
}

func (t *glRenderTarget) AttachColor() error {
	if t.colorTexture != 0 {
		return fmt.Errorf("render target already has a colour attachment")
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.GenTextures(1, &t.colorTexture)
	gl.BindTexture(gl.TEXTURE_2D, t.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB, int32(t.width), int32(t.height), 0, gl.RGB, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.colorTexture, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

func (t *glRenderTarget) AttachDepth() error {
	if t.depthBuffer != 0 {
		return fmt.Errorf("render target already has a depth attachment")
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.GenRenderbuffers(1, &t.depthBuffer)
	gl.BindRenderbuffer(gl.RENDERBUFFER, t.depthBuffer)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(t.width), int32(t.height))
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.depthBuffer)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

func (t *glRenderTarget) Verify() error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("%w: status 0x%x", ErrIncompleteTarget, status)
	}
	return nil
}

func (t *glRenderTarget) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, int32(t.width), int32(t.height))
}

func (t *glRenderTarget) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	w, h := t.viewport()
	gl.Viewport(0, 0, int32(w), int32(h))
}

func (t *glRenderTarget) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (t *glRenderTarget) BindColor(unit int) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, t.colorTexture)
}

func (t *glRenderTarget) Size() (int, int) {
	return t.width, t.height
}

func (t *glRenderTarget) Dispose() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	if t.colorTexture != 0 {
		gl.DeleteTextures(1, &t.colorTexture)
		t.colorTexture = 0
	}
	if t.depthBuffer != 0 {
		gl.DeleteRenderbuffers(1, &t.depthBuffer)
		t.depthBuffer = 0
	}
}

// UploadMesh creates a VAO with one interleaved VBO and an index buffer
func (b *GLBackend) UploadMesh(vertices []float32, indices []uint32, layout VertexLayout) (Mesh, error) {
	stride := layout.Stride()
	if stride == 0 || len(vertices)%stride != 0 {
		return nil, fmt.Errorf("vertex data of %d floats does not fit stride %d", len(vertices), stride)
	}
	if len(indices) == 0 || len(indices)%3 != 0 {
		return nil, fmt.Errorf("index count %d is not a positive multiple of 3", len(indices))
	}
	vertexCount := uint32(len(vertices) / stride)
	for _, idx := range indices {
		if idx >= vertexCount {
			return nil, fmt.Errorf("index %d out of range for %d vertices", idx, vertexCount)
		}
	}

	m := &glMesh{indexCount: int32(len(indices))}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	for i, size := range layout {
		gl.VertexAttribPointer(uint32(i), int32(size), gl.FLOAT, false, int32(stride*4), gl.PtrOffset(layout.Offset(i)*4))
		gl.EnableVertexAttribArray(uint32(i))
	}

	gl.BindVertexArray(0)

	return m, nil
}

type glMesh struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
}

func (m *glMesh) Draw() {
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

func (m *glMesh) IndexCount() int {
	return int(m.indexCount)
}

func (m *glMesh) Dispose() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		gl.DeleteBuffers(1, &m.vbo)
		gl.DeleteBuffers(1, &m.ebo)
		m.vao, m.vbo, m.ebo = 0, 0, 0
	}
}

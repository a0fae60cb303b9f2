//go:build !tinygo && cgo

package glview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/glgl/v4.1-core/glgl"
	"github.com/soypat/prismscene"
)

const vertexSource = `#version 410
in vec3 aPos;
in vec2 aUV;
uniform mat4 uMVP;
out vec2 vUV;
void main() {
	vUV = aUV;
	gl_Position = uMVP * vec4(aPos, 1.0);
}
` + "\x00"

const fragmentSource = `#version 410
in vec2 vUV;
uniform vec4 uColor;
uniform int uTextured;
uniform sampler2D uTex;
out vec4 fragColor;
void main() {
	if (uTextured == 1) {
		fragColor = vec4(uColor.rgb, uColor.a * texture(uTex, vUV).r);
	} else {
		fragColor = uColor;
	}
}
` + "\x00"

// Viewer is a GLFW window that renders sessions with OpenGL 4.1.
// It is both the [prismscene.FrameSource] and [prismscene.RenderTarget] of a session
// and must be used from the thread that opened it.
type Viewer struct {
	window *glfw.Window
	prog   glgl.Program

	uMVP, uColor, uTextured, uTex int32
	aPos, aUV                     uint32

	meshes    map[*prismscene.Mesh]glMesh
	label     *prismscene.Label
	labelMesh glMesh
	labelTex  uint32

	width, height int
	rendered      bool
}

type glMesh struct {
	vao, vbo uint32
	count    int32
}

// Run opens a window, builds a session on it and runs the session until the
// window is closed, Escape is pressed or ctx is done.
func Run(ctx context.Context, cfg prismscene.Config) error {
	v, err := Open(cfg)
	if err != nil {
		return err
	}
	defer v.Close()
	s, err := prismscene.NewSession(ctx, cfg, v)
	if err != nil {
		return err
	}
	v.Attach(s)
	return s.Run(ctx, v)
}

// Open creates the window and compiles the scene program. Call Close when done.
func Open(cfg prismscene.Config) (*Viewer, error) {
	window, err := startGLFW(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	v := &Viewer{
		window: window,
		meshes: make(map[*prismscene.Mesh]glMesh),
	}
	err = v.initGL()
	if err != nil {
		v.Close()
		return nil, err
	}
	return v, nil
}

// Attach routes window input to s. Callbacks run inside NextFrame.
func (v *Viewer) Attach(s *prismscene.Session) {
	v.window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		s.PointerMove(xpos, ypos)
	})
	v.window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			s.PointerDown(w.GetCursorPos())
		case glfw.Release:
			s.PointerUp()
		}
	})
	v.window.SetSizeCallback(func(w *glfw.Window, width, height int) {
		s.Resize(width, height)
	})
	v.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			s.Stop()
		}
	})
}

// NextFrame presents the last rendered frame, waits for vertical sync and dispatches pending input.
func (v *Viewer) NextFrame(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	if v.rendered {
		v.window.SwapBuffers()
	}
	glfw.PollEvents()
	if v.window.ShouldClose() {
		return time.Time{}, prismscene.ErrClosed
	}
	return time.Now(), nil
}

// SetSize records the viewport size and fits the GL viewport to the framebuffer.
func (v *Viewer) SetSize(width, height int) {
	v.width, v.height = width, height
	fbw, fbh := v.window.GetFramebufferSize()
	gl.Viewport(0, 0, int32(fbw), int32(fbh))
}

// Size returns the viewport size set by the last SetSize call.
func (v *Viewer) Size() (width, height int) { return v.width, v.height }

// Render draws the scene into the back buffer.
func (v *Viewer) Render(sc *prismscene.Scene, cam *prismscene.Camera) error {
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	v.prog.Bind()
	vp := cam.ViewProjection()
	gl.Uniform1i(v.uTextured, 0)
	sc.Visit(func(o *prismscene.Object) {
		if o.Mesh == nil {
			return
		}
		m := v.mesh(o.Mesh)
		mvp := vp.Mul4(o.Model())
		gl.UniformMatrix4fv(v.uMVP, 1, false, &mvp[0])
		gl.Uniform4f(v.uColor, o.Color.R, o.Color.G, o.Color.B, 1)
		gl.BindVertexArray(m.vao)
		gl.DrawArrays(gl.TRIANGLES, 0, m.count)
	})
	if l := sc.Label; l != nil {
		if l != v.label {
			v.uploadLabel(l)
		}
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.Uniform1i(v.uTextured, 1)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, v.labelTex)
		gl.UniformMatrix4fv(v.uMVP, 1, false, &vp[0])
		gl.Uniform4f(v.uColor, l.Color.R, l.Color.G, l.Color.B, 1)
		gl.BindVertexArray(v.labelMesh.vao)
		gl.DrawArrays(gl.TRIANGLES, 0, v.labelMesh.count)
		gl.Disable(gl.BLEND)
	}
	gl.BindVertexArray(0)
	v.rendered = true
	return glgl.Err()
}

// Close releases GL resources, destroys the window and terminates GLFW.
func (v *Viewer) Close() {
	for _, m := range v.meshes {
		m.delete()
	}
	clear(v.meshes)
	if v.label != nil {
		v.labelMesh.delete()
		gl.DeleteTextures(1, &v.labelTex)
		v.label = nil
	}
	if v.prog.ID() != 0 {
		v.prog.Delete()
	}
	v.window.Destroy()
	glfw.Terminate()
}

func (v *Viewer) initGL() (err error) {
	v.prog, err = glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   vertexSource,
		Fragment: fragmentSource,
	})
	if err != nil {
		return fmt.Errorf("compiling scene program: %w", err)
	}
	v.prog.Bind()
	for _, u := range []struct {
		dst  *int32
		name string
	}{
		{&v.uMVP, "uMVP\x00"},
		{&v.uColor, "uColor\x00"},
		{&v.uTextured, "uTextured\x00"},
		{&v.uTex, "uTex\x00"},
	} {
		*u.dst, err = v.prog.UniformLocation(u.name)
		if err != nil {
			return err
		}
	}
	v.aPos, err = v.prog.AttribLocation("aPos\x00")
	if err != nil {
		return err
	}
	v.aUV, err = v.prog.AttribLocation("aUV\x00")
	if err != nil {
		return err
	}
	gl.Uniform1i(v.uTex, 0)
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.Enable(gl.MULTISAMPLE)
	err = glgl.Err()
	if err != nil {
		return errors.Join(errors.New("configuring GL state"), err)
	}
	return nil
}

// mesh returns the GPU copy of m, uploading it on first use.
func (v *Viewer) mesh(m *prismscene.Mesh) glMesh {
	gm, ok := v.meshes[m]
	if !ok {
		gm = v.upload(meshVertices(m))
		v.meshes[m] = gm
	}
	return gm
}

func (v *Viewer) upload(vertices []float32) (m glMesh) {
	const stride = floatsPerVertex * 4
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(vertices), gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(v.aPos)
	gl.VertexAttribPointer(v.aPos, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(v.aUV)
	gl.VertexAttribPointer(v.aUV, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	m.count = int32(len(vertices) / floatsPerVertex)
	return m
}

func (v *Viewer) uploadLabel(l *prismscene.Label) {
	if v.label != nil {
		v.labelMesh.delete()
		gl.DeleteTextures(1, &v.labelTex)
	}
	b := l.Bitmap
	gl.GenTextures(1, &v.labelTex)
	gl.BindTexture(gl.TEXTURE_2D, v.labelTex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(b.Rect.Dx()), int32(b.Rect.Dy()), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(b.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	v.labelMesh = v.upload(labelVertices(l))
	v.label = l
}

func (m *glMesh) delete() {
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteVertexArrays(1, &m.vao)
}

func startGLFW(width, height int) (*glfw.Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initializing GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Samples, 4)

	window, err := glfw.CreateWindow(width, height, "prismscene", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("creating window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	return window, nil
}

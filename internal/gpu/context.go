package gpu

import (
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/san-kum/glcompute/internal/compute"
	"github.com/san-kum/glcompute/internal/config"
)

// Context is a current OpenGL context backed by an invisible window.
type Context struct {
	window  *glfw.Window
	version string
}

// Open initializes GLFW, creates a hidden window with the requested
// context version and resolves the GL entry points. Every failure releases
// what was acquired so far; there is no retry or fallback version.
//
// glfw reports some platform errors (no display, for one) by logging them
// and panicking on the next call, so those panics are turned back into
// ErrInit or ErrWindow here.
func Open(cfg config.ContextConfig) (c *Context, err error) {
	stage := compute.ErrInit
	defer func() {
		if r := recover(); r != nil {
			glfw.Terminate()
			c, err = nil, errors.Wrapf(stage, "glfw: %v", r)
		}
	}()

	if err := glfw.Init(); err != nil {
		return nil, errors.Wrapf(compute.ErrInit, "failed to init GLFW: %v", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, cfg.Major)
	glfw.WindowHint(glfw.ContextVersionMinor, cfg.Minor)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.False)

	stage = compute.ErrWindow
	window, werr := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if werr != nil || window == nil {
		glfw.Terminate()
		if werr == nil {
			werr = errors.New("no window returned")
		}
		return nil, errors.Wrapf(compute.ErrWindow, "failed to create GLFW window: %v", werr)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, errors.Wrapf(compute.ErrLoader, "failed to init opengl: %v", err)
	}

	c = &Context{
		window:  window,
		version: gl.GoStr(gl.GetString(gl.VERSION)),
	}
	klog.V(1).Infof("opengl context %s ready (%dx%d hidden window)", c.version, cfg.Width, cfg.Height)
	return c, nil
}

func (c *Context) Name() string    { return config.BackendOpenGL }
func (c *Context) Version() string { return c.version }

// Close destroys the window and shuts GLFW down. It is safe to call twice.
func (c *Context) Close() {
	if c.window == nil {
		return
	}
	c.window.Destroy()
	c.window = nil
	glfw.Terminate()
	klog.V(1).Info("opengl context closed")
}

// Limits describes the compute capabilities of the current context.
type Limits struct {
	Version            string
	Vendor             string
	Renderer           string
	GLSLVersion        string
	MaxWorkGroupCount  [3]int32
	MaxWorkGroupSize   [3]int32
	MaxInvocations     int32
	MaxStorageBindings int32
}

func (c *Context) Limits() Limits {
	l := Limits{
		Version:     c.version,
		Vendor:      gl.GoStr(gl.GetString(gl.VENDOR)),
		Renderer:    gl.GoStr(gl.GetString(gl.RENDERER)),
		GLSLVersion: gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
	}
	for axis := uint32(0); axis < 3; axis++ {
		gl.GetIntegeri_v(gl.MAX_COMPUTE_WORK_GROUP_COUNT, axis, &l.MaxWorkGroupCount[axis])
		gl.GetIntegeri_v(gl.MAX_COMPUTE_WORK_GROUP_SIZE, axis, &l.MaxWorkGroupSize[axis])
	}
	gl.GetIntegerv(gl.MAX_COMPUTE_WORK_GROUP_INVOCATIONS, &l.MaxInvocations)
	gl.GetIntegerv(gl.MAX_SHADER_STORAGE_BUFFER_BINDINGS, &l.MaxStorageBindings)
	return l
}

package gpu

import (
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"
	"k8s.io/klog/v2"

	"github.com/san-kum/glcompute/internal/compute"
)

// Program is a linked compute program.
type Program struct {
	id uint32
}

// CompileCompute compiles k.Source as a compute shader and links it into a
// standalone program. The shader object is deleted once linking succeeds.
func (c *Context) CompileCompute(k compute.Kernel) (compute.Program, error) {
	source := k.Source
	if !strings.HasSuffix(source, "\x00") {
		source += "\x00"
	}

	shader := gl.CreateShader(gl.COMPUTE_SHADER)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		log := shaderLog(shader)
		gl.DeleteShader(shader)
		return nil, &compute.ShaderError{Stage: compute.StageCompile, Log: log}
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)

	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		log := programLog(program)
		gl.DeleteProgram(program)
		gl.DeleteShader(shader)
		return nil, &compute.ShaderError{Stage: compute.StageLink, Log: log}
	}

	gl.DeleteShader(shader)
	klog.V(1).Infof("linked compute program %d for %s", program, k.Name)
	return &Program{id: program}, nil
}

// Dispatch launches the grid and waits on a shader storage barrier so the
// writes are visible to a following buffer map.
func (p *Program) Dispatch(x, y, z uint32) {
	gl.UseProgram(p.id)
	gl.DispatchCompute(x, y, z)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT)
}

func (p *Program) Release() {
	if p.id == 0 {
		return
	}
	gl.DeleteProgram(p.id)
	klog.V(2).Infof("deleted program %d", p.id)
	p.id = 0
}

// shaderLog and programLog size the buffer from INFO_LOG_LENGTH so long
// driver messages are never cut off.
func shaderLog(shader uint32) string {
	var length int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &length)
	if length <= 0 {
		return ""
	}
	buf := make([]byte, length+1)
	gl.GetShaderInfoLog(shader, length, nil, &buf[0])
	return trimLog(buf)
}

func programLog(program uint32) string {
	var length int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
	if length <= 0 {
		return ""
	}
	buf := make([]byte, length+1)
	gl.GetProgramInfoLog(program, length, nil, &buf[0])
	return trimLog(buf)
}

func trimLog(buf []byte) string {
	return strings.TrimRight(string(buf), "\x00")
}

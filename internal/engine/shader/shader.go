// Package shader provides OpenGL shader compilation and uniform lookup.
package shader

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Program is a linked shader program with its uniform locations resolved
// once at link time. Setters on absent uniforms are no-ops, so one renderer
// can drive shader variants that drop unused uniforms.
type Program struct {
	ID       uint32
	uniforms Uniforms
}

// NewProgram compiles and links the sources and resolves the named uniforms.
func NewProgram(vertexSrc, fragmentSrc string, uniforms ...string) (*Program, error) {
	id, err := CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, err
	}
	return &Program{
		ID:       id,
		uniforms: ResolveUniforms(uniforms, func(name string) int32 { return GetUniform(id, name) }),
	}, nil
}

// Has reports whether the program uses the named uniform.
func (p *Program) Has(name string) bool { return p.uniforms.Has(name) }

// Uniforms returns the resolved uniform table.
func (p *Program) Uniforms() Uniforms { return p.uniforms }

// Use makes the program current.
func (p *Program) Use() { gl.UseProgram(p.ID) }

// Delete releases the GL program.
func (p *Program) Delete() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}

func (p *Program) SetInt(name string, v int32) {
	if loc, ok := p.uniforms.Loc(name); ok {
		gl.Uniform1i(loc, v)
	}
}

func (p *Program) SetFloat(name string, v float32) {
	if loc, ok := p.uniforms.Loc(name); ok {
		gl.Uniform1f(loc, v)
	}
}

func (p *Program) SetVec2(name string, v mgl32.Vec2) {
	if loc, ok := p.uniforms.Loc(name); ok {
		gl.Uniform2f(loc, v[0], v[1])
	}
}

func (p *Program) SetVec4(name string, v mgl32.Vec4) {
	if loc, ok := p.uniforms.Loc(name); ok {
		gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	}
}

func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	if loc, ok := p.uniforms.Loc(name); ok {
		gl.UniformMatrix4fv(loc, 1, false, &m[0])
	}
}

// Uniforms maps uniform names to locations. Names the linker dropped are
// recorded as absent.
type Uniforms map[string]int32

// ResolveUniforms looks up every name once.
func ResolveUniforms(names []string, lookup func(string) int32) Uniforms {
	u := make(Uniforms, len(names))
	for _, name := range names {
		u[name] = lookup(name)
	}
	return u
}

// Loc returns the location of name and whether the program uses it.
func (u Uniforms) Loc(name string) (int32, bool) {
	loc, ok := u[name]
	if !ok || loc < 0 {
		return -1, false
	}
	return loc, true
}

// Has reports whether name resolved to an active uniform.
func (u Uniforms) Has(name string) bool {
	_, ok := u.Loc(name)
	return ok
}

// Missing returns the requested names the program does not use.
func (u Uniforms) Missing() []string {
	var out []string
	for name, loc := range u {
		if loc < 0 {
			out = append(out, name)
		}
	}
	return out
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", string(log))
	}

	return program, nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, string(log))
	}

	return shader, nil
}

// GetUniform returns the uniform location for the given name, or -1 if the
// uniform is not found or inactive.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

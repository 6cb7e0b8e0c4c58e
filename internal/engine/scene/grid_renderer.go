package scene

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/terrastream/internal/engine/debug"
	"github.com/Faultbox/terrastream/internal/engine/scene/shaders"
	"github.com/Faultbox/terrastream/internal/engine/shader"
	"github.com/Faultbox/terrastream/internal/world/quadtree"
	gmath "github.com/Faultbox/terrastream/pkg/math"
)

// GridRenderer outlines each visible node.
type GridRenderer struct {
	program  *shader.Program
	vao      uint32
	vbo      uint32
	capacity int // vertex buffer size in floats
	verts    []float32

	Color   mgl32.Vec4
	Enabled bool
}

// NewGridRenderer compiles the outline shader.
func NewGridRenderer() (*GridRenderer, error) {
	program, err := shader.NewProgram(shaders.GridVertexShader, shaders.GridFragmentShader,
		uViewProj, uColor)
	if err != nil {
		return nil, fmt.Errorf("grid shader: %w", err)
	}
	r := &GridRenderer{
		program: program,
		Color:   mgl32.Vec4{1, 1, 1, 0.35},
	}
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return r, nil
}

// Toggle flips Enabled.
func (r *GridRenderer) Toggle() { r.Enabled = !r.Enabled }

// Draw outlines nodes when enabled.
func (r *GridRenderer) Draw(nodes []quadtree.Node, camera gmath.Vec2, viewProj mgl32.Mat4) {
	if !r.Enabled || len(nodes) == 0 {
		return
	}

	r.verts = r.verts[:0]
	for _, n := range nodes {
		r.verts = debug.AppendRectOutline(r.verts, n.Bounds(), camera)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	if len(r.verts) > r.capacity {
		r.capacity = cap(r.verts)
		gl.BufferData(gl.ARRAY_BUFFER, r.capacity*4, nil, gl.DYNAMIC_DRAW)
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(r.verts)*4, gl.Ptr(r.verts))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.program.Use()
	r.program.SetMat4(uViewProj, viewProj)
	r.program.SetVec4(uColor, r.Color)
	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.LINES, 0, int32(len(r.verts)/2))
	gl.BindVertexArray(0)
}

// Delete releases GL resources.
func (r *GridRenderer) Delete() {
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	r.program.Delete()
}

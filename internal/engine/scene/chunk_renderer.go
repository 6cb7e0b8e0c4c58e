package scene

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/terrastream/internal/engine/scene/shaders"
	"github.com/Faultbox/terrastream/internal/engine/shader"
	"github.com/Faultbox/terrastream/internal/engine/texture"
	"github.com/Faultbox/terrastream/internal/world/quadtree"
	gmath "github.com/Faultbox/terrastream/pkg/math"
)

const (
	uViewProj    = "u_view_proj"
	uChunkOrigin = "u_chunk_origin"
	uChunkSize   = "u_chunk_size"
	uTiles       = "u_tiles"
	uLayer       = "u_layer"
	uDaylight    = "u_daylight"
	uColor       = "u_color"
)

// ChunkRenderer draws one quad per visible node, sampling the node's slot
// in the texture array.
type ChunkRenderer struct {
	program *shader.Program
	vao     uint32
	vbo     uint32

	// Drawn and Skipped count nodes in the last Draw.
	Drawn   int
	Skipped int
}

// NewChunkRenderer compiles the chunk shader and uploads the unit quad.
func NewChunkRenderer() (*ChunkRenderer, error) {
	program, err := shader.NewProgram(shaders.ChunkVertexShader, shaders.ChunkFragmentShader,
		uViewProj, uChunkOrigin, uChunkSize, uTiles, uLayer, uDaylight)
	if err != nil {
		return nil, fmt.Errorf("chunk shader: %w", err)
	}
	r := &ChunkRenderer{program: program}

	// Triangle strip, origin bottom-left.
	corners := []float32{
		0, 0,
		1, 0,
		0, 1,
		1, 1,
	}
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(corners)*4, unsafe.Pointer(&corners[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return r, nil
}

// Draw renders nodes in order. Nodes without a slot are skipped. Chunk
// origins are made relative to camera before narrowing to float32, so deep
// zoom far from the world origin keeps its precision.
func (r *ChunkRenderer) Draw(nodes []quadtree.Node, pool *texture.Pool, tiles *texture.GLArrayBackend,
	camera gmath.Vec2, viewProj mgl32.Mat4, daylight float32) {
	r.Drawn, r.Skipped = 0, 0

	r.program.Use()
	r.program.SetMat4(uViewProj, viewProj)
	r.program.SetInt(uTiles, 0)
	r.program.SetFloat(uDaylight, daylight)
	tiles.Bind(0)
	gl.BindVertexArray(r.vao)

	for _, n := range nodes {
		slot, ok := pool.SlotFor(n.Key)
		if !ok {
			r.Skipped++
			continue
		}
		rel := n.Origin().Sub(camera)
		r.program.SetVec2(uChunkOrigin, mgl32.Vec2{float32(rel.X), float32(rel.Y)})
		r.program.SetFloat(uChunkSize, float32(n.Size()))
		r.program.SetFloat(uLayer, float32(slot))
		gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
		r.Drawn++
	}

	gl.BindVertexArray(0)
}

// Delete releases GL resources.
func (r *ChunkRenderer) Delete() {
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	r.program.Delete()
}

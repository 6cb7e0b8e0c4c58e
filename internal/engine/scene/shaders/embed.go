// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// ChunkVertexShader places one unit quad per visible chunk.
//
//go:embed chunk.vert
var ChunkVertexShader string

// ChunkFragmentShader samples the chunk's texture array layer.
//
//go:embed chunk.frag
var ChunkFragmentShader string

// GridVertexShader is the vertex shader for the node outline overlay.
//
//go:embed grid.vert
var GridVertexShader string

// GridFragmentShader is the fragment shader for the node outline overlay.
//
//go:embed grid.frag
var GridFragmentShader string

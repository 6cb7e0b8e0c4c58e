package texture

import (
	"github.com/go-gl/gl/v4.1-core/gl"
)

// GLArrayBackend stores slots as the layers of one GL_TEXTURE_2D_ARRAY.
// Methods must be called on the thread that owns the GL context.
type GLArrayBackend struct {
	id     uint32
	res    int
	layers int
}

// NewGLArrayBackend allocates an RGBA8 array texture with nearest filtering.
func NewGLArrayBackend(layers, res int) *GLArrayBackend {
	b := &GLArrayBackend{res: res, layers: layers}

	gl.GenTextures(1, &b.id)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, b.id)
	gl.TexImage3D(gl.TEXTURE_2D_ARRAY, 0, gl.RGBA8,
		int32(res), int32(res), int32(layers),
		0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)
	return b
}

// ID returns the GL texture name.
func (b *GLArrayBackend) ID() uint32 { return b.id }

func (b *GLArrayBackend) Layers() int { return b.layers }

func (b *GLArrayBackend) Upload(slot, res int, rgba []byte) error {
	if err := checkUpload(slot, b.layers, res, b.res, rgba); err != nil {
		return err
	}
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, b.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage3D(gl.TEXTURE_2D_ARRAY, 0,
		0, 0, int32(slot),
		int32(res), int32(res), 1,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba))
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)
	return nil
}

// Bind binds the array to a texture unit.
func (b *GLArrayBackend) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, b.id)
}

// Delete frees the GL texture.
func (b *GLArrayBackend) Delete() {
	if b.id != 0 {
		gl.DeleteTextures(1, &b.id)
		b.id = 0
	}
}

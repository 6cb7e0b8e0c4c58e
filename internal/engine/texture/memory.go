package texture

import "fmt"

// MemoryBackend keeps slot pixels in host memory.
type MemoryBackend struct {
	res    int
	layers [][]byte

	// FailUpload, when set, is returned by the next Upload calls.
	FailUpload error
}

// NewMemoryBackend allocates layers slots of res x res RGBA8 pixels.
func NewMemoryBackend(layers, res int) *MemoryBackend {
	b := &MemoryBackend{res: res, layers: make([][]byte, layers)}
	for i := range b.layers {
		b.layers[i] = make([]byte, res*res*4)
	}
	return b
}

func (b *MemoryBackend) Layers() int { return len(b.layers) }

func (b *MemoryBackend) Resolution() int { return b.res }

func (b *MemoryBackend) Upload(slot, res int, rgba []byte) error {
	if b.FailUpload != nil {
		return b.FailUpload
	}
	if err := checkUpload(slot, len(b.layers), res, b.res, rgba); err != nil {
		return err
	}
	copy(b.layers[slot], rgba)
	return nil
}

// Layer returns the pixels of one slot. The slice is owned by the backend.
func (b *MemoryBackend) Layer(slot int) []byte { return b.layers[slot] }

func checkUpload(slot, layers, res, want int, rgba []byte) error {
	if slot < 0 || slot >= layers {
		return fmt.Errorf("slot %d out of range [0, %d)", slot, layers)
	}
	if res != want {
		return fmt.Errorf("chunk resolution %d, slots hold %d", res, want)
	}
	if len(rgba) != res*res*4 {
		return fmt.Errorf("got %d bytes, want %d", len(rgba), res*res*4)
	}
	return nil
}

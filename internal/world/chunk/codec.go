package chunk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Binary layout (little endian):
//
//	magic "TSCK" | version u32 | x i64 | y i64 | level u32 | res u32 | channels u32 | values f32...
const (
	codecVersion = 1
	headerSize   = 4 + 4 + 8 + 8 + 4 + 4 + 4
)

var codecMagic = [4]byte{'T', 'S', 'C', 'K'}

// ErrCorrupt is returned when encoded chunk bytes cannot be decoded.
var ErrCorrupt = errors.New("chunk: corrupt encoding")

// MarshalBinary implements encoding.BinaryMarshaler.
func (d *Data) MarshalBinary() ([]byte, error) {
	buf := make([]byte, headerSize+len(d.values)*4)
	copy(buf[0:4], codecMagic[:])
	le := binary.LittleEndian
	le.PutUint32(buf[4:], codecVersion)
	le.PutUint64(buf[8:], uint64(int64(d.key.X)))
	le.PutUint64(buf[16:], uint64(int64(d.key.Y)))
	le.PutUint32(buf[24:], uint32(d.key.Level))
	le.PutUint32(buf[28:], uint32(d.res))
	le.PutUint32(buf[32:], NumChannels)

	off := headerSize
	for _, v := range d.values {
		le.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}
	return buf, nil
}

// Decode parses bytes produced by MarshalBinary. The result is clean.
func Decode(b []byte) (*Data, error) {
	if len(b) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than header", ErrCorrupt, len(b))
	}
	if [4]byte(b[0:4]) != codecMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, b[0:4])
	}
	le := binary.LittleEndian
	if v := le.Uint32(b[4:]); v != codecVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, v)
	}
	key := Key{
		X:     int(int64(le.Uint64(b[8:]))),
		Y:     int(int64(le.Uint64(b[16:]))),
		Level: int(le.Uint32(b[24:])),
	}
	res := int(le.Uint32(b[28:]))
	if ch := le.Uint32(b[32:]); ch != NumChannels {
		return nil, fmt.Errorf("%w: %d channels, want %d", ErrCorrupt, ch, NumChannels)
	}
	if res <= 0 || res > MaxResolution {
		return nil, fmt.Errorf("%w: resolution %d", ErrCorrupt, res)
	}
	n := res * res * NumChannels
	if len(b) != headerSize+n*4 {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrCorrupt, len(b), headerSize+n*4)
	}

	values := make([]float32, n)
	off := headerSize
	for i := range values {
		values[i] = math.Float32frombits(le.Uint32(b[off:]))
		off += 4
	}
	d, err := FromValues(key, res, values)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return d, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (d *Data) UnmarshalBinary(b []byte) error {
	decoded, err := Decode(b)
	if err != nil {
		return err
	}
	*d = *decoded
	return nil
}

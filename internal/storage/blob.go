package storage

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/Faultbox/terrastream/internal/world/chunk"
)

// Shared coders; EncodeAll and DecodeAll are safe for concurrent use.
var (
	blobEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	blobDecoder, _ = zstd.NewReader(nil)
)

func encodeChunk(d *chunk.Data) ([]byte, error) {
	raw, err := d.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode chunk %v: %w", d.Key(), err)
	}
	return blobEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// decodeChunk inflates a blob and checks it holds the requested key.
// The returned data is clean.
func decodeChunk(key chunk.Key, blob []byte) (*chunk.Data, error) {
	raw, err := blobDecoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress chunk %v: %w", key, err)
	}
	d, err := chunk.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode chunk %v: %w", key, err)
	}
	if d.Key() != key {
		return nil, fmt.Errorf("decode chunk %v: holds %v: %w", key, d.Key(), chunk.ErrCorrupt)
	}
	return d, nil
}

package codec

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Zstd wraps an inner codec with zstd block compression. Good ratio;
// use for templates at rest.
type Zstd struct {
	Inner Codec
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Marshal encodes with the inner codec and compresses the result.
func (c Zstd) Marshal(v any) ([]byte, error) {
	raw, err := c.inner().Marshal(v)
	if err != nil {
		return nil, err
	}
	enc := getZstdEncoder()
	defer zstdEncoderPool.Put(enc)
	return enc.EncodeAll(raw, nil), nil
}

// Unmarshal decompresses the data and decodes with the inner codec.
func (c Zstd) Unmarshal(data []byte, v any) error {
	dec := getZstdDecoder()
	defer zstdDecoderPool.Put(dec)
	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return err
	}
	return c.inner().Unmarshal(raw, v)
}

// Name returns the unique name of the codec.
func (c Zstd) Name() string { return c.inner().Name() + "+zstd" }

func (c Zstd) inner() Codec {
	if c.Inner == nil {
		return JSON{}
	}
	return c.Inner
}

// LZ4 wraps an inner codec with LZ4 block compression. Fast; use for
// score payloads on the wire.
//
// Block format: [UncompressedSize uint32][CompressedSize uint32][Data].
// CompressedSize 0 means the payload was incompressible and is stored
// raw.
type LZ4 struct {
	Inner Codec
}

const lz4HeaderSize = 8

// Marshal encodes with the inner codec and compresses the result.
func (c LZ4) Marshal(v any) ([]byte, error) {
	raw, err := c.inner().Marshal(v)
	if err != nil {
		return nil, err
	}

	bound := lz4.CompressBlockBound(len(raw))
	compressed := make([]byte, bound)
	n, err := lz4.CompressBlock(raw, compressed, nil)
	if err != nil {
		return nil, err
	}

	payload := compressed[:n]
	if n == 0 || n >= len(raw) {
		// Incompressible; store raw.
		payload = raw
		n = 0
	}

	out := make([]byte, lz4HeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(raw)))
	binary.LittleEndian.PutUint32(out[4:], uint32(n))
	copy(out[lz4HeaderSize:], payload)
	return out, nil
}

// Unmarshal decompresses the data and decodes with the inner codec.
func (c LZ4) Unmarshal(data []byte, v any) error {
	if len(data) < lz4HeaderSize {
		return errors.New("lz4 payload too small for header")
	}
	uncompressedSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])
	payload := data[lz4HeaderSize:]

	if compressedSize == 0 {
		if uint32(len(payload)) < uncompressedSize {
			return errors.New("lz4 raw payload truncated")
		}
		return c.inner().Unmarshal(payload[:uncompressedSize], v)
	}

	if uint32(len(payload)) < compressedSize {
		return errors.New("lz4 compressed payload truncated")
	}
	raw := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(payload[:compressedSize], raw)
	if err != nil {
		return err
	}
	if uint32(n) != uncompressedSize {
		return errors.New("lz4 decompressed size mismatch")
	}
	return c.inner().Unmarshal(raw, v)
}

// Name returns the unique name of the codec.
func (c LZ4) Name() string { return c.inner().Name() + "+lz4" }

func (c LZ4) inner() Codec {
	if c.Inner == nil {
		return JSON{}
	}
	return c.Inner
}

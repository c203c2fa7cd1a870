package snapshot

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/mapstruct/endian"
	"github.com/hupe1980/mapstruct/internal/conv"
)

// Compression selects the block codec.
type Compression uint8

const (
	// CompressionNone stores blocks as they are.
	CompressionNone Compression = 0
	// CompressionLZ4 favours speed.
	CompressionLZ4 Compression = 1
	// CompressionZstd favours ratio.
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

func (c Compression) valid() bool {
	return c <= CompressionZstd
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// blockHeaderSize is [raw length u32][stored length u32].
// A stored length of 0 means the block follows uncompressed.
const blockHeaderSize = 8

// encodeBlock frames data as one block, compressed if that saves at least a tenth.
func encodeBlock(data []byte, c Compression) ([]byte, error) {
	var packed []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		packed = buf[:n]
	case CompressionZstd:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, err
		}
		packed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	}

	raw, err := conv.IntToUint32(len(data))
	if err != nil {
		return nil, err
	}

	if len(packed) == 0 || len(packed)*10 > len(data)*9 {
		out := make([]byte, blockHeaderSize+len(data))
		endian.Put(out[0:], raw)
		endian.Put(out[4:], uint32(0))
		copy(out[blockHeaderSize:], data)
		return out, nil
	}

	stored, err := conv.IntToUint32(len(packed))
	if err != nil {
		return nil, err
	}
	out := make([]byte, blockHeaderSize+len(packed))
	endian.Put(out[0:], raw)
	endian.Put(out[4:], stored)
	copy(out[blockHeaderSize:], packed)
	return out, nil
}

// decodeBlock decompresses a stored block body into dst, which must have the
// block's raw length.
func decodeBlock(dst, stored []byte, c Compression) error {
	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(stored, dst)
		if err != nil {
			return fmt.Errorf("%w: lz4: %w", ErrCorrupt, err)
		}
		if n != len(dst) {
			return fmt.Errorf("%w: lz4 block decoded to %d bytes, want %d", ErrCorrupt, n, len(dst))
		}
		return nil
	case CompressionZstd:
		dec, err := getZstdDecoder()
		if err != nil {
			return err
		}
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(stored, dst[:0])
		if err != nil {
			return fmt.Errorf("%w: zstd: %w", ErrCorrupt, err)
		}
		if len(out) != len(dst) {
			return fmt.Errorf("%w: zstd block decoded to %d bytes, want %d", ErrCorrupt, len(out), len(dst))
		}
		return nil
	default:
		return fmt.Errorf("%w: compressed block in an uncompressed snapshot", ErrCorrupt)
	}
}

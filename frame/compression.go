package frame

import (
	"fmt"

	"github.com/klauspost/compress/snappy"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the frame-body compression algorithm negotiated
// in STARTUP (spec §6: "optional LZ4/Snappy compression on frame bodies").
type Compression string

const (
	NoCompression Compression = ""
	LZ4           Compression = "lz4"
	Snappy        Compression = "snappy"
)

// Compress encodes body per algo. The body-length header the connection
// writes covers the returned (compressed) bytes (spec §6).
func Compress(algo Compression, body []byte) ([]byte, error) {
	switch algo {
	case NoCompression:
		return body, nil
	case LZ4:
		return compressLZ4(body)
	case Snappy:
		return snappy.Encode(nil, body), nil
	default:
		return nil, fmt.Errorf("frame: unknown compression algorithm %q", algo)
	}
}

// Decompress reverses Compress. LZ4 frame bodies are prefixed on the wire
// with their decompressed length (spec §6: "decompressed length follows
// inside the body per spec").
func Decompress(algo Compression, body []byte) ([]byte, error) {
	switch algo {
	case NoCompression:
		return body, nil
	case LZ4:
		return decompressLZ4(body)
	case Snappy:
		return snappy.Decode(nil, body)
	default:
		return nil, fmt.Errorf("frame: unknown compression algorithm %q", algo)
	}
}

func compressLZ4(body []byte) ([]byte, error) {
	var buf Buffer
	buf.WriteInt(Int(len(body)))

	maxSize := lz4.CompressBlockBound(len(body))
	dst := make([]byte, maxSize)

	var c lz4.Compressor
	n, err := c.CompressBlock(body, dst)
	if err != nil {
		return nil, fmt.Errorf("frame: lz4 compress: %w", err)
	}
	buf.Write(dst[:n])
	return buf.Bytes(), nil
}

func decompressLZ4(body []byte) ([]byte, error) {
	if len(body) < 4 {
		return nil, fmt.Errorf("frame: lz4 body shorter than length prefix")
	}
	b := &Buffer{buf: body}
	decompressedLen := int(b.ReadInt())
	if decompressedLen == 0 {
		return nil, nil
	}
	dst := make([]byte, decompressedLen)
	n, err := lz4.UncompressBlock(body[4:], dst)
	if err != nil {
		return nil, fmt.Errorf("frame: lz4 decompress: %w", err)
	}
	return dst[:n], nil
}

package storage

// chunk.go: trayectorias medias comprimidas con el codec XOR de Prometheus.
//
// Formato: [encoding:1][chunk XOR][crc32c:4, big endian]. El timestamp de cada
// muestra es el índice del día, así que el delta-of-delta es siempre 0.

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/prometheus/prometheus/tsdb/chunkenc"
)

var (
	// ErrChecksum indica que el CRC32 del blob no coincide con su contenido.
	ErrChecksum = errors.New("trajectory checksum mismatch")
	// ErrChunkTooSmall indica un blob más corto que la cabecera más el CRC.
	ErrChunkTooSmall = errors.New("trajectory blob too small")
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// encodeTrajectory comprime values en un chunk XOR con checksum.
func encodeTrajectory(values []float64) ([]byte, error) {
	if len(values) > math.MaxUint16 {
		return nil, fmt.Errorf("encode trajectory: %d samples exceed chunk capacity", len(values))
	}

	c := chunkenc.NewXORChunk()
	app, err := c.Appender()
	if err != nil {
		return nil, fmt.Errorf("encode trajectory: %w", err)
	}
	for i, v := range values {
		app.Append(int64(i), v)
	}

	raw := c.Bytes()
	out := make([]byte, 1+len(raw)+4)
	out[0] = byte(c.Encoding())
	copy(out[1:], raw)
	binary.BigEndian.PutUint32(out[1+len(raw):], crc32.Checksum(out[:1+len(raw)], castagnoli))
	return out, nil
}

// decodeTrajectory valida el checksum y devuelve las muestras en orden.
func decodeTrajectory(data []byte) ([]float64, error) {
	if len(data) < 5 {
		return nil, ErrChunkTooSmall
	}
	payload := data[:len(data)-4]
	want := binary.BigEndian.Uint32(data[len(data)-4:])
	if crc32.Checksum(payload, castagnoli) != want {
		return nil, ErrChecksum
	}
	if enc := chunkenc.Encoding(payload[0]); enc != chunkenc.EncXOR {
		return nil, fmt.Errorf("decode trajectory: unsupported encoding %s", enc)
	}

	c := chunkenc.NewXORChunk()
	c.Reset(payload[1:])

	values := make([]float64, 0, c.NumSamples())
	it := c.Iterator(nil)
	for it.Next() != chunkenc.ValNone {
		_, v := it.At()
		values = append(values, v)
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("decode trajectory: %w", err)
	}
	return values, nil
}

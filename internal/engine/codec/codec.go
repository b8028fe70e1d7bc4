// Package codec encodes chunks to the .mcra on-disk format.
//
// A file is a flat sequence of LEB128 varints with no header:
//
//	x, y, z      zig-zag varint chunk position
//	size         uvarint edge length, 1..64
//	count        uvarint number of entries
//	count times: uvarint voxel index, uvarint block state id
//
// Entries are written in ascending index order so equal chunks encode to
// equal bytes.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/block"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
)

// Ext is the chunk file extension.
const Ext = ".mcra"

// Dir is the directory, relative to a world root, holding chunk files.
const Dir = "chunks"

var (
	ErrTruncated        = errors.New("chunk data truncated")
	ErrTrailing         = errors.New("trailing bytes after chunk data")
	ErrInvalidSize      = errors.New("invalid chunk size")
	ErrIndexRange       = errors.New("voxel index out of range")
	ErrDuplicateIndex   = errors.New("duplicate voxel index")
	ErrStateWidth       = errors.New("block state id wider than 16 bits")
	ErrPositionMismatch = errors.New("chunk position does not match")
)

// Encode serialises c.
func Encode(c *chunk.Chunk) []byte {
	pos := c.Position()
	entries := c.Blocks().Sorted()

	// An index below 64³ and a 16-bit state id take at most 3 bytes each.
	buf := make([]byte, 0, 5*binary.MaxVarintLen64+6*len(entries))
	buf = binary.AppendVarint(buf, pos.X)
	buf = binary.AppendVarint(buf, pos.Y)
	buf = binary.AppendVarint(buf, pos.Z)
	buf = binary.AppendUvarint(buf, uint64(c.Size()))
	buf = binary.AppendUvarint(buf, uint64(len(entries)))
	for _, e := range entries {
		buf = binary.AppendUvarint(buf, uint64(e.Index))
		buf = binary.AppendUvarint(buf, uint64(e.Value.ID()))
	}
	return buf
}

// Decode parses a chunk. It rejects malformed input rather than guessing.
func Decode(data []byte) (*chunk.Chunk, error) {
	r := &reader{data: data}

	var coords [3]int64
	for i := range coords {
		v, err := r.varint()
		if err != nil {
			return nil, fmt.Errorf("read position: %w", err)
		}
		coords[i] = v
	}
	pos := chunk.Position{X: coords[0], Y: coords[1], Z: coords[2]}

	rawSize, err := r.uvarint()
	if err != nil {
		return nil, fmt.Errorf("read size: %w", err)
	}
	size, err := chunk.NewSize(int(min(rawSize, chunk.MaxSize+1)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSize, err)
	}
	volume := uint64(size.Volume())

	count, err := r.uvarint()
	if err != nil {
		return nil, fmt.Errorf("read entry count: %w", err)
	}
	if count > volume {
		return nil, fmt.Errorf("%w: %d entries for %d voxels", ErrIndexRange, count, volume)
	}
	// Every entry takes at least two bytes.
	if count > uint64(r.remaining()/2) {
		return nil, fmt.Errorf("%w: %d entries declared, %d bytes left", ErrTruncated, count, r.remaining())
	}

	blocks := chunk.NewSparseStore(block.Air)
	for i := uint64(0); i < count; i++ {
		idx, err := r.uvarint()
		if err != nil {
			return nil, fmt.Errorf("read entry %d index: %w", i, err)
		}
		state, err := r.uvarint()
		if err != nil {
			return nil, fmt.Errorf("read entry %d state: %w", i, err)
		}
		if idx >= volume {
			return nil, fmt.Errorf("%w: %d >= %d", ErrIndexRange, idx, volume)
		}
		if state > block.MaxState {
			return nil, fmt.Errorf("%w: %d", ErrStateWidth, state)
		}
		if _, dup := blocks.Lookup(int(idx)); dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateIndex, idx)
		}
		blocks.Set(int(idx), block.State(state))
	}

	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d", ErrTrailing, r.remaining())
	}
	return chunk.FromStore(size, pos, blocks), nil
}

// DecodeAt decodes data and checks that it describes the chunk at want.
func DecodeAt(data []byte, want chunk.Position) (*chunk.Chunk, error) {
	c, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if c.Position() != want {
		return nil, fmt.Errorf("%w: file holds %v, expected %v", ErrPositionMismatch, c.Position(), want)
	}
	return c, nil
}

// Name returns the file name for pos, e.g. "1_-2_3.mcra".
func Name(pos chunk.Position) string {
	return fmt.Sprintf("%d_%d_%d%s", pos.X, pos.Y, pos.Z, Ext)
}

// Path returns the slash-separated path of pos relative to the world root.
func Path(pos chunk.Position) string {
	return path.Join(Dir, Name(pos))
}

// ParseName is the inverse of Name. Leading directories are ignored.
func ParseName(name string) (chunk.Position, error) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	stem, ok := strings.CutSuffix(base, Ext)
	if !ok {
		return chunk.Position{}, fmt.Errorf("parse chunk name %q: missing %s extension", name, Ext)
	}
	parts := strings.Split(stem, "_")
	if len(parts) != 3 {
		return chunk.Position{}, fmt.Errorf("parse chunk name %q: want x_y_z", name)
	}
	var coords [3]int64
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return chunk.Position{}, fmt.Errorf("parse chunk name %q: %w", name, err)
		}
		coords[i] = v
	}
	return chunk.Position{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

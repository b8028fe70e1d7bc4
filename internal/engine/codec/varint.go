package codec

import (
	"encoding/binary"
	"fmt"
)

// reader walks a byte slice, tracking the offset for error messages.
type reader struct {
	data []byte
	off  int
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.data[r.off:])
	if err := r.advance(n); err != nil {
		return 0, err
	}
	return v, nil
}

// varint reads a zig-zag encoded value.
func (r *reader) varint() (int64, error) {
	v, n := binary.Varint(r.data[r.off:])
	if err := r.advance(n); err != nil {
		return 0, err
	}
	return v, nil
}

func (r *reader) advance(n int) error {
	switch {
	case n == 0:
		return fmt.Errorf("%w at offset %d", ErrTruncated, r.off)
	case n < 0:
		return fmt.Errorf("varint overflows 64 bits at offset %d", r.off-n-1)
	}
	r.off += n
	return nil
}

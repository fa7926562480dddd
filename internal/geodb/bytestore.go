package geodb

import (
	"encoding/binary"
	"fmt"
)

// byteStore is the only gateway to the raw database bytes. Every offset that
// reaches it originates from file content, so every read is bounds checked
// here and nowhere else.
type byteStore struct {
	buf []byte
}

func newByteStore(buf []byte) *byteStore {
	return &byteStore{buf: buf}
}

func (b *byteStore) size() uint64 {
	return uint64(len(b.buf))
}

// read returns the n bytes starting at off. The returned slice aliases the
// database buffer and must not be modified.
func (b *byteStore) read(off, n uint64) ([]byte, error) {
	if off > b.size() || b.size()-off < n {
		return nil, fmt.Errorf("%w: offset %d length %d, buffer %d", ErrOutOfBounds, off, n, b.size())
	}
	return b.buf[off : off+n], nil
}

// suffix returns everything from off to the end of the buffer.
func (b *byteStore) suffix(off uint64) ([]byte, error) {
	if off > b.size() {
		return nil, fmt.Errorf("%w: offset %d, buffer %d", ErrOutOfBounds, off, b.size())
	}
	return b.buf[off:], nil
}

func (b *byteStore) byteAt(off uint64) (byte, error) {
	p, err := b.read(off, 1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (b *byteStore) uint24LE(off uint64) (uint32, error) {
	p, err := b.read(off, 3)
	if err != nil {
		return 0, err
	}
	return uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16, nil
}

func (b *byteStore) uint32LE(off uint64) (uint32, error) {
	p, err := b.read(off, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

func (b *byteStore) uint64LE(off uint64) (uint64, error) {
	p, err := b.read(off, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}

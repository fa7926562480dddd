package geodb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// IPv6 file layout: "IPDB" magic, LE uint64 entry count at offset 8 and LE
// uint64 index region offset at offset 16. Entries are 11 bytes: LE uint64
// key holding the upper 64 bits of the range start address plus LE uint24
// record pointer. Only the upper half of the 128 bit address is indexed; the
// truncation is part of the format and is kept as is for compatibility.
const (
	v6HeaderLen = 24
	v6Stride    = 11
	v6KeyWidth  = 8
)

var v6Magic = []byte("IPDB")

type ipv6Variant struct{}

func (ipv6Variant) name() string { return "ipv6" }

func (ipv6Variant) keyWidth() uint64 { return v6KeyWidth }

func (ipv6Variant) maxKey() uint64 { return math.MaxUint64 }

func (ipv6Variant) buildIndex(s *byteStore) (indexTable, error) {
	magic, err := s.read(0, uint64(len(v6Magic)))
	if err != nil || !bytes.Equal(magic, v6Magic) {
		return nil, fmt.Errorf("%w: missing %q signature", ErrCorruptHeader, v6Magic)
	}
	count, err := s.uint64LE(8)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHeader, err)
	}
	start, err := s.uint64LE(16)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHeader, err)
	}
	// count*v6Stride must not overflow before the bounds check sees it
	if count == 0 || count > s.size()/v6Stride || start < v6HeaderLen {
		return nil, fmt.Errorf("%w: %d entries at offset %d", ErrCorruptHeader, count, start)
	}
	region, err := s.read(start, count*v6Stride)
	if err != nil {
		return nil, fmt.Errorf("%w: %d entries at offset %d: %v", ErrCorruptHeader, count, start, err)
	}
	return &v6Index{region: region, count: int(count)}, nil
}

type v6Index struct {
	region []byte
	count  int
}

func (t *v6Index) entryCount() int { return t.count }

func (t *v6Index) entryAt(i int) indexEntry {
	row := t.region[i*v6Stride : i*v6Stride+v6Stride]
	return indexEntry{
		key: binary.LittleEndian.Uint64(row),
		ptr: uint32(row[8]) | uint32(row[9])<<8 | uint32(row[10])<<16,
	}
}

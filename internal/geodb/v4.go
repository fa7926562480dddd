package geodb

import (
	"encoding/binary"
	"fmt"
	"math"
)

// IPv4 file layout: 8 byte header holding two LE uint32 offsets, the first
// and the last index entry. Entries are 7 bytes: LE uint32 range start
// address plus LE uint24 record pointer.
const (
	v4HeaderLen = 8
	v4Stride    = 7
	v4KeyWidth  = 4
)

type ipv4Variant struct{}

func (ipv4Variant) name() string { return "ipv4" }

func (ipv4Variant) keyWidth() uint64 { return v4KeyWidth }

func (ipv4Variant) maxKey() uint64 { return math.MaxUint32 }

func (ipv4Variant) buildIndex(s *byteStore) (indexTable, error) {
	first, err := s.uint32LE(0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHeader, err)
	}
	last, err := s.uint32LE(4)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHeader, err)
	}
	if first < v4HeaderLen || last < first || (last-first)%v4Stride != 0 {
		return nil, fmt.Errorf("%w: index region [%d, %d]", ErrCorruptHeader, first, last)
	}
	count := (last-first)/v4Stride + 1
	region, err := s.read(uint64(first), uint64(count)*v4Stride)
	if err != nil {
		return nil, fmt.Errorf("%w: index region [%d, %d]: %v", ErrCorruptHeader, first, last, err)
	}
	return &v4Index{region: region, count: int(count)}, nil
}

type v4Index struct {
	region []byte
	count  int
}

func (t *v4Index) entryCount() int { return t.count }

func (t *v4Index) entryAt(i int) indexEntry {
	row := t.region[i*v4Stride : i*v4Stride+v4Stride]
	return indexEntry{
		key: uint64(binary.LittleEndian.Uint32(row)),
		ptr: uint32(row[4]) | uint32(row[5])<<8 | uint32(row[6])<<16,
	}
}

package geodb

import (
	"encoding/binary"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

type v4fixEntry struct {
	start uint32
	ptr   uint32 // absolute record offset
}

// buildV4 assembles a minimal IPv4 database image: header, record area, index.
// Records start at offset v4HeaderLen.
func buildV4(records []byte, entries []v4fixEntry) []byte {
	idxStart := uint32(v4HeaderLen + len(records))
	buf := make([]byte, 0, int(idxStart)+len(entries)*v4Stride)

	var hdr [v4HeaderLen]byte
	binary.LittleEndian.PutUint32(hdr[0:], idxStart)
	binary.LittleEndian.PutUint32(hdr[4:], idxStart+uint32(len(entries)-1)*v4Stride)
	buf = append(buf, hdr[:]...)
	buf = append(buf, records...)

	for _, e := range entries {
		var k [4]byte
		binary.LittleEndian.PutUint32(k[:], e.start)
		buf = append(buf, k[:]...)
		buf = append(buf, p24(int(e.ptr))...)
	}
	return buf
}

func Test_ipv4_roundTrip(t *testing.T) {
	buf := buildV4(rec([]byte("US\x00"), []byte("CA\x00")), []v4fixEntry{
		{start: 0, ptr: v4HeaderLen},
	})

	db, err := NewIPv4(buf, testLogger())
	require.NoError(t, err)
	require.Equal(t, 1, db.Entries())

	r, err := db.Lookup(0)
	require.NoError(t, err)
	require.Equal(t, []byte("US"), r.Country)
	require.Equal(t, []byte("CA"), r.Area)
	require.Equal(t, uint64(0), r.RangeStart)
	require.Equal(t, uint64(math.MaxUint32), r.RangeEnd)
}

func Test_ipv4_noMatchBelowFirstEntry(t *testing.T) {
	buf := buildV4(rec([]byte("US\x00"), []byte("CA\x00")), []v4fixEntry{
		{start: 100, ptr: v4HeaderLen},
	})

	db, err := NewIPv4(buf, testLogger())
	require.NoError(t, err)

	_, err = db.Lookup(99)
	require.ErrorIs(t, err, ErrNoMatch)

	_, err = db.Lookup(100)
	require.NoError(t, err)
}

func Test_ipv4_rangeMembership(t *testing.T) {
	recA := rec([]byte("US\x00"), []byte("CA\x00"))
	recB := rec([]byte("DE\x00"), []byte("BE\x00"))
	records := append(append([]byte{}, recA...), recB...)

	buf := buildV4(records, []v4fixEntry{
		{start: 0, ptr: v4HeaderLen},
		{start: 1000, ptr: uint32(v4HeaderLen + len(recA))},
	})

	db, err := NewIPv4(buf, testLogger())
	require.NoError(t, err)

	// every address of a range resolves to the same record
	for _, key := range []uint64{0, 1, 500, 999} {
		r, err := db.Lookup(key)
		require.NoError(t, err, "key %d", key)
		require.Equal(t, []byte("US"), r.Country, "key %d", key)
		require.Equal(t, uint64(0), r.RangeStart)
		require.Equal(t, uint64(1000), r.RangeEnd)
	}
	for _, key := range []uint64{1000, 4040, math.MaxUint32} {
		r, err := db.Lookup(key)
		require.NoError(t, err, "key %d", key)
		require.Equal(t, []byte("DE"), r.Country, "key %d", key)
		require.Equal(t, uint64(1000), r.RangeStart)
		require.Equal(t, uint64(math.MaxUint32), r.RangeEnd)
	}
}

func Test_ipv4_keyRange(t *testing.T) {
	buf := buildV4(rec([]byte("US\x00"), []byte("CA\x00")), []v4fixEntry{
		{start: 0, ptr: v4HeaderLen},
	})

	db, err := NewIPv4(buf, testLogger())
	require.NoError(t, err)

	_, err = db.Lookup(uint64(math.MaxUint32) + 1)
	require.ErrorIs(t, err, ErrKeyRange)
}

func Test_ipv4_corruptHeader(t *testing.T) {
	valid := buildV4(rec([]byte("US\x00"), []byte("CA\x00")), []v4fixEntry{
		{start: 0, ptr: v4HeaderLen},
	})

	tests := map[string]func() []byte{
		"truncated file": func() []byte {
			return valid[:4]
		},
		"index end before start": func() []byte {
			buf := append([]byte{}, valid...)
			binary.LittleEndian.PutUint32(buf[0:], 100)
			binary.LittleEndian.PutUint32(buf[4:], 50)
			return buf
		},
		"misaligned stride": func() []byte {
			buf := append([]byte{}, valid...)
			start := binary.LittleEndian.Uint32(buf[0:])
			binary.LittleEndian.PutUint32(buf[4:], start+3)
			return buf
		},
		"index start inside header": func() []byte {
			buf := append([]byte{}, valid...)
			binary.LittleEndian.PutUint32(buf[0:], 4)
			binary.LittleEndian.PutUint32(buf[4:], 4)
			return buf
		},
		"index region past buffer": func() []byte {
			buf := append([]byte{}, valid...)
			start := binary.LittleEndian.Uint32(buf[0:])
			binary.LittleEndian.PutUint32(buf[4:], start+v4Stride*1000)
			return buf
		},
	}

	for name, gen := range tests {
		_, err := NewIPv4(gen(), testLogger())
		require.ErrorIs(t, err, ErrCorruptHeader, name)
	}
}

func Test_ipv4_recordAt(t *testing.T) {
	buf := buildV4(rec([]byte("US\x00"), []byte("CA\x00")), []v4fixEntry{
		{start: 0, ptr: v4HeaderLen},
	})

	db, err := NewIPv4(buf, testLogger())
	require.NoError(t, err)

	r, err := db.RecordAt(0)
	require.NoError(t, err)
	require.Equal(t, []byte("US"), r.Country)

	_, err = db.RecordAt(1)
	require.ErrorIs(t, err, ErrOutOfBounds)
	_, err = db.RecordAt(-1)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func Test_ipv4_concurrentLookups(t *testing.T) {
	buf := buildV4(rec([]byte("US\x00"), []byte("CA\x00")), []v4fixEntry{
		{start: 0, ptr: v4HeaderLen},
	})

	db, err := NewIPv4(buf, testLogger())
	require.NoError(t, err)

	goroutinesCount := 100
	var wg sync.WaitGroup
	wg.Add(goroutinesCount)
	for i := 0; i < goroutinesCount; i++ {
		key := uint64(i)
		go func() {
			defer wg.Done()
			r, err := db.Lookup(key)
			require.NoError(t, err)
			require.Equal(t, []byte("US"), r.Country)
		}()
	}
	wg.Wait()
}

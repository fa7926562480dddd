// Package geodb reads two legacy binary IP geolocation database formats: the
// IPv4 .dat layout with its 7 byte index rows and the IPv6 .db layout with
// truncated 64 bit keys. A Database is built once from a file or byte buffer,
// is immutable afterwards and safe for any number of concurrent readers.
package geodb

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// variant is the closed set of supported formats. Exactly two exist; no
// further ones are anticipated.
type variant interface {
	name() string
	keyWidth() uint64
	maxKey() uint64
	buildIndex(s *byteStore) (indexTable, error)
}

// Database is one loaded geolocation database. It owns the raw buffer and
// the decoded index and never mutates either after construction.
type Database struct {
	id    uuid.UUID
	store *byteStore
	table indexTable
	vr    variant
	sugar *zap.SugaredLogger
}

// OpenIPv4 loads an IPv4 database file into memory.
func OpenIPv4(path string, logger *zap.Logger) (*Database, error) {
	return open(path, ipv4Variant{}, logger)
}

// OpenIPv6 loads an IPv6 database file into memory.
func OpenIPv6(path string, logger *zap.Logger) (*Database, error) {
	return open(path, ipv6Variant{}, logger)
}

// NewIPv4 builds a Database from an already loaded IPv4 buffer.
func NewIPv4(buf []byte, logger *zap.Logger) (*Database, error) {
	return newDatabase(buf, ipv4Variant{}, logger)
}

// NewIPv6 builds a Database from an already loaded IPv6 buffer.
func NewIPv6(buf []byte, logger *zap.Logger) (*Database, error) {
	return newDatabase(buf, ipv6Variant{}, logger)
}

func open(path string, vr variant, logger *zap.Logger) (*Database, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("geodb: open %s database %q: %w", vr.name(), path, err)
	}
	return newDatabase(buf, vr, logger)
}

func newDatabase(buf []byte, vr variant, logger *zap.Logger) (*Database, error) {
	s := newByteStore(buf)
	tbl, err := vr.buildIndex(s)
	if err != nil {
		return nil, fmt.Errorf("geodb: %s database: %w", vr.name(), err)
	}
	d := &Database{
		id:    uuid.New(),
		store: s,
		table: tbl,
		vr:    vr,
		sugar: logger.Sugar(),
	}
	d.sugar.Infow("database loaded",
		"db", d.id.String(),
		"variant", vr.name(),
		"entries", tbl.entryCount(),
		"bytes", s.size(),
	)
	return d, nil
}

// Entries reports the number of index entries.
func (d *Database) Entries() int {
	return d.table.entryCount()
}

// Lookup resolves the address key to its location record. IPv4 keys are the
// address as a 32 bit integer, IPv6 keys the upper 64 bits of the address.
// A key below the first index entry returns ErrNoMatch; structural damage in
// the file surfaces as ErrMalformed or ErrRedirectLoop.
func (d *Database) Lookup(key uint64) (*Record, error) {
	if key > d.vr.maxKey() {
		return nil, fmt.Errorf("geodb: %w: %#x", ErrKeyRange, key)
	}
	i, ok := findEntry(d.table, key)
	if !ok {
		return nil, fmt.Errorf("geodb: key %#x: %w", key, ErrNoMatch)
	}
	rec, err := d.RecordAt(i)
	if err != nil {
		return nil, fmt.Errorf("geodb: key %#x: %w", key, err)
	}
	return rec, nil
}

// RecordAt resolves index entry i directly, bypassing the search. Integrity
// scanners use it to visit every record once.
func (d *Database) RecordAt(i int) (*Record, error) {
	if i < 0 || i >= d.table.entryCount() {
		return nil, fmt.Errorf("geodb: entry %d of %d: %w", i, d.table.entryCount(), ErrOutOfBounds)
	}
	ent := d.table.entryAt(i)
	spans, err := resolveRecord(d.store, ent.ptr, d.vr.keyWidth())
	if err != nil {
		return nil, err
	}
	end := d.vr.maxKey()
	if i+1 < d.table.entryCount() {
		end = d.table.entryAt(i + 1).key
	}
	return &Record{
		RangeStart:        ent.key,
		RangeEnd:          end,
		Country:           spans.country,
		Area:              spans.area,
		AreaSameAsCountry: spans.areaSameAsCountry,
	}, nil
}

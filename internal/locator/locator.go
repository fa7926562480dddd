// Package locator is the thin dispatch layer in front of the database engine.
// It validates IP syntax, picks the IPv4 or IPv6 database, and renders the
// raw record spans into text.
package locator

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"

	"go.uber.org/zap"

	"ipwry/internal/config"
	"ipwry/internal/geodb"
	"ipwry/internal/geotext"
)

var ErrNoDatabase = errors.New("no database configured for address family")

// Location is a resolved address: decoded text plus the matched range.
type Location struct {
	IP         string
	Country    string
	Area       string
	RangeStart uint64
	RangeEnd   uint64
}

type Locator struct {
	v4    *geodb.Database
	v6    *geodb.Database
	dec   geotext.Decoder
	sugar *zap.SugaredLogger
}

// New opens the databases named in conf. An empty path leaves that address
// family unconfigured; looking it up then fails with ErrNoDatabase.
func New(conf *config.Config, dec geotext.Decoder, logger *zap.Logger) (*Locator, error) {
	l := &Locator{
		dec:   dec,
		sugar: logger.Sugar(),
	}
	var err error
	if conf.IPv4File != "" {
		if l.v4, err = geodb.OpenIPv4(conf.IPv4File, logger); err != nil {
			return nil, fmt.Errorf("locator: %w", err)
		}
	}
	if conf.IPv6File != "" {
		if l.v6, err = geodb.OpenIPv6(conf.IPv6File, logger); err != nil {
			return nil, fmt.Errorf("locator: %w", err)
		}
	}
	return l, nil
}

// NewFromDatabases wires already opened databases, e.g. ones shared through a
// Cache. Either may be nil.
func NewFromDatabases(v4, v6 *geodb.Database, dec geotext.Decoder, logger *zap.Logger) *Locator {
	return &Locator{
		v4:    v4,
		v6:    v6,
		dec:   dec,
		sugar: logger.Sugar(),
	}
}

// Lookup resolves an IP address string. A nil Location with nil error means
// the database holds no entry for the address; any non-nil error means the
// query could not be answered at all.
func (l *Locator) Lookup(ipStr string) (*Location, error) {
	addr, err := netip.ParseAddr(ipStr)
	if err != nil {
		return nil, fmt.Errorf("locator: invalid address %q: %w", ipStr, err)
	}
	addr = addr.Unmap()

	db, key := l.dispatch(addr)
	if db == nil {
		return nil, fmt.Errorf("locator: %q: %w", ipStr, ErrNoDatabase)
	}

	rec, err := db.Lookup(key)
	if errors.Is(err, geodb.ErrNoMatch) {
		return nil, nil
	}
	if err != nil {
		l.sugar.Debugw("lookup failed", "ip", ipStr, "err", err)
		return nil, fmt.Errorf("locator: %q: %w", ipStr, err)
	}

	country, area, err := geotext.Render(rec, l.dec)
	if err != nil {
		return nil, fmt.Errorf("locator: %q: %w", ipStr, err)
	}
	return &Location{
		IP:         addr.String(),
		Country:    country,
		Area:       area,
		RangeStart: rec.RangeStart,
		RangeEnd:   rec.RangeEnd,
	}, nil
}

// dispatch picks the database for the address family and forms its query key:
// the whole address for IPv4, the upper 64 bits for IPv6 (only those are
// indexed by the format).
func (l *Locator) dispatch(addr netip.Addr) (*geodb.Database, uint64) {
	if addr.Is4() {
		a4 := addr.As4()
		return l.v4, uint64(binary.BigEndian.Uint32(a4[:]))
	}
	a16 := addr.As16()
	return l.v6, binary.BigEndian.Uint64(a16[:8])
}

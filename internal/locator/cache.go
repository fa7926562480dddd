package locator

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"ipwry/internal/geodb"
)

// Cache hands out shared Database handles keyed by file path. Concurrent
// first uses of one path collapse into a single load; afterwards every
// caller gets the same immutable handle.
type Cache struct {
	mu     sync.Mutex
	dbs    map[string]*geodb.Database
	sfg    singleflight.Group
	logger *zap.Logger
}

func NewCache(logger *zap.Logger) *Cache {
	return &Cache{
		dbs:    make(map[string]*geodb.Database),
		logger: logger,
	}
}

// IPv4 returns the shared handle for an IPv4 database file, loading it on
// first use.
func (c *Cache) IPv4(path string) (*geodb.Database, error) {
	return c.get("ipv4", path, geodb.OpenIPv4)
}

// IPv6 returns the shared handle for an IPv6 database file, loading it on
// first use.
func (c *Cache) IPv6(path string) (*geodb.Database, error) {
	return c.get("ipv6", path, geodb.OpenIPv6)
}

func (c *Cache) get(kind, path string, open func(string, *zap.Logger) (*geodb.Database, error)) (*geodb.Database, error) {
	res, err, _ := c.sfg.Do(kind+":"+path, func() (interface{}, error) {
		c.mu.Lock()
		db, ok := c.dbs[kind+":"+path]
		c.mu.Unlock()
		if ok {
			return db, nil
		}

		db, err := open(path, c.logger)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.dbs[kind+":"+path] = db
		c.mu.Unlock()
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*geodb.Database), nil
}

package main

import (
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"ipwry/internal/geodb"
	"ipwry/internal/geotext"
)

// checker resolves every index entry of one database and tallies structural
// failures. The database is immutable, so workers share it without locks.
type checker struct {
	name    string
	db      *geodb.Database
	dec     geotext.Decoder
	goCount int
	sugar   *zap.SugaredLogger

	checked   uint64
	failed    uint64
	undecoded uint64
}

func newChecker(name string, db *geodb.Database, goCount int, logger *zap.Logger) *checker {
	return &checker{
		name:    name,
		db:      db,
		dec:     geotext.GBK{},
		goCount: goCount,
		sugar:   logger.Sugar(),
	}
}

// run visits all entries with goCount workers and reports whether the
// database resolved clean.
func (c *checker) run() bool {
	entries := make(chan int)

	var wg sync.WaitGroup
	wg.Add(c.goCount)
	for w := 0; w < c.goCount; w++ {
		go func() {
			defer wg.Done()
			for i := range entries {
				c.checkOne(i)
			}
		}()
	}

	for i := 0; i < c.db.Entries(); i++ {
		entries <- i
	}
	close(entries)
	wg.Wait()

	c.sugar.Infow("scan finished",
		"db", c.name,
		"entries", atomic.LoadUint64(&c.checked),
		"failed", atomic.LoadUint64(&c.failed),
		"undecoded", atomic.LoadUint64(&c.undecoded),
	)
	return atomic.LoadUint64(&c.failed) == 0
}

func (c *checker) checkOne(i int) {
	atomic.AddUint64(&c.checked, 1)

	rec, err := c.db.RecordAt(i)
	if err != nil {
		atomic.AddUint64(&c.failed, 1)
		switch {
		case errors.Is(err, geodb.ErrRedirectLoop):
			c.sugar.Errorw("redirect loop", "db", c.name, "entry", i)
		case errors.Is(err, geodb.ErrMalformed):
			c.sugar.Errorw("malformed record", "db", c.name, "entry", i, "err", err)
		default:
			c.sugar.Errorw("resolve failed", "db", c.name, "entry", i, "err", err)
		}
		return
	}

	if _, _, err := geotext.Render(rec, c.dec); err != nil {
		atomic.AddUint64(&c.undecoded, 1)
		c.sugar.Warnw("undecodable text", "db", c.name, "entry", i, "err", err)
	}
}

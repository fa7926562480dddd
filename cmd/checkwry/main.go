package main

import (
	"log"
	"os"
	"runtime"

	"go.uber.org/zap"

	"ipwry/internal/config"
	"ipwry/internal/geodb"
	"ipwry/internal/locator"
)

// checkwry scans whole database files: every index entry is resolved down to
// its literal spans, so damaged records surface before a file is deployed.
func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	sugar := logger.Sugar()

	conf := config.NewConfig()
	cache := locator.NewCache(logger)
	goCount := runtime.NumCPU()

	clean := true
	for _, scan := range []struct {
		path string
		open func(string) (*geodb.Database, error)
	}{
		{path: conf.IPv4File, open: cache.IPv4},
		{path: conf.IPv6File, open: cache.IPv6},
	} {
		if scan.path == "" {
			continue
		}
		db, err := scan.open(scan.path)
		if err != nil {
			sugar.Fatalw("open database", "path", scan.path, "err", err)
		}
		if !newChecker(scan.path, db, goCount, logger).run() {
			clean = false
		}
	}

	if !clean {
		os.Exit(1)
	}
}

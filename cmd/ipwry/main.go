package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"ipwry/internal/config"
	"ipwry/internal/geotext"
	"ipwry/internal/locator"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	sugar := logger.Sugar()

	conf := config.NewConfig()
	loc, err := locator.New(conf, geotext.GBK{}, logger)
	if err != nil {
		sugar.Fatalw("open databases", "err", err)
	}

	exitCode := 0
	for _, ip := range flag.Args() {
		l, err := loc.Lookup(ip)
		if err != nil {
			sugar.Errorw("lookup", "ip", ip, "err", err)
			exitCode = 1
			continue
		}
		if l == nil {
			fmt.Printf("%s\tnot found\n", ip)
			continue
		}
		fmt.Printf("%s\t%s\t%s\n", l.IP, l.Country, l.Area)
	}
	os.Exit(exitCode)
}

package config

import (
	"flag"
)

// Config carries the database file locations. It is built once in main and
// passed down explicitly; nothing in the lookup path reads global state.
type Config struct {
	IPv4File string
	IPv6File string
}

func NewConfig() *Config {
	v4 := flag.String("IPV4_FILE", "db/ipv4wry.dat", "IPv4 database file")
	v6 := flag.String("IPV6_FILE", "db/ipv6wry.db", "IPv6 database file")
	flag.Parse()

	return &Config{
		IPv4File: *v4,
		IPv6File: *v6,
	}
}

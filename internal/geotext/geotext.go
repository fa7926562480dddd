// Package geotext turns the raw byte spans produced by the database engine
// into display strings. The engine never assumes an encoding; the legacy
// files are GBK in practice, so that decoder is the default.
package geotext

import (
	"fmt"

	"golang.org/x/text/encoding/simplifiedchinese"

	"ipwry/internal/geodb"
)

// Decoder turns raw database bytes into display text.
type Decoder interface {
	Decode(b []byte) (string, error)
}

// GBK decodes the simplified Chinese encoding legacy database builds carry.
type GBK struct{}

func (GBK) Decode(b []byte) (string, error) {
	out, err := simplifiedchinese.GBK.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("geotext: decode gbk: %w", err)
	}
	return string(out), nil
}

// Plain passes the bytes through unchanged. For ASCII-only databases and
// fixtures.
type Plain struct{}

func (Plain) Decode(b []byte) (string, error) {
	return string(b), nil
}

// Render decodes a lookup record into country and area strings. When the
// record marks the area as "same as country" the decoded country text is
// substituted for it.
func Render(rec *geodb.Record, d Decoder) (country, area string, err error) {
	country, err = d.Decode(rec.Country)
	if err != nil {
		return "", "", err
	}
	if rec.AreaSameAsCountry {
		return country, country, nil
	}
	area, err = d.Decode(rec.Area)
	if err != nil {
		return "", "", err
	}
	return country, area, nil
}

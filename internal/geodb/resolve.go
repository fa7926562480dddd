package geodb

import (
	"bytes"
	"fmt"
)

// Record field protocol, shared by both variants. A record starts with the
// stored range key (already known from the index) followed by a mode byte:
//
//	0x01  full redirect: LE uint24 pointer to a location holding both the
//	      country and the area field, with no leading range key.
//	0x02  partial redirect: LE uint24 pointer to the country field only;
//	      the area field sits right after the pointer in the current record.
//	else  first byte of a NUL terminated literal country, the area field
//	      follows the terminator with the same three way dispatch.
//
// Area fields treat both 0x01 and 0x02 as a plain redirect to their text.
const (
	modeFull    = 0x01
	modePartial = 0x02
	ptrWidth    = 3

	// maxHops bounds pointer dereferences per lookup. Pointers are untrusted
	// file bytes; a cycle must fail instead of spinning.
	maxHops = 8
)

// areaSentinel is the placeholder legacy builds store when the area text
// repeats the country text. It is reported out of band, never as bytes.
var areaSentinel = []byte(" CZ88.NET")

// rawSpans is the outcome of record resolution before any text decoding.
type rawSpans struct {
	country []byte
	area    []byte
	// areaSameAsCountry is set instead of area when the record carries the
	// "same as country" sentinel.
	areaSameAsCountry bool
}

// resolveRecord walks the redirect chain of the record at ptr down to literal
// byte spans. keyWidth is the size of the stored range key the record begins
// with; full redirect targets omit it.
func resolveRecord(s *byteStore, ptr uint32, keyWidth uint64) (rawSpans, error) {
	var out rawSpans
	pos := uint64(ptr) + keyWidth
	hops := 0
	for {
		mode, err := s.byteAt(pos)
		if err != nil {
			return out, fmt.Errorf("%w: record %#x: no mode byte at %#x", ErrMalformed, ptr, pos)
		}
		switch mode {
		case modeFull:
			target, err := s.uint24LE(pos + 1)
			if err != nil {
				return out, fmt.Errorf("%w: record %#x: truncated redirect at %#x", ErrMalformed, ptr, pos)
			}
			hops++
			if hops > maxHops {
				return out, fmt.Errorf("%w: record %#x", ErrRedirectLoop, ptr)
			}
			pos = uint64(target)

		case modePartial:
			target, err := s.uint24LE(pos + 1)
			if err != nil {
				return out, fmt.Errorf("%w: record %#x: truncated redirect at %#x", ErrMalformed, ptr, pos)
			}
			out.country, err = resolveText(s, uint64(target), &hops)
			if err != nil {
				return out, fmt.Errorf("record %#x: country: %w", ptr, err)
			}
			return resolveArea(s, pos+1+ptrWidth, &hops, out, ptr)

		default:
			var n uint64
			out.country, n, err = readLiteral(s, pos)
			if err != nil {
				return out, fmt.Errorf("record %#x: country: %w", ptr, err)
			}
			return resolveArea(s, pos+n, &hops, out, ptr)
		}
	}
}

// resolveArea resolves the area field at pos and finishes the spans,
// translating the sentinel into the out of band marker.
func resolveArea(s *byteStore, pos uint64, hops *int, out rawSpans, recPtr uint32) (rawSpans, error) {
	area, err := resolveText(s, pos, hops)
	if err != nil {
		return out, fmt.Errorf("record %#x: area: %w", recPtr, err)
	}
	if bytes.Equal(area, areaSentinel) {
		out.areaSameAsCountry = true
		return out, nil
	}
	out.area = area
	return out, nil
}

// resolveText follows text redirects at pos until a literal span. Both mode
// bytes mean the same thing here: jump to the pointed at text.
func resolveText(s *byteStore, pos uint64, hops *int) ([]byte, error) {
	for {
		mode, err := s.byteAt(pos)
		if err != nil {
			return nil, fmt.Errorf("%w: no field at %#x", ErrMalformed, pos)
		}
		if mode != modeFull && mode != modePartial {
			text, _, err := readLiteral(s, pos)
			return text, err
		}
		target, err := s.uint24LE(pos + 1)
		if err != nil {
			return nil, fmt.Errorf("%w: truncated redirect at %#x", ErrMalformed, pos)
		}
		*hops++
		if *hops > maxHops {
			return nil, fmt.Errorf("%w: at %#x", ErrRedirectLoop, pos)
		}
		pos = uint64(target)
	}
}

// readLiteral reads the NUL terminated span at pos. Returns the text and the
// bytes consumed including the terminator.
func readLiteral(s *byteStore, pos uint64) ([]byte, uint64, error) {
	tail, err := s.suffix(pos)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: literal at %#x outside buffer", ErrMalformed, pos)
	}
	end := bytes.IndexByte(tail, 0)
	if end < 0 {
		return nil, 0, fmt.Errorf("%w: unterminated literal at %#x", ErrMalformed, pos)
	}
	return tail[:end], uint64(end) + 1, nil
}

package geodb

import "errors"

var (
	// ErrOutOfBounds reports a read outside the loaded database buffer.
	ErrOutOfBounds = errors.New("read outside database bounds")
	// ErrCorruptHeader reports header fields that describe an impossible
	// index region.
	ErrCorruptHeader = errors.New("corrupt database header")
	// ErrNoMatch reports a query key smaller than every index entry.
	ErrNoMatch = errors.New("no index entry covers address")
	// ErrRedirectLoop reports a redirect chain longer than the hop limit.
	ErrRedirectLoop = errors.New("redirect chain exceeds hop limit")
	// ErrMalformed reports structural damage found while resolving a record,
	// such as an unterminated literal field or a pointer leaving the buffer.
	ErrMalformed = errors.New("malformed record data")
	// ErrKeyRange reports a query key wider than the database variant indexes.
	ErrKeyRange = errors.New("query key out of range for database variant")
)

package geodb

// Record is the outcome of one lookup: the matched address range and the raw
// country and area byte spans. The spans alias the database buffer and carry
// whatever encoding the file was built with; decoding them into display text
// is the caller's concern.
type Record struct {
	// RangeStart and RangeEnd bound the matched range. RangeEnd is the start
	// key of the next index entry (exclusive); the last entry runs to the
	// variant's maximum address, inclusive.
	RangeStart uint64
	RangeEnd   uint64

	Country []byte
	Area    []byte

	// AreaSameAsCountry marks the "same as country" placeholder. Area is nil
	// when it is set; the text layer substitutes the decoded country.
	AreaSameAsCountry bool
}

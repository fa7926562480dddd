package geodb

// indexEntry is one row of the sorted index region: the first address of a
// range and the offset of the record describing it. IPv4 keys occupy the low
// 32 bits; IPv6 keys are the upper 64 bits of the address.
type indexEntry struct {
	key uint64
	ptr uint32
}

// indexTable is the decoded index region of one database variant. Entries are
// sorted ascending by key; entry i governs [key(i), key(i+1)), the last entry
// runs to the variant's maximum address. Construction validates the whole
// region, so entryAt cannot fail.
type indexTable interface {
	entryCount() int
	entryAt(i int) indexEntry
}

// findEntry returns the greatest i such that entryAt(i).key <= key. When
// duplicate keys slip into a damaged file the last duplicate wins, which keeps
// lookups reproducible. The second result is false when key precedes entry 0.
func findEntry(tbl indexTable, key uint64) (int, bool) {
	lo, hi := 0, tbl.entryCount()
	for lo < hi {
		mid := lo + (hi-lo)/2
		if tbl.entryAt(mid).key > key {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	if lo == 0 {
		return 0, false
	}
	return lo - 1, true
}

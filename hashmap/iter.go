package hashmap

// Iterator walks the entries of a Map in bucket order.
//
// The slices it returns alias the table. Modifying the map invalidates the
// iterator.
type Iterator struct {
	m    *Map
	next int
}

// Next returns the next entry, or ok == false when the iteration is done.
func (it *Iterator) Next() (key, value []byte, ok bool) {
	if it.m.closed {
		return nil, nil, false
	}
	i, ok := it.m.t.scan(it.next)
	if !ok {
		it.next = it.m.t.capacity
		return nil, nil, false
	}
	it.next = i + 1
	b := it.m.t.bucket(uint64(i)) //nolint:gosec // i >= 0
	return it.m.t.key(b), it.m.t.value(b), true
}

package hashmap

// ProbeStats describes how far entries sit from their home buckets.
type ProbeStats struct {
	Length       int
	Capacity     int
	LoadFactor   float64
	MaxDistance  int
	MeanDistance float64
}

// ProbeStats scans the table and reports probe distances. Distances count the
// home bucket as 1.
func (m *Map) ProbeStats() ProbeStats {
	s := ProbeStats{
		Length:   m.length,
		Capacity: m.t.capacity,
	}
	if m.closed || m.t.capacity == 0 {
		return s
	}
	s.LoadFactor = float64(m.length) / float64(m.t.capacity)

	var total int
	for i := uint64(0); i < uint64(m.t.capacity); i++ { //nolint:gosec // capacity > 0
		d, _ := readMeta(m.t.bucket(i))
		if d == 0 {
			continue
		}
		total += d
		s.MaxDistance = max(s.MaxDistance, d)
	}
	if m.length > 0 {
		s.MeanDistance = float64(total) / float64(m.length)
	}
	return s
}

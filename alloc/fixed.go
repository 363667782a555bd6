package alloc

// FixedBuffer is an Arena over caller-owned memory.
//
// The buffer is never freed, zeroed or retained beyond Close; a Budget, if
// configured, is not charged because the memory was not obtained here.
type FixedBuffer struct {
	bump
}

// NewFixedBuffer creates a FixedBuffer that allocates out of buf.
func NewFixedBuffer(buf []byte, opts ...Option) (*FixedBuffer, error) {
	if len(buf) == 0 {
		return nil, newError("new fixed buffer", 0, 0, ErrInvalidArgument, "buffer must not be empty")
	}
	return &FixedBuffer{
		bump: newBump("fixed buffer", buf, applyOptions(opts)),
	}, nil
}

// Close detaches the allocator from the buffer. It is idempotent.
func (f *FixedBuffer) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.region = nil
	f.base = 0
	return nil
}

package hashmap

import (
	"errors"

	"github.com/hupe1980/memkit/alloc"
)

var (
	// ErrInvalidArgument is returned for non-positive sizes and for keys or
	// values whose length does not match the map.
	ErrInvalidArgument = alloc.ErrInvalidArgument

	// ErrNotFound is returned by Remove when the key is absent.
	ErrNotFound = errors.New("hashmap: key not found")

	// ErrClosed is returned when a closed map is modified.
	ErrClosed = errors.New("hashmap: map is closed")

	errDistanceOverflow = errors.New("hashmap: probe distance overflow")
)

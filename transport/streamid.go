package transport

import (
	"fmt"

	"github.com/riverscale/cqldriver/frame"
)

// maxStreams is 2^15: stream ids are a signed 16-bit field and negative
// ids are reserved for server-initiated EVENT frames, so only the
// non-negative 15-bit range is usable for request correlation.
const maxStreams = 1 << 15

// streamIDAllocator hands out stream ids in [0, maxStreams) for
// multiplexing concurrent requests onto one connection. Not safe for
// concurrent use on its own; conn.go guards it with connReader.mu.
type streamIDAllocator struct {
	free []frame.StreamID
	next int
}

func (s *streamIDAllocator) Alloc() (frame.StreamID, error) {
	if n := len(s.free); n > 0 {
		id := s.free[n-1]
		s.free = s.free[:n-1]
		return id, nil
	}

	if s.next >= maxStreams {
		return 0, fmt.Errorf("no free stream ids: %d in flight", maxStreams)
	}

	id := frame.StreamID(s.next)
	s.next++
	return id, nil
}

func (s *streamIDAllocator) Free(id frame.StreamID) {
	s.free = append(s.free, id)
}

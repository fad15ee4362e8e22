package transport

import (
	"testing"
)

func TestStreamIDAllocatorReusesFreedIDs(t *testing.T) {
	t.Parallel()
	var s streamIDAllocator

	a, err := s.Alloc()
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Alloc()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("expected distinct ids, got %d twice", a)
	}

	s.Free(a)
	c, err := s.Alloc()
	if err != nil {
		t.Fatal(err)
	}
	if c != a {
		t.Fatalf("expected freed id %d to be reused, got %d", a, c)
	}
}

func TestStreamIDAllocatorExhaustion(t *testing.T) {
	t.Parallel()
	var s streamIDAllocator
	s.next = maxStreams

	if _, err := s.Alloc(); err == nil {
		t.Fatal("expected an error once all stream ids are in flight")
	}
}

func TestStreamIDAllocatorNeverDoubleAllocates(t *testing.T) {
	t.Parallel()
	var s streamIDAllocator
	seen := make(map[int]bool)

	for i := 0; i < maxStreams; i++ {
		id, err := s.Alloc()
		if err != nil {
			t.Fatalf("unexpected error at allocation %d: %v", i, err)
		}
		if seen[int(id)] {
			t.Fatalf("id %d allocated twice", id)
		}
		seen[int(id)] = true
	}

	if _, err := s.Alloc(); err == nil {
		t.Fatal("expected exhaustion error after maxStreams allocations")
	}
}

package frame

import "testing"

func TestHeaderWriteToParseHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	h := Header{Version: CQLv4, Flags: FlagCompression | FlagTracing, StreamID: 1234, OpCode: OpQuery}

	var b Buffer
	h.WriteTo(&b)
	// WriteTo always emits a placeholder body length of 0; patch it in to
	// simulate what the connection writer does before flushing.
	buf := b.Bytes()
	buf[5], buf[6], buf[7], buf[8] = 0, 0, 0, 7

	r := Buffer{buf: buf}
	got := ParseHeader(&r)

	if got.Version != h.Version {
		t.Fatalf("Version: got %#x, want %#x", got.Version, h.Version)
	}
	if got.Flags != h.Flags {
		t.Fatalf("Flags: got %#x, want %#x", got.Flags, h.Flags)
	}
	if got.StreamID != h.StreamID {
		t.Fatalf("StreamID: got %d, want %d", got.StreamID, h.StreamID)
	}
	if got.OpCode != h.OpCode {
		t.Fatalf("OpCode: got %#x, want %#x", got.OpCode, h.OpCode)
	}
	if got.Length != 7 {
		t.Fatalf("Length: got %d, want 7", got.Length)
	}
}

func TestHeaderWriteToDefaultsVersionToCQLv4(t *testing.T) {
	t.Parallel()

	h := Header{OpCode: OpOptions}
	var b Buffer
	h.WriteTo(&b)

	if got := b.Bytes()[0]; got != CQLv4 {
		t.Fatalf("got version byte %#x, want %#x", got, CQLv4)
	}
}

func TestUUIDString(t *testing.T) {
	t.Parallel()

	u := UUID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	want := "01020304-0506-0708-090a-0b0c0d0e0f10"
	if got := u.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

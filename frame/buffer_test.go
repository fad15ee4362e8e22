package frame

import "testing"

func TestBufferWriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	var b Buffer
	b.WriteByte(0x7f)
	b.WriteShort(1234)
	b.WriteInt(-42)
	b.WriteLong(9_000_000_000)
	b.WriteShortString("hello")
	b.WriteLongString("a longer string value")
	b.WriteStringList(StringList{"x", "yy", "zzz"})
	b.WriteBytes(Bytes{1, 2, 3})
	b.WriteBytes(nil)
	b.WriteShortBytes([]byte{9, 8, 7})
	b.WriteStringMap(map[string]string{"k": "v"})
	b.WriteConsistency(QUORUM)
	var u UUID
	copy(u[:], []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16})
	b.WriteUUID(u)

	r := Buffer{buf: b.Bytes()}

	if got := r.ReadByte(); got != 0x7f {
		t.Fatalf("ReadByte: got %#x", got)
	}
	if got := r.ReadShort(); got != 1234 {
		t.Fatalf("ReadShort: got %d", got)
	}
	if got := r.ReadInt(); got != -42 {
		t.Fatalf("ReadInt: got %d", got)
	}
	if got := r.ReadLong(); got != 9_000_000_000 {
		t.Fatalf("ReadLong: got %d", got)
	}
	if got := r.ReadShortString(); got != "hello" {
		t.Fatalf("ReadShortString: got %q", got)
	}
	if got := r.ReadLongString(); got != "a longer string value" {
		t.Fatalf("ReadLongString: got %q", got)
	}
	list := r.ReadStringList()
	if len(list) != 3 || list[0] != "x" || list[1] != "yy" || list[2] != "zzz" {
		t.Fatalf("ReadStringList: got %v", list)
	}
	if bs := r.ReadBytes(); len(bs) != 3 || bs[0] != 1 || bs[1] != 2 || bs[2] != 3 {
		t.Fatalf("ReadBytes: got %v", bs)
	}
	if bs := r.ReadBytes(); bs != nil {
		t.Fatalf("ReadBytes (NULL): got %v, want nil", bs)
	}
	if bs := r.ReadShortBytes(); len(bs) != 3 || bs[0] != 9 || bs[1] != 8 || bs[2] != 7 {
		t.Fatalf("ReadShortBytes: got %v", bs)
	}
	m := r.ReadStringMap()
	if m["k"] != "v" || len(m) != 1 {
		t.Fatalf("ReadStringMap: got %v", m)
	}
	if got := r.ReadConsistency(); got != QUORUM {
		t.Fatalf("ReadConsistency: got %v", got)
	}
	if got := r.ReadUUID(); got != u {
		t.Fatalf("ReadUUID: got %v, want %v", got, u)
	}
	if r.Error() != nil {
		t.Fatalf("unexpected sticky error: %v", r.Error())
	}
}

func TestBufferReadPastEndRecordsStickyError(t *testing.T) {
	t.Parallel()

	b := Buffer{buf: []byte{0x00, 0x01}}
	_ = b.ReadInt()
	if b.Error() == nil {
		t.Fatal("expected a sticky error reading past the end of the buffer")
	}

	// Further reads must not panic and must preserve the first error.
	firstErr := b.Error()
	_ = b.ReadLong()
	if b.Error() != firstErr {
		t.Fatalf("sticky error changed: got %v, want %v", b.Error(), firstErr)
	}
}

func TestBufferReset(t *testing.T) {
	t.Parallel()

	var b Buffer
	b.WriteInt(7)
	b.Reset()
	if b.Len() != 0 {
		t.Fatalf("Len after Reset: got %d, want 0", b.Len())
	}
	if b.Error() != nil {
		t.Fatalf("Error after Reset: got %v, want nil", b.Error())
	}
}

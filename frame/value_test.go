package frame

import "testing"

func TestValueNullAndUnset(t *testing.T) {
	t.Parallel()

	n := NullValue()
	if !n.IsNull() || n.IsUnset() {
		t.Fatalf("NullValue: IsNull=%v IsUnset=%v", n.IsNull(), n.IsUnset())
	}

	u := UnsetValue()
	if !u.IsUnset() || u.IsNull() {
		t.Fatalf("UnsetValue: IsNull=%v IsUnset=%v", u.IsNull(), u.IsUnset())
	}

	present := Value{Bytes: []byte{1, 2, 3}}
	if present.IsNull() || present.IsUnset() {
		t.Fatalf("present value misclassified: IsNull=%v IsUnset=%v", present.IsNull(), present.IsUnset())
	}
}

func TestValueWriteToNullAndUnsetEmitOnlyTheLengthMarker(t *testing.T) {
	t.Parallel()

	var b Buffer
	NullValue().WriteTo(&b)
	if got := len(b.Bytes()); got != 4 {
		t.Fatalf("NULL value wrote %d bytes, want 4 (length marker only)", got)
	}

	b.Reset()
	UnsetValue().WriteTo(&b)
	if got := len(b.Bytes()); got != 4 {
		t.Fatalf("UNSET value wrote %d bytes, want 4 (length marker only)", got)
	}
}

func TestValueWriteToPresentValue(t *testing.T) {
	t.Parallel()

	v := Value{Bytes: []byte{0xAA, 0xBB, 0xCC}}
	var b Buffer
	v.WriteTo(&b)

	r := Buffer{buf: b.Bytes()}
	n := r.ReadInt()
	if n != 3 {
		t.Fatalf("length prefix: got %d, want 3", n)
	}
	data := r.readN(3)
	if string(data) != string(v.Bytes) {
		t.Fatalf("payload: got %v, want %v", data, v.Bytes)
	}
}

func TestSerializedValuesWriteToWithNames(t *testing.T) {
	t.Parallel()

	vs := SerializedValues{{Bytes: []byte{1}}, {Bytes: []byte{2, 3}}}
	var b Buffer
	if err := vs.WriteTo(&b, true, []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}

	r := Buffer{buf: b.Bytes()}
	if n := r.ReadShort(); n != 2 {
		t.Fatalf("count: got %d, want 2", n)
	}
	if name := r.ReadShortString(); name != "a" {
		t.Fatalf("name 0: got %q", name)
	}
	if n := r.ReadInt(); n != 1 {
		t.Fatalf("value 0 length: got %d", n)
	}
	_ = r.readN(1)
	if name := r.ReadShortString(); name != "b" {
		t.Fatalf("name 1: got %q", name)
	}
	if n := r.ReadInt(); n != 2 {
		t.Fatalf("value 1 length: got %d", n)
	}
}

func TestSerializedValuesWriteToRejectsTooMany(t *testing.T) {
	t.Parallel()

	vs := make(SerializedValues, MaxSerializedValues+1)
	var b Buffer
	if err := vs.WriteTo(&b, false, nil); err == nil {
		t.Fatal("expected an error for a values count exceeding the u16 bound")
	}
}

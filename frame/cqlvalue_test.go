package frame

import (
	"math"
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeValueScalars(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		typ  Option
		raw  []byte
		want CqlValue
	}{
		{"int", Option{ID: IntID}, []byte{0x00, 0x00, 0x00, 0x2a}, CqlInt(42)},
		{"negative int", Option{ID: IntID}, []byte{0xff, 0xff, 0xff, 0xff}, CqlInt(-1)},
		{"bigint", Option{ID: BigIntID}, []byte{0, 0, 0, 0, 0, 0, 0, 7}, CqlBigInt(7)},
		{"smallint", Option{ID: SmallIntID}, []byte{0x01, 0x00}, CqlSmallInt(256)},
		{"tinyint", Option{ID: TinyIntID}, []byte{0xff}, CqlTinyInt(-1)},
		{"boolean true", Option{ID: BooleanID}, []byte{1}, CqlBoolean(true)},
		{"boolean false", Option{ID: BooleanID}, []byte{0}, CqlBoolean(false)},
		{"text", Option{ID: VarcharID}, []byte("hello"), CqlText("hello")},
		{"ascii", Option{ID: AsciiID}, []byte("hi"), CqlAscii("hi")},
		{"blob", Option{ID: BlobID}, []byte{1, 2, 3}, CqlBlob([]byte{1, 2, 3})},
		{"inet v4", Option{ID: InetID}, []byte{127, 0, 0, 1}, CqlInet{IP: net.IPv4(127, 0, 0, 1).To4()}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := DecodeValue(tc.typ, tc.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeValueFloatingPoint(t *testing.T) {
	t.Parallel()

	var fb [4]byte
	bits := math.Float32bits(3.5)
	fb[0], fb[1], fb[2], fb[3] = byte(bits>>24), byte(bits>>16), byte(bits>>8), byte(bits)
	got, err := DecodeValue(Option{ID: FloatID}, fb[:])
	if err != nil {
		t.Fatal(err)
	}
	if got != CqlFloat(3.5) {
		t.Fatalf("got %v, want 3.5", got)
	}

	var db [8]byte
	dbits := math.Float64bits(-2.25)
	for i := 0; i < 8; i++ {
		db[i] = byte(dbits >> (56 - 8*i))
	}
	gotD, err := DecodeValue(Option{ID: DoubleID}, db[:])
	if err != nil {
		t.Fatal(err)
	}
	if gotD != CqlDouble(-2.25) {
		t.Fatalf("got %v, want -2.25", gotD)
	}
}

func TestDecodeValueRejectsShortFixedWidthInput(t *testing.T) {
	t.Parallel()
	if _, err := DecodeValue(Option{ID: IntID}, []byte{0, 0}); err == nil {
		t.Fatal("expected an error decoding a truncated int")
	}
	if _, err := DecodeValue(Option{ID: BooleanID}, nil); err == nil {
		t.Fatal("expected an error decoding an empty boolean")
	}
	if _, err := DecodeValue(Option{ID: InetID}, []byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error decoding a 3-byte inet address")
	}
}

func TestDecodeValueList(t *testing.T) {
	t.Parallel()

	var b Buffer
	b.WriteInt(2)
	b.WriteBytes(Bytes{0, 0, 0, 1})
	b.WriteBytes(Bytes{0, 0, 0, 2})

	typ := Option{ID: ListID, List: &ListOption{Element: Option{ID: IntID}}}
	got, err := DecodeValue(typ, b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	list, ok := got.(CqlList)
	if !ok {
		t.Fatalf("got %T, want CqlList", got)
	}
	if len(list.Elements) != 2 || list.Elements[0] != CqlInt(1) || list.Elements[1] != CqlInt(2) {
		t.Fatalf("got %v", list.Elements)
	}
}

func TestDecodeValueListRejectsNullElement(t *testing.T) {
	t.Parallel()

	var b Buffer
	b.WriteInt(1)
	b.WriteBytes(nil)

	typ := Option{ID: ListID, List: &ListOption{Element: Option{ID: IntID}}}
	if _, err := DecodeValue(typ, b.Bytes()); err == nil {
		t.Fatal("expected an error: NULL is not a valid collection element")
	}
}

func TestDecodeValueMap(t *testing.T) {
	t.Parallel()

	var b Buffer
	b.WriteInt(1)
	b.WriteBytes([]byte("k"))
	b.WriteBytes(Bytes{0, 0, 0, 9})

	typ := Option{ID: MapID, Map: &MapOption{Key: Option{ID: VarcharID}, Value: Option{ID: IntID}}}
	got, err := DecodeValue(typ, b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	m, ok := got.(CqlMap)
	if !ok {
		t.Fatalf("got %T, want CqlMap", got)
	}
	if len(m.Entries) != 1 || m.Entries[0].Key != CqlText("k") || m.Entries[0].Value != CqlInt(9) {
		t.Fatalf("got %v", m.Entries)
	}
}

func TestDecodeValueTupleWithNullComponent(t *testing.T) {
	t.Parallel()

	var b Buffer
	b.WriteBytes(Bytes{0, 0, 0, 5})
	b.WriteBytes(nil)

	typ := Option{ID: TupleID, Tuple: &TupleOption{Elements: []Option{{ID: IntID}, {ID: VarcharID}}}}
	got, err := DecodeValue(typ, b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	tup, ok := got.(CqlTuple)
	if !ok {
		t.Fatalf("got %T, want CqlTuple", got)
	}
	if tup.Elements[0] == nil || *tup.Elements[0] != CqlInt(5) {
		t.Fatalf("component 0: got %v", tup.Elements[0])
	}
	if tup.Elements[1] != nil {
		t.Fatalf("component 1: expected nil (NULL), got %v", *tup.Elements[1])
	}
}

func TestDecodeValueUDTWithTrailingOmittedField(t *testing.T) {
	t.Parallel()

	var b Buffer
	b.WriteBytes([]byte("alice"))
	// second field omitted entirely (short input, not even a NULL marker)

	typ := Option{
		ID: UDTID,
		UDT: &UDTOption{
			Keyspace:   "ks",
			Name:       "person",
			FieldNames: []string{"name", "age"},
			FieldTypes: []Option{{ID: VarcharID}, {ID: IntID}},
		},
	}
	got, err := DecodeValue(typ, b.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	udt, ok := got.(CqlUDT)
	if !ok {
		t.Fatalf("got %T, want CqlUDT", got)
	}
	if udt.Fields[0].Value == nil || *udt.Fields[0].Value != CqlText("alice") {
		t.Fatalf("field 0: got %v", udt.Fields[0].Value)
	}
	if udt.Fields[1].Value != nil {
		t.Fatalf("field 1: expected nil for omitted trailing field, got %v", *udt.Fields[1].Value)
	}
}

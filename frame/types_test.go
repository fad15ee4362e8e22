package frame

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOptionWriteToParseOptionRoundTrip(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		opt  Option
	}{
		{"primitive", Option{ID: IntID}},
		{"custom", Option{ID: CustomID, Custom: "org.apache.cassandra.db.marshal.SomeType"}},
		{"list", Option{ID: ListID, List: &ListOption{Element: Option{ID: VarcharID}}}},
		{"set", Option{ID: SetID, Set: &SetOption{Element: Option{ID: BigIntID}}}},
		{"map", Option{ID: MapID, Map: &MapOption{Key: Option{ID: VarcharID}, Value: Option{ID: IntID}}}},
		{
			"tuple",
			Option{ID: TupleID, Tuple: &TupleOption{Elements: []Option{{ID: IntID}, {ID: VarcharID}}}},
		},
		{
			"udt",
			Option{ID: UDTID, UDT: &UDTOption{
				Keyspace:   "ks",
				Name:       "person",
				FieldNames: []string{"name", "age"},
				FieldTypes: []Option{{ID: VarcharID}, {ID: IntID}},
			}},
		},
		{
			"nested list of map",
			Option{ID: ListID, List: &ListOption{Element: Option{
				ID: MapID, Map: &MapOption{Key: Option{ID: VarcharID}, Value: Option{ID: IntID}},
			}}},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var b Buffer
			tc.opt.WriteTo(&b)

			r := Buffer{buf: b.Bytes()}
			got := ParseOption(&r)
			if r.Error() != nil {
				t.Fatalf("unexpected decode error: %v", r.Error())
			}
			if diff := cmp.Diff(tc.opt, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseResultMetadataNoMetadataFlagSkipsColumns(t *testing.T) {
	t.Parallel()

	var b Buffer
	b.WriteInt(NoMetadata)
	b.WriteInt(0)

	m := ParseResultMetadata(&b, false)
	if b.Error() != nil {
		t.Fatalf("unexpected error: %v", b.Error())
	}
	if len(m.Columns) != 0 {
		t.Fatalf("expected no columns decoded, got %v", m.Columns)
	}
	if m.Flags&NoMetadata == 0 {
		t.Fatalf("NoMetadata flag not preserved")
	}
	if m.HasMorePages() {
		t.Fatalf("HasMorePages: got true, want false")
	}
}

func TestParseResultMetadataGlobalTableSpec(t *testing.T) {
	t.Parallel()

	var b Buffer
	b.WriteInt(GlobalTablesSpec)
	b.WriteInt(2)
	b.WriteShortString("ks")
	b.WriteShortString("tbl")
	b.WriteShortString("col_a")
	Option{ID: IntID}.WriteTo(&b)
	b.WriteShortString("col_b")
	Option{ID: VarcharID}.WriteTo(&b)

	m := ParseResultMetadata(&b, false)
	if b.Error() != nil {
		t.Fatalf("unexpected error: %v", b.Error())
	}
	if len(m.Columns) != 2 {
		t.Fatalf("got %d columns, want 2", len(m.Columns))
	}
	for _, c := range m.Columns {
		if c.Keyspace != "ks" || c.Table != "tbl" {
			t.Fatalf("column %q did not inherit global keyspace/table: %+v", c.Name, c)
		}
	}
	if m.Columns[0].Name != "col_a" || m.Columns[0].Type.ID != IntID {
		t.Fatalf("column 0: got %+v", m.Columns[0])
	}
	if m.Columns[1].Name != "col_b" || m.Columns[1].Type.ID != VarcharID {
		t.Fatalf("column 1: got %+v", m.Columns[1])
	}
}

func TestParseResultMetadataPreparedPkIndexes(t *testing.T) {
	t.Parallel()

	var b Buffer
	b.WriteInt(GlobalTablesSpec | NoMetadata)
	b.WriteInt(1)
	b.WriteInt(2)
	b.WriteShort(0)
	b.WriteShort(3)

	m := ParseResultMetadata(&b, true)
	if b.Error() != nil {
		t.Fatalf("unexpected error: %v", b.Error())
	}
	if len(m.PkIndexes) != 2 || m.PkIndexes[0] != 0 || m.PkIndexes[1] != 3 {
		t.Fatalf("got PkIndexes %v", m.PkIndexes)
	}
}

func TestParseRowDecodesNullsAsZeroValue(t *testing.T) {
	t.Parallel()

	var b Buffer
	b.WriteBytes(Bytes{0, 0, 0, 5})
	b.WriteBytes(nil)

	cols := []ColumnSpec{
		{Name: "a", Type: Option{ID: IntID}},
		{Name: "b", Type: Option{ID: VarcharID}},
	}
	row, err := ParseRow(&b, cols)
	if err != nil {
		t.Fatal(err)
	}
	if row[0] != CqlInt(5) {
		t.Fatalf("column a: got %v", row[0])
	}
	if row[1] != nil {
		t.Fatalf("column b: expected nil (NULL), got %v", row[1])
	}
}

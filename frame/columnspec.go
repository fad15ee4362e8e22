package frame

import "fmt"

// ColumnSpec names and types one result or bound-variable column.
// Grounded on result.rs's ColumnSpec and the teacher's frame.ColumnSpec
// (referenced by gocql/types.go, gocql/exec.go).
type ColumnSpec struct {
	Keyspace string
	Table    string
	Name     string
	Type     Option
}

// ResultMetadataFlags (CQL v4 §4.2.5.2).
const (
	GlobalTablesSpec Int = 0x0001
	HasMorePages     Int = 0x0002
	NoMetadata       Int = 0x0004
)

// ResultMetadata describes the columns of a Rows result or the
// bound-variable columns of a prepared statement (spec §3, §4.3).
type ResultMetadata struct {
	Flags       Int
	ColCount    Int
	PagingState Bytes
	GlobalKeyspace string
	GlobalTable    string
	Columns     []ColumnSpec

	// PkIndexes is only populated for prepared-statement bound-variable
	// metadata: the ordered bind-position indexes of the partition-key
	// columns, delivered by the server in hash order (spec invariant 3).
	PkIndexes []Short
}

func (m *ResultMetadata) HasMorePages() bool {
	return m.Flags&HasMorePages != 0
}

// ParseResultMetadata decodes the `<metadata>` section shared by Rows
// results and PREPARED responses (CQL v4 §4.2.5.2/4.2.5.4).
func ParseResultMetadata(b *Buffer, preparedBoundValues bool) *ResultMetadata {
	m := &ResultMetadata{}
	m.Flags = b.ReadInt()
	m.ColCount = b.ReadInt()

	if preparedBoundValues {
		n := b.ReadInt()
		m.PkIndexes = make([]Short, n)
		for i := range m.PkIndexes {
			m.PkIndexes[i] = b.ReadShort()
		}
	}

	if m.Flags&HasMorePages != 0 {
		m.PagingState = b.ReadBytes()
	}

	if m.Flags&NoMetadata != 0 {
		return m
	}

	global := m.Flags&GlobalTablesSpec != 0
	if global {
		m.GlobalKeyspace = b.ReadShortString()
		m.GlobalTable = b.ReadShortString()
	}

	m.Columns = make([]ColumnSpec, m.ColCount)
	for i := range m.Columns {
		cs := &m.Columns[i]
		if !global {
			cs.Keyspace = b.ReadShortString()
			cs.Table = b.ReadShortString()
		} else {
			cs.Keyspace = m.GlobalKeyspace
			cs.Table = m.GlobalTable
		}
		cs.Name = b.ReadShortString()
		cs.Type = ParseOption(b)
	}

	return m
}

// Row is one decoded result row: NULL columns are a nil CqlValue, matching
// spec invariant 4 ("exactly col_count columns per row; each column is
// either NULL or a valid CqlValue").
type Row []CqlValue

// ParseRow decodes one row's worth of columns given their metadata.
func ParseRow(b *Buffer, columns []ColumnSpec) (Row, error) {
	row := make(Row, len(columns))
	for i, col := range columns {
		data := b.ReadBytes()
		if err := b.Error(); err != nil {
			return nil, fmt.Errorf("frame: decoding column %d (%s): %w", i, col.Name, err)
		}
		if data == nil {
			continue
		}
		v, err := DecodeValue(col.Type, data)
		if err != nil {
			return nil, fmt.Errorf("frame: decoding column %d (%s): %w", i, col.Name, err)
		}
		row[i] = v
	}
	return row, nil
}

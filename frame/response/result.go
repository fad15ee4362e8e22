package response

import (
	"fmt"

	"github.com/riverscale/cqldriver/frame"
)

// ResultKind is the RESULT sub-opcode (CQL v4 §4.2.5).
type ResultKind = frame.Int

const (
	ResultVoid         ResultKind = 0x0001
	ResultRows         ResultKind = 0x0002
	ResultSetKeyspace  ResultKind = 0x0003
	ResultPrepared     ResultKind = 0x0004
	ResultSchemaChange ResultKind = 0x0005
)

var _ frame.Response = (*Result)(nil)

// Result is a decoded RESULT frame body. Exactly one of the pointer
// fields is populated, selected by Kind.
type Result struct {
	Kind ResultKind

	Rows         *RowsResult
	SetKeyspace  *SetKeyspaceResult
	Prepared     *PreparedResult
	SchemaChange *SchemaChangeResult
}

func (*Result) OpCode() frame.OpCode {
	return frame.OpResult
}

// RowsResult is the result of a SELECT (spec §3's QueryResult rows path).
type RowsResult struct {
	Metadata *frame.ResultMetadata
	RowCount frame.Int
	Rows     []frame.Row
}

// SetKeyspaceResult reports the keyspace a USE statement switched to.
type SetKeyspaceResult struct {
	Keyspace string
}

// PreparedResult is returned from a PREPARE request; ID is the opaque
// statement id to pass back in EXECUTE (spec §3's PreparedStatement).
type PreparedResult struct {
	ID              []byte
	ResultMetadata  *frame.ResultMetadata
	ResultsMetadata *frame.ResultMetadata
}

// SchemaChangeResult mirrors the Event schema-change payload shape,
// returned directly when a DDL statement is executed (not via push
// notification).
type SchemaChangeResult struct {
	ChangeType string
	Target     string
	Keyspace   string
	Name       string
	Arguments  []string
}

// ParseResult decodes a RESULT frame body (CQL v4 §4.2.5).
func ParseResult(b *frame.Buffer) (*Result, error) {
	r := &Result{Kind: b.ReadInt()}

	switch r.Kind {
	case ResultVoid:
		// No payload.
	case ResultRows:
		metadata := frame.ParseResultMetadata(b, false)
		rowCount := b.ReadInt()
		rows := make([]frame.Row, 0, rowCount)
		for i := frame.Int(0); i < rowCount; i++ {
			row, err := frame.ParseRow(b, metadata.Columns)
			if err != nil {
				return nil, fmt.Errorf("frame: parsing row %d of %d: %w", i, rowCount, err)
			}
			rows = append(rows, row)
		}
		r.Rows = &RowsResult{Metadata: metadata, RowCount: rowCount, Rows: rows}
	case ResultSetKeyspace:
		r.SetKeyspace = &SetKeyspaceResult{Keyspace: b.ReadShortString()}
	case ResultPrepared:
		id := b.ReadShortBytes()
		resultMetadata := frame.ParseResultMetadata(b, true)
		resultsMetadata := frame.ParseResultMetadata(b, false)
		r.Prepared = &PreparedResult{
			ID:              id,
			ResultMetadata:  resultMetadata,
			ResultsMetadata: resultsMetadata,
		}
	case ResultSchemaChange:
		sc := &SchemaChangeResult{
			ChangeType: b.ReadShortString(),
			Target:     b.ReadShortString(),
		}
		switch sc.Target {
		case "KEYSPACE":
			sc.Keyspace = b.ReadShortString()
		case "TABLE", "TYPE":
			sc.Keyspace = b.ReadShortString()
			sc.Name = b.ReadShortString()
		case "FUNCTION", "AGGREGATE":
			sc.Keyspace = b.ReadShortString()
			sc.Name = b.ReadShortString()
			sc.Arguments = b.ReadStringList()
		}
		r.SchemaChange = sc
	default:
		return nil, fmt.Errorf("frame: unknown RESULT kind 0x%04x", r.Kind)
	}

	if err := b.Error(); err != nil {
		return nil, fmt.Errorf("frame: decoding RESULT body: %w", err)
	}
	return r, nil
}

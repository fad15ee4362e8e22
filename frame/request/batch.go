package request

import "github.com/riverscale/cqldriver/frame"

// BatchKind is the batch-statement kind (spec §3).
type BatchKind byte

const (
	LoggedBatch   BatchKind = 0
	UnloggedBatch BatchKind = 1
	CounterBatch  BatchKind = 2
)

// BatchStatementKind tags whether a batch child is raw CQL text or a
// prepared-statement id.
type BatchStatementKind byte

const (
	BatchStatementQuery   BatchStatementKind = 0
	BatchStatementPrepared BatchStatementKind = 1
)

// BatchStatement is one child of a Batch: either a query string or a
// prepared id, plus its bound values.
type BatchStatement struct {
	Kind       BatchStatementKind
	Content    string // set iff Kind == BatchStatementQuery
	ID         []byte // set iff Kind == BatchStatementPrepared
	Values     frame.SerializedValues
	ValueNames []string
}

func (s *BatchStatement) writeTo(b *frame.Buffer) {
	b.WriteByte(byte(s.Kind))
	switch s.Kind {
	case BatchStatementQuery:
		b.WriteLongString(s.Content)
	case BatchStatementPrepared:
		b.WriteShortBytes(s.ID)
	}
	_ = s.Values.WriteTo(b, s.ValueNames != nil, s.ValueNames)
}

var _ frame.Request = (*Batch)(nil)

// Batch groups several statements under shared consistency/idempotency
// (spec §3, "Batch").
type Batch struct {
	Kind              BatchKind
	Statements        []BatchStatement
	Consistency       frame.Consistency
	SerialConsistency frame.Consistency
	HasSerialConsistency bool
	DefaultTimestamp  frame.Long
	HasDefaultTimestamp bool
}

func (bt *Batch) WriteTo(b *frame.Buffer) {
	b.WriteByte(byte(bt.Kind))
	b.WriteShort(frame.Short(len(bt.Statements)))
	for i := range bt.Statements {
		bt.Statements[i].writeTo(b)
	}
	b.WriteConsistency(bt.Consistency)

	var flags byte
	if bt.HasSerialConsistency {
		flags |= flagWithSerialConsist
	}
	if bt.HasDefaultTimestamp {
		flags |= flagWithDefaultTstamp
	}
	b.WriteByte(flags)
	if bt.HasSerialConsistency {
		b.WriteConsistency(bt.SerialConsistency)
	}
	if bt.HasDefaultTimestamp {
		b.WriteLong(bt.DefaultTimestamp)
	}
}

func (*Batch) OpCode() frame.OpCode {
	return frame.OpBatch
}

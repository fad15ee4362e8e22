package request

import "github.com/riverscale/cqldriver/frame"

// QueryParameters flags (CQL v4 §4.1.4).
const (
	flagValues             byte = 0x01
	flagSkipMetadata       byte = 0x02
	flagPageSize           byte = 0x04
	flagWithPagingState    byte = 0x08
	flagWithSerialConsist  byte = 0x10
	flagWithDefaultTstamp  byte = 0x20
	flagWithNamesForValues byte = 0x40
)

// QueryParameters is the flags-driven variable payload shared by QUERY
// and EXECUTE (spec §4.1, "[query parameters]"). BATCH children write
// their values directly and do not use it.
type QueryParameters struct {
	Consistency       frame.Consistency
	Values            frame.SerializedValues
	ValueNames        []string // only if len(Values) > 0 && non-nil
	SkipMetadata      bool
	PageSize          frame.Int
	PagingState       frame.Bytes
	SerialConsistency frame.Consistency
	HasSerialConsistency bool
	DefaultTimestamp  frame.Long
	HasDefaultTimestamp bool
}

func (p *QueryParameters) WriteTo(b *frame.Buffer) {
	b.WriteConsistency(p.Consistency)

	var flags byte
	if len(p.Values) > 0 {
		flags |= flagValues
	}
	if p.SkipMetadata {
		flags |= flagSkipMetadata
	}
	if p.PageSize > 0 {
		flags |= flagPageSize
	}
	if p.PagingState != nil {
		flags |= flagWithPagingState
	}
	if p.HasSerialConsistency {
		flags |= flagWithSerialConsist
	}
	if p.HasDefaultTimestamp {
		flags |= flagWithDefaultTstamp
	}
	if p.ValueNames != nil {
		flags |= flagWithNamesForValues
	}
	b.WriteByte(flags)

	if len(p.Values) > 0 {
		_ = p.Values.WriteTo(b, p.ValueNames != nil, p.ValueNames)
	}
	if p.PageSize > 0 {
		b.WriteInt(p.PageSize)
	}
	if p.PagingState != nil {
		b.WriteBytes(p.PagingState)
	}
	if p.HasSerialConsistency {
		b.WriteConsistency(p.SerialConsistency)
	}
	if p.HasDefaultTimestamp {
		b.WriteLong(p.DefaultTimestamp)
	}
}

package gocql

import (
	"context"
	"encoding/binary"
	"math"

	cql "github.com/riverscale/cqldriver"
	"github.com/riverscale/cqldriver/frame"
)

type BatchType = cql.BatchKind

const (
	LoggedBatch   = cql.LoggedBatch
	UnloggedBatch = cql.UnloggedBatch
	CounterBatch  = cql.CounterBatch
)

// Batch groups several statements into one round trip, gocql-style.
// Unlike a prepared Query's Bind, unprepared batch entries carry no
// server-side column type to marshal against, so values are encoded
// using CQL's native wire representation for common Go kinds rather
// than gocql's TypeInfo-directed Marshal.
type Batch struct {
	ctx   context.Context
	batch *cql.Batch
}

func (s *Session) NewBatch(typ BatchType) *Batch {
	return &Batch{ctx: context.Background(), batch: s.inner.NewBatch(typ)}
}

func (b *Batch) WithContext(ctx context.Context) *Batch {
	b.ctx = ctx
	return b
}

func (b *Batch) Query(stmt string, values ...interface{}) {
	b.batch.AppendStatement(stmt, toValues(values)...)
}

func toValues(values []interface{}) []frame.Value {
	out := make([]frame.Value, len(values))
	for i, v := range values {
		out[i] = encodeUntyped(v)
	}
	return out
}

// encodeUntyped wire-encodes a plain Go value with no declared CQL
// column type, covering the common bind kinds batch statements see in
// practice (integers, strings, bytes, bools, floats).
func encodeUntyped(v interface{}) frame.Value {
	if v == nil {
		return frame.Value{N: -1}
	}
	if _, ok := v.(unsetColumn); ok {
		return frame.Value{N: -2}
	}

	var b []byte
	switch x := v.(type) {
	case string:
		b = []byte(x)
	case []byte:
		b = x
	case bool:
		if x {
			b = []byte{1}
		} else {
			b = []byte{0}
		}
	case int:
		b = make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(int64(x)))
	case int32:
		b = make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(x))
	case int64:
		b = make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(x))
	case float32:
		b = make([]byte, 4)
		binary.BigEndian.PutUint32(b, math.Float32bits(x))
	case float64:
		b = make([]byte, 8)
		binary.BigEndian.PutUint64(b, math.Float64bits(x))
	default:
		return frame.Value{N: -1}
	}
	return frame.Value{N: frame.Int(len(b)), Bytes: b}
}

func (b *Batch) Exec() error {
	return b.batch.Exec(b.ctx)
}

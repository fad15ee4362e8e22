package gocql

import (
	"context"
	"fmt"
	"net"
	"time"

	realgocql "github.com/gocql/gocql"

	cql "github.com/riverscale/cqldriver"
	"github.com/riverscale/cqldriver/frame"
)

// Query wraps a prepared cql.Query behind gocql's fluent builder API.
// Unlike gocql, binding happens eagerly as each Bind-family method is
// called rather than lazily at Exec time; the effect at the call site
// is the same.
type Query struct {
	ctx   context.Context
	query cql.Query
	err   error
}

// anyValue adapts an arbitrary Go value into cql.Serializable by
// delegating to the real gocql package's type-directed codec, so this
// shim doesn't need its own parallel implementation of CQL value
// marshaling for every Go type a caller might bind.
type anyValue struct{ v interface{} }

func (a anyValue) Serialize(t *frame.Option) (int32, []byte, error) {
	if a.v == nil {
		return -1, nil, nil
	}
	if _, ok := a.v.(unsetColumn); ok {
		return -2, nil, nil
	}
	if t == nil {
		return 0, nil, fmt.Errorf("gocql: cannot bind untyped value against an unprepared query")
	}
	b, err := realgocql.Marshal(WrapOption(t), a.v)
	if err != nil {
		return 0, nil, err
	}
	return int32(len(b)), b, nil
}

// Bind sets every positional bind marker starting at 0 to values,
// gocql-style.
func (q *Query) Bind(values ...interface{}) *Query {
	for i, v := range values {
		if n, ok := v.(int64); ok {
			q.query.BindInt64(i, n)
			continue
		}
		q.query.Bind(i, anyValue{v})
	}
	return q
}

func (q *Query) Exec() error {
	if q.err != nil {
		return q.err
	}
	_, err := q.query.Exec(q.ctx)
	return err
}

// Scan runs the query and copies its single result row's columns into
// values.
func (q *Query) Scan(values ...interface{}) error {
	if q.err != nil {
		return q.err
	}
	res, err := q.query.Exec(q.ctx)
	if err != nil {
		return err
	}
	if len(res.Rows) == 0 {
		return realgocql.ErrNotFound
	}
	return scanRow(res.Rows[0], values)
}

// scanRow assigns each already-decoded frame.CqlValue in row into the
// matching destination pointer in values. This driver's result rows
// arrive pre-decoded (frame.ParseRow, not raw wire bytes), so scanning
// is a direct type switch rather than a second gocql.Unmarshal pass.
func scanRow(row frame.Row, values []interface{}) error {
	if len(row) != len(values) {
		return fmt.Errorf("column count mismatch expected %d, got %d", len(values), len(row))
	}
	for i, raw := range row {
		if raw == nil {
			continue
		}
		if err := assign(raw, values[i]); err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
	}
	return nil
}

func assign(raw frame.CqlValue, dest interface{}) error {
	switch v := raw.(type) {
	case frame.CqlText:
		if p, ok := dest.(*string); ok {
			*p = string(v)
			return nil
		}
	case frame.CqlAscii:
		if p, ok := dest.(*string); ok {
			*p = string(v)
			return nil
		}
	case frame.CqlBlob:
		if p, ok := dest.(*[]byte); ok {
			*p = append([]byte(nil), v...)
			return nil
		}
	case frame.CqlBoolean:
		if p, ok := dest.(*bool); ok {
			*p = bool(v)
			return nil
		}
	case frame.CqlInt:
		switch p := dest.(type) {
		case *int:
			*p = int(v)
			return nil
		case *int32:
			*p = int32(v)
			return nil
		}
	case frame.CqlBigInt:
		switch p := dest.(type) {
		case *int64:
			*p = int64(v)
			return nil
		case *int:
			*p = int(v)
			return nil
		}
	case frame.CqlCounter:
		if p, ok := dest.(*int64); ok {
			*p = int64(v)
			return nil
		}
	case frame.CqlSmallInt:
		if p, ok := dest.(*int16); ok {
			*p = int16(v)
			return nil
		}
	case frame.CqlTinyInt:
		if p, ok := dest.(*int8); ok {
			*p = int8(v)
			return nil
		}
	case frame.CqlFloat:
		if p, ok := dest.(*float32); ok {
			*p = float32(v)
			return nil
		}
	case frame.CqlDouble:
		if p, ok := dest.(*float64); ok {
			*p = float64(v)
			return nil
		}
	case frame.CqlTimestamp:
		if p, ok := dest.(*time.Time); ok {
			*p = time.UnixMilli(int64(v)).UTC()
			return nil
		}
	case frame.CqlUUID:
		if p, ok := dest.(*realgocql.UUID); ok {
			*p = realgocql.UUID(v)
			return nil
		}
	case frame.CqlTimeUUID:
		if p, ok := dest.(*realgocql.UUID); ok {
			*p = realgocql.UUID(v)
			return nil
		}
	case frame.CqlInet:
		if p, ok := dest.(*net.IP); ok {
			*p = v.IP
			return nil
		}
	}
	return fmt.Errorf("cannot scan %T into %T", raw, dest)
}

func (q *Query) Iter() *Iter {
	it := q.query.Iter(q.ctx)
	return &Iter{it: &it}
}

func (q *Query) WithContext(ctx context.Context) *Query {
	q.ctx = ctx
	return q
}

func (q *Query) PageSize(n int) *Query {
	q.query.SetPageSize(int32(n))
	return q
}

func (q *Query) PageState(state []byte) *Query {
	q.query.SetPageState(state)
	return q
}

func (q *Query) SerialConsistency(cons Consistency) *Query {
	q.query.SetSerialConsistency(cons)
	return q
}

func (q *Query) Idempotent(value bool) *Query {
	q.query.SetIdempotent(value)
	return q
}

func (q *Query) NoSkipMetadata() *Query {
	q.query.NoSkipMetadata()
	return q
}

func (q *Query) Consistency(c Consistency) *Query {
	q.query.SetConsistency(c)
	return q
}

package gocql

import (
	cql "github.com/riverscale/cqldriver"
)

// Iter is a paged row cursor, gocql-style: Scan advances and decodes in
// one call, unlike the underlying cql.Iter's Next (which returns a raw
// frame.Row).
type Iter struct {
	it *cql.Iter
}

func (it *Iter) Columns() []ColumnInfo {
	specs := it.it.Columns()
	cols := make([]ColumnInfo, len(specs))
	for i, c := range specs {
		cols[i] = ColumnInfo{
			Keyspace: c.Keyspace,
			Table:    c.Table,
			Name:     c.Name,
			TypeInfo: WrapOption(&c.Type),
		}
	}
	return cols
}

func (it *Iter) Scan(values ...interface{}) bool {
	row, err := it.it.Next()
	if err != nil || row == nil {
		return false
	}
	return scanRow(row, values) == nil
}

func (it *Iter) NumRows() int {
	return it.it.NumRows()
}

func (it *Iter) PageState() []byte {
	return it.it.PageState()
}

func (it *Iter) Close() error {
	return it.it.Close()
}

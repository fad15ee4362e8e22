package gocql

import "github.com/riverscale/cqldriver/frame"

// Scanner walks an Iter's rows one at a time, gocql-style, instead of
// passing destination pointers to Scan up front the way Iter.Scan does.
type Scanner interface {
	// Next advances the row pointer to point at the next row, the row is valid until
	// the next call of Next. It returns true if there is a row which is available to be
	// scanned into with Scan.
	// Next must be called before every call to Scan.
	Next() bool

	// Scan copies the current row's columns into dest. If the length of dest does not equal
	// the number of columns returned in the row an error is returned. If an error is encountered
	// when unmarshalling a column into the value in dest an error is returned and the row is invalidated
	// until the next call to Next.
	// Next must be called before calling Scan, if it is not an error is returned.
	Scan(...interface{}) error

	// Err returns the error, if there was one, that resulted in iteration being unable to complete.
	// Err will also release resources held by the iterator, the Scanner should not be used after being called.
	Err() error
}

type iterScanner struct {
	it  *Iter
	row frame.Row
	err error
}

func (it *Iter) Scanner() Scanner {
	return &iterScanner{it: it}
}

func (s *iterScanner) Next() bool {
	row, err := s.it.it.Next()
	if err != nil {
		s.err = err
		return false
	}
	if row == nil {
		return false
	}
	s.row = row
	return true
}

func (s *iterScanner) Scan(values ...interface{}) error {
	return scanRow(s.row, values)
}

func (s *iterScanner) Err() error {
	return s.err
}

package request

import "github.com/riverscale/cqldriver/frame"

var _ frame.Request = (*Query)(nil)

// Query is an unprepared-statement request: raw CQL text plus query
// parameters (spec §3, "Unprepared query").
type Query struct {
	Content    string
	Parameters QueryParameters
}

func (q *Query) WriteTo(b *frame.Buffer) {
	b.WriteLongString(q.Content)
	q.Parameters.WriteTo(b)
}

func (*Query) OpCode() frame.OpCode {
	return frame.OpQuery
}

package transport

import (
	"github.com/riverscale/cqldriver/frame"
	"github.com/riverscale/cqldriver/frame/response"
)

// Token is a Murmur3Partitioner token (spec §5's partition-key routing).
type Token = frame.Token

// MurmurToken computes a partition-key token the way the token-aware load
// balancing policies and Query.token() expect.
func MurmurToken(data []byte) Token {
	return frame.MurmurToken(data)
}

// Statement is a query or prepared statement together with its bound
// values and execution parameters (spec §3's Query/PreparedStatement,
// merged into one wire-ready shape the way the teacher's transport.Query
// did).
type Statement struct {
	Content string
	ID      []byte // prepared-statement id; empty for unprepared queries.

	Values     []frame.Value
	ValueNames []string

	PkIndexes []int // bind-marker positions of the partition key, in hash order.
	PkCnt     int

	Consistency       frame.Consistency
	SerialConsistency frame.Consistency
	PageSize          int32
	NoSkipMetadata    bool
	Compression       bool
	Idempotent        bool

	// Metadata is non-nil only for prepared statements: the server-sent
	// bound-variable column types, used to validate/describe Bind calls.
	Metadata *frame.ResultMetadata
	// ResultMetadata describes the columns a Rows result carries.
	ResultMetadata *frame.ResultMetadata
}

// Clone returns a Statement sharing no mutable backing arrays with s, so
// a Query can be re-issued (e.g. from Iter) without two goroutines racing
// on the same Values slice.
func (s Statement) Clone() Statement {
	v := s

	v.Values = make([]frame.Value, len(s.Values))
	copy(v.Values, s.Values)

	v.PkIndexes = make([]int, len(s.PkIndexes))
	copy(v.PkIndexes, s.PkIndexes)

	return v
}

// QueryResult is a decoded RESULT frame reshaped for consumption by the
// root package: rows plus the paging continuation token.
type QueryResult struct {
	Rows         []frame.Row
	Metadata     *frame.ResultMetadata
	PagingState  []byte
	HasMorePages bool

	// Populated only when the statement was a PREPARE.
	Prepared *response.PreparedResult
}

// MakeQueryResult reshapes a decoded RESULT response into a QueryResult,
// falling back to meta (the statement's cached ResultMetadata) when the
// server omitted metadata on the wire (NoMetadata result flag).
func MakeQueryResult(resp frame.Response, meta *frame.ResultMetadata) (QueryResult, error) {
	r, ok := resp.(*response.Result)
	if !ok {
		return QueryResult{}, responseAsError(resp)
	}

	switch r.Kind {
	case response.ResultVoid:
		return QueryResult{}, nil
	case response.ResultRows:
		m := r.Rows.Metadata
		if len(m.Columns) == 0 && meta != nil {
			m = meta
		}
		return QueryResult{
			Rows:         r.Rows.Rows,
			Metadata:     m,
			PagingState:  r.Rows.Metadata.PagingState,
			HasMorePages: r.Rows.Metadata.HasMorePages(),
		}, nil
	case response.ResultSetKeyspace, response.ResultSchemaChange:
		return QueryResult{}, nil
	case response.ResultPrepared:
		return QueryResult{Prepared: r.Prepared}, nil
	default:
		return QueryResult{}, nil
	}
}

// ResponseHandler is the channel a conn delivers one request's response on.
type ResponseHandler chan responseEnvelope

type responseEnvelope struct {
	Response frame.Response
	Err      error
}

func MakeResponseHandler() ResponseHandler {
	return make(ResponseHandler, 1)
}

func MakeResponseHandlerWithError(err error) ResponseHandler {
	h := make(ResponseHandler, 1)
	h <- responseEnvelope{Err: err}
	return h
}

package cql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riverscale/cqldriver/frame"
	"github.com/riverscale/cqldriver/transport"
)

// Query is a single CQL statement, prepared or not, together with its
// bound values and paging state (spec §3's Query/PreparedStatement,
// merged the way the teacher's transport.Query was).
type Query struct {
	session   *Session
	stmt      transport.Statement
	buf       frame.Buffer
	exec      func(context.Context, *transport.Conn, transport.Statement, frame.Bytes) (transport.QueryResult, error)
	asyncExec func(context.Context, *transport.Conn, transport.Statement, frame.Bytes, transport.ResponseHandler)
	res       []transport.ResponseHandler

	pageState []byte
	err       []error
}

// Prepare upgrades this query to a prepared statement, caching the
// server-assigned id for reuse (spec §3).
func (q *Query) Prepare(ctx context.Context) error {
	p, err := q.session.prepareStatement(ctx, q.stmt)
	if err != nil {
		return wrapError(err)
	}

	q.stmt = p.stmt
	q.exec = p.exec
	q.asyncExec = p.asyncExec
	return nil
}

// parseUseKeyspace recognizes a raw "USE <keyspace>" statement (ASCII
// keyword, case-insensitive per spec §4.8) and extracts the keyspace
// name, reporting whether it was double-quoted (case-sensitive).
func parseUseKeyspace(content string) (keyspace string, caseSensitive bool, ok bool) {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) < 4 || !strings.EqualFold(trimmed[:4], "use ") {
		return "", false, false
	}
	rest := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(trimmed[4:]), ";"))
	if rest == "" {
		return "", false, false
	}
	if len(rest) >= 2 && rest[0] == '"' && rest[len(rest)-1] == '"' {
		return rest[1 : len(rest)-1], true, true
	}
	return rest, false, true
}

// Exec runs the query to completion and returns its (possibly
// zero-length) result.
func (q *Query) Exec(ctx context.Context) (Result, error) {
	if len(q.err) != 0 {
		return Result{}, &BadQuery{Reason: fmt.Sprintf("query can't be executed: %v", q.err)}
	}

	// A raw "USE <keyspace>" is redirected to a cluster-wide keyspace
	// switch instead of being sent to whichever single node the host
	// selection policy would have picked (spec §4.8).
	if ks, caseSensitive, ok := parseUseKeyspace(q.stmt.Content); ok {
		if err := q.session.UseKeyspace(ctx, ks, caseSensitive); err != nil {
			return Result{}, err
		}
		return Result{}, nil
	}

	info, err := q.info()
	if err != nil {
		return Result{}, err
	}

	var rd transport.RetryDecider
	var lastErr error
	i := 0
	n := q.session.cfg.HostSelectionPolicy.Node(info, i)
	for n != nil {
	sameNodeRetries:
		for {
			conn, err := n.Conn(info)
			if err != nil {
				lastErr = err
				break sameNodeRetries
			}

			res, err := q.exec(ctx, conn, q.stmt, nil)
			if err != nil {
				ri := transport.RetryInfo{
					Error:       err,
					Idempotent:  q.stmt.Idempotent,
					Consistency: q.stmt.Consistency,
				}

				if rd == nil {
					rd = q.session.cfg.RetryPolicy.NewRetryDecider()
				}
				switch rd.Decide(ri) {
				case transport.RetrySameNode:
					continue sameNodeRetries
				case transport.RetryNextNode:
					lastErr = err
					break sameNodeRetries
				case transport.DontRetry:
					return Result{}, wrapError(err)
				}
			}

			return Result(res), nil
		}

		i++
		n = q.session.cfg.HostSelectionPolicy.Node(info, i)
	}

	if lastErr == nil {
		return Result{}, fmt.Errorf("no connection to execute the query on")
	}
	return Result{}, wrapError(lastErr)
}

func (q *Query) pickConn(qi transport.QueryInfo) (*transport.Conn, error) {
	n := q.session.cfg.HostSelectionPolicy.Node(qi, 0)
	if n == nil {
		return nil, errNoConnection
	}

	conn, err := n.Conn(qi)
	if err != nil {
		return nil, errNoConnection
	}

	return conn, nil
}

// AsyncExec submits the query without waiting for the response; call
// Fetch to retrieve results in submission order (for callers pipelining
// several independent queries; Iter's paging worker does not use it).
func (q *Query) AsyncExec(ctx context.Context) {
	stmt := q.stmt.Clone()
	info, err := q.info()
	if err != nil {
		q.res = append(q.res, transport.MakeResponseHandlerWithError(err))
		return
	}

	conn, err := q.pickConn(info)
	if err != nil {
		q.res = append(q.res, transport.MakeResponseHandlerWithError(err))
		return
	}

	h := transport.MakeResponseHandler()
	q.res = append(q.res, h)
	q.asyncExec(ctx, conn, stmt, q.pageState, h)
}

var ErrNoQueryResults = fmt.Errorf("no query results to be fetched")

// Fetch returns results in the same order they were queried via AsyncExec.
func (q *Query) Fetch() (Result, error) {
	if len(q.res) == 0 {
		return Result{}, ErrNoQueryResults
	}

	h := q.res[0]
	q.res = q.res[1:]

	resp := <-h
	if resp.Err != nil {
		return Result{}, wrapError(resp.Err)
	}

	res, err := transport.MakeQueryResult(resp.Response, q.stmt.ResultMetadata)
	return Result(res), wrapError(err)
}

// token computes the statement's partition-key token from its bound
// values, if the statement carries a known partition key (spec §5).
func (q *Query) token() (transport.Token, bool) {
	if q.stmt.PkCnt == 0 {
		return 0, false
	}

	if q.stmt.PkCnt == 1 {
		return transport.MurmurToken(q.stmt.Values[q.stmt.PkIndexes[0]].Bytes), true
	}

	q.buf.Reset()
	for _, idx := range q.stmt.PkIndexes {
		v := q.stmt.Values[idx]
		q.buf.WriteShort(frame.Short(v.N))
		q.buf.Write(v.Bytes)
		q.buf.WriteByte(0)
	}

	return transport.MurmurToken(q.buf.Bytes()), true
}

func (q *Query) info() (transport.QueryInfo, error) {
	token, tokenAware := q.token()
	if tokenAware {
		return q.session.cluster.NewTokenAwareQueryInfo(token, q.session.keyspace)
	}

	return q.session.cluster.NewQueryInfo(), nil
}

func (q *Query) checkBounds(pos int) error {
	if q.stmt.Metadata != nil {
		if pos < 0 || pos >= len(q.stmt.Values) {
			return fmt.Errorf("no bind marker with position %d", pos)
		}
		return nil
	}

	for i := len(q.stmt.Values); i <= pos; i++ {
		q.stmt.Values = append(q.stmt.Values, frame.Value{})
	}
	return nil
}

// Serializable is implemented by values that know how to encode
// themselves against a (possibly nil) expected wire type.
type Serializable interface {
	Serialize(*frame.Option) (n int32, bytes []byte, err error)
}

// Bind sets the bind marker at pos to v, serialized against the
// statement's declared type. Only prepared statements accept Bind; on an
// unprepared query it records an error that Exec reports.
func (q *Query) Bind(pos int, v Serializable) *Query {
	if q.stmt.Metadata == nil {
		q.err = append(q.err, fmt.Errorf("binding any to unprepared queries is not supported"))
		return q
	}
	if err := q.checkBounds(pos); err != nil {
		q.err = append(q.err, err)
		return q
	}
	p := &q.stmt.Values[pos]

	var err error
	p.N, p.Bytes, err = v.Serialize(p.Type)
	if err != nil {
		q.err = append(q.err, err)
	}

	return q
}

// BindInt64 sets the bind marker at pos to a raw big-endian int64,
// bypassing Serializable for the hot path of bigint/counter/timestamp
// bind values.
func (q *Query) BindInt64(pos int, v int64) *Query {
	if err := q.checkBounds(pos); err != nil {
		q.err = append(q.err, err)
		return q
	}
	p := &q.stmt.Values[pos]
	p.N = 8
	p.Bytes = make([]byte, 8)

	p.Bytes[0] = byte(v >> 56)
	p.Bytes[1] = byte(v >> 48)
	p.Bytes[2] = byte(v >> 40)
	p.Bytes[3] = byte(v >> 32)
	p.Bytes[4] = byte(v >> 24)
	p.Bytes[5] = byte(v >> 16)
	p.Bytes[6] = byte(v >> 8)
	p.Bytes[7] = byte(v)

	return q
}

func (q *Query) SetConsistency(v frame.Consistency) {
	q.stmt.Consistency = v
}

func (q *Query) GetConsistency() frame.Consistency {
	return q.stmt.Consistency
}

func (q *Query) SetSerialConsistency(v frame.Consistency) {
	q.stmt.SerialConsistency = v
}

func (q *Query) SerialConsistency() frame.Consistency {
	return q.stmt.SerialConsistency
}

func (q *Query) SetPageState(v []byte) {
	q.pageState = v
}

func (q *Query) PageState() []byte {
	return q.pageState
}

func (q *Query) SetPageSize(v int32) {
	q.stmt.PageSize = v
}

func (q *Query) PageSize() int32 {
	return q.stmt.PageSize
}

func (q *Query) SetCompression(v bool) {
	q.stmt.Compression = v
}

func (q *Query) Compression() bool {
	return q.stmt.Compression
}

func (q *Query) SetIdempotent(v bool) {
	q.stmt.Idempotent = v
}

func (q *Query) Idempotent() bool {
	return q.stmt.Idempotent
}

func (q *Query) NoSkipMetadata() *Query {
	q.stmt.NoSkipMetadata = true
	return q
}

// Result is a query's decoded rows plus paging/metadata.
type Result transport.QueryResult

// Iter starts a paged iteration over the query's results, fetching pages
// on demand one ahead of consumption (spec §4's paging channel
// back-pressure: capacity 1).
func (q *Query) Iter(ctx context.Context) Iter {
	stmt := q.stmt.Clone()

	var pageState []byte
	if q.pageState != nil {
		pageState = make([]byte, len(q.pageState))
		copy(pageState, q.pageState)
	}

	it := Iter{
		requestCh: make(chan struct{}, 1),
		nextCh:    make(chan transport.QueryResult),
		errCh:     make(chan error, 1),

		meta: stmt.ResultMetadata,
	}

	info, err := q.info()
	if err != nil {
		it.errCh <- err
		return it
	}

	worker := iterWorker{
		stmt:      stmt,
		rd:        q.session.cfg.RetryPolicy.NewRetryDecider(),
		queryInfo: info,
		pickNode:  q.session.cfg.HostSelectionPolicy.Node,
		queryExec: q.exec,

		requestCh: it.requestCh,
		nextCh:    it.nextCh,
		errCh:     it.errCh,

		pagingState: pageState,
	}

	it.requestCh <- struct{}{}
	go worker.loop(ctx)
	return it
}

// Iter is a paged row cursor returned by Query.Iter.
type Iter struct {
	result transport.QueryResult
	pos    int
	rowCnt int

	requestCh chan struct{}
	nextCh    chan transport.QueryResult
	errCh     chan error
	closed    bool

	meta *frame.ResultMetadata
	err  error
}

var (
	ErrClosedIter = fmt.Errorf("iter is closed")
	ErrNoMoreRows = fmt.Errorf("no more rows left")
)

// Next returns the next row, or (nil, nil) once the iteration is
// exhausted. Any error (including a server error on a later page) is
// also surfaced through the return value and recorded for Close.
func (it *Iter) Next() (frame.Row, error) {
	if it.closed {
		return nil, nil
	}

	if it.pos >= it.rowCnt {
		select {
		case r := <-it.nextCh:
			it.result = r
		case err := <-it.errCh:
			if !errors.Is(err, ErrNoMoreRows) {
				it.err = wrapError(err)
			}
			return nil, it.Close()
		}

		it.pos = 0
		it.rowCnt = len(it.result.Rows)
		it.requestCh <- struct{}{}
	}

	if it.rowCnt == 0 {
		return it.Next()
	}

	res := it.result.Rows[it.pos]
	it.pos++
	return res, nil
}

func (it *Iter) Close() error {
	if it.closed {
		return it.err
	}
	it.closed = true
	close(it.requestCh)
	return it.err
}

func (it *Iter) Columns() []frame.ColumnSpec {
	if it.meta == nil {
		return nil
	}
	return it.meta.Columns
}

func (it *Iter) NumRows() int {
	return it.rowCnt
}

func (it *Iter) PageState() []byte {
	return it.result.PagingState
}

type iterWorker struct {
	stmt        transport.Statement
	pagingState []byte
	queryExec   func(context.Context, *transport.Conn, transport.Statement, frame.Bytes) (transport.QueryResult, error)

	queryInfo transport.QueryInfo
	pickNode  func(transport.QueryInfo, int) *transport.Node
	nodeIdx   int
	conn      *transport.Conn
	connErr   error

	rd transport.RetryDecider

	requestCh chan struct{}
	nextCh    chan transport.QueryResult
	errCh     chan error
}

func (w *iterWorker) loop(ctx context.Context) {
	n := w.pickNode(w.queryInfo, 0)
	if n == nil {
		w.errCh <- fmt.Errorf("can't pick a node to execute request")
		return
	}
	w.conn, w.connErr = n.Conn(w.queryInfo)

	for {
		_, ok := <-w.requestCh
		if !ok {
			return
		}

		res, err := w.exec(ctx)
		if err != nil {
			w.errCh <- err
			return
		}

		w.pagingState = res.PagingState
		w.nextCh <- res
		if !res.HasMorePages {
			w.errCh <- ErrNoMoreRows
			return
		}
	}
}

// exec runs one page fetch with its own retry state (spec §4: retry
// state resets per page).
func (w *iterWorker) exec(ctx context.Context) (transport.QueryResult, error) {
	w.rd.Reset()
	var lastErr error
	for {
	sameNodeRetries:
		for {
			if w.connErr != nil {
				lastErr = w.connErr
				break
			}
			res, err := w.queryExec(ctx, w.conn, w.stmt, w.pagingState)
			if err != nil {
				ri := transport.RetryInfo{
					Error:       err,
					Idempotent:  w.stmt.Idempotent,
					Consistency: w.stmt.Consistency,
				}

				switch w.rd.Decide(ri) {
				case transport.RetrySameNode:
					continue sameNodeRetries
				case transport.RetryNextNode:
					lastErr = err
					break sameNodeRetries
				case transport.DontRetry:
					return transport.QueryResult{}, err
				}
			}

			return res, nil
		}

		w.nodeIdx++
		n := w.pickNode(w.queryInfo, w.nodeIdx)
		if n == nil {
			if lastErr == nil {
				return transport.QueryResult{}, fmt.Errorf("no connection to execute the query on")
			}
			return transport.QueryResult{}, lastErr
		}

		w.conn, w.connErr = n.Conn(w.queryInfo)
	}
}

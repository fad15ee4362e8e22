package transport

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riverscale/cqldriver/frame"
	. "github.com/riverscale/cqldriver/frame/request"
	. "github.com/riverscale/cqldriver/frame/response"
)

type request struct {
	frame.Request
	StreamID        frame.StreamID
	Compress        bool
	ResponseHandler ResponseHandler
}

type connWriter struct {
	conn      io.Writer
	buf       frame.Buffer
	requestCh chan request
	compress  frame.Compression
}

func (c *connWriter) submit(r request) {
	c.requestCh <- r
}

func (c *connWriter) loop() {
	runtime.LockOSThread()

	for r := range c.requestCh {
		if err := c.send(r); err != nil {
			r.ResponseHandler <- responseEnvelope{Err: fmt.Errorf("send: %w", err)}
		}
	}
}

func (c *connWriter) send(r request) error {
	c.buf.Reset()

	var body frame.Buffer
	r.WriteTo(&body)
	if err := body.Error(); err != nil {
		return err
	}
	payload := body.Bytes()

	flags := frame.HeaderFlags(0)
	if r.Compress && c.compress != frame.NoCompression {
		compressed, err := frame.Compress(c.compress, payload)
		if err != nil {
			return fmt.Errorf("compressing body: %w", err)
		}
		payload = compressed
		flags |= frame.FlagCompression
	}

	h := frame.Header{
		Version:  frame.CQLv4,
		Flags:    flags,
		StreamID: r.StreamID,
		OpCode:   r.OpCode(),
	}
	h.WriteTo(&c.buf)
	c.buf.Write(payload)

	b := c.buf.Bytes()
	l := uint32(len(b) - frame.HeaderSize)
	binary.BigEndian.PutUint32(b[5:9], l)

	if _, err := frame.CopyBuffer(&c.buf, c.conn); err != nil {
		return err
	}
	return nil
}

type connReader struct {
	conn *bufio.Reader
	buf  frame.Buffer

	h map[frame.StreamID]ResponseHandler
	s streamIDAllocator
	// mu guards h and s.
	mu sync.Mutex

	compress frame.Compression
	onFatal  func(error)
}

func (c *connReader) setHandler(h ResponseHandler) (frame.StreamID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	streamID, err := c.s.Alloc()
	if err != nil {
		return 0, fmt.Errorf("stream ID alloc: %w", err)
	}
	c.h[streamID] = h
	return streamID, nil
}

func (c *connReader) freeHandler(streamID frame.StreamID) {
	c.mu.Lock()
	c.s.Free(streamID)
	delete(c.h, streamID)
	c.mu.Unlock()
}

func (c *connReader) inFlight() int {
	c.mu.Lock()
	n := len(c.h)
	c.mu.Unlock()
	return n
}

func (c *connReader) handler(streamID frame.StreamID) ResponseHandler {
	c.mu.Lock()
	h := c.h[streamID]
	c.mu.Unlock()
	return h
}

func (c *connReader) loop() {
	runtime.LockOSThread()

	for {
		hdr, resp, err := c.recv()
		if err != nil {
			c.onFatal(err)
			return
		}
		if h := c.handler(hdr.StreamID); h != nil {
			h <- responseEnvelope{Response: resp}
		}
	}
}

func (c *connReader) recv() (frame.Header, frame.Response, error) {
	c.buf.Reset()

	hdrBuf := make([]byte, frame.HeaderSize)
	if _, err := io.ReadFull(c.conn, hdrBuf); err != nil {
		return frame.Header{}, nil, fmt.Errorf("read header: %w", err)
	}
	c.buf.Write(hdrBuf)
	hdr := frame.ParseHeader(&c.buf)
	if err := c.buf.Error(); err != nil {
		return hdr, nil, fmt.Errorf("parse header: %w", err)
	}

	body := make([]byte, hdr.Length)
	if _, err := io.ReadFull(c.conn, body); err != nil {
		return hdr, nil, fmt.Errorf("read body: %w", err)
	}

	if hdr.Flags&frame.FlagCompression != 0 {
		decompressed, err := frame.Decompress(c.compress, body)
		if err != nil {
			return hdr, nil, fmt.Errorf("decompressing body: %w", err)
		}
		body = decompressed
	}

	c.buf.Reset()
	c.buf.Write(body)

	resp, err := c.parse(hdr.OpCode)
	if err != nil {
		return hdr, nil, fmt.Errorf("parse body: %w", err)
	}
	if err := c.buf.Error(); err != nil {
		return hdr, nil, fmt.Errorf("parse body: %w", err)
	}

	return hdr, resp, nil
}

func (c *connReader) parse(op frame.OpCode) (frame.Response, error) {
	switch op {
	case frame.OpError:
		return ParseError(&c.buf), nil
	case frame.OpReady:
		return ParseReady(&c.buf), nil
	case frame.OpAuthenticate:
		return ParseAuthenticate(&c.buf), nil
	case frame.OpAuthChallenge:
		return ParseAuthChallenge(&c.buf), nil
	case frame.OpAuthSuccess:
		return ParseAuthSuccess(&c.buf), nil
	case frame.OpSupported:
		return ParseSupported(&c.buf), nil
	case frame.OpResult:
		return ParseResult(&c.buf)
	case frame.OpEvent:
		return ParseEvent(&c.buf), nil
	default:
		return nil, fmt.Errorf("unsupported response opcode 0x%02x", op)
	}
}

// Conn is one multiplexed connection to a node: a single writer goroutine
// and a single reader goroutine, correlating requests to responses by
// stream id (spec §2's stream-id discipline).
type Conn struct {
	conn net.Conn
	w    connWriter
	r    connReader

	closed int32

	keyspace string

	mu      sync.RWMutex
	prepped map[string]Statement // query content -> cached prepared statement
}

// ConnConfig configures one dialed connection (spec §2's startup/auth
// and §7's compression negotiation).
type ConnConfig struct {
	Keyspace    string
	TCPNoDelay  bool
	Timeout     time.Duration
	Compression frame.Compression

	DefaultConsistency frame.Consistency
}

func DefaultConnConfig(keyspace string) ConnConfig {
	return ConnConfig{
		Keyspace:           keyspace,
		TCPNoDelay:         true,
		Timeout:            10 * time.Second,
		DefaultConsistency: frame.QUORUM,
	}
}

// StartupOptions builds the STARTUP request body's option map.
func (c ConnConfig) StartupOptions() frame.StartupOptions {
	opts := frame.StartupOptions{"CQL_VERSION": "3.0.0"}
	switch c.Compression {
	case frame.LZ4:
		opts["COMPRESSION"] = "lz4"
	case frame.Snappy:
		opts["COMPRESSION"] = "snappy"
	}
	return opts
}

const (
	requestChanSize = 1024
	ioBufferSize    = 8192
)

// OpenConn dials addr and wraps the resulting TCP connection.
// localAddr may be nil to let the OS choose.
func OpenConn(addr string, localAddr *net.TCPAddr, cfg ConnConfig) (*Conn, error) {
	d := net.Dialer{
		Timeout:   cfg.Timeout,
		LocalAddr: localAddr,
	}
	conn, err := d.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing TCP address %s: %w", addr, err)
	}

	tcpConn, ok := conn.(*net.TCPConn)
	if ok {
		if err := tcpConn.SetNoDelay(cfg.TCPNoDelay); err != nil {
			return nil, fmt.Errorf("setting TCP no delay option: %w", err)
		}
	}

	return WrapConn(conn, cfg), nil
}

func WrapConn(conn net.Conn, cfg ConnConfig) *Conn {
	c := &Conn{
		conn:     conn,
		keyspace: cfg.Keyspace,
		prepped:  make(map[string]Statement),
		w: connWriter{
			conn:      conn,
			requestCh: make(chan request, requestChanSize),
			compress:  cfg.Compression,
		},
		r: connReader{
			conn:     bufio.NewReaderSize(conn, ioBufferSize),
			h:        make(map[frame.StreamID]ResponseHandler),
			compress: cfg.Compression,
		},
	}
	c.r.onFatal = c.abort

	go c.w.loop()
	go c.r.loop()

	return c
}

// abort marks the connection dead and fails every outstanding request;
// called by the reader loop when the socket itself fails.
func (c *Conn) abort(err error) {
	atomic.StoreInt32(&c.closed, 1)

	c.r.mu.Lock()
	handlers := make([]ResponseHandler, 0, len(c.r.h))
	for _, h := range c.r.h {
		handlers = append(handlers, h)
	}
	c.r.h = make(map[frame.StreamID]ResponseHandler)
	c.r.mu.Unlock()

	for _, h := range handlers {
		h <- responseEnvelope{Err: fmt.Errorf("connection aborted: %w", err)}
	}
}

func (c *Conn) Closed() bool {
	return atomic.LoadInt32(&c.closed) != 0
}

func (c *Conn) InFlight() int {
	return c.r.inFlight()
}

func (c *Conn) Close() {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return
	}
	close(c.w.requestCh)
	_ = c.conn.Close()
}

func (c *Conn) Startup(ctx context.Context, options frame.StartupOptions) (frame.Response, error) {
	return c.sendRequest(ctx, &Startup{Options: options}, false)
}

func (c *Conn) sendRequest(ctx context.Context, req frame.Request, compress bool) (frame.Response, error) {
	if c.Closed() {
		return nil, fmt.Errorf("connection is closed")
	}

	h := MakeResponseHandler()

	streamID, err := c.r.setHandler(h)
	if err != nil {
		return nil, fmt.Errorf("set handler: %w", err)
	}

	r := request{
		Request:         req,
		StreamID:        streamID,
		Compress:        compress,
		ResponseHandler: h,
	}

	c.w.submit(r)

	select {
	case resp := <-h:
		c.r.freeHandler(streamID)
		return resp.Response, resp.Err
	case <-ctx.Done():
		c.r.freeHandler(streamID)
		return nil, ctx.Err()
	}
}

func queryParams(stmt Statement, pagingState []byte) QueryParameters {
	return QueryParameters{
		Consistency:           stmt.Consistency,
		Values:                stmt.Values,
		ValueNames:            stmt.ValueNames,
		SkipMetadata:          !stmt.NoSkipMetadata && len(stmt.ID) > 0,
		PageSize:              stmt.PageSize,
		PagingState:           pagingState,
		SerialConsistency:     stmt.SerialConsistency,
		HasSerialConsistency:  stmt.SerialConsistency != 0,
	}
}

// Query issues an unprepared CQL statement (CQL v4 §4.1.4).
func (c *Conn) Query(ctx context.Context, stmt Statement, pagingState []byte) (QueryResult, error) {
	resp, err := c.sendRequest(ctx, &Query{
		Content:    stmt.Content,
		Parameters: queryParams(stmt, pagingState),
	}, stmt.Compression)
	if err != nil {
		return QueryResult{}, err
	}
	return MakeQueryResult(resp, stmt.ResultMetadata)
}

// AsyncQuery submits an unprepared statement without waiting, delivering
// the result on handler (the path behind Query.AsyncExec).
func (c *Conn) AsyncQuery(ctx context.Context, stmt Statement, pagingState []byte, handler ResponseHandler) {
	c.asyncSend(ctx, &Query{Content: stmt.Content, Parameters: queryParams(stmt, pagingState)}, stmt.Compression, handler)
}

// Execute runs a previously prepared statement (CQL v4 §4.1.6),
// transparently re-preparing and retrying once if the server reports the
// statement id as unknown (spec §7's Unprepared handling).
func (c *Conn) Execute(ctx context.Context, stmt Statement, pagingState []byte) (QueryResult, error) {
	resp, err := c.sendRequest(ctx, &Execute{ID: stmt.ID, Parameters: queryParams(stmt, pagingState)}, stmt.Compression)
	if err != nil {
		return QueryResult{}, err
	}

	if coded, ok := resp.(CodedError); ok && coded.Code() == ErrUnprepared {
		// Drop the stale cache entry so Prepare really sends a PREPARE.
		base := Statement{Content: stmt.Content}
		c.mu.Lock()
		if old, had := c.prepped[stmt.Content]; had {
			base = old
			delete(c.prepped, stmt.Content)
		}
		c.mu.Unlock()
		reprepared, rerr := c.Prepare(ctx, base)
		if rerr != nil {
			return QueryResult{}, fmt.Errorf("re-preparing after Unprepared: %w", rerr)
		}
		stmt.ID = reprepared.ID
		resp, err = c.sendRequest(ctx, &Execute{ID: stmt.ID, Parameters: queryParams(stmt, pagingState)}, stmt.Compression)
		if err != nil {
			return QueryResult{}, err
		}
	}

	return MakeQueryResult(resp, stmt.ResultMetadata)
}

// AsyncExecute is the async counterpart of Execute, used by
// Query.AsyncExec; it does not re-prepare on Unprepared: the CodedError
// is delivered on handler like any other response.
func (c *Conn) AsyncExecute(ctx context.Context, stmt Statement, pagingState []byte, handler ResponseHandler) {
	c.asyncSend(ctx, &Execute{ID: stmt.ID, Parameters: queryParams(stmt, pagingState)}, stmt.Compression, handler)
}

func (c *Conn) asyncSend(ctx context.Context, req frame.Request, compress bool, handler ResponseHandler) {
	if c.Closed() {
		handler <- responseEnvelope{Err: fmt.Errorf("connection is closed")}
		return
	}

	streamID, err := c.r.setHandler(handler)
	if err != nil {
		handler <- responseEnvelope{Err: fmt.Errorf("set handler: %w", err)}
		return
	}

	c.w.submit(request{Request: req, StreamID: streamID, Compress: compress, ResponseHandler: handler})
}

// Prepare sends a PREPARE request and caches the resulting Statement by
// query text so repeated Session.Prepare calls for the same text reuse
// one server-side id per connection.
func (c *Conn) Prepare(ctx context.Context, stmt Statement) (Statement, error) {
	c.mu.RLock()
	if cached, ok := c.prepped[stmt.Content]; ok {
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	resp, err := c.sendRequest(ctx, &Prepare{Content: stmt.Content}, stmt.Compression)
	if err != nil {
		return Statement{}, err
	}

	r, ok := resp.(*Result)
	if !ok || r.Kind != ResultPrepared {
		return Statement{}, responseAsError(resp)
	}

	prepared := stmt
	prepared.ID = r.Prepared.ID
	prepared.Metadata = r.Prepared.ResultMetadata
	prepared.ResultMetadata = r.Prepared.ResultsMetadata
	prepared.Values = make([]frame.Value, len(r.Prepared.ResultMetadata.Columns))
	for i := range r.Prepared.ResultMetadata.Columns {
		prepared.Values[i].Type = &r.Prepared.ResultMetadata.Columns[i].Type
	}
	prepared.PkIndexes = make([]int, len(r.Prepared.ResultMetadata.PkIndexes))
	for i, idx := range r.Prepared.ResultMetadata.PkIndexes {
		if int(idx) >= len(prepared.Values) {
			return Statement{}, &Error{ErrorCode: ErrProtocolError,
				Message: fmt.Sprintf("partition key index %d is not a bind marker position", idx)}
		}
		prepared.PkIndexes[i] = int(idx)
	}
	prepared.PkCnt = len(prepared.PkIndexes)

	c.mu.Lock()
	c.prepped[stmt.Content] = prepared
	c.mu.Unlock()

	return prepared, nil
}

// UseKeyspace issues "USE <keyspace>" on this connection (CQL v4 §4.1.2),
// quoting keyspace when caseSensitive so the server preserves its case,
// and records the keyspace on the connection.
func (c *Conn) UseKeyspace(ctx context.Context, keyspace string, caseSensitive bool) error {
	content := "USE " + keyspace
	if caseSensitive {
		content = `USE "` + keyspace + `"`
	}

	resp, err := c.sendRequest(ctx, &Query{Content: content, Parameters: QueryParameters{Consistency: frame.ONE}}, false)
	if err != nil {
		return err
	}
	if coded, ok := resp.(CodedError); ok {
		return coded
	}

	c.mu.Lock()
	c.keyspace = keyspace
	c.mu.Unlock()

	return nil
}

// Batch sends a BATCH request (CQL v4 §4.1.7). The server never returns
// rows for a batch, so success is signalled by a nil error.
func (c *Conn) Batch(ctx context.Context, req *Batch) error {
	resp, err := c.sendRequest(ctx, req, false)
	if err != nil {
		return err
	}
	if coded, ok := resp.(CodedError); ok {
		return coded
	}
	return nil
}

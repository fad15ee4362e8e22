package transport

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/riverscale/cqldriver/frame/response"
)

// poolSize is the number of connections kept open to each node. A fixed
// small pool is enough for a single-shard Cassandra node: the wins from
// Scylla's per-CPU shard-aware pooling (the teacher's ShardInfo/
// OpenShardConn machinery) don't apply to a generic Cassandra server, so
// this pool is deliberately simpler than the teacher's.
const poolSize = 4

// ConnPool is a small fixed-size set of connections to one node, opened
// when the pool is created and replaced on the next acquisition once
// they die.
type ConnPool struct {
	addr string
	cfg  ConnConfig

	mu    sync.Mutex
	conns []*Conn
	next  int
}

// NewConnPool opens poolSize connections to addr, issuing Startup on
// each. Returns an error if none could be opened.
func NewConnPool(ctx context.Context, addr string, cfg ConnConfig) (*ConnPool, error) {
	p := &ConnPool{addr: addr, cfg: cfg}

	var lastErr error
	for i := 0; i < poolSize; i++ {
		conn, err := p.dial(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		p.conns = append(p.conns, conn)
	}

	if len(p.conns) == 0 {
		return nil, fmt.Errorf("opening connection pool to %s: %w", addr, lastErr)
	}
	return p, nil
}

func (p *ConnPool) dial(ctx context.Context) (*Conn, error) {
	conn, err := OpenConn(p.addr, nil, p.cfg)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Startup(ctx, p.cfg.StartupOptions()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("startup on %s: %w", p.addr, err)
	}
	if p.cfg.Keyspace != "" {
		if err := conn.UseKeyspace(ctx, p.cfg.Keyspace, false); err != nil {
			conn.Close()
			return nil, fmt.Errorf("use keyspace %q on %s: %w", p.cfg.Keyspace, p.addr, err)
		}
	}
	return conn, nil
}

// liveConns returns the snapshot of currently-open connections, dialing a
// fresh replacement for any found closed (mirroring LeastBusyConn).
func (p *ConnPool) liveConns() []*Conn {
	p.mu.Lock()
	defer p.mu.Unlock()

	live := make([]*Conn, 0, len(p.conns))
	for i, c := range p.conns {
		if c.Closed() {
			nc, err := p.dial(context.Background())
			if err != nil {
				continue
			}
			p.conns[i] = nc
			c = nc
		}
		live = append(live, c)
	}
	return live
}

// UseKeyspace issues USE on every live connection in the pool (spec §6's
// use_keyspace must "issue USE across the pool").
func (p *ConnPool) UseKeyspace(ctx context.Context, keyspace string, caseSensitive bool) error {
	live := p.liveConns()
	if len(live) == 0 {
		return fmt.Errorf("no live connections to %s", p.addr)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(live))
	for i, c := range live {
		wg.Add(1)
		go func(i int, c *Conn) {
			defer wg.Done()
			errs[i] = c.UseKeyspace(ctx, keyspace, caseSensitive)
		}(i, c)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// PrepareAll prepares stmt on every live connection concurrently and
// verifies the server returned the same statement id on each (spec
// invariant 2, §4.3: "MUST verify that all returned ids are byte-equal").
func (p *ConnPool) PrepareAll(ctx context.Context, stmt Statement) (Statement, error) {
	live := p.liveConns()
	if len(live) == 0 {
		return Statement{}, fmt.Errorf("no live connections to %s", p.addr)
	}

	type result struct {
		stmt Statement
		err  error
	}
	results := make([]result, len(live))

	var wg sync.WaitGroup
	for i, c := range live {
		wg.Add(1)
		go func(i int, c *Conn) {
			defer wg.Done()
			prepared, err := c.Prepare(ctx, stmt)
			results[i] = result{stmt: prepared, err: err}
		}(i, c)
	}
	wg.Wait()

	for _, r := range results {
		if r.err != nil {
			return Statement{}, r.err
		}
	}

	first := results[0].stmt
	for _, r := range results[1:] {
		if !bytes.Equal(first.ID, r.stmt.ID) {
			return Statement{}, &response.Error{ErrorCode: response.ErrProtocolError, Message: "prepared ids differ"}
		}
	}

	return first, nil
}

// LeastBusyConn returns the connection with the fewest in-flight
// requests, replacing any connection found dead along the way.
func (p *ConnPool) LeastBusyConn() (*Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var best *Conn
	bestLoad := -1
	for i := 0; i < len(p.conns); i++ {
		c := p.conns[i]
		if c.Closed() {
			nc, err := p.dial(context.Background())
			if err != nil {
				continue
			}
			p.conns[i] = nc
			c = nc
		}
		if load := c.InFlight(); bestLoad == -1 || load < bestLoad {
			best, bestLoad = c, load
		}
	}

	if best == nil {
		return nil, fmt.Errorf("no live connections to %s", p.addr)
	}
	return best, nil
}

// Conn returns a connection selected deterministically by token, so
// repeated calls for the same token tend to land on the same connection
// (better for the server's row-cache locality than pure round robin).
func (p *ConnPool) Conn(token Token) (*Conn, error) {
	p.mu.Lock()
	n := len(p.conns)
	if n == 0 {
		p.mu.Unlock()
		return nil, fmt.Errorf("no connections to %s", p.addr)
	}
	idx := int(uint64(token) % uint64(n))
	c := p.conns[idx]
	if c.Closed() {
		nc, err := p.dial(context.Background())
		if err == nil {
			p.conns[idx] = nc
			c = nc
		}
	}
	p.mu.Unlock()

	if c.Closed() {
		return p.LeastBusyConn()
	}
	return c, nil
}

func (p *ConnPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.conns {
		c.Close()
	}
}
